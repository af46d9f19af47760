// Package objectstore keeps copies of relayed uploads in S3-compatible
// object storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrArchiveFailed = errors.New("archive failed")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Archiver writes files to a MinIO bucket. A nil or disabled Archiver
// accepts every call and stores nothing.
type Archiver struct {
	client *minio.Client
	bucket string
}

// New returns a disabled archiver when no endpoint is configured.
func New(cfg Config) (*Archiver, error) {
	if cfg.Endpoint == "" {
		slog.Info("MINIO_ENDPOINT not set, upload archiving disabled")
		return &Archiver{}, nil
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Archiver{client: client, bucket: cfg.Bucket}, nil
}

func (a *Archiver) Enabled() bool { return a != nil && a.client != nil }

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Archive uploads the file at path under key.
func (a *Archiver) Archive(ctx context.Context, key, path, contentType string) error {
	if !a.Enabled() {
		return nil
	}
	_, err := a.client.FPutObject(ctx, a.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}
	return nil
}
