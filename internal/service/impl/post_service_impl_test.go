package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"

	"github.com/google/uuid"
)

func TestPostServiceCreateListGet(t *testing.T) {
	st := newMemoryStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc := &PostServiceImpl{Store: st, Now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}}
	author := seedUser(st, "author@example.com", domain.RoleUser, true, "h")
	ctx := context.Background()

	first, err := svc.Create(ctx, author.ID, dto.CreatePostRequest{Title: "First post", Content: "some long content", Published: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.AuthorID != author.ID {
		t.Fatalf("author must come from the caller, got %v", first.AuthorID)
	}
	if _, err := svc.Create(ctx, author.ID, dto.CreatePostRequest{Title: "Draft post", Content: "draft content here"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	second, _ := svc.Create(ctx, author.ID, dto.CreatePostRequest{Title: "Second post", Content: "more long content", Published: true})

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected two published posts newest first, got %+v %v", list, err)
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil || got == nil || got.Title != "First post" {
		t.Fatalf("unexpected get: %+v %v", got, err)
	}
	missing, err := svc.Get(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing post, got %+v %v", missing, err)
	}
}

func TestPostServiceCreateRejects(t *testing.T) {
	st := newMemoryStore()
	svc := &PostServiceImpl{Store: st}
	ctx := context.Background()

	var v *domain.ValidationError
	if _, err := svc.Create(ctx, uuid.New(), dto.CreatePostRequest{Title: "Hi", Content: "short"}); !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, uuid.New(), dto.CreatePostRequest{Title: "Orphan post", Content: "content without author"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted author, got %v", err)
	}
}
