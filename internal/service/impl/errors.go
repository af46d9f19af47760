package impl

import (
	"errors"

	"asafe-api/internal/domain"
	"asafe-api/internal/store"
)

const (
	MsgUserNotFound     = "User not found"
	MsgEmailNotVerified = "Email not verified"
	MsgInvalidPassword  = "Invalid password"
	MsgInternal         = "Internal server error"
)

var (
	ErrNilStore      = errors.New("nil store")
	ErrEmptyPassword = errors.New("empty password")
)

// notFoundAs swaps a store miss for the given domain error.
func notFoundAs(err error, notFound error) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func duplicateAsEmail(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return domain.ErrDuplicateEmail
	}
	return err
}
