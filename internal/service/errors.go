package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation    = errors.New("validation")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("state conflict")
	ErrCouponInvalid = errors.New("coupon invalid")
	ErrCodeExhausted = errors.New("coupon code space exhausted")
)

// Error carries a client-facing message and the sentinel it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "%s not found", what)
	}
	return err
}
