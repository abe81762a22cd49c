package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the only error type allowed to cross the handler boundary. The
// Status and Code are what the client sees; Err stays server-side.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "validation_failed", fmt.Errorf(format, args...))
}

func Unauthenticated() *Error {
	return New(http.StatusUnauthorized, "unauthenticated", errors.New("unauthenticated"))
}

// NotFound covers both absent resources and resources owned by someone else.
// The two cases must stay indistinguishable to the caller.
func NotFound(resource string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%s not found", resource))
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, "conflict", fmt.Errorf(format, args...))
}

func Upstream(err error) *Error {
	return New(http.StatusBadGateway, "upstream_failed", err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal_error", err)
}

// From returns err as an *Error, wrapping anything unexpected as internal so
// raw failure detail never leaks to the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
