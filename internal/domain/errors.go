package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("already exists")
	ErrGateway         = errors.New("payment gateway failure")
	ErrPersistence     = errors.New("persistence failure")

	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthenticated)
)

// GatewayError carries the upstream diagnostics of a failed payment gateway call.
// StatusCode is zero when the request never got a response.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("payment gateway %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment gateway %s failed with status %d", e.Op, e.StatusCode)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }
