package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means a required credential is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrConstraint means a write violated a store constraint (duplicate id).
	ErrConstraint = errors.New("constraint violation")

	// ErrGateway means an external provider rejected a request.
	ErrGateway = errors.New("gateway error")

	// ErrStore means a database statement failed.
	ErrStore = errors.New("store error")

	// ErrValidation is reserved for input checks. The HTTP layer does not
	// validate bodies, so nothing returns it today.
	ErrValidation = errors.New("validation error")
)

// StoreError wraps a failed statement.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrStore for every StoreError.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// GatewayError wraps a provider-side rejection. Message is what the provider
// said and is surfaced to callers unchanged.
type GatewayError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Provider + " request failed"
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// MissingCredential builds a configuration error naming the variable.
func MissingCredential(name string) error {
	return fmt.Errorf("%w: %s is not set in environment variables", ErrConfiguration, name)
}
