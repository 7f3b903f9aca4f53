package domain

import (
	"errors"
	"fmt"
)

// ErrStepNotFound is returned by step stores when an id does not resolve.
var ErrStepNotFound = errors.New("step not found")

// ErrProductNotFound is returned by product resolvers for unknown products.
var ErrProductNotFound = errors.New("product not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ConfigurationError is the only typed error a navigation session surfaces
// to the operator. It is raised by Start when the selected product or its
// entry step cannot be resolved; the session stays unconfigured.
type ConfigurationError struct {
	ProductID string
	Reason    string
	Cause     error
}

func (e *ConfigurationError) Error() string {
	if e.ProductID == "" {
		return "invalid attendance configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid attendance configuration for product %q: %s", e.ProductID, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
