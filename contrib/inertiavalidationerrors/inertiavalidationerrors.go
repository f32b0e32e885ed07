// Package inertiavalidationerrors provides ready-made ValidationErrorer
// implementations.
package inertiavalidationerrors

import (
	"encoding/gob"

	"go.loamy.dev/inertia"
)

var (
	_ error                     = (*MapError)(nil)
	_ inertia.ValidationErrorer = (*MapError)(nil)
)

//nolint:gochecknoinits
func init() {
	gob.Register(&MapError{})
}

// MapError is a field-to-message map usable as validation errors.
type MapError map[string]string

func (m MapError) ValidationErrors() []inertia.ValidationError {
	errs := make([]inertia.ValidationError, 0, len(m))
	for field, message := range m {
		errs = append(errs, inertia.NewValidationError(field, message))
	}

	return errs
}

func (m MapError) Error() string    { return "validation errors" }
func (m MapError) Len() int         { return len(m) }
func (m MapError) ErrorBag() string { return inertia.DefaultErrorBag }
