// Package playgroundvalidator adapts go-playground/validator to the
// inertiaframe validation seam, translating field errors into Inertia
// validation errors that flow back to the client as the "errors" prop.
package playgroundvalidator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.inout.gg/foundations/debug"

	"go.loamy.dev/inertia"
	"go.loamy.dev/inertia/inertiaframe"
)

var _ inertiaframe.Validator = (*Validator)(nil)

// Validator validates request messages with go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator around validate. If validate is nil, a fresh
// instance with struct tag name support is used.
func New(validate *validator.Validate) *Validator {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	debug.Assert(validate != nil, "expected validate to be defined")

	return &Validator{validate: validate}
}

// Validate validates msg, returning an inertia.ValidationErrorer when
// field validation fails so the frame can flash the errors to the client.
func (v *Validator) Validate(msg any) error {
	err := v.validate.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// An invalid argument, not a validation failure.
		return fmt.Errorf("playgroundvalidator: failed to validate: %w", err)
	}

	errs := make(inertia.ValidationErrors, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		errs = append(errs, inertia.NewValidationError(fieldErr.Field(), validationMessage(fieldErr)))
	}

	return errs
}

// validationMessage renders a client-facing message for a field error.
// The raw validator message leaks struct names; keep it to the tag.
func validationMessage(err validator.FieldError) string {
	if err.Param() != "" {
		return fmt.Sprintf("failed validation: %s=%s", err.Tag(), err.Param())
	}

	return fmt.Sprintf("failed validation: %s", err.Tag())
}
