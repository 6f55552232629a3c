// Package forms implements the create/edit dialog controller: declarative
// validation first, then the remote submission, as two independent stages.
package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks form structs against their validate struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Check returns per-field messages, or an empty map when the form is valid.
func (v *Validator) Check(form any) map[string]string {
	fieldErrors := make(map[string]string)
	err := v.validate.Struct(form)
	if err == nil {
		return fieldErrors
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors["general"] = "invalid form submission"
		return fieldErrors
	}
	for _, fieldErr := range validationErrs {
		fieldErrors[fieldErr.Field()] = messageFor(fieldErr)
	}
	return fieldErrors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "eqfield":
		return "Does not match " + strings.ToLower(fe.Param())
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return "Choose one of: " + fe.Param()
	case "numeric":
		return "Must be a number"
	case "datetime":
		return "Enter a valid date"
	default:
		return "Invalid value"
	}
}
