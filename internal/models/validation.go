package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidationError represents a single failed field rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateDirective checks that a normalised directive names a namespace and directive
func ValidateDirective(d *Directive) error {
	return translate(validate.Struct(d))
}

// ValidateDevice checks that a backend descriptor has an id, a name and a
// recognised device type
func ValidateDevice(d *BackendDevice) error {
	return translate(validate.Struct(d))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	msg := fmt.Sprintf("%s is required", fe.Field())
	if fe.Tag() == "oneof" {
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}

	return &ValidationError{
		Field:   fe.Field(),
		Message: msg,
		Value:   fe.Value(),
	}
}
