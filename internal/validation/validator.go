// Package validation checks outgoing request payloads before they reach the API client.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/hookahmix/miniapp/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for request payloads.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// notblank rejects values that are empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		return field.Kind() != reflect.String || strings.TrimSpace(field.String()) != ""
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a validation error listing every bad field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "validation failed")
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	fields := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		if _, seen := fieldErrors[e.Field()]; !seen {
			fields = append(fields, e.Field())
		}
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fieldErrors[f])
	}

	return domainerrors.ValidationWithDetails(strings.Join(parts, "; "), fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "обязательное поле"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("минимум %s символа", e.Param())
		}
		return "не меньше " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("максимум %s символов", e.Param())
		}
		return "не больше " + e.Param()
	case "oneof":
		return "допустимые значения: " + e.Param()
	case "gte":
		return "не меньше " + e.Param()
	case "lte":
		return "не больше " + e.Param()
	case "gt":
		return "больше " + e.Param()
	case "dive":
		return "некорректный элемент"
	default:
		return "некорректное значение"
	}
}
