package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var indianMobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// Validate is the shared struct validator. Field names in errors follow the
// json tags so they match request payloads.
var Validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl playground.FieldLevel) bool {
		return indianMobilePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// Fields maps each failing field to its message.
func (r ValidationResult) Fields() map[string]string {
	fields := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		fields[e.Field] = e.Message
	}
	return fields
}

// Struct validates s against its `validate` tags.
func Struct(s any) ValidationResult {
	result := ValidationResult{IsValid: true, Errors: []ValidationError{}}

	err := Validate.Struct(s)
	if err == nil {
		return result
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{Field: "", Message: err.Error()})
		return result
	}

	result.IsValid = false
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	return result
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "mobile":
		return "must be a 10-digit mobile number starting with 6-9"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
