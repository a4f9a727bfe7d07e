package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of field errors. It is returned as an error by the
// checks in this package.
type Errors []ValidationError

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(messages, "; ")
}

// ByField returns the first message per field
func (e Errors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Validator wraps the go-playground validator. Field names in errors come
// from the form tag, falling back to the json tag.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	validate := validator.New()
	UseFormTagNames(validate)
	return &Validator{validate: validate}
}

// UseFormTagNames makes v report fields by their form (or json) tag
func UseFormTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// Struct validates s against its binding/validate tags
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return FromBinding(err)
	}
	return nil
}

// Text checks a single text value. maxLen counts runes; zero means unbounded.
func (v *Validator) Text(field, value string, required bool, maxLen int) *ValidationError {
	var tags []string
	if required {
		tags = append(tags, "required")
	} else {
		tags = append(tags, "omitempty")
	}
	if maxLen > 0 {
		tags = append(tags, "max="+strconv.Itoa(maxLen))
	}

	err := v.validate.Var(value, strings.Join(tags, ","))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := translate(verrs[0], field)
		return &fe
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// FromBinding converts a gin binding error into Errors. Errors that do not
// come from the validator (malformed numbers, unreadable bodies) become a
// single "form" entry.
func FromBinding(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(Errors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, translate(fe, fe.Field()))
		}
		return out
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return Errors{{Field: "form", Message: "must be a number", Value: numErr.Num}}
	}

	return Errors{{Field: "form", Message: err.Error()}}
}

// translate builds the message for fe under the given field name. Var
// checks carry no field name of their own.
func translate(fe validator.FieldError, field string) ValidationError {
	out := ValidationError{Field: field}

	switch fe.Tag() {
	case "required":
		out.Message = fmt.Sprintf("%s is required", field)
	case "max":
		out.Message = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		out.Value = fe.Value()
	case "min", "gt", "gte":
		out.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		out.Value = fe.Value()
	default:
		out.Message = fmt.Sprintf("%s is invalid", field)
		out.Value = fe.Value()
	}
	return out
}
