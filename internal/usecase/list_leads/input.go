package list_leads

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrInvalidInput = errors.New("invalid list input")

// Input filters the admin listing. Zero Limit means DefaultLimit.
type Input struct {
	Kind   string `json:"kind" validate:"omitempty,oneof=contact quote"`
	Limit  int    `json:"limit" validate:"gte=0,lte=200"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// InputError lists every rejected field by its query parameter name
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatValidationErrors(err error) *InputError {
	out := &InputError{Fields: map[string]string{}}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out.Fields["input"] = err.Error()
		return out
	}

	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "oneof":
			out.Fields[fe.Field()] = "must be one of: " + fe.Param()
		case "gte":
			out.Fields[fe.Field()] = "must be at least " + fe.Param()
		case "lte":
			out.Fields[fe.Field()] = "must be at most " + fe.Param()
		default:
			out.Fields[fe.Field()] = "is invalid"
		}
	}
	return out
}
