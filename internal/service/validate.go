package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
)

type enumValue interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// enum accepts values of types that know their own valid set
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
}

// check runs struct validation and converts the first failure into a
// ValidationError.
func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "enum":
		return fmt.Sprintf("unrecognized value %v", fe.Value())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// patchError converts decode failures from audit.Diff and audit.Apply into
// ValidationErrors.
func patchError(err error) error {
	if errors.Is(err, audit.ErrUnknownField) {
		_, field, _ := strings.Cut(err.Error(), ": ")
		return invalid(field, "unknown field")
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return invalid(ute.Field, "must be of type %s", ute.Type)
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return invalid("", "malformed JSON: %v", se)
	}
	return err
}

// restrictPatch rejects fields that may not be patched.
func restrictPatch(patch map[string]json.RawMessage, allowed ...string) error {
	for k := range patch {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return invalid(k, "field cannot be updated")
		}
	}
	return nil
}

// rejectNulls fails when any of the non-nullable fields is patched to null.
func rejectNulls(patch map[string]json.RawMessage, fields ...string) error {
	for _, f := range fields {
		if raw, ok := patch[f]; ok && strings.TrimSpace(string(raw)) == "null" {
			return invalid(f, "may not be null")
		}
	}
	return nil
}
