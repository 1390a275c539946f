// Package validation validates request structs with go-playground/validator.
// A single validator instance is shared because it caches struct metadata.
//
//	type coverRequest struct {
//	    URL      string `json:"url" validate:"required,url"`
//	    PublicID string `json:"public_id" validate:"required"`
//	}
//	if err := validation.Struct(&req); err != nil {
//	    httpx.Error(w, r, err) // 400
//	}
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names rather than Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
			return iataPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// RequestValidationError is returned by Struct. It maps to HTTP 400.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) StatusCode() int { return http.StatusBadRequest }

// Error reports the first failing field, e.g. "url is required".
func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return message(e.Fields[0])
}

func message(f FieldError) string {
	switch f.Tag {
	case "required":
		return f.Field + " is required"
	case "url", "http_url":
		return f.Field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.Field, f.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", f.Field, f.Param)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "iata":
		return f.Field + " must be a 3-letter IATA code"
	case "datetime":
		return fmt.Sprintf("%s must match %s", f.Field, f.Param)
	case "len":
		return fmt.Sprintf("%s must be %s characters long", f.Field, f.Param)
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", f.Field, strings.ToLower(f.Param))
	default:
		return fmt.Sprintf("%s failed %s validation", f.Field, f.Tag)
	}
}

// Struct validates s and returns a *RequestValidationError on failure.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &RequestValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// Var validates a single value against tag, reporting it as field.
func Var(field string, value any, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return &RequestValidationError{Fields: []FieldError{{Field: field, Tag: verrs[0].Tag(), Param: verrs[0].Param()}}}
}
