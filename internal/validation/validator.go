// Package validation validates API requests and view configurations with
// validator/v10 and converts failures into VALIDATION domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/listenupapp/moviescope/internal/domain"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
)

var viewIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the dashboard's custom tags registered:
//
//	field   a plottable movie field (score, votes, gross, year)
//	genre   one of the closed set of genre labels
//	viewid  lower-case letters, digits and dashes
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "field", func(fl validator.FieldLevel) bool {
		return domain.Field(fl.Field().String()).Valid()
	})
	mustRegister(v, "genre", func(fl validator.FieldLevel) bool {
		return genre.IsKnown(fl.Field().String())
	})
	mustRegister(v, "viewid", func(fl validator.FieldLevel) bool {
		return viewIDPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag string.
func (v *Validator) Var(name string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			msg := v.friendlyMessage(validationErrs[0])
			return domainerrors.ValidationWithDetails(name+" "+msg, map[string]string{name: msg})
		}
		return err
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Namespace()[strings.IndexByte(e.Namespace(), '.')+1:]] = v.friendlyMessage(e)
	}

	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	return domainerrors.ValidationWithDetails(
		fmt.Sprintf("validation failed: %s %s", fields[0], fieldErrors[fields[0]]),
		fieldErrors,
	)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "nefield":
		return "must differ from " + e.Param()
	case "field":
		return "must be one of: score votes gross year"
	case "genre":
		return "must be a known genre"
	case "viewid":
		return "must contain only lower-case letters, digits and dashes"
	default:
		return "is invalid"
	}
}
