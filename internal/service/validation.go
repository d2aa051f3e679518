package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Domain label limits.
const (
	MaxDomainLabelLength = 63
	MinPasswordLength    = 8
)

var domainLabelRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// ReservedLabels cannot be registered as tenant subdomains.
var ReservedLabels = map[string]bool{
	"www":       true,
	"api":       true,
	"admin":     true,
	"app":       true,
	"mail":      true,
	"smtp":      true,
	"imap":      true,
	"pop":       true,
	"ftp":       true,
	"ns1":       true,
	"ns2":       true,
	"cdn":       true,
	"static":    true,
	"assets":    true,
	"status":    true,
	"help":      true,
	"support":   true,
	"docs":      true,
	"central":   true,
	"localhost": true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("domainlabel", func(fl validator.FieldLevel) bool {
		return domainLabelRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notreserved", func(fl validator.FieldLevel) bool {
		return !ReservedLabels[fl.Field().String()]
	})
	return v
}

// validateInput runs struct tag validation and returns a *ValidationError
// with one message per failing field, or nil.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := NewValidationError()
	for _, fe := range fieldErrs {
		field, msg := describe(fe)
		ve.Add(field, msg)
	}
	return ve
}

func describe(fe validator.FieldError) (string, string) {
	field := fe.Field()
	name := humanize(field)

	switch fe.Tag() {
	case "required":
		return field, "The " + name + " field is required."
	case "max":
		return field, "The " + name + " field must not be greater than " + fe.Param() + " characters."
	case "min":
		return field, "The " + name + " field must be at least " + fe.Param() + " characters."
	case "email":
		return field, "The " + name + " field must be a valid email address."
	case "eqfield":
		// Reported on the confirmed field.
		return "password", "The password field confirmation does not match."
	case "domainlabel":
		return field, "The " + name + " field format is invalid."
	case "notreserved":
		return field, "The " + name + " is reserved."
	default:
		return field, "The " + name + " field is invalid."
	}
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
