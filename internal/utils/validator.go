package utils

import (
	"Foodgram-Backend/domain"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	Validate *validator.Validate

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func InitValidator() {
	if Validate != nil {
		return
	}
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	Validate = v
}

// ValidationErrors converts validator output into a per-field domain error.
// Errors of any other type are returned unchanged.
func ValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &domain.ValidationError{}
	for _, e := range fieldErrs {
		result.Add(e.Field(), friendlyMessage(e))
	}
	return result
}

// ValidateStruct runs struct-tag validation and returns a *domain.ValidationError on failure.
func ValidateStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return ValidationErrors(err)
	}
	return nil
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", e.Param())
	case "uuid":
		return "must be a valid UUID"
	case "username":
		return "enter a valid username: letters, digits and @/./+/-/_ only"
	case "gte":
		return "ensure this value is greater than or equal to " + e.Param()
	default:
		return "invalid value"
	}
}
