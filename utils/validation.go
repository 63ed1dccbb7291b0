package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateStruct runs the `validate` tags of dest and converts failures into a VALIDATION_ERROR
func ValidateStruct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return ValidationError(err)
	}
	return nil
}

// ValidationError converts a binding or validator error into a 400 AppError
// whose detail lists the offending fields
func ValidationError(err error) *AppError {
	appErr := BadRequest("VALIDATION_ERROR", "Invalid request data")

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return appErr.WithDetail(err.Error())
	}

	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("%s %s", fieldName(fieldErr), validationMessage(fieldErr)))
	}
	sort.Strings(messages)
	return appErr.WithDetail(strings.Join(messages, "; "))
}

// fieldName prefers the json name; gin's validator reports Go field names
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == fe.StructField() {
		return toSnake(name)
	}
	return name
}

func toSnake(s string) string {
	isUpper := func(c byte) bool { return c >= 'A' && c <= 'Z' }
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			lowerNext := i+1 < len(s) && !isUpper(s[i+1])
			if i > 0 && (!isUpper(s[i-1]) || lowerNext) {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email"
	case "startswith":
		return fmt.Sprintf("must start with %s", fe.Param())
	}
	return "is invalid"
}
