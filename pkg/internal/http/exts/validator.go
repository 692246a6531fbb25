package exts

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validation.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func ValidateStruct(data any) error {
	return validation.Struct(data)
}

// FieldErrors maps validation failures to the json names of the offending fields.
// Errors that are not validation failures are returned under the empty key.
func FieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	if err == nil {
		return out
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out[""] = append(out[""], err.Error())
		return out
	}

	for _, fe := range errs {
		out[fe.Field()] = append(out[fe.Field()], describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "oneof":
		return "Select a valid choice."
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}
