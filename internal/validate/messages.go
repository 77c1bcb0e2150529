package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// reason turns a failed constraint into a message suitable for API consumers.
func reason(fe validator.FieldError) string {
	param := fe.Param()
	kind := fe.Kind()
	if kind == reflect.Pointer {
		kind = fe.Type().Elem().Kind()
	}

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return "Required"
	case "min":
		return sizeReason(kind, "at least", param)
	case "max":
		return sizeReason(kind, "at most", param)
	case "len":
		return sizeReason(kind, "exactly", param)
	case "gte":
		return "Must be greater than or equal to " + param
	case "gt":
		return "Must be greater than " + param
	case "lte":
		return "Must be less than or equal to " + param
	case "lt":
		return "Must be less than " + param
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "Must be a date in layout " + param
	case "email":
		return "Invalid email"
	case "url", "http_url":
		return "Invalid url"
	case "alphanum":
		return "Must contain only letters and digits"
	case "numeric":
		return "Must be numeric"
	default:
		return fmt.Sprintf("Failed %q constraint", fe.Tag())
	}
}

func sizeReason(kind reflect.Kind, bound, param string) string {
	switch kind {
	case reflect.String:
		return fmt.Sprintf("Must contain %s %s character(s)", bound, param)
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("Must contain %s %s item(s)", bound, param)
	default:
		switch bound {
		case "at least":
			return "Must be greater than or equal to " + param
		case "at most":
			return "Must be less than or equal to " + param
		default:
			return "Must be equal to " + param
		}
	}
}
