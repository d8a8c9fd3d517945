// Package validator wraps go-playground/validator with JSON field names
// and a flat field → message map for API responses.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/hall-booking/internal/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		r := fl.Field().String()
		return r == "" || model.ValidRole(strings.ToUpper(r))
	})
	_ = validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		_, err := model.ParseBookingStatus(fl.Field().String())
		return err == nil
	})
}

// Validate validates a struct and returns a map of field errors, or nil.
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "email":
			out[field] = "Invalid email format"
		case "min":
			out[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			out[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			out[field] = "Value must be at least " + fe.Param()
		case "gt":
			out[field] = "Value must be greater than " + fe.Param()
		case "lte":
			out[field] = "Value must be at most " + fe.Param()
		case "gtfield":
			out[field] = "Value must be after " + fe.Param()
		case "role":
			out[field] = "Invalid role. Must be: USER, HALL_OWNER or ADMIN"
		case "booking_status":
			out[field] = "Invalid status"
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}
