package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	oneOf := func(valid ...string) validator.Func {
		return func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			for _, s := range valid {
				if v == s {
					return true
				}
			}
			return false
		}
	}

	// Hall type (outdoor, hotel, garden, small, house, convention, chapel)
	validate.RegisterValidation("hall_type", oneOf("야외", "호텔", "가든", "스몰", "하우스", "컨벤션", "채플", ""))

	// Hall mood (bright, dark)
	validate.RegisterValidation("hall_mood", oneOf("밝은", "어두운", ""))

	// Meal price category (adult, child, preschool, drinks)
	validate.RegisterValidation("meal_category", oneOf("성인", "소인", "미취학", "주류", ""))

	// Wedding package type (bundled studio-dress-makeup, individual)
	validate.RegisterValidation("package_type", oneOf("스드메", "개별", ""))

	// Package item type (studio, dress, makeup)
	validate.RegisterValidation("package_item_type", oneOf("스튜디오", "드레스", "메이크업", ""))
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "hall_type":
			errors[field] = "Invalid hall type"
		case "hall_mood":
			errors[field] = "Invalid hall mood"
		case "meal_category":
			errors[field] = "Invalid meal category"
		case "package_type":
			errors[field] = "Invalid package type"
		case "package_item_type":
			errors[field] = "Invalid package item type"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
