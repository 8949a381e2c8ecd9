package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventory-backend/domain/product"
	apperrors "inventory-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// image_url accepts the formats the store layer recognizes
	_ = v.RegisterValidation("image_url", func(fl validator.FieldLevel) bool {
		return product.ValidImageURL(fl.Field().String())
	})

	return v
}

// ValidateStruct validates a struct based on its validation tags and
// returns one FieldError per invalid field, or nil when valid.
func ValidateStruct(s interface{}) []apperrors.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Field: "body", Message: err.Error()}}
	}

	fields := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, apperrors.FieldError{
			Field:   strings.ToLower(e.Field()),
			Message: formatFieldError(e),
		})
	}
	return fields
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "image_url":
		return fmt.Sprintf("%s must be a valid image URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
