package social

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "campusnet/backend/pkg/errors"
)

var validate = validator.New()

// Validate checks struct tags and reports failures as invalid input
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewInvalidInput(err.Error())
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return apperrors.NewInvalidInput(strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// NormalizeContent trims text content and enforces 1..max characters
func NormalizeContent(field, content string, max int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.NewEmptyContent(field)
	}
	if utf8.RuneCountInString(content) > max {
		return "", apperrors.NewContentTooLong(field, max)
	}
	return content, nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
