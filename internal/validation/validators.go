package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxExternalIDLength bounds identity-provider subject ids.
const MaxExternalIDLength = 255

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("external_id", validateExternalID); err != nil {
		panic(fmt.Sprintf("failed to register external_id validator: %v", err))
	}
}

// validateExternalID accepts non-blank ids without whitespace or control characters.
func validateExternalID(fl validator.FieldLevel) bool {
	return ValidateExternalID(fl.Field().String()) == nil
}

// ValidateExternalID validates an identity-provider subject id
func ValidateExternalID(value string) error {
	if value == "" {
		return fmt.Errorf("external id is required")
	}
	if len(value) > MaxExternalIDLength {
		return fmt.Errorf("external id exceeds %d characters", MaxExternalIDLength)
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("external id contains whitespace or control characters")
		}
	}
	return nil
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// FieldErrors flattens validator errors into "field: tag" strings for logs.
func FieldErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Namespace()+": "+fe.Tag())
	}
	return out
}
