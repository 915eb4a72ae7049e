package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/northbeam/accounts-service/internal/domain"
)

var validate = validator.New()

// validateRequest runs struct-tag validation and converts the first
// failure into a domain error the response layer knows how to write.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return domain.ErrInvalidField("request", err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	if fe.Tag() == "required" {
		return domain.ErrMissingField(field)
	}
	return domain.ErrInvalidField(field, reasonFor(fe))
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}
