package validator

import (
	"fmt"
	"regexp"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	seatRowRgx = regexp.MustCompile(`^[A-Z]{1,2}$`)
	phoneRgx   = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,18}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("fare", validateFareCategory)
	validator.RegisterValidation("seat_row", validateSeatRow)
	validator.RegisterValidation("phone", validatePhone)

	return validator
}

func validateFareCategory(fl validator.FieldLevel) bool {
	switch domain.FareCategory(fl.Field().String()) {
	case domain.FareAdult, domain.FareChild, domain.FareAccessible, domain.FareCompanion:
		return true
	}

	return false
}

func validateSeatRow(fl validator.FieldLevel) bool {
	return seatRowRgx.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must have at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "alpha":
		return "must contain only letters"
	case "fare":
		return "must be one of Adult, Child, Accessible, Companion"
	case "seat_row":
		return "must be one or two uppercase letters"
	case "unique":
		return "must not contain duplicates"
	case "phone":
		return "must be a valid phone number"
	default:
		return "is invalid"
	}
}
