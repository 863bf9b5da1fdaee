package customer

import (
	"strings"

	"customer-service/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

// ProfileInput is the validated shape of an incoming create/update request
// before it is mapped onto a Customer.
type ProfileInput struct {
	Name     string
	Email    string
	Password string
}

const msgEmailRegistered = "Email already registered"

var validate = validator.New()

// Rule inspects one aspect of the input and yields at most one violation.
// Rules are evaluated together, never short-circuited, so the caller can
// report every violation in a single response.
type Rule func(in ProfileInput) *apperrors.FieldViolation

func nameNotBlank(in ProfileInput) *apperrors.FieldViolation {
	if strings.TrimSpace(in.Name) == "" {
		return &apperrors.FieldViolation{Field: "name", Message: "Name cannot be empty"}
	}
	return nil
}

func emailWellFormed(in ProfileInput) *apperrors.FieldViolation {
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return &apperrors.FieldViolation{Field: "email", Message: "Email must be a valid email address"}
	}
	return nil
}

func passwordNotBlank(in ProfileInput) *apperrors.FieldViolation {
	if strings.TrimSpace(in.Password) == "" {
		return &apperrors.FieldViolation{Field: "password", Message: "Password cannot be empty"}
	}
	return nil
}

var profileRules = []Rule{
	nameNotBlank,
	emailWellFormed,
	passwordNotBlank,
}

// ValidateProfile runs every rule and returns the aggregated violations. An
// empty slice means the input is acceptable.
func ValidateProfile(in ProfileInput) []apperrors.FieldViolation {
	var violations []apperrors.FieldViolation
	for _, rule := range profileRules {
		if v := rule(in); v != nil {
			violations = append(violations, *v)
		}
	}
	return violations
}
