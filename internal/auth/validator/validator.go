// Package validator registers the password rules used by auth requests.
package validator

import (
	"unicode"

	platformvalidator "inspection_portal/platform/validator"

	"github.com/go-playground/validator/v10"
)

// PasswordTag is the struct tag that enforces PasswordPolicy.
const PasswordTag = "strongpassword"

// PasswordPolicy describes the password requirements for API error messages
const PasswordPolicy = "password must be at least 8 characters and include an uppercase letter, a lowercase letter and a number"

// Register adds the password rule to v.
func Register(v *platformvalidator.Validator) error {
	return v.RegisterValidation(PasswordTag, validateStrongPassword)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword reports whether password satisfies PasswordPolicy.
func IsStrongPassword(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}
