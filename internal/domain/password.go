package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// DefaultMinPasswordLength is the baseline policy length; deployments
	// may raise it through configuration but never lower it below 8.
	DefaultMinPasswordLength = 8
	maxPasswordLength        = 128

	passwordSymbols = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"
)

// PasswordPolicy validates credential strength before hashing.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy returns the policy used when no override is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: DefaultMinPasswordLength}
}

// Validate enforces the password policy: minimum length plus at least
// one uppercase, one lowercase, one digit, and one symbol from the
// fixed set.
func (p PasswordPolicy) Validate(password string) error {
	minLen := p.MinLength
	if minLen < DefaultMinPasswordLength {
		minLen = DefaultMinPasswordLength
	}
	if len(password) < minLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minLen)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: must be at most %d characters", ErrWeakPassword, maxPasswordLength)
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasDigit  bool
		hasSymbol bool
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: must include upper, lower, digit, and symbol", ErrWeakPassword)
	}
	return nil
}
