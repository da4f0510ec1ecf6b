package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
)

// GenerateRecoveryCode returns a random 6-digit password-recovery code.
func GenerateRecoveryCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// ValidPassword requires at least 8 characters with an uppercase letter,
// a digit and a symbol.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && r != '_':
			hasSymbol = true
		}
	}
	return hasUpper && hasDigit && hasSymbol
}
