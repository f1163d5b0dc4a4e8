package util

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is tuned for roughly 100ms per hash on server hardware.
const PasswordCost = 10

// HashPassword hashes a plain text password with a per-hash salt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether password matches hashedPassword.
// A malformed hash is treated as a mismatch.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
