package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var ErrPasswordTooShort = errors.New("credentials: password too short")

// Hash hashes a plaintext password using bcrypt. The plaintext is never
// stored or logged; callers persist only the returned hash.
func Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a stored hash in constant time.
// A nil return means the password matches.
func Verify(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}
