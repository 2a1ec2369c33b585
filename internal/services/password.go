package services

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	// Hash returns the hash of a plaintext password
	Hash(password string) (string, error)
	// Compare returns an error when the password does not match the hash
	Compare(hash, password string) error
}

// bcryptHasher implements PasswordHasher with bcrypt
type bcryptHasher struct{}

// NewBcryptHasher creates a bcrypt-backed password hasher
func NewBcryptHasher() *bcryptHasher {
	return &bcryptHasher{}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
