package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier compares a plaintext secret with a stored hash.
// A nil error means the password matches.
type PasswordVerifier interface {
	Verify(hash, password string) error
}

// BcryptVerifier verifies bcrypt hashes.
type BcryptVerifier struct {
	// Cost is used for HashPassword and for the dummy hash. Zero means bcrypt.DefaultCost.
	Cost int

	once  sync.Once
	dummy []byte
}

func NewBcryptVerifier(cost int) *BcryptVerifier {
	return &BcryptVerifier{Cost: cost}
}

func (v *BcryptVerifier) cost() int {
	if v.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return v.Cost
}

func (v *BcryptVerifier) Verify(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Equalize runs one comparison against a throwaway hash so that an unknown
// email costs the same as a wrong password.
func (v *BcryptVerifier) Equalize(password string) {
	v.once.Do(func() {
		v.dummy, _ = bcrypt.GenerateFromPassword([]byte("alphabook-dummy-password"), v.cost())
	})
	_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
}

// HashPassword hashes a plaintext password with bcrypt at the verifier's cost.
func (v *BcryptVerifier) HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
