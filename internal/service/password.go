package service

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password users may choose through the API or CLI.
const MinPasswordLength = 6

var (
	// ErrPasswordEmpty is returned when hashing an empty password.
	ErrPasswordEmpty = errors.New("password must not be empty")
	// ErrPasswordTooShort is returned by CheckPasswordPolicy.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// CheckPasswordPolicy enforces the minimum length for passwords chosen interactively.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// PasswordHasher produces and verifies salted bcrypt hashes.
type PasswordHasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher constructs a hasher with the given bcrypt cost. Out of range costs fall back to
// bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (h *PasswordHasher) Verify(hash, password string) bool {
	if hash == "" {
		h.VerifyDummy(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy spends the same work as Verify against a hash nobody owns. It always fails and keeps
// lookups for unknown accounts from finishing measurably faster.
func (h *PasswordHasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("unused-account-placeholder"), h.cost)
	})
	if h.dummy != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	}
}
