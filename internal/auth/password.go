package auth

import "golang.org/x/crypto/bcrypt"

const DefaultBcryptCost = 12

const (
	MinPasswordLength = 6
	// ограничение bcrypt
	MaxPasswordLength = 72
)

type PasswordHasher struct {
	cost int
}

// NewPasswordHasher cost <= 0 означает DefaultBcryptCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
