package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for stored passwords.
const PasswordCost = 10

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

type Hasher struct {
	Cost int
}

func NewHasher() Hasher { return Hasher{Cost: PasswordCost} }

func (h Hasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = PasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether pw matches hashed. A malformed hash never matches.
func (h Hasher) Verify(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
