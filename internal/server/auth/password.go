package auth

import (
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashCost resolves the configured hash-cost secret into a bcrypt work
// factor. The secret value historically comes in two shapes: an integer work
// factor, or a pre-formatted "$2..." hash whose embedded cost is reused.
// An empty value falls back to the library default.
func HashCost(secret string) int {
	if strings.HasPrefix(secret, "$2") {
		if cost, err := bcrypt.Cost([]byte(secret)); err == nil {
			return cost
		}
		return bcrypt.DefaultCost
	}
	if cost, err := strconv.Atoi(strings.TrimSpace(secret)); err == nil && cost >= bcrypt.MinCost {
		return cost
	}
	return bcrypt.DefaultCost
}

// HashPassword hashes password with the work factor resolved from costSecret.
func HashPassword(password, costSecret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost(costSecret))
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
