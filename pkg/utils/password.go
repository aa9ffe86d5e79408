package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a self-describing bcrypt digest with a fresh salt.
// A cost below bcrypt.MinCost falls back to bcrypt.DefaultCost.
func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hashed. Malformed digests are a mismatch.
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
