package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a plain password using the given
// cost.  Used by the account provisioning tooling and by tests.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored bcrypt hash with a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
