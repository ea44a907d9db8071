package admin

import "golang.org/x/crypto/bcrypt"

const (
	// HashCost is the bcrypt work factor.
	HashCost = 10
	// MaxPasswordLen is the longest password bcrypt accepts, in bytes.
	MaxPasswordLen = 72
)

// HashPassword returns a self-contained salted hash of `plain`. Every call uses a fresh salt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), HashCost)
}

// VerifyPassword reports whether `plain` matches `hash`. A malformed hash never matches.
func VerifyPassword(plain string, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
