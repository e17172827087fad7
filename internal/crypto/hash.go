package crypto

import (
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// HashParams configures the Argon2id digest used for passwords.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultHashParams returns the parameters every stored hash was computed with.
// Changing them invalidates existing hashes.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		KeyLength:   32,
	}
}

// HashPassword digests password concatenated with salt, keyed by the salt, and
// returns the result base64 encoded.
func HashPassword(password, salt string) string {
	params := DefaultHashParams()

	key := argon2.IDKey([]byte(password+salt), []byte(salt),
		params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return base64.StdEncoding.EncodeToString(key)
}

// VerifyPassword recomputes the digest with the stored salt and compares it to
// the stored hash in constant time.
func VerifyPassword(password, salt, hash string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}
