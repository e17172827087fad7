package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const tokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// SaltLength is the length of per-user password salts.
	SaltLength = 16
	// SessionTokenLength is the length of bearer tokens issued at signup.
	SessionTokenLength = 16
)

var ErrInvalidTokenLength = errors.New("token length must be positive")

// RandomToken returns a random alphanumeric string of length n drawn from crypto/rand.
func RandomToken(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidTokenLength
	}

	result := make([]byte, n)
	charsetSize := big.NewInt(int64(len(tokenChars)))
	for i := range result {
		idx, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		result[i] = tokenChars[idx.Int64()]
	}

	return string(result), nil
}
