package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// TokenLength is the length of a remember-me token.
	TokenLength = 32

	tokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateToken returns a fixed-length alphanumeric token suitable for
// remember-me cookies.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	max := big.NewInt(int64(len(tokenChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		buf[i] = tokenChars[n.Int64()]
	}
	return string(buf), nil
}
