package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: nt_{prefix}_{secret}
// Example: nt_7a9f3c_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	TokenPrefixLen = 6
	TokenSecretLen = 32
)

var (
	// ErrInvalidTokenFormat indicates the bearer token is malformed.
	ErrInvalidTokenFormat = errors.New("invalid access token format")

	tokenFormatRegex = regexp.MustCompile(`^nt_([a-f0-9]{6})_([a-f0-9]{32})$`)
)

// IssuedToken is a freshly generated access token.
type IssuedToken struct {
	Plaintext string // returned to the client once
	Hash      string
	Prefix    string
}

// GenerateToken creates a new access token and its storage hash.
func GenerateToken() (*IssuedToken, error) {
	prefix, err := randomHex(TokenPrefixLen / 2)
	if err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	secret, err := randomHex(TokenSecretLen / 2)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	plaintext := "nt_" + prefix + "_" + secret

	hash, err := HashPassword(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash token: %w", err)
	}

	return &IssuedToken{Plaintext: plaintext, Hash: hash, Prefix: prefix}, nil
}

// ParsedToken holds the parts of a plaintext token.
type ParsedToken struct {
	Prefix string
	Secret string
}

// ParseToken splits a plaintext token into its parts.
func ParseToken(token string) (*ParsedToken, error) {
	m := tokenFormatRegex.FindStringSubmatch(token)
	if m == nil {
		return nil, ErrInvalidTokenFormat
	}
	return &ParsedToken{Prefix: m[1], Secret: m[2]}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
