package customers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// tokenBytes is the entropy of an issued customer token.
const tokenBytes = 22

// IssueToken returns a URL-safe random token. Collisions are not checked.
func IssueToken() (string, error) {
	return issueTokenFrom(rand.Reader)
}

func issueTokenFrom(r io.Reader) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
