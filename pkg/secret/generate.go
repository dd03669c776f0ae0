package secret

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultGenerateLength is the default generated secret size in bytes.
const DefaultGenerateLength = 32

// Generate returns length random bytes, Base64 RawURL encoded.
// A length below minSaltLength is raised to it.
func Generate(length int) (string, error) {
	if length < int(minSaltLength) {
		length = int(minSaltLength)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("secret: generate: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
