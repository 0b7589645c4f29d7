package webhook

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret creates a cryptographically random webhook signing secret
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
