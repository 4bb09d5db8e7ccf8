package util

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateUUID generates a random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// MessageID builds an RFC 5322 Message-ID for an outgoing alert mail.
// domain falls back to the local hostname, then to "localhost".
func MessageID(domain string) string {
	if domain == "" {
		if h, err := os.Hostname(); err == nil && h != "" {
			domain = h
		} else {
			domain = "localhost"
		}
	}
	return fmt.Sprintf("<%s@%s>", GenerateUUID(), domain)
}
