package filepolicy

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// randomNameBytes is hex-encoded into the 16-character random segment.
const randomNameBytes = 8

// NewStoredName returns a fresh stored filename: the current unix-millis
// timestamp, an underscore, 16 hex characters of randomness, and the
// validated extension. The original filename never leaks into it.
func NewStoredName(ext string) (string, error) {
	b := make([]byte, randomNameBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating stored name: %w", err)
	}
	return fmt.Sprintf("%d_%s.%s", time.Now().UnixMilli(), hex.EncodeToString(b), ext), nil
}

var storedNamePattern = regexp.MustCompile(`^[0-9]+_[0-9a-f]{16}\.[a-z0-9]+$`)

// ValidStoredName reports whether a client-supplied name has the shape
// NewStoredName produces. Lookups by anything else cannot match.
func ValidStoredName(name string) bool {
	return len(name) <= maxNameBytes && storedNamePattern.MatchString(name)
}
