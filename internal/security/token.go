// Package security keeps GitLab credentials out of logs and error messages.
package security

import (
	"fmt"
	"strings"
)

const (
	// Minimum token length to show partial masking (show last 4 chars).
	minTokenLengthForPartialMask = 8
	// Number of characters to show when masking.
	maskShowChars = 4
	maskEmpty     = "[empty]"
	maskRedacted  = "[redacted]"
)

// SecureToken wraps an access token so that formatting it never prints the secret.
//
//	token := NewSecureToken("glpat-secret123456")
//	fmt.Printf("Token: %s", token) // Output: "Token: [token:****3456]"
//
// SecureToken implements envconfig.Decoder, so it can be loaded straight from
// the environment.
type SecureToken struct {
	value string
}

// NewSecureToken creates a new SecureToken from a string value.
func NewSecureToken(token string) SecureToken {
	return SecureToken{value: strings.TrimSpace(token)}
}

// Decode implements envconfig.Decoder.
func (t *SecureToken) Decode(value string) error {
	t.value = strings.TrimSpace(value)
	return nil
}

// String returns a masked representation.
func (t SecureToken) String() string {
	if t.value == "" {
		return maskEmpty
	}

	if len(t.value) < minTokenLengthForPartialMask {
		return maskRedacted
	}

	lastChars := t.value[len(t.value)-maskShowChars:]
	return fmt.Sprintf("[token:****%s]", lastChars)
}

// GoString prevents leaking through %#v.
func (t SecureToken) GoString() string {
	return t.String()
}

// Value returns the raw token. Only pass the result to authentication code.
func (t SecureToken) Value() string {
	return t.value
}

// IsEmpty returns true if the token is empty.
func (t SecureToken) IsEmpty() bool {
	return t.value == ""
}
