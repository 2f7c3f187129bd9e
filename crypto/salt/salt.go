// Package salt generates the random salts mixed into per-field disclosure
// commitments.
package salt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// DisclosureSaltSize is the salt size of a disclosure unit (64 bits)
	DisclosureSaltSize = 8
	// MinSaltSize defines the minimum acceptable salt size
	MinSaltSize = 8
	// MaxSaltSize bounds the size of decoded salts
	MaxSaltSize = 1024
)

// Salt holds salt bytes. Its String form is redacted.
type Salt struct {
	value []byte
}

// Generate reads size random bytes from crypto/rand
func Generate(size int) (*Salt, error) {
	return generateFrom(rand.Reader, size)
}

// GenerateDisclosure creates a salt sized for disclosure commitments
func GenerateDisclosure() (*Salt, error) {
	return Generate(DisclosureSaltSize)
}

func checkSize(size int) error {
	if size < MinSaltSize {
		return fmt.Errorf("salt size too small: minimum %d bytes required, got %d", MinSaltSize, size)
	}
	if size > MaxSaltSize {
		return fmt.Errorf("salt size too large: maximum %d bytes allowed, got %d", MaxSaltSize, size)
	}
	return nil
}

func generateFrom(r io.Reader, size int) (*Salt, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("failed to generate random salt: %w", err)
	}
	return &Salt{value: b}, nil
}

// FromBase64 decodes a salt as stored in record parts
func FromBase64(s string) (*Salt, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 salt: %w", err)
	}
	if err := checkSize(len(b)); err != nil {
		return nil, err
	}
	return &Salt{value: b}, nil
}

// Bytes returns a copy of the salt bytes
func (s *Salt) Bytes() []byte {
	if s == nil {
		return nil
	}
	return append([]byte(nil), s.value...)
}

// Base64 returns the standard base64 encoding used on the wire
func (s *Salt) Base64() string {
	if s == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(s.value)
}

func (s *Salt) String() string {
	if s == nil || s.value == nil {
		return "Salt{<nil>}"
	}
	return fmt.Sprintf("Salt{size=%d}", len(s.value))
}

// Clear zeros the salt
func (s *Salt) Clear() {
	if s == nil {
		return
	}
	clear(s.value)
	s.value = nil
}

// Source produces fresh salts
type Source interface {
	NewSalt() (*Salt, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func() (*Salt, error)

// NewSalt implements Source
func (f SourceFunc) NewSalt() (*Salt, error) { return f() }

// RandomSource draws disclosure-sized salts from crypto/rand
var RandomSource Source = SourceFunc(GenerateDisclosure)

// ReaderSource draws disclosure-sized salts from r. Tests use it to build
// records with known salts.
func ReaderSource(r io.Reader) Source {
	return SourceFunc(func() (*Salt, error) {
		return generateFrom(r, DisclosureSaltSize)
	})
}
