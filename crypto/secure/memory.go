// Package secure provides helpers for handling derived key material:
// explicit zeroisation, constant-time comparison and random fills.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"runtime"
)

// Zeroize overwrites data with zeros
func Zeroize(data []byte) {
	if len(data) == 0 {
		return
	}
	clear(data)
	runtime.KeepAlive(data)
}

// ZeroizeMultiple zeros multiple byte slices in a single call
func ZeroizeMultiple(slices ...[]byte) {
	for _, slice := range slices {
		Zeroize(slice)
	}
}

// Compare performs constant-time comparison of two byte slices
func Compare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Random fills data with cryptographically secure random bytes
func Random(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := rand.Read(data); err != nil {
		return fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return nil
}
