package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strconv"
	"strings"
)

// AccountKeySet holds the owner, active, and memo keys of an account
type AccountKeySet struct {
	Owner  *PrivateKey
	Active *PrivateKey
	Memo   *PrivateKey
}

// NormalizeBrainKey trims the brain key and collapses whitespace runs into
// single spaces.
func NormalizeBrainKey(brainKey string) string {
	return strings.Join(strings.Fields(brainKey), " ")
}

// BrainPrivateKey derives the private key at sequence seq of a brain key as
// sha256(sha512(normalized + " " + seq)).
func BrainPrivateKey(brainKey string, seq int) (*PrivateKey, error) {
	if seq < 0 {
		return nil, fmt.Errorf("invalid brain key sequence: %d", seq)
	}

	seed := NormalizeBrainKey(brainKey) + " " + strconv.Itoa(seq)
	inner := sha512.Sum512([]byte(seed))
	outer := sha256.Sum256(inner[:])

	return PrivateKeyFromBytes(outer[:])
}

// AccountKeys derives the account key chain of a brain key: the owner key
// from the brain key, the active key from the owner WIF, and the memo key
// from the active WIF, all at sequence 0.
func AccountKeys(brainKey string) (*AccountKeySet, error) {
	owner, err := BrainPrivateKey(brainKey, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive owner key: %w", err)
	}

	active, err := BrainPrivateKey(owner.WIF(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive active key: %w", err)
	}

	memo, err := BrainPrivateKey(active.WIF(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive memo key: %w", err)
	}

	return &AccountKeySet{Owner: owner, Active: active, Memo: memo}, nil
}
