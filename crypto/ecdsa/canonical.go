package ecdsa

import (
	"fmt"
	"math/big"
)

const (
	// CompactSignatureSize is the size of a compact recoverable signature:
	// one header byte followed by 32-byte r and s
	CompactSignatureSize = 65

	// compactHeaderBase is 27 plus 4 for a compressed public key
	compactHeaderBase = 27 + 4
)

// IsLowS reports whether s is in the lower half of the group order
func IsLowS(s, N *big.Int) bool {
	if s == nil || N == nil {
		return false
	}

	halfN := new(big.Int).Rsh(N, 1)
	return s.Cmp(halfN) <= 0
}

// IsCanonical applies the graphene canonical rule to a compact signature:
// both r and s must encode to exactly 32 DER bytes, so neither may have its
// top bit set nor a redundant leading zero byte.
func IsCanonical(c []byte) bool {
	if len(c) != CompactSignatureSize {
		return false
	}

	return c[1]&0x80 == 0 &&
		!(c[1] == 0 && c[2]&0x80 == 0) &&
		c[33]&0x80 == 0 &&
		!(c[33] == 0 && c[34]&0x80 == 0)
}

// EncodeCompact serializes (r, s, recid) as header || r || s
func EncodeCompact(r, s *big.Int, recid byte) ([]byte, error) {
	if r == nil || s == nil {
		return nil, fmt.Errorf("r and s cannot be nil")
	}
	if recid > 3 {
		return nil, fmt.Errorf("invalid recovery id: %d", recid)
	}
	if r.BitLen() > 256 || s.BitLen() > 256 {
		return nil, fmt.Errorf("signature component exceeds 32 bytes")
	}

	out := make([]byte, CompactSignatureSize)
	out[0] = compactHeaderBase + recid
	r.FillBytes(out[1:33])
	s.FillBytes(out[33:65])
	return out, nil
}

// DecodeCompact splits a compact signature into (r, s, recid)
func DecodeCompact(c []byte) (*big.Int, *big.Int, byte, error) {
	if len(c) != CompactSignatureSize {
		return nil, nil, 0, fmt.Errorf("invalid signature length: expected %d, got %d", CompactSignatureSize, len(c))
	}
	if c[0] < 27 || c[0] > 34 {
		return nil, nil, 0, fmt.Errorf("invalid signature header byte: %d", c[0])
	}

	recid := (c[0] - 27) & 3
	r := new(big.Int).SetBytes(c[1:33])
	s := new(big.Int).SetBytes(c[33:65])
	return r, s, recid, nil
}
