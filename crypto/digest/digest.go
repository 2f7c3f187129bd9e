// Package digest holds the hash helpers used for commitments, signatures, and
// content-addressed blob identifiers.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sha256Hex returns the lowercase hex SHA-256 of the UTF-8 bytes of s
func Sha256Hex(s string) string {
	return BufSha256Hex([]byte(s))
}

// BufSha256Hex returns the lowercase hex SHA-256 of buf
func BufSha256Hex(buf []byte) string {
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Sha256 returns the raw SHA-256 of buf
func Sha256(buf []byte) []byte {
	sum := sha256.Sum256(buf)
	return sum[:]
}

// DecodeSha256Hex parses a 64 character hex digest
func DecodeSha256Hex(h string) ([]byte, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("invalid hex digest: %w", err)
	}
	if len(raw) != sha256.Size {
		return nil, fmt.Errorf("invalid digest length: expected %d bytes, got %d", sha256.Size, len(raw))
	}
	return raw, nil
}

// BlobCID computes the CIDv1 (raw codec, sha2-256) identifying data
func BlobCID(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to create multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// VerifyBlobCID checks that the raw-codec CID id addresses data
func VerifyBlobCID(id string, data []byte) error {
	expected, err := cid.Parse(id)
	if err != nil {
		return fmt.Errorf("failed to parse CID: %w", err)
	}
	if expected.Type() != cid.Raw {
		return fmt.Errorf("unsupported CID codec: 0x%x", expected.Type())
	}

	decoded, err := multihash.Decode(expected.Hash())
	if err != nil {
		return fmt.Errorf("failed to decode multihash: %w", err)
	}

	mh, err := multihash.Sum(data, decoded.Code, decoded.Length)
	if err != nil {
		return fmt.Errorf("failed to create multihash: %w", err)
	}
	calculated := cid.NewCidV1(cid.Raw, mh)

	if !expected.Equals(calculated) {
		return fmt.Errorf(
			"CID verification failed: expected %s, calculated %s",
			expected.String(),
			calculated.String(),
		)
	}
	return nil
}
