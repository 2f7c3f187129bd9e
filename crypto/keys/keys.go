// Package keys implements the secp256k1 account keys used to derive envelope
// secrets and sign record hashes: WIF import/export, prefixed public key
// strings, brain key derivation, and did:key identifiers.
package keys

import (
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
)

const (
	// DefaultPrefix is the address prefix of public key strings on the RevPop network
	DefaultPrefix = "RVP"
	// PrivateKeySize is the size of a serialized private scalar
	PrivateKeySize = 32
	// PublicKeySize is the size of a compressed public key
	PublicKeySize = 33

	wifVersion = 0x80
)

// PrivateKey is a secp256k1 private key
type PrivateKey struct {
	key *btcec.PrivateKey
}

// PublicKey is a secp256k1 public key
type PublicKey struct {
	key *btcec.PublicKey
}

// GeneratePrivateKey creates a new random private key
func GeneratePrivateKey() (*PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return &PrivateKey{key: priv}, nil
}

// PrivateKeyFromBytes builds a private key from a 32-byte big-endian scalar.
// Zero and values not below the curve order are rejected.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: expected %d bytes, got %d", PrivateKeySize, len(b))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("private key is not below the curve order")
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("private key is zero")
	}

	priv, _ := btcec.PrivKeyFromBytes(b)
	return &PrivateKey{key: priv}, nil
}

// FromWIF decodes a wallet import format private key
func FromWIF(wif string) (*PrivateKey, error) {
	raw, err := base58.Decode(wif)
	if err != nil {
		return nil, fmt.Errorf("invalid WIF encoding: %w", err)
	}
	if len(raw) != 1+PrivateKeySize+checksumSize {
		return nil, fmt.Errorf("invalid WIF length: %d", len(raw))
	}
	if raw[0] != wifVersion {
		return nil, fmt.Errorf("unexpected WIF version byte: 0x%02x", raw[0])
	}

	payload := raw[:1+PrivateKeySize]
	if !verifyChecksum(doubleSha256Checksum(payload), raw[1+PrivateKeySize:]) {
		return nil, fmt.Errorf("WIF checksum mismatch")
	}

	return PrivateKeyFromBytes(payload[1:])
}

// WIF encodes the key in wallet import format
func (k *PrivateKey) WIF() string {
	payload := make([]byte, 0, 1+PrivateKeySize+checksumSize)
	payload = append(payload, wifVersion)
	payload = append(payload, k.Bytes()...)
	payload = append(payload, doubleSha256Checksum(payload)...)
	return base58.Encode(payload)
}

// Bytes returns the 32-byte private scalar
func (k *PrivateKey) Bytes() []byte {
	return k.key.Serialize()
}

// PublicKey returns the matching public key
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: k.key.PubKey()}
}

// BTCEC exposes the underlying btcec key for signing
func (k *PrivateKey) BTCEC() *btcec.PrivateKey {
	return k.key
}

// Zero clears the private scalar
func (k *PrivateKey) Zero() {
	k.key.Zero()
}

// SharedSecret returns SHA-512 of the x coordinate of the ECDH point between
// this key and pub. Both parties of an exchange obtain the same 64 bytes.
func (k *PrivateKey) SharedSecret(pub *PublicKey) []byte {
	x := btcec.GenerateSharedSecret(k.key, pub.key)
	sum := sha512.Sum512(x)
	return sum[:]
}

// PublicKeyFromBytes parses a compressed or uncompressed SEC1 public key
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return &PublicKey{key: pub}, nil
}

// ParsePublicKey decodes a prefixed public key string such as "RVP6...".
func ParsePublicKey(s, prefix string) (*PublicKey, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("public key %q does not start with prefix %q", s, prefix)
	}

	raw, err := base58.Decode(s[len(prefix):])
	if err != nil {
		return nil, fmt.Errorf("invalid public key encoding: %w", err)
	}
	if len(raw) != PublicKeySize+checksumSize {
		return nil, fmt.Errorf("invalid public key length: %d", len(raw))
	}

	compressed := raw[:PublicKeySize]
	if !verifyChecksum(ripemd160Checksum(compressed), raw[PublicKeySize:]) {
		return nil, fmt.Errorf("public key checksum mismatch")
	}

	return PublicKeyFromBytes(compressed)
}

// Bytes returns the 33-byte compressed encoding
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeCompressed()
}

// String formats the key with DefaultPrefix
func (p *PublicKey) String() string {
	return p.StringWithPrefix(DefaultPrefix)
}

// StringWithPrefix formats the key as prefix + base58(compressed || ripemd160 checksum)
func (p *PublicKey) StringWithPrefix(prefix string) string {
	compressed := p.Bytes()
	payload := make([]byte, 0, PublicKeySize+checksumSize)
	payload = append(payload, compressed...)
	payload = append(payload, ripemd160Checksum(compressed)...)
	return prefix + base58.Encode(payload)
}

// Equal reports whether both keys are the same point
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.key.IsEqual(other.key)
}

// BTCEC exposes the underlying btcec key
func (p *PublicKey) BTCEC() *btcec.PublicKey {
	return p.key
}
