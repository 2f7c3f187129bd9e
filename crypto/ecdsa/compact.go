package ecdsa

import (
	"encoding/base64"
	"fmt"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Revolution-Populi/revpop-samples/crypto/digest"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
)

// maxCanonicalAttempts bounds the search for a canonical signature. Roughly a
// quarter of attempts succeed.
const maxCanonicalAttempts = 1024

// SignHash produces a canonical compact signature over a 32-byte hash
func SignHash(hash []byte, priv *keys.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("invalid hash size: expected 32 bytes, got %d", len(hash))
	}

	ecPriv := priv.BTCEC().ToECDSA()
	for attempt := 0; attempt < maxCanonicalAttempts; attempt++ {
		r, s, recid, err := DeterministicSign(ecPriv, hash, attempt)
		if err != nil {
			continue
		}

		compact, err := EncodeCompact(r, s, recid)
		if err != nil {
			return nil, err
		}
		if IsCanonical(compact) {
			return compact, nil
		}
	}

	return nil, fmt.Errorf("no canonical signature found after %d attempts", maxCanonicalAttempts)
}

// SignSha256 signs a hex SHA-256 digest and returns the base64 compact signature
func SignSha256(hashHex string, priv *keys.PrivateKey) (string, error) {
	hash, err := digest.DecodeSha256Hex(hashHex)
	if err != nil {
		return "", err
	}

	compact, err := SignHash(hash, priv)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(compact), nil
}

// SignBuffer hashes data with SHA-256 and signs the digest
func SignBuffer(data []byte, priv *keys.PrivateKey) (string, error) {
	return SignSha256(digest.BufSha256Hex(data), priv)
}

// VerifySha256 reports whether sig is a valid signature of the hex digest by pub.
// Malformed input is reported as an invalid signature.
func VerifySha256(sig, hashHex string, pub *keys.PublicKey) bool {
	hash, err := digest.DecodeSha256Hex(hashHex)
	if err != nil {
		return false
	}

	compact, err := base64.StdEncoding.DecodeString(sig)
	if err != nil || len(compact) != CompactSignatureSize {
		return false
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(compact[1:33]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(compact[33:65]); overflow || s.IsZero() {
		return false
	}

	return btcecdsa.NewSignature(&r, &s).Verify(hash, pub.BTCEC())
}

// RecoverSha256 recovers the public key that produced sig over the hex digest
func RecoverSha256(sig, hashHex string) (*keys.PublicKey, error) {
	hash, err := digest.DecodeSha256Hex(hashHex)
	if err != nil {
		return nil, err
	}

	compact, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if _, _, _, err := DecodeCompact(compact); err != nil {
		return nil, err
	}

	pub, _, err := btcecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", err)
	}

	return keys.PublicKeyFromBytes(pub.SerializeCompressed())
}
