// Package ecdsa provides RFC 6979 deterministic secp256k1 signing producing
// compact recoverable signatures in the graphene canonical form.
package ecdsa

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"
	"math/big"
)

// DeterministicSign signs a 32-byte hash with an RFC 6979 nonce. A non-zero
// attempt derives the nonce from sha256(hash || attempt zero bytes) so that
// callers can search for a canonical signature. The returned recovery id
// identifies R among the four candidate points.
func DeterministicSign(priv *ecdsa.PrivateKey, hash []byte, attempt int) (*big.Int, *big.Int, byte, error) {
	if priv == nil || priv.D == nil {
		return nil, nil, 0, fmt.Errorf("invalid private key")
	}

	if len(hash) == 0 {
		return nil, nil, 0, fmt.Errorf("hash cannot be empty")
	}
	if attempt < 0 {
		return nil, nil, 0, fmt.Errorf("invalid attempt: %d", attempt)
	}

	seed := hash
	if attempt > 0 {
		h := sha256.New()
		h.Write(hash)
		h.Write(make([]byte, attempt))
		seed = h.Sum(nil)
	}

	k := generateK(priv, seed, sha256.New)
	return signWithK(priv, hash, k)
}

// generateK implements RFC 6979 deterministic nonce generation
func generateK(priv *ecdsa.PrivateKey, hash []byte, hashFunc func() hash.Hash) *big.Int {
	curve := priv.Curve
	N := curve.Params().N
	bitSize := N.BitLen()
	byteSize := (bitSize + 7) / 8

	// Private key as a fixed-width octet string
	x := priv.D.Bytes()
	if len(x) < byteSize {
		padding := make([]byte, byteSize-len(x))
		x = append(padding, x...)
	}

	hm := hmac.New(hashFunc, nil)
	hlen := hm.Size()

	v := fill(hlen, 0x01)
	k := fill(hlen, 0x00)

	// K = HMAC_K(V || 0x00 || x || h1)
	k = hmacCompute(hashFunc, k, v, []byte{0x00}, x, hash)
	v = hmacCompute(hashFunc, k, v)

	// K = HMAC_K(V || 0x01 || x || h1)
	k = hmacCompute(hashFunc, k, v, []byte{0x01}, x, hash)
	v = hmacCompute(hashFunc, k, v)

	for {
		var t []byte
		for len(t)*8 < bitSize {
			v = hmacCompute(hashFunc, k, v)
			t = append(t, v...)
		}

		kInt := hashToInt(t, curve)
		if kInt.Sign() > 0 && kInt.Cmp(N) < 0 {
			return kInt
		}

		k = hmacCompute(hashFunc, k, v, []byte{0x00})
		v = hmacCompute(hashFunc, k, v)
	}
}

// signWithK performs ECDSA signing with a given k value and returns a low-S
// signature with its recovery id
func signWithK(priv *ecdsa.PrivateKey, hash []byte, k *big.Int) (*big.Int, *big.Int, byte, error) {
	curve := priv.Curve
	N := curve.Params().N

	// R = k*G, r = R.x mod N
	rx, ry := curve.ScalarBaseMult(k.Bytes())
	r := new(big.Int).Mod(rx, N)

	if r.Sign() == 0 {
		return nil, nil, 0, fmt.Errorf("invalid r value")
	}

	var recid byte
	if ry.Bit(0) == 1 {
		recid |= 1
	}
	if rx.Cmp(N) >= 0 {
		recid |= 2
	}

	// s = k^(-1) * (h + r*d) mod N
	e := hashToInt(hash, curve)

	kInv := new(big.Int).ModInverse(k, N)
	if kInv == nil {
		return nil, nil, 0, fmt.Errorf("k has no inverse")
	}

	s := new(big.Int).Mul(r, priv.D)
	s.Add(s, e)
	s.Mul(s, kInv)
	s.Mod(s, N)

	if s.Sign() == 0 {
		return nil, nil, 0, fmt.Errorf("invalid s value")
	}

	// Negating s mirrors R, which flips the parity bit of the recovery id
	if !IsLowS(s, N) {
		s.Sub(N, s)
		recid ^= 1
	}

	return r, s, recid, nil
}

// hashToInt converts a hash value to an integer for ECDSA operations
func hashToInt(hash []byte, curve elliptic.Curve) *big.Int {
	N := curve.Params().N
	orderBits := N.BitLen()
	orderBytes := (orderBits + 7) / 8

	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}

	ret := new(big.Int).SetBytes(hash)
	excess := len(hash)*8 - orderBits
	if excess > 0 {
		ret.Rsh(ret, uint(excess))
	}

	return ret
}

// hmacCompute computes HMAC with concatenated data
func hmacCompute(hashFunc func() hash.Hash, key []byte, data ...[]byte) []byte {
	mac := hmac.New(hashFunc, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

func fill(size int, value byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = value
	}
	return b
}
