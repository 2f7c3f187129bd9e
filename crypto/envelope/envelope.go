// Package envelope implements the key-pair-derived encryption wrapper that
// protects serialized records and binary blobs. The symmetric key, IV, and
// checksum come from the ECDH secret of the sender and recipient keys mixed
// with a unique nonce.
package envelope

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/Revolution-Populi/revpop-samples/crypto/cbc"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
)

const checksumSize = 4

// Envelope seals objects and buffers for a recipient. It owns the nonce
// generator so that nonces never repeat within a process.
type Envelope struct {
	nonces *NonceGenerator
}

// New creates an Envelope with a freshly seeded nonce generator
func New() (*Envelope, error) {
	g, err := NewNonceGenerator()
	if err != nil {
		return nil, err
	}
	return &Envelope{nonces: g}, nil
}

// NewWithNonces creates an Envelope drawing nonces from g
func NewWithNonces(g *NonceGenerator) *Envelope {
	return &Envelope{nonces: g}
}

// Nonces returns the generator used by the envelope
func (e *Envelope) Nonces() *NonceGenerator {
	return e.nonces
}

// Seal encrypts data under nonce with the checksum embedded ahead of the
// plaintext, so the envelope is self-verifying on open.
func Seal(senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey, nonce uint64, data []byte) ([]byte, error) {
	m := DeriveMaterial(senderPriv, recipientPub, nonce)
	defer m.Clear()

	payload := make([]byte, checksumSize+len(data))
	binary.LittleEndian.PutUint32(payload, m.Checksum)
	copy(payload[checksumSize:], data)

	return m.encrypt(payload)
}

// Open reverses Seal. A padding failure or a checksum mismatch after
// decryption is reported as ErrInvalidKey.
func Open(recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey, nonce uint64, ciphertext []byte) ([]byte, error) {
	m := DeriveMaterial(recipientPriv, senderPub, nonce)
	defer m.Clear()

	payload, err := m.decrypt(ciphertext)
	if err != nil {
		if errors.Is(err, cbc.ErrInvalidCiphertext) {
			return nil, errorsmod.Wrap(ErrMalformedEnvelope, err.Error())
		}
		return nil, errorsmod.Wrap(ErrInvalidKey, err.Error())
	}
	if len(payload) < checksumSize || binary.LittleEndian.Uint32(payload) != m.Checksum {
		return nil, errorsmod.Wrap(ErrInvalidKey, "embedded checksum mismatch")
	}

	return payload[checksumSize:], nil
}

// EncryptObject serializes v as JSON and seals it into "<nonce>:<base64 ciphertext>"
func (e *Envelope) EncryptObject(v any, senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", errorsmod.Wrap(err, "failed to serialize object")
	}

	nonce := e.nonces.Next()
	ciphertext, err := Seal(senderPriv, recipientPub, nonce, plain)
	if err != nil {
		return "", err
	}

	return FormatNonce(nonce) + ":" + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptObject opens an object envelope and unmarshals the JSON into out
func (e *Envelope) DecryptObject(s string, recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey, out any) error {
	plain, err := DecryptObjectBytes(s, recipientPriv, senderPub)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return errorsmod.Wrap(ErrMalformedEnvelope, err.Error())
	}
	return nil
}

// DecryptObjectBytes opens an object envelope and returns the raw JSON
func DecryptObjectBytes(s string, recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey) ([]byte, error) {
	nonceStr, body, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errorsmod.Wrap(ErrMalformedEnvelope, "missing nonce separator")
	}

	nonce, err := ParseNonce(nonceStr)
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, errorsmod.Wrap(ErrMalformedEnvelope, err.Error())
	}

	return Open(recipientPriv, senderPub, nonce, ciphertext)
}

// EncryptBuffer seals buf into [nonce length][nonce decimal bytes][ciphertext]
func (e *Envelope) EncryptBuffer(buf []byte, senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey) ([]byte, error) {
	nonce := e.nonces.Next()
	ciphertext, err := Seal(senderPriv, recipientPub, nonce, buf)
	if err != nil {
		return nil, err
	}

	nonceBytes := []byte(FormatNonce(nonce))
	out := make([]byte, 0, 1+len(nonceBytes)+len(ciphertext))
	out = append(out, byte(len(nonceBytes)))
	out = append(out, nonceBytes...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptBuffer opens a buffer envelope
func (e *Envelope) DecryptBuffer(buf []byte, recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey) ([]byte, error) {
	if len(buf) < 1 {
		return nil, errorsmod.Wrap(ErrMalformedEnvelope, "empty buffer")
	}

	n := int(buf[0])
	if len(buf) < 1+n {
		return nil, errorsmod.Wrapf(ErrMalformedEnvelope, "nonce length %d exceeds buffer", n)
	}

	nonce, err := ParseNonce(string(buf[1 : 1+n]))
	if err != nil {
		return nil, err
	}

	return Open(recipientPriv, senderPub, nonce, buf[1+n:])
}
