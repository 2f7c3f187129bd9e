package envelope

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/Revolution-Populi/revpop-samples/crypto/cbc"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/crypto/secure"
)

// Material is the symmetric state derived from a key pair and a nonce
type Material struct {
	Key      []byte
	IV       []byte
	Checksum uint32
}

// DeriveMaterial computes SHA512(u64le(nonce) || S) where S is the shared
// secret of priv and pub. The first 32 bytes are the AES key, the next 16 the
// IV, and the checksum is the first 4 bytes of SHA256 of the whole digest read
// as a little-endian uint32.
func DeriveMaterial(priv *keys.PrivateKey, pub *keys.PublicKey, nonce uint64) *Material {
	shared := priv.SharedSecret(pub)
	defer secure.Zeroize(shared)

	buf := make([]byte, 8, 8+len(shared))
	binary.LittleEndian.PutUint64(buf, nonce)
	buf = append(buf, shared...)
	defer secure.Zeroize(buf)

	material := sha512.Sum512(buf)
	defer secure.Zeroize(material[:])

	check := sha256.Sum256(material[:])

	m := &Material{
		Key:      make([]byte, cbc.KeySize),
		IV:       make([]byte, cbc.IVSize),
		Checksum: binary.LittleEndian.Uint32(check[:4]),
	}
	copy(m.Key, material[:cbc.KeySize])
	copy(m.IV, material[cbc.KeySize:cbc.KeySize+cbc.IVSize])
	return m
}

// Clear wipes the key and IV
func (m *Material) Clear() {
	secure.ZeroizeMultiple(m.Key, m.IV)
}

func (m *Material) encrypt(plaintext []byte) ([]byte, error) {
	c, err := cbc.NewAESCBC(m.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	ciphertext, err := c.Encrypt(plaintext, m.IV)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}
	return ciphertext, nil
}

func (m *Material) decrypt(ciphertext []byte) ([]byte, error) {
	c, err := cbc.NewAESCBC(m.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return c.Decrypt(ciphertext, m.IV)
}

// Encrypt AES-256-CBC encrypts plaintext under the material derived from the
// sender's private key and the recipient's public key.
func Encrypt(senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey, nonce uint64, plaintext []byte) ([]byte, uint32, error) {
	m := DeriveMaterial(senderPriv, recipientPub, nonce)
	defer m.Clear()

	ciphertext, err := m.encrypt(plaintext)
	if err != nil {
		return nil, 0, err
	}
	return ciphertext, m.Checksum, nil
}

// Decrypt re-derives the material from the reversed key pair and decrypts
// ciphertext. A checksum that differs from the derived one yields ErrInvalidKey.
func Decrypt(recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey, nonce uint64, ciphertext []byte, checksum uint32) ([]byte, error) {
	m := DeriveMaterial(recipientPriv, senderPub, nonce)
	defer m.Clear()

	if m.Checksum != checksum {
		return nil, errorsmod.Wrapf(ErrInvalidKey, "checksum %d does not match %d", checksum, m.Checksum)
	}

	plaintext, err := m.decrypt(ciphertext)
	if err != nil {
		return nil, errorsmod.Wrap(ErrMalformedEnvelope, err.Error())
	}
	return plaintext, nil
}
