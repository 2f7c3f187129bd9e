// Package content implements symmetric content keys for binary blobs such as
// photos and documents. A key carries its own algorithm, key, and IV and is
// distributed to readers inside an envelope.
package content

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/Revolution-Populi/revpop-samples/crypto/cbc"
	"github.com/Revolution-Populi/revpop-samples/crypto/envelope"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/crypto/secure"
)

const (
	// AlgorithmAES256CBC encrypts content with AES-256-CBC and PKCS#7 padding
	AlgorithmAES256CBC = "aes-256-cbc"
	// AlgorithmNoEncrypt passes content through unchanged
	AlgorithmNoEncrypt = "noencrypt"
)

// Key describes how a piece of content is encrypted. Key and IV are hex
// encoded and empty for AlgorithmNoEncrypt.
type Key struct {
	Algorithm string `json:"algo"`
	Key       string `json:"key,omitempty"`
	IV        string `json:"iv,omitempty"`
}

// MakeKey creates a random AES-256-CBC content key
func MakeKey() (*Key, error) {
	raw := make([]byte, cbc.KeySize)
	iv := make([]byte, cbc.IVSize)
	if err := secure.Random(raw); err != nil {
		return nil, err
	}
	if err := secure.Random(iv); err != nil {
		return nil, err
	}
	defer secure.Zeroize(raw)

	return &Key{
		Algorithm: AlgorithmAES256CBC,
		Key:       hex.EncodeToString(raw),
		IV:        hex.EncodeToString(iv),
	}, nil
}

// MakeNoEncryptKey creates a key that leaves content in the clear
func MakeNoEncryptKey() *Key {
	return &Key{Algorithm: AlgorithmNoEncrypt}
}

// IsNoEncrypt reports whether the key is the identity transform
func (k *Key) IsNoEncrypt() bool {
	return k.Algorithm == AlgorithmNoEncrypt
}

// Validate checks the algorithm and the key and IV sizes
func (k *Key) Validate() error {
	switch k.Algorithm {
	case AlgorithmNoEncrypt:
		return nil
	case AlgorithmAES256CBC:
		_, _, err := k.decode()
		return err
	default:
		return fmt.Errorf("unsupported content algorithm: %q", k.Algorithm)
	}
}

func (k *Key) decode() ([]byte, []byte, error) {
	raw, err := hex.DecodeString(k.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid content key encoding: %w", err)
	}
	if len(raw) != cbc.KeySize {
		return nil, nil, fmt.Errorf("invalid content key size: expected %d bytes, got %d", cbc.KeySize, len(raw))
	}

	iv, err := hex.DecodeString(k.IV)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid content IV encoding: %w", err)
	}
	if len(iv) != cbc.IVSize {
		return nil, nil, fmt.Errorf("invalid content IV size: expected %d bytes, got %d", cbc.IVSize, len(iv))
	}

	return raw, iv, nil
}

func (k *Key) cipher() (*cbc.AESCBCCipher, []byte, error) {
	if k.Algorithm != AlgorithmAES256CBC {
		return nil, nil, fmt.Errorf("unsupported content algorithm: %q", k.Algorithm)
	}

	raw, iv, err := k.decode()
	if err != nil {
		return nil, nil, err
	}
	defer secure.Zeroize(raw)

	c, err := cbc.NewAESCBC(raw)
	if err != nil {
		return nil, nil, err
	}
	return c, iv, nil
}

// Encrypt transforms plaintext with the key in one shot
func Encrypt(plaintext []byte, key *Key) ([]byte, error) {
	if key.IsNoEncrypt() {
		return bytes.Clone(plaintext), nil
	}

	c, iv, err := key.cipher()
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext, iv)
}

// Decrypt reverses Encrypt
func Decrypt(ciphertext []byte, key *Key) ([]byte, error) {
	if key.IsNoEncrypt() {
		return bytes.Clone(ciphertext), nil
	}

	c, iv, err := key.cipher()
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, iv)
}

// EncryptString encrypts the UTF-8 bytes of s and returns standard base64
func EncryptString(s string, key *Key) (string, error) {
	out, err := Encrypt([]byte(s), key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptString reverses EncryptString
func DecryptString(s string, key *Key) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid base64 content: %w", err)
	}

	out, err := Decrypt(raw, key)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewEncryptWriter returns a writer encrypting into w. Close must be called
// to flush the final block; it does not close w.
func NewEncryptWriter(w io.Writer, key *Key) (io.WriteCloser, error) {
	if key.IsNoEncrypt() {
		return nopWriteCloser{w}, nil
	}

	c, iv, err := key.cipher()
	if err != nil {
		return nil, err
	}
	return c.NewEncryptWriter(w, iv)
}

// NewDecryptReader returns a reader decrypting r
func NewDecryptReader(r io.Reader, key *Key) (io.Reader, error) {
	if key.IsNoEncrypt() {
		return r, nil
	}

	c, iv, err := key.cipher()
	if err != nil {
		return nil, err
	}
	return c.NewDecryptReader(r, iv)
}

// WrapKey seals the content key for a reader, granting read permission on
// the content it protects
func WrapKey(env *envelope.Envelope, key *Key, senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	return env.EncryptObject(key, senderPriv, recipientPub)
}

// UnwrapKey opens a content key sealed by WrapKey
func UnwrapKey(env *envelope.Envelope, sealed string, recipientPriv *keys.PrivateKey, senderPub *keys.PublicKey) (*Key, error) {
	var key Key
	if err := env.DecryptObject(sealed, recipientPriv, senderPub, &key); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &key, nil
}
