// Package keystore seals private keys into password protected key files.
// The password is stretched with Argon2id into an AES-256-CBC key and an
// HMAC-SHA256 key; the MAC covers the IV and the ciphertext.
package keystore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"

	"github.com/Revolution-Populi/revpop-samples/crypto/cbc"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/crypto/secure"
)

// Version of the key file format
const Version = 1

const keyLength = cbc.KeySize

// Codespace is the registration namespace of keystore errors
const Codespace = "keystore"

var (
	// ErrWrongPassword is returned when the MAC does not verify
	ErrWrongPassword = errorsmod.Register(Codespace, 2, "wrong password")
	// ErrWeakPassword is returned when a password fails the policy
	ErrWeakPassword = errorsmod.Register(Codespace, 3, "weak password")
	// ErrMalformedKeyFile is returned for key files that cannot be decoded
	ErrMalformedKeyFile = errorsmod.Register(Codespace, 4, "malformed key file")
)

// File is the JSON key file
type File struct {
	Version    int    `json:"version"`
	PublicKey  string `json:"public_key"`
	KDF        string `json:"kdf"`
	Params     Params `json:"params"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	MAC        string `json:"mac"`
}

type sealOptions struct {
	params Params
	policy Policy
	prefix string
}

// Option configures Seal
type Option func(*sealOptions)

// WithParams sets the Argon2id parameters
func WithParams(p Params) Option {
	return func(o *sealOptions) { o.params = p }
}

// WithPolicy sets the password policy
func WithPolicy(p Policy) Option {
	return func(o *sealOptions) { o.policy = p }
}

// WithPrefix sets the address prefix of the recorded public key
func WithPrefix(prefix string) Option {
	return func(o *sealOptions) { o.prefix = prefix }
}

// Seal encrypts priv under password
func Seal(priv *keys.PrivateKey, password []byte, opts ...Option) (*File, error) {
	o := sealOptions{params: DefaultParams(), policy: DefaultPolicy(), prefix: keys.DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.policy.Check(password); err != nil {
		return nil, err
	}
	if err := o.params.Validate(); err != nil {
		return nil, err
	}

	salt := make([]byte, o.params.SaltLength)
	if err := secure.Random(salt); err != nil {
		return nil, err
	}
	iv := make([]byte, cbc.IVSize)
	if err := secure.Random(iv); err != nil {
		return nil, err
	}

	encKey, macKey := o.params.derive(password, salt)
	defer secure.ZeroizeMultiple(encKey, macKey)

	c, err := cbc.NewAESCBC(encKey)
	if err != nil {
		return nil, err
	}
	raw := priv.Bytes()
	defer secure.Zeroize(raw)

	ct, err := c.Encrypt(raw, iv)
	if err != nil {
		return nil, err
	}

	return &File{
		Version:    Version,
		PublicKey:  priv.PublicKey().StringWithPrefix(o.prefix),
		KDF:        KDFArgon2id,
		Params:     o.params,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		MAC:        base64.StdEncoding.EncodeToString(mac(macKey, iv, ct)),
	}, nil
}

// Open decrypts the key file with password
func Open(f *File, password []byte) (*keys.PrivateKey, error) {
	if f.Version != Version {
		return nil, errorsmod.Wrapf(ErrMalformedKeyFile, "unsupported version %d", f.Version)
	}
	if f.KDF != KDFArgon2id {
		return nil, errorsmod.Wrapf(ErrMalformedKeyFile, "unsupported kdf %q", f.KDF)
	}
	if err := f.Params.Validate(); err != nil {
		return nil, errorsmod.Wrap(ErrMalformedKeyFile, err.Error())
	}

	salt, err := decodeField("salt", f.Salt)
	if err != nil {
		return nil, err
	}
	iv, err := decodeField("iv", f.IV)
	if err != nil {
		return nil, err
	}
	ct, err := decodeField("ciphertext", f.Ciphertext)
	if err != nil {
		return nil, err
	}
	tag, err := decodeField("mac", f.MAC)
	if err != nil {
		return nil, err
	}

	encKey, macKey := f.Params.derive(password, salt)
	defer secure.ZeroizeMultiple(encKey, macKey)

	if !hmac.Equal(tag, mac(macKey, iv, ct)) {
		return nil, ErrWrongPassword
	}

	c, err := cbc.NewAESCBC(encKey)
	if err != nil {
		return nil, err
	}
	raw, err := c.Decrypt(ct, iv)
	if err != nil {
		return nil, errorsmod.Wrap(ErrMalformedKeyFile, err.Error())
	}
	defer secure.Zeroize(raw)

	priv, err := keys.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, errorsmod.Wrap(ErrMalformedKeyFile, err.Error())
	}
	return priv, nil
}

// Marshal encodes the key file as indented JSON
func (f *File) Marshal() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// Parse decodes a JSON key file
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errorsmod.Wrap(ErrMalformedKeyFile, err.Error())
	}
	return &f, nil
}

func mac(key, iv, ct []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(iv)
	h.Write(ct)
	return h.Sum(nil)
}

func decodeField(name, s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) == 0 {
		return nil, errorsmod.Wrapf(ErrMalformedKeyFile, "invalid %s", name)
	}
	return b, nil
}
