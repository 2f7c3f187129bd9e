package keys

import (
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p/core/crypto"
	mb "github.com/multiformats/go-multibase"
	varint "github.com/multiformats/go-varint"
)

const (
	// KeyPrefix indicates a decentralized identifier that uses the key method
	KeyPrefix = "did:key"
	// MulticodecKindSecp256k1PubKey secp256k1-pub
	MulticodecKindSecp256k1PubKey = 0xe7
)

// DID returns the did:key identifier of the public key. Ledger entries name
// subjects and operators by this string.
func (p *PublicKey) DID() string {
	raw := p.Bytes()

	size := varint.UvarintSize(MulticodecKindSecp256k1PubKey)
	data := make([]byte, size+len(raw))
	n := varint.PutUvarint(data, MulticodecKindSecp256k1PubKey)
	copy(data[n:], raw)

	b58BKeyStr, err := mb.Encode(mb.Base58BTC, data)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("%s:%s", KeyPrefix, b58BKeyStr)
}

// Libp2p converts the key to a libp2p public key
func (p *PublicKey) Libp2p() (crypto.PubKey, error) {
	return crypto.UnmarshalSecp256k1PublicKey(p.Bytes())
}

// ParseDID turns a did:key string back into a secp256k1 public key
func ParseDID(keystr string) (*PublicKey, error) {
	if !strings.HasPrefix(keystr, KeyPrefix+":") {
		return nil, fmt.Errorf("decentralized identifier is not a 'key' type")
	}

	keystr = strings.TrimPrefix(keystr, KeyPrefix+":")

	enc, data, err := mb.Decode(keystr)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase: %w", err)
	}

	if enc != mb.Base58BTC {
		return nil, fmt.Errorf("unexpected multibase encoding: %s", mb.EncodingToStr[enc])
	}

	keyType, n, err := varint.FromUvarint(data)
	if err != nil {
		return nil, err
	}
	if keyType != MulticodecKindSecp256k1PubKey {
		return nil, fmt.Errorf("unrecognized key type multicodec prefix: %x", keyType)
	}

	keyData := data[n:]
	if len(keyData) != 33 && len(keyData) != 65 {
		return nil, fmt.Errorf("invalid Secp256k1 public key length: %d", len(keyData))
	}

	pub, err := crypto.UnmarshalSecp256k1PublicKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Secp256k1 key: %w", err)
	}

	raw, err := pub.Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to get raw public key: %w", err)
	}

	return PublicKeyFromBytes(raw)
}

// ValidateDID validates that the string conforms to the did:key format
func ValidateDID(didString string) error {
	if !strings.HasPrefix(didString, KeyPrefix) {
		return fmt.Errorf("DID must start with '%s'", KeyPrefix)
	}

	if _, err := ParseDID(didString); err != nil {
		return fmt.Errorf("invalid DID format: %w", err)
	}

	return nil
}
