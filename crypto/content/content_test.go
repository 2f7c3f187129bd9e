package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Revolution-Populi/revpop-samples/crypto/envelope"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
)

func TestMakeKey(t *testing.T) {
	key, err := MakeKey()
	require.NoError(t, err)
	assert.Equal(t, AlgorithmAES256CBC, key.Algorithm)
	assert.Len(t, key.Key, 64)
	assert.Len(t, key.IV, 32)
	require.NoError(t, key.Validate())

	other, err := MakeKey()
	require.NoError(t, err)
	assert.NotEqual(t, key.Key, other.Key)

	raw, err := json.Marshal(key)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "aes-256-cbc", fields["algo"])
}

func TestEncryptDecrypt(t *testing.T) {
	key, err := MakeKey()
	require.NoError(t, err)

	for _, plain := range [][]byte{{}, []byte("photo"), bytes.Repeat([]byte{0xAA}, 10_000)} {
		ct, err := Encrypt(plain, key)
		require.NoError(t, err)
		assert.NotEqual(t, plain, ct)

		got, err := Decrypt(ct, key)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestNoEncryptIsIdentity(t *testing.T) {
	key := MakeNoEncryptKey()
	require.NoError(t, key.Validate())

	plain := []byte("plain text stays plain")
	ct, err := Encrypt(plain, key)
	require.NoError(t, err)
	assert.Equal(t, plain, ct)

	s, err := EncryptString("héllo", key)
	require.NoError(t, err)
	back, err := DecryptString(s, key)
	require.NoError(t, err)
	assert.Equal(t, "héllo", back)

	// The original wire form carries explicit nulls
	var parsed Key
	require.NoError(t, json.Unmarshal([]byte(`{"algo":"noencrypt","key":null,"iv":null}`), &parsed))
	assert.True(t, parsed.IsNoEncrypt())
}

func TestStringRoundTrip(t *testing.T) {
	key, err := MakeKey()
	require.NoError(t, err)

	s, err := EncryptString("James Bond, 007", key)
	require.NoError(t, err)

	back, err := DecryptString(s, key)
	require.NoError(t, err)
	assert.Equal(t, "James Bond, 007", back)

	_, err = DecryptString("%%%", key)
	assert.Error(t, err)
}

func TestStreamingMatchesOneShot(t *testing.T) {
	key, err := MakeKey()
	require.NoError(t, err)

	plain := bytes.Repeat([]byte("0123456789abcdef!"), 3000)
	oneShot, err := Encrypt(plain, key)
	require.NoError(t, err)

	var sink bytes.Buffer
	w, err := NewEncryptWriter(&sink, key)
	require.NoError(t, err)
	_, err = io.Copy(w, bytes.NewReader(plain))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, oneShot, sink.Bytes())

	r, err := NewDecryptReader(bytes.NewReader(oneShot), key)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	noop := MakeNoEncryptKey()
	sink.Reset()
	w, err = NewEncryptWriter(&sink, noop)
	require.NoError(t, err)
	_, _ = w.Write([]byte("clear"))
	require.NoError(t, w.Close())
	assert.Equal(t, "clear", sink.String())
}

func TestInvalidKeys(t *testing.T) {
	tests := []struct {
		name string
		key  Key
	}{
		{"unknown algorithm", Key{Algorithm: "rot13"}},
		{"short key", Key{Algorithm: AlgorithmAES256CBC, Key: "abcd", IV: "00000000000000000000000000000000"}},
		{"bad hex", Key{Algorithm: AlgorithmAES256CBC, Key: "zz", IV: "00"}},
		{"short iv", Key{Algorithm: AlgorithmAES256CBC, Key: string(bytes.Repeat([]byte("ab"), 32)), IV: "00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.key.Validate())
			_, err := Encrypt([]byte("x"), &tt.key)
			assert.Error(t, err)
		})
	}
}

func TestWrapUnwrapKey(t *testing.T) {
	subject, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	operator, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	stranger, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	env, err := envelope.New()
	require.NoError(t, err)

	key, err := MakeKey()
	require.NoError(t, err)

	sealed, err := WrapKey(env, key, subject, operator.PublicKey())
	require.NoError(t, err)

	got, err := UnwrapKey(env, sealed, operator, subject.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = UnwrapKey(env, sealed, stranger, subject.PublicKey())
	assert.True(t, errors.Is(err, envelope.ErrInvalidKey), "got %v", err)

	_, err = WrapKey(env, &Key{Algorithm: "rot13"}, subject, operator.PublicKey())
	assert.Error(t, err)
}
