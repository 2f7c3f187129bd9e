package digest

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256Hex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sha256Hex(tt.in))
		assert.Equal(t, tt.want, BufSha256Hex([]byte(tt.in)))
	}
}

func TestDecodeSha256Hex(t *testing.T) {
	raw, err := DecodeSha256Hex(Sha256Hex("abc"))
	require.NoError(t, err)
	assert.Equal(t, Sha256([]byte("abc")), raw)

	_, err = DecodeSha256Hex("zz")
	assert.Error(t, err)
	_, err = DecodeSha256Hex("abcd")
	assert.Error(t, err)
}

func TestBlobCID(t *testing.T) {
	data := []byte("encrypted blob")

	id, err := BlobCID(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id.Version())
	assert.Equal(t, uint64(cid.Raw), id.Type())

	again, err := BlobCID(data)
	require.NoError(t, err)
	assert.True(t, id.Equals(again), "BlobCID must be deterministic")

	other, err := BlobCID([]byte("another blob"))
	require.NoError(t, err)
	assert.False(t, id.Equals(other))

	require.NoError(t, VerifyBlobCID(id.String(), data))
	assert.Error(t, VerifyBlobCID(id.String(), []byte("tampered")))
	assert.Error(t, VerifyBlobCID("not-a-cid", data))
}
