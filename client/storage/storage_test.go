package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

const (
	envTestMongoURI = "REVPOP_TEST_MONGO_URI"
	envTestIPFSAPI  = "REVPOP_TEST_IPFS_API"
)

type backendCase struct {
	name string
	open func(t *testing.T) BlobStore
	// local backends answer not found for unknown ids without network lookups
	local bool
}

func backends() []backendCase {
	return []backendCase{
		{
			name:  "memory",
			open:  func(t *testing.T) BlobStore { return NewMemoryStore() },
			local: true,
		},
		{
			name: "file",
			open: func(t *testing.T) BlobStore {
				s, err := NewFileStore(filepath.Join(t.TempDir(), "blobs"))
				require.NoError(t, err)
				return s
			},
			local: true,
		},
		{
			name: "badger",
			open: func(t *testing.T) BlobStore {
				s, err := NewBadgerStore(t.TempDir())
				require.NoError(t, err)
				return s
			},
			local: true,
		},
		{
			name: "mongo",
			open: func(t *testing.T) BlobStore {
				uri := os.Getenv(envTestMongoURI)
				if uri == "" {
					t.Skipf("%s not set", envTestMongoURI)
				}
				s, err := NewMongoStore(context.Background(), uri, "revpop_test", t.Name())
				require.NoError(t, err)
				return s
			},
			local: true,
		},
		{
			name: "ipfs",
			open: func(t *testing.T) BlobStore {
				api := os.Getenv(envTestIPFSAPI)
				if api == "" {
					t.Skipf("%s not set", envTestIPFSAPI)
				}
				s, err := NewIPFSStore(api)
				require.NoError(t, err)
				return s
			},
		},
	}
}

func TestBlobStores(t *testing.T) {
	ctx := context.Background()

	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			store := bc.open(t)
			t.Cleanup(func() { _ = store.Close(ctx) })

			data := []byte("encrypted personal data")
			id, err := store.Put(ctx, data)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Contains(t, store.URL(id), id)

			again, err := store.Put(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, id, again)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, data, got)

			require.NoError(t, store.Delete(ctx, id))

			if !bc.local {
				return
			}

			_, err = store.Get(ctx, id)
			require.ErrorIs(t, err, clienterrors.ErrNotFound)
			require.ErrorIs(t, store.Delete(ctx, id), clienterrors.ErrNotFound)
		})
	}
}

func TestLocalIDsAreBlobCIDs(t *testing.T) {
	ctx := context.Background()
	data := []byte("photo bytes")

	expected, err := blobID(data)
	require.NoError(t, err)

	for _, bc := range backends()[:3] {
		t.Run(bc.name, func(t *testing.T) {
			store := bc.open(t)
			t.Cleanup(func() { _ = store.Close(ctx) })

			id, err := store.Put(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, expected, id)
		})
	}
}

func TestFileStoreDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	id, err := store.Put(ctx, []byte("original"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+blobExt), []byte("tampered"), 0o600))

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, clienterrors.ErrStorage)

	_, err = store.Get(ctx, "../../etc/passwd")
	require.ErrorIs(t, err, clienterrors.ErrStorage)
}

func TestBadgerStoreIDs(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	a, err := store.Put(ctx, []byte("a"))
	require.NoError(t, err)
	b, err := store.Put(ctx, []byte("b"))
	require.NoError(t, err)

	ids, err := store.IDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		backend string
		wantErr error
	}{
		{name: "memory", cfg: config.MemoryStorage(), backend: config.BackendMemory},
		{name: "file", cfg: config.FileStorage(t.TempDir()), backend: config.BackendFile},
		{name: "badger", cfg: config.BadgerStorage(t.TempDir()), backend: config.BackendBadger},
		{name: "missing dir", cfg: config.FileStorage(""), wantErr: clienterrors.ErrMissingConfig},
		{name: "unknown", cfg: config.StorageConfig{Backend: "s3"}, wantErr: clienterrors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close(ctx) })
			assert.Equal(t, tt.backend, store.Backend())
		})
	}
}

func TestStorageData(t *testing.T) {
	sd := StorageData{Backend: "ipfs", URL: "ipfs://bafk", ID: "bafk"}
	assert.Equal(t, `["ipfs","ipfs://bafk","bafk"]`, sd.String())

	parsed, err := ParseStorageData(sd.String())
	require.NoError(t, err)
	assert.Equal(t, sd, parsed)

	for _, bad := range []string{``, `{}`, `["a","b"]`, `["a","b",""]`} {
		_, err := ParseStorageData(bad)
		require.ErrorIs(t, err, clienterrors.ErrStorage, bad)
	}
}
