// Package storage persists encrypted blobs for the RevPop client.
//
// Local backends address blobs by CIDv1 (raw codec, sha2-256) of the stored
// bytes; IPFS uses the CID issued by the node.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"github.com/ipfs/go-cid"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/crypto/digest"
)

// BlobStore keeps opaque blobs by content identifier.
type BlobStore interface {
	// Backend names the storage backend
	Backend() string

	// Put stores data and returns its id. Storing the same bytes twice
	// returns the same id.
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the blob stored under id, or ErrNotFound
	Get(ctx context.Context, id string) ([]byte, error)

	// Delete removes the blob stored under id, or returns ErrNotFound
	Delete(ctx context.Context, id string) error

	// URL locates the blob for humans and ledger entries
	URL(id string) string

	// Close releases the backend
	Close(ctx context.Context) error
}

// StorageData tells a reader where a blob lives. On the wire it is the JSON
// array [backend, url, id] recorded in ledger entries and references.
type StorageData struct {
	Backend string
	URL     string
	ID      string
}

// String encodes the storage data as a JSON array
func (d StorageData) String() string {
	raw, _ := json.Marshal([]string{d.Backend, d.URL, d.ID})
	return string(raw)
}

// ParseStorageData decodes the JSON array form
func ParseStorageData(s string) (StorageData, error) {
	var parts []string
	if err := json.Unmarshal([]byte(s), &parts); err != nil {
		return StorageData{}, clienterrors.WrapError(err, clienterrors.ErrStorage, "invalid storage data")
	}
	if len(parts) != 3 || parts[2] == "" {
		return StorageData{}, clienterrors.WrapError(fmt.Errorf("got %d elements", len(parts)), clienterrors.ErrStorage, "invalid storage data")
	}
	return StorageData{Backend: parts[0], URL: parts[1], ID: parts[2]}, nil
}

// Open creates the blob store selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig, logger log.Logger) (BlobStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "storage", "backend", cfg.Backend)

	var (
		store BlobStore
		err   error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendFile:
		store, err = NewFileStore(cfg.Dir)
	case config.BackendBadger:
		store, err = NewBadgerStore(cfg.Dir)
	case config.BackendMongo:
		store, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.BackendIPFS:
		store, err = NewIPFSStore(cfg.IPFSAPI)
	}
	if err != nil {
		return nil, clienterrors.WrapError(err, clienterrors.ErrBackendUnavailable, "opening %s storage", cfg.Backend)
	}

	logger.Debug("storage opened")
	return store, nil
}

// blobID computes the content identifier used by local backends
func blobID(data []byte) (string, error) {
	id, err := digest.BlobCID(data)
	if err != nil {
		return "", clienterrors.WrapError(err, clienterrors.ErrStorage, "computing blob id")
	}
	return id.String(), nil
}

// checkBlob rejects ids that are not CIDs and blobs that do not match them
func checkBlob(backend, id string, data []byte) error {
	if err := digest.VerifyBlobCID(id, data); err != nil {
		return clienterrors.WrapError(err, clienterrors.ErrStorage, "%s blob %s", backend, id)
	}
	return nil
}

// checkID rejects ids that are not CIDs before they reach a backend
func checkID(backend, id string) error {
	if _, err := cid.Parse(id); err != nil {
		return clienterrors.WrapError(err, clienterrors.ErrStorage, "%s id %q", backend, id)
	}
	return nil
}

func notFound(backend, id string) error {
	return clienterrors.WrapError(fmt.Errorf("%s", id), clienterrors.ErrNotFound, "%s", backend)
}
