package storage

import (
	"context"

	"cosmossdk.io/log"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/crypto/content"
	"github.com/Revolution-Populi/revpop-samples/crypto/envelope"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
)

// SaveResult locates a saved blob
type SaveResult struct {
	ID          string
	URL         string
	StorageData StorageData
}

// CloudStorage encrypts blobs before handing them to a BlobStore. Objects
// and buffers are sealed for a recipient with key-pair envelopes, content
// is encrypted under a symmetric content key.
type CloudStorage struct {
	store  BlobStore
	env    *envelope.Envelope
	logger log.Logger
}

// NewCloudStorage wraps store. A nil logger discards output.
func NewCloudStorage(store BlobStore, env *envelope.Envelope, logger log.Logger) *CloudStorage {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &CloudStorage{
		store:  store,
		env:    env,
		logger: logger.With("module", "cloud_storage", "backend", store.Backend()),
	}
}

// Store returns the underlying blob store
func (c *CloudStorage) Store() BlobStore { return c.store }

// Envelope returns the envelope used to seal objects and buffers
func (c *CloudStorage) Envelope() *envelope.Envelope { return c.env }

func (c *CloudStorage) save(ctx context.Context, kind string, data []byte) (*SaveResult, error) {
	id, err := c.store.Put(ctx, data)
	if err != nil {
		return nil, err
	}

	url := c.store.URL(id)
	c.logger.Debug("saved blob", "kind", kind, "id", id, "size", len(data))
	return &SaveResult{
		ID:          id,
		URL:         url,
		StorageData: StorageData{Backend: c.store.Backend(), URL: url, ID: id},
	}, nil
}

// SaveObject seals v as an object envelope for recipientPub and stores it
func (c *CloudStorage) SaveObject(ctx context.Context, v any, senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey) (*SaveResult, error) {
	sealed, err := c.env.EncryptObject(v, senderPriv, recipientPub)
	if err != nil {
		return nil, err
	}
	return c.save(ctx, "object", []byte(sealed))
}

// LoadObject opens the object envelope stored under id into out
func (c *CloudStorage) LoadObject(ctx context.Context, id string, senderPub *keys.PublicKey, recipientPriv *keys.PrivateKey, out any) error {
	data, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.env.DecryptObject(string(data), recipientPriv, senderPub, out)
}

// SaveBuffer seals buf as a buffer envelope for recipientPub and stores it
func (c *CloudStorage) SaveBuffer(ctx context.Context, buf []byte, senderPriv *keys.PrivateKey, recipientPub *keys.PublicKey) (*SaveResult, error) {
	sealed, err := c.env.EncryptBuffer(buf, senderPriv, recipientPub)
	if err != nil {
		return nil, err
	}
	return c.save(ctx, "buffer", sealed)
}

// LoadBuffer opens the buffer envelope stored under id
func (c *CloudStorage) LoadBuffer(ctx context.Context, id string, senderPub *keys.PublicKey, recipientPriv *keys.PrivateKey) ([]byte, error) {
	data, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.env.DecryptBuffer(data, recipientPriv, senderPub)
}

// SaveContent encrypts buf under key and stores it
func (c *CloudStorage) SaveContent(ctx context.Context, buf []byte, key *content.Key) (*SaveResult, error) {
	encrypted, err := content.Encrypt(buf, key)
	if err != nil {
		return nil, err
	}
	return c.save(ctx, "content", encrypted)
}

// LoadContent decrypts the content stored under id
func (c *CloudStorage) LoadContent(ctx context.Context, id string, key *content.Key) ([]byte, error) {
	data, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return content.Decrypt(data, key)
}

// Delete removes the blob stored under id
func (c *CloudStorage) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.Debug("deleted blob", "id", id)
	return nil
}

// Close releases the underlying store
func (c *CloudStorage) Close(ctx context.Context) error {
	if err := c.store.Close(ctx); err != nil {
		return clienterrors.NewStorageError(c.store.Backend(), "close", err)
	}
	return nil
}
