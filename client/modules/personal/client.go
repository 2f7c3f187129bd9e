// Package personal publishes, shares and verifies selective-disclosure
// personal data records. Records are sealed into cloud storage and their
// root hashes are registered on the ledger.
package personal

import (
	"context"
	"fmt"
	"strings"

	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/client/ledger"
	"github.com/Revolution-Populi/revpop-samples/client/storage"
	"github.com/Revolution-Populi/revpop-samples/crypto/content"
	"github.com/Revolution-Populi/revpop-samples/crypto/digest"
	"github.com/Revolution-Populi/revpop-samples/crypto/envelope"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/crypto/secure"
	"github.com/Revolution-Populi/revpop-samples/types/pdata"
)

// DefaultPhotoType is used when PublishOptions leaves PhotoType empty
const DefaultPhotoType = "image/png"

const photoPath = "photo"

// Client provides the personal data flow between a subject and operators.
type Client interface {
	// Publish builds a new full record for the subject, stores it sealed
	// for the subject and supersedes the subject's own ledger entry.
	Publish(ctx context.Context, subject *keys.PrivateKey, opts *PublishOptions) (*Publication, error)

	// Grant derives a partial record revealing only the given paths from the
	// subject's published record and shares it with operator.
	Grant(ctx context.Context, subject *keys.PrivateKey, operator *keys.PublicKey, reveal []string) (*Publication, error)

	// Load opens the latest record the subject shared with operator and
	// verifies it against the ledger hash.
	Load(ctx context.Context, subjectDID, operatorDID string, recipient *keys.PrivateKey) (*Disclosure, error)

	// LoadPhoto fetches the photo referenced by a disclosure and checks its
	// hash. Photos are sealed for the subject only.
	LoadPhoto(ctx context.Context, d *Disclosure, subject *keys.PrivateKey) ([]byte, error)

	// Revoke removes the operator's ledger entry and the blob it points to.
	Revoke(ctx context.Context, subject *keys.PrivateKey, operatorDID string) error

	// ShareContent encrypts data under a fresh content key and seals the key
	// for recipient.
	ShareContent(ctx context.Context, sender *keys.PrivateKey, recipient *keys.PublicKey, data []byte) (*SharedContent, error)

	// OpenContent unseals the content key and decrypts shared content.
	OpenContent(ctx context.Context, shared *SharedContent, sender *keys.PublicKey, recipient *keys.PrivateKey) ([]byte, error)

	// Close releases the storage backend.
	Close(ctx context.Context) error
}

// PublishOptions holds the personal data of a subject.
type PublishOptions struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Photo     []byte `json:"photo,omitempty"`
	PhotoType string `json:"photo_type,omitempty"`
}

// Publication is the outcome of Publish or Grant.
type Publication struct {
	Record   *pdata.Record
	RootHash string
	Entry    ledger.Entry
	// Superseded is the ledger entry that was replaced, if any
	Superseded *ledger.Entry
}

// Disclosure is a verified record loaded from storage.
type Disclosure struct {
	Record *pdata.Record
	Entry  ledger.Entry
}

// Field returns a revealed value
func (d *Disclosure) Field(path string) (pdata.Value, bool) {
	return d.Record.Value(path)
}

// SharedContent locates encrypted content and carries its sealed key.
type SharedContent struct {
	ID          string `json:"id"`
	StorageData string `json:"storage_data"`
	Key         string `json:"key"`
}

type client struct {
	cloud             *storage.CloudStorage
	ledger            ledger.Ledger
	builder           *pdata.Builder
	contentEncryption bool
	logger            log.Logger
}

// Option configures the client.
type Option func(*client)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger log.Logger) Option {
	return func(c *client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContentEncryption toggles encryption of shared content. When disabled
// content is stored as is under a noencrypt key.
func WithContentEncryption(enabled bool) Option {
	return func(c *client) { c.contentEncryption = enabled }
}

// NewClient creates a personal data client.
func NewClient(cloud *storage.CloudStorage, l ledger.Ledger, builder *pdata.Builder, opts ...Option) Client {
	c := &client{
		cloud:             cloud,
		ledger:            l,
		builder:           builder,
		contentEncryption: true,
		logger:            log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("module", "personal")
	return c
}

// Open builds a client from configuration: it opens the configured storage
// backend and uses the configured catalog.
func Open(ctx context.Context, cfg *config.Config, l ledger.Ledger, logger log.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	catalog, err := cfg.PartCatalog()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	env, err := envelope.New()
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	cloud := storage.NewCloudStorage(store, env, logger)
	return NewClient(cloud, l, pdata.NewBuilder(catalog),
		WithLogger(logger),
		WithContentEncryption(cfg.ContentEncryption),
	), nil
}

func (c *client) Publish(ctx context.Context, subject *keys.PrivateKey, opts *PublishOptions) (*Publication, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}
	subjectPub := subject.PublicKey()
	subjectDID := subjectPub.DID()

	oldPhoto := c.photoData(ctx, subject)

	var (
		photo    pdata.Value = pdata.Null{}
		newPhoto string
	)
	if len(opts.Photo) > 0 {
		saved, err := c.cloud.SaveBuffer(ctx, opts.Photo, subject, subjectPub)
		if err != nil {
			return nil, err
		}
		typ := opts.PhotoType
		if typ == "" {
			typ = DefaultPhotoType
		}
		newPhoto = saved.StorageData.String()
		photo = pdata.MakeReference(saved.URL, typ, digest.BufSha256Hex(opts.Photo), newPhoto)
	}

	full := pdata.MakeFullContent(opts.FirstName, opts.LastName, opts.Email, opts.Phone, photo)
	record, root, err := c.builder.BuildFull(full)
	if err != nil {
		c.dropBlob(ctx, newPhoto)
		return nil, err
	}

	pub, err := c.share(ctx, record, root, subject, subjectPub)
	if err != nil {
		c.dropBlob(ctx, newPhoto)
		return nil, err
	}
	if oldPhoto != newPhoto {
		c.dropBlob(ctx, oldPhoto)
	}

	c.logger.Info("published personal data", "subject", subjectDID, "hash", root)
	return pub, nil
}

func (c *client) Grant(ctx context.Context, subject *keys.PrivateKey, operator *keys.PublicKey, reveal []string) (*Publication, error) {
	subjectDID := subject.PublicKey().DID()

	own, err := c.Load(ctx, subjectDID, subjectDID, subject)
	if err != nil {
		return nil, err
	}

	partial, err := c.builder.BuildPartial(own.Record, reveal)
	if err != nil {
		return nil, err
	}
	root, err := pdata.RootHash(partial)
	if err != nil {
		return nil, err
	}
	if root != own.Entry.Hash {
		return nil, sdkerrors.Wrapf(clienterrors.ErrVerification, "partial root %s differs from published %s", root, own.Entry.Hash)
	}

	pub, err := c.share(ctx, partial, root, subject, operator)
	if err != nil {
		return nil, err
	}

	c.logger.Info("granted personal data",
		"subject", subjectDID,
		"operator", operator.DID(),
		"revealed", strings.Join(partial.RevealedPaths(), ","),
	)
	return pub, nil
}

// share seals record for recipient and supersedes the ledger entry of the
// pair
func (c *client) share(ctx context.Context, record *pdata.Record, root string, subject *keys.PrivateKey, recipient *keys.PublicKey) (*Publication, error) {
	saved, err := c.cloud.SaveObject(ctx, record, subject, recipient)
	if err != nil {
		return nil, err
	}

	entry := ledger.Entry{
		Subject:     subject.PublicKey().DID(),
		Operator:    recipient.DID(),
		URL:         saved.URL,
		Hash:        root,
		StorageData: saved.StorageData.String(),
	}
	old, err := ledger.Supersede(ctx, c.ledger, entry)
	if err != nil {
		c.dropBlob(ctx, entry.StorageData)
		return nil, err
	}
	if old != nil && old.StorageData != entry.StorageData {
		c.dropBlob(ctx, old.StorageData)
	}

	return &Publication{Record: record, RootHash: root, Entry: entry, Superseded: old}, nil
}

func (c *client) Load(ctx context.Context, subjectDID, operatorDID string, recipient *keys.PrivateKey) (*Disclosure, error) {
	entry, err := c.ledger.Latest(ctx, subjectDID, operatorDID)
	if err != nil {
		return nil, err
	}

	sd, err := storage.ParseStorageData(entry.StorageData)
	if err != nil {
		return nil, err
	}

	sender, err := keys.ParseDID(subjectDID)
	if err != nil {
		return nil, clienterrors.WrapError(err, clienterrors.ErrVerification, "subject %s", subjectDID)
	}

	var record pdata.Record
	if err := c.cloud.LoadObject(ctx, sd.ID, sender, recipient, &record); err != nil {
		return nil, err
	}

	if err := pdata.Verify(&record, entry.Hash, c.builder.Catalog()); err != nil {
		return nil, clienterrors.WrapError(err, clienterrors.ErrVerification, "record %s", sd.ID)
	}

	c.logger.Debug("loaded personal data", "subject", subjectDID, "operator", operatorDID, "hash", entry.Hash)
	return &Disclosure{Record: &record, Entry: *entry}, nil
}

func (c *client) LoadPhoto(ctx context.Context, d *Disclosure, subject *keys.PrivateKey) ([]byte, error) {
	v, ok := d.Field(photoPath)
	if !ok {
		return nil, sdkerrors.Wrap(clienterrors.ErrForbidden, photoPath)
	}
	if pdata.IsNull(v) {
		return nil, sdkerrors.Wrap(clienterrors.ErrNotFound, "record has no photo")
	}

	ref, err := pdata.ParseReference(v)
	if err != nil {
		return nil, err
	}
	sd, err := storage.ParseStorageData(ref.StorageData)
	if err != nil {
		return nil, err
	}

	photo, err := c.cloud.LoadBuffer(ctx, sd.ID, subject.PublicKey(), subject)
	if err != nil {
		return nil, err
	}

	hash := digest.BufSha256Hex(photo)
	if !secure.Compare([]byte(hash), []byte(strings.ToLower(ref.Hash))) {
		return nil, sdkerrors.Wrapf(clienterrors.ErrVerification, "photo hash %s, reference %s", hash, ref.Hash)
	}
	return photo, nil
}

func (c *client) Revoke(ctx context.Context, subject *keys.PrivateKey, operatorDID string) error {
	subjectDID := subject.PublicKey().DID()

	entry, err := c.ledger.Latest(ctx, subjectDID, operatorDID)
	if err != nil {
		return err
	}
	if err := c.ledger.Remove(ctx, entry.Subject, entry.Operator, entry.Hash); err != nil {
		return err
	}
	c.dropBlob(ctx, entry.StorageData)

	c.logger.Info("revoked personal data", "subject", subjectDID, "operator", operatorDID)
	return nil
}

// dropBlob deletes a blob nothing on the ledger points at any more. Failures
// are logged only. An empty storageData is a no-op.
func (c *client) dropBlob(ctx context.Context, storageData string) {
	if storageData == "" {
		return
	}
	sd, err := storage.ParseStorageData(storageData)
	if err == nil {
		err = c.cloud.Delete(ctx, sd.ID)
	}
	if err != nil && !sdkerrors.IsOf(err, clienterrors.ErrNotFound) {
		c.logger.Error("failed to delete unreferenced blob", "storage_data", storageData, "err", err)
	}
}

// photoData returns the storage data of the photo in the subject's current
// record, empty when there is none or the record cannot be opened
func (c *client) photoData(ctx context.Context, subject *keys.PrivateKey) string {
	did := subject.PublicKey().DID()
	own, err := c.Load(ctx, did, did, subject)
	if err != nil {
		if !sdkerrors.IsOf(err, clienterrors.ErrEntryNotFound) {
			c.logger.Debug("current record unavailable", "subject", did, "err", err)
		}
		return ""
	}

	v, ok := own.Field(photoPath)
	if !ok || pdata.IsNull(v) {
		return ""
	}
	ref, err := pdata.ParseReference(v)
	if err != nil {
		return ""
	}
	return ref.StorageData
}

func (c *client) ShareContent(ctx context.Context, sender *keys.PrivateKey, recipient *keys.PublicKey, data []byte) (*SharedContent, error) {
	key := content.MakeNoEncryptKey()
	if c.contentEncryption {
		var err error
		if key, err = content.MakeKey(); err != nil {
			return nil, err
		}
	}

	saved, err := c.cloud.SaveContent(ctx, data, key)
	if err != nil {
		return nil, err
	}
	sealed, err := content.WrapKey(c.cloud.Envelope(), key, sender, recipient)
	if err != nil {
		return nil, err
	}

	return &SharedContent{ID: saved.ID, StorageData: saved.StorageData.String(), Key: sealed}, nil
}

func (c *client) OpenContent(ctx context.Context, shared *SharedContent, sender *keys.PublicKey, recipient *keys.PrivateKey) ([]byte, error) {
	key, err := content.UnwrapKey(c.cloud.Envelope(), shared.Key, recipient, sender)
	if err != nil {
		return nil, err
	}
	return c.cloud.LoadContent(ctx, shared.ID, key)
}

func (c *client) Close(ctx context.Context) error {
	return c.cloud.Close(ctx)
}
