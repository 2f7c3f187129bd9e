package personal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/suite"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/client/ledger"
	"github.com/Revolution-Populi/revpop-samples/client/storage"
	"github.com/Revolution-Populi/revpop-samples/crypto/envelope"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/types/pdata"
)

type PersonalSuite struct {
	suite.Suite

	ctx      context.Context
	store    *storage.MemoryStore
	ledger   *ledger.MemoryLedger
	client   Client
	subject  *keys.PrivateKey
	operator *keys.PrivateKey
	outsider *keys.PrivateKey
	photo    []byte
}

func TestPersonalSuite(t *testing.T) {
	suite.Run(t, new(PersonalSuite))
}

func (s *PersonalSuite) SetupTest() {
	s.ctx = context.Background()

	env, err := envelope.New()
	s.Require().NoError(err)

	logger := log.NewTestLogger(s.T())
	s.store = storage.NewMemoryStore()
	s.ledger = ledger.NewMemoryLedger(logger)
	s.client = NewClient(
		storage.NewCloudStorage(s.store, env, logger),
		s.ledger,
		pdata.NewBuilder(pdata.DefaultCatalog),
		WithLogger(logger),
	)

	s.subject = s.key("5JUR92r9BhKFwFXmkNDn26VURTaNouuCB9RKv4YdJGxuvDU8dXw")
	s.operator = s.key("5JbUcrw6SawrNBFADoSvHX8mxGgWgWaywEwEeV4gaktbcwUHCB2")
	s.outsider = s.key("5JBzaA9XLpyMCKsympdRd1kec5x1xUqmPnfCMHGSXTiVPQFiKmj")
	s.photo = bytes.Repeat([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}, 512)
}

func (s *PersonalSuite) key(wif string) *keys.PrivateKey {
	priv, err := keys.FromWIF(wif)
	s.Require().NoError(err)
	return priv
}

func (s *PersonalSuite) publish() *Publication {
	pub, err := s.client.Publish(s.ctx, s.subject, &PublishOptions{
		FirstName: "James",
		LastName:  "Bond",
		Email:     "bond@mi5.gov.uk",
		Phone:     "+44123456789",
		Photo:     s.photo,
	})
	s.Require().NoError(err)
	return pub
}

func (s *PersonalSuite) did(k *keys.PrivateKey) string {
	return k.PublicKey().DID()
}

func (s *PersonalSuite) TestPublishAndLoad() {
	pub := s.publish()

	s.Equal(s.did(s.subject), pub.Entry.Subject)
	s.Equal(s.did(s.subject), pub.Entry.Operator)
	s.Equal(pub.RootHash, pub.Entry.Hash)
	s.Nil(pub.Superseded)
	s.ElementsMatch(pdata.DefaultCatalog.Paths(), pub.Record.RevealedPaths())

	d, err := s.client.Load(s.ctx, s.did(s.subject), s.did(s.subject), s.subject)
	s.Require().NoError(err)
	s.Equal(pub.Entry, d.Entry)

	email, ok := d.Field("email")
	s.Require().True(ok)
	s.Equal(pdata.String("bond@mi5.gov.uk"), email)

	photo, err := s.client.LoadPhoto(s.ctx, d, s.subject)
	s.Require().NoError(err)
	s.Equal(s.photo, photo)

	ref, err := pdata.ParseReference(mustField(s, d, "photo"))
	s.Require().NoError(err)
	s.Equal(DefaultPhotoType, ref.Type)
}

func (s *PersonalSuite) TestRepublishSupersedes() {
	first := s.publish()
	second := s.publish()

	s.Require().NotNil(second.Superseded)
	s.Equal(first.Entry, *second.Superseded)
	s.NotEqual(first.RootHash, second.RootHash)

	sd, err := storage.ParseStorageData(first.Entry.StorageData)
	s.Require().NoError(err)
	_, err = s.store.Get(s.ctx, sd.ID)
	s.ErrorIs(err, clienterrors.ErrNotFound)

	oldPhoto, err := pdata.ParseReference(mustField(s, &Disclosure{Record: first.Record}, "photo"))
	s.Require().NoError(err)
	sd, err = storage.ParseStorageData(oldPhoto.StorageData)
	s.Require().NoError(err)
	_, err = s.store.Get(s.ctx, sd.ID)
	s.ErrorIs(err, clienterrors.ErrNotFound)

	// current record and current photo only
	s.Equal(2, s.store.Len())

	d, err := s.client.Load(s.ctx, s.did(s.subject), s.did(s.subject), s.subject)
	s.Require().NoError(err)
	photo, err := s.client.LoadPhoto(s.ctx, d, s.subject)
	s.Require().NoError(err)
	s.Equal(s.photo, photo)

	s.NoError(s.ledger.Journal().Verify())
}

// rejectingLedger refuses every new entry
type rejectingLedger struct {
	*ledger.MemoryLedger
}

func (r rejectingLedger) Create(context.Context, ledger.Entry) error {
	return clienterrors.NewLedgerError("create", errors.New("node unreachable"))
}

func (s *PersonalSuite) TestPublishLedgerFailureLeavesNoBlobs() {
	env, err := envelope.New()
	s.Require().NoError(err)

	c := NewClient(
		storage.NewCloudStorage(s.store, env, nil),
		rejectingLedger{ledger.NewMemoryLedger(nil)},
		pdata.NewBuilder(pdata.DefaultCatalog),
	)

	_, err = c.Publish(s.ctx, s.subject, &PublishOptions{FirstName: "James", Photo: s.photo})
	s.Require().ErrorIs(err, clienterrors.ErrLedger)
	s.Zero(s.store.Len())
}

func (s *PersonalSuite) TestGrantAndOperatorLoad() {
	full := s.publish()

	granted, err := s.client.Grant(s.ctx, s.subject, s.operator.PublicKey(), []string{"name", "email"})
	s.Require().NoError(err)
	s.Equal(full.RootHash, granted.RootHash)
	s.Equal(s.did(s.operator), granted.Entry.Operator)
	s.ElementsMatch([]string{"email", "name"}, granted.Record.RevealedPaths())
	s.ElementsMatch([]string{"phone", "photo"}, granted.Record.HiddenPaths())

	d, err := s.client.Load(s.ctx, s.did(s.subject), s.did(s.operator), s.operator)
	s.Require().NoError(err)

	name := mustField(s, d, "name")
	s.JSONEq(`{"first":"James","last":"Bond"}`, string(pdata.CanonicalJSON(name)))

	_, ok := d.Field("phone")
	s.False(ok)

	_, err = s.client.LoadPhoto(s.ctx, d, s.operator)
	s.ErrorIs(err, clienterrors.ErrForbidden)

	list, err := s.ledger.List(s.ctx, s.did(s.operator))
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PersonalSuite) TestOutsiderCannotOpen() {
	s.publish()
	_, err := s.client.Grant(s.ctx, s.subject, s.operator.PublicKey(), []string{"email"})
	s.Require().NoError(err)

	_, err = s.client.Load(s.ctx, s.did(s.subject), s.did(s.operator), s.outsider)
	s.ErrorIs(err, envelope.ErrInvalidKey)
}

func (s *PersonalSuite) TestTamperedLedgerHash() {
	pub := s.publish()

	forged := pub.Entry
	forged.Hash = pdata.PartHash("forged", pdata.Null{})
	_, err := ledger.Supersede(s.ctx, s.ledger, forged)
	s.Require().NoError(err)

	_, err = s.client.Load(s.ctx, s.did(s.subject), s.did(s.subject), s.subject)
	s.ErrorIs(err, clienterrors.ErrVerification)
}

func (s *PersonalSuite) TestGrantWithoutPublish() {
	_, err := s.client.Grant(s.ctx, s.subject, s.operator.PublicKey(), []string{"email"})
	s.ErrorIs(err, clienterrors.ErrEntryNotFound)
}

func (s *PersonalSuite) TestPublishWithoutPhoto() {
	_, err := s.client.Publish(s.ctx, s.subject, &PublishOptions{FirstName: "Eve"})
	s.Require().NoError(err)

	d, err := s.client.Load(s.ctx, s.did(s.subject), s.did(s.subject), s.subject)
	s.Require().NoError(err)
	s.True(pdata.IsNull(mustField(s, d, "photo")))

	_, err = s.client.LoadPhoto(s.ctx, d, s.subject)
	s.ErrorIs(err, clienterrors.ErrNotFound)
}

func (s *PersonalSuite) TestRevoke() {
	s.publish()
	granted, err := s.client.Grant(s.ctx, s.subject, s.operator.PublicKey(), []string{"email"})
	s.Require().NoError(err)

	s.Require().NoError(s.client.Revoke(s.ctx, s.subject, s.did(s.operator)))

	_, err = s.client.Load(s.ctx, s.did(s.subject), s.did(s.operator), s.operator)
	s.ErrorIs(err, clienterrors.ErrEntryNotFound)

	sd, err := storage.ParseStorageData(granted.Entry.StorageData)
	s.Require().NoError(err)
	_, err = s.store.Get(s.ctx, sd.ID)
	s.ErrorIs(err, clienterrors.ErrNotFound)

	s.ErrorIs(s.client.Revoke(s.ctx, s.subject, s.did(s.operator)), clienterrors.ErrEntryNotFound)
}

func (s *PersonalSuite) TestShareContent() {
	data := []byte("meeting notes")

	shared, err := s.client.ShareContent(s.ctx, s.subject, s.operator.PublicKey(), data)
	s.Require().NoError(err)

	raw, err := s.store.Get(s.ctx, shared.ID)
	s.Require().NoError(err)
	s.NotEqual(data, raw)

	got, err := s.client.OpenContent(s.ctx, shared, s.subject.PublicKey(), s.operator)
	s.Require().NoError(err)
	s.Equal(data, got)

	_, err = s.client.OpenContent(s.ctx, shared, s.subject.PublicKey(), s.outsider)
	s.ErrorIs(err, envelope.ErrInvalidKey)
}

func (s *PersonalSuite) TestOpenFromConfig() {
	cfg := config.DefaultConfig()
	cfg.ContentEncryption = false

	c, err := Open(s.ctx, cfg, s.ledger, nil)
	s.Require().NoError(err)
	defer func() { s.NoError(c.Close(s.ctx)) }()

	data := []byte("plain content")
	shared, err := c.ShareContent(s.ctx, s.subject, s.operator.PublicKey(), data)
	s.Require().NoError(err)

	got, err := c.OpenContent(s.ctx, shared, s.subject.PublicKey(), s.operator)
	s.Require().NoError(err)
	s.Equal(data, got)

	bad := config.DefaultConfig()
	bad.Storage = config.StorageConfig{Backend: "tape"}
	_, err = Open(s.ctx, bad, s.ledger, nil)
	s.ErrorIs(err, clienterrors.ErrInvalidConfig)
}

func mustField(s *PersonalSuite, d *Disclosure, path string) pdata.Value {
	v, ok := d.Field(path)
	s.Require().True(ok, path)
	return v
}
