// Package ledger records which personal data a subject has shared with an
// operator. Each entry binds a (subject, operator) pair to the storage
// location of a sealed record and the root hash that record must reproduce.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkerrors "cosmossdk.io/errors"
	z "github.com/Oudwins/zog"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/crypto/digest"
)

// Entry is a ledger row. Subject and Operator are account identifiers, the
// client uses did:key strings.
type Entry struct {
	Subject     string `json:"subject"`
	Operator    string `json:"operator"`
	URL         string `json:"url"`
	Hash        string `json:"hash"`
	StorageData string `json:"storage_data"`
}

// Ledger is the registry of shared personal data
type Ledger interface {
	// Create adds an entry. An entry with the same subject, operator and
	// hash already present yields ErrEntryExists.
	Create(ctx context.Context, e Entry) error

	// Latest returns the most recently created entry for the pair
	Latest(ctx context.Context, subject, operator string) (*Entry, error)

	// Remove deletes the entry for the pair carrying hash
	Remove(ctx context.Context, subject, operator, hash string) error

	// List returns the entries shared with operator, oldest first
	List(ctx context.Context, operator string) ([]Entry, error)
}

var entrySchema = z.Struct(z.Shape{
	"subject":  z.String().Required().Min(1, z.Message("Subject cannot be empty")),
	"operator": z.String().Required().Min(1, z.Message("Operator cannot be empty")),
	"location": z.String().Required().Min(1, z.Message("URL cannot be empty")),
	"hash":     z.String().Required(),
})

// Validate checks that every field an entry needs is set and that Hash is a
// sha256 hex digest
func (e Entry) Validate() error {
	var validated struct {
		Subject  string
		Operator string
		Location string
		Hash     string
	}

	errs := entrySchema.Parse(map[string]any{
		"subject":  e.Subject,
		"operator": e.Operator,
		"location": e.URL,
		"hash":     e.Hash,
	}, &validated)
	if errs != nil {
		return clienterrors.WrapError(fmt.Errorf("%v", errs), clienterrors.ErrLedger, "invalid entry")
	}

	if _, err := digest.DecodeSha256Hex(e.Hash); err != nil {
		return clienterrors.WrapError(err, clienterrors.ErrLedger, "invalid entry hash")
	}
	return nil
}

// Supersede replaces the latest entry of the pair with e. It returns the
// removed entry, or nil when the pair had none. When e cannot be created the
// removed entry is restored.
func Supersede(ctx context.Context, l Ledger, e Entry) (*Entry, error) {
	e.Hash = strings.ToLower(e.Hash)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	old, err := l.Latest(ctx, e.Subject, e.Operator)
	switch {
	case err == nil:
		if err := l.Remove(ctx, old.Subject, old.Operator, old.Hash); err != nil {
			return nil, err
		}
	case sdkerrors.IsOf(err, clienterrors.ErrEntryNotFound):
		old = nil
	default:
		return nil, err
	}

	if err := l.Create(ctx, e); err != nil {
		if old == nil {
			return nil, err
		}
		if rerr := l.Create(context.WithoutCancel(ctx), *old); rerr != nil {
			return nil, errors.Join(err, clienterrors.NewLedgerError("restore", rerr))
		}
		return nil, err
	}
	return old, nil
}
