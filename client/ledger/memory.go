package ledger

import (
	"context"
	"strings"
	"sync"

	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/log"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

// MemoryLedger keeps live entries in creation order and journals every
// change
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []Entry
	journal *Journal
	logger  log.Logger
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger returns an empty ledger. A nil logger discards output.
func NewMemoryLedger(logger log.Logger) *MemoryLedger {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &MemoryLedger{
		journal: newJournal(),
		logger:  logger.With("module", "ledger"),
	}
}

// Journal returns the operation log
func (l *MemoryLedger) Journal() *Journal { return l.journal }

func (l *MemoryLedger) Create(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return clienterrors.NewLedgerError("create", err)
	}
	e.Hash = strings.ToLower(e.Hash)
	if err := e.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(e.Subject, e.Operator, e.Hash) >= 0 {
		return sdkerrors.Wrapf(clienterrors.ErrEntryExists, "subject %s operator %s hash %s", e.Subject, e.Operator, e.Hash)
	}

	if _, err := l.journal.append(OpCreate, e); err != nil {
		return clienterrors.NewLedgerError("create", err)
	}
	l.entries = append(l.entries, e)

	l.logger.Info("ledger entry created", "subject", e.Subject, "operator", e.Operator, "hash", e.Hash)
	return nil
}

func (l *MemoryLedger) Latest(ctx context.Context, subject, operator string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, clienterrors.NewLedgerError("latest", err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Subject == subject && e.Operator == operator {
			return &e, nil
		}
	}
	return nil, sdkerrors.Wrapf(clienterrors.ErrEntryNotFound, "subject %s operator %s", subject, operator)
}

func (l *MemoryLedger) Remove(ctx context.Context, subject, operator, hash string) error {
	if err := ctx.Err(); err != nil {
		return clienterrors.NewLedgerError("remove", err)
	}
	hash = strings.ToLower(hash)

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(subject, operator, hash)
	if i < 0 {
		if l.indexOf(subject, operator, "") >= 0 {
			return sdkerrors.Wrapf(clienterrors.ErrHashMismatch, "subject %s operator %s has no entry with hash %s", subject, operator, hash)
		}
		return sdkerrors.Wrapf(clienterrors.ErrEntryNotFound, "subject %s operator %s", subject, operator)
	}

	removed := l.entries[i]
	if _, err := l.journal.append(OpRemove, removed); err != nil {
		return clienterrors.NewLedgerError("remove", err)
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)

	l.logger.Info("ledger entry removed", "subject", subject, "operator", operator, "hash", hash)
	return nil
}

func (l *MemoryLedger) List(ctx context.Context, operator string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, clienterrors.NewLedgerError("list", err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Operator == operator {
			out = append(out, e)
		}
	}
	return out, nil
}

// indexOf finds a live entry for the pair. An empty hash matches any entry.
func (l *MemoryLedger) indexOf(subject, operator, hash string) int {
	for i, e := range l.entries {
		if e.Subject != subject || e.Operator != operator {
			continue
		}
		if hash == "" || e.Hash == hash {
			return i
		}
	}
	return -1
}
