package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Op is a journaled ledger operation
type Op string

const (
	OpCreate Op = "create"
	OpRemove Op = "remove"
)

// Record is one journal line. Hash chains the record to every record
// before it.
type Record struct {
	Seq   uint64 `json:"seq"`
	TS    int64  `json:"ts"`
	Op    Op     `json:"op"`
	Entry Entry  `json:"entry"`
	Hash  string `json:"hash"`
}

// Journal is an append-only, hash-chained log of ledger operations
type Journal struct {
	mu       sync.RWMutex
	lastHash []byte
	records  []Record
	now      func() time.Time
}

func newJournal() *Journal {
	return &Journal{now: time.Now}
}

func (j *Journal) append(op Op, e Entry) (Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	r := Record{
		Seq:   uint64(len(j.records)) + 1,
		TS:    j.now().Unix(),
		Op:    op,
		Entry: e,
	}
	sum, err := chain(j.lastHash, r)
	if err != nil {
		return Record{}, err
	}
	r.Hash = hex.EncodeToString(sum)

	j.lastHash = sum
	j.records = append(j.records, r)
	return r, nil
}

// Verify recomputes the chain and reports the first record that does not
// match
func (j *Journal) Verify() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var prev []byte
	for i, r := range j.records {
		if r.Seq != uint64(i)+1 {
			return fmt.Errorf("journal record %d out of sequence: seq %d", i, r.Seq)
		}
		sum, err := chain(prev, r)
		if err != nil {
			return err
		}
		if hex.EncodeToString(sum) != r.Hash {
			return fmt.Errorf("journal chain broken at seq %d", r.Seq)
		}
		prev = sum
	}
	return nil
}

// Records returns a copy of the journal
func (j *Journal) Records() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Record(nil), j.records...)
}

// Head returns the hash of the last record, empty for an empty journal
func (j *Journal) Head() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return hex.EncodeToString(j.lastHash)
}

func chain(prev []byte, r Record) ([]byte, error) {
	r.Hash = ""
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode journal record: %w", err)
	}

	h := sha256.New()
	h.Write(prev)
	h.Write(payload)
	return h.Sum(nil), nil
}
