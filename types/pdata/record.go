// Package pdata implements selectively disclosable personal data records.
//
// A record commits to every catalog path with a salted hash. A holder can
// derive partial records that reveal a subset of paths and replace the rest
// by their hashes, and every derived record keeps the root hash of the full
// record it came from.
package pdata

import (
	"encoding/hex"
	"encoding/json"
	"slices"

	errorsmod "cosmossdk.io/errors"
)

// Part is a revealed disclosure unit with the salt committing to its value
type Part struct {
	Path string `json:"path"`
	Salt string `json:"salt"`
}

// MissedPart is a hidden disclosure unit, present only as its hash
type MissedPart struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Record holds the revealed content with the parts and missed parts that
// together cover the catalog exactly once.
type Record struct {
	Content     *Object      `json:"content"`
	Parts       []Part       `json:"parts"`
	MissedParts []MissedPart `json:"missed_parts"`
}

// NewRecord returns an empty record
func NewRecord() *Record {
	return &Record{
		Content:     &Object{},
		Parts:       []Part{},
		MissedParts: []MissedPart{},
	}
}

// ParseRecord decodes a serialized record
func ParseRecord(data []byte) (*Record, error) {
	r := &Record{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRecord, err.Error())
	}
	return r, nil
}

// Bytes serializes the record as JSON
func (r *Record) Bytes() ([]byte, error) {
	return json.Marshal(r)
}

type recordJSON Record

// MarshalJSON writes empty lists and content rather than null
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON(r)
	if out.Content == nil {
		out.Content = &Object{}
	}
	if out.Parts == nil {
		out.Parts = []Part{}
	}
	if out.MissedParts == nil {
		out.MissedParts = []MissedPart{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record, defaulting absent fields to empty
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Content == nil {
		in.Content = &Object{}
	}
	if in.Parts == nil {
		in.Parts = []Part{}
	}
	if in.MissedParts == nil {
		in.MissedParts = []MissedPart{}
	}
	*r = Record(in)
	return nil
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	return &Record{
		Content:     r.Content.Clone(),
		Parts:       slices.Clone(r.Parts),
		MissedParts: slices.Clone(r.MissedParts),
	}
}

// Part returns the revealed part at path
func (r *Record) Part(path string) (Part, bool) {
	i := slices.IndexFunc(r.Parts, func(p Part) bool { return p.Path == path })
	if i < 0 {
		return Part{}, false
	}
	return r.Parts[i], true
}

// Missed returns the hidden part at path
func (r *Record) Missed(path string) (MissedPart, bool) {
	i := slices.IndexFunc(r.MissedParts, func(p MissedPart) bool { return p.Path == path })
	if i < 0 {
		return MissedPart{}, false
	}
	return r.MissedParts[i], true
}

// Value returns the revealed content at path
func (r *Record) Value(path string) (Value, bool) {
	if _, ok := r.Part(path); !ok {
		return nil, false
	}
	return Get(r.Content, ParsePath(path))
}

// RevealedPaths lists the paths of the revealed parts
func (r *Record) RevealedPaths() []string {
	out := make([]string, len(r.Parts))
	for i, p := range r.Parts {
		out[i] = p.Path
	}
	return out
}

// HiddenPaths lists the paths of the missed parts
func (r *Record) HiddenPaths() []string {
	out := make([]string, len(r.MissedParts))
	for i, p := range r.MissedParts {
		out[i] = p.Path
	}
	return out
}

// Validate checks the record's structure: non-empty paths and salts,
// well-formed hashes, and no path listed twice.
func (r *Record) Validate() error {
	if r == nil {
		return errorsmod.Wrap(ErrInvalidRecord, "nil record")
	}

	seen := make(map[string]struct{}, len(r.Parts)+len(r.MissedParts))
	mark := func(path string) error {
		if path == "" {
			return errorsmod.Wrap(ErrInvalidRecord, "empty part path")
		}
		if _, dup := seen[path]; dup {
			return errorsmod.Wrapf(ErrInvalidRecord, "path %q listed twice", path)
		}
		seen[path] = struct{}{}
		return nil
	}

	for _, p := range r.Parts {
		if err := mark(p.Path); err != nil {
			return err
		}
		if p.Salt == "" {
			return errorsmod.Wrapf(ErrInvalidRecord, "part %q has no salt", p.Path)
		}
	}

	for _, m := range r.MissedParts {
		if err := mark(m.Path); err != nil {
			return err
		}
		if len(m.Hash) != 64 {
			return errorsmod.Wrapf(ErrInvalidRecord, "missed part %q hash has length %d", m.Path, len(m.Hash))
		}
		if _, err := hex.DecodeString(m.Hash); err != nil {
			return errorsmod.Wrapf(ErrInvalidRecord, "missed part %q hash is not hex", m.Path)
		}
	}

	return nil
}
