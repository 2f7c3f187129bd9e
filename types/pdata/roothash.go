package pdata

import (
	"crypto/subtle"
	"slices"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/Revolution-Populi/revpop-samples/crypto/digest"
)

// PartHash commits to a value: sha256hex(salt + ":" + canonical JSON)
func PartHash(salt string, v Value) string {
	return digest.Sha256Hex(salt + ":" + string(CanonicalJSON(v)))
}

type leaf struct {
	path string
	hash string
}

// RootHash computes the record's root: the sha256hex of every leaf hash,
// ordered by path and joined with commas. Revealed parts are hashed from
// the content, missed parts contribute their stored hash.
func RootHash(r *Record) (string, error) {
	if r == nil {
		return "", errorsmod.Wrap(ErrInvalidRecord, "nil record")
	}

	leaves := make([]leaf, 0, len(r.Parts)+len(r.MissedParts))
	for _, p := range r.Parts {
		v, ok := Get(r.Content, ParsePath(p.Path))
		if !ok {
			return "", errorsmod.Wrapf(ErrMissingField, "part %q", p.Path)
		}
		leaves = append(leaves, leaf{path: p.Path, hash: PartHash(p.Salt, v)})
	}
	for _, m := range r.MissedParts {
		leaves = append(leaves, leaf{path: m.Path, hash: m.Hash})
	}

	slices.SortStableFunc(leaves, func(a, b leaf) int { return compareUTF16(a.path, b.path) })

	hashes := make([]string, len(leaves))
	for i, l := range leaves {
		hashes[i] = l.hash
	}
	return digest.Sha256Hex(strings.Join(hashes, ",")), nil
}

// ValidateCoverage checks that parts and missed parts together list every
// catalog path exactly once and nothing else
func ValidateCoverage(r *Record, c Catalog) error {
	if err := r.Validate(); err != nil {
		return err
	}

	paths := append(r.RevealedPaths(), r.HiddenPaths()...)
	slices.SortFunc(paths, compareUTF16)
	if !slices.Equal(paths, c.paths) {
		return errorsmod.Wrapf(ErrSchemaMismatch, "record covers %v, catalog is %v", paths, c.paths)
	}
	return nil
}

// Verify checks coverage against the catalog and compares the record's root
// hash with expected
func Verify(r *Record, expected string, c Catalog) error {
	if err := ValidateCoverage(r, c); err != nil {
		return err
	}

	root, err := RootHash(r)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(root), []byte(strings.ToLower(expected))) != 1 {
		return errorsmod.Wrapf(ErrHashMismatch, "computed %s, expected %s", root, expected)
	}
	return nil
}
