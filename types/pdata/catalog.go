package pdata

import (
	"slices"

	errorsmod "cosmossdk.io/errors"
)

// Catalog is the sorted, fixed list of disclosable paths for one record
// schema. Paths are disjoint: none is an ancestor of another.
type Catalog struct {
	paths []string
}

// DefaultCatalog holds the personal data units: email, name, phone, photo
var DefaultCatalog = MustCatalog("name", "email", "phone", "photo")

// NewCatalog sorts and validates paths
func NewCatalog(paths ...string) (Catalog, error) {
	if len(paths) == 0 {
		return Catalog{}, errorsmod.Wrap(ErrInvalidCatalog, "no paths")
	}

	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, compareUTF16)

	for i, p := range sorted {
		if p == "" {
			return Catalog{}, errorsmod.Wrap(ErrInvalidCatalog, "root path cannot be a disclosure unit")
		}
		if i > 0 && sorted[i-1] == p {
			return Catalog{}, errorsmod.Wrapf(ErrInvalidCatalog, "duplicate path %q", p)
		}
	}

	for _, a := range sorted {
		for _, b := range sorted {
			if a != b && ParsePath(b).HasPrefix(ParsePath(a)) {
				return Catalog{}, errorsmod.Wrapf(ErrInvalidCatalog, "path %q contains %q", a, b)
			}
		}
	}

	return Catalog{paths: sorted}, nil
}

// MustCatalog is NewCatalog that panics on error
func MustCatalog(paths ...string) Catalog {
	c, err := NewCatalog(paths...)
	if err != nil {
		panic(err)
	}
	return c
}

// Paths returns the catalog paths in sorted order
func (c Catalog) Paths() []string { return slices.Clone(c.paths) }

// Len returns the number of paths
func (c Catalog) Len() int { return len(c.paths) }

// Contains reports whether path is a catalog unit
func (c Catalog) Contains(path string) bool {
	_, found := slices.BinarySearchFunc(c.paths, path, compareUTF16)
	return found
}
