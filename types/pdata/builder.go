package pdata

import (
	"slices"

	errorsmod "cosmossdk.io/errors"

	"github.com/Revolution-Populi/revpop-samples/crypto/salt"
)

// Builder creates full and partial records for one catalog
type Builder struct {
	catalog Catalog
	salts   salt.Source
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithSaltSource replaces the random salt source
func WithSaltSource(s salt.Source) BuilderOption {
	return func(b *Builder) {
		b.salts = s
	}
}

// NewBuilder returns a builder for catalog
func NewBuilder(c Catalog, opts ...BuilderOption) *Builder {
	b := &Builder{catalog: c, salts: salt.RandomSource}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Catalog returns the builder's catalog
func (b *Builder) Catalog() Catalog { return b.catalog }

// BuildFull commits to every catalog path of content with a fresh salt. The
// content is key-sorted first, absent paths are stored as null, and keys
// outside the catalog are dropped. It returns the record and its root hash.
func (b *Builder) BuildFull(content Value) (*Record, string, error) {
	obj, ok := content.(*Object)
	if !ok || obj == nil {
		return nil, "", errorsmod.Wrap(ErrInvalidValue, "content must be an object")
	}
	sorted := Canonicalize(obj)

	rec := NewRecord()
	for _, path := range b.catalog.paths {
		p := ParsePath(path)
		v, found := Get(sorted, p)
		if !found {
			v = Null{}
		}
		if err := Set(rec.Content, p, Clone(v)); err != nil {
			return nil, "", err
		}

		s, err := b.salts.NewSalt()
		if err != nil {
			return nil, "", errorsmod.Wrapf(ErrInvalidValue, "salt for %q: %s", path, err)
		}
		rec.Parts = append(rec.Parts, Part{Path: path, Salt: s.Base64()})
		s.Clear()
	}

	root, err := RootHash(rec)
	if err != nil {
		return nil, "", err
	}
	return rec, root, nil
}

// BuildPartial derives a record revealing only the requested paths of
// ancestor. A revealed part that is not requested becomes a missed part.
// Missed parts stay missed, and paths the ancestor never covered stay out.
// Requested paths outside the catalog are ignored.
func (b *Builder) BuildPartial(ancestor *Record, reveal []string) (*Record, error) {
	if err := ancestor.Validate(); err != nil {
		return nil, err
	}

	out := NewRecord()
	for _, path := range b.catalog.paths {
		if part, ok := ancestor.Part(path); ok {
			p := ParsePath(path)
			v, found := Get(ancestor.Content, p)
			if !found {
				return nil, errorsmod.Wrapf(ErrMissingField, "part %q", path)
			}

			if slices.Contains(reveal, path) {
				if err := Set(out.Content, p, Clone(v)); err != nil {
					return nil, err
				}
				out.Parts = append(out.Parts, part)
			} else {
				out.MissedParts = append(out.MissedParts, MissedPart{Path: path, Hash: PartHash(part.Salt, v)})
			}
			continue
		}

		if missed, ok := ancestor.Missed(path); ok {
			out.MissedParts = append(out.MissedParts, missed)
		}
	}

	return out, nil
}

var defaultBuilder = NewBuilder(DefaultCatalog)

// MakeFull builds a full record over DefaultCatalog
func MakeFull(content Value) (*Record, string, error) {
	return defaultBuilder.BuildFull(content)
}

// MakePartial derives a partial record over DefaultCatalog
func MakePartial(ancestor *Record, reveal []string) (*Record, error) {
	return defaultBuilder.BuildPartial(ancestor, reveal)
}
