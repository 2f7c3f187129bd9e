package pdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	assert.True(t, ParsePath("").IsRoot())
	assert.True(t, Root().IsRoot())

	p := ParsePath("name.first")
	assert.False(t, p.IsRoot())
	assert.Equal(t, []string{"name", "first"}, p.Segments())
	assert.Equal(t, "name.first", p.String())
	assert.True(t, p.HasPrefix(ParsePath("name")))
	assert.True(t, p.HasPrefix(Root()))
	assert.False(t, ParsePath("name").HasPrefix(p))
	assert.Equal(t, p, FieldPath("name", "first"))
}

func TestGet(t *testing.T) {
	tree := NewObject(
		F("name", NewObject(F("first", String("James")))),
		F("email", String("bond@mi5.gov.uk")),
	)

	v, ok := Get(tree, Root())
	require.True(t, ok)
	assert.Same(t, tree, v)

	v, ok = Get(tree, ParsePath("name.first"))
	require.True(t, ok)
	assert.Equal(t, String("James"), v)

	_, ok = Get(tree, ParsePath("name.middle"))
	assert.False(t, ok)

	_, ok = Get(tree, ParsePath("email.domain"))
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	tree := &Object{}
	require.NoError(t, Set(tree, ParsePath("a.b.c"), Number(1)))
	assert.Equal(t, `{"a":{"b":{"c":1}}}`, string(CanonicalJSON(tree)))

	require.NoError(t, Set(tree, ParsePath("a.d"), String("x")))
	assert.Equal(t, `{"a":{"b":{"c":1},"d":"x"}}`, string(CanonicalJSON(tree)))

	err := Set(tree, ParsePath("a.d.e"), Number(2))
	require.ErrorIs(t, err, ErrPathConflict)
}

func TestSetRootReplacesTree(t *testing.T) {
	tree := NewObject(F("old", Number(1)))
	src := NewObject(F("new", String("v")))

	require.NoError(t, Set(tree, Root(), src))
	assert.Equal(t, []string{"new"}, tree.Keys())

	// Later changes to the source do not leak into the tree
	src.Set("new", String("changed"))
	v, _ := tree.Get("new")
	assert.Equal(t, String("v"), v)

	require.ErrorIs(t, Set(tree, Root(), String("scalar")), ErrPathConflict)
	require.ErrorIs(t, Set(tree, Root(), nil), ErrPathConflict)
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{"email", "name", "phone", "photo"}, DefaultCatalog.Paths())
	assert.Equal(t, 4, DefaultCatalog.Len())
	assert.True(t, DefaultCatalog.Contains("phone"))
	assert.False(t, DefaultCatalog.Contains("address"))

	tests := []struct {
		name  string
		paths []string
	}{
		{"empty", nil},
		{"root", []string{"a", ""}},
		{"duplicate", []string{"a", "b", "a"}},
		{"nested", []string{"name", "name.first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.paths...)
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}

	c, err := NewCatalog("name.last", "name.first")
	require.NoError(t, err)
	assert.Equal(t, []string{"name.first", "name.last"}, c.Paths())
}
