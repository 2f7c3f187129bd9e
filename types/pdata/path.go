package pdata

import (
	"slices"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Path addresses a node of a content tree. The zero Path is the root, any
// other path is a non-empty sequence of object keys.
type Path struct {
	segments []string
}

// Root returns the path of the whole tree
func Root() Path { return Path{} }

// FieldPath builds a path from its segments
func FieldPath(segments ...string) Path {
	if len(segments) == 0 {
		return Root()
	}
	return Path{segments: slices.Clone(segments)}
}

// ParsePath splits a dot-separated path. The empty string is the root.
func ParsePath(s string) Path {
	if s == "" {
		return Root()
	}
	return Path{segments: strings.Split(s, ".")}
}

// IsRoot reports whether p addresses the whole tree
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

// Segments returns a copy of the path's keys
func (p Path) Segments() []string { return slices.Clone(p.segments) }

// String joins the segments with dots
func (p Path) String() string { return strings.Join(p.segments, ".") }

// HasPrefix reports whether q is p or one of its ancestors
func (p Path) HasPrefix(q Path) bool {
	if len(q.segments) > len(p.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(q.segments)], q.segments)
}

// Get returns the value at p. Walking through anything other than an object,
// or a missing key, reports not found.
func Get(tree Value, p Path) (Value, bool) {
	cur := tree
	for _, seg := range p.segments {
		obj, ok := cur.(*Object)
		if !ok || obj == nil {
			return nil, false
		}
		if cur, ok = obj.Get(seg); !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Set writes v at p inside tree, creating intermediate objects as needed.
// At the root, v must be an object and replaces every key of tree.
func Set(tree *Object, p Path, v Value) error {
	if tree == nil {
		return errorsmod.Wrap(ErrInvalidValue, "nil tree")
	}

	if p.IsRoot() {
		return ReplaceRoot(tree, v)
	}

	cur := tree
	for i, seg := range p.segments[:len(p.segments)-1] {
		next, ok := cur.Get(seg)
		if !ok {
			child := &Object{}
			cur.Set(seg, child)
			cur = child
			continue
		}
		child, ok := next.(*Object)
		if !ok || child == nil {
			return errorsmod.Wrapf(ErrPathConflict, "%s is a %s",
				strings.Join(p.segments[:i+1], "."), next.Kind())
		}
		cur = child
	}

	cur.Set(p.segments[len(p.segments)-1], v)
	return nil
}

// ReplaceRoot clears tree and copies every key of v into it
func ReplaceRoot(tree *Object, v Value) error {
	src, ok := v.(*Object)
	if !ok || src == nil {
		kind := "nil"
		if v != nil {
			kind = v.Kind().String()
		}
		return errorsmod.Wrapf(ErrPathConflict, "root value must be an object, got %s", kind)
	}

	copied := src.Clone()
	tree.Clear()
	copied.Range(func(k string, e Value) bool {
		tree.Set(k, e)
		return true
	})
	return nil
}
