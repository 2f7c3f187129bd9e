package pdata

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Canonicalize returns a deep copy of v with the keys of every object,
// at every depth, sorted by UTF-16 code unit order. Array order is kept.
func Canonicalize(v Value) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Canonicalize(e)
		}
		return out
	case *Object:
		if t == nil {
			return Null{}
		}
		out := &Object{}
		for _, k := range sortedKeys(t) {
			out.Set(k, Canonicalize(t.fields[k]))
		}
		return out
	default:
		return v
	}
}

// CanonicalJSON serializes v compactly with object keys sorted at every
// depth. The output matches JSON.stringify applied to a key-sorted tree.
func CanonicalJSON(v Value) []byte {
	return appendValue(nil, v, true)
}

func sortedKeys(o *Object) []string {
	keys := slices.Clone(o.keys)
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 orders strings by UTF-16 code units. It only differs from
// byte order when a supplementary plane rune meets a rune in U+E000..U+FFFF.
func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	return slices.Compare(ua, ub)
}

func appendValue(buf []byte, v Value, sorted bool) []byte {
	switch t := v.(type) {
	case nil, Null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, bool(t))
	case Number:
		return appendNumber(buf, float64(t))
	case String:
		return appendString(buf, string(t))
	case Array:
		buf = append(buf, '[')
		for i, e := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendValue(buf, e, sorted)
		}
		return append(buf, ']')
	case *Object:
		if t == nil {
			return append(buf, "null"...)
		}
		keys := t.keys
		if sorted {
			keys = sortedKeys(t)
		}
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, k)
			buf = append(buf, ':')
			buf = appendValue(buf, t.fields[k], sorted)
		}
		return append(buf, '}')
	}
	return append(buf, "null"...)
}

// appendNumber formats f the way ECMAScript Number::toString does.
// Non-finite numbers become null.
func appendNumber(buf []byte, f float64) []byte {
	if !isFinite(f) {
		return append(buf, "null"...)
	}
	if f == 0 {
		return append(buf, '0')
	}

	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.AppendFloat(buf, f, 'f', -1, 64)
	}

	// Exponent form: drop the exponent's leading zeros, keep its sign
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}

	buf = append(buf, mant...)
	buf = append(buf, 'e', sign)
	return append(buf, digits...)
}

// appendString quotes s with JSON.stringify escaping rules: only the quote,
// backslash, and control characters are escaped. Invalid UTF-8 becomes U+FFFD.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				buf = append(buf, '\\', '"')
			case '\\':
				buf = append(buf, '\\', '\\')
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			default:
				if c < 0x20 {
					buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
				} else {
					buf = append(buf, c)
				}
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, "\ufffd"...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
