package keystore

import (
	"math"
	"unicode"
	"unicode/utf8"

	errorsmod "cosmossdk.io/errors"
)

// Policy defines the requirements a key file password must meet
type Policy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigits    bool
	RequireSpecial   bool
	MinEntropy       float64 // bits
}

// DefaultPolicy accepts passphrases of at least 12 characters with an
// estimated 50 bits of entropy.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:  12,
		MaxLength:  128,
		MinEntropy: 50.0,
	}
}

// StrictPolicy additionally requires every character class
func StrictPolicy() Policy {
	p := DefaultPolicy()
	p.RequireUppercase = true
	p.RequireLowercase = true
	p.RequireDigits = true
	p.RequireSpecial = true
	return p
}

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(password []byte) charClasses {
	var c charClasses
	for _, ch := range string(password) {
		switch {
		case unicode.IsUpper(ch):
			c.upper = true
		case unicode.IsLower(ch):
			c.lower = true
		case unicode.IsDigit(ch):
			c.digit = true
		case unicode.IsSpace(ch):
			// Spaces are allowed but not counted as special
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			c.special = true
		}
	}
	return c
}

// Check reports the first requirement password fails as ErrWeakPassword
func (p Policy) Check(password []byte) error {
	n := utf8.RuneCount(password)
	if n < p.MinLength {
		return errorsmod.Wrapf(ErrWeakPassword, "must be at least %d characters", p.MinLength)
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return errorsmod.Wrapf(ErrWeakPassword, "must not exceed %d characters", p.MaxLength)
	}

	c := classify(password)
	switch {
	case p.RequireUppercase && !c.upper:
		return errorsmod.Wrap(ErrWeakPassword, "must contain an uppercase letter")
	case p.RequireLowercase && !c.lower:
		return errorsmod.Wrap(ErrWeakPassword, "must contain a lowercase letter")
	case p.RequireDigits && !c.digit:
		return errorsmod.Wrap(ErrWeakPassword, "must contain a digit")
	case p.RequireSpecial && !c.special:
		return errorsmod.Wrap(ErrWeakPassword, "must contain a special character")
	}

	if e := Entropy(password); e < p.MinEntropy {
		return errorsmod.Wrapf(ErrWeakPassword, "entropy too low: %.1f bits (minimum: %.1f)", e, p.MinEntropy)
	}
	return nil
}

// Entropy estimates password entropy in bits as length * log2(pool), where
// the pool is the sum of the character classes present.
func Entropy(password []byte) float64 {
	c := classify(password)

	pool := 0
	if c.lower {
		pool += 26
	}
	if c.upper {
		pool += 26
	}
	if c.digit {
		pool += 10
	}
	if c.special {
		pool += 32
	}
	if pool == 0 {
		return 0
	}

	return float64(utf8.RuneCount(password)) * math.Log2(float64(pool))
}
