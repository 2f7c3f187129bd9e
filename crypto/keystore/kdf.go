package keystore

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KDFArgon2id names the only supported key derivation function
const KDFArgon2id = "argon2id"

// Upper bounds on parameters read from key files
const (
	MaxTime        = 10
	MaxMemory      = 1024 * 1024 // 1GB
	MaxParallelism = 16
)

// Params defines Argon2id parameters
type Params struct {
	Time        uint32 `json:"t"` // Number of iterations
	Memory      uint32 `json:"m"` // Memory in KB
	Parallelism uint8  `json:"p"` // Number of threads
	SaltLength  uint32 `json:"-"`
}

// DefaultParams returns the parameters used for new key files
func DefaultParams() Params {
	return Params{
		Time:        1,
		Memory:      64 * 1024, // 64MB
		Parallelism: 4,
		SaltLength:  32,
	}
}

// LightParams returns the smallest parameters Validate accepts
func LightParams() Params {
	return Params{
		Time:        1,
		Memory:      8 * 1024, // 8MB
		Parallelism: 1,
		SaltLength:  16,
	}
}

// Validate checks the parameters against the accepted bounds
func (p Params) Validate() error {
	if p.Time < 1 || p.Time > MaxTime {
		return fmt.Errorf("time must be between 1 and %d, got %d", MaxTime, p.Time)
	}
	if p.Memory < 8*1024 || p.Memory > MaxMemory {
		return fmt.Errorf("memory must be between 8MB and 1GB, got %dKB", p.Memory)
	}
	if p.Parallelism < 1 || p.Parallelism > MaxParallelism {
		return fmt.Errorf("parallelism must be between 1 and %d, got %d", MaxParallelism, p.Parallelism)
	}
	return nil
}

// derive stretches password into the encryption key followed by the MAC key
func (p Params) derive(password, salt []byte) (encKey, macKey []byte) {
	out := argon2.IDKey(password, salt, p.Time, p.Memory, p.Parallelism, 2*keyLength)
	return out[:keyLength], out[keyLength:]
}
