package envelope

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	errorsmod "cosmossdk.io/errors"
)

// NonceGenerator issues time-based 64-bit nonces: the current Unix time in
// milliseconds shifted left by 16 bits, OR'd with a 16-bit rolling counter
// seeded from crypto/rand. It is safe for concurrent use.
type NonceGenerator struct {
	counter atomic.Uint32
	now     func() time.Time
}

// NewNonceGenerator seeds a generator from crypto/rand
func NewNonceGenerator() (*NonceGenerator, error) {
	var seed [2]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed nonce counter: %w", err)
	}
	return newNonceGenerator(uint32(binary.BigEndian.Uint16(seed[:])), time.Now), nil
}

func newNonceGenerator(seed uint32, now func() time.Time) *NonceGenerator {
	g := &NonceGenerator{now: now}
	g.counter.Store(seed)
	return g
}

// Next returns the next nonce
func (g *NonceGenerator) Next() uint64 {
	entropy := uint64(g.counter.Add(1) & 0xFFFF)
	ms := uint64(g.now().UnixMilli())
	return ms<<16 | entropy
}

// NextString returns the next nonce in its decimal wire form
func (g *NonceGenerator) NextString() string {
	return FormatNonce(g.Next())
}

// FormatNonce renders a nonce as an unsigned decimal string
func FormatNonce(nonce uint64) string {
	return strconv.FormatUint(nonce, 10)
}

// ParseNonce parses the decimal wire form of a nonce
func ParseNonce(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(ErrInvalidNonce, "%q", s)
	}
	return n, nil
}
