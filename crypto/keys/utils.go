package keys

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // graphene public key checksums are ripemd160
)

const checksumSize = 4

// doubleSha256Checksum returns the first four bytes of sha256(sha256(data))
func doubleSha256Checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}

// ripemd160Checksum returns the first four bytes of ripemd160(data)
func ripemd160Checksum(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)[:checksumSize]
}

func verifyChecksum(expected, actual []byte) bool {
	return subtle.ConstantTimeCompare(expected, actual) == 1
}
