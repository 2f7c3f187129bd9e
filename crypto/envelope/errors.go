package envelope

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the registration namespace of envelope errors
const Codespace = "envelope"

var (
	// ErrInvalidKey is returned when the derived checksum does not match: the
	// envelope was sealed for a different key pair.
	ErrInvalidKey = errorsmod.Register(Codespace, 2, "invalid key")
	// ErrInvalidNonce is returned for nonces that are not unsigned 64-bit decimals
	ErrInvalidNonce = errorsmod.Register(Codespace, 3, "invalid nonce")
	// ErrMalformedEnvelope is returned when an envelope cannot be split into nonce and ciphertext
	ErrMalformedEnvelope = errorsmod.Register(Codespace, 4, "malformed envelope")
)
