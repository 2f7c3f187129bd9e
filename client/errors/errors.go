// Package errors defines error types and utilities for the RevPop client.
package errors

import (
	"errors"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
)

// Codespace of the client errors
const Codespace = "revpop_client"

// Storage error codes
const (
	CodeStorage uint32 = 1001 + iota
	CodeNotFound
	CodeBackendUnavailable
)

// Ledger error codes
const (
	CodeLedger uint32 = 2001 + iota
	CodeEntryExists
	CodeEntryNotFound
	CodeHashMismatch
)

// Disclosure error codes
const (
	CodeVerification uint32 = 3001 + iota
	CodeForbidden
)

// Configuration error codes
const (
	CodeInvalidConfig uint32 = 4001 + iota
	CodeMissingConfig
)

var (
	// Storage errors
	ErrStorage            = sdkerrors.Register(Codespace, CodeStorage, "storage operation failed")
	ErrNotFound           = sdkerrors.Register(Codespace, CodeNotFound, "blob not found")
	ErrBackendUnavailable = sdkerrors.Register(Codespace, CodeBackendUnavailable, "storage backend unavailable")

	// Ledger errors
	ErrLedger        = sdkerrors.Register(Codespace, CodeLedger, "ledger operation failed")
	ErrEntryExists   = sdkerrors.Register(Codespace, CodeEntryExists, "ledger entry already exists")
	ErrEntryNotFound = sdkerrors.Register(Codespace, CodeEntryNotFound, "ledger entry not found")
	ErrHashMismatch  = sdkerrors.Register(Codespace, CodeHashMismatch, "ledger entry hash mismatch")

	// Disclosure errors
	ErrVerification = sdkerrors.Register(Codespace, CodeVerification, "personal data verification failed")
	ErrForbidden    = sdkerrors.Register(Codespace, CodeForbidden, "path not disclosed to operator")

	// Configuration errors
	ErrInvalidConfig = sdkerrors.Register(Codespace, CodeInvalidConfig, "invalid configuration")
	ErrMissingConfig = sdkerrors.Register(Codespace, CodeMissingConfig, "missing required configuration")
)

// WrapError wraps an existing error with additional context and a client error code
func WrapError(err error, sdkErr *sdkerrors.Error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)
	return sdkerrors.Wrapf(sdkErr, "%s: %v", msg, err)
}

// IsStorageError returns true if the error came from a blob store
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBackendUnavailable)
}

// IsLedgerError returns true if the error came from the ledger
func IsLedgerError(err error) bool {
	return errors.Is(err, ErrLedger) ||
		errors.Is(err, ErrEntryExists) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrHashMismatch)
}

// IsConfigurationError returns true if the error is related to configuration
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// GetErrorCode extracts the error code from a registered error.
// Returns 0 if the error is not registered or doesn't have a code.
func GetErrorCode(err error) uint32 {
	var sdkErr *sdkerrors.Error
	if errors.As(err, &sdkErr) {
		return sdkErr.ABCICode()
	}
	return 0
}

// NewStorageError creates a storage error for the backend and operation
func NewStorageError(backend, operation string, underlying error) error {
	return WrapError(underlying, ErrStorage, "%s %s failed", backend, operation)
}

// NewLedgerError creates a ledger error for the operation
func NewLedgerError(operation string, underlying error) error {
	return WrapError(underlying, ErrLedger, "ledger %s failed", operation)
}
