package pdata

import errorsmod "cosmossdk.io/errors"

const codespace = "pdata"

var (
	ErrMissingField   = errorsmod.Register(codespace, 2, "revealed field missing from content")
	ErrSchemaMismatch = errorsmod.Register(codespace, 3, "record paths do not match catalog")
	ErrHashMismatch   = errorsmod.Register(codespace, 4, "root hash mismatch")
	ErrPathConflict   = errorsmod.Register(codespace, 5, "path crosses a non-object value")
	ErrInvalidValue   = errorsmod.Register(codespace, 6, "invalid value")
	ErrInvalidRecord  = errorsmod.Register(codespace, 7, "invalid record")
	ErrInvalidCatalog = errorsmod.Register(codespace, 8, "invalid catalog")
)
