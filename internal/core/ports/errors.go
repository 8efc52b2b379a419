package ports

import "errors"

// ErrDuplicateKey signals a uniqueness violation from the ledger. Services
// decide whether it degrades to a no-op (escrow create) or a 409.
var ErrDuplicateKey = errors.New("duplicate key")
