package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// NormalizeWallet validates a wallet address and returns its canonical base58
// form (decode then re-encode, so lookups never depend on how the client
// spelled the address). Returns an error for anything that is not a 32-byte
// base58 public key.
func NormalizeWallet(addr string) (string, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("decode wallet address: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("wallet address must decode to 32 bytes, got %d", len(raw))
	}
	return base58.Encode(raw), nil
}

// IsWallet reports whether addr is a valid base58 public key.
func IsWallet(addr string) bool {
	_, err := NormalizeWallet(addr)
	return err == nil
}
