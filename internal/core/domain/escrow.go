package domain

import "time"

// EscrowStatus mirrors the on-chain escrow account lifecycle.
type EscrowStatus string

const (
	EscrowStatusPending   EscrowStatus = "PENDING"
	EscrowStatusFunded    EscrowStatus = "FUNDED"
	EscrowStatusReleased  EscrowStatus = "RELEASED"
	EscrowStatusCancelled EscrowStatus = "CANCELLED"
	EscrowStatusDisputed  EscrowStatus = "DISPUTED"
)

// Escrow is the off-chain mirror of an on-chain escrow account, keyed by the
// derived program address. At most one row exists per trade; inserting the
// same address twice is a no-op.
type Escrow struct {
	ID                      int64        `json:"id"`
	TradeID                 int64        `json:"trade_id"`
	EscrowAddress           string       `json:"escrow_address"`
	SellerAddress           string       `json:"seller_address"`
	BuyerAddress            string       `json:"buyer_address"`
	TokenType               string       `json:"token_type"`
	Amount                  uint64       `json:"amount"` // minor units, as sent on-chain
	Status                  EscrowStatus `json:"status"`
	Sequential              bool         `json:"sequential"`
	SequentialEscrowAddress *string      `json:"sequential_escrow_address,omitempty"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}
