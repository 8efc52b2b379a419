package ports

import (
	"context"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/solana"

	"github.com/shopspring/decimal"
)

// TokenService resolves a verified-identity assertion into a wallet address.
// The assertion is issued and signed by the external wallet-auth collaborator;
// this service only verifies it and extracts the blockchain credential.
type TokenService interface {
	Resolve(tokenString string) (wallet string, err error)
}

// KeyProvider supplies the signing key material for assertion verification.
// Implementations own their refresh/expiry policy; callers never cache keys.
type KeyProvider interface {
	Key(ctx context.Context) (any, error)
}

// Resource identifies the kind of ledger record an ownership check targets.
type Resource string

const (
	ResourceAccount Resource = "account"
	ResourceOffer   Resource = "offer"
	ResourceTrade   Resource = "trade"
)

// TradeRole names the on-chain role an escrow operation is gated on.
type TradeRole string

const (
	// TradeRoleSeller is anchored in the ledger: the trade's resolved seller
	// wallet is authoritative, never the wallet supplied in the request.
	TradeRoleSeller TradeRole = "seller"
	// TradeRoleAuthority is the release authority (seller or arbitrator);
	// the ledger does not store it, so the supplied wallet must be the
	// caller's own.
	TradeRoleAuthority TradeRole = "authority"
	// TradeRoleDisputer is either participant opening a dispute on their own
	// behalf.
	TradeRoleDisputer TradeRole = "disputing party"
)

// AuthorizationService is the single ownership/participation guard consulted
// before every mutating operation. For accounts and offers ownership means
// the resolved owner wallet equals the caller; for trades it means the caller
// is the seller or buyer.
type AuthorizationService interface {
	AssertOwnership(ctx context.Context, callerWallet string, resource Resource, id int64) error
	// AssertTradeRole additionally requires the caller to hold the given
	// on-chain role for the trade. roleWallet is the role wallet named in
	// the request; for ledger-anchored roles it must also match the trade's
	// resolved wallet for that role.
	AssertTradeRole(ctx context.Context, callerWallet string, tradeID int64, roleWallet string, role TradeRole) error
}

// --- Accounts ---

// CreateAccountCommand holds validated input for account registration.
type CreateAccountCommand struct {
	WalletAddress string
	Username      *string
	Email         *string
}

// AccountService defines account registration and profile management.
type AccountService interface {
	Create(ctx context.Context, callerWallet string, cmd CreateAccountCommand) (*domain.Account, error)
	Get(ctx context.Context, id int64) (*domain.Account, error)
	GetByWallet(ctx context.Context, wallet string) (*domain.Account, error)
	Update(ctx context.Context, callerWallet string, id int64, patch AccountPatch) (*domain.Account, error)
}

// --- Offers ---

// CreateOfferCommand holds validated input for offer creation.
type CreateOfferCommand struct {
	CreatorAccountID int64
	OfferType        domain.OfferType
	Token            string
	FiatCurrency     string
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
	TotalAvailable   decimal.Decimal
	RateAdjustment   decimal.Decimal
	Terms            string
}

// OfferService defines offer inventory management.
type OfferService interface {
	Create(ctx context.Context, callerWallet string, cmd CreateOfferCommand) (*domain.Offer, error)
	Get(ctx context.Context, id int64) (*domain.Offer, error)
	List(ctx context.Context, params OfferListParams) ([]domain.Offer, error)
	Update(ctx context.Context, callerWallet string, id int64, patch OfferPatch) (*domain.Offer, error)
	Delete(ctx context.Context, callerWallet string, id int64) error
}

// --- Trades ---

// InitiateTradeCommand holds validated input for trade initiation.
type InitiateTradeCommand struct {
	Leg1OfferID             int64
	Leg2OfferID             *int64
	FromFiatCurrency        string
	DestinationFiatCurrency string
	FromBank                *string
	DestinationBank         *string
}

// UpdateTradeCommand holds validated input for a trade state update.
// Nil fields are left unchanged.
type UpdateTradeCommand struct {
	Leg1State     *domain.LegState
	OverallStatus *domain.OverallStatus
	FiatPaid      bool
}

// TradeService drives the trade lifecycle state machine.
type TradeService interface {
	Initiate(ctx context.Context, callerWallet string, cmd InitiateTradeCommand) (*domain.Trade, error)
	Get(ctx context.Context, id int64) (*domain.Trade, error)
	List(ctx context.Context, params TradeListParams) ([]domain.Trade, error)
	Update(ctx context.Context, callerWallet string, id int64, cmd UpdateTradeCommand) (*domain.Trade, error)
}

// --- Escrows ---

// CreateEscrowCommand holds validated input for create_escrow.
type CreateEscrowCommand struct {
	EscrowID                uint64
	TradeID                 uint64
	Seller                  string
	Buyer                   string
	Amount                  decimal.Decimal // converted to minor units (×100)
	Sequential              bool
	SequentialEscrowAddress *string
}

// FundEscrowCommand holds validated input for fund_escrow.
type FundEscrowCommand struct {
	EscrowID           uint64
	TradeID            uint64
	Seller             string
	SellerTokenAccount string
	TokenMint          string
}

// ReleaseEscrowCommand holds validated input for release_escrow.
type ReleaseEscrowCommand struct {
	EscrowID                     uint64
	TradeID                      uint64
	Authority                    string
	BuyerTokenAccount            string
	ArbitratorTokenAccount       string
	SequentialEscrowTokenAccount *string
}

// CancelEscrowCommand holds validated input for cancel_escrow.
type CancelEscrowCommand struct {
	EscrowID           uint64
	TradeID            uint64
	Seller             string
	Authority          string
	SellerTokenAccount *string
}

// DisputeEscrowCommand holds validated input for open_dispute_with_bond.
type DisputeEscrowCommand struct {
	EscrowID                   uint64
	TradeID                    uint64
	DisputingParty             string
	DisputingPartyTokenAccount string
	EvidenceHash               *string // hex, 32 bytes; zeroes when absent
}

// EscrowCreateResult is the create_escrow response: the instruction payload
// plus confirmation of the ledger side effects.
type EscrowCreateResult struct {
	Instruction   solana.Payload `json:"instruction"`
	EscrowAddress string         `json:"escrow_address"`
	LedgerUpdated bool           `json:"ledger_updated"`
}

// EscrowService builds signable escrow instructions and keeps the off-chain
// mirror in sync. It never signs or broadcasts.
type EscrowService interface {
	Create(ctx context.Context, callerWallet string, cmd CreateEscrowCommand) (*EscrowCreateResult, error)
	Fund(ctx context.Context, callerWallet string, cmd FundEscrowCommand) (*solana.Payload, error)
	Release(ctx context.Context, callerWallet string, cmd ReleaseEscrowCommand) (*solana.Payload, error)
	Cancel(ctx context.Context, callerWallet string, cmd CancelEscrowCommand) (*solana.Payload, error)
	Dispute(ctx context.Context, callerWallet string, cmd DisputeEscrowCommand) (*solana.Payload, error)
	GetByTrade(ctx context.Context, callerWallet string, tradeID int64) (*domain.Escrow, error)
}

// InstructionCache is the Redis fast path for create_escrow retries: a cached
// response is returned as-is so at-least-once delivery never re-derives or
// re-inserts. The durable guarantee is the idempotent ledger insert.
type InstructionCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
