package ports

import (
	"context"

	"github.com/Panmoni/localsolana-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts.
// Lookups return nil, nil when the account does not exist.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByWallet(ctx context.Context, wallet string) (*domain.Account, error)
	Update(ctx context.Context, id int64, patch AccountPatch) (bool, error)
}

// AccountPatch holds partial-update fields; nil means unchanged.
type AccountPatch struct {
	Username         *string
	Email            *string
	TelegramUsername *string
	TelegramID       *int64
	ProfilePhotoURL  *string
	PhoneCountryCode *string
	PhoneNumber      *string
	AvailableFrom    *string
	AvailableTo      *string
	Timezone         *string
}

// OfferRepository defines persistence operations for offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Offer, error)
	List(ctx context.Context, params OfferListParams) ([]domain.Offer, error)
	Update(ctx context.Context, id int64, patch OfferPatch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// Reserve atomically decrements total_available_amount inside the given
	// transaction. It returns false when the offer's remaining amount is
	// already below min_amount or insufficient for the decrement.
	Reserve(ctx context.Context, tx pgx.Tx, offerID int64, amount decimal.Decimal) (bool, error)
}

// OfferListParams holds filters for listing offers.
type OfferListParams struct {
	OfferType        *domain.OfferType
	Token            *string
	CreatorAccountID *int64 // "mine" filter, resolved from the caller wallet
}

// OfferPatch holds partial-update fields; nil means unchanged.
type OfferPatch struct {
	MinAmount              *decimal.Decimal
	MaxAmount              *decimal.Decimal
	TotalAvailableAmount   *decimal.Decimal
	RateAdjustment         *decimal.Decimal
	Terms                  *string
	FiatCurrency           *string
	EscrowDepositTimeLimit *int
	FiatPaymentTimeLimit   *int
}

// TradeRepository defines persistence operations for trades.
type TradeRepository interface {
	// Create inserts the trade inside the given transaction so the insert
	// and the offer reservation commit or roll back as one unit.
	Create(ctx context.Context, tx pgx.Tx, trade *domain.Trade) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Trade, error)
	List(ctx context.Context, params TradeListParams) ([]domain.Trade, error)
	Update(ctx context.Context, id int64, patch TradePatch) (bool, error)
	SetEscrowAddress(ctx context.Context, id int64, address string) (bool, error)
	// ParticipantWallets resolves the seller and buyer wallet addresses of a
	// trade. Returns empty strings when the trade does not exist.
	ParticipantWallets(ctx context.Context, id int64) (seller, buyer string, err error)
}

// TradeListParams holds filters for listing trades.
type TradeListParams struct {
	OverallStatus *domain.OverallStatus
	AccountID     *int64 // trades where the account is seller or buyer
}

// TradePatch holds partial-update fields with COALESCE semantics.
type TradePatch struct {
	Leg1State     *domain.LegState
	OverallStatus *domain.OverallStatus
	FiatPaid      bool // stamps leg1_fiat_paid_at when true
}

// EscrowRepository defines persistence for the on-chain escrow mirror.
type EscrowRepository interface {
	// CreateIdempotent inserts the escrow row, treating a duplicate derived
	// address as a silent no-op. Returns whether a row was actually inserted.
	CreateIdempotent(ctx context.Context, escrow *domain.Escrow) (bool, error)
	GetByTradeID(ctx context.Context, tradeID int64) (*domain.Escrow, error)
	GetByAddress(ctx context.Context, address string) (*domain.Escrow, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
