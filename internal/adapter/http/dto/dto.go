package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest is the request body for account registration.
type CreateAccountRequest struct {
	WalletAddress string  `json:"wallet_address" binding:"required,solana_address"`
	Username      *string `json:"username,omitempty" binding:"omitempty,min=3,max=25"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
}

// UpdateAccountRequest is the request body for profile updates. Absent fields
// are left unchanged.
type UpdateAccountRequest struct {
	Username         *string `json:"username,omitempty" binding:"omitempty,min=3,max=25"`
	Email            *string `json:"email,omitempty" binding:"omitempty,email"`
	TelegramUsername *string `json:"telegram_username,omitempty" binding:"omitempty,max=32"`
	TelegramID       *int64  `json:"telegram_id,omitempty"`
	ProfilePhotoURL  *string `json:"profile_photo_url,omitempty" binding:"omitempty,url"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty" binding:"omitempty,max=5"`
	PhoneNumber      *string `json:"phone_number,omitempty" binding:"omitempty,max=20"`
	AvailableFrom    *string `json:"available_from,omitempty" binding:"omitempty,clock_time"`
	AvailableTo      *string `json:"available_to,omitempty" binding:"omitempty,clock_time"`
	Timezone         *string `json:"timezone,omitempty" binding:"omitempty,max=64"`
}

// CreateOfferRequest is the request body for offer creation. Zero-valued
// optional fields are filled with marketplace defaults.
type CreateOfferRequest struct {
	CreatorAccountID int64           `json:"creator_account_id" binding:"required"`
	OfferType        string          `json:"offer_type" binding:"required,oneof=BUY SELL"`
	Token            string          `json:"token,omitempty" binding:"omitempty,max=10"`
	FiatCurrency     string          `json:"fiat_currency,omitempty" binding:"omitempty,fiat_code"`
	MinAmount        decimal.Decimal `json:"min_amount"`
	MaxAmount        decimal.Decimal `json:"max_amount"`
	TotalAvailable   decimal.Decimal `json:"total_available_amount"`
	RateAdjustment   decimal.Decimal `json:"rate_adjustment"`
	Terms            string          `json:"terms,omitempty" binding:"omitempty,max=500"`
}

// UpdateOfferRequest is the request body for offer updates. Absent fields are
// left unchanged.
type UpdateOfferRequest struct {
	MinAmount              *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount              *decimal.Decimal `json:"max_amount,omitempty"`
	TotalAvailable         *decimal.Decimal `json:"total_available_amount,omitempty"`
	RateAdjustment         *decimal.Decimal `json:"rate_adjustment,omitempty"`
	Terms                  *string          `json:"terms,omitempty" binding:"omitempty,max=500"`
	FiatCurrency           *string          `json:"fiat_currency,omitempty" binding:"omitempty,fiat_code"`
	EscrowDepositTimeLimit *int             `json:"escrow_deposit_time_limit,omitempty" binding:"omitempty,min=1,max=1440"`
	FiatPaymentTimeLimit   *int             `json:"fiat_payment_time_limit,omitempty" binding:"omitempty,min=1,max=1440"`
}

// InitiateTradeRequest is the request body for trade initiation.
type InitiateTradeRequest struct {
	Leg1OfferID             int64   `json:"leg1_offer_id" binding:"required"`
	Leg2OfferID             *int64  `json:"leg2_offer_id,omitempty"`
	FromFiatCurrency        string  `json:"from_fiat_currency,omitempty" binding:"omitempty,fiat_code"`
	DestinationFiatCurrency string  `json:"destination_fiat_currency,omitempty" binding:"omitempty,fiat_code"`
	FromBank                *string `json:"from_bank,omitempty" binding:"omitempty,max=100"`
	DestinationBank         *string `json:"destination_bank,omitempty" binding:"omitempty,max=100"`
}

// UpdateTradeRequest is the request body for trade state updates.
type UpdateTradeRequest struct {
	Leg1State     *string `json:"leg1_state,omitempty" binding:"omitempty,oneof=CREATED FUNDED RELEASED CANCELLED DISPUTED"`
	OverallStatus *string `json:"overall_status,omitempty" binding:"omitempty,oneof=IN_PROGRESS COMPLETED CANCELLED"`
	FiatPaid      bool    `json:"fiat_paid,omitempty"`
}

// CreateEscrowRequest is the request body for create_escrow.
type CreateEscrowRequest struct {
	EscrowID                uint64          `json:"escrow_id" binding:"required"`
	TradeID                 uint64          `json:"trade_id" binding:"required"`
	Seller                  string          `json:"seller" binding:"required,solana_address"`
	Buyer                   string          `json:"buyer" binding:"required,solana_address"`
	Amount                  decimal.Decimal `json:"amount"`
	Sequential              bool            `json:"sequential,omitempty"`
	SequentialEscrowAddress *string         `json:"sequential_escrow_address,omitempty" binding:"omitempty,solana_address"`
}

// FundEscrowRequest is the request body for fund_escrow.
type FundEscrowRequest struct {
	EscrowID           uint64 `json:"escrow_id" binding:"required"`
	TradeID            uint64 `json:"trade_id" binding:"required"`
	Seller             string `json:"seller" binding:"required,solana_address"`
	SellerTokenAccount string `json:"seller_token_account" binding:"required,solana_address"`
	TokenMint          string `json:"token_mint" binding:"required,solana_address"`
}

// ReleaseEscrowRequest is the request body for release_escrow.
type ReleaseEscrowRequest struct {
	EscrowID                     uint64  `json:"escrow_id" binding:"required"`
	TradeID                      uint64  `json:"trade_id" binding:"required"`
	Authority                    string  `json:"authority" binding:"required,solana_address"`
	BuyerTokenAccount            string  `json:"buyer_token_account" binding:"required,solana_address"`
	ArbitratorTokenAccount       string  `json:"arbitrator_token_account" binding:"required,solana_address"`
	SequentialEscrowTokenAccount *string `json:"sequential_escrow_token_account,omitempty" binding:"omitempty,solana_address"`
}

// CancelEscrowRequest is the request body for cancel_escrow.
type CancelEscrowRequest struct {
	EscrowID           uint64  `json:"escrow_id" binding:"required"`
	TradeID            uint64  `json:"trade_id" binding:"required"`
	Seller             string  `json:"seller" binding:"required,solana_address"`
	Authority          string  `json:"authority" binding:"required,solana_address"`
	SellerTokenAccount *string `json:"seller_token_account,omitempty" binding:"omitempty,solana_address"`
}

// AccountResponse is the wire form of an account.
type AccountResponse struct {
	ID               int64   `json:"id"`
	WalletAddress    string  `json:"wallet_address"`
	Username         *string `json:"username,omitempty"`
	Email            *string `json:"email,omitempty"`
	TelegramUsername *string `json:"telegram_username,omitempty"`
	TelegramID       *int64  `json:"telegram_id,omitempty"`
	ProfilePhotoURL  *string `json:"profile_photo_url,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	AvailableFrom    *string `json:"available_from,omitempty"`
	AvailableTo      *string `json:"available_to,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// OfferResponse is the wire form of an offer. Amounts are decimal strings.
type OfferResponse struct {
	ID                     int64  `json:"id"`
	CreatorAccountID       int64  `json:"creator_account_id"`
	OfferType              string `json:"offer_type"`
	Token                  string `json:"token"`
	FiatCurrency           string `json:"fiat_currency"`
	MinAmount              string `json:"min_amount"`
	MaxAmount              string `json:"max_amount"`
	TotalAvailableAmount   string `json:"total_available_amount"`
	RateAdjustment         string `json:"rate_adjustment"`
	Terms                  string `json:"terms"`
	EscrowDepositTimeLimit int    `json:"escrow_deposit_time_limit"`
	FiatPaymentTimeLimit   int    `json:"fiat_payment_time_limit"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

// TradeResponse is the wire form of a trade.
type TradeResponse struct {
	ID                      int64   `json:"id"`
	Leg1OfferID             int64   `json:"leg1_offer_id"`
	Leg2OfferID             *int64  `json:"leg2_offer_id,omitempty"`
	OverallStatus           string  `json:"overall_status"`
	FromFiatCurrency        string  `json:"from_fiat_currency"`
	DestinationFiatCurrency string  `json:"destination_fiat_currency"`
	FromBank                *string `json:"from_bank,omitempty"`
	DestinationBank         *string `json:"destination_bank,omitempty"`
	Leg1State               string  `json:"leg1_state"`
	Leg1SellerAccountID     int64   `json:"leg1_seller_account_id"`
	Leg1BuyerAccountID      int64   `json:"leg1_buyer_account_id"`
	Leg1CryptoToken         string  `json:"leg1_crypto_token"`
	Leg1CryptoAmount        string  `json:"leg1_crypto_amount"`
	Leg1FiatCurrency        string  `json:"leg1_fiat_currency"`
	Leg1FiatPaidAt          *string `json:"leg1_fiat_paid_at,omitempty"`
	Leg1EscrowAddress       *string `json:"leg1_escrow_address,omitempty"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// EscrowResponse is the wire form of an escrow mirror row.
type EscrowResponse struct {
	ID                      int64   `json:"id"`
	TradeID                 int64   `json:"trade_id"`
	EscrowAddress           string  `json:"escrow_address"`
	SellerAddress           string  `json:"seller_address"`
	BuyerAddress            string  `json:"buyer_address"`
	TokenType               string  `json:"token_type"`
	Amount                  uint64  `json:"amount"`
	Status                  string  `json:"status"`
	Sequential              bool    `json:"sequential"`
	SequentialEscrowAddress *string `json:"sequential_escrow_address,omitempty"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// DisputeEscrowRequest is the request body for open_dispute_with_bond.
type DisputeEscrowRequest struct {
	EscrowID                   uint64  `json:"escrow_id" binding:"required"`
	TradeID                    uint64  `json:"trade_id" binding:"required"`
	DisputingParty             string  `json:"disputing_party" binding:"required,solana_address"`
	DisputingPartyTokenAccount string  `json:"disputing_party_token_account" binding:"required,solana_address"`
	EvidenceHash               *string `json:"evidence_hash,omitempty" binding:"omitempty,len=64,hexadecimal"`
}
