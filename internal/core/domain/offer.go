package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferType is the side of a standing offer.
type OfferType string

const (
	OfferTypeBuy  OfferType = "BUY"
	OfferTypeSell OfferType = "SELL"
)

// Valid reports whether the offer type is one of BUY or SELL.
func (t OfferType) Valid() bool {
	return t == OfferTypeBuy || t == OfferTypeSell
}

// Offer is a standing intent to buy or sell a token for fiat.
// TotalAvailableAmount is the mutable inventory counter: it only decreases
// when a trade reserves inventory, and never below zero.
type Offer struct {
	ID                     int64           `json:"id"`
	CreatorAccountID       int64           `json:"creator_account_id"`
	OfferType              OfferType       `json:"offer_type"`
	Token                  string          `json:"token"`
	FiatCurrency           string          `json:"fiat_currency"`
	MinAmount              decimal.Decimal `json:"min_amount"`
	MaxAmount              decimal.Decimal `json:"max_amount"`
	TotalAvailableAmount   decimal.Decimal `json:"total_available_amount"`
	RateAdjustment         decimal.Decimal `json:"rate_adjustment"`
	Terms                  string          `json:"terms"`
	EscrowDepositTimeLimit int             `json:"escrow_deposit_time_limit"` // minutes
	FiatPaymentTimeLimit   int             `json:"fiat_payment_time_limit"`   // minutes
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// Defaults applied when the creator leaves fields unset.
const (
	DefaultToken                = "USDC"
	DefaultFiatCurrency         = "USD"
	DefaultTerms                = "Cash only"
	DefaultEscrowDepositMinutes = 15
	DefaultFiatPaymentMinutes   = 30
)

// DefaultRateAdjustment is the default markup over the market rate.
var DefaultRateAdjustment = decimal.NewFromFloat(1.05)

// ApplyDefaults fills unset fields from min_amount: max = 2×min and
// total_available = 4×min, plus the token/terms/time-limit defaults.
func (o *Offer) ApplyDefaults() {
	two := decimal.NewFromInt(2)
	four := decimal.NewFromInt(4)
	if o.MaxAmount.IsZero() {
		o.MaxAmount = o.MinAmount.Mul(two)
	}
	if o.TotalAvailableAmount.IsZero() {
		o.TotalAvailableAmount = o.MinAmount.Mul(four)
	}
	if o.Token == "" {
		o.Token = DefaultToken
	}
	if o.FiatCurrency == "" {
		o.FiatCurrency = DefaultFiatCurrency
	}
	if o.RateAdjustment.IsZero() {
		o.RateAdjustment = DefaultRateAdjustment
	}
	if o.Terms == "" {
		o.Terms = DefaultTerms
	}
	if o.EscrowDepositTimeLimit == 0 {
		o.EscrowDepositTimeLimit = DefaultEscrowDepositMinutes
	}
	if o.FiatPaymentTimeLimit == 0 {
		o.FiatPaymentTimeLimit = DefaultFiatPaymentMinutes
	}
}

// Available reports whether the offer still has enough inventory for a new
// trade, i.e. the remaining amount has not fallen below min_amount.
func (o *Offer) Available() bool {
	return o.TotalAvailableAmount.GreaterThanOrEqual(o.MinAmount)
}
