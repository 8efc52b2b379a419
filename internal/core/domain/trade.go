package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LegState is the lifecycle state of a single trade leg.
type LegState string

const (
	LegStateCreated   LegState = "CREATED"
	LegStateFunded    LegState = "FUNDED"
	LegStateReleased  LegState = "RELEASED"
	LegStateCancelled LegState = "CANCELLED"
	LegStateDisputed  LegState = "DISPUTED"
)

// legTransitions is the enforced transition table:
// CREATED -> FUNDED -> RELEASED, with CANCELLED and DISPUTED reachable from
// any non-terminal state.
var legTransitions = map[LegState][]LegState{
	LegStateCreated: {LegStateFunded, LegStateCancelled, LegStateDisputed},
	LegStateFunded:  {LegStateReleased, LegStateCancelled, LegStateDisputed},
}

// Valid reports whether s is a known leg state.
func (s LegState) Valid() bool {
	switch s {
	case LegStateCreated, LegStateFunded, LegStateReleased, LegStateCancelled, LegStateDisputed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits s -> next.
func (s LegState) CanTransitionTo(next LegState) bool {
	for _, allowed := range legTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s LegState) Terminal() bool {
	return len(legTransitions[s]) == 0
}

// OverallStatus tracks the trade as a whole.
type OverallStatus string

const (
	OverallStatusInProgress OverallStatus = "IN_PROGRESS"
	OverallStatusCompleted  OverallStatus = "COMPLETED"
	OverallStatusCancelled  OverallStatus = "CANCELLED"
)

// Valid reports whether s is a known overall status.
func (s OverallStatus) Valid() bool {
	switch s {
	case OverallStatusInProgress, OverallStatusCompleted, OverallStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo permits only IN_PROGRESS -> COMPLETED|CANCELLED.
func (s OverallStatus) CanTransitionTo(next OverallStatus) bool {
	return s == OverallStatusInProgress &&
		(next == OverallStatusCompleted || next == OverallStatusCancelled)
}

// Trade is one matched transaction over a specific offer. Leg 1 is always
// present; leg 2 exists only for currency-bridging trades.
type Trade struct {
	ID                      int64           `json:"id"`
	Leg1OfferID             int64           `json:"leg1_offer_id"`
	Leg2OfferID             *int64          `json:"leg2_offer_id,omitempty"`
	OverallStatus           OverallStatus   `json:"overall_status"`
	FromFiatCurrency        string          `json:"from_fiat_currency"`
	DestinationFiatCurrency string          `json:"destination_fiat_currency"`
	FromBank                *string         `json:"from_bank,omitempty"`
	DestinationBank         *string         `json:"destination_bank,omitempty"`
	Leg1State               LegState        `json:"leg1_state"`
	Leg1SellerAccountID     int64           `json:"leg1_seller_account_id"`
	Leg1BuyerAccountID      int64           `json:"leg1_buyer_account_id"`
	Leg1CryptoToken         string          `json:"leg1_crypto_token"`
	Leg1CryptoAmount        decimal.Decimal `json:"leg1_crypto_amount"`
	Leg1FiatCurrency        string          `json:"leg1_fiat_currency"`
	Leg1FiatPaidAt          *time.Time      `json:"leg1_fiat_paid_at,omitempty"`
	Leg1EscrowAddress       *string         `json:"leg1_escrow_address,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// HasEscrow reports whether an escrow address has been persisted for leg 1.
func (t *Trade) HasEscrow() bool {
	return t.Leg1EscrowAddress != nil && *t.Leg1EscrowAddress != ""
}
