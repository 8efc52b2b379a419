package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLegState_HappyPath(t *testing.T) {
	assert.True(t, LegStateCreated.CanTransitionTo(LegStateFunded))
	assert.True(t, LegStateFunded.CanTransitionTo(LegStateReleased))
}

func TestLegState_CancelAndDispute(t *testing.T) {
	for _, from := range []LegState{LegStateCreated, LegStateFunded} {
		assert.True(t, from.CanTransitionTo(LegStateCancelled), "from %s", from)
		assert.True(t, from.CanTransitionTo(LegStateDisputed), "from %s", from)
	}
}

func TestLegState_RejectsOutOfBand(t *testing.T) {
	assert.False(t, LegStateCreated.CanTransitionTo(LegStateReleased))
	assert.False(t, LegStateReleased.CanTransitionTo(LegStateFunded))
	assert.False(t, LegStateCancelled.CanTransitionTo(LegStateCreated))
	assert.False(t, LegStateDisputed.CanTransitionTo(LegStateReleased))
	assert.False(t, LegStateFunded.CanTransitionTo(LegStateFunded))
}

func TestLegState_Terminal(t *testing.T) {
	assert.False(t, LegStateCreated.Terminal())
	assert.False(t, LegStateFunded.Terminal())
	assert.True(t, LegStateReleased.Terminal())
	assert.True(t, LegStateCancelled.Terminal())
	assert.True(t, LegStateDisputed.Terminal())
}

func TestLegState_Valid(t *testing.T) {
	assert.True(t, LegStateCreated.Valid())
	assert.False(t, LegState("SHIPPED").Valid())
}

func TestOverallStatus_Transitions(t *testing.T) {
	assert.True(t, OverallStatusInProgress.CanTransitionTo(OverallStatusCompleted))
	assert.True(t, OverallStatusInProgress.CanTransitionTo(OverallStatusCancelled))
	assert.False(t, OverallStatusCompleted.CanTransitionTo(OverallStatusInProgress))
	assert.False(t, OverallStatusCancelled.CanTransitionTo(OverallStatusCompleted))
}

func TestOfferType_Valid(t *testing.T) {
	assert.True(t, OfferTypeBuy.Valid())
	assert.True(t, OfferTypeSell.Valid())
	assert.False(t, OfferType("HOLD").Valid())
}

func TestOffer_ApplyDefaults(t *testing.T) {
	o := &Offer{MinAmount: decimal.NewFromInt(100)}
	o.ApplyDefaults()

	assert.True(t, o.MaxAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, o.TotalAvailableAmount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "USDC", o.Token)
	assert.Equal(t, "USD", o.FiatCurrency)
	assert.True(t, o.RateAdjustment.Equal(decimal.NewFromFloat(1.05)))
	assert.Equal(t, "Cash only", o.Terms)
	assert.Equal(t, 15, o.EscrowDepositTimeLimit)
	assert.Equal(t, 30, o.FiatPaymentTimeLimit)
}

func TestOffer_ApplyDefaults_KeepsExplicitValues(t *testing.T) {
	o := &Offer{
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(150),
		TotalAvailableAmount: decimal.NewFromInt(1000),
		Token:                "SOL",
		FiatCurrency:         "EUR",
	}
	o.ApplyDefaults()

	assert.True(t, o.MaxAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, o.TotalAvailableAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "SOL", o.Token)
	assert.Equal(t, "EUR", o.FiatCurrency)
}

func TestOffer_Available(t *testing.T) {
	o := &Offer{
		MinAmount:            decimal.NewFromInt(100),
		TotalAvailableAmount: decimal.NewFromInt(100),
	}
	assert.True(t, o.Available())

	o.TotalAvailableAmount = decimal.NewFromInt(99)
	assert.False(t, o.Available())
}

func TestAccount_OwnedBy(t *testing.T) {
	a := &Account{WalletAddress: "8Kv9wz8LqvFqr3nciX8a9iYnhqqd5A17mkgXkGCVrdGb"}
	assert.True(t, a.OwnedBy("8Kv9wz8LqvFqr3nciX8a9iYnhqqd5A17mkgXkGCVrdGb"))
	assert.False(t, a.OwnedBy("3zTBYPnGYkfqqJr1eSyzJ6w9csRVTUmAoTgFzAA35cfC"))
}

func TestTrade_HasEscrow(t *testing.T) {
	tr := &Trade{}
	assert.False(t, tr.HasEscrow())

	addr := "6zAcFYV8jYiEGjfTrwjdyRpcvLVLvLoAbTpKSLWy1d9T"
	tr.Leg1EscrowAddress = &addr
	assert.True(t, tr.HasEscrow())

	empty := ""
	tr.Leg1EscrowAddress = &empty
	assert.False(t, tr.HasEscrow())
}
