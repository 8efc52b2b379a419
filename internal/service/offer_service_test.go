package service

import (
	"context"
	"testing"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/core/ports/mocks"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type offerTestDeps struct {
	svc         *OfferServiceImpl
	offerRepo   *mocks.MockOfferRepository
	accountRepo *mocks.MockAccountRepository
	authz       *mocks.MockAuthorizationService
	ctrl        *gomock.Controller
}

func setupOfferService(t *testing.T) *offerTestDeps {
	ctrl := gomock.NewController(t)
	d := &offerTestDeps{
		offerRepo:   mocks.NewMockOfferRepository(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		authz:       mocks.NewMockAuthorizationService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewOfferService(
		d.offerRepo, d.accountRepo, d.authz,
		decimal.NewFromInt(1000000), zerolog.Nop(),
	)
	return d
}

func TestOfferService_Create_AppliesDefaults(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByID(ctx, int64(1)).Return(&domain.Account{
		ID:            1,
		WalletAddress: sellerWallet,
	}, nil)

	var saved *domain.Offer
	d.offerRepo.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, o *domain.Offer) (int64, error) {
			saved = o
			return 7, nil
		})
	d.offerRepo.EXPECT().GetByID(ctx, int64(7)).
		DoAndReturn(func(_ context.Context, _ int64) (*domain.Offer, error) {
			out := *saved
			out.ID = 7
			return &out, nil
		})

	offer, err := d.svc.Create(ctx, sellerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        domain.OfferTypeSell,
		MinAmount:        decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// max = 2×min, total = 4×min, plus token/terms/rate defaults.
	assert.True(t, offer.MaxAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, offer.TotalAvailableAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "USDC", offer.Token)
	assert.Equal(t, "USD", offer.FiatCurrency)
	assert.Equal(t, "Cash only", offer.Terms)
	assert.True(t, offer.RateAdjustment.Equal(decimal.NewFromFloat(1.05)))
	assert.Equal(t, 15, offer.EscrowDepositTimeLimit)
	assert.Equal(t, 30, offer.FiatPaymentTimeLimit)
}

func TestOfferService_Create_InvalidSide(t *testing.T) {
	d := setupOfferService(t)

	_, err := d.svc.Create(context.Background(), sellerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        "SHORT",
		MinAmount:        decimal.NewFromInt(50),
	})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestOfferService_Create_InvalidFiatCurrency(t *testing.T) {
	d := setupOfferService(t)

	_, err := d.svc.Create(context.Background(), sellerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        domain.OfferTypeSell,
		FiatCurrency:     "usd",
		MinAmount:        decimal.NewFromInt(50),
	})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestOfferService_Create_MinAmountBounds(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	_, err := d.svc.Create(ctx, sellerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        domain.OfferTypeSell,
		MinAmount:        decimal.NewFromInt(-1),
	})
	assertAppErrorCode(t, err, "VAL_001")

	_, err = d.svc.Create(ctx, sellerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        domain.OfferTypeSell,
		MinAmount:        decimal.NewFromInt(1000001),
	})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestOfferService_Create_NotAccountOwner(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByID(ctx, int64(1)).Return(&domain.Account{
		ID:            1,
		WalletAddress: sellerWallet,
	}, nil)

	_, err := d.svc.Create(ctx, buyerWallet, ports.CreateOfferCommand{
		CreatorAccountID: 1,
		OfferType:        domain.OfferTypeSell,
		MinAmount:        decimal.NewFromInt(50),
	})
	assertAppErrorCode(t, err, "AUTH_002")
}

func TestOfferService_Update_OwnerOnly(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	wantErr := apperror.ErrNotOwner("offer")
	d.authz.EXPECT().AssertOwnership(ctx, buyerWallet, ports.ResourceOffer, int64(7)).Return(wantErr)

	_, err := d.svc.Update(ctx, buyerWallet, 7, ports.OfferPatch{})
	assert.ErrorIs(t, err, wantErr)
}

func TestOfferService_Update(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	minAmount := decimal.NewFromInt(75)
	patch := ports.OfferPatch{MinAmount: &minAmount}

	d.authz.EXPECT().AssertOwnership(ctx, sellerWallet, ports.ResourceOffer, int64(7)).Return(nil)
	d.offerRepo.EXPECT().Update(ctx, int64(7), patch).Return(true, nil)
	d.offerRepo.EXPECT().GetByID(ctx, int64(7)).Return(&domain.Offer{
		ID:        7,
		MinAmount: minAmount,
	}, nil)

	offer, err := d.svc.Update(ctx, sellerWallet, 7, patch)
	require.NoError(t, err)
	assert.True(t, offer.MinAmount.Equal(minAmount))
}

func TestOfferService_Delete_NotFound(t *testing.T) {
	d := setupOfferService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertOwnership(ctx, sellerWallet, ports.ResourceOffer, int64(99)).Return(nil)
	d.offerRepo.EXPECT().Delete(ctx, int64(99)).Return(false, nil)

	err := d.svc.Delete(ctx, sellerWallet, 99)
	assertAppErrorCode(t, err, "RES_001")
}
