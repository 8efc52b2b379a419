package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/core/ports/mocks"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	sellerWallet = "4PonUp1nPEzDPnRMPjTqufLT3f37QuBJGk1CVnsTXx7x"
	buyerWallet  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	otherWallet  = "So11111111111111111111111111111111111111112"
)

type authzTestDeps struct {
	svc         *AuthzService
	accountRepo *mocks.MockAccountRepository
	offerRepo   *mocks.MockOfferRepository
	tradeRepo   *mocks.MockTradeRepository
	ctrl        *gomock.Controller
}

func setupAuthzService(t *testing.T) *authzTestDeps {
	ctrl := gomock.NewController(t)
	d := &authzTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		offerRepo:   mocks.NewMockOfferRepository(ctrl),
		tradeRepo:   mocks.NewMockTradeRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthzService(d.accountRepo, d.offerRepo, d.tradeRepo)
	return d
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestAuthzService_AssertOwnership_Account(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByID(ctx, int64(1)).Return(&domain.Account{
		ID:            1,
		WalletAddress: sellerWallet,
	}, nil).Times(2)

	assert.NoError(t, d.svc.AssertOwnership(ctx, sellerWallet, ports.ResourceAccount, 1))

	err := d.svc.AssertOwnership(ctx, otherWallet, ports.ResourceAccount, 1)
	assertAppErrorCode(t, err, "AUTH_002")
}

func TestAuthzService_AssertOwnership_AccountNotFound(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByID(ctx, int64(99)).Return(nil, nil)

	// Absence reports NotFound even for a caller that would not own it.
	err := d.svc.AssertOwnership(ctx, otherWallet, ports.ResourceAccount, 99)
	assertAppErrorCode(t, err, "RES_001")
}

func TestAuthzService_AssertOwnership_Offer(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.offerRepo.EXPECT().GetByID(ctx, int64(7)).Return(&domain.Offer{
		ID:               7,
		CreatorAccountID: 1,
	}, nil).Times(2)
	d.accountRepo.EXPECT().GetByID(ctx, int64(1)).Return(&domain.Account{
		ID:            1,
		WalletAddress: sellerWallet,
	}, nil).Times(2)

	assert.NoError(t, d.svc.AssertOwnership(ctx, sellerWallet, ports.ResourceOffer, 7))

	err := d.svc.AssertOwnership(ctx, otherWallet, ports.ResourceOffer, 7)
	assertAppErrorCode(t, err, "AUTH_002")
}

func TestAuthzService_AssertOwnership_TradeParticipants(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.tradeRepo.EXPECT().ParticipantWallets(ctx, int64(11)).
		Return(sellerWallet, buyerWallet, nil).Times(3)

	assert.NoError(t, d.svc.AssertOwnership(ctx, sellerWallet, ports.ResourceTrade, 11))
	assert.NoError(t, d.svc.AssertOwnership(ctx, buyerWallet, ports.ResourceTrade, 11))

	err := d.svc.AssertOwnership(ctx, otherWallet, ports.ResourceTrade, 11)
	assertAppErrorCode(t, err, "AUTH_002")
}

func TestAuthzService_AssertOwnership_TradeNotFound(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.tradeRepo.EXPECT().ParticipantWallets(ctx, int64(99)).Return("", "", nil)

	err := d.svc.AssertOwnership(ctx, sellerWallet, ports.ResourceTrade, 99)
	assertAppErrorCode(t, err, "RES_001")
}

func TestAuthzService_AssertOwnership_LedgerFailure(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByID(ctx, int64(1)).Return(nil, errors.New("connection refused"))

	err := d.svc.AssertOwnership(ctx, sellerWallet, ports.ResourceAccount, 1)
	assertAppErrorCode(t, err, "SYS_001")
}

func TestAuthzService_AssertTradeRole(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.tradeRepo.EXPECT().ParticipantWallets(ctx, int64(11)).
		Return(sellerWallet, buyerWallet, nil).Times(6)

	// Seller in the seller role.
	assert.NoError(t, d.svc.AssertTradeRole(ctx, sellerWallet, 11, sellerWallet, ports.TradeRoleSeller))

	// Buyer is a participant but not the seller role.
	err := d.svc.AssertTradeRole(ctx, buyerWallet, 11, sellerWallet, ports.TradeRoleSeller)
	assertAppErrorCode(t, err, "AUTH_002")

	// The seller role is resolved from the ledger: the buyer cannot claim it
	// by naming their own wallet in the request.
	err = d.svc.AssertTradeRole(ctx, buyerWallet, 11, buyerWallet, ports.TradeRoleSeller)
	assertAppErrorCode(t, err, "AUTH_002")

	// Nor can the seller rebind the role to another wallet.
	err = d.svc.AssertTradeRole(ctx, sellerWallet, 11, buyerWallet, ports.TradeRoleSeller)
	assertAppErrorCode(t, err, "AUTH_002")

	// Either participant may dispute, but only on their own behalf.
	assert.NoError(t, d.svc.AssertTradeRole(ctx, buyerWallet, 11, buyerWallet, ports.TradeRoleDisputer))

	// Non-participant rejected before the role check.
	err = d.svc.AssertTradeRole(ctx, otherWallet, 11, otherWallet, ports.TradeRoleSeller)
	assertAppErrorCode(t, err, "AUTH_002")
}

func TestAuthzService_AssertTradeRole_TradeNotFound(t *testing.T) {
	d := setupAuthzService(t)
	ctx := context.Background()

	d.tradeRepo.EXPECT().ParticipantWallets(ctx, int64(99)).Return("", "", nil)

	err := d.svc.AssertTradeRole(ctx, sellerWallet, 99, sellerWallet, ports.TradeRoleSeller)
	assertAppErrorCode(t, err, "RES_001")
}
