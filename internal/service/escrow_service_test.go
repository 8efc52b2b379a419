package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/core/ports/mocks"
	"github.com/Panmoni/localsolana-api/internal/solana"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testProgramID = "4PonUp1nPEzDPnRMPjTqufLT3f37QuBJGk1CVnsTXx7x"

type escrowTestDeps struct {
	svc        *EscrowServiceImpl
	escrowRepo *mocks.MockEscrowRepository
	tradeRepo  *mocks.MockTradeRepository
	authz      *mocks.MockAuthorizationService
	cache      *mocks.MockInstructionCache
	ctrl       *gomock.Controller
}

func setupEscrowService(t *testing.T) *escrowTestDeps {
	ctrl := gomock.NewController(t)
	d := &escrowTestDeps{
		escrowRepo: mocks.NewMockEscrowRepository(ctrl),
		tradeRepo:  mocks.NewMockTradeRepository(ctrl),
		authz:      mocks.NewMockAuthorizationService(ctrl),
		cache:      mocks.NewMockInstructionCache(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewEscrowService(
		solana.NewBuilder(testProgramID),
		d.escrowRepo, d.tradeRepo, d.authz, d.cache,
		"USDC", zerolog.Nop(),
	)
	return d
}

func createCmd() ports.CreateEscrowCommand {
	return ports.CreateEscrowCommand{
		EscrowID: 42,
		TradeID:  11,
		Seller:   sellerWallet,
		Buyer:    buyerWallet,
		Amount:   decimal.NewFromFloat(55.5),
	}
}

func TestEscrowService_Create(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()
	cmd := createCmd()

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)
	d.cache.EXPECT().Get(ctx, "42:11").Return(nil, nil)
	d.escrowRepo.EXPECT().GetByTradeID(ctx, int64(11)).Return(nil, nil)

	var saved *domain.Escrow
	d.escrowRepo.EXPECT().CreateIdempotent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.Escrow) (bool, error) {
			saved = e
			return true, nil
		})
	d.tradeRepo.EXPECT().SetEscrowAddress(ctx, int64(11), gomock.Any()).Return(true, nil)
	d.cache.EXPECT().Set(ctx, "42:11", gomock.Any(), createCacheTTL).Return(nil)

	result, err := d.svc.Create(ctx, sellerWallet, cmd)
	require.NoError(t, err)

	assert.True(t, result.LedgerUpdated)
	assert.NotEmpty(t, result.EscrowAddress)
	assert.Equal(t, result.EscrowAddress, saved.EscrowAddress)
	assert.Equal(t, uint64(5550), saved.Amount) // 55.5 × 100 minor units
	assert.Equal(t, domain.EscrowStatusPending, saved.Status)

	// Payload shape: ordered account metas, program id, opaque data.
	assert.Equal(t, testProgramID, result.Instruction.ProgramID)
	require.Len(t, result.Instruction.Keys, 4)
	assert.Equal(t, sellerWallet, result.Instruction.Keys[0].Pubkey)
	assert.True(t, result.Instruction.Keys[0].IsSigner)
	assert.NotEmpty(t, result.Instruction.Data)
}

func TestEscrowService_Create_CachedRetry(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()
	cmd := createCmd()

	cached := ports.EscrowCreateResult{
		EscrowAddress: "cached-address",
		LedgerUpdated: true,
	}
	encoded, err := json.Marshal(cached)
	require.NoError(t, err)

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)
	// A hit short-circuits derivation and all ledger writes.
	d.cache.EXPECT().Get(ctx, "42:11").Return(encoded, nil)

	result, err := d.svc.Create(ctx, sellerWallet, cmd)
	require.NoError(t, err)
	assert.Equal(t, "cached-address", result.EscrowAddress)
}

func TestEscrowService_Create_DuplicateIsNoOp(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()
	cmd := createCmd()

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)
	d.cache.EXPECT().Get(ctx, "42:11").Return(nil, nil)
	// Row lands between the check and the insert: no error, just not
	// inserted again.
	d.escrowRepo.EXPECT().GetByTradeID(ctx, int64(11)).Return(nil, nil)
	d.escrowRepo.EXPECT().CreateIdempotent(ctx, gomock.Any()).Return(false, nil)
	d.tradeRepo.EXPECT().SetEscrowAddress(ctx, int64(11), gomock.Any()).Return(true, nil)
	d.cache.EXPECT().Set(ctx, "42:11", gomock.Any(), createCacheTTL).Return(nil)

	result, err := d.svc.Create(ctx, sellerWallet, cmd)
	require.NoError(t, err)
	assert.False(t, result.LedgerUpdated)
	assert.NotEmpty(t, result.Instruction.Data)
}

func TestEscrowService_Create_SecondEscrowForTradeRejected(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()
	cmd := createCmd()

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)
	d.cache.EXPECT().Get(ctx, "42:11").Return(nil, nil)
	// The trade already carries an escrow under another derived address: a
	// create with a fresh escrow_id must not shadow it, so no insert and no
	// SetEscrowAddress may happen.
	d.escrowRepo.EXPECT().GetByTradeID(ctx, int64(11)).Return(&domain.Escrow{
		TradeID:       11,
		EscrowAddress: "recorded-address",
	}, nil)

	_, err := d.svc.Create(ctx, sellerWallet, cmd)
	assertAppErrorCode(t, err, "RES_002")
}

func TestEscrowService_Create_InvalidAmount(t *testing.T) {
	d := setupEscrowService(t)
	cmd := createCmd()
	cmd.Amount = decimal.NewFromInt(-5)

	// Validation fails before any derivation, role check or ledger touch.
	_, err := d.svc.Create(context.Background(), sellerWallet, cmd)
	assertAppErrorCode(t, err, "VAL_002")
}

func TestEscrowService_Create_SequentialRequiresAddress(t *testing.T) {
	d := setupEscrowService(t)
	cmd := createCmd()
	cmd.Sequential = true

	_, err := d.svc.Create(context.Background(), sellerWallet, cmd)
	assertAppErrorCode(t, err, "VAL_001")
}

func TestEscrowService_Create_WrongRole(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()
	cmd := createCmd()

	wantErr := apperror.ErrWrongRole("seller")
	d.authz.EXPECT().AssertTradeRole(ctx, buyerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(wantErr)

	// Role failure precedes payload build: no cache, no ledger calls.
	_, err := d.svc.Create(ctx, buyerWallet, cmd)
	assert.ErrorIs(t, err, wantErr)
}

func TestEscrowService_Fund(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)

	payload, err := d.svc.Fund(ctx, sellerWallet, ports.FundEscrowCommand{
		EscrowID:           42,
		TradeID:            11,
		Seller:             sellerWallet,
		SellerTokenAccount: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		TokenMint:          otherWallet,
	})
	require.NoError(t, err)
	assert.Equal(t, testProgramID, payload.ProgramID)
	assert.Len(t, payload.Keys, 8)
}

func TestEscrowService_Release_NotAuthority(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	wantErr := apperror.ErrWrongRole("authority")
	d.authz.EXPECT().AssertTradeRole(ctx, buyerWallet, int64(11), sellerWallet, ports.TradeRoleAuthority).Return(wantErr)

	// No instruction payload may be produced for a non-authority caller.
	payload, err := d.svc.Release(ctx, buyerWallet, ports.ReleaseEscrowCommand{
		EscrowID:               42,
		TradeID:                11,
		Authority:              sellerWallet,
		BuyerTokenAccount:      "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		ArbitratorTokenAccount: otherWallet,
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, payload)
}

func TestEscrowService_Cancel(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertTradeRole(ctx, sellerWallet, int64(11), sellerWallet, ports.TradeRoleSeller).Return(nil)

	sellerToken := "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	payload, err := d.svc.Cancel(ctx, sellerWallet, ports.CancelEscrowCommand{
		EscrowID:           42,
		TradeID:            11,
		Seller:             sellerWallet,
		Authority:          sellerWallet,
		SellerTokenAccount: &sellerToken,
	})
	require.NoError(t, err)
	// seller, authority, escrow, escrow token, seller token, token program.
	assert.Len(t, payload.Keys, 6)
}

func TestEscrowService_Dispute_BadEvidenceHash(t *testing.T) {
	d := setupEscrowService(t)

	evidence := "zz"
	_, err := d.svc.Dispute(context.Background(), buyerWallet, ports.DisputeEscrowCommand{
		EscrowID:                   42,
		TradeID:                    11,
		DisputingParty:             buyerWallet,
		DisputingPartyTokenAccount: otherWallet,
		EvidenceHash:               &evidence,
	})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestEscrowService_Dispute(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertTradeRole(ctx, buyerWallet, int64(11), buyerWallet, ports.TradeRoleDisputer).Return(nil)

	payload, err := d.svc.Dispute(ctx, buyerWallet, ports.DisputeEscrowCommand{
		EscrowID:                   42,
		TradeID:                    11,
		DisputingParty:             buyerWallet,
		DisputingPartyTokenAccount: otherWallet,
	})
	require.NoError(t, err)
	assert.Len(t, payload.Keys, 7)
}

func TestEscrowService_GetByTrade(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertOwnership(ctx, sellerWallet, ports.ResourceTrade, int64(11)).Return(nil)
	d.escrowRepo.EXPECT().GetByTradeID(ctx, int64(11)).Return(&domain.Escrow{
		ID:      3,
		TradeID: 11,
	}, nil)

	escrow, err := d.svc.GetByTrade(ctx, sellerWallet, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), escrow.TradeID)
}

func TestEscrowService_GetByTrade_NotFound(t *testing.T) {
	d := setupEscrowService(t)
	ctx := context.Background()

	d.authz.EXPECT().AssertOwnership(ctx, sellerWallet, ports.ResourceTrade, int64(11)).Return(nil)
	d.escrowRepo.EXPECT().GetByTradeID(ctx, int64(11)).Return(nil, nil)

	_, err := d.svc.GetByTrade(ctx, sellerWallet, 11)
	assertAppErrorCode(t, err, "RES_001")
}
