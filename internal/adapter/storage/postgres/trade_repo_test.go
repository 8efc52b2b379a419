package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrade() *domain.Trade {
	return &domain.Trade{
		ID:                      11,
		Leg1OfferID:             7,
		OverallStatus:           domain.OverallStatusInProgress,
		FromFiatCurrency:        "USD",
		DestinationFiatCurrency: "USD",
		Leg1State:               domain.LegStateCreated,
		Leg1SellerAccountID:     42,
		Leg1BuyerAccountID:      43,
		Leg1CryptoToken:         "USDC",
		Leg1CryptoAmount:        decimal.NewFromInt(75),
		Leg1FiatCurrency:        "USD",
		CreatedAt:               time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:               time.Now().UTC().Truncate(time.Microsecond),
	}
}

func tradeRows() []string {
	return []string{"id", "leg1_offer_id", "leg2_offer_id", "overall_status",
		"from_fiat_currency", "destination_fiat_currency", "from_bank", "destination_bank",
		"leg1_state", "leg1_seller_account_id", "leg1_buyer_account_id",
		"leg1_crypto_token", "leg1_crypto_amount", "leg1_fiat_currency",
		"leg1_fiat_paid_at", "leg1_escrow_address", "created_at", "updated_at"}
}

func tradeRow(tr *domain.Trade) *pgxmock.Rows {
	return pgxmock.NewRows(tradeRows()).AddRow(
		tr.ID, tr.Leg1OfferID, tr.Leg2OfferID, tr.OverallStatus,
		tr.FromFiatCurrency, tr.DestinationFiatCurrency, tr.FromBank, tr.DestinationBank,
		tr.Leg1State, tr.Leg1SellerAccountID, tr.Leg1BuyerAccountID,
		tr.Leg1CryptoToken, tr.Leg1CryptoAmount, tr.Leg1FiatCurrency,
		tr.Leg1FiatPaidAt, tr.Leg1EscrowAddress, tr.CreatedAt, tr.UpdatedAt,
	)
}

func TestTradeRepo_Create_InTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	tr := newTestTrade()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO trades").
		WithArgs(tr.Leg1OfferID, tr.Leg2OfferID, tr.OverallStatus,
			tr.FromFiatCurrency, tr.DestinationFiatCurrency, tr.FromBank, tr.DestinationBank,
			tr.Leg1State, tr.Leg1SellerAccountID, tr.Leg1BuyerAccountID,
			tr.Leg1CryptoToken, tr.Leg1CryptoAmount, tr.Leg1FiatCurrency).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.Create(context.Background(), tx, tr)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	tr := newTestTrade()

	mock.ExpectQuery("SELECT .+ FROM trades WHERE id").
		WithArgs(tr.ID).
		WillReturnRows(tradeRow(tr))

	result, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.ID, result.ID)
	assert.Equal(t, domain.LegStateCreated, result.Leg1State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM trades WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(tradeRows()))

	result, err := repo.GetByID(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_List_ByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	tr := newTestTrade()
	accountID := int64(42)

	mock.ExpectQuery("SELECT .+ FROM trades WHERE 1=1 AND .+leg1_seller_account_id = .+ OR leg1_buyer_account_id = .+ ORDER BY created_at DESC").
		WithArgs(accountID).
		WillReturnRows(tradeRow(tr))

	results, err := repo.List(context.Background(), ports.TradeListParams{AccountID: &accountID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tr.ID, results[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_Update_StateAndFiatPaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	state := domain.LegStateFunded

	mock.ExpectExec("UPDATE trades SET").
		WithArgs(&state, (*domain.OverallStatus)(nil), true, int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Update(context.Background(), 11, ports.TradePatch{
		Leg1State: &state,
		FiatPaid:  true,
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_SetEscrowAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	address := "GkXr9DqBR1v3mF2eWcVdYAT8HqkXtAKxjrCpuSfMwQnE"

	mock.ExpectExec("UPDATE trades SET leg1_escrow_address").
		WithArgs(address, int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.SetEscrowAddress(context.Background(), 11, address)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_ParticipantWallets(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM trades t").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_address", "wallet_address"}).
			AddRow("seller-wallet", "buyer-wallet"))

	seller, buyer, err := repo.ParticipantWallets(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "seller-wallet", seller)
	assert.Equal(t, "buyer-wallet", buyer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_ParticipantWallets_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM trades t").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_address", "wallet_address"}))

	seller, buyer, err := repo.ParticipantWallets(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, seller)
	assert.Empty(t, buyer)
	assert.NoError(t, mock.ExpectationsWereMet())
}
