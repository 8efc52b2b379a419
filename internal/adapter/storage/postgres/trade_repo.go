package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TradeRepo implements ports.TradeRepository.
type TradeRepo struct {
	pool Pool
}

// NewTradeRepo creates a new TradeRepo.
func NewTradeRepo(pool Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

const tradeColumns = `id, leg1_offer_id, leg2_offer_id, overall_status,
	from_fiat_currency, destination_fiat_currency, from_bank, destination_bank,
	leg1_state, leg1_seller_account_id, leg1_buyer_account_id,
	leg1_crypto_token, leg1_crypto_amount, leg1_fiat_currency,
	leg1_fiat_paid_at, leg1_escrow_address, created_at, updated_at`

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	t := &domain.Trade{}
	err := row.Scan(
		&t.ID, &t.Leg1OfferID, &t.Leg2OfferID, &t.OverallStatus,
		&t.FromFiatCurrency, &t.DestinationFiatCurrency, &t.FromBank, &t.DestinationBank,
		&t.Leg1State, &t.Leg1SellerAccountID, &t.Leg1BuyerAccountID,
		&t.Leg1CryptoToken, &t.Leg1CryptoAmount, &t.Leg1FiatCurrency,
		&t.Leg1FiatPaidAt, &t.Leg1EscrowAddress, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts the trade inside tx so it commits atomically with the offer
// reservation.
func (r *TradeRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Trade) (int64, error) {
	query := `INSERT INTO trades (leg1_offer_id, leg2_offer_id, overall_status,
		from_fiat_currency, destination_fiat_currency, from_bank, destination_bank,
		leg1_state, leg1_seller_account_id, leg1_buyer_account_id,
		leg1_crypto_token, leg1_crypto_amount, leg1_fiat_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		t.Leg1OfferID, t.Leg2OfferID, t.OverallStatus,
		t.FromFiatCurrency, t.DestinationFiatCurrency, t.FromBank, t.DestinationBank,
		t.Leg1State, t.Leg1SellerAccountID, t.Leg1BuyerAccountID,
		t.Leg1CryptoToken, t.Leg1CryptoAmount, t.Leg1FiatCurrency,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert trade: %w", mapError(err))
	}
	return id, nil
}

// GetByID fetches a trade by id. Returns nil, nil when absent.
func (r *TradeRepo) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	t, err := scanTrade(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// List returns trades matching the given filters, newest first.
func (r *TradeRepo) List(ctx context.Context, params ports.TradeListParams) ([]domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	args := []any{}

	if params.OverallStatus != nil {
		args = append(args, *params.OverallStatus)
		query += fmt.Sprintf(" AND overall_status = $%d", len(args))
	}
	if params.AccountID != nil {
		args = append(args, *params.AccountID)
		query += fmt.Sprintf(" AND (leg1_seller_account_id = $%d OR leg1_buyer_account_id = $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// Update patches leg state, overall status and the fiat-paid stamp. FiatPaid
// sets leg1_fiat_paid_at to NOW() and never clears it.
func (r *TradeRepo) Update(ctx context.Context, id int64, p ports.TradePatch) (bool, error) {
	query := `UPDATE trades SET
		leg1_state = COALESCE($1, leg1_state),
		overall_status = COALESCE($2, overall_status),
		leg1_fiat_paid_at = CASE WHEN $3 THEN NOW() ELSE leg1_fiat_paid_at END,
		updated_at = NOW()
		WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, p.Leg1State, p.OverallStatus, p.FiatPaid, id)
	if err != nil {
		return false, fmt.Errorf("update trade: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetEscrowAddress persists the derived escrow address onto the trade.
func (r *TradeRepo) SetEscrowAddress(ctx context.Context, id int64, address string) (bool, error) {
	query := `UPDATE trades SET leg1_escrow_address = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, address, id)
	if err != nil {
		return false, fmt.Errorf("set trade escrow address: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ParticipantWallets resolves the seller and buyer wallet addresses for a
// trade in one round trip. Returns empty strings when the trade is absent.
func (r *TradeRepo) ParticipantWallets(ctx context.Context, id int64) (string, string, error) {
	query := `SELECT s.wallet_address, b.wallet_address
		FROM trades t
		JOIN accounts s ON s.id = t.leg1_seller_account_id
		JOIN accounts b ON b.id = t.leg1_buyer_account_id
		WHERE t.id = $1`

	var seller, buyer string
	err := r.pool.QueryRow(ctx, query, id).Scan(&seller, &buyer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("get trade participants: %w", err)
	}
	return seller, buyer, nil
}

var _ ports.TradeRepository = (*TradeRepo)(nil)
