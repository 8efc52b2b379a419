package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OfferRepo implements ports.OfferRepository.
type OfferRepo struct {
	pool Pool
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(pool Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

const offerColumns = `id, creator_account_id, offer_type, token, fiat_currency, min_amount,
	max_amount, total_available_amount, rate_adjustment, terms,
	escrow_deposit_time_limit, fiat_payment_time_limit, created_at, updated_at`

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	o := &domain.Offer{}
	err := row.Scan(
		&o.ID, &o.CreatorAccountID, &o.OfferType, &o.Token, &o.FiatCurrency, &o.MinAmount,
		&o.MaxAmount, &o.TotalAvailableAmount, &o.RateAdjustment, &o.Terms,
		&o.EscrowDepositTimeLimit, &o.FiatPaymentTimeLimit, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new offer and returns its id.
func (r *OfferRepo) Create(ctx context.Context, o *domain.Offer) (int64, error) {
	query := `INSERT INTO offers (creator_account_id, offer_type, token, fiat_currency,
		min_amount, max_amount, total_available_amount, rate_adjustment, terms,
		escrow_deposit_time_limit, fiat_payment_time_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()) RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		o.CreatorAccountID, o.OfferType, o.Token, o.FiatCurrency,
		o.MinAmount, o.MaxAmount, o.TotalAvailableAmount, o.RateAdjustment, o.Terms,
		o.EscrowDepositTimeLimit, o.FiatPaymentTimeLimit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert offer: %w", mapError(err))
	}
	return id, nil
}

// GetByID fetches an offer by id. Returns nil, nil when absent.
func (r *OfferRepo) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	o, err := scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer by id: %w", err)
	}
	return o, nil
}

// List returns offers matching the given filters, newest first.
func (r *OfferRepo) List(ctx context.Context, params ports.OfferListParams) ([]domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE 1=1`
	args := []any{}

	if params.OfferType != nil {
		args = append(args, *params.OfferType)
		query += fmt.Sprintf(" AND offer_type = $%d", len(args))
	}
	if params.Token != nil {
		args = append(args, *params.Token)
		query += fmt.Sprintf(" AND token = $%d", len(args))
	}
	if params.CreatorAccountID != nil {
		args = append(args, *params.CreatorAccountID)
		query += fmt.Sprintf(" AND creator_account_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// Update patches only the supplied fields.
func (r *OfferRepo) Update(ctx context.Context, id int64, p ports.OfferPatch) (bool, error) {
	query := `UPDATE offers SET
		min_amount = COALESCE($1, min_amount),
		max_amount = COALESCE($2, max_amount),
		total_available_amount = COALESCE($3, total_available_amount),
		rate_adjustment = COALESCE($4, rate_adjustment),
		terms = COALESCE($5, terms),
		fiat_currency = COALESCE($6, fiat_currency),
		escrow_deposit_time_limit = COALESCE($7, escrow_deposit_time_limit),
		fiat_payment_time_limit = COALESCE($8, fiat_payment_time_limit),
		updated_at = NOW()
		WHERE id = $9`

	tag, err := r.pool.Exec(ctx, query,
		p.MinAmount, p.MaxAmount, p.TotalAvailableAmount, p.RateAdjustment,
		p.Terms, p.FiatCurrency, p.EscrowDepositTimeLimit, p.FiatPaymentTimeLimit, id,
	)
	if err != nil {
		return false, fmt.Errorf("update offer: %w", mapError(err))
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an offer. Returns false when it did not exist.
func (r *OfferRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete offer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Reserve atomically consumes offer inventory inside the caller's
// transaction. The guard clause rejects offers whose remaining amount is
// below min_amount or below the requested decrement, so the counter can
// never go negative under concurrent initiations.
func (r *OfferRepo) Reserve(ctx context.Context, tx pgx.Tx, offerID int64, amount decimal.Decimal) (bool, error) {
	query := `UPDATE offers
		SET total_available_amount = total_available_amount - $1, updated_at = NOW()
		WHERE id = $2
		  AND total_available_amount >= min_amount
		  AND total_available_amount >= $1`

	tag, err := tx.Exec(ctx, query, amount, offerID)
	if err != nil {
		return false, fmt.Errorf("reserve offer inventory: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ ports.OfferRepository = (*OfferRepo)(nil)
