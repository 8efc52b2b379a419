package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// EscrowRepo implements ports.EscrowRepository.
type EscrowRepo struct {
	pool Pool
}

// NewEscrowRepo creates a new EscrowRepo.
func NewEscrowRepo(pool Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, trade_id, escrow_address, seller_address, buyer_address,
	token_type, amount, status, sequential, sequential_escrow_address,
	created_at, updated_at`

func scanEscrow(row pgx.Row) (*domain.Escrow, error) {
	e := &domain.Escrow{}
	err := row.Scan(
		&e.ID, &e.TradeID, &e.EscrowAddress, &e.SellerAddress, &e.BuyerAddress,
		&e.TokenType, &e.Amount, &e.Status, &e.Sequential, &e.SequentialEscrowAddress,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateIdempotent inserts the escrow mirror row. Both escrow_address and
// trade_id carry unique constraints; a conflict on either is treated as an
// already-recorded escrow: no error, inserted=false. The service rejects a
// same-trade insert with a different address before it reaches here, so the
// bare ON CONFLICT only has to absorb retries and races.
func (r *EscrowRepo) CreateIdempotent(ctx context.Context, e *domain.Escrow) (bool, error) {
	query := `INSERT INTO escrows (trade_id, escrow_address, seller_address, buyer_address,
		token_type, amount, status, sequential, sequential_escrow_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		e.TradeID, e.EscrowAddress, e.SellerAddress, e.BuyerAddress,
		e.TokenType, e.Amount, e.Status, e.Sequential, e.SequentialEscrowAddress,
	)
	if err != nil {
		return false, fmt.Errorf("insert escrow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByTradeID fetches the escrow mirror for a trade. Returns nil, nil when
// no escrow has been created yet.
func (r *EscrowRepo) GetByTradeID(ctx context.Context, tradeID int64) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE trade_id = $1`

	e, err := scanEscrow(r.pool.QueryRow(ctx, query, tradeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get escrow by trade id: %w", err)
	}
	return e, nil
}

// GetByAddress fetches the escrow mirror by derived address.
func (r *EscrowRepo) GetByAddress(ctx context.Context, address string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE escrow_address = $1`

	e, err := scanEscrow(r.pool.QueryRow(ctx, query, address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get escrow by address: %w", err)
	}
	return e, nil
}

var _ ports.EscrowRepository = (*EscrowRepo)(nil)
