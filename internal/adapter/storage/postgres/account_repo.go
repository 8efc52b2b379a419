package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, wallet_address, username, email, telegram_username, telegram_id,
	profile_photo_url, phone_country_code, phone_number, available_from, available_to, timezone,
	created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.WalletAddress, &a.Username, &a.Email, &a.TelegramUsername, &a.TelegramID,
		&a.ProfilePhotoURL, &a.PhoneCountryCode, &a.PhoneNumber, &a.AvailableFrom, &a.AvailableTo,
		&a.Timezone, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new account and returns its id.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) (int64, error) {
	query := `INSERT INTO accounts (wallet_address, username, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query, a.WalletAddress, a.Username, a.Email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", mapError(err))
	}
	return id, nil
}

// GetByID fetches an account by id. Returns nil, nil when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByWallet fetches an account by its wallet address. Returns nil, nil when absent.
func (r *AccountRepo) GetByWallet(ctx context.Context, wallet string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE wallet_address = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, wallet))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by wallet: %w", err)
	}
	return a, nil
}

// Update patches only the supplied fields. The wallet address is immutable
// and deliberately absent from the statement.
func (r *AccountRepo) Update(ctx context.Context, id int64, p ports.AccountPatch) (bool, error) {
	query := `UPDATE accounts SET
		username = COALESCE($1, username),
		email = COALESCE($2, email),
		telegram_username = COALESCE($3, telegram_username),
		telegram_id = COALESCE($4, telegram_id),
		profile_photo_url = COALESCE($5, profile_photo_url),
		phone_country_code = COALESCE($6, phone_country_code),
		phone_number = COALESCE($7, phone_number),
		available_from = COALESCE($8, available_from),
		available_to = COALESCE($9, available_to),
		timezone = COALESCE($10, timezone),
		updated_at = NOW()
		WHERE id = $11`

	tag, err := r.pool.Exec(ctx, query,
		p.Username, p.Email, p.TelegramUsername, p.TelegramID, p.ProfilePhotoURL,
		p.PhoneCountryCode, p.PhoneNumber, p.AvailableFrom, p.AvailableTo, p.Timezone, id,
	)
	if err != nil {
		return false, fmt.Errorf("update account: %w", mapError(err))
	}
	return tag.RowsAffected() > 0, nil
}

var _ ports.AccountRepository = (*AccountRepo)(nil)
