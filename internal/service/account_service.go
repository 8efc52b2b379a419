package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/solana"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	repo  ports.AccountRepository
	authz ports.AuthorizationService
	log   zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(repo ports.AccountRepository, authz ports.AuthorizationService, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		repo:  repo,
		authz: authz,
		log:   log,
	}
}

// Create registers an account for the caller's own wallet.
func (s *AccountServiceImpl) Create(ctx context.Context, callerWallet string, cmd ports.CreateAccountCommand) (*domain.Account, error) {
	wallet, err := solana.NormalizeWallet(cmd.WalletAddress)
	if err != nil {
		return nil, apperror.ErrInvalidWalletAddress()
	}
	if wallet != callerWallet {
		return nil, apperror.Forbidden("You can only register your own wallet")
	}

	account := &domain.Account{
		WalletAddress: wallet,
		Username:      cmd.Username,
		Email:         cmd.Email,
	}

	id, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperror.ErrConflict("An account already exists for this wallet")
		}
		return nil, apperror.ErrUpstream(fmt.Errorf("create account: %w", err))
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("load created account: %w", err))
	}

	s.log.Info().
		Int64("account_id", id).
		Str("wallet", wallet).
		Msg("account registered")

	return created, nil
}

// Get fetches an account by id.
func (s *AccountServiceImpl) Get(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// GetByWallet fetches the account registered for a wallet.
func (s *AccountServiceImpl) GetByWallet(ctx context.Context, wallet string) (*domain.Account, error) {
	account, err := s.repo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get account by wallet: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// Update patches profile fields, restricted to the owner. The wallet address
// is immutable and not patchable.
func (s *AccountServiceImpl) Update(ctx context.Context, callerWallet string, id int64, patch ports.AccountPatch) (*domain.Account, error) {
	if err := s.authz.AssertOwnership(ctx, callerWallet, ports.ResourceAccount, id); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("update account: %w", err))
	}
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}

	return s.Get(ctx, id)
}

var _ ports.AccountService = (*AccountServiceImpl)(nil)
