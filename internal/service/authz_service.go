package service

import (
	"context"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"
)

// AuthzService implements ports.AuthorizationService. It is the single
// ownership guard consulted before every mutating operation: accounts and
// offers resolve to an owner wallet, trades resolve to two participant
// wallets. Absence always reports NotFound before any ownership verdict.
type AuthzService struct {
	accountRepo ports.AccountRepository
	offerRepo   ports.OfferRepository
	tradeRepo   ports.TradeRepository
}

// NewAuthzService creates a new AuthzService.
func NewAuthzService(
	accountRepo ports.AccountRepository,
	offerRepo ports.OfferRepository,
	tradeRepo ports.TradeRepository,
) *AuthzService {
	return &AuthzService{
		accountRepo: accountRepo,
		offerRepo:   offerRepo,
		tradeRepo:   tradeRepo,
	}
}

// AssertOwnership checks that callerWallet controls the given resource.
func (s *AuthzService) AssertOwnership(ctx context.Context, callerWallet string, resource ports.Resource, id int64) error {
	switch resource {
	case ports.ResourceAccount:
		account, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			return apperror.ErrUpstream(fmt.Errorf("resolve account %d: %w", id, err))
		}
		if account == nil {
			return apperror.ErrNotFound("Account")
		}
		if !account.OwnedBy(callerWallet) {
			return apperror.ErrNotOwner("account")
		}
		return nil

	case ports.ResourceOffer:
		offer, err := s.offerRepo.GetByID(ctx, id)
		if err != nil {
			return apperror.ErrUpstream(fmt.Errorf("resolve offer %d: %w", id, err))
		}
		if offer == nil {
			return apperror.ErrNotFound("Offer")
		}
		creator, err := s.accountRepo.GetByID(ctx, offer.CreatorAccountID)
		if err != nil {
			return apperror.ErrUpstream(fmt.Errorf("resolve offer %d creator: %w", id, err))
		}
		if creator == nil {
			return apperror.ErrUpstream(fmt.Errorf("offer %d references missing account %d", id, offer.CreatorAccountID))
		}
		if !creator.OwnedBy(callerWallet) {
			return apperror.ErrNotOwner("offer")
		}
		return nil

	case ports.ResourceTrade:
		seller, buyer, err := s.tradeRepo.ParticipantWallets(ctx, id)
		if err != nil {
			return apperror.ErrUpstream(fmt.Errorf("resolve trade %d participants: %w", id, err))
		}
		if seller == "" && buyer == "" {
			return apperror.ErrNotFound("Trade")
		}
		if callerWallet != seller && callerWallet != buyer {
			return apperror.ErrNotParticipant()
		}
		return nil
	}

	return apperror.InternalError(fmt.Errorf("unknown resource type %q", resource))
}

// AssertTradeRole checks participation and that the caller holds the given
// on-chain role for the trade. The seller role is resolved from the ledger:
// a participant cannot claim it by naming their own wallet in the request.
func (s *AuthzService) AssertTradeRole(ctx context.Context, callerWallet string, tradeID int64, roleWallet string, role ports.TradeRole) error {
	seller, buyer, err := s.tradeRepo.ParticipantWallets(ctx, tradeID)
	if err != nil {
		return apperror.ErrUpstream(fmt.Errorf("resolve trade %d participants: %w", tradeID, err))
	}
	if seller == "" && buyer == "" {
		return apperror.ErrNotFound("Trade")
	}
	if callerWallet != seller && callerWallet != buyer {
		return apperror.ErrNotParticipant()
	}

	switch role {
	case ports.TradeRoleSeller:
		if callerWallet != seller || roleWallet != seller {
			return apperror.ErrWrongRole(string(role))
		}
	default:
		// Roles the ledger does not record: the request may only name the
		// caller's own wallet.
		if callerWallet != roleWallet {
			return apperror.ErrWrongRole(string(role))
		}
	}
	return nil
}

var _ ports.AuthorizationService = (*AuthzService)(nil)
