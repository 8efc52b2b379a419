package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fiatCurrencyRe matches 3-letter uppercase ISO 4217 style codes.
var fiatCurrencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// OfferServiceImpl implements ports.OfferService.
type OfferServiceImpl struct {
	offerRepo    ports.OfferRepository
	accountRepo  ports.AccountRepository
	authz        ports.AuthorizationService
	maxMinAmount decimal.Decimal
	log          zerolog.Logger
}

// NewOfferService creates a new OfferServiceImpl. maxMinAmount is the
// configured ceiling for an offer's min_amount.
func NewOfferService(
	offerRepo ports.OfferRepository,
	accountRepo ports.AccountRepository,
	authz ports.AuthorizationService,
	maxMinAmount decimal.Decimal,
	log zerolog.Logger,
) *OfferServiceImpl {
	return &OfferServiceImpl{
		offerRepo:    offerRepo,
		accountRepo:  accountRepo,
		authz:        authz,
		maxMinAmount: maxMinAmount,
		log:          log,
	}
}

// Create validates and persists a new offer for the caller's own account,
// filling defaults for unspecified fields.
func (s *OfferServiceImpl) Create(ctx context.Context, callerWallet string, cmd ports.CreateOfferCommand) (*domain.Offer, error) {
	if !cmd.OfferType.Valid() {
		return nil, apperror.Validation("offer_type must be BUY or SELL")
	}
	if cmd.FiatCurrency != "" && !fiatCurrencyRe.MatchString(cmd.FiatCurrency) {
		return nil, apperror.Validation("fiat_currency must be a 3-letter uppercase code")
	}
	if cmd.MinAmount.IsNegative() {
		return nil, apperror.Validation("min_amount must be non-negative")
	}
	if cmd.MinAmount.GreaterThan(s.maxMinAmount) {
		return nil, apperror.Validation(fmt.Sprintf("min_amount must not exceed %s", s.maxMinAmount))
	}

	creator, err := s.accountRepo.GetByID(ctx, cmd.CreatorAccountID)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("resolve creator account: %w", err))
	}
	if creator == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !creator.OwnedBy(callerWallet) {
		return nil, apperror.Forbidden("You can only create offers for your own account")
	}

	offer := &domain.Offer{
		CreatorAccountID:     cmd.CreatorAccountID,
		OfferType:            cmd.OfferType,
		Token:                cmd.Token,
		FiatCurrency:         cmd.FiatCurrency,
		MinAmount:            cmd.MinAmount,
		MaxAmount:            cmd.MaxAmount,
		TotalAvailableAmount: cmd.TotalAvailable,
		RateAdjustment:       cmd.RateAdjustment,
		Terms:                cmd.Terms,
	}
	offer.ApplyDefaults()

	if offer.MaxAmount.LessThan(offer.MinAmount) {
		return nil, apperror.Validation("max_amount must be at least min_amount")
	}

	id, err := s.offerRepo.Create(ctx, offer)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("create offer: %w", err))
	}

	s.log.Info().
		Int64("offer_id", id).
		Int64("creator_account_id", cmd.CreatorAccountID).
		Str("offer_type", string(cmd.OfferType)).
		Msg("offer created")

	return s.Get(ctx, id)
}

// Get fetches an offer by id.
func (s *OfferServiceImpl) Get(ctx context.Context, id int64) (*domain.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get offer: %w", err))
	}
	if offer == nil {
		return nil, apperror.ErrNotFound("Offer")
	}
	return offer, nil
}

// List returns offers matching the filters.
func (s *OfferServiceImpl) List(ctx context.Context, params ports.OfferListParams) ([]domain.Offer, error) {
	offers, err := s.offerRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("list offers: %w", err))
	}
	return offers, nil
}

// Update patches only supplied fields, restricted to the owner.
func (s *OfferServiceImpl) Update(ctx context.Context, callerWallet string, id int64, patch ports.OfferPatch) (*domain.Offer, error) {
	if err := s.authz.AssertOwnership(ctx, callerWallet, ports.ResourceOffer, id); err != nil {
		return nil, err
	}
	if patch.MinAmount != nil && patch.MinAmount.IsNegative() {
		return nil, apperror.Validation("min_amount must be non-negative")
	}
	if patch.MinAmount != nil && patch.MinAmount.GreaterThan(s.maxMinAmount) {
		return nil, apperror.Validation(fmt.Sprintf("min_amount must not exceed %s", s.maxMinAmount))
	}
	if patch.FiatCurrency != nil && !fiatCurrencyRe.MatchString(*patch.FiatCurrency) {
		return nil, apperror.Validation("fiat_currency must be a 3-letter uppercase code")
	}

	ok, err := s.offerRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("update offer: %w", err))
	}
	if !ok {
		return nil, apperror.ErrNotFound("Offer")
	}

	return s.Get(ctx, id)
}

// Delete removes an offer, restricted to the owner.
func (s *OfferServiceImpl) Delete(ctx context.Context, callerWallet string, id int64) error {
	if err := s.authz.AssertOwnership(ctx, callerWallet, ports.ResourceOffer, id); err != nil {
		return err
	}

	ok, err := s.offerRepo.Delete(ctx, id)
	if err != nil {
		return apperror.ErrUpstream(fmt.Errorf("delete offer: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("Offer")
	}

	s.log.Info().Int64("offer_id", id).Msg("offer deleted")
	return nil
}

var _ ports.OfferService = (*OfferServiceImpl)(nil)
