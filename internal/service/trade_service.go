package service

import (
	"context"
	"fmt"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// TradeServiceImpl implements ports.TradeService.
type TradeServiceImpl struct {
	tradeRepo   ports.TradeRepository
	offerRepo   ports.OfferRepository
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewTradeService creates a new TradeServiceImpl.
func NewTradeService(
	tradeRepo ports.TradeRepository,
	offerRepo ports.OfferRepository,
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TradeServiceImpl {
	return &TradeServiceImpl{
		tradeRepo:   tradeRepo,
		offerRepo:   offerRepo,
		accountRepo: accountRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Initiate matches the caller against an open offer and creates the trade.
// The inventory reservation and the trade insert commit as one transaction,
// so concurrent initiations can never both consume the last inventory.
func (s *TradeServiceImpl) Initiate(ctx context.Context, callerWallet string, cmd ports.InitiateTradeCommand) (*domain.Trade, error) {
	offer, err := s.offerRepo.GetByID(ctx, cmd.Leg1OfferID)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("load offer: %w", err))
	}
	if offer == nil {
		return nil, apperror.ErrNotFound("Offer")
	}
	if !offer.Available() {
		return nil, apperror.ErrOfferUnavailable()
	}

	caller, err := s.accountRepo.GetByWallet(ctx, callerWallet)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("resolve caller account: %w", err))
	}
	if caller == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	creator, err := s.accountRepo.GetByID(ctx, offer.CreatorAccountID)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("resolve offer creator: %w", err))
	}
	if creator == nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("offer %d references missing account %d", offer.ID, offer.CreatorAccountID))
	}
	if caller.ID == creator.ID {
		return nil, apperror.Validation("You cannot trade against your own offer")
	}

	// SELL offer: creator sells crypto, caller buys. BUY offer: inverse.
	sellerID, buyerID := creator.ID, caller.ID
	if offer.OfferType == domain.OfferTypeBuy {
		sellerID, buyerID = caller.ID, creator.ID
	}

	fromFiat := cmd.FromFiatCurrency
	if fromFiat == "" {
		fromFiat = offer.FiatCurrency
	}
	destFiat := cmd.DestinationFiatCurrency
	if destFiat == "" {
		destFiat = offer.FiatCurrency
	}

	trade := &domain.Trade{
		Leg1OfferID:             offer.ID,
		Leg2OfferID:             cmd.Leg2OfferID,
		OverallStatus:           domain.OverallStatusInProgress,
		FromFiatCurrency:        fromFiat,
		DestinationFiatCurrency: destFiat,
		FromBank:                cmd.FromBank,
		DestinationBank:         cmd.DestinationBank,
		Leg1State:               domain.LegStateCreated,
		Leg1SellerAccountID:     sellerID,
		Leg1BuyerAccountID:      buyerID,
		Leg1CryptoToken:         offer.Token,
		Leg1CryptoAmount:        offer.MinAmount,
		Leg1FiatCurrency:        offer.FiatCurrency,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	reserved, err := s.offerRepo.Reserve(ctx, dbTx, offer.ID, trade.Leg1CryptoAmount)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("reserve inventory: %w", err))
	}
	if !reserved {
		return nil, apperror.ErrOfferUnavailable()
	}

	id, err := s.tradeRepo.Create(ctx, dbTx, trade)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("create trade: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("trade_id", id).
		Int64("offer_id", offer.ID).
		Int64("seller_account_id", sellerID).
		Int64("buyer_account_id", buyerID).
		Str("amount", trade.Leg1CryptoAmount.String()).
		Msg("trade initiated")

	return s.Get(ctx, id)
}

// Get fetches a trade by id.
func (s *TradeServiceImpl) Get(ctx context.Context, id int64) (*domain.Trade, error) {
	trade, err := s.tradeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get trade: %w", err))
	}
	if trade == nil {
		return nil, apperror.ErrNotFound("Trade")
	}
	return trade, nil
}

// List returns trades matching the filters.
func (s *TradeServiceImpl) List(ctx context.Context, params ports.TradeListParams) ([]domain.Trade, error) {
	trades, err := s.tradeRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("list trades: %w", err))
	}
	return trades, nil
}

// Update patches trade state, restricted to participants. Transitions outside
// the lifecycle table are rejected, never silently accepted.
func (s *TradeServiceImpl) Update(ctx context.Context, callerWallet string, id int64, cmd ports.UpdateTradeCommand) (*domain.Trade, error) {
	trade, err := s.tradeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get trade: %w", err))
	}
	if trade == nil {
		return nil, apperror.ErrNotFound("Trade")
	}

	seller, buyer, err := s.tradeRepo.ParticipantWallets(ctx, id)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("resolve participants: %w", err))
	}
	if callerWallet != seller && callerWallet != buyer {
		return nil, apperror.ErrNotParticipant()
	}

	if cmd.Leg1State != nil {
		if !cmd.Leg1State.Valid() {
			return nil, apperror.Validation(fmt.Sprintf("unknown leg state %q", *cmd.Leg1State))
		}
		if !trade.Leg1State.CanTransitionTo(*cmd.Leg1State) {
			return nil, apperror.ErrInvalidTransition(string(trade.Leg1State), string(*cmd.Leg1State))
		}
	}
	if cmd.OverallStatus != nil {
		if !cmd.OverallStatus.Valid() {
			return nil, apperror.Validation(fmt.Sprintf("unknown overall status %q", *cmd.OverallStatus))
		}
		if !trade.OverallStatus.CanTransitionTo(*cmd.OverallStatus) {
			return nil, apperror.ErrInvalidTransition(string(trade.OverallStatus), string(*cmd.OverallStatus))
		}
	}

	ok, err := s.tradeRepo.Update(ctx, id, ports.TradePatch{
		Leg1State:     cmd.Leg1State,
		OverallStatus: cmd.OverallStatus,
		FiatPaid:      cmd.FiatPaid,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("update trade: %w", err))
	}
	if !ok {
		return nil, apperror.ErrNotFound("Trade")
	}

	return s.Get(ctx, id)
}

var _ ports.TradeService = (*TradeServiceImpl)(nil)
