package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/solana"
	"github.com/Panmoni/localsolana-api/pkg/apperror"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// createCacheTTL bounds how long a create_escrow response is replayed for
// retried requests. The durable idempotency guarantee is the ledger insert.
const createCacheTTL = time.Hour

// EscrowServiceImpl implements ports.EscrowService. It builds unsigned
// instruction payloads and keeps the off-chain escrow mirror in sync; signing
// and broadcast are the wallet holder's responsibility.
type EscrowServiceImpl struct {
	builder    *solana.Builder
	escrowRepo ports.EscrowRepository
	tradeRepo  ports.TradeRepository
	authz      ports.AuthorizationService
	cache      ports.InstructionCache
	tokenType  string
	log        zerolog.Logger
}

// NewEscrowService creates a new EscrowServiceImpl. tokenType names the token
// held in escrow (recorded on the mirror row).
func NewEscrowService(
	builder *solana.Builder,
	escrowRepo ports.EscrowRepository,
	tradeRepo ports.TradeRepository,
	authz ports.AuthorizationService,
	cache ports.InstructionCache,
	tokenType string,
	log zerolog.Logger,
) *EscrowServiceImpl {
	return &EscrowServiceImpl{
		builder:    builder,
		escrowRepo: escrowRepo,
		tradeRepo:  tradeRepo,
		authz:      authz,
		cache:      cache,
		tokenType:  tokenType,
		log:        log,
	}
}

// minorUnits converts a decimal amount to the integer minor-unit
// representation the on-chain program expects: ×100, round to nearest.
func minorUnits(amount decimal.Decimal) uint64 {
	return uint64(amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// parseAddress validates and parses a base58 account address.
func parseAddress(field, addr string) (common.PublicKey, error) {
	normalized, err := solana.NormalizeWallet(addr)
	if err != nil {
		return common.PublicKey{}, apperror.Validation(fmt.Sprintf("%s is not a valid base58 address", field))
	}
	return common.PublicKeyFromString(normalized), nil
}

// createCacheKey identifies a create_escrow request for retry replay.
func createCacheKey(escrowID, tradeID uint64) string {
	return fmt.Sprintf("%d:%d", escrowID, tradeID)
}

// Create builds the create_escrow instruction, persists the derived address
// onto the trade and idempotently inserts the escrow mirror row. Safe under
// at-least-once delivery: a duplicate call returns an equivalent payload and
// never produces a second row.
func (s *EscrowServiceImpl) Create(ctx context.Context, callerWallet string, cmd ports.CreateEscrowCommand) (*ports.EscrowCreateResult, error) {
	// Validation strictly precedes derivation.
	if !cmd.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	sellerPk, err := parseAddress("seller", cmd.Seller)
	if err != nil {
		return nil, err
	}
	buyerPk, err := parseAddress("buyer", cmd.Buyer)
	if err != nil {
		return nil, err
	}
	var seqPk *common.PublicKey
	if cmd.Sequential {
		if cmd.SequentialEscrowAddress == nil {
			return nil, apperror.Validation("sequential_escrow_address is required for sequential escrows")
		}
		pk, err := parseAddress("sequential_escrow_address", *cmd.SequentialEscrowAddress)
		if err != nil {
			return nil, err
		}
		seqPk = &pk
	}

	// Role failure precedes payload build.
	if err := s.authz.AssertTradeRole(ctx, callerWallet, int64(cmd.TradeID), sellerPk.ToBase58(), ports.TradeRoleSeller); err != nil {
		return nil, err
	}

	// Fast path for retried requests.
	cacheKey := createCacheKey(cmd.EscrowID, cmd.TradeID)
	cached, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("redis escrow-create check failed, falling through")
	}
	if cached != nil {
		var result ports.EscrowCreateResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		s.log.Warn().Str("key", cacheKey).Msg("discarding malformed cached escrow-create response")
	}

	amount := minorUnits(cmd.Amount)
	ins, escrowPDA, err := s.builder.CreateEscrow(solana.CreateEscrowParams{
		EscrowID:          cmd.EscrowID,
		TradeID:           cmd.TradeID,
		Amount:            amount,
		Sequential:        cmd.Sequential,
		SequentialAddress: seqPk,
		Seller:            sellerPk,
		Buyer:             buyerPk,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("build create_escrow: %w", err))
	}

	escrowAddress := escrowPDA.ToBase58()

	// At most one escrow per trade: a retry derives the same address and is
	// a no-op, but a create with a fresh escrow_id derives a different one
	// and must not shadow the recorded escrow.
	existing, err := s.escrowRepo.GetByTradeID(ctx, int64(cmd.TradeID))
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("check existing escrow: %w", err))
	}
	if existing != nil && existing.EscrowAddress != escrowAddress {
		return nil, apperror.ErrConflict("An escrow already exists for this trade")
	}

	inserted, err := s.escrowRepo.CreateIdempotent(ctx, &domain.Escrow{
		TradeID:                 int64(cmd.TradeID),
		EscrowAddress:           escrowAddress,
		SellerAddress:           sellerPk.ToBase58(),
		BuyerAddress:            buyerPk.ToBase58(),
		TokenType:               s.tokenType,
		Amount:                  amount,
		Status:                  domain.EscrowStatusPending,
		Sequential:              cmd.Sequential,
		SequentialEscrowAddress: cmd.SequentialEscrowAddress,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("record escrow: %w", err))
	}

	if _, err := s.tradeRepo.SetEscrowAddress(ctx, int64(cmd.TradeID), escrowAddress); err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("persist escrow address: %w", err))
	}

	result := &ports.EscrowCreateResult{
		Instruction:   solana.NewPayload(ins),
		EscrowAddress: escrowAddress,
		LedgerUpdated: inserted,
	}

	// Best-effort cache; a miss on retry just rebuilds the same payload.
	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, cacheKey, encoded, createCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache escrow-create response")
		}
	}

	s.log.Info().
		Uint64("escrow_id", cmd.EscrowID).
		Uint64("trade_id", cmd.TradeID).
		Str("escrow_address", escrowAddress).
		Bool("ledger_updated", inserted).
		Msg("escrow creation instruction built")

	return result, nil
}

// Fund builds the fund_escrow instruction. Seller role required.
func (s *EscrowServiceImpl) Fund(ctx context.Context, callerWallet string, cmd ports.FundEscrowCommand) (*solana.Payload, error) {
	sellerPk, err := parseAddress("seller", cmd.Seller)
	if err != nil {
		return nil, err
	}
	sellerTokenPk, err := parseAddress("seller_token_account", cmd.SellerTokenAccount)
	if err != nil {
		return nil, err
	}
	mintPk, err := parseAddress("token_mint", cmd.TokenMint)
	if err != nil {
		return nil, err
	}

	if err := s.authz.AssertTradeRole(ctx, callerWallet, int64(cmd.TradeID), sellerPk.ToBase58(), ports.TradeRoleSeller); err != nil {
		return nil, err
	}

	ins, err := s.builder.FundEscrow(solana.FundEscrowParams{
		EscrowID:           cmd.EscrowID,
		TradeID:            cmd.TradeID,
		Seller:             sellerPk,
		SellerTokenAccount: sellerTokenPk,
		TokenMint:          mintPk,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("build fund_escrow: %w", err))
	}

	payload := solana.NewPayload(ins)
	return &payload, nil
}

// Release builds the release_escrow instruction. Authority role required.
func (s *EscrowServiceImpl) Release(ctx context.Context, callerWallet string, cmd ports.ReleaseEscrowCommand) (*solana.Payload, error) {
	authorityPk, err := parseAddress("authority", cmd.Authority)
	if err != nil {
		return nil, err
	}
	buyerTokenPk, err := parseAddress("buyer_token_account", cmd.BuyerTokenAccount)
	if err != nil {
		return nil, err
	}
	arbitratorTokenPk, err := parseAddress("arbitrator_token_account", cmd.ArbitratorTokenAccount)
	if err != nil {
		return nil, err
	}
	var seqTokenPk *common.PublicKey
	if cmd.SequentialEscrowTokenAccount != nil {
		pk, err := parseAddress("sequential_escrow_token_account", *cmd.SequentialEscrowTokenAccount)
		if err != nil {
			return nil, err
		}
		seqTokenPk = &pk
	}

	if err := s.authz.AssertTradeRole(ctx, callerWallet, int64(cmd.TradeID), authorityPk.ToBase58(), ports.TradeRoleAuthority); err != nil {
		return nil, err
	}

	ins, err := s.builder.ReleaseEscrow(solana.ReleaseEscrowParams{
		EscrowID:                     cmd.EscrowID,
		TradeID:                      cmd.TradeID,
		Authority:                    authorityPk,
		BuyerTokenAccount:            buyerTokenPk,
		ArbitratorTokenAccount:       arbitratorTokenPk,
		SequentialEscrowTokenAccount: seqTokenPk,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("build release_escrow: %w", err))
	}

	payload := solana.NewPayload(ins)
	return &payload, nil
}

// Cancel builds the cancel_escrow instruction. Seller role required.
func (s *EscrowServiceImpl) Cancel(ctx context.Context, callerWallet string, cmd ports.CancelEscrowCommand) (*solana.Payload, error) {
	sellerPk, err := parseAddress("seller", cmd.Seller)
	if err != nil {
		return nil, err
	}
	authorityPk, err := parseAddress("authority", cmd.Authority)
	if err != nil {
		return nil, err
	}
	var sellerTokenPk *common.PublicKey
	if cmd.SellerTokenAccount != nil {
		pk, err := parseAddress("seller_token_account", *cmd.SellerTokenAccount)
		if err != nil {
			return nil, err
		}
		sellerTokenPk = &pk
	}

	if err := s.authz.AssertTradeRole(ctx, callerWallet, int64(cmd.TradeID), sellerPk.ToBase58(), ports.TradeRoleSeller); err != nil {
		return nil, err
	}

	ins, err := s.builder.CancelEscrow(solana.CancelEscrowParams{
		EscrowID:           cmd.EscrowID,
		TradeID:            cmd.TradeID,
		Seller:             sellerPk,
		Authority:          authorityPk,
		SellerTokenAccount: sellerTokenPk,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("build cancel_escrow: %w", err))
	}

	payload := solana.NewPayload(ins)
	return &payload, nil
}

// Dispute builds the open_dispute_with_bond instruction. Either participant
// may dispute, but only on their own behalf.
func (s *EscrowServiceImpl) Dispute(ctx context.Context, callerWallet string, cmd ports.DisputeEscrowCommand) (*solana.Payload, error) {
	disputingPk, err := parseAddress("disputing_party", cmd.DisputingParty)
	if err != nil {
		return nil, err
	}
	disputingTokenPk, err := parseAddress("disputing_party_token_account", cmd.DisputingPartyTokenAccount)
	if err != nil {
		return nil, err
	}

	var evidence [solana.EvidenceHashSize]byte
	if cmd.EvidenceHash != nil {
		raw, err := hex.DecodeString(*cmd.EvidenceHash)
		if err != nil || len(raw) != solana.EvidenceHashSize {
			return nil, apperror.Validation("evidence_hash must be 32 hex-encoded bytes")
		}
		copy(evidence[:], raw)
	}

	if err := s.authz.AssertTradeRole(ctx, callerWallet, int64(cmd.TradeID), disputingPk.ToBase58(), ports.TradeRoleDisputer); err != nil {
		return nil, err
	}

	ins, err := s.builder.DisputeEscrow(solana.DisputeEscrowParams{
		EscrowID:                   cmd.EscrowID,
		TradeID:                    cmd.TradeID,
		DisputingParty:             disputingPk,
		DisputingPartyTokenAccount: disputingTokenPk,
		EvidenceHash:               evidence,
	})
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("build open_dispute_with_bond: %w", err))
	}

	payload := solana.NewPayload(ins)
	return &payload, nil
}

// GetByTrade returns the escrow mirror row, restricted to trade participants.
func (s *EscrowServiceImpl) GetByTrade(ctx context.Context, callerWallet string, tradeID int64) (*domain.Escrow, error) {
	if err := s.authz.AssertOwnership(ctx, callerWallet, ports.ResourceTrade, tradeID); err != nil {
		return nil, err
	}

	escrow, err := s.escrowRepo.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, apperror.ErrUpstream(fmt.Errorf("get escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("Escrow")
	}
	return escrow, nil
}

var _ ports.EscrowService = (*EscrowServiceImpl)(nil)
