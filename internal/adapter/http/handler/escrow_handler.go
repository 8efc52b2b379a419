package handler

import (
	"github.com/Panmoni/localsolana-api/internal/adapter/http/dto"
	"github.com/Panmoni/localsolana-api/internal/adapter/http/middleware"
	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"
	"github.com/Panmoni/localsolana-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// EscrowHandler handles escrow instruction endpoints. Every response carries
// an unsigned instruction payload; nothing is ever signed or broadcast here.
type EscrowHandler struct {
	escrowSvc ports.EscrowService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(escrowSvc ports.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowSvc: escrowSvc}
}

// Create handles POST /escrows/create.
func (h *EscrowHandler) Create(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.escrowSvc.Create(c.Request.Context(), caller, ports.CreateEscrowCommand{
		EscrowID:                req.EscrowID,
		TradeID:                 req.TradeID,
		Seller:                  req.Seller,
		Buyer:                   req.Buyer,
		Amount:                  req.Amount,
		Sequential:              req.Sequential,
		SequentialEscrowAddress: req.SequentialEscrowAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// Fund handles POST /escrows/fund.
func (h *EscrowHandler) Fund(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.FundEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payload, err := h.escrowSvc.Fund(c.Request.Context(), caller, ports.FundEscrowCommand{
		EscrowID:           req.EscrowID,
		TradeID:            req.TradeID,
		Seller:             req.Seller,
		SellerTokenAccount: req.SellerTokenAccount,
		TokenMint:          req.TokenMint,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"instruction": payload})
}

// Release handles POST /escrows/release.
func (h *EscrowHandler) Release(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.ReleaseEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payload, err := h.escrowSvc.Release(c.Request.Context(), caller, ports.ReleaseEscrowCommand{
		EscrowID:                     req.EscrowID,
		TradeID:                      req.TradeID,
		Authority:                    req.Authority,
		BuyerTokenAccount:            req.BuyerTokenAccount,
		ArbitratorTokenAccount:       req.ArbitratorTokenAccount,
		SequentialEscrowTokenAccount: req.SequentialEscrowTokenAccount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"instruction": payload})
}

// Cancel handles POST /escrows/cancel.
func (h *EscrowHandler) Cancel(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.CancelEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payload, err := h.escrowSvc.Cancel(c.Request.Context(), caller, ports.CancelEscrowCommand{
		EscrowID:           req.EscrowID,
		TradeID:            req.TradeID,
		Seller:             req.Seller,
		Authority:          req.Authority,
		SellerTokenAccount: req.SellerTokenAccount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"instruction": payload})
}

// Dispute handles POST /escrows/dispute.
func (h *EscrowHandler) Dispute(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.DisputeEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payload, err := h.escrowSvc.Dispute(c.Request.Context(), caller, ports.DisputeEscrowCommand{
		EscrowID:                   req.EscrowID,
		TradeID:                    req.TradeID,
		DisputingParty:             req.DisputingParty,
		DisputingPartyTokenAccount: req.DisputingPartyTokenAccount,
		EvidenceHash:               req.EvidenceHash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"instruction": payload})
}

// GetByTrade handles GET /escrows/:trade_id.
func (h *EscrowHandler) GetByTrade(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	tradeID, err := pathID(c, "trade_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	escrow, err := h.escrowSvc.GetByTrade(c.Request.Context(), caller, tradeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowResponse(escrow))
}

// toEscrowResponse converts domain.Escrow to its wire form.
func toEscrowResponse(e *domain.Escrow) dto.EscrowResponse {
	return dto.EscrowResponse{
		ID:                      e.ID,
		TradeID:                 e.TradeID,
		EscrowAddress:           e.EscrowAddress,
		SellerAddress:           e.SellerAddress,
		BuyerAddress:            e.BuyerAddress,
		TokenType:               e.TokenType,
		Amount:                  e.Amount,
		Status:                  string(e.Status),
		Sequential:              e.Sequential,
		SequentialEscrowAddress: e.SequentialEscrowAddress,
		CreatedAt:               e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:               e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
