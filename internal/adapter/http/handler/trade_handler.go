package handler

import (
	"strconv"

	"github.com/Panmoni/localsolana-api/internal/adapter/http/dto"
	"github.com/Panmoni/localsolana-api/internal/adapter/http/middleware"
	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"
	"github.com/Panmoni/localsolana-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// TradeHandler handles trade lifecycle endpoints.
type TradeHandler struct {
	tradeSvc ports.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc ports.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// Initiate handles POST /trades.
func (h *TradeHandler) Initiate(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.InitiateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	trade, err := h.tradeSvc.Initiate(c.Request.Context(), caller, ports.InitiateTradeCommand{
		Leg1OfferID:             req.Leg1OfferID,
		Leg2OfferID:             req.Leg2OfferID,
		FromFiatCurrency:        req.FromFiatCurrency,
		DestinationFiatCurrency: req.DestinationFiatCurrency,
		FromBank:                req.FromBank,
		DestinationBank:         req.DestinationBank,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTradeResponse(trade))
}

// Get handles GET /trades/:id.
func (h *TradeHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	trade, err := h.tradeSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTradeResponse(trade))
}

// List handles GET /trades. Filters: status, user (account id).
func (h *TradeHandler) List(c *gin.Context) {
	var params ports.TradeListParams

	if s := c.Query("status"); s != "" {
		status := domain.OverallStatus(s)
		if !status.Valid() {
			response.Error(c, apperror.Validation("status must be IN_PROGRESS, COMPLETED or CANCELLED"))
			return
		}
		params.OverallStatus = &status
	}
	if u := c.Query("user"); u != "" {
		accountID, err := strconv.ParseInt(u, 10, 64)
		if err != nil || accountID <= 0 {
			response.Error(c, apperror.Validation("user must be a positive account id"))
			return
		}
		params.AccountID = &accountID
	}

	trades, err := h.tradeSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TradeResponse, 0, len(trades))
	for i := range trades {
		items = append(items, toTradeResponse(&trades[i]))
	}
	response.OK(c, items)
}

// Update handles PUT /trades/:id.
func (h *TradeHandler) Update(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	cmd := ports.UpdateTradeCommand{FiatPaid: req.FiatPaid}
	if req.Leg1State != nil {
		state := domain.LegState(*req.Leg1State)
		cmd.Leg1State = &state
	}
	if req.OverallStatus != nil {
		status := domain.OverallStatus(*req.OverallStatus)
		cmd.OverallStatus = &status
	}

	trade, err := h.tradeSvc.Update(c.Request.Context(), caller, id, cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTradeResponse(trade))
}

// toTradeResponse converts domain.Trade to its wire form.
func toTradeResponse(t *domain.Trade) dto.TradeResponse {
	resp := dto.TradeResponse{
		ID:                      t.ID,
		Leg1OfferID:             t.Leg1OfferID,
		Leg2OfferID:             t.Leg2OfferID,
		OverallStatus:           string(t.OverallStatus),
		FromFiatCurrency:        t.FromFiatCurrency,
		DestinationFiatCurrency: t.DestinationFiatCurrency,
		FromBank:                t.FromBank,
		DestinationBank:         t.DestinationBank,
		Leg1State:               string(t.Leg1State),
		Leg1SellerAccountID:     t.Leg1SellerAccountID,
		Leg1BuyerAccountID:      t.Leg1BuyerAccountID,
		Leg1CryptoToken:         t.Leg1CryptoToken,
		Leg1CryptoAmount:        t.Leg1CryptoAmount.String(),
		Leg1FiatCurrency:        t.Leg1FiatCurrency,
		Leg1EscrowAddress:       t.Leg1EscrowAddress,
		CreatedAt:               t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:               t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.Leg1FiatPaidAt != nil {
		s := t.Leg1FiatPaidAt.Format("2006-01-02T15:04:05Z07:00")
		resp.Leg1FiatPaidAt = &s
	}
	return resp
}
