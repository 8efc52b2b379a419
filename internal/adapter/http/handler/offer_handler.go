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

// OfferHandler handles offer endpoints. The account service resolves the
// caller's account for the "mine" list filter.
type OfferHandler struct {
	offerSvc   ports.OfferService
	accountSvc ports.AccountService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerSvc ports.OfferService, accountSvc ports.AccountService) *OfferHandler {
	return &OfferHandler{offerSvc: offerSvc, accountSvc: accountSvc}
}

// Create handles POST /offers.
func (h *OfferHandler) Create(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	offer, err := h.offerSvc.Create(c.Request.Context(), caller, ports.CreateOfferCommand{
		CreatorAccountID: req.CreatorAccountID,
		OfferType:        domain.OfferType(req.OfferType),
		Token:            req.Token,
		FiatCurrency:     req.FiatCurrency,
		MinAmount:        req.MinAmount,
		MaxAmount:        req.MaxAmount,
		TotalAvailable:   req.TotalAvailable,
		RateAdjustment:   req.RateAdjustment,
		Terms:            req.Terms,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toOfferResponse(offer))
}

// Get handles GET /offers/:id.
func (h *OfferHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	offer, err := h.offerSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOfferResponse(offer))
}

// List handles GET /offers. Filters: type, token, mine.
func (h *OfferHandler) List(c *gin.Context) {
	var params ports.OfferListParams

	if t := c.Query("type"); t != "" {
		offerType := domain.OfferType(t)
		if !offerType.Valid() {
			response.Error(c, apperror.Validation("type must be BUY or SELL"))
			return
		}
		params.OfferType = &offerType
	}
	if token := c.Query("token"); token != "" {
		params.Token = &token
	}
	if c.Query("mine") == "true" {
		caller, ok := middleware.CallerWallet(c)
		if !ok {
			response.Error(c, apperror.ErrAuthenticationRequired())
			return
		}
		account, err := h.accountSvc.GetByWallet(c.Request.Context(), caller)
		if err != nil {
			response.Error(c, err)
			return
		}
		params.CreatorAccountID = &account.ID
	}

	offers, err := h.offerSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.OfferResponse, 0, len(offers))
	for i := range offers {
		items = append(items, toOfferResponse(&offers[i]))
	}
	response.OK(c, items)
}

// Update handles PUT /offers/:id.
func (h *OfferHandler) Update(c *gin.Context) {
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

	var req dto.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	offer, err := h.offerSvc.Update(c.Request.Context(), caller, id, ports.OfferPatch{
		MinAmount:              req.MinAmount,
		MaxAmount:              req.MaxAmount,
		TotalAvailableAmount:   req.TotalAvailable,
		RateAdjustment:         req.RateAdjustment,
		Terms:                  req.Terms,
		FiatCurrency:           req.FiatCurrency,
		EscrowDepositTimeLimit: req.EscrowDepositTimeLimit,
		FiatPaymentTimeLimit:   req.FiatPaymentTimeLimit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOfferResponse(offer))
}

// Delete handles DELETE /offers/:id.
func (h *OfferHandler) Delete(c *gin.Context) {
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

	if err := h.offerSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// toOfferResponse converts domain.Offer to its wire form.
func toOfferResponse(o *domain.Offer) dto.OfferResponse {
	return dto.OfferResponse{
		ID:                     o.ID,
		CreatorAccountID:       o.CreatorAccountID,
		OfferType:              string(o.OfferType),
		Token:                  o.Token,
		FiatCurrency:           o.FiatCurrency,
		MinAmount:              o.MinAmount.String(),
		MaxAmount:              o.MaxAmount.String(),
		TotalAvailableAmount:   o.TotalAvailableAmount.String(),
		RateAdjustment:         o.RateAdjustment.String(),
		Terms:                  o.Terms,
		EscrowDepositTimeLimit: o.EscrowDepositTimeLimit,
		FiatPaymentTimeLimit:   o.FiatPaymentTimeLimit,
		CreatedAt:              o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:              o.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
