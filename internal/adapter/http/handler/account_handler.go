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

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	caller, ok := middleware.CallerWallet(c)
	if !ok {
		response.Error(c, apperror.ErrAuthenticationRequired())
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.accountSvc.Create(c.Request.Context(), caller, ports.CreateAccountCommand{
		WalletAddress: req.WalletAddress,
		Username:      req.Username,
		Email:         req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// Get handles GET /accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	account, err := h.accountSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// GetMe handles GET /accounts/me — account recovery by caller wallet.
func (h *AccountHandler) GetMe(c *gin.Context) {
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

	response.OK(c, toAccountResponse(account))
}

// Update handles PUT /accounts/:id.
func (h *AccountHandler) Update(c *gin.Context) {
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

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.accountSvc.Update(c.Request.Context(), caller, id, ports.AccountPatch{
		Username:         req.Username,
		Email:            req.Email,
		TelegramUsername: req.TelegramUsername,
		TelegramID:       req.TelegramID,
		ProfilePhotoURL:  req.ProfilePhotoURL,
		PhoneCountryCode: req.PhoneCountryCode,
		PhoneNumber:      req.PhoneNumber,
		AvailableFrom:    req.AvailableFrom,
		AvailableTo:      req.AvailableTo,
		Timezone:         req.Timezone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// toAccountResponse converts domain.Account to its wire form.
func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:               a.ID,
		WalletAddress:    a.WalletAddress,
		Username:         a.Username,
		Email:            a.Email,
		TelegramUsername: a.TelegramUsername,
		TelegramID:       a.TelegramID,
		ProfilePhotoURL:  a.ProfilePhotoURL,
		PhoneCountryCode: a.PhoneCountryCode,
		PhoneNumber:      a.PhoneNumber,
		AvailableFrom:    a.AvailableFrom,
		AvailableTo:      a.AvailableTo,
		Timezone:         a.Timezone,
		CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
