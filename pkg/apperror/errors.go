package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a 400 for malformed or out-of-range input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be a positive number", http.StatusBadRequest)
}

func ErrInvalidTransition(from, to string) *AppError {
	return New("VAL_003", fmt.Sprintf("Invalid state transition %s -> %s", from, to), http.StatusBadRequest)
}

func ErrInvalidWalletAddress() *AppError {
	return New("VAL_004", "Wallet address is not a valid base58 public key", http.StatusBadRequest)
}

// ---- Identity & Authorization (AUTH) ----

func ErrAuthenticationRequired() *AppError {
	return New("AUTH_001", "Authentication required", http.StatusUnauthorized)
}

// Forbidden returns a 403 for a caller that lacks rights over a resource.
func Forbidden(message string) *AppError {
	return New("AUTH_002", message, http.StatusForbidden)
}

func ErrNotOwner(resource string) *AppError {
	return Forbidden(fmt.Sprintf("You can only manage your own %ss", resource))
}

func ErrNotParticipant() *AppError {
	return Forbidden("Only the trade seller or buyer may perform this action")
}

func ErrWrongRole(role string) *AppError {
	return Forbidden(fmt.Sprintf("Caller wallet must be the %s for this escrow operation", role))
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrConflict(message string) *AppError {
	return New("RES_002", message, http.StatusConflict)
}

// ---- Trading (TRD) ----

func ErrOfferUnavailable() *AppError {
	return New("TRD_001", "Offer no longer has sufficient available amount", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

func ErrRateLimitExceeded() *AppError {
	return New("SYS_002", "Too many requests, slow down", http.StatusTooManyRequests)
}

// ErrUpstream wraps a ledger or derivation dependency failure. The cause is
// preserved for logging but the client only sees the generic message.
func ErrUpstream(err error) *AppError {
	return Wrap("SYS_001", "Upstream dependency unavailable", http.StatusInternalServerError, err)
}

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
