package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("VAL_001", "bad input", http.StatusBadRequest)
	assert.Equal(t, "[VAL_001] bad input", e.Error())

	wrapped := Wrap("SYS_001", "Upstream dependency unavailable", http.StatusInternalServerError, errors.New("connection refused"))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	e := ErrUpstream(cause)
	assert.True(t, errors.Is(e, cause))
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, ErrInvalidTransition("RELEASED", "CREATED").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, ErrAuthenticationRequired().HTTPStatus)
	assert.Equal(t, http.StatusForbidden, ErrNotOwner("offer").HTTPStatus)
	assert.Equal(t, http.StatusForbidden, ErrWrongRole("seller").HTTPStatus)
	assert.Equal(t, http.StatusNotFound, ErrNotFound("Trade").HTTPStatus)
	assert.Equal(t, http.StatusConflict, ErrConflict("duplicate").HTTPStatus)
	assert.Equal(t, http.StatusConflict, ErrOfferUnavailable().HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, ErrUpstream(errors.New("x")).HTTPStatus)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Trade not found", ErrNotFound("Trade").Message)
	assert.Equal(t, "You can only manage your own offers", ErrNotOwner("offer").Message)
	assert.Contains(t, ErrInvalidTransition("CREATED", "RELEASED").Message, "CREATED -> RELEASED")
}
