package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Panmoni/localsolana-api/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testWallet = "4PonUp1nPEzDPnRMPjTqufLT3f37QuBJGk1CVnsTXx7x"

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityAuth_ValidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Resolve("good-token").Return(testWallet, nil)

	r := gin.New()
	r.GET("/protected", IdentityAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		wallet, ok := CallerWallet(c)
		assert.True(t, ok)
		c.String(http.StatusOK, wallet)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{
		"Authorization": "Bearer good-token",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testWallet, w.Body.String())
}

func TestIdentityAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.GET("/protected", IdentityAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestIdentityAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Resolve("bad-token").Return("", assert.AnError)

	r := gin.New()
	r.GET("/protected", IdentityAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{
		"Authorization": "Bearer bad-token",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalIdentityAuth_Anonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.GET("/open", OptionalIdentityAuth(tokenSvc), func(c *gin.Context) {
		_, ok := CallerWallet(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/open", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalIdentityAuth_WithToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Resolve("good-token").Return(testWallet, nil)

	r := gin.New()
	r.GET("/open", OptionalIdentityAuth(tokenSvc), func(c *gin.Context) {
		wallet, ok := CallerWallet(c)
		assert.True(t, ok)
		assert.Equal(t, testWallet, wallet)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/open", map[string]string{
		"Authorization": "Bearer good-token",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString(CtxRequestID))
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = performRequest(r, http.MethodGet, "/", map[string]string{"X-Request-ID": "client-id"})
	assert.Equal(t, "client-id", w.Header().Get("X-Request-ID"))
}

func TestRecovery_PanicReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := performRequest(r, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"key":"a value well over sixteen bytes"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
