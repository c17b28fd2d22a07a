package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/chronicare/monitor-api/internal/model"
)

type stubJWTService struct {
	claims    *model.TokenClaims
	err       error
	validated int
}

func (s *stubJWTService) Generate(_ *model.User) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (s *stubJWTService) Validate(_ string) (*model.TokenClaims, error) {
	s.validated++
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func authTestRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", m.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateCachesValidatedClaims(t *testing.T) {
	stub := &stubJWTService{claims: &model.TokenClaims{
		UserID:    uuid.New(),
		Role:      model.RolePatient,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	r := authTestRouter(NewAuthMiddleware(stub))

	assert.Equal(t, http.StatusNoContent, doAuthRequest(r, "Bearer tok").Code)
	assert.Equal(t, http.StatusNoContent, doAuthRequest(r, "Bearer tok").Code)
	assert.Equal(t, 1, stub.validated)
}

func TestAuthenticateCacheStopsAtTokenExpiry(t *testing.T) {
	stub := &stubJWTService{claims: &model.TokenClaims{
		UserID:    uuid.New(),
		Role:      model.RolePatient,
		ExpiresAt: time.Now().Add(30 * time.Millisecond),
	}}
	r := authTestRouter(NewAuthMiddleware(stub))

	assert.Equal(t, http.StatusNoContent, doAuthRequest(r, "Bearer tok").Code)

	// Once the token itself has expired the cached entry must be gone and
	// the signature check must reject the request.
	time.Sleep(80 * time.Millisecond)
	stub.err = fmt.Errorf("token is expired")

	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Bearer tok").Code)
	assert.Equal(t, 2, stub.validated)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	stub := &stubJWTService{}
	r := authTestRouter(NewAuthMiddleware(stub))

	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Token abc").Code)
	assert.Equal(t, 0, stub.validated)
}
