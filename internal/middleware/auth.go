package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/pkg/auth"
	"github.com/chronicare/monitor-api/pkg/errors"
)

const claimsCacheTTL = 5 * time.Minute

type AuthMiddleware struct {
	jwtService auth.JWTService
	claims     *cache.Cache
}

func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		claims:     cache.New(claimsCacheTTL, 10*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets the caller claims in
// context. Verified tokens are cached briefly so repeated requests from the
// same client skip signature checks; each entry expires no later than the
// token itself.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			handler.RespondError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}
		token := parts[1]

		if cached, ok := m.claims.Get(token); ok {
			c.Set(handler.ClaimsKey, cached.(*model.TokenClaims))
			c.Next()
			return
		}

		claims, err := m.jwtService.Validate(token)
		if err != nil {
			handler.RespondError(c, errors.Unauthorized(err))
			c.Abort()
			return
		}

		ttl := claimsCacheTTL
		if remaining := time.Until(claims.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
		if ttl > 0 {
			m.claims.Set(token, claims, ttl)
		}
		c.Set(handler.ClaimsKey, claims)
		c.Next()
	}
}
