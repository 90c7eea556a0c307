package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	"github.com/Gagan3036/compliance-platform-api/internal/token"
)

const userIDKey = "authUserID"

// Auth validates the Authorization bearer token and attaches the caller's
// user ID to the request context.
type Auth struct {
	Issuer *token.Issuer
}

// RequireAccessToken ensures the request carries a valid bearer access token.
func (m *Auth) RequireAccessToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": domain.ErrAccessTokenMissing.Message,
			"code":  domain.ErrAccessTokenMissing.Code,
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": domain.ErrAccessTokenMissing.Message,
			"code":  domain.ErrAccessTokenMissing.Code,
		})
		return
	}

	claims, err := m.Issuer.VerifyAccess(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": domain.ErrInvalidToken.Message,
			"code":  domain.ErrInvalidToken.Code,
		})
		return
	}

	c.Set(userIDKey, claims.UserID)
	c.Next()
}

// CallerID returns the authenticated user ID attached by RequireAccessToken.
func CallerID(c *gin.Context) (int64, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}
