package middleware

import (
	"net/http"

	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier resolves a raw bearer token to a user id.
type TokenVerifier interface {
	UserID(raw string) (string, error)
}

func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		userID, err := verifier.UserID(token)
		if err != nil {
			logger.Debug("Rejected bearer token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(auth.UserIDKey, userID)
		c.Next()
	}
}
