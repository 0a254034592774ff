package middleware

import (
	"net/http"
	"strings"

	"staking_bot/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT guards the operator API with a bearer token minted by the
// admintoken tool. The chat ID from the claims lands in the context
// under "chat_id".
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		chatID, err := service.ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("chat_id", chatID)
		c.Next()
	}
}
