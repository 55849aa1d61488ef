package middleware

import (
	"net/http"
	"strings"

	"lovegift/config"
	"lovegift/internal/auth"

	"github.com/gin-gonic/gin"
)

const memberIDKey = "member_id"

// AuthRequired validates the bearer JWT and sets member_id and email in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(memberIDKey, claims.MemberID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// GetMemberID returns the authenticated member ID (must be used after AuthRequired).
func GetMemberID(c *gin.Context) uint {
	v, _ := c.Get(memberIDKey)
	if v == nil {
		return 0
	}
	return v.(uint)
}
