package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// authMiddleware validates the bearer token and injects the user id into the
// request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := s.validateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// salonMiddleware resolves the X-Salon-Id header and verifies the
// authenticated user belongs to that salon.
func (s *Server) salonMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-Salon-Id")
		if header == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "X-Salon-Id header required"})
			c.Abort()
			return
		}

		salonID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid X-Salon-Id header"})
			c.Abort()
			return
		}

		userID := c.MustGet("user_id").(int64)
		if !s.isMember(userID, salonID) {
			c.JSON(http.StatusForbidden, gin.H{"message": "access denied to this salon"})
			c.Abort()
			return
		}

		c.Set("salon_id", salonID)
		c.Next()
	}
}
