package middleware

import (
	"net/http"
	"strings"

	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
)

// GuestIDHeader carries the anonymous owner identifier in both directions:
// the client resends what the server last echoed.
const GuestIDHeader = "X-Guest-ID"

// IdentityMiddleware resolves the request to an owner identity. A bearer
// token wins and must be valid (no silent fallback to guest); otherwise the
// inbound guest id is reused when well-formed, or a fresh one is minted. The
// guest id is echoed on every anonymous response so the client can persist it.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
				c.Abort()
				return
			}

			claims, err := utils.ValidateToken(parts[1])
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				c.Abort()
				return
			}

			c.Set("owner_id", claims.UserID.String())
			c.Set("is_guest", false)
			c.Set("user_id", claims.UserID)
			c.Set("user_role", claims.Role)
			c.Next()
			return
		}

		guestID := c.GetHeader(GuestIDHeader)
		if !utils.IsValidGuestID(guestID) {
			guestID = utils.NewGuestID()
		}
		c.Header(GuestIDHeader, guestID)
		c.Set("owner_id", guestID)
		c.Set("is_guest", true)
		c.Next()
	}
}
