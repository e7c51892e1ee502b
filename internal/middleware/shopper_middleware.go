package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/ikkim/maison-backend/internal/errors"
)

const (
	ShopperIDHeader = "X-Shopper-ID"
	ShopperIDKey    = "shopper_id"
)

// RequireShopper reads the anonymous shopper id issued by POST /session from
// the X-Shopper-ID header, or the shopper_id query parameter for WebSocket
// upgrades that cannot set headers.
func RequireShopper() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ShopperIDHeader)
		if id == "" {
			id = c.Query(ShopperIDKey)
		}
		if _, err := uuid.Parse(id); err != nil {
			GetLoggerFromContext(c).Warn("Missing or malformed shopper id", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Start a session first")
			c.Abort()
			return
		}

		c.Set(ShopperIDKey, id)
		c.Next()
	}
}

func GetShopperID(c *gin.Context) string {
	return c.GetString(ShopperIDKey)
}
