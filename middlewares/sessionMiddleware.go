package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/sirupsen/logrus"
)

// RevokedTokenPrefix is the redis key prefix the login service writes when a
// staff member logs out before the token expires.
const RevokedTokenPrefix = "RevokedToken:"

// SessionMiddleware rejects tokens that were revoked on logout. Without redis
// every verified token is accepted.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := utils.GetTokenFromContext(c.Request.Context())
		if !ok || token == "" {
			c.Next()
			return
		}
		_, revoked, err := config.GetRedisValue(c.Request.Context(), RevokedTokenPrefix+token)
		if err != nil {
			config.GetLogger().WithFields(logrus.Fields{"field": "session"}).Warn("revoked token lookup failed: " + err.Error())
			c.Next()
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
