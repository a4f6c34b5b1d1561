package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PairingToken gates a route on a shared token, passed as the "token" query
// parameter or a bearer Authorization header. An empty configured token
// disables the check. Comparison is constant time.
func PairingToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		presented := c.Query("token")
		if presented == "" {
			auth := c.GetHeader("Authorization")
			if len(auth) > 7 && auth[:7] == "Bearer " {
				presented = auth[7:]
			}
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid pairing token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
