package router

import (
	"crypto/subtle"
	"net/http"

	"gymdesk/controllers"

	"github.com/gin-gonic/gin"
)

const TokenHeader = "X-Api-Token"

// Authorizer blocks /api when a token is configured and the request does
// not carry it. An empty token leaves the API open (local development).
func Authorizer(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got := c.GetHeader(TokenHeader)
		if got == "" {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			controllers.RespondError(c, "token inválido", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
