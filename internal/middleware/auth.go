package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cricket-booking/internal/auth"
	"cricket-booking/internal/logger"
	"cricket-booking/internal/utils"
)

const identityKey = "identity"

// TokenParser verifies a bearer token and returns the caller.
type TokenParser interface {
	ParseValidate(token string) (auth.Identity, error)
}

func RequireAuth(tokens TokenParser, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}

		id, err := tokens.ParseValidate(token)
		if err != nil {
			log.LogSecurity("AUTH_FAILED", c.Request.Method+" "+c.FullPath()+": "+err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("authentication required"))
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the caller stored by RequireAuth.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
