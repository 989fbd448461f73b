package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	resp "user-account-service/internal/transport/http/response"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthJWT verifies the bearer token and stores its claims on the request
// context. Preflight OPTIONS requests pass through untouched.
func AuthJWT(j TokenParser, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		tok, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			l.Info("unauthorized", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		}
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
