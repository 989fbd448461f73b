package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/domain"
	resp "user-account-service/internal/transport/http/response"
)

type StateSource interface {
	AccountState(ctx context.Context, id string) (domain.State, error)
}

// RequireActive rejects callers whose account is no longer ACTIVE, even when
// their token is still valid. Must run after AuthJWT.
func RequireActive(src StateSource, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		claims, ok := auth.ClaimsFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		}
		st, err := src.AccountState(c.Request.Context(), claims.ID)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		case err != nil:
			l.Error("account state lookup failed", zap.String("user_id", claims.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(http.StatusInternalServerError, ""))
			return
		case st != domain.StateActive:
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(http.StatusForbidden, domain.ErrAccountBlocked.Error()))
			return
		}
		c.Next()
	}
}
