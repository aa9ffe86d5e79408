package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account-service/internal/domain"
	resp "account-service/internal/transport/http/response"
)

const keyUser = "currentUser"

type Authenticator interface {
	RequireAuthenticated(ctx context.Context, token string) (*domain.User, error)
}

// Bearer resolves "Authorization: Bearer <token>" to a user and stores it on the context.
func Bearer(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(ah, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "not authenticated"))
			return
		}
		u, err := a.RequireAuthenticated(c.Request.Context(), strings.TrimSpace(token))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "user not found"))
			return
		case errors.Is(err, domain.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "could not validate credentials"))
			return
		case err != nil:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		c.Set(keyUser, u)
		c.Next()
	}
}

// CurrentUser is the user set by Bearer, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(keyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
