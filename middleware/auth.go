package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// ContextPrincipalKey stores the authenticated admin caller in the Gin context.
const ContextPrincipalKey = "principal"

// Authenticator validates an admin credential (API key or session token).
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (services.Principal, error)
}

// AdminAuth requires "Authorization: Bearer <credential>". Every failure gets the same 401 so
// callers cannot tell which part was wrong.
func AdminAuth(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		credential, ok := bearer(ctx.GetHeader("Authorization"))
		if !ok {
			unauthorized(ctx)
			return
		}

		principal, err := auth.Authenticate(ctx.Request.Context(), credential)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) {
				log.Error("admin authentication failed", zap.Error(err))
			}
			unauthorized(ctx)
			return
		}

		ctx.Set(ContextPrincipalKey, principal)
		ctx.Next()
	}
}

// PrincipalFrom returns the caller stored by AdminAuth.
func PrincipalFrom(ctx *gin.Context) (services.Principal, bool) {
	v, ok := ctx.Get(ContextPrincipalKey)
	if !ok {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(ctx *gin.Context) {
	utils.Abort(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
}
