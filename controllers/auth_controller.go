package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/middleware"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// SessionIssuer exchanges API keys for session tokens and revokes them.
type SessionIssuer interface {
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error)
	Revoke(ctx context.Context, p services.Principal) error
}

// AuthController handles admin session endpoints.
type AuthController struct {
	sessions SessionIssuer
	log      *zap.Logger
}

func NewAuthController(sessions SessionIssuer, log *zap.Logger) *AuthController {
	return &AuthController{sessions: sessions, log: log}
}

type tokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// Token exchanges an API key for a JWT.
func (a *AuthController) Token(ctx *gin.Context) {
	var req tokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	token, exp, err := a.sessions.IssueToken(ctx.Request.Context(), req.APIKey)
	if err != nil {
		respondError(ctx, a.log, err)
		return
	}
	utils.Success(ctx, gin.H{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

// Logout revokes the session token used for this request.
func (a *AuthController) Logout(ctx *gin.Context) {
	p, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	if err := a.sessions.Revoke(ctx.Request.Context(), p); err != nil {
		respondError(ctx, a.log, err)
		return
	}
	utils.Success(ctx, gin.H{"revoked": true})
}
