package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/utils"
)

// maxSlackBody bounds what is buffered for signature checks.
const maxSlackBody = 1 << 20

// SlackSignature verifies X-Slack-Signature against the signing secret before any handler reads
// the body. An empty secret rejects every request.
func SlackSignature(signingSecret string, log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if signingSecret == "" {
			log.Error("slack signing secret not configured")
			utils.Abort(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid slack signature")
			return
		}

		body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxSlackBody))
		if err != nil {
			utils.Abort(ctx, http.StatusBadRequest, utils.CodeBadRequest, "unreadable body")
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		sv, err := slack.NewSecretsVerifier(ctx.Request.Header, signingSecret)
		if err == nil {
			if _, err = sv.Write(body); err == nil {
				err = sv.Ensure()
			}
		}
		if err != nil {
			log.Warn("slack signature rejected", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
			utils.Abort(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid slack signature")
			return
		}
		ctx.Next()
	}
}
