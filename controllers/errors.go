package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// respondError maps service errors onto the response envelope. Unknown errors are logged and
// reported as 500 without detail.
func respondError(ctx *gin.Context, log *zap.Logger, err error) {
	var perr *services.PlatformError
	switch {
	case errors.As(err, &perr):
		log.Warn("slack call failed", zap.String("op", perr.Op), zap.String("code", perr.Code), zap.Error(err))
		utils.Error(ctx, http.StatusOK, utils.CodePlatform, "Failed due to "+perr.Code)
	case errors.Is(err, services.ErrInvalidDate):
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidDate, services.ErrInvalidDate.Error())
	case errors.Is(err, services.ErrInvalidPayload):
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidPayload, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrStandupNotFound):
		utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrTeamInUse):
		utils.Error(ctx, http.StatusConflict, utils.CodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
	default:
		log.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "internal server error")
	}
}

func badRequest(ctx *gin.Context, message string) {
	utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, message)
}

// isLookupMiss reports the errors a Slack user gets the help text for.
func isLookupMiss(err error) bool {
	return errors.Is(err, services.ErrUserNotFound) ||
		errors.Is(err, services.ErrTeamNotFound) ||
		errors.Is(err, services.ErrStandupNotFound)
}
