package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/slackbot"
)

const noDetailsMessage = "No user details or standup exists for this request."

// SubmissionRecorder stores completed standup modals.
type SubmissionRecorder interface {
	Submit(ctx context.Context, cb slack.InteractionCallback) (services.SubmitResult, error)
}

// ModalOpener opens a team's standup modal.
type ModalOpener interface {
	OpenFromCommand(ctx context.Context, cmd services.SlashCommand) (string, error)
	OpenFromButton(ctx context.Context, slackUserID, teamName, triggerID string) error
}

// SlackController serves the endpoints Slack calls: the slash command and interactivity.
// Requests reach it only after the signature check.
type SlackController struct {
	submissions SubmissionRecorder
	modals      ModalOpener
	helpText    string
	log         *zap.Logger
}

func NewSlackController(submissions SubmissionRecorder, modals ModalOpener, helpText string, log *zap.Logger) *SlackController {
	return &SlackController{submissions: submissions, modals: modals, helpText: helpText, log: log}
}

// Trigger handles "/standup <team>". Slack shows the plain text body to the caller only.
func (s *SlackController) Trigger(ctx *gin.Context) {
	cmd, err := slack.SlashCommandParse(ctx.Request)
	if err != nil {
		badRequest(ctx, "invalid slash command")
		return
	}

	text, err := s.modals.OpenFromCommand(ctx.Request.Context(), services.SlashCommand{
		UserID:    cmd.UserID,
		Command:   cmd.Command,
		Text:      cmd.Text,
		TriggerID: cmd.TriggerID,
	})
	if err != nil {
		ctx.String(http.StatusOK, s.openFailure(err, cmd.UserID))
		return
	}
	if text == "" {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.String(http.StatusOK, text)
}

// Submit handles interactivity: view_submission stores answers, block_actions from the reminder
// button open the modal. Everything else is acknowledged and ignored.
func (s *SlackController) Submit(ctx *gin.Context) {
	cb, err := slackbot.ParseInteraction(ctx.PostForm("payload"))
	if err != nil {
		s.log.Warn("bad interaction payload", zap.Error(err))
		badRequest(ctx, "invalid interaction payload")
		return
	}

	switch cb.Type {
	case slack.InteractionTypeViewSubmission:
		s.submit(ctx, cb)
	case slack.InteractionTypeBlockActions:
		team := slackbot.ButtonValue(cb, slackbot.FillStandupActionID)
		if err := s.modals.OpenFromButton(ctx.Request.Context(), cb.User.ID, team, cb.TriggerID); err != nil {
			s.log.Warn("open modal from button failed", zap.String("user", cb.User.ID), zap.String("reason", s.openFailure(err, cb.User.ID)))
		}
		ctx.Status(http.StatusOK)
	default:
		ctx.Status(http.StatusOK)
	}
}

func (s *SlackController) submit(ctx *gin.Context, cb slack.InteractionCallback) {
	_, err := s.submissions.Submit(ctx.Request.Context(), cb)
	switch {
	case err == nil:
		ctx.Status(http.StatusOK)
	case isLookupMiss(err):
		ctx.JSON(http.StatusOK, slackbot.FieldErrors(s.withHelp(noDetailsMessage)))
	case errors.Is(err, services.ErrInvalidPayload):
		ctx.JSON(http.StatusOK, slackbot.FieldErrors("Your answers could not be read, please try again."))
	default:
		s.log.Error("store submission failed", zap.String("user", cb.User.ID), zap.String("trigger", cb.View.CallbackID), zap.Error(err))
		ctx.JSON(http.StatusOK, slackbot.FieldErrors("Saving your standup failed, please try again."))
	}
}

func (s *SlackController) openFailure(err error, userID string) string {
	var perr *services.PlatformError
	switch {
	case isLookupMiss(err):
		return s.withHelp(noDetailsMessage)
	case errors.As(err, &perr):
		return "Failed to open a modal due to " + perr.Code
	default:
		s.log.Error("open modal failed", zap.String("user", userID), zap.Error(err))
		return "Failed to open a modal due to internal_error"
	}
}

func (s *SlackController) withHelp(msg string) string {
	if s.helpText == "" {
		return msg
	}
	return msg + " " + s.helpText
}
