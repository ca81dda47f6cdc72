package slackbot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ErrNoPayload means an interaction request had no payload form field.
var ErrNoPayload = errors.New("missing interaction payload")

// ParseInteraction decodes the form encoded "payload" field Slack posts to interactivity endpoints.
func ParseInteraction(payload string) (slack.InteractionCallback, error) {
	var cb slack.InteractionCallback
	if payload == "" {
		return cb, ErrNoPayload
	}
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		return cb, fmt.Errorf("decode interaction payload: %w", err)
	}
	return cb, nil
}

// ButtonValue returns the value of the first block action with actionID, or "".
func ButtonValue(cb slack.InteractionCallback, actionID string) string {
	for _, a := range cb.ActionCallback.BlockActions {
		if a != nil && a.ActionID == actionID {
			return a.Value
		}
	}
	return ""
}

// FieldErrors builds the view_submission response that shows msg under the first input.
func FieldErrors(msg string) *slack.ViewSubmissionResponse {
	return slack.NewErrorsViewSubmissionResponse(map[string]string{QuestionBlockID(0): msg})
}
