// Package slackbot holds the Slack facing pieces of the bot: the outbound client,
// Block Kit builders for modals, digests and reminders, and interaction parsing.
package slackbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// Message is an outbound chat message. ThreadTS makes it a reply in that thread.
type Message struct {
	Text     string
	Blocks   []slack.Block
	ThreadTS string
}

// Messenger is the subset of the Slack Web API the bot calls.
type Messenger interface {
	// PostMessage sends msg to a channel (or a user id for a DM) and returns the message timestamp.
	PostMessage(ctx context.Context, channel string, msg Message) (string, error)
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
}

// Client implements Messenger with slack-go.
type Client struct {
	api *slack.Client
}

func NewClient(token string, opts ...slack.Option) *Client {
	return &Client{api: slack.New(token, opts...)}
}

func (c *Client) PostMessage(ctx context.Context, channel string, msg Message) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage %s: %w", channel, err)
	}
	return ts, nil
}

func (c *Client) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("views.open: %w", err)
	}
	return nil
}

// ErrorCode extracts the Slack error code (e.g. "channel_not_found") from err.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) && apiErr.Err != "" {
		return apiErr.Err
	}
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return "ratelimited"
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("http_%d", statusErr.Code)
	}
	return "unknown_error"
}
