package slackbot

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/cppla/standupbot/models"
)

// DigestEntry is one user's answers for the publish digest.
type DigestEntry struct {
	SlackID  string
	Username string
	Answers  []models.Answer
}

// DigestBlocks renders entries as: a context line naming the user, one section per answered
// question, then a divider.
func DigestBlocks(entries []DigestEntry) []slack.Block {
	blocks := make([]slack.Block, 0, len(entries)*4)
	for _, e := range entries {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, userLine(e), false, false),
		))
		for _, a := range e.Answers {
			if strings.TrimSpace(a.Answer) == "" {
				continue
			}
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", a.Question, a.Answer), false, false),
				nil, nil,
			))
		}
		blocks = append(blocks, slack.NewDividerBlock())
	}
	return blocks
}

func userLine(e DigestEntry) string {
	if e.Username == "" {
		return fmt.Sprintf("*<@%s>*", e.SlackID)
	}
	return fmt.Sprintf("*<@%s>* (%s)", e.SlackID, e.Username)
}

// HeaderText is the top level message that digest chunks are threaded under.
func HeaderText(standupName, date string) string {
	return fmt.Sprintf("%s standup for %s", standupName, date)
}

// MissingText lists users who did not submit, e.g. "Not submitted by: <@U1>, <@U2>".
func MissingText(prefix string, slackIDs []string) string {
	mentions := make([]string, 0, len(slackIDs))
	for _, id := range slackIDs {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}
	return strings.TrimSpace(prefix + " " + strings.Join(mentions, ", "))
}
