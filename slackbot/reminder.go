package slackbot

import (
	"github.com/slack-go/slack"
)

// FillStandupActionID identifies the reminder button that opens the standup modal.
const FillStandupActionID = "fill_standup"

// ReminderMessage is the DM sent to users who still owe a standup. The button value is the team name.
func ReminderMessage(text, teamName string) Message {
	button := slack.NewButtonBlockElement(
		FillStandupActionID,
		teamName,
		slack.NewTextBlockObject(slack.PlainTextType, "Fill standup", false, false),
	).WithStyle(slack.StylePrimary)

	return Message{
		Text: text,
		Blocks: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			slack.NewActionBlock("reminder_actions", button),
		},
	}
}
