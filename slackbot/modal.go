package slackbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/cppla/standupbot/models"
)

// AnswerActionID is the action id of every answer input in a standup modal.
const AnswerActionID = "answer"

const maxTitleRunes = 24

// ErrNoState means a view submission carried no input state.
var ErrNoState = errors.New("view has no state")

// QuestionBlockID names the input block holding the answer to question i.
func QuestionBlockID(i int) string {
	return fmt.Sprintf("question_%d", i)
}

// BuildModal renders a standup's questions as a modal whose callback id is the trigger.
func BuildModal(trigger, name string, questions []string) slack.ModalViewRequest {
	blocks := make([]slack.Block, 0, len(questions))
	for i, q := range questions {
		input := slack.NewPlainTextInputBlockElement(nil, AnswerActionID)
		input.Multiline = true
		blocks = append(blocks, slack.NewInputBlock(
			QuestionBlockID(i),
			slack.NewTextBlockObject(slack.PlainTextType, q, false, false),
			nil,
			input,
		))
	}
	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: trigger,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, modalTitle(name), false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Close:      slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

// modal titles are capped by Slack
func modalTitle(name string) string {
	if name == "" {
		name = "Standup"
	}
	if utf8.RuneCountInString(name) <= maxTitleRunes {
		return name
	}
	r := []rune(name)
	return string(r[:maxTitleRunes-1]) + "…"
}

// EncodeModal serialises a modal for storage on the standup row.
func EncodeModal(view slack.ModalViewRequest) (string, error) {
	b, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("encode modal: %w", err)
	}
	return string(b), nil
}

// DecodeModal reverses EncodeModal.
func DecodeModal(raw string) (slack.ModalViewRequest, error) {
	var view slack.ModalViewRequest
	if raw == "" {
		return view, errors.New("empty modal definition")
	}
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return view, fmt.Errorf("decode modal: %w", err)
	}
	return view, nil
}

// ModalFor returns the stored modal of s, regenerating it when the stored copy is unusable.
func ModalFor(s models.Standup) slack.ModalViewRequest {
	if view, err := DecodeModal(s.StandupBlocks); err == nil && view.CallbackID == s.Trigger && len(view.Blocks.BlockSet) == len(s.Questions) {
		return view
	}
	return BuildModal(s.Trigger, s.Name, s.Questions)
}

// ExtractAnswers pairs each question with the value typed into its input block, in question order.
func ExtractAnswers(view slack.View, questions []string) ([]models.Answer, error) {
	if view.State == nil {
		return nil, ErrNoState
	}
	answers := make([]models.Answer, 0, len(questions))
	for i, q := range questions {
		var value string
		if actions, ok := view.State.Values[QuestionBlockID(i)]; ok {
			value = actions[AnswerActionID].Value
		}
		answers = append(answers, models.Answer{Question: q, Answer: value})
	}
	return answers, nil
}
