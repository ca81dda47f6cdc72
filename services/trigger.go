package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/slackbot"
)

const defaultCommand = "/standup"

// SlashCommand is the part of a slash command invocation the modal opener needs.
type SlashCommand struct {
	UserID    string
	Command   string
	Text      string
	TriggerID string
}

// TriggerService opens a team's standup modal for a user.
type TriggerService struct {
	deps Deps
}

func NewTriggerService(deps Deps) *TriggerService {
	return &TriggerService{deps: deps}
}

// OpenFromCommand handles "/standup <team>". With no team it returns a usage text listing the
// caller's commands; after opening a modal the returned text is empty.
func (t *TriggerService) OpenFromCommand(ctx context.Context, cmd SlashCommand) (string, error) {
	user, err := t.deps.Users.GetBySlackID(ctx, cmd.UserID)
	if err != nil {
		return "", notFound(err, ErrUserNotFound)
	}

	teamName := strings.TrimSpace(cmd.Text)
	if teamName == "" {
		return t.usage(ctx, user, cmd.Command)
	}
	team, err := t.deps.Teams.GetByName(ctx, teamName)
	if err != nil {
		return "", notFound(err, ErrTeamNotFound)
	}
	return "", t.open(ctx, team, cmd.TriggerID)
}

// OpenFromButton handles the reminder button. An empty teamName falls back to the user's first team.
func (t *TriggerService) OpenFromButton(ctx context.Context, slackUserID, teamName, triggerID string) error {
	user, err := t.deps.Users.GetBySlackID(ctx, slackUserID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}

	var team models.Team
	if teamName != "" {
		team, err = t.deps.Teams.GetByName(ctx, teamName)
		if err != nil {
			return notFound(err, ErrTeamNotFound)
		}
	} else {
		teams, err := t.deps.Teams.ListByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(teams) == 0 {
			return ErrTeamNotFound
		}
		team = teams[0]
	}
	return t.open(ctx, team, triggerID)
}

func (t *TriggerService) open(ctx context.Context, team models.Team, triggerID string) error {
	standup, err := t.deps.Standups.GetByTeam(ctx, team.ID)
	if err != nil {
		return notFound(err, ErrStandupNotFound)
	}
	if err := t.deps.Slack.OpenView(ctx, triggerID, slackbot.ModalFor(standup)); err != nil {
		perr := platformError("views.open", err)
		t.deps.logger().Warn("open modal failed", zap.String("team", team.Name), zap.String("code", perr.Code), zap.Error(err))
		return perr
	}
	return nil
}

func (t *TriggerService) usage(ctx context.Context, user models.User, command string) (string, error) {
	if command == "" {
		command = defaultCommand
	}
	teams, err := t.deps.Teams.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	cmds := make([]string, 0, len(teams))
	for _, team := range teams {
		cmds = append(cmds, fmt.Sprintf("`%s %s`", command, team.Name))
	}
	return fmt.Sprintf("Slash command format is `%s <team-name>`.\nYour commands: %s", command, strings.Join(cmds, ", ")), nil
}
