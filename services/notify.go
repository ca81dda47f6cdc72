package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/slackbot"
)

// NotifyResult lists who was reminded and which reminders failed.
type NotifyResult struct {
	Team     string        `json:"team"`
	Checked  int           `json:"checked"`
	Notified []string      `json:"notified"`
	Failures []SendFailure `json:"failures,omitempty"`
}

// NotifyService reminds team members who still owe today's standup.
type NotifyService struct {
	deps    Deps
	message string
}

func NewNotifyService(deps Deps, message string) *NotifyService {
	return &NotifyService{deps: deps, message: message}
}

// Notify DMs every active member of teamName whose submissions today are fewer than the
// standups of all the teams they belong to. Send failures are collected and the sweep continues.
func (n *NotifyService) Notify(ctx context.Context, teamName string) (NotifyResult, error) {
	log := n.deps.logger().With(zap.String("team", teamName))

	team, err := n.deps.Teams.GetByName(ctx, teamName)
	if err != nil {
		return NotifyResult{}, notFound(err, ErrTeamNotFound)
	}
	users, err := n.deps.Users.ListActiveByTeam(ctx, team.ID)
	if err != nil {
		return NotifyResult{}, err
	}

	today := n.deps.Clock.Today()
	res := NotifyResult{Team: team.Name, Checked: len(users), Notified: []string{}}
	for _, u := range users {
		teams, err := n.deps.Teams.ListByUser(ctx, u.ID)
		if err != nil {
			return res, err
		}
		teamIDs := make([]uint, 0, len(teams))
		for _, t := range teams {
			teamIDs = append(teamIDs, t.ID)
		}
		expected, err := n.deps.Standups.CountByTeams(ctx, teamIDs)
		if err != nil {
			return res, err
		}
		// Counts today's submissions across every standup, not just this team's.
		actual, err := n.deps.Submissions.CountByUser(ctx, u.ID, today)
		if err != nil {
			return res, err
		}
		if actual >= expected {
			continue
		}

		if _, err := n.deps.Slack.PostMessage(ctx, u.SlackID, slackbot.ReminderMessage(n.message, team.Name)); err != nil {
			code := slackbot.ErrorCode(err)
			log.Warn("reminder failed", zap.String("user", u.SlackID), zap.String("code", code), zap.Error(err))
			res.Failures = append(res.Failures, SendFailure{Target: u.SlackID, Code: code})
			continue
		}
		res.Notified = append(res.Notified, u.SlackID)
	}

	log.Info("reminders sent", zap.Int("checked", res.Checked), zap.Int("notified", len(res.Notified)), zap.Int("failed", len(res.Failures)))
	return res, nil
}
