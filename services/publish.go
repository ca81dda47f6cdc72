package services

import (
	"context"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/utils"
)

// MaxBlocksPerMessage is Slack's per message block limit.
const MaxBlocksPerMessage = 50

// PublishOptions tune the digest posted for a team.
type PublishOptions struct {
	ChunkSize       int
	PostStats       bool
	NoSubmitMessage string
}

// SendFailure is one outbound message that Slack rejected.
type SendFailure struct {
	Target string `json:"target"`
	Code   string `json:"code"`
}

// PublishResult summarises a publish run.
type PublishResult struct {
	Team          string        `json:"team"`
	Standup       string        `json:"standup"`
	Channel       string        `json:"channel"`
	HeaderTS      string        `json:"header_ts,omitempty"`
	Blocks        []slack.Block `json:"blocks"`
	Submissions   int           `json:"submissions"`
	RepliesPosted int           `json:"replies_posted"`
	Missing       []string      `json:"missing"`
	Failures      []SendFailure `json:"failures,omitempty"`
}

// PublishService posts a team's digest of today's submissions to its channel.
type PublishService struct {
	deps Deps
	opts PublishOptions
}

func NewPublishService(deps Deps, opts PublishOptions) *PublishService {
	if opts.ChunkSize <= 0 || opts.ChunkSize > MaxBlocksPerMessage {
		opts.ChunkSize = MaxBlocksPerMessage
	}
	return &PublishService{deps: deps, opts: opts}
}

// Publish posts a header message, then the digest in chunks threaded under it, then optionally
// the list of members who did not submit. A failed header aborts the run; later failures are
// collected in the result and reported as a *PlatformError after every message was attempted.
func (p *PublishService) Publish(ctx context.Context, teamName string) (PublishResult, error) {
	log := p.deps.logger().With(zap.String("team", teamName))

	team, err := p.deps.Teams.GetByName(ctx, teamName)
	if err != nil {
		return PublishResult{}, notFound(err, ErrTeamNotFound)
	}
	standup, err := p.deps.Standups.GetByTeam(ctx, team.ID)
	if err != nil {
		return PublishResult{}, notFound(err, ErrStandupNotFound)
	}
	users, err := p.deps.Users.ListActiveByTeam(ctx, team.ID)
	if err != nil {
		return PublishResult{}, err
	}
	userIDs := make([]uint, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	today := p.deps.Clock.Today()
	subs, err := p.deps.Submissions.ListForStandup(ctx, standup.ID, userIDs, today)
	if err != nil {
		return PublishResult{}, err
	}

	byID := make(map[uint]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}
	submitted := make(map[uint]bool, len(subs))
	entries := make([]slackbot.DigestEntry, 0, len(subs))
	for _, sub := range subs {
		i, ok := byID[sub.UserID]
		if !ok {
			continue
		}
		u := users[i]
		submitted[u.ID] = true
		entries = append(entries, slackbot.DigestEntry{SlackID: u.SlackID, Username: u.Username, Answers: sub.Answers})
	}
	missing := make([]string, 0)
	for _, u := range users {
		if !submitted[u.ID] {
			missing = append(missing, u.SlackID)
		}
	}

	res := PublishResult{
		Team:        team.Name,
		Standup:     standup.Name,
		Channel:     standup.PublishChannel,
		Blocks:      slackbot.DigestBlocks(entries),
		Submissions: len(entries),
		Missing:     missing,
	}

	header := slackbot.HeaderText(standupTitle(standup.Name, team.Name), today.From.Format(utils.DateLayout))
	ts, err := p.deps.Slack.PostMessage(ctx, standup.PublishChannel, slackbot.Message{Text: header})
	if err != nil {
		perr := platformError("chat.postMessage", err)
		log.Warn("publish header failed", zap.String("code", perr.Code), zap.Error(err))
		return res, perr
	}
	res.HeaderTS = ts

	for i, chunk := range utils.Chunk(res.Blocks, p.opts.ChunkSize) {
		_, err := p.deps.Slack.PostMessage(ctx, standup.PublishChannel, slackbot.Message{
			Text:     header,
			Blocks:   chunk,
			ThreadTS: ts,
		})
		if err != nil {
			code := slackbot.ErrorCode(err)
			log.Warn("publish chunk failed", zap.Int("chunk", i), zap.String("code", code), zap.Error(err))
			res.Failures = append(res.Failures, SendFailure{Target: standup.PublishChannel, Code: code})
			continue
		}
		res.RepliesPosted++
	}

	if p.opts.PostStats && len(missing) > 0 {
		text := slackbot.MissingText(p.opts.NoSubmitMessage, missing)
		if _, err := p.deps.Slack.PostMessage(ctx, standup.PublishChannel, slackbot.Message{Text: text}); err != nil {
			code := slackbot.ErrorCode(err)
			log.Warn("publish stats failed", zap.String("code", code), zap.Error(err))
			res.Failures = append(res.Failures, SendFailure{Target: standup.PublishChannel, Code: code})
		}
	}

	log.Info("standup published",
		zap.Int("submissions", res.Submissions), zap.Int("replies", res.RepliesPosted), zap.Int("missing", len(missing)))
	if len(res.Failures) > 0 {
		return res, &PlatformError{Op: "chat.postMessage", Code: res.Failures[0].Code}
	}
	return res, nil
}

func standupTitle(standupName, teamName string) string {
	if standupName != "" {
		return standupName
	}
	return teamName
}
