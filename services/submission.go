package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
)

// SubmitResult describes what Submit did. Eligible is false when the payload was ignored.
type SubmitResult struct {
	Eligible   bool
	Edited     bool
	Submission models.Submission
}

// SubmissionService records completed standup modals, one submission per user, standup and day.
type SubmissionService struct {
	deps           Deps
	updatedMessage string
}

func NewSubmissionService(deps Deps, updatedMessage string) *SubmissionService {
	return &SubmissionService{deps: deps, updatedMessage: updatedMessage}
}

// IsSubmissionEligible reports whether cb is a completed modal for a known standup.
func (s *SubmissionService) IsSubmissionEligible(ctx context.Context, cb slack.InteractionCallback) (bool, error) {
	if cb.Type != slack.InteractionTypeViewSubmission || cb.View.CallbackID == "" {
		return false, nil
	}
	_, err := s.deps.Standups.GetByTrigger(ctx, cb.View.CallbackID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Submit stores the answers of a view_submission. A second submission on the same day edits
// the first one and the user gets an "updated" DM. Other interaction types are ignored.
func (s *SubmissionService) Submit(ctx context.Context, cb slack.InteractionCallback) (SubmitResult, error) {
	log := s.deps.logger()
	if cb.Type != slack.InteractionTypeViewSubmission {
		return SubmitResult{}, nil
	}

	standup, err := s.deps.Standups.GetByTrigger(ctx, cb.View.CallbackID)
	if err != nil {
		return SubmitResult{}, notFound(err, ErrStandupNotFound)
	}
	user, err := s.deps.Users.GetBySlackID(ctx, cb.User.ID)
	if err != nil {
		return SubmitResult{}, notFound(err, ErrUserNotFound)
	}

	answers, err := slackbot.ExtractAnswers(cb.View, standup.Questions)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	existing, err := s.deps.Submissions.FindForDay(ctx, user.ID, standup.ID, s.deps.Clock.Today())
	switch {
	case err == nil:
		existing.Answers = answers
		if err := s.deps.Submissions.UpdateAnswers(ctx, &existing); err != nil {
			return SubmitResult{}, err
		}
		log.Info("standup submission updated",
			zap.Uint("submission_id", existing.ID), zap.String("user", user.SlackID), zap.String("trigger", standup.Trigger))
		s.acknowledgeEdit(ctx, user)
		return SubmitResult{Eligible: true, Edited: true, Submission: existing}, nil
	case errors.Is(err, store.ErrNotFound):
	default:
		return SubmitResult{}, err
	}

	sub := models.Submission{
		UserID:    user.ID,
		StandupID: standup.ID,
		Answers:   answers,
		CreatedAt: s.deps.Clock.Now(),
	}
	if err := s.deps.Submissions.Create(ctx, &sub); err != nil {
		return SubmitResult{}, err
	}
	log.Info("standup submitted",
		zap.Uint("submission_id", sub.ID), zap.String("user", user.SlackID), zap.String("trigger", standup.Trigger))
	return SubmitResult{Eligible: true, Submission: sub}, nil
}

// a failed ack never undoes the write
func (s *SubmissionService) acknowledgeEdit(ctx context.Context, user models.User) {
	if s.deps.Slack == nil || s.updatedMessage == "" {
		return
	}
	if _, err := s.deps.Slack.PostMessage(ctx, user.SlackID, slackbot.Message{Text: s.updatedMessage}); err != nil {
		s.deps.logger().Warn("edit acknowledgement failed",
			zap.String("user", user.SlackID), zap.String("code", slackbot.ErrorCode(err)), zap.Error(err))
	}
}

// PurgeBeforeToday deletes every submission created before today and returns the count.
func (s *SubmissionService) PurgeBeforeToday(ctx context.Context) (int64, error) {
	n, err := s.deps.Submissions.DeleteBefore(ctx, s.deps.Clock.Today().From)
	if err != nil {
		return 0, err
	}
	s.deps.logger().Info("old submissions deleted", zap.Int64("count", n))
	return n, nil
}
