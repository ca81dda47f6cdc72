package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

const standupsCachePrefix = "standups:"

// StandupInput creates a standup for an existing team. Name defaults to the team name and
// IsActive to true.
type StandupInput struct {
	Team           string
	Name           string
	Trigger        string
	Questions      []string
	IsActive       *bool
	PublishChannel string
}

// StandupPatch updates a standup; nil fields are left alone.
type StandupPatch struct {
	Team           *string
	Name           *string
	Trigger        *string
	Questions      *[]string
	IsActive       *bool
	PublishChannel *string
}

type StandupService struct {
	deps Deps
}

func NewStandupService(deps Deps) *StandupService {
	return &StandupService{deps: deps}
}

func (s *StandupService) Create(ctx context.Context, in StandupInput) (models.Standup, error) {
	team, err := s.deps.Teams.GetByName(ctx, utils.Sanitize(in.Team))
	if err != nil {
		return models.Standup{}, notFound(err, ErrTeamNotFound)
	}
	st := models.Standup{
		TeamID:         team.ID,
		Name:           utils.Sanitize(in.Name),
		Trigger:        utils.Sanitize(in.Trigger),
		Questions:      utils.SanitizeAll(in.Questions),
		IsActive:       in.IsActive == nil || *in.IsActive,
		PublishChannel: utils.Sanitize(in.PublishChannel),
		CreatedAt:      s.deps.Clock.Now(),
	}
	if st.Name == "" {
		st.Name = team.Name
	}
	if err := s.validate(st); err != nil {
		return models.Standup{}, err
	}
	if err := s.render(&st); err != nil {
		return models.Standup{}, err
	}

	if err := s.deps.Standups.Create(ctx, &st); err != nil {
		return models.Standup{}, duplicate(err, "standup for team or trigger")
	}
	s.deps.Cache.InvalidateByPrefix(ctx, standupsCachePrefix)
	s.deps.Cache.InvalidateByPrefix(ctx, teamsCachePrefix)
	s.deps.logger().Info("standup created", zap.Uint("id", st.ID), zap.String("trigger", st.Trigger))
	return st, nil
}

func (s *StandupService) Update(ctx context.Context, id uint, patch StandupPatch) (models.Standup, error) {
	st, err := s.deps.Standups.GetByID(ctx, id)
	if err != nil {
		return models.Standup{}, notFound(err, ErrStandupNotFound)
	}
	if patch.Team != nil {
		team, err := s.deps.Teams.GetByName(ctx, utils.Sanitize(*patch.Team))
		if err != nil {
			return models.Standup{}, notFound(err, ErrTeamNotFound)
		}
		st.TeamID = team.ID
	}
	if patch.Name != nil {
		st.Name = utils.Sanitize(*patch.Name)
	}
	if patch.Trigger != nil {
		st.Trigger = utils.Sanitize(*patch.Trigger)
	}
	if patch.Questions != nil {
		st.Questions = utils.SanitizeAll(*patch.Questions)
	}
	if patch.IsActive != nil {
		st.IsActive = *patch.IsActive
	}
	if patch.PublishChannel != nil {
		st.PublishChannel = utils.Sanitize(*patch.PublishChannel)
	}
	if err := s.validate(st); err != nil {
		return models.Standup{}, err
	}
	if err := s.render(&st); err != nil {
		return models.Standup{}, err
	}

	if err := s.deps.Standups.Update(ctx, &st); err != nil {
		return models.Standup{}, duplicate(err, "standup for team or trigger")
	}
	s.deps.Cache.InvalidateByPrefix(ctx, standupsCachePrefix)
	s.deps.Cache.InvalidateByPrefix(ctx, teamsCachePrefix)
	return st, nil
}

func (s *StandupService) Get(ctx context.Context, id uint) (models.Standup, error) {
	st, err := s.deps.Standups.GetByID(ctx, id)
	if err != nil {
		return models.Standup{}, notFound(err, ErrStandupNotFound)
	}
	return st, nil
}

func (s *StandupService) Delete(ctx context.Context, id uint) error {
	if err := s.deps.Standups.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrStandupNotFound
		}
		return err
	}
	s.deps.Cache.InvalidateByPrefix(ctx, standupsCachePrefix)
	s.deps.Cache.InvalidateByPrefix(ctx, teamsCachePrefix)
	s.deps.logger().Info("standup deleted", zap.Uint("id", id))
	return nil
}

func (s *StandupService) validate(st models.Standup) error {
	switch {
	case st.Trigger == "":
		return invalid("trigger is required")
	case len(st.Questions) == 0:
		return invalid("at least one question is required")
	case st.PublishChannel == "":
		return invalid("publish_channel is required")
	}
	return nil
}

// render stores the modal built from the current questions on the row.
func (s *StandupService) render(st *models.Standup) error {
	raw, err := slackbot.EncodeModal(slackbot.BuildModal(st.Trigger, st.Name, st.Questions))
	if err != nil {
		return fmt.Errorf("render standup modal: %w", err)
	}
	st.StandupBlocks = raw
	return nil
}
