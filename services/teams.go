package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

const teamsCachePrefix = "teams:"

type TeamInput struct {
	Name    string
	Members []string
}

// TeamPatch renames a team and/or replaces its members (by username).
type TeamPatch struct {
	Name    *string
	Members *[]string
}

// TeamView is a team with member usernames and the id of its standup, if any.
type TeamView struct {
	models.Team
	Members   []string `json:"members"`
	StandupID *uint    `json:"standup_id"`
}

type TeamService struct {
	deps Deps
}

func NewTeamService(deps Deps) *TeamService {
	return &TeamService{deps: deps}
}

func (s *TeamService) Create(ctx context.Context, in TeamInput) (TeamView, error) {
	t := models.Team{Name: utils.Sanitize(in.Name)}
	if t.Name == "" {
		return TeamView{}, invalid("name is required")
	}
	members, err := s.resolveMembers(ctx, in.Members)
	if err != nil {
		return TeamView{}, err
	}
	if err := s.deps.Teams.Create(ctx, &t, userIDs(members)); err != nil {
		return TeamView{}, duplicate(err, "team")
	}
	s.invalidate(ctx)
	s.deps.logger().Info("team created", zap.Uint("id", t.ID), zap.String("name", t.Name))
	return TeamView{Team: t, Members: usernames(members)}, nil
}

func (s *TeamService) Update(ctx context.Context, id uint, patch TeamPatch) (TeamView, error) {
	t, err := s.deps.Teams.GetByID(ctx, id)
	if err != nil {
		return TeamView{}, notFound(err, ErrTeamNotFound)
	}
	if patch.Name != nil {
		if t.Name = utils.Sanitize(*patch.Name); t.Name == "" {
			return TeamView{}, invalid("name cannot be empty")
		}
	}
	var memberIDs []uint
	if patch.Members != nil {
		members, err := s.resolveMembers(ctx, *patch.Members)
		if err != nil {
			return TeamView{}, err
		}
		memberIDs = userIDs(members)
	}
	if err := s.deps.Teams.Update(ctx, &t, memberIDs); err != nil {
		return TeamView{}, duplicate(err, "team")
	}
	s.invalidate(ctx)
	return s.view(ctx, t)
}

// Delete removes a team and its memberships. Teams that still own a standup are refused.
func (s *TeamService) Delete(ctx context.Context, id uint) error {
	if _, err := s.deps.Teams.GetByID(ctx, id); err != nil {
		return notFound(err, ErrTeamNotFound)
	}
	_, err := s.deps.Standups.GetByTeam(ctx, id)
	switch {
	case err == nil:
		return ErrTeamInUse
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	if err := s.deps.Teams.Delete(ctx, id); err != nil {
		return notFound(err, ErrTeamNotFound)
	}
	s.invalidate(ctx)
	s.deps.logger().Info("team deleted", zap.Uint("id", id))
	return nil
}

func (s *TeamService) Get(ctx context.Context, name string) (TeamView, error) {
	t, err := s.deps.Teams.GetByName(ctx, name)
	if err != nil {
		return TeamView{}, notFound(err, ErrTeamNotFound)
	}
	return s.view(ctx, t)
}

func (s *TeamService) List(ctx context.Context) ([]TeamView, error) {
	key := teamsCachePrefix + "list"
	var cached []TeamView
	if s.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	teams, err := s.deps.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		v, err := s.view(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	s.deps.Cache.SetJSON(ctx, key, out, 0)
	return out, nil
}

func (s *TeamService) view(ctx context.Context, t models.Team) (TeamView, error) {
	ids, err := s.deps.Teams.MemberIDs(ctx, t.ID)
	if err != nil {
		return TeamView{}, err
	}
	members, err := s.deps.Users.ListByIDs(ctx, ids)
	if err != nil {
		return TeamView{}, err
	}
	v := TeamView{Team: t, Members: usernames(members)}
	st, err := s.deps.Standups.GetByTeam(ctx, t.ID)
	switch {
	case err == nil:
		v.StandupID = &st.ID
	case !errors.Is(err, store.ErrNotFound):
		return TeamView{}, err
	}
	return v, nil
}

func (s *TeamService) resolveMembers(ctx context.Context, names []string) ([]models.User, error) {
	names = uniqueStrings(utils.SanitizeAll(names))
	if len(names) == 0 {
		return nil, nil
	}
	users, err := s.deps.Users.ListByUsernames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(users) != len(names) {
		return nil, ErrUserNotFound
	}
	return users, nil
}

func (s *TeamService) invalidate(ctx context.Context) {
	s.deps.Cache.InvalidateByPrefix(ctx, teamsCachePrefix)
	s.deps.Cache.InvalidateByPrefix(ctx, usersCachePrefix)
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return utils.UniqueUint(ids)
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}
