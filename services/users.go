package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/utils"
)

const usersCachePrefix = "users:"

// UserInput creates a user. IsActive defaults to true.
type UserInput struct {
	SlackID  string
	Username string
	IsActive *bool
	Teams    []string
}

// UserPatch updates a user; nil fields are left alone and a non-nil Teams replaces memberships.
type UserPatch struct {
	SlackID  *string
	Username *string
	IsActive *bool
	Teams    *[]string
}

// UserView is a user with the names of its teams.
type UserView struct {
	models.User
	Teams []string `json:"teams"`
}

type UserService struct {
	deps Deps
}

func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps}
}

func (s *UserService) Create(ctx context.Context, in UserInput) (UserView, error) {
	u := models.User{
		SlackID:  utils.Sanitize(in.SlackID),
		Username: utils.Sanitize(in.Username),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if u.SlackID == "" || u.Username == "" {
		return UserView{}, invalid("user_id and username are required")
	}
	teams, err := s.resolveTeams(ctx, in.Teams)
	if err != nil {
		return UserView{}, err
	}

	if err := s.deps.Users.Create(ctx, &u); err != nil {
		return UserView{}, duplicate(err, "user")
	}
	if err := s.deps.Teams.SetUserTeams(ctx, u.ID, teamIDs(teams)); err != nil {
		return UserView{}, err
	}
	s.invalidate(ctx)
	s.deps.logger().Info("user created", zap.Uint("id", u.ID), zap.String("slack_id", u.SlackID))
	return UserView{User: u, Teams: teamNames(teams)}, nil
}

func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch) (UserView, error) {
	u, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return UserView{}, notFound(err, ErrUserNotFound)
	}
	if patch.SlackID != nil {
		if u.SlackID = utils.Sanitize(*patch.SlackID); u.SlackID == "" {
			return UserView{}, invalid("user_id cannot be empty")
		}
	}
	if patch.Username != nil {
		if u.Username = utils.Sanitize(*patch.Username); u.Username == "" {
			return UserView{}, invalid("username cannot be empty")
		}
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}

	var teams []models.Team
	if patch.Teams != nil {
		if teams, err = s.resolveTeams(ctx, *patch.Teams); err != nil {
			return UserView{}, err
		}
	}

	if err := s.deps.Users.Update(ctx, &u); err != nil {
		return UserView{}, duplicate(err, "user")
	}
	if patch.Teams != nil {
		if err := s.deps.Teams.SetUserTeams(ctx, u.ID, teamIDs(teams)); err != nil {
			return UserView{}, err
		}
	} else if teams, err = s.deps.Teams.ListByUser(ctx, u.ID); err != nil {
		return UserView{}, err
	}
	s.invalidate(ctx)
	return UserView{User: u, Teams: teamNames(teams)}, nil
}

func (s *UserService) Get(ctx context.Context, username string) (UserView, error) {
	u, err := s.deps.Users.GetByUsername(ctx, username)
	if err != nil {
		return UserView{}, notFound(err, ErrUserNotFound)
	}
	return s.view(ctx, u)
}

func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	key := usersCachePrefix + "list"
	var cached []UserView
	if s.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	users, err := s.deps.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		v, err := s.view(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	s.deps.Cache.SetJSON(ctx, key, out, 0)
	return out, nil
}

func (s *UserService) view(ctx context.Context, u models.User) (UserView, error) {
	teams, err := s.deps.Teams.ListByUser(ctx, u.ID)
	if err != nil {
		return UserView{}, err
	}
	return UserView{User: u, Teams: teamNames(teams)}, nil
}

// resolveTeams loads teams by name and fails when any name is unknown.
func (s *UserService) resolveTeams(ctx context.Context, names []string) ([]models.Team, error) {
	names = uniqueStrings(utils.SanitizeAll(names))
	if len(names) == 0 {
		return nil, nil
	}
	teams, err := s.deps.Teams.ListByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(teams) != len(names) {
		return nil, ErrTeamNotFound
	}
	return teams, nil
}

func (s *UserService) invalidate(ctx context.Context) {
	s.deps.Cache.InvalidateByPrefix(ctx, usersCachePrefix)
	s.deps.Cache.InvalidateByPrefix(ctx, teamsCachePrefix)
}

func teamIDs(teams []models.Team) []uint {
	ids := make([]uint, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

func teamNames(teams []models.Team) []string {
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}
	return names
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
