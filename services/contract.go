package services

import (
	"context"
	"time"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/store"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetBySlackID(ctx context.Context, slackID string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByUsernames(ctx context.Context, names []string) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	ListActiveByTeam(ctx context.Context, teamID uint) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type TeamRepository interface {
	Create(ctx context.Context, t *models.Team, memberIDs []uint) error
	Update(ctx context.Context, t *models.Team, memberIDs []uint) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Team, error)
	GetByName(ctx context.Context, name string) (models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	ListByNames(ctx context.Context, names []string) ([]models.Team, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Team, error)
	MemberIDs(ctx context.Context, teamID uint) ([]uint, error)
	SetUserTeams(ctx context.Context, userID uint, teamIDs []uint) error
	Count(ctx context.Context) (int64, error)
}

type StandupRepository interface {
	Create(ctx context.Context, s *models.Standup) error
	Update(ctx context.Context, s *models.Standup) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Standup, error)
	GetByTrigger(ctx context.Context, trigger string) (models.Standup, error)
	GetByTeam(ctx context.Context, teamID uint) (models.Standup, error)
	List(ctx context.Context, f store.StandupFilter) ([]models.Standup, error)
	CountByTeams(ctx context.Context, teamIDs []uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	UpdateAnswers(ctx context.Context, s *models.Submission) error
	FindForDay(ctx context.Context, userID, standupID uint, day store.TimeRange) (models.Submission, error)
	ListForStandup(ctx context.Context, standupID uint, userIDs []uint, r store.TimeRange) ([]models.Submission, error)
	CountByUser(ctx context.Context, userID uint, r store.TimeRange) (int64, error)
	List(ctx context.Context, f store.SubmissionFilter) ([]models.Submission, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
	Count(ctx context.Context, r store.TimeRange) (int64, error)
}

type AuthRepository interface {
	Create(ctx context.Context, a *models.Auth) error
	GetByKeyID(ctx context.Context, keyID string) (models.Auth, error)
}
