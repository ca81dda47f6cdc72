package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/standupbot/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate("create user", s.db.WithContext(ctx).Create(u).Error)
}

// Update saves every column of u.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	return translate("update user", s.db.WithContext(ctx).Save(u).Error)
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return u, translate("get user", err)
}

func (s *UserStore) GetBySlackID(ctx context.Context, slackID string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("slack_id = ?", slackID).First(&u).Error
	return u, translate("get user by slack id", err)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, translate("get user by username", err)
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, translate("list users", err)
}

// ListByUsernames returns the users matching any of names; unknown names are ignored.
func (s *UserStore) ListByUsernames(ctx context.Context, names []string) ([]models.User, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("username IN ?", names).Order("id ASC").Find(&users).Error
	return users, translate("list users by username", err)
}

func (s *UserStore) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, translate("list users by id", err)
}

// ListActiveByTeam returns the active members of a team.
func (s *UserStore) ListActiveByTeam(ctx context.Context, teamID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Where("team_members.team_id = ? AND users.is_active = ?", teamID, true).
		Order("users.id ASC").
		Find(&users).Error
	return users, translate("list team users", err)
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, translate("count users", err)
}
