package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/standupbot/models"
)

type TeamStore struct {
	db *gorm.DB
}

func NewTeamStore(db *gorm.DB) *TeamStore {
	return &TeamStore{db: db}
}

// Create inserts t together with its memberships.
func (s *TeamStore) Create(ctx context.Context, t *models.Team, memberIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return insertMembers(tx, t.ID, memberIDs)
	})
	return translate("create team", err)
}

// Update saves t. A non-nil memberIDs replaces the membership list.
func (s *TeamStore) Update(ctx context.Context, t *models.Team, memberIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		if memberIDs == nil {
			return nil
		}
		if err := tx.Where("team_id = ?", t.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return insertMembers(tx, t.ID, memberIDs)
	})
	return translate("update team", err)
}

// Delete removes the team and its memberships.
func (s *TeamStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete team", err)
}

func (s *TeamStore) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var t models.Team
	err := s.db.WithContext(ctx).First(&t, id).Error
	return t, translate("get team", err)
}

func (s *TeamStore) GetByName(ctx context.Context, name string) (models.Team, error) {
	var t models.Team
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	return t, translate("get team by name", err)
}

func (s *TeamStore) List(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).Order("id ASC").Find(&teams).Error
	return teams, translate("list teams", err)
}

func (s *TeamStore) ListByNames(ctx context.Context, names []string) ([]models.Team, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var teams []models.Team
	err := s.db.WithContext(ctx).Where("name IN ?", names).Order("id ASC").Find(&teams).Error
	return teams, translate("list teams by name", err)
}

// ListByUser returns the teams userID belongs to, oldest first.
func (s *TeamStore) ListByUser(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.id ASC").
		Find(&teams).Error
	return teams, translate("list user teams", err)
}

func (s *TeamStore) MemberIDs(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).Order("user_id ASC").Pluck("user_id", &ids).Error
	return ids, translate("list team members", err)
}

// SetUserTeams replaces the memberships of userID with teamIDs.
func (s *TeamStore) SetUserTeams(ctx context.Context, userID uint, teamIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		rows := make([]models.TeamMember, 0, len(teamIDs))
		for _, id := range teamIDs {
			rows = append(rows, models.TeamMember{TeamID: id, UserID: userID})
		}
		return tx.Create(&rows).Error
	})
	return translate("set user teams", err)
}

func (s *TeamStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Team{}).Count(&n).Error
	return n, translate("count teams", err)
}

func insertMembers(tx *gorm.DB, teamID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.TeamMember, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.TeamMember{TeamID: teamID, UserID: id})
	}
	return tx.Create(&rows).Error
}
