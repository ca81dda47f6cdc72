package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/standupbot/models"
)

// StandupFilter selects standups for listing. A nil Active means both states.
type StandupFilter struct {
	Active *bool
	Range  TimeRange
	Limit  int
}

type StandupStore struct {
	db *gorm.DB
}

func NewStandupStore(db *gorm.DB) *StandupStore {
	return &StandupStore{db: db}
}

func (s *StandupStore) Create(ctx context.Context, st *models.Standup) error {
	return translate("create standup", s.db.WithContext(ctx).Create(st).Error)
}

func (s *StandupStore) Update(ctx context.Context, st *models.Standup) error {
	return translate("update standup", s.db.WithContext(ctx).Save(st).Error)
}

func (s *StandupStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Standup{}, id)
	if res.Error != nil {
		return translate("delete standup", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *StandupStore) GetByID(ctx context.Context, id uint) (models.Standup, error) {
	var st models.Standup
	err := s.db.WithContext(ctx).First(&st, id).Error
	return st, translate("get standup", err)
}

// GetByTrigger looks a standup up by the callback id of its modal.
func (s *StandupStore) GetByTrigger(ctx context.Context, trigger string) (models.Standup, error) {
	var st models.Standup
	// trigger is a reserved word in MySQL; map conditions get quoted.
	err := s.db.WithContext(ctx).Where(map[string]interface{}{"trigger": trigger}).First(&st).Error
	return st, translate("get standup by trigger", err)
}

func (s *StandupStore) GetByTeam(ctx context.Context, teamID uint) (models.Standup, error) {
	var st models.Standup
	err := s.db.WithContext(ctx).Where("team_id = ?", teamID).First(&st).Error
	return st, translate("get standup by team", err)
}

// List returns standups newest first.
func (s *StandupStore) List(ctx context.Context, f StandupFilter) ([]models.Standup, error) {
	q := s.db.WithContext(ctx).Model(&models.Standup{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = f.Range.apply(q, "created_at")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Standup
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, translate("list standups", err)
}

// CountByTeams counts the distinct standups owned by any of teamIDs.
func (s *StandupStore) CountByTeams(ctx context.Context, teamIDs []uint) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Standup{}).Where("team_id IN ?", teamIDs).Distinct("id").Count(&n).Error
	return n, translate("count standups", err)
}

func (s *StandupStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Standup{}).Count(&n).Error
	return n, translate("count standups", err)
}
