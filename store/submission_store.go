package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/standupbot/models"
)

// SubmissionFilter selects submissions for listing. A zero UserID means all users.
type SubmissionFilter struct {
	UserID uint
	Range  TimeRange
	Limit  int
}

type SubmissionStore struct {
	db *gorm.DB
}

func NewSubmissionStore(db *gorm.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	return translate("create submission", s.db.WithContext(ctx).Create(sub).Error)
}

// UpdateAnswers overwrites the answers of an existing submission, keeping created_at.
func (s *SubmissionStore) UpdateAnswers(ctx context.Context, sub *models.Submission) error {
	res := s.db.WithContext(ctx).Model(sub).Select("answers", "updated_at").Updates(sub)
	if res.Error != nil {
		return translate("update submission", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindForDay returns the newest submission by user for standup created inside day.
func (s *SubmissionStore) FindForDay(ctx context.Context, userID, standupID uint, day TimeRange) (models.Submission, error) {
	var sub models.Submission
	q := s.db.WithContext(ctx).Where("user_id = ? AND standup_id = ?", userID, standupID)
	err := day.apply(q, "created_at").Order("created_at DESC").First(&sub).Error
	return sub, translate("find submission", err)
}

// ListForStandup returns submissions against standupID from userIDs inside r, oldest first.
func (s *SubmissionStore) ListForStandup(ctx context.Context, standupID uint, userIDs []uint, r TimeRange) ([]models.Submission, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var subs []models.Submission
	q := s.db.WithContext(ctx).Where("standup_id = ? AND user_id IN ?", standupID, userIDs)
	err := r.apply(q, "created_at").Order("created_at ASC").Order("id ASC").Find(&subs).Error
	return subs, translate("list standup submissions", err)
}

// CountByUser counts submissions by userID inside r across all standups.
func (s *SubmissionStore) CountByUser(ctx context.Context, userID uint, r TimeRange) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Submission{}).Where("user_id = ?", userID)
	err := r.apply(q, "created_at").Count(&n).Error
	return n, translate("count user submissions", err)
}

// List returns submissions newest first.
func (s *SubmissionStore) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	q := s.db.WithContext(ctx).Model(&models.Submission{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	q = f.Range.apply(q, "created_at")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var subs []models.Submission
	err := q.Order("created_at DESC").Order("id DESC").Find(&subs).Error
	return subs, translate("list submissions", err)
}

// DeleteBefore removes submissions created before t and returns how many were deleted.
func (s *SubmissionStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", t).Delete(&models.Submission{})
	return res.RowsAffected, translate("delete submissions", res.Error)
}

func (s *SubmissionStore) Count(ctx context.Context, r TimeRange) (int64, error) {
	var n int64
	err := r.apply(s.db.WithContext(ctx).Model(&models.Submission{}), "created_at").Count(&n).Error
	return n, translate("count submissions", err)
}
