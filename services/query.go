package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

// DefaultQueryLimit caps unbounded listings.
const DefaultQueryLimit = 50

// DateFilter holds the raw start_date / end_date query values.
type DateFilter struct {
	StartDate string
	EndDate   string
}

// QueryService answers the read side of the admin API.
type QueryService struct {
	deps Deps
}

func NewQueryService(deps Deps) *QueryService {
	return &QueryService{deps: deps}
}

// ParseDateRange turns inclusive yyyy-mm-dd bounds into a created_at range. Either bound may be empty.
func (q *QueryService) ParseDateRange(f DateFilter) (store.TimeRange, error) {
	var r store.TimeRange
	loc := q.deps.Clock.Location()
	if s := strings.TrimSpace(f.StartDate); s != "" {
		d, err := utils.ParseDay(s, loc)
		if err != nil {
			return store.TimeRange{}, ErrInvalidDate
		}
		r.From = d
	}
	if s := strings.TrimSpace(f.EndDate); s != "" {
		d, err := utils.ParseDay(s, loc)
		if err != nil {
			return store.TimeRange{}, ErrInvalidDate
		}
		r.To = d.AddDate(0, 0, 1)
	}
	return r, nil
}

// Submissions lists submissions newest first, optionally for one user (database id).
// Without date bounds only the most recent DefaultQueryLimit rows are returned.
func (q *QueryService) Submissions(ctx context.Context, userID uint, f DateFilter) ([]models.Submission, error) {
	r, err := q.ParseDateRange(f)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		if _, err := q.deps.Users.GetByID(ctx, userID); err != nil {
			return nil, notFound(err, ErrUserNotFound)
		}
	}
	filter := store.SubmissionFilter{UserID: userID, Range: r}
	if r.IsZero() {
		filter.Limit = DefaultQueryLimit
	}
	subs, err := q.deps.Submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

// Standups lists standups newest first filtered by status ("active", "inactive" or "all") and creation date.
func (q *QueryService) Standups(ctx context.Context, status string, f DateFilter) ([]models.Standup, error) {
	r, err := q.ParseDateRange(f)
	if err != nil {
		return nil, err
	}
	filter := store.StandupFilter{Range: r}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	default:
		return nil, invalid("status must be one of active, inactive, all")
	}
	if r.IsZero() {
		filter.Limit = DefaultQueryLimit
	}

	key := fmt.Sprintf("standups:list:%s:%s:%s", strings.ToLower(status), f.StartDate, f.EndDate)
	var cached []models.Standup
	if q.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	list, err := q.deps.Standups.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Standup{}
	}
	q.deps.Cache.SetJSON(ctx, key, list, 0)
	return list, nil
}
