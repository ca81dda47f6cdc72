package services

import "context"

// Stats are the headline counts shown on the admin stats endpoint.
type Stats struct {
	Users            int64 `json:"users"`
	Teams            int64 `json:"teams"`
	Standups         int64 `json:"standups"`
	SubmissionsToday int64 `json:"submissions_today"`
}

type StatsService struct {
	deps Deps
}

func NewStatsService(deps Deps) *StatsService {
	return &StatsService{deps: deps}
}

func (s *StatsService) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error
	if out.Users, err = s.deps.Users.Count(ctx); err != nil {
		return Stats{}, err
	}
	if out.Teams, err = s.deps.Teams.Count(ctx); err != nil {
		return Stats{}, err
	}
	if out.Standups, err = s.deps.Standups.Count(ctx); err != nil {
		return Stats{}, err
	}
	if out.SubmissionsToday, err = s.deps.Submissions.Count(ctx, s.deps.Clock.Today()); err != nil {
		return Stats{}, err
	}
	return out, nil
}
