package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

// Deps carries the collaborators shared by every service.
type Deps struct {
	Users       UserRepository
	Teams       TeamRepository
	Standups    StandupRepository
	Submissions SubmissionRepository
	Auth        AuthRepository
	Slack       slackbot.Messenger
	Cache       *utils.Cache
	Clock       Clock
	Log         *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Clock decides what "today" means for submissions.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a Clock in loc. A nil now uses time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return Clock{now: now, loc: loc}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.location())
	}
	return c.now().In(c.location())
}

func (c Clock) Location() *time.Location {
	return c.location()
}

// Today is [midnight, next midnight) in the clock's location.
func (c Clock) Today() store.TimeRange {
	start, end := utils.DayBounds(c.Now(), c.location())
	return store.TimeRange{From: start, To: end}
}

func (c Clock) location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}
