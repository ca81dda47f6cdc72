package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/standupbot/models"
)

// setupTestDB connects to STANDUPBOT_TEST_DATABASE_URI (a MySQL DSN) and empties every table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("STANDUPBOT_TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("STANDUPBOT_TEST_DATABASE_URI not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("Failed to ping test database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	for _, m := range models.All() {
		require.NoError(t, db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error)
	}
	return db
}

func seedUser(t *testing.T, s *UserStore, slackID, name string, active bool) models.User {
	t.Helper()
	u := models.User{SlackID: slackID, Username: name, IsActive: active}
	require.NoError(t, s.Create(context.Background(), &u))
	return u
}

func TestUserStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	teams := NewTeamStore(db)

	ana := seedUser(t, users, "U1", "ana", true)
	bob := seedUser(t, users, "U2", "bob", false)
	cy := seedUser(t, users, "U3", "cy", true)

	dup := models.User{SlackID: "U1", Username: "other", IsActive: true}
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrDuplicate)

	got, err := users.GetBySlackID(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.False(t, got.IsActive)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	team := models.Team{Name: "eng"}
	require.NoError(t, teams.Create(ctx, &team, []uint{ana.ID, bob.ID, cy.ID}))

	active, err := users.ListActiveByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, []uint{ana.ID, cy.ID}, []uint{active[0].ID, active[1].ID})

	byName, err := users.ListByUsernames(ctx, []string{"cy", "ghost", "ana"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)
}

func TestTeamStoreMembership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	teams := NewTeamStore(db)
	standups := NewStandupStore(db)

	ana := seedUser(t, users, "U1", "ana", true)
	bob := seedUser(t, users, "U2", "bob", true)

	eng := models.Team{Name: "eng"}
	ops := models.Team{Name: "ops"}
	require.NoError(t, teams.Create(ctx, &eng, []uint{ana.ID}))
	require.NoError(t, teams.Create(ctx, &ops, nil))

	require.NoError(t, teams.SetUserTeams(ctx, bob.ID, []uint{eng.ID, ops.ID}))
	ids, err := teams.MemberIDs(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{ana.ID, bob.ID}, ids)

	bobTeams, err := teams.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobTeams, 2)

	for _, tm := range []models.Team{eng, ops} {
		st := models.Standup{TeamID: tm.ID, Name: tm.Name, Trigger: "t-" + tm.Name, Questions: []string{"q"}, IsActive: true, PublishChannel: "C1"}
		require.NoError(t, standups.Create(ctx, &st))
	}
	n, err := standups.CountByTeams(ctx, []uint{eng.ID, ops.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	eng.Name = "engineering"
	require.NoError(t, teams.Update(ctx, &eng, []uint{bob.ID}))
	ids, err = teams.MemberIDs(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	require.NoError(t, teams.Delete(ctx, ops.ID))
	bobTeams, err = teams.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobTeams, 1)
	assert.ErrorIs(t, teams.Delete(ctx, ops.ID), ErrNotFound)
}

func TestStandupStoreTriggerAndFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	standups := NewStandupStore(db)

	jan := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	a := models.Standup{TeamID: 1, Name: "A", Trigger: "a", Questions: []string{"q1", "q2"}, IsActive: true, PublishChannel: "C", CreatedAt: jan}
	b := models.Standup{TeamID: 2, Name: "B", Trigger: "b", Questions: []string{"q"}, IsActive: false, PublishChannel: "C", CreatedAt: feb}
	require.NoError(t, standups.Create(ctx, &a))
	require.NoError(t, standups.Create(ctx, &b))

	got, err := standups.GetByTrigger(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, got.Questions)

	dup := models.Standup{TeamID: 3, Trigger: "a", PublishChannel: "C"}
	assert.ErrorIs(t, standups.Create(ctx, &dup), ErrDuplicate)

	inactive := false
	list, err := standups.List(ctx, StandupFilter{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Trigger)

	list, err = standups.List(ctx, StandupFilter{Range: TimeRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Trigger)

	all, err := standups.List(ctx, StandupFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Trigger, "newest first")

	require.NoError(t, standups.Delete(ctx, a.ID))
	assert.ErrorIs(t, standups.Delete(ctx, a.ID), ErrNotFound)
}

func TestSubmissionStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionStore(db)

	day := TimeRange{From: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)}
	at := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }

	rows := []models.Submission{
		{UserID: 1, StandupID: 1, Answers: []models.Answer{{Question: "q", Answer: "old"}}, CreatedAt: at(14, 10)},
		{UserID: 1, StandupID: 1, Answers: []models.Answer{{Question: "q", Answer: "today"}}, CreatedAt: at(15, 9)},
		{UserID: 1, StandupID: 2, Answers: []models.Answer{{Question: "q", Answer: "other standup"}}, CreatedAt: at(15, 11)},
		{UserID: 2, StandupID: 1, Answers: []models.Answer{{Question: "q", Answer: "bob"}}, CreatedAt: at(15, 12)},
	}
	for i := range rows {
		require.NoError(t, subs.Create(ctx, &rows[i]))
	}

	found, err := subs.FindForDay(ctx, 1, 1, day)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, found.ID)

	_, err = subs.FindForDay(ctx, 3, 1, day)
	assert.True(t, errors.Is(err, ErrNotFound))

	found.Answers = []models.Answer{{Question: "q", Answer: "edited"}}
	require.NoError(t, subs.UpdateAnswers(ctx, &found))
	again, err := subs.FindForDay(ctx, 1, 1, day)
	require.NoError(t, err)
	assert.Equal(t, "edited", again.Answers[0].Answer)
	assert.True(t, again.CreatedAt.Equal(at(15, 9)))

	n, err := subs.CountByUser(ctx, 1, day)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	forStandup, err := subs.ListForStandup(ctx, 1, []uint{1, 2}, day)
	require.NoError(t, err)
	assert.Len(t, forStandup, 2)

	list, err := subs.List(ctx, SubmissionFilter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, rows[2].ID, list[0].ID, "newest first")

	deleted, err := subs.DeleteBefore(ctx, day.From)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestAuthStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	auth := NewAuthStore(db)

	key := models.Auth{Name: "cron", KeyID: "0b6f6a3e-4d3c-4a83-9a7d-3f0f2b9d6f11", KeyHash: "hash", IsActive: true}
	require.NoError(t, auth.Create(ctx, &key))

	got, err := auth.GetByKeyID(ctx, key.KeyID)
	require.NoError(t, err)
	assert.Equal(t, "cron", got.Name)

	_, err = auth.GetByKeyID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
