package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
)

// memDB is an in-memory stand-in for the gorm stores.
type memDB struct {
	mu          sync.Mutex
	nextID      uint
	users       map[uint]models.User
	teams       map[uint]models.Team
	members     map[uint]map[uint]bool // team -> users
	standups    map[uint]models.Standup
	submissions map[uint]models.Submission
	keys        map[string]models.Auth
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[uint]models.User{},
		teams:       map[uint]models.Team{},
		members:     map[uint]map[uint]bool{},
		standups:    map[uint]models.Standup{},
		submissions: map[uint]models.Submission{},
		keys:        map[string]models.Auth{},
	}
}

func (m *memDB) id() uint {
	m.nextID++
	return m.nextID
}

func inRange(t time.Time, r store.TimeRange) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

type memUsers struct{ *memDB }

func (m memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.users {
		if o.SlackID == u.SlackID || o.Username == u.Username {
			return store.ErrDuplicate
		}
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.users {
		if o.ID != u.ID && (o.SlackID == u.SlackID || o.Username == u.Username) {
			return store.ErrDuplicate
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) GetByID(_ context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return u, store.ErrNotFound
	}
	return u, nil
}

func (m memUsers) find(match func(models.User) bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.sorted() {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m memUsers) sorted() []models.User {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memUsers) GetBySlackID(_ context.Context, slackID string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.SlackID == slackID })
}

func (m memUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username })
}

func (m memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m memUsers) filter(match func(models.User) bool) []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.sorted() {
		if match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (m memUsers) ListByUsernames(_ context.Context, names []string) ([]models.User, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	return m.filter(func(u models.User) bool { return want[u.Username] }), nil
}

func (m memUsers) ListByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	want := map[uint]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return m.filter(func(u models.User) bool { return want[u.ID] }), nil
}

func (m memUsers) ListActiveByTeam(_ context.Context, teamID uint) ([]models.User, error) {
	m.mu.Lock()
	members := m.members[teamID]
	m.mu.Unlock()
	return m.filter(func(u models.User) bool { return u.IsActive && members[u.ID] }), nil
}

func (m memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type memTeams struct{ *memDB }

func (m memTeams) Create(_ context.Context, t *models.Team, memberIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.teams {
		if o.Name == t.Name {
			return store.ErrDuplicate
		}
	}
	t.ID = m.id()
	m.teams[t.ID] = *t
	m.members[t.ID] = map[uint]bool{}
	for _, id := range memberIDs {
		m.members[t.ID][id] = true
	}
	return nil
}

func (m memTeams) Update(_ context.Context, t *models.Team, memberIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.teams {
		if o.ID != t.ID && o.Name == t.Name {
			return store.ErrDuplicate
		}
	}
	m.teams[t.ID] = *t
	if memberIDs != nil {
		m.members[t.ID] = map[uint]bool{}
		for _, id := range memberIDs {
			m.members[t.ID][id] = true
		}
	}
	return nil
}

func (m memTeams) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.teams, id)
	delete(m.members, id)
	return nil
}

func (m memTeams) GetByID(_ context.Context, id uint) (models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return t, store.ErrNotFound
	}
	return t, nil
}

func (m memTeams) sorted(match func(models.Team) bool) []models.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Team{}
	for _, t := range m.teams {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memTeams) GetByName(_ context.Context, name string) (models.Team, error) {
	found := m.sorted(func(t models.Team) bool { return t.Name == name })
	if len(found) == 0 {
		return models.Team{}, store.ErrNotFound
	}
	return found[0], nil
}

func (m memTeams) List(context.Context) ([]models.Team, error) {
	return m.sorted(func(models.Team) bool { return true }), nil
}

func (m memTeams) ListByNames(_ context.Context, names []string) ([]models.Team, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	return m.sorted(func(t models.Team) bool { return want[t.Name] }), nil
}

func (m memTeams) ListByUser(_ context.Context, userID uint) ([]models.Team, error) {
	m.mu.Lock()
	in := map[uint]bool{}
	for teamID, users := range m.members {
		if users[userID] {
			in[teamID] = true
		}
	}
	m.mu.Unlock()
	return m.sorted(func(t models.Team) bool { return in[t.ID] }), nil
}

func (m memTeams) MemberIDs(_ context.Context, teamID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []uint{}
	for id := range m.members[teamID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m memTeams) SetUserTeams(_ context.Context, userID uint, teamIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, users := range m.members {
		delete(users, userID)
	}
	for _, id := range teamIDs {
		if m.members[id] == nil {
			m.members[id] = map[uint]bool{}
		}
		m.members[id][userID] = true
	}
	return nil
}

func (m memTeams) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.teams)), nil
}

type memStandups struct{ *memDB }

func (m memStandups) conflict(s *models.Standup) bool {
	for _, o := range m.standups {
		if o.ID != s.ID && (o.TeamID == s.TeamID || o.Trigger == s.Trigger) {
			return true
		}
	}
	return false
}

func (m memStandups) Create(_ context.Context, s *models.Standup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict(s) {
		return store.ErrDuplicate
	}
	s.ID = m.id()
	m.standups[s.ID] = *s
	return nil
}

func (m memStandups) Update(_ context.Context, s *models.Standup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict(s) {
		return store.ErrDuplicate
	}
	m.standups[s.ID] = *s
	return nil
}

func (m memStandups) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.standups[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.standups, id)
	return nil
}

func (m memStandups) GetByID(_ context.Context, id uint) (models.Standup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.standups[id]
	if !ok {
		return s, store.ErrNotFound
	}
	return s, nil
}

func (m memStandups) first(match func(models.Standup) bool) (models.Standup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.standups {
		if match(s) {
			return s, nil
		}
	}
	return models.Standup{}, store.ErrNotFound
}

func (m memStandups) GetByTrigger(_ context.Context, trigger string) (models.Standup, error) {
	return m.first(func(s models.Standup) bool { return s.Trigger == trigger })
}

func (m memStandups) GetByTeam(_ context.Context, teamID uint) (models.Standup, error) {
	return m.first(func(s models.Standup) bool { return s.TeamID == teamID })
}

func (m memStandups) List(_ context.Context, f store.StandupFilter) ([]models.Standup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Standup{}
	for _, s := range m.standups {
		if f.Active != nil && s.IsActive != *f.Active {
			continue
		}
		if !inRange(s.CreatedAt, f.Range) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m memStandups) CountByTeams(_ context.Context, teamIDs []uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := map[uint]bool{}
	for _, id := range teamIDs {
		in[id] = true
	}
	var n int64
	for _, s := range m.standups {
		if in[s.TeamID] {
			n++
		}
	}
	return n, nil
}

func (m memStandups) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.standups)), nil
}

type memSubmissions struct{ *memDB }

func (m memSubmissions) Create(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.submissions[s.ID] = *s
	return nil
}

func (m memSubmissions) UpdateAnswers(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.submissions[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Answers = s.Answers
	m.submissions[s.ID] = cur
	return nil
}

func (m memSubmissions) sorted(match func(models.Submission) bool, newestFirst bool) []models.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Submission{}
	for _, s := range m.submissions {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m memSubmissions) FindForDay(_ context.Context, userID, standupID uint, day store.TimeRange) (models.Submission, error) {
	found := m.sorted(func(s models.Submission) bool {
		return s.UserID == userID && s.StandupID == standupID && inRange(s.CreatedAt, day)
	}, true)
	if len(found) == 0 {
		return models.Submission{}, store.ErrNotFound
	}
	return found[0], nil
}

func (m memSubmissions) ListForStandup(_ context.Context, standupID uint, userIDs []uint, r store.TimeRange) ([]models.Submission, error) {
	in := map[uint]bool{}
	for _, id := range userIDs {
		in[id] = true
	}
	return m.sorted(func(s models.Submission) bool {
		return s.StandupID == standupID && in[s.UserID] && inRange(s.CreatedAt, r)
	}, false), nil
}

func (m memSubmissions) CountByUser(_ context.Context, userID uint, r store.TimeRange) (int64, error) {
	return int64(len(m.sorted(func(s models.Submission) bool {
		return s.UserID == userID && inRange(s.CreatedAt, r)
	}, false))), nil
}

func (m memSubmissions) List(_ context.Context, f store.SubmissionFilter) ([]models.Submission, error) {
	out := m.sorted(func(s models.Submission) bool {
		return (f.UserID == 0 || s.UserID == f.UserID) && inRange(s.CreatedAt, f.Range)
	}, true)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m memSubmissions) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.submissions {
		if s.CreatedAt.Before(t) {
			delete(m.submissions, id)
			n++
		}
	}
	return n, nil
}

func (m memSubmissions) Count(_ context.Context, r store.TimeRange) (int64, error) {
	return int64(len(m.sorted(func(s models.Submission) bool { return inRange(s.CreatedAt, r) }, false))), nil
}

type memAuth struct{ *memDB }

func (m memAuth) Create(_ context.Context, a *models.Auth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	m.keys[a.KeyID] = *a
	return nil
}

func (m memAuth) GetByKeyID(_ context.Context, keyID string) (models.Auth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.keys[keyID]
	if !ok {
		return a, store.ErrNotFound
	}
	return a, nil
}

// ---------- fake Slack ----------

type sentMessage struct {
	Channel string
	Msg     slackbot.Message
}

type openedView struct {
	TriggerID string
	View      slack.ModalViewRequest
}

type fakeSlack struct {
	mu     sync.Mutex
	sent   []sentMessage
	opened []openedView
	nextTS int

	// failOn returns an error for the n-th PostMessage call (0-based) when set.
	failOn  map[int]error
	calls   int
	viewErr error
}

func (f *fakeSlack) PostMessage(_ context.Context, channel string, msg slackbot.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	if err, ok := f.failOn[call]; ok {
		return "", err
	}
	f.nextTS++
	f.sent = append(f.sent, sentMessage{Channel: channel, Msg: msg})
	return tsFor(f.nextTS), nil
}

func (f *fakeSlack) OpenView(_ context.Context, triggerID string, view slack.ModalViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewErr != nil {
		return f.viewErr
	}
	f.opened = append(f.opened, openedView{TriggerID: triggerID, View: view})
	return nil
}

func tsFor(n int) string {
	return time.Unix(1700000000+int64(n), 0).Format("20060102150405") + ".000100"
}

func slackErr(code string) error {
	return slack.SlackErrorResponse{Err: code}
}

// ---------- fixture ----------

type fixture struct {
	db    *memDB
	slack *fakeSlack
	now   time.Time
	deps  Deps
}

func newFixture() *fixture {
	f := &fixture{
		db:    newMemDB(),
		slack: &fakeSlack{failOn: map[int]error{}},
		now:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	f.deps = Deps{
		Users:       memUsers{f.db},
		Teams:       memTeams{f.db},
		Standups:    memStandups{f.db},
		Submissions: memSubmissions{f.db},
		Auth:        memAuth{f.db},
		Slack:       f.slack,
		Clock:       NewClock(time.UTC, func() time.Time { return f.now }),
	}
	return f
}

func (f *fixture) user(slackID, name string, active bool, teams ...models.Team) models.User {
	u := models.User{SlackID: slackID, Username: name, IsActive: active}
	if err := f.deps.Users.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	ids := make([]uint, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	if err := f.deps.Teams.SetUserTeams(context.Background(), u.ID, ids); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) team(name string) models.Team {
	t := models.Team{Name: name}
	if err := f.deps.Teams.Create(context.Background(), &t, nil); err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) standup(team models.Team, trigger string, questions ...string) models.Standup {
	s := models.Standup{TeamID: team.ID, Name: team.Name, Trigger: trigger, Questions: questions, IsActive: true, PublishChannel: "C-" + team.Name, CreatedAt: f.now}
	if err := f.deps.Standups.Create(context.Background(), &s); err != nil {
		panic(err)
	}
	return s
}

func (f *fixture) submission(user models.User, st models.Standup, at time.Time, answers ...string) models.Submission {
	s := models.Submission{UserID: user.ID, StandupID: st.ID, CreatedAt: at}
	for i, a := range answers {
		s.Answers = append(s.Answers, models.Answer{Question: st.Questions[i], Answer: a})
	}
	if err := f.deps.Submissions.Create(context.Background(), &s); err != nil {
		panic(err)
	}
	return s
}

func (f *fixture) submissionCount() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.submissions)
}

var errBoom = errors.New("boom")
