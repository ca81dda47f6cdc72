package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

type stubPublisher struct {
	res services.PublishResult
	err error
}

func (s stubPublisher) Publish(context.Context, string) (services.PublishResult, error) {
	return s.res, s.err
}

type stubNotifier struct {
	res services.NotifyResult
	err error
}

func (s stubNotifier) Notify(context.Context, string) (services.NotifyResult, error) {
	return s.res, s.err
}

type stubStandups struct {
	created services.StandupInput
	patched services.StandupPatch
	deleted uint
	err     error
	status  string
	filter  services.DateFilter
	listErr error
}

func (s *stubStandups) Create(_ context.Context, in services.StandupInput) (models.Standup, error) {
	s.created = in
	return models.Standup{ID: 1, Trigger: in.Trigger}, s.err
}

func (s *stubStandups) Update(_ context.Context, id uint, patch services.StandupPatch) (models.Standup, error) {
	s.patched = patch
	return models.Standup{ID: id}, s.err
}

func (s *stubStandups) Get(_ context.Context, id uint) (models.Standup, error) {
	return models.Standup{ID: id, Trigger: "daily"}, s.err
}

func (s *stubStandups) Delete(_ context.Context, id uint) error {
	s.deleted = id
	return s.err
}

func (s *stubStandups) Standups(_ context.Context, status string, f services.DateFilter) ([]models.Standup, error) {
	s.status, s.filter = status, f
	return []models.Standup{{ID: 2}}, s.listErr
}

func standupRouter(p Publisher, n Notifier, st *stubStandups) *gin.Engine {
	c := NewStandupController(p, n, st, st, zap.NewNop())
	r := gin.New()
	r.GET("/slack/publish_standup/:team_name/", c.Publish)
	r.GET("/api/notify_users/:team_name/", c.Notify)
	r.POST("/api/add_standup/", c.Create)
	r.PUT("/api/update_standup/:id/", c.Update)
	r.GET("/api/get_standup/:id/", c.Get)
	r.GET("/api/get_standups/", c.List)
	r.DELETE("/api/delete_standup/:id/", c.Delete)
	return r
}

func TestPublishResponses(t *testing.T) {
	ok := services.PublishResult{Team: "eng", HeaderTS: "1.0", RepliesPosted: 2, Missing: []string{"U2"}}
	cases := []struct {
		name    string
		pub     stubPublisher
		status  int
		code    int
		message string
	}{
		{"success", stubPublisher{res: ok}, http.StatusOK, utils.CodeOK, "success"},
		{"unknown team", stubPublisher{err: services.ErrTeamNotFound}, http.StatusNotFound, utils.CodeNotFound, "team not found"},
		{"no standup", stubPublisher{err: services.ErrStandupNotFound}, http.StatusNotFound, utils.CodeNotFound, "standup not found"},
		{"slack failure", stubPublisher{res: ok, err: platformErr("channel_not_found")}, http.StatusOK, utils.CodePlatform, "Failed due to channel_not_found"},
		{"storage failure", stubPublisher{err: errors.New("db down")}, http.StatusInternalServerError, utils.CodeInternal, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performJSON(standupRouter(tc.pub, stubNotifier{}, &stubStandups{}), http.MethodGet, "/slack/publish_standup/eng/", "")
			assert.Equal(t, tc.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, tc.code, env.Code)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestPublishReportsPartialResult(t *testing.T) {
	pub := stubPublisher{
		res: services.PublishResult{HeaderTS: "1.0", RepliesPosted: 1, Failures: []services.SendFailure{{Target: "C1", Code: "ratelimited"}}},
		err: platformErr("ratelimited"),
	}
	w := performJSON(standupRouter(pub, stubNotifier{}, &stubStandups{}), http.MethodGet, "/slack/publish_standup/eng/", "")
	env := decode(t, w)

	var res services.PublishResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "1.0", res.HeaderTS)
	assert.Equal(t, 1, res.RepliesPosted)
	assert.Len(t, res.Failures, 1)
}

func TestNotifyResponses(t *testing.T) {
	n := stubNotifier{res: services.NotifyResult{Team: "eng", Checked: 3, Notified: []string{"U1"}}}
	w := performJSON(standupRouter(stubPublisher{}, n, &stubStandups{}), http.MethodGet, "/api/notify_users/eng/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res services.NotifyResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, []string{"U1"}, res.Notified)

	w = performJSON(standupRouter(stubPublisher{}, stubNotifier{err: services.ErrTeamNotFound}, &stubStandups{}), http.MethodGet, "/api/notify_users/nope/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStandupCreate(t *testing.T) {
	st := &stubStandups{}
	r := standupRouter(stubPublisher{}, stubNotifier{}, st)

	w := performJSON(r, http.MethodPost, "/api/add_standup/",
		`{"team":"eng","trigger":"daily","questions":["Yesterday?","Today?"],"publish_channel":"C1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "eng", st.created.Team)
	assert.Equal(t, []string{"Yesterday?", "Today?"}, st.created.Questions)
	assert.Nil(t, st.created.IsActive)

	w = performJSON(r, http.MethodPost, "/api/add_standup/", `{"team":"eng","trigger":"daily","questions":[],"publish_channel":"C1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	st.err = services.ErrDuplicate
	w = performJSON(r, http.MethodPost, "/api/add_standup/",
		`{"team":"eng","trigger":"daily","questions":["Q"],"publish_channel":"C1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStandupUpdateGetDelete(t *testing.T) {
	st := &stubStandups{}
	r := standupRouter(stubPublisher{}, stubNotifier{}, st)

	w := performJSON(r, http.MethodPut, "/api/update_standup/4/", `{"is_active":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, st.patched.IsActive)
	assert.False(t, *st.patched.IsActive)
	assert.Nil(t, st.patched.Questions)

	assert.Equal(t, http.StatusOK, performJSON(r, http.MethodGet, "/api/get_standup/4/", "").Code)
	assert.Equal(t, http.StatusBadRequest, performJSON(r, http.MethodGet, "/api/get_standup/abc/", "").Code)

	assert.Equal(t, http.StatusOK, performJSON(r, http.MethodDelete, "/api/delete_standup/4/", "").Code)
	assert.Equal(t, uint(4), st.deleted)

	st.err = services.ErrStandupNotFound
	assert.Equal(t, http.StatusNotFound, performJSON(r, http.MethodGet, "/api/get_standup/9/", "").Code)
}

func TestStandupList(t *testing.T) {
	st := &stubStandups{}
	r := standupRouter(stubPublisher{}, stubNotifier{}, st)

	w := performJSON(r, http.MethodGet, "/api/get_standups/?status=active&start_date=2024-01-01&end_date=2024-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", st.status)
	assert.Equal(t, services.DateFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, st.filter)

	st.listErr = services.ErrInvalidDate
	w = performJSON(r, http.MethodGet, "/api/get_standups/?start_date=2024/01/01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, utils.CodeInvalidDate, env.Code)
	assert.Equal(t, "Invalid date format. Use format yyyy-mm-dd", env.Message)
}
