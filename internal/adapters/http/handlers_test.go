package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

type structValidator struct{ v *validator.Validate }

func (s structValidator) Validate(i interface{}) error {
	if err := s.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type stubAuth struct {
	ports.AuthService
	err error
}

func (s stubAuth) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.LoginResponse{Token: "tok-" + req.Username, ExpiresIn: 3600}, nil
}

type stubJobs struct {
	ports.JobService
	jobs       map[int64]*entities.Job
	lastFilter ports.JobFilter
	createErr  error
}

func (s *stubJobs) ListJobs(ctx context.Context, filter ports.JobFilter) ([]*entities.Job, error) {
	s.lastFilter = filter
	var out []*entities.Job
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (s *stubJobs) GetJob(ctx context.Context, id int64) (*entities.Job, error) {
	if j, ok := s.jobs[id]; ok {
		return j, nil
	}
	return nil, entities.ErrJobNotFound
}

func (s *stubJobs) CreateJob(ctx context.Context, req ports.CreateJobRequest) (*entities.Job, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	j := &entities.Job{ID: int64(len(s.jobs) + 1), Title: req.Title, Status: req.Status, Deadline: req.Deadline}
	s.jobs[j.ID] = j
	return j, nil
}

func (s *stubJobs) ReplaceJob(ctx context.Context, id int64, req ports.ReplaceJobRequest) (*entities.Job, error) {
	if _, ok := s.jobs[id]; !ok {
		return nil, entities.ErrJobNotFound
	}
	j := &entities.Job{ID: id, Title: req.Title, Status: req.Status, Deadline: req.Deadline}
	s.jobs[id] = j
	return j, nil
}

func (s *stubJobs) DeleteJob(ctx context.Context, id int64) error {
	if _, ok := s.jobs[id]; !ok {
		return entities.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

type stubTeam struct {
	ports.TeamService
	availableDay entities.DateKey
}

func (s *stubTeam) ListMembers(ctx context.Context) ([]*entities.Member, error) {
	return []*entities.Member{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}}, nil
}

func (s *stubTeam) AvailableOn(ctx context.Context, day entities.DateKey) ([]*entities.Member, error) {
	if _, err := entities.ParseDateKey(string(day), time.UTC); err != nil {
		return nil, &entities.ValidationError{Field: "day", Reason: "must be a YYYY-MM-DD date"}
	}
	s.availableDay = day
	return nil, nil
}

func (s *stubTeam) DeleteMember(ctx context.Context, id int64) error {
	return &entities.NotFoundError{Kind: "team member", ID: id}
}

func newTestEcho(jobs *stubJobs, team *stubTeam, auth ports.AuthService) *echo.Echo {
	e := echo.New()
	e.Validator = structValidator{v: validator.New()}
	log := logger.NewNop()

	ah := NewAuthHandler(auth, log)
	jh := NewJobHandler(jobs, time.UTC, log)
	th := NewTeamHandler(team, log)

	e.POST("/login", ah.Login)
	e.GET("/version", NewVersionHandler("1.2.3").Version)
	e.GET("/jobs", jh.ListJobs)
	e.POST("/jobs", jh.CreateJob)
	e.GET("/jobs/:id", jh.GetJob)
	e.PUT("/jobs/:id", jh.ReplaceJob)
	e.DELETE("/jobs/:id", jh.DeleteJob)
	e.GET("/team", th.ListMembers)
	e.DELETE("/team/:id", th.DeleteMember)
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seededJobs() *stubJobs {
	return &stubJobs{jobs: map[int64]*entities.Job{
		1: {ID: 1, Title: "Roof repair", Status: entities.JobStatusPending, Deadline: "2024-03-20"},
	}}
}

func TestLogin(t *testing.T) {
	e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{})

	rec := serve(e, http.MethodPost, "/login", `{"username":"ana","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ports.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-ana", resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	for _, err := range []error{entities.ErrInvalidCredentials, entities.ErrAccountInactive} {
		e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{err: err})
		rec := serve(e, http.MethodPost, "/login", `{"username":"ana","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{})
	rec := serve(e, http.MethodPost, "/login", `{"username":"ana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVersion(t *testing.T) {
	e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{})
	rec := serve(e, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rec.Body.String())
}

func TestListJobsParsesFilter(t *testing.T) {
	jobs := seededJobs()
	e := newTestEcho(jobs, &stubTeam{}, stubAuth{})

	rec := serve(e, http.MethodGet, "/jobs?status=pending&day=2024-03-18&member=4&from=2024-03-01&to=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f := jobs.lastFilter
	require.NotNil(t, f.Status)
	assert.Equal(t, entities.JobStatusPending, *f.Status)
	require.NotNil(t, f.Day)
	assert.Equal(t, entities.DateKey("2024-03-18"), *f.Day)
	require.NotNil(t, f.MemberID)
	assert.Equal(t, int64(4), *f.MemberID)
	assert.Equal(t, entities.DateKey("2024-03-01"), *f.DeadlineMin)
	assert.Equal(t, entities.DateKey("2024-03-31"), *f.DeadlineMax)
}

func TestListJobsRejectsBadFilter(t *testing.T) {
	e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{})

	for _, q := range []string{"status=archived", "day=18/03/2024", "member=ana", "from=soon"} {
		rec := serve(e, http.MethodGet, "/jobs?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListJobsEmptyIsArray(t *testing.T) {
	e := newTestEcho(&stubJobs{jobs: map[int64]*entities.Job{}}, &stubTeam{}, stubAuth{})
	rec := serve(e, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestJobCRUD(t *testing.T) {
	jobs := seededJobs()
	e := newTestEcho(jobs, &stubTeam{}, stubAuth{})

	rec := serve(e, http.MethodPost, "/jobs", `{"title":"Fence","status":"in_progress","deadline":"2024-04-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created entities.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Fence", created.Title)

	rec = serve(e, http.MethodGet, "/jobs/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPut, "/jobs/1", `{"title":"Roof","status":"done","deadline":"2024-03-20"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.JobStatusDone, jobs.jobs[1].Status)

	rec = serve(e, http.MethodDelete, "/jobs/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, "/jobs/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodPut, "/jobs/99", `{"title":"Roof","status":"done","deadline":"2024-03-20"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodGet, "/jobs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobValidation(t *testing.T) {
	jobs := seededJobs()
	e := newTestEcho(jobs, &stubTeam{}, stubAuth{})

	rec := serve(e, http.MethodPost, "/jobs", `{"status":"pending","deadline":"2024-04-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPost, "/jobs", `{"title":"x","status":"archived","deadline":"2024-04-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	jobs.createErr = &entities.ValidationError{Field: "deadline", Reason: "must be a YYYY-MM-DD date"}
	rec = serve(e, http.MethodPost, "/jobs", `{"title":"x","status":"pending","deadline":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "deadline")
}

func TestListMembersAvailableOn(t *testing.T) {
	team := &stubTeam{}
	e := newTestEcho(seededJobs(), team, stubAuth{})

	rec := serve(e, http.MethodGet, "/team", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var members []entities.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Len(t, members, 2)

	rec = serve(e, http.MethodGet, "/team?available_on=2024-03-18", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, entities.DateKey("2024-03-18"), team.availableDay)

	rec = serve(e, http.MethodGet, "/team?available_on=monday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUnknownMemberIsNotFound(t *testing.T) {
	e := newTestEcho(seededJobs(), &stubTeam{}, stubAuth{})
	rec := serve(e, http.MethodDelete, "/team/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &entities.ValidationError{Field: "title", Reason: "is required"}, http.StatusBadRequest},
		{"job not found", entities.ErrJobNotFound, http.StatusNotFound},
		{"member not found", &entities.NotFoundError{Kind: "team member", ID: 3}, http.StatusNotFound},
		{"username taken", entities.ErrUsernameTaken, http.StatusConflict},
		{"http error", echo.NewHTTPError(http.StatusTeapot), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he, ok := ErrorStatus(tt.err).(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.code, he.Code)
		})
	}

	plain := assert.AnError
	assert.Equal(t, plain, ErrorStatus(plain))
}
