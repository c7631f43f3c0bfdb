package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/ports"
)

func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL + "/api/v1"
	if opts.Tokens == nil {
		tokens := &MemoryTokenStore{}
		require.NoError(t, tokens.Save("secret-token"))
		opts.Tokens = tokens
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestListJobsSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]entities.Job{{ID: 1, Title: "Roof", Deadline: "2025-09-15"}})
	}), Options{})

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/api/v1/jobs", gotPath)
	require.Len(t, jobs, 1)
	assert.Equal(t, entities.DateKey("2025-09-15"), jobs[0].Deadline)
}

func TestUpdateJobPutsFullRecord(t *testing.T) {
	var body ports.ReplaceJobRequest
	var method, path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(entities.Job{ID: 7, Title: body.Title, Schedule: body.Schedule})
	}), Options{})

	job := entities.Job{ID: 7, Title: "Bath", Status: entities.JobStatusPending, Deadline: "2025-10-01", Schedule: entities.DateSet{"2025-09-20"}}
	updated, err := c.UpdateJob(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/jobs/7", path)
	assert.Equal(t, "Bath", body.Title)
	assert.Equal(t, entities.DateSet{"2025-09-20"}, body.Schedule)
	assert.Equal(t, int64(7), updated.ID)
}

func TestNonSuccessStatusIsRequestError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"job not found"}`))
	}), Options{})

	_, err := c.UpdateJob(context.Background(), entities.Job{ID: 99})

	var re *entities.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Contains(t, re.Error(), "job not found")
}

func TestUnauthorizedClearsToken(t *testing.T) {
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), config.TokenFileName))
	require.NoError(t, tokens.Save("expired"))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), Options{Tokens: tokens})

	_, err := c.ListMembers(context.Background())

	var re *entities.RequestError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Unauthorized())
	assert.False(t, c.Authenticated())
}

func TestMissingTokenSkipsNetwork(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), Options{Tokens: &MemoryTokenStore{}})

	err := c.DeleteJob(context.Background(), 3)

	assert.ErrorIs(t, err, entities.ErrNotAuthenticated)
	assert.False(t, called)
}

func TestTimeoutIsRequestError(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), Options{Timeout: 50 * time.Millisecond})

	_, err := c.ListJobs(context.Background())

	var re *entities.RequestError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Timeout)
}

func TestLoginStoresToken(t *testing.T) {
	tokens := &MemoryTokenStore{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ports.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, r.Header.Get("Authorization"))
		if req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(ports.LoginResponse{Token: "fresh"})
	}), Options{Tokens: tokens})

	require.Error(t, c.Login(context.Background(), "boss", "wrong"))
	assert.False(t, c.Authenticated())

	require.NoError(t, c.Login(context.Background(), "boss", "hunter22"))
	token, _ := tokens.Load()
	assert.Equal(t, "fresh", token)

	require.NoError(t, c.Logout())
	assert.False(t, c.Authenticated())
}

func TestVersionFallsBackWhenUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), Options{})
	assert.Equal(t, VersionUnavailable, c.Version(context.Background()))

	ok := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ports.VersionResponse{Version: "1.4.0"})
	}), Options{})
	assert.Equal(t, "1.4.0", ok.Version(context.Background()))
}

func TestBreakerOpensAfterServerFailures(t *testing.T) {
	hits := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}), Options{BreakerFailures: 2, BreakerTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := c.ListJobs(context.Background())
		assert.True(t, entities.IsRequest(err))
	}
	assert.Equal(t, 2, hits, "third call must be short-circuited")
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	s := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", config.TokenFileName))

	token, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save("abc"))
	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	token, _ = s.Load()
	assert.Empty(t, token)
}
