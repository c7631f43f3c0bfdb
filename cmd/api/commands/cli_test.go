package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/domain/entities"
)

type fakeServer struct {
	mu      sync.Mutex
	job     entities.Job
	updates int
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode([]entities.Job{f.job})
	})
	mux.HandleFunc("/api/v1/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body entities.Job
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		body.ID = 1
		f.job = body
		f.updates++
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/v1/team", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]entities.Member{{
			ID: 1, Name: "Ana", Role: "Roofer", Color: "#ff0000", Phone: "+36 1 234 5678",
			Availability: entities.DateSet{"2024-03-05", "2024-03-06", "2024-04-01"},
		}})
	})
	return mux
}

func setupCLI(t *testing.T, withToken bool) *fakeServer {
	t.Helper()
	fake := &fakeServer{job: entities.Job{
		ID: 1, Title: "Roof repair", Status: entities.JobStatusPending, Deadline: "2024-03-20",
		AssignedTeam: entities.IDSet{1}, Schedule: entities.DateSet{},
	}}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	tokenFile := filepath.Join(t.TempDir(), "token")
	if withToken {
		require.NoError(t, os.WriteFile(tokenFile, []byte("test-token"), 0o600))
	}

	t.Setenv("CREWBOARD_API_URL", srv.URL+"/api/v1")
	t.Setenv("CREWBOARD_TOKEN_FILE", tokenFile)
	t.Setenv("CREWBOARD_NOTES_FILE", filepath.Join(t.TempDir(), "notes.yaml"))
	t.Setenv("CREWBOARD_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	return fake
}

func runJobs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCommand(t, NewJobsCommand(), args...)
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestJobsListCommand(t *testing.T) {
	setupCLI(t, true)

	out, err := runJobs(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Roof repair")
	assert.Contains(t, out, "Ana")
}

func TestJobsScheduleCommand(t *testing.T) {
	fake := setupCLI(t, true)

	out, err := runJobs(t, "schedule", "1", "2024-03-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Job schedule updated")
	assert.Contains(t, out, "Schedule: 2024-03-18")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.updates)
	assert.Equal(t, entities.DateSet{"2024-03-18"}, fake.job.Schedule)
}

func TestJobsCommandRequiresLogin(t *testing.T) {
	fake := setupCLI(t, false)

	_, err := runJobs(t, "assign", "1", "2")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Zero(t, fake.updates)
}

func TestJobsCommandRejectsBadIDs(t *testing.T) {
	setupCLI(t, true)

	_, err := runJobs(t, "delete", "first")
	assert.Error(t, err)
}

func TestTeamShowCommand(t *testing.T) {
	setupCLI(t, true)

	out, err := runCommand(t, NewTeamCommand(), "show", "1", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Roofer")
	assert.Contains(t, out, "Phone: +36 1 234 5678")
	assert.Contains(t, out, "Available 2 days")
	assert.Contains(t, out, "March 2024")

	_, err = runCommand(t, NewTeamCommand(), "show", "9")
	assert.ErrorIs(t, err, entities.ErrMemberNotFound)
}

func TestTodayNoteCommands(t *testing.T) {
	setupCLI(t, false)

	out, err := runCommand(t, NewTodayCommand(), "note", "add", "--day", "2024-03-18", "Order", "gravel")
	require.NoError(t, err)
	assert.Contains(t, out, "Note added")
	assert.Contains(t, out, "[ ] 1 Order gravel")

	out, err = runCommand(t, NewTodayCommand(), "note", "toggle", "--day", "2024-03-18", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Note updated")
	assert.Contains(t, out, "[x] 1")

	_, err = runCommand(t, NewTodayCommand(), "note", "toggle", "--day", "2024-03-19", "1")
	var nf *entities.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = runCommand(t, NewTodayCommand(), "note", "add", "--day", "2024-03-18", " ")
	assert.True(t, entities.IsValidation(err))
}
