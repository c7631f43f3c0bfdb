package entities

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobApplyDefaults(t *testing.T) {
	j := Job{Title: "Kitchen", Status: JobStatusPending, Deadline: "2025-09-15"}
	j.ApplyDefaults()

	assert.Equal(t, DefaultJobDescription, j.Description)
	assert.Equal(t, DefaultJobColor, j.Color)
	assert.NotNil(t, j.AssignedTeam)
	assert.NotNil(t, j.Schedule)
	assert.NotNil(t, j.TodoList)

	custom := Job{Description: "Tiles", Color: "#ff0000"}
	custom.ApplyDefaults()
	assert.Equal(t, "Tiles", custom.Description)
	assert.Equal(t, "#ff0000", custom.Color)
}

func TestJobCloneIsDeep(t *testing.T) {
	j := Job{
		AssignedTeam: IDSet{1},
		Schedule:     DateSet{"2025-09-01"},
		TodoList:     []TodoItem{{ID: "a", Text: "buy paint"}},
	}
	c := j.Clone()
	c.AssignedTeam[0] = 99
	c.Schedule[0] = "2030-01-01"
	c.TodoList[0].Completed = true

	assert.Equal(t, int64(1), j.AssignedTeam[0])
	assert.Equal(t, DateKey("2025-09-01"), j.Schedule[0])
	assert.False(t, j.TodoList[0].Completed)
}

func TestJobDeadlineAndScheduleAreDistinct(t *testing.T) {
	j := Job{Deadline: "2025-09-15", Schedule: DateSet{"2025-09-01", "2025-09-02"}}

	assert.True(t, j.IsDueOn("2025-09-15"))
	assert.False(t, j.IsScheduledOn("2025-09-15"))
	assert.True(t, j.IsScheduledOn("2025-09-01"))
	assert.False(t, j.IsDueOn("2025-09-01"))
}

func TestJobStatusValid(t *testing.T) {
	assert.True(t, JobStatusDone.Valid())
	assert.False(t, JobStatus("Folyamatban").Valid())
}

func TestErrorTaxonomy(t *testing.T) {
	nf := fmt.Errorf("assign: %w", &NotFoundError{Kind: "job", ID: int64(4)})
	assert.True(t, IsNotFound(nf))
	assert.True(t, errors.Is(nf, ErrJobNotFound))
	assert.False(t, errors.Is(nf, ErrMemberNotFound))

	re := &RequestError{Op: "PUT /jobs/99", Status: http.StatusNotFound}
	assert.True(t, IsRequest(re))
	assert.False(t, re.Unauthorized())
	assert.True(t, (&RequestError{Status: http.StatusForbidden}).Unauthorized())
	assert.Contains(t, (&RequestError{Op: "GET /jobs", Timeout: true}).Error(), "timed out")

	assert.True(t, IsValidation(&ValidationError{Field: "title", Reason: "is required"}))
}
