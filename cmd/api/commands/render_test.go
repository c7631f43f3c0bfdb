package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/calendar"
	"github.com/amire/crewboard/internal/domain/entities"
)

func sampleBoard() ([]entities.Job, []entities.Member) {
	jobs := []entities.Job{
		{ID: 1, Title: "Roof repair", Status: entities.JobStatusInProgress, Deadline: "2025-09-03", AssignedTeam: entities.IDSet{1, 9}},
		{ID: 2, Title: "Fence", Status: entities.JobStatusPending, Deadline: "2025-09-20", Schedule: entities.DateSet{"2025-09-04"}},
	}
	members := []entities.Member{
		{ID: 1, Name: "Ana", Color: "#ff0000", Availability: entities.DateSet{"2025-09-03"}},
		{ID: 2, Name: "Ben", Color: "#00ff00", Availability: entities.DateSet{"2025-09-03"}},
		{ID: 3, Name: "Cal", Color: "#0000ff", Availability: entities.DateSet{"2025-09-03"}},
		{ID: 4, Name: "Dee", Color: "#ffff00", Availability: entities.DateSet{"2025-09-03"}},
	}
	return jobs, members
}

func TestRenderMonth(t *testing.T) {
	jobs, members := sampleBoard()
	grid := calendar.Month(2025, time.September, jobs, members, calendar.GridOptions{
		WeekStart: time.Monday,
		Location:  time.UTC,
	})

	var buf bytes.Buffer
	renderMonth(&buf, grid)
	out := buf.String()

	assert.Contains(t, out, "September 2025")
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, " 3!")
	assert.Contains(t, out, " 4*")
	assert.Contains(t, out, "+1")
	assert.Contains(t, out, "30")
}

func TestRenderDashboard(t *testing.T) {
	jobs, members := sampleBoard()
	dash, err := calendar.BuildDashboard("2025-09-01", jobs, members)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderDashboard(&buf, dash, members)
	out := buf.String()

	assert.Contains(t, out, "Today 2025-09-01")
	assert.Contains(t, out, "#1 Roof repair")
	assert.Contains(t, out, "Ana, #9")
	assert.Contains(t, out, "Nobody available.")
}

func TestRenderDay(t *testing.T) {
	jobs, members := sampleBoard()

	var buf bytes.Buffer
	renderDay(&buf, calendar.DayDetails("2025-09-04", jobs, members), members)
	out := buf.String()

	assert.Contains(t, out, "#2 Fence [scheduled]")
	assert.NotContains(t, out, "Roof repair")
}

func TestRenderJobsEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderJobs(&buf, nil, nil)
	assert.Contains(t, buf.String(), "No jobs.")
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2026, time.February, 14, 9, 0, 0, 0, time.UTC)

	y, m, err := parseMonth("2025-09", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.September, m)

	y, m, err = parseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.February, m)

	_, _, err = parseMonth("Sept", now)
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"monday", time.Monday, true},
		{"Sun", time.Sunday, true},
		{" SATURDAY ", time.Saturday, true},
		{"funday", 0, false},
	}
	for _, tt := range tests {
		got, err := parseWeekday(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc…", truncate("abcdef", 4))
	assert.Equal(t, "abc", truncate("abc", 4))
}
