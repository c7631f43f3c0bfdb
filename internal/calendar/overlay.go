// Package calendar composes job deadlines, job schedules and member
// availability into per-day annotations for rendering. Everything here is
// a pure function of its inputs.
package calendar

import (
	"sort"
	"time"

	"github.com/amire/crewboard/internal/domain/entities"
)

// Annotation summarizes one calendar day.
type Annotation struct {
	Day              entities.DateKey  `json:"day"`
	AvailableMembers []entities.Member `json:"available_members"`
	ScheduledJobs    []entities.Job    `json:"scheduled_jobs"`
	IsDeadlineDay    bool              `json:"is_deadline_day"`
}

// Annotate builds the annotation for day. Nil inputs are treated as empty
// collections; the returned slices are never nil.
func Annotate(day entities.DateKey, jobs []entities.Job, members []entities.Member) Annotation {
	a := Annotation{
		Day:              day,
		AvailableMembers: []entities.Member{},
		ScheduledJobs:    []entities.Job{},
	}
	for i := range members {
		if members[i].IsAvailableOn(day) {
			a.AvailableMembers = append(a.AvailableMembers, members[i])
		}
	}
	for i := range jobs {
		if jobs[i].IsScheduledOn(day) {
			a.ScheduledJobs = append(a.ScheduledJobs, jobs[i])
		}
		if jobs[i].IsDueOn(day) {
			a.IsDeadlineDay = true
		}
	}
	return a
}

// DayJob is a job relevant to a given day and why.
type DayJob struct {
	Job       entities.Job `json:"job"`
	Deadline  bool         `json:"deadline"`
	Scheduled bool         `json:"scheduled"`
}

// Details lists everything happening on one day.
type Details struct {
	Day              entities.DateKey  `json:"day"`
	Jobs             []DayJob          `json:"jobs"`
	AvailableMembers []entities.Member `json:"available_members"`
}

// DayDetails returns the jobs due or scheduled on day, in input order, and
// the members available that day.
func DayDetails(day entities.DateKey, jobs []entities.Job, members []entities.Member) Details {
	d := Details{
		Day:              day,
		Jobs:             []DayJob{},
		AvailableMembers: Annotate(day, nil, members).AvailableMembers,
	}
	for i := range jobs {
		due := jobs[i].IsDueOn(day)
		scheduled := jobs[i].IsScheduledOn(day)
		if due || scheduled {
			d.Jobs = append(d.Jobs, DayJob{Job: jobs[i], Deadline: due, Scheduled: scheduled})
		}
	}
	return d
}

// MaxDots is the number of availability markers shown per month cell.
const MaxDots = 3

// Cell is one slot of a month grid. Slots outside the month have an empty
// Day and no annotation.
type Cell struct {
	Annotation
	Number int
	Today  bool
	// Dots holds the colors of the first MaxDots available members.
	Dots        []string
	MoreMembers int
}

// Blank reports whether the cell lies outside the displayed month.
func (c Cell) Blank() bool { return c.Day == "" }

// MonthGrid is a month laid out in weeks.
type MonthGrid struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Weeks     [][7]Cell
}

// GridOptions tunes Month.
type GridOptions struct {
	WeekStart time.Weekday
	Today     entities.DateKey
	Location  *time.Location
}

// Month lays out year/month with every in-month day annotated.
func Month(year int, month time.Month, jobs []entities.Job, members []entities.Member, opts GridOptions) MonthGrid {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) - int(opts.WeekStart) + 7) % 7

	grid := MonthGrid{Year: first.Year(), Month: first.Month(), WeekStart: opts.WeekStart}
	var week [7]Cell
	slot := offset
	for day := 1; day <= daysIn; day++ {
		key, _ := entities.DateKeyIn(time.Date(year, month, day, 12, 0, 0, 0, loc), loc)
		a := Annotate(key, jobs, members)
		cell := Cell{Annotation: a, Number: day, Today: key == opts.Today}
		for i, m := range a.AvailableMembers {
			if i == MaxDots {
				cell.MoreMembers = len(a.AvailableMembers) - MaxDots
				break
			}
			cell.Dots = append(cell.Dots, m.Color)
		}
		week[slot] = cell
		slot++
		if slot == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = [7]Cell{}
			slot = 0
		}
	}
	if slot > 0 {
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

// Weekdays returns the column headers starting at start.
func Weekdays(start time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(start) + i) % 7)
	}
	return out
}

// sortByDeadline orders jobs by deadline, then id.
func sortByDeadline(jobs []entities.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Deadline != jobs[j].Deadline {
			return jobs[i].Deadline < jobs[j].Deadline
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// MemberMonth lays out year/month for a single member: a cell carries the
// member's dot exactly when they are available that day. Jobs are left out.
func MemberMonth(year int, month time.Month, member entities.Member, opts GridOptions) MonthGrid {
	return Month(year, month, nil, []entities.Member{member}, opts)
}

// AvailableDays counts the cells of grid with at least one available member.
func AvailableDays(grid MonthGrid) int {
	n := 0
	for _, w := range grid.Weeks {
		for _, c := range w {
			if !c.Blank() && len(c.AvailableMembers) > 0 {
				n++
			}
		}
	}
	return n
}
