package calendar

import (
	"github.com/amire/crewboard/internal/domain/entities"
)

// UpcomingWindow is how many days ahead the dashboard looks for deadlines.
const UpcomingWindow = 7

// Dashboard is the home screen summary.
type Dashboard struct {
	Today             entities.DateKey  `json:"today"`
	ActiveJobs        []entities.Job    `json:"active_jobs"`
	UpcomingDeadlines []entities.Job    `json:"upcoming_deadlines"`
	AvailableToday    []entities.Member `json:"available_today"`
}

// BuildDashboard summarizes jobs and members as of today.
func BuildDashboard(today entities.DateKey, jobs []entities.Job, members []entities.Member) (Dashboard, error) {
	upcoming, err := UpcomingDeadlines(today, UpcomingWindow, jobs)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Today:             today,
		ActiveJobs:        ActiveJobs(jobs),
		UpcomingDeadlines: upcoming,
		AvailableToday:    Annotate(today, nil, members).AvailableMembers,
	}, nil
}

// ActiveJobs returns the in-progress jobs in input order.
func ActiveJobs(jobs []entities.Job) []entities.Job {
	out := []entities.Job{}
	for i := range jobs {
		if jobs[i].IsActive() {
			out = append(out, jobs[i])
		}
	}
	return out
}

// UpcomingDeadlines returns jobs due between today and today+days inclusive,
// earliest first. Jobs without a valid deadline are skipped.
func UpcomingDeadlines(today entities.DateKey, days int, jobs []entities.Job) ([]entities.Job, error) {
	last, err := today.AddDays(days)
	if err != nil {
		return nil, err
	}
	out := []entities.Job{}
	for i := range jobs {
		d := jobs[i].Deadline
		if !d.Valid() {
			continue
		}
		if d >= today && d <= last {
			out = append(out, jobs[i])
		}
	}
	sortByDeadline(out)
	return out, nil
}
