package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amire/crewboard/internal/calendar"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/notes"
)

const cellWidth = 7

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#94a3b8"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	deadlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle     = lipgloss.NewStyle().Width(cellWidth)

	statusStyles = map[entities.JobStatus]lipgloss.Style{
		entities.JobStatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		entities.JobStatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		entities.JobStatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
	}
)

func statusLabel(s entities.JobStatus) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if style, ok := statusStyles[s]; ok {
		return style.Render(label)
	}
	return label
}

func swatch(color string) string {
	if color == "" {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

func memberNames(ids entities.IDSet, members []entities.Member) string {
	if len(ids) == 0 {
		return mutedStyle.Render("unassigned")
	}
	byID := make(map[int64]string, len(members))
	for _, m := range members {
		byID[m.ID] = m.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("#%d", id))
		}
	}
	return strings.Join(names, ", ")
}

func todoProgress(j entities.Job) string {
	done := 0
	for _, t := range j.TodoList {
		if t.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(j.TodoList))
}

func renderJobs(w io.Writer, jobs []entities.Job, members []entities.Member) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No jobs."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-5s %-28s %-12s %-10s %-6s %s", "ID", "TITLE", "STATUS", "DEADLINE", "TODOS", "TEAM")))
	for _, j := range jobs {
		fmt.Fprintf(w, "%-5d %s %-28s %s %-10s %-6s %s\n",
			j.ID, swatch(j.Color), truncate(j.Title, 26), padRight(statusLabel(j.Status), 12),
			j.Deadline, todoProgress(j), memberNames(j.AssignedTeam, members))
	}
}

func renderJob(w io.Writer, j entities.Job, members []entities.Member) {
	fmt.Fprintf(w, "%s %s\n", swatch(j.Color), titleStyle.Render(fmt.Sprintf("#%d %s", j.ID, j.Title)))
	fmt.Fprintf(w, "  Status:   %s\n", statusLabel(j.Status))
	fmt.Fprintf(w, "  Deadline: %s\n", deadlineStyle.Render(string(j.Deadline)))
	fmt.Fprintf(w, "  Team:     %s\n", memberNames(j.AssignedTeam, members))
	fmt.Fprintf(w, "  Schedule: %s\n", joinDays(j.Schedule))
	if j.Description != "" {
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render(j.Description))
	}
	for _, t := range j.TodoList {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %s %s\n", box, t.Text, mutedStyle.Render(t.ID))
	}
}

func renderMembers(w io.Writer, members []entities.Member) {
	if len(members) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No team members."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-5s %-22s %-14s %-28s %s", "ID", "NAME", "ROLE", "CONTACT", "AVAILABLE")))
	for _, m := range members {
		contact := strings.TrimSpace(strings.Join([]string{m.Email, m.Phone}, " "))
		fmt.Fprintf(w, "%-5d %s %-20s %-14s %-28s %d days\n",
			m.ID, swatch(m.Color), truncate(m.Name, 20), truncate(m.Role, 14), truncate(contact, 28), len(m.Availability))
	}
}

func renderMonth(w io.Writer, grid calendar.MonthGrid) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s %d", grid.Month, grid.Year)))

	headers := make([]string, 0, 7)
	for _, d := range calendar.Weekdays(grid.WeekStart) {
		headers = append(headers, cellStyle.Render(headerStyle.Render(d.String()[:3])))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, headers...))

	for _, week := range grid.Weeks {
		cells := make([]string, 0, 7)
		for _, c := range week {
			cells = append(cells, cellStyle.Render(renderCell(c)))
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	fmt.Fprintln(w, mutedStyle.Render("! deadline  * scheduled work  ● available member"))
}

func renderCell(c calendar.Cell) string {
	if c.Blank() {
		return "\n"
	}
	number := fmt.Sprintf("%2d", c.Number)
	if c.Today {
		number = todayStyle.Render(number)
	}
	marks := ""
	if c.IsDeadlineDay {
		marks += deadlineStyle.Render("!")
	}
	if len(c.ScheduledJobs) > 0 {
		marks += "*"
	}

	dots := make([]string, 0, len(c.Dots)+1)
	for _, color := range c.Dots {
		dots = append(dots, swatch(color))
	}
	if c.MoreMembers > 0 {
		dots = append(dots, mutedStyle.Render(fmt.Sprintf("+%d", c.MoreMembers)))
	}
	return number + marks + "\n" + strings.Join(dots, "")
}

func renderDay(w io.Writer, d calendar.Details, members []entities.Member) {
	fmt.Fprintln(w, titleStyle.Render(string(d.Day)))
	if len(d.Jobs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No jobs due or scheduled."))
	}
	for _, dj := range d.Jobs {
		var tags []string
		if dj.Deadline {
			tags = append(tags, deadlineStyle.Render("due"))
		}
		if dj.Scheduled {
			tags = append(tags, "scheduled")
		}
		fmt.Fprintf(w, "  %s #%d %s [%s] %s\n", swatch(dj.Job.Color), dj.Job.ID, dj.Job.Title,
			strings.Join(tags, ", "), memberNames(dj.Job.AssignedTeam, members))
	}
	renderAvailable(w, d.AvailableMembers)
}

func renderDashboard(w io.Writer, d calendar.Dashboard, members []entities.Member) {
	fmt.Fprintln(w, titleStyle.Render("Today "+string(d.Today)))

	fmt.Fprintln(w, headerStyle.Render("Active jobs"))
	if len(d.ActiveJobs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  None in progress."))
	}
	for _, j := range d.ActiveJobs {
		fmt.Fprintf(w, "  %s #%d %s (due %s) %s\n", swatch(j.Color), j.ID, j.Title, j.Deadline, memberNames(j.AssignedTeam, members))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Deadlines in the next %d days", calendar.UpcomingWindow)))
	if len(d.UpcomingDeadlines) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  Nothing due."))
	}
	for _, j := range d.UpcomingDeadlines {
		fmt.Fprintf(w, "  %s %s #%d %s %s\n", deadlineStyle.Render(string(j.Deadline)), swatch(j.Color), j.ID, j.Title, statusLabel(j.Status))
	}

	renderAvailable(w, d.AvailableToday)
}

func renderNotes(w io.Writer, list []notes.Note) {
	fmt.Fprintln(w, headerStyle.Render("Notes"))
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No notes for today."))
		return
	}
	for _, n := range list {
		if n.Completed {
			fmt.Fprintf(w, "  [x] %d %s\n", n.ID, mutedStyle.Render(n.Text))
			continue
		}
		fmt.Fprintf(w, "  [ ] %d %s\n", n.ID, n.Text)
	}
}

// renderMember prints a member's card followed by their availability month.
func renderMember(w io.Writer, m entities.Member, grid calendar.MonthGrid) {
	fmt.Fprintf(w, "%s %s\n", swatch(m.Color), titleStyle.Render(m.Name))
	if m.Role != "" {
		fmt.Fprintln(w, "  "+m.Role)
	}

	fmt.Fprintln(w, headerStyle.Render("Contact"))
	if m.Phone == "" && m.Email == "" {
		fmt.Fprintln(w, mutedStyle.Render("  No contact details."))
	}
	if m.Phone != "" {
		fmt.Fprintln(w, "  Phone: "+m.Phone)
	}
	if m.Email != "" {
		fmt.Fprintln(w, "  Email: "+m.Email)
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Available %d days", calendar.AvailableDays(grid))))
	renderMonth(w, grid)
}

func renderAvailable(w io.Writer, members []entities.Member) {
	fmt.Fprintln(w, headerStyle.Render("Available"))
	if len(members) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  Nobody available."))
		return
	}
	for _, m := range members {
		fmt.Fprintf(w, "  %s %s %s\n", swatch(m.Color), m.Name, mutedStyle.Render(m.Role))
	}
}

func joinDays(days entities.DateSet) string {
	if len(days) == 0 {
		return mutedStyle.Render("none")
	}
	sorted := days.Sorted()
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = string(d)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// parseMonth reads YYYY-MM, defaulting to the month containing now.
func parseMonth(arg string, now time.Time) (int, time.Month, error) {
	if arg == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", arg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", arg)
	}
	return t.Year(), t.Month(), nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
