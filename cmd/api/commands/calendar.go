package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/calendar"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/notes"
	"github.com/amire/crewboard/internal/notify"
)

// NewCalendarCommand renders a month grid, or one day's details
func NewCalendarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show the month with deadlines, scheduled work and availability",
		Args:  cobra.MaximumNArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			jobs := app.store.Jobs.Jobs()
			members := app.store.Team.Members()

			if d, _ := cmd.Flags().GetString("day"); d != "" {
				day, err := app.day(d)
				if err != nil {
					return err
				}
				renderDay(app.out, calendar.DayDetails(day, jobs, members), members)
				return nil
			}

			month := ""
			if len(args) == 1 {
				month = args[0]
			}
			year, m, err := parseMonth(month, time.Now().In(app.loc))
			if err != nil {
				return err
			}
			ws, _ := cmd.Flags().GetString("week-start")
			weekStart, err := parseWeekday(ws)
			if err != nil {
				return err
			}

			renderMonth(app.out, calendar.Month(year, m, jobs, members, calendar.GridOptions{
				WeekStart: weekStart,
				Today:     app.today(),
				Location:  app.loc,
			}))
			return nil
		}),
	}
	cmd.Flags().String("day", "", "Show the jobs and available members of one day instead")
	cmd.Flags().String("week-start", "monday", "First column of the grid")
	return cmd
}

// NewTodayCommand prints the dashboard and today's notes
func NewTodayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "today",
		Aliases: []string{"dashboard"},
		Short:   "Active jobs, upcoming deadlines, who is available and today's notes",
		Args:    cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			members := app.store.Team.Members()
			dash, err := calendar.BuildDashboard(app.today(), app.store.Jobs.Jobs(), members)
			if err != nil {
				return err
			}
			book, err := app.notes.Load()
			if err != nil {
				return err
			}
			renderDashboard(app.out, dash, members)
			renderNotes(app.out, book.For(dash.Today))
			return nil
		}),
	}
	cmd.AddCommand(newNoteCommand())
	return cmd
}

func newNoteCommand() *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Keep short notes for the day",
	}
	noteCmd.PersistentFlags().String("day", "today", "Day the note belongs to")

	noteCmd.AddCommand(&cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			return app.editNotes(cmd, "Note added", notify.SeveritySuccess, func(b *notes.Book, day entities.DateKey) error {
				_, err := b.Add(day, strings.Join(args, " "))
				return err
			})
		}),
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "toggle NOTE_ID",
		Short: "Mark a note done, or open again",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			return app.editNotes(cmd, "Note updated", notify.SeverityInfo, func(b *notes.Book, day entities.DateKey) error {
				_, err := b.Toggle(day, id)
				return err
			})
		}),
	})
	return noteCmd
}

// editNotes loads the notes file, applies change to the --day notes, saves
// and prints that day's list.
func (a *clientApp) editNotes(cmd *cobra.Command, done string, severity notify.Severity, change func(*notes.Book, entities.DateKey) error) error {
	d, _ := cmd.Flags().GetString("day")
	day, err := a.day(d)
	if err != nil {
		return err
	}
	book, err := a.notes.Load()
	if err != nil {
		return err
	}
	if err := change(book, day); err != nil {
		return err
	}
	if err := a.notes.Save(book); err != nil {
		return err
	}
	a.notifier.Notify(done, severity)
	renderNotes(a.out, book.For(day))
	return nil
}
