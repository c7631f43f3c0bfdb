package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/ports"
)

// NewJobsCommand groups the job subcommands
func NewJobsCommand() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "List and change jobs",
	}

	jobsCmd.AddCommand(
		newJobsListCommand(),
		newJobsShowCommand(),
		newJobsAddCommand(),
		newJobsUpdateCommand(),
		newJobsDeleteCommand(),
		newJobsAssignCommand(),
		newJobsUnassignCommand(),
		newJobsScheduleCommand(),
		newTodoCommand(),
	)
	return jobsCmd
}

func newJobsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			jobs := app.store.Jobs.Jobs()
			if d, _ := cmd.Flags().GetString("day"); d != "" {
				day, err := app.day(d)
				if err != nil {
					return err
				}
				jobs = app.store.Jobs.JobsScheduledOn(day)
			}
			if s, _ := cmd.Flags().GetString("status"); s != "" {
				status := entities.JobStatus(s)
				if !status.Valid() {
					return fmt.Errorf("invalid status %q", s)
				}
				jobs = filterJobs(jobs, func(j entities.Job) bool { return j.Status == status })
			}

			renderJobs(app.out, jobs, app.store.Team.Members())
			return nil
		}),
	}
	cmd.Flags().String("status", "", "Only jobs with this status (in_progress, done, pending)")
	cmd.Flags().String("day", "", "Only jobs scheduled on this day")
	return cmd
}

func newJobsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show one job with its todo list",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			job, ok := app.store.Jobs.Job(id)
			if !ok {
				return &entities.NotFoundError{Kind: "job", ID: id}
			}
			renderJob(app.out, job, app.store.Team.Members())
			return nil
		}),
	}
}

func newJobsAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a job",
		Args:  cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			f := cmd.Flags()
			title, _ := f.GetString("title")
			status, _ := f.GetString("status")
			deadline, _ := f.GetString("deadline")
			description, _ := f.GetString("description")
			color, _ := f.GetString("color")
			team, _ := f.GetInt64Slice("member")
			days, _ := f.GetStringSlice("day")

			schedule, err := app.days(days)
			if err != nil {
				return err
			}
			deadlineKey := entities.DateKey(deadline)
			if deadline != "" {
				if deadlineKey, err = app.day(deadline); err != nil {
					return err
				}
			}

			job, err := app.store.Jobs.AddJob(cmd.Context(), ports.CreateJobRequest{
				Title:        title,
				Status:       entities.JobStatus(status),
				Deadline:     deadlineKey,
				Description:  description,
				Color:        color,
				AssignedTeam: entities.IDSet(team),
				Schedule:     schedule,
			})
			if err != nil {
				return err
			}
			renderJob(app.out, job, app.store.Team.Members())
			return nil
		}),
	}
	cmd.Flags().String("title", "", "Job title (required)")
	cmd.Flags().String("status", string(entities.JobStatusPending), "in_progress, done or pending")
	cmd.Flags().String("deadline", "", "Deadline day, YYYY-MM-DD (required)")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("color", "", "Display color, #rrggbb")
	cmd.Flags().Int64Slice("member", nil, "Assigned team member id (repeatable)")
	cmd.Flags().StringSlice("day", nil, "Scheduled working day (repeatable)")
	return cmd
}

func newJobsUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update JOB_ID",
		Short: "Change a job's fields",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			job, ok := app.store.Jobs.Job(id)
			if !ok {
				job = entities.Job{ID: id}
			}

			f := cmd.Flags()
			if f.Changed("title") {
				job.Title, _ = f.GetString("title")
			}
			if f.Changed("status") {
				s, _ := f.GetString("status")
				job.Status = entities.JobStatus(s)
			}
			if f.Changed("deadline") {
				d, _ := f.GetString("deadline")
				if job.Deadline, err = app.day(d); err != nil {
					return err
				}
			}
			if f.Changed("description") {
				job.Description, _ = f.GetString("description")
			}
			if f.Changed("color") {
				job.Color, _ = f.GetString("color")
			}

			updated, err := app.store.Jobs.UpdateJob(cmd.Context(), job)
			if err != nil {
				return err
			}
			renderJob(app.out, updated, app.store.Team.Members())
			return nil
		}),
	}
	cmd.Flags().String("title", "", "Job title")
	cmd.Flags().String("status", "", "in_progress, done or pending")
	cmd.Flags().String("deadline", "", "Deadline day, YYYY-MM-DD")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("color", "", "Display color, #rrggbb")
	return cmd
}

func newJobsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete JOB_ID",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			return app.store.Jobs.DeleteJob(cmd.Context(), id)
		}),
	}
}

func newJobsAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign JOB_ID MEMBER_ID",
		Short: "Assign a team member to a job",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			jobID, memberID, err := jobAndMember(args)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			_, err = app.store.Jobs.AssignTeamMember(cmd.Context(), jobID, memberID)
			return err
		}),
	}
}

func newJobsUnassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign JOB_ID MEMBER_ID",
		Short: "Remove a team member from a job",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			jobID, memberID, err := jobAndMember(args)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			_, err = app.store.Jobs.UnassignTeamMember(cmd.Context(), jobID, memberID)
			return err
		}),
	}
}

func newJobsScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule JOB_ID DAY",
		Short: "Toggle a working day on a job's schedule",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			day, err := app.day(args[1])
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			job, err := app.store.Jobs.ToggleJobSchedule(cmd.Context(), id, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Schedule: %s\n", joinDays(job.Schedule))
			return nil
		}),
	}
}

func newTodoCommand() *cobra.Command {
	todoCmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage a job's todo list",
	}

	todoCmd.AddCommand(&cobra.Command{
		Use:   "add JOB_ID TEXT",
		Short: "Append a todo item",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			job, err := app.store.Jobs.AddTodoItem(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			renderJob(app.out, job, app.store.Team.Members())
			return nil
		}),
	})

	todoCmd.AddCommand(&cobra.Command{
		Use:   "toggle JOB_ID TODO_ID",
		Short: "Flip a todo item's completed flag",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			job, err := app.store.Jobs.ToggleTodoItem(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			renderJob(app.out, job, app.store.Team.Members())
			return nil
		}),
	})

	todoCmd.AddCommand(&cobra.Command{
		Use:   "delete JOB_ID TODO_ID",
		Short: "Remove a todo item",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			_, err = app.store.Jobs.DeleteTodoItem(cmd.Context(), id, args[1])
			return err
		}),
	})

	return todoCmd
}

func jobAndMember(args []string) (int64, int64, error) {
	jobID, err := parseID(args[0], "job")
	if err != nil {
		return 0, 0, err
	}
	memberID, err := parseID(args[1], "member")
	if err != nil {
		return 0, 0, err
	}
	return jobID, memberID, nil
}

func filterJobs(jobs []entities.Job, keep func(entities.Job) bool) []entities.Job {
	out := jobs[:0]
	for _, j := range jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	return out
}
