package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/calendar"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/ports"
)

// NewTeamCommand groups the team subcommands
func NewTeamCommand() *cobra.Command {
	teamCmd := &cobra.Command{
		Use:   "team",
		Short: "List and change team members",
	}
	teamCmd.AddCommand(
		newTeamListCommand(),
		newTeamShowCommand(),
		newTeamAddCommand(),
		newTeamUpdateCommand(),
		newTeamDeleteCommand(),
		newTeamAvailabilityCommand(),
	)
	return teamCmd
}

func newTeamListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List team members",
		Args:  cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			members := app.store.Team.Members()
			if d, _ := cmd.Flags().GetString("available-on"); d != "" {
				day, err := app.day(d)
				if err != nil {
					return err
				}
				members = app.store.Team.MembersAvailableOn(day)
			}
			renderMembers(app.out, members)
			return nil
		}),
	}
	cmd.Flags().String("available-on", "", "Only members available on this day")
	return cmd
}

func newTeamShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show MEMBER_ID [YYYY-MM]",
		Short: "Show a member's contact details and availability for a month",
		Args:  cobra.RangeArgs(1, 2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			month := ""
			if len(args) == 2 {
				month = args[1]
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
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			member, ok := app.store.Team.Member(id)
			if !ok {
				return &entities.NotFoundError{Kind: "team member", ID: id}
			}

			renderMember(app.out, member, calendar.MemberMonth(year, m, member, calendar.GridOptions{
				WeekStart: weekStart,
				Today:     app.today(),
				Location:  app.loc,
			}))
			return nil
		}),
	}
	cmd.Flags().String("week-start", "monday", "First column of the grid")
	return cmd
}

func newTeamAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a team member",
		Args:  cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			f := cmd.Flags()
			name, _ := f.GetString("name")
			role, _ := f.GetString("role")
			color, _ := f.GetString("color")
			phone, _ := f.GetString("phone")
			email, _ := f.GetString("email")
			days, _ := f.GetStringSlice("day")

			availability, err := app.days(days)
			if err != nil {
				return err
			}

			member, err := app.store.Team.AddTeamMember(cmd.Context(), ports.CreateMemberRequest{
				Name:         name,
				Role:         role,
				Color:        color,
				Phone:        phone,
				Email:        email,
				Availability: availability,
			})
			if err != nil {
				return err
			}
			renderMembers(app.out, []entities.Member{member})
			return nil
		}),
	}
	cmd.Flags().String("name", "", "Name (required)")
	cmd.Flags().String("role", "", "Role")
	cmd.Flags().String("color", "", "Display color, #rrggbb (random when empty)")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().StringSlice("day", nil, "Available day (repeatable)")
	return cmd
}

func newTeamUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update MEMBER_ID",
		Short: "Change a team member's details",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			member, ok := app.store.Team.Member(id)
			if !ok {
				return &entities.NotFoundError{Kind: "team member", ID: id}
			}

			f := cmd.Flags()
			for flag, dst := range map[string]*string{
				"name":  &member.Name,
				"role":  &member.Role,
				"color": &member.Color,
				"phone": &member.Phone,
				"email": &member.Email,
			} {
				if f.Changed(flag) {
					*dst, _ = f.GetString(flag)
				}
			}

			updated, err := app.store.Team.UpdateTeamMember(cmd.Context(), member)
			if err != nil {
				return err
			}
			renderMembers(app.out, []entities.Member{updated})
			return nil
		}),
	}
	cmd.Flags().String("name", "", "Name")
	cmd.Flags().String("role", "", "Role")
	cmd.Flags().String("color", "", "Display color, #rrggbb")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("email", "", "Email address")
	return cmd
}

func newTeamDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete MEMBER_ID",
		Short: "Delete a team member and remove them from every job",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			return app.store.Team.DeleteTeamMember(cmd.Context(), id)
		}),
	}
}

func newTeamAvailabilityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "availability MEMBER_ID DAY",
		Short: "Toggle a day in a member's availability",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			id, err := parseID(args[0], "member")
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
			member, err := app.store.Team.ToggleAvailability(cmd.Context(), id, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Available: %s\n", joinDays(member.Availability))
			return nil
		}),
	}
}
