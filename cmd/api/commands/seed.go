package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/ports"
	"github.com/amire/crewboard/internal/registry"
)

// seedFile is the YAML layout read by `crewboard seed`. Jobs refer to team
// members by name.
type seedFile struct {
	Team []seedMember `yaml:"team"`
	Jobs []seedJob    `yaml:"jobs"`
}

type seedMember struct {
	Name         string   `yaml:"name"`
	Role         string   `yaml:"role"`
	Color        string   `yaml:"color"`
	Phone        string   `yaml:"phone"`
	Email        string   `yaml:"email"`
	Availability []string `yaml:"availability"`
}

type seedJob struct {
	Title       string   `yaml:"title"`
	Status      string   `yaml:"status"`
	Deadline    string   `yaml:"deadline"`
	Description string   `yaml:"description"`
	Color       string   `yaml:"color"`
	Team        []string `yaml:"team"`
	Schedule    []string `yaml:"schedule"`
	Todos       []string `yaml:"todos"`
}

type seedResult struct {
	MembersCreated, MembersSkipped int
	JobsCreated, JobsSkipped       int
}

// NewSeedCommand imports team members and jobs from a YAML file
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Import team members and jobs from a YAML file",
		Long:  "Import team members and jobs from a YAML file. Records whose name or title already exists are skipped, so a file can be applied more than once.",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := parseSeed(f)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			res, err := applySeed(cmd.Context(), app.store, seed)
			fmt.Fprintf(app.out, "Team members: %d created, %d skipped\n", res.MembersCreated, res.MembersSkipped)
			fmt.Fprintf(app.out, "Jobs: %d created, %d skipped\n", res.JobsCreated, res.JobsSkipped)
			return err
		}),
	}
}

func parseSeed(r io.Reader) (seedFile, error) {
	var seed seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return seedFile{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seed, nil
}

// applySeed creates the missing members, then the missing jobs, through the
// registries. It stops at the first failure.
func applySeed(ctx context.Context, store *registry.Store, seed seedFile) (seedResult, error) {
	var res seedResult

	ids := make(map[string]int64)
	for _, m := range store.Team.Members() {
		ids[strings.ToLower(m.Name)] = m.ID
	}

	for _, m := range seed.Team {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if _, exists := ids[key]; exists {
			res.MembersSkipped++
			continue
		}
		created, err := store.Team.AddTeamMember(ctx, ports.CreateMemberRequest{
			Name:         m.Name,
			Role:         m.Role,
			Color:        m.Color,
			Phone:        m.Phone,
			Email:        m.Email,
			Availability: toDateSet(m.Availability),
		})
		if err != nil {
			return res, fmt.Errorf("team member %q: %w", m.Name, err)
		}
		ids[key] = created.ID
		res.MembersCreated++
	}

	titles := make(map[string]bool)
	for _, j := range store.Jobs.Jobs() {
		titles[strings.ToLower(j.Title)] = true
	}

	for _, j := range seed.Jobs {
		key := strings.ToLower(strings.TrimSpace(j.Title))
		if titles[key] {
			res.JobsSkipped++
			continue
		}

		var team entities.IDSet
		for _, name := range j.Team {
			id, ok := ids[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return res, fmt.Errorf("job %q: unknown team member %q", j.Title, name)
			}
			team = team.Add(id)
		}

		status := entities.JobStatus(j.Status)
		if status == "" {
			status = entities.JobStatusPending
		}

		created, err := store.Jobs.AddJob(ctx, ports.CreateJobRequest{
			Title:        j.Title,
			Status:       status,
			Deadline:     entities.DateKey(j.Deadline),
			Description:  j.Description,
			Color:        j.Color,
			AssignedTeam: team,
			Schedule:     toDateSet(j.Schedule),
		})
		if err != nil {
			return res, fmt.Errorf("job %q: %w", j.Title, err)
		}
		for _, text := range j.Todos {
			if _, err := store.Jobs.AddTodoItem(ctx, created.ID, text); err != nil {
				return res, fmt.Errorf("job %q todo %q: %w", j.Title, text, err)
			}
		}
		titles[key] = true
		res.JobsCreated++
	}

	return res, nil
}

func toDateSet(days []string) entities.DateSet {
	out := make(entities.DateSet, 0, len(days))
	for _, d := range days {
		out = append(out, entities.DateKey(d))
	}
	return out
}
