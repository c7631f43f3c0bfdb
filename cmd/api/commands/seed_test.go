package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/notify"
	"github.com/amire/crewboard/internal/ports"
	"github.com/amire/crewboard/internal/registry"
)

type memoryAPI struct {
	jobs    []entities.Job
	members []entities.Member
	nextID  int64
}

func (m *memoryAPI) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryAPI) ListJobs(ctx context.Context) ([]entities.Job, error) {
	return append([]entities.Job(nil), m.jobs...), nil
}

func (m *memoryAPI) CreateJob(ctx context.Context, req ports.CreateJobRequest) (entities.Job, error) {
	j := entities.Job{
		ID: m.id(), Title: req.Title, Status: req.Status, Deadline: req.Deadline,
		Description: req.Description, Color: req.Color, AssignedTeam: req.AssignedTeam, Schedule: req.Schedule,
	}
	m.jobs = append(m.jobs, j)
	return j, nil
}

func (m *memoryAPI) UpdateJob(ctx context.Context, job entities.Job) (entities.Job, error) {
	for i := range m.jobs {
		if m.jobs[i].ID == job.ID {
			m.jobs[i] = job
			return job, nil
		}
	}
	return entities.Job{}, &entities.RequestError{Op: "PUT /jobs", Status: 404}
}

func (m *memoryAPI) DeleteJob(ctx context.Context, id int64) error { return nil }

func (m *memoryAPI) ListMembers(ctx context.Context) ([]entities.Member, error) {
	return append([]entities.Member(nil), m.members...), nil
}

func (m *memoryAPI) CreateMember(ctx context.Context, req ports.CreateMemberRequest) (entities.Member, error) {
	mem := entities.Member{
		ID: m.id(), Name: req.Name, Role: req.Role, Color: req.Color,
		Phone: req.Phone, Email: req.Email, Availability: req.Availability,
	}
	m.members = append(m.members, mem)
	return mem, nil
}

func (m *memoryAPI) UpdateMember(ctx context.Context, member entities.Member) (entities.Member, error) {
	return member, nil
}

func (m *memoryAPI) DeleteMember(ctx context.Context, id int64) error { return nil }

const sampleSeed = `
team:
  - name: Ana
    role: Roofer
    color: "#ff0000"
    availability: ["2025-09-01", "2025-09-02"]
  - name: Ben
    email: ben@example.com
jobs:
  - title: Roof repair
    status: in_progress
    deadline: "2025-09-05"
    team: [Ana, ben]
    schedule: ["2025-09-01"]
    todos:
      - Buy shingles
      - Rent ladder
  - title: Fence
    deadline: "2025-09-20"
`

func loadedTestStore(t *testing.T, api *memoryAPI) *registry.Store {
	t.Helper()
	store := registry.NewStore(api, notify.Discard)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)
	require.Len(t, seed.Team, 2)
	require.Len(t, seed.Jobs, 2)
	assert.Equal(t, []string{"2025-09-01", "2025-09-02"}, seed.Team[0].Availability)
	assert.Equal(t, []string{"Buy shingles", "Rent ladder"}, seed.Jobs[0].Todos)

	_, err = parseSeed(strings.NewReader("team:\n  - nickname: x\n"))
	assert.Error(t, err)

	empty, err := parseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Jobs)
}

func TestApplySeed(t *testing.T) {
	api := &memoryAPI{}
	store := loadedTestStore(t, api)
	seed, err := parseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	res, err := applySeed(context.Background(), store, seed)
	require.NoError(t, err)
	assert.Equal(t, seedResult{MembersCreated: 2, JobsCreated: 2}, res)

	members := store.Team.Members()
	require.Len(t, members, 2)
	assert.NotEmpty(t, members[1].Color, "a color is picked when none is given")

	jobs := store.Jobs.Jobs()
	require.Len(t, jobs, 2)
	roof := jobs[0]
	assert.Equal(t, entities.IDSet{members[0].ID, members[1].ID}, roof.AssignedTeam)
	require.Len(t, roof.TodoList, 2)
	assert.Equal(t, "Buy shingles", roof.TodoList[0].Text)

	fence := jobs[1]
	assert.Equal(t, entities.JobStatusPending, fence.Status)
	assert.Equal(t, entities.DefaultJobDescription, fence.Description)
}

func TestApplySeedSkipsExisting(t *testing.T) {
	api := &memoryAPI{}
	store := loadedTestStore(t, api)
	seed, err := parseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	_, err = applySeed(context.Background(), store, seed)
	require.NoError(t, err)

	res, err := applySeed(context.Background(), store, seed)
	require.NoError(t, err)
	assert.Equal(t, seedResult{MembersSkipped: 2, JobsSkipped: 2}, res)
	assert.Len(t, api.jobs, 2)
}

func TestApplySeedUnknownMember(t *testing.T) {
	store := loadedTestStore(t, &memoryAPI{})
	seed := seedFile{Jobs: []seedJob{{Title: "Gutter", Deadline: "2025-09-09", Team: []string{"Zed"}}}}

	res, err := applySeed(context.Background(), store, seed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Zed")
	assert.Zero(t, res.JobsCreated)
}

func TestApplySeedInvalidJob(t *testing.T) {
	store := loadedTestStore(t, &memoryAPI{})
	seed := seedFile{Jobs: []seedJob{{Title: "Gutter", Deadline: "next week"}}}

	_, err := applySeed(context.Background(), store, seed)
	require.Error(t, err)
	assert.True(t, entities.IsValidation(err))
}
