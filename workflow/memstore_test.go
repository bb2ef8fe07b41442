package workflow

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// The in-memory stores clone through JSON on every read and write, so each
// round trip through them exercises the same serialize/deserialize path a
// real backing store would.

func cloneJob(j *entity.Job) *entity.Job {
	data, err := json.Marshal(j)
	if err != nil {
		panic(err)
	}
	var out entity.Job
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

type memJobStore struct {
	mu        sync.Mutex
	jobs      map[string]*entity.Job
	updateErr error
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*entity.Job)}
}

func (s *memJobStore) List(ctx context.Context) ([]entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *cloneJob(j))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memJobStore) Get(ctx context.Context, id string) (*entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return cloneJob(j), nil
}

func (s *memJobStore) Create(ctx context.Context, job *entity.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *memJobStore) Update(ctx context.Context, job *entity.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *memJobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

type memMaterialStore struct {
	mu        sync.Mutex
	materials map[uuid.UUID]*entity.Material
}

func newMemMaterialStore() *memMaterialStore {
	return &memMaterialStore{materials: make(map[uuid.UUID]*entity.Material)}
}

func (s *memMaterialStore) List(ctx context.Context) ([]entity.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Material, 0, len(s.materials))
	for _, m := range s.materials {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memMaterialStore) Get(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// DecrementBatch re-checks each line as it applies, so repeated materials
// are charged cumulatively; a miss rolls back the lines already applied.
func (s *memMaterialStore) DecrementBatch(ctx context.Context, lines []StockDecrement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, line := range lines {
		m, ok := s.materials[line.MaterialID]
		if !ok || m.Stock < line.Quantity {
			for _, undo := range lines[:i] {
				s.materials[undo.MaterialID].Stock += undo.Quantity
			}
			return &Error{
				Kind:    KindConflict,
				Code:    CodeInsufficientStock,
				Message: "stock changed concurrently, withdrawal aborted",
				Items: []ItemError{{
					MaterialID: line.MaterialID,
					Code:       CodeInsufficientStock,
					Requested:  line.Quantity,
				}},
			}
		}
		m.Stock -= line.Quantity
	}
	return nil
}

type memUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*entity.User
	incErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*entity.User)}
}

func (s *memUserStore) ListByRole(ctx context.Context, role entity.UserRole) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *memUserStore) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) IncrementJobs(ctx context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incErr != nil {
		return s.incErr
	}
	if u, ok := s.users[id]; ok {
		u.JobsThisMonth += delta
	}
	return nil
}

// testClock hands out a fixed UTC instant and can be stepped forward so
// successive mutations get distinct timestamps.
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newTestClock() *testClock {
	return &testClock{cur: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type fixture struct {
	engine    *Engine
	jobs      *memJobStore
	materials *memMaterialStore
	users     *memUserStore
	clock     *testClock
	actor     Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		jobs:      newMemJobStore(),
		materials: newMemMaterialStore(),
		users:     newMemUserStore(),
		clock:     newTestClock(),
		actor:     Actor{ID: uuid.New().String(), Name: "An Admin", Role: entity.UserRoleAdmin},
	}
	f.engine = New(f.jobs, f.materials, f.users, WithClock(f.clock.Now))
	return f
}

func (f *fixture) addUser(t *testing.T, role entity.UserRole, name string, jobsThisMonth int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.users.users[id] = &entity.User{
		ID:            id,
		Name:          name,
		Role:          role,
		JobsThisMonth: jobsThisMonth,
	}
	return id
}

func (f *fixture) addMaterial(t *testing.T, name string, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.materials.materials[id] = &entity.Material{
		ID:    id,
		Name:  name,
		Unit:  "pcs",
		Stock: stock,
	}
	return id
}

func (f *fixture) createJob(t *testing.T, start, end time.Time) *entity.Job {
	t.Helper()
	job, _, err := f.engine.CreateJob(context.Background(), CreateJobInput{
		Title:     "Install substation cabling",
		JobType:   "installation",
		StartDate: start,
		EndDate:   end,
	}, f.actor)
	require.NoError(t, err)
	return job
}

// createAckedJob creates an acknowledged job with one task per title. The
// first task starts in-progress, the rest pending.
func (f *fixture) createAckedJob(t *testing.T, taskTitles ...string) *entity.Job {
	t.Helper()
	ctx := context.Background()
	job := f.createJob(t,
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	)
	_, _, err := f.engine.AcknowledgeJob(ctx, job.ID, f.actor)
	require.NoError(t, err)
	for _, title := range taskTitles {
		_, _, err := f.engine.AddTask(ctx, job.ID, title, "", f.actor)
		require.NoError(t, err)
	}
	fresh, err := f.engine.GetJob(ctx, job.ID)
	require.NoError(t, err)
	return fresh
}
