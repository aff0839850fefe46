package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

const defaultMaxRuns = 100

var (
	// ErrNotFound is returned when no run is stored under the requested id.
	ErrNotFound = errors.New("run not found")
	// ErrInvalidRun indicates the run is missing its id.
	ErrInvalidRun = errors.New("run id must not be empty")
)

// Shortfall records the teams of one size an assignment could not form.
type Shortfall struct {
	TeamSize  int `json:"teamSize"`
	Requested int `json:"requested"`
	Missing   int `json:"missing"`
}

// Run is the stored outcome of one assignment.
type Run struct {
	ID         string           `json:"runId"`
	Strategy   string           `json:"strategy"`
	CreatedAt  time.Time        `json:"createdAt"`
	Valid      bool             `json:"valid"`
	Score      int              `json:"score"`
	Solution   problem.Solution `json:"solution"`
	Shortfalls []Shortfall      `json:"shortfalls,omitempty"`
	Duration   time.Duration    `json:"duration"`
}

// Storage keeps assignment runs for later retrieval.
type Storage interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns up to limit runs, newest first. A non-positive limit returns all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// MemoryStorage keeps the most recent runs in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	maxRuns int
	runs    map[string]Run
	order   []string
}

// NewMemoryStorage creates storage retaining at most maxRuns runs; the oldest
// run is evicted first. A non-positive maxRuns selects the default.
func NewMemoryStorage(maxRuns int) *MemoryStorage {
	if maxRuns <= 0 {
		maxRuns = defaultMaxRuns
	}
	return &MemoryStorage{
		maxRuns: maxRuns,
		runs:    make(map[string]Run, maxRuns),
	}
}

// SaveRun stores a copy of run, replacing any run with the same id.
func (s *MemoryStorage) SaveRun(_ context.Context, run Run) error {
	if run.ID == "" {
		return ErrInvalidRun
	}
	run = cloneRun(run)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == run.ID })
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)

	for len(s.order) > s.maxRuns {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// GetRun returns a copy of the stored run.
func (s *MemoryStorage) GetRun(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return cloneRun(run), nil
}

func (s *MemoryStorage) ListRuns(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]Run, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneRun(s.runs[s.order[i]]))
	}
	return out, nil
}

func cloneRun(run Run) Run {
	out := run
	out.Shortfalls = slices.Clone(run.Shortfalls)
	out.Solution = problem.Solution{Deliveries: make([]problem.Delivery, len(run.Solution.Deliveries))}
	for i, d := range run.Solution.Deliveries {
		out.Solution.Deliveries[i] = problem.Delivery{TeamSize: d.TeamSize, PizzaIDs: slices.Clone(d.PizzaIDs)}
	}
	return out
}
