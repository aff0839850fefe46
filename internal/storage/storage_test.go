package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

func sampleRun(id string) Run {
	return Run{
		ID:        id,
		Strategy:  "greedy",
		CreatedAt: time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		Valid:     true,
		Score:     65,
		Solution: problem.Solution{Deliveries: []problem.Delivery{
			{TeamSize: 2, PizzaIDs: []int{1, 4}},
		}},
		Shortfalls: []Shortfall{{TeamSize: 4, Requested: 1, Missing: 1}},
	}
}

func TestMemoryStorageSaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage(0)
	if err := store.SaveRun(ctx, sampleRun("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetRun(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 65 || len(got.Solution.Deliveries) != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}

	// ensure mutation safety
	got.Solution.Deliveries[0].PizzaIDs[0] = 999
	again, err := store.GetRun(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Solution.Deliveries[0].PizzaIDs[0] != 1 {
		t.Fatalf("expected defensive copy, got %v", again.Solution.Deliveries[0].PizzaIDs)
	}
}

func TestMemoryStorageUnknownRun(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryStorage(0).GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorageRejectsEmptyID(t *testing.T) {
	t.Parallel()

	if err := NewMemoryStorage(0).SaveRun(context.Background(), Run{}); !errors.Is(err, ErrInvalidRun) {
		t.Fatalf("expected ErrInvalidRun, got %v", err)
	}
}

func TestMemoryStorageEvictsOldest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage(2)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveRun(ctx, sampleRun(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := store.GetRun(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest run to be evicted, got %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("expected newest first [c b], got %v", runIDs(runs))
	}
}

func TestMemoryStorageResaveMovesToFront(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage(0)
	for _, id := range []string{"a", "b", "a"} {
		if err := store.SaveRun(ctx, sampleRun(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "a" {
		t.Fatalf("expected [a], got %v", runIDs(runs))
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(8)
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			if err := store.SaveRun(ctx, sampleRun(fmt.Sprintf("run-%d", offset))); err != nil {
				t.Errorf("SaveRun failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.ListRuns(ctx, 4); err != nil {
				t.Errorf("ListRuns failed: %v", err)
			}
		}()
	}

	wg.Wait()

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 8 {
		t.Fatalf("expected 8 retained runs, got %d", len(runs))
	}
}

func runIDs(runs []Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
