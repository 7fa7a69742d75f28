package memory

import (
	"context"
	"errors"
	"testing"

	domain "github.com/vendtrack/vendtrack/internal/domain/vending"
)

func TestGetUnknownMachine(t *testing.T) {
	repo := NewMachineRepository()
	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveAndGetClones(t *testing.T) {
	repo := NewMachineRepository()
	m, err := domain.NewMachine("m-1", 5)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	if err := repo.Save(context.Background(), m); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the saved original must not leak into the store.
	m.Stock = 0

	got, err := repo.Get(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("stock %d, want 5", got.Stock)
	}

	// Nor must mutating a read copy.
	got.Stock = 99
	again, err := repo.Get(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Stock != 5 {
		t.Fatalf("stock %d after mutating a read copy, want 5", again.Stock)
	}
}

func TestAllSortedByID(t *testing.T) {
	repo := NewMachineRepository()
	for _, id := range []string{"m-3", "m-1", "m-2"} {
		m, err := domain.NewMachine(id, 1)
		if err != nil {
			t.Fatalf("new machine: %v", err)
		}
		if err := repo.Save(context.Background(), m); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	want := []string{"m-1", "m-2", "m-3"}
	if len(all) != len(want) {
		t.Fatalf("got %d machines, want %d", len(all), len(want))
	}
	for i, m := range all {
		if m.ID != want[i] {
			t.Fatalf("machine %d is %q, want %q", i, m.ID, want[i])
		}
	}
}
