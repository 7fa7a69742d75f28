package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/vendtrack/vendtrack/internal/domain/vending"
)

type MachineRepository struct {
	mu       sync.RWMutex
	machines map[string]*domain.Machine
}

func NewMachineRepository() *MachineRepository {
	return &MachineRepository{
		machines: make(map[string]*domain.Machine),
	}
}

func (r *MachineRepository) Get(ctx context.Context, machineID string) (*domain.Machine, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.machines[machineID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneMachine(m), nil
}

func (r *MachineRepository) Save(ctx context.Context, m *domain.Machine) error {
	_ = ctx
	if m == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.machines[m.ID] = cloneMachine(m)
	return nil
}

func (r *MachineRepository) All(ctx context.Context) ([]*domain.Machine, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, cloneMachine(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneMachine(m *domain.Machine) *domain.Machine {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}
