package vending

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, machineID string) (*Machine, error)
	Save(ctx context.Context, m *Machine) error
	All(ctx context.Context) ([]*Machine, error)
}
