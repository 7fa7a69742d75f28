package vending

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("vending: machine not found")
	ErrInvalidQuantity   = errors.New("vending: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("vending: insufficient stock")
)

// LowThreshold is the stock level below which a machine counts as low.
const LowThreshold = 3

type Machine struct {
	ID        string
	Stock     int
	UpdatedAt time.Time
}

func NewMachine(id string, stock int) (*Machine, error) {
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Machine{
		ID:        id,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (m *Machine) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > m.Stock {
		return ErrInsufficientStock
	}
	m.Stock -= quantity
	m.touch()
	return nil
}

func (m *Machine) Refill(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	m.Stock += quantity
	m.touch()
	return nil
}

func (m *Machine) LowStock() bool { return m.Stock < LowThreshold }

func (m *Machine) touch() {
	m.UpdatedAt = time.Now().UTC()
}
