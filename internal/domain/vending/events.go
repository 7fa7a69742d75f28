package vending

import "time"

// Event kinds routed by the pub-sub registry.
const (
	KindSale   = "sale"
	KindRefill = "refill"
	KindCheck  = "check"
)

// StockLevel is the sub-discriminant carried by check events, replacing
// runtime type inspection of two event shapes sharing one kind.
type StockLevel string

const (
	LevelLow StockLevel = "low"
	LevelOK  StockLevel = "ok"
)

// SaleEvent is emitted when a machine dispenses items.
type SaleEvent struct {
	MachineID  string
	Quantity   int
	OccurredAt time.Time
}

func (SaleEvent) Kind() string       { return KindSale }
func (e SaleEvent) SourceID() string { return e.MachineID }

func NewSaleEvent(machineID string, quantity int) SaleEvent {
	return SaleEvent{
		MachineID:  machineID,
		Quantity:   quantity,
		OccurredAt: time.Now().UTC(),
	}
}

// RefillEvent is emitted when an operator restocks a machine.
type RefillEvent struct {
	MachineID  string
	Quantity   int
	OccurredAt time.Time
}

func (RefillEvent) Kind() string       { return KindRefill }
func (e RefillEvent) SourceID() string { return e.MachineID }

func NewRefillEvent(machineID string, quantity int) RefillEvent {
	return RefillEvent{
		MachineID:  machineID,
		Quantity:   quantity,
		OccurredAt: time.Now().UTC(),
	}
}

// StockCheckEvent is emitted by a stock inspection, reporting whether the
// machine's level is below LowThreshold.
type StockCheckEvent struct {
	MachineID  string
	Level      StockLevel
	OccurredAt time.Time
}

func (StockCheckEvent) Kind() string       { return KindCheck }
func (e StockCheckEvent) SourceID() string { return e.MachineID }

func NewStockCheckEvent(machineID string, level StockLevel) StockCheckEvent {
	return StockCheckEvent{
		MachineID:  machineID,
		Level:      level,
		OccurredAt: time.Now().UTC(),
	}
}
