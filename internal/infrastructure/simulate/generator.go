package simulate

import (
	"math/rand"

	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/domain/vending"
)

// Generator produces a random but seed-deterministic batch of vending events
// over a fleet of machines. Demo glue: real deployments would publish events
// from actual machine telemetry.
type Generator struct {
	rng *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Batch returns n events spread across the given machines. Check events
// report the projected stock after the preceding generated events, so a run
// of sales on one machine yields low-level checks for it.
func (g *Generator) Batch(machines []*vending.Machine, n int) []pubsub.Event {
	if len(machines) == 0 || n <= 0 {
		return nil
	}

	projected := make(map[string]int, len(machines))
	for _, m := range machines {
		projected[m.ID] = m.Stock
	}

	events := make([]pubsub.Event, 0, n)
	for i := 0; i < n; i++ {
		m := machines[g.rng.Intn(len(machines))]
		switch g.rng.Intn(3) {
		case 0:
			qty := 1 + g.rng.Intn(3)
			projected[m.ID] -= qty
			if projected[m.ID] < 0 {
				projected[m.ID] = 0
			}
			events = append(events, vending.NewSaleEvent(m.ID, qty))
		case 1:
			qty := 1 + g.rng.Intn(5)
			projected[m.ID] += qty
			events = append(events, vending.NewRefillEvent(m.ID, qty))
		default:
			level := vending.LevelOK
			if projected[m.ID] < vending.LowThreshold {
				level = vending.LevelLow
			}
			events = append(events, vending.NewStockCheckEvent(m.ID, level))
		}
	}
	return events
}
