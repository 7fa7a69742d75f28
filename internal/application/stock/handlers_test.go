package stock

import (
	"context"
	"testing"

	"github.com/vendtrack/vendtrack/internal/domain/vending"
	"github.com/vendtrack/vendtrack/internal/infrastructure/memory"
	"github.com/vendtrack/vendtrack/internal/infrastructure/observability/telemetry"
	"github.com/vendtrack/vendtrack/internal/observability"
)

// captureLogger records log message names so tests can count notifications.
type captureLogger struct {
	msgs *[]string
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{msgs: &[]string{}}
}

func (c *captureLogger) record(msg string) { *c.msgs = append(*c.msgs, msg) }

func (c *captureLogger) count(msg string) int {
	n := 0
	for _, m := range *c.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

func (c *captureLogger) With(...observability.Field) observability.Logger { return c }
func (c *captureLogger) Debug(msg string, _ ...observability.Field) { c.record(msg) }
func (c *captureLogger) Info(msg string, _ ...observability.Field)  { c.record(msg) }
func (c *captureLogger) Warn(msg string, _ ...observability.Field)  { c.record(msg) }
func (c *captureLogger) Error(msg string, _ ...observability.Field) { c.record(msg) }

var _ observability.Logger = (*captureLogger)(nil)

func seedRepo(t *testing.T, stocks map[string]int) *memory.MachineRepository {
	t.Helper()
	repo := memory.NewMachineRepository()
	for id, stock := range stocks {
		m, err := vending.NewMachine(id, stock)
		if err != nil {
			t.Fatalf("new machine %s: %v", id, err)
		}
		if err := repo.Save(context.Background(), m); err != nil {
			t.Fatalf("save machine %s: %v", id, err)
		}
	}
	return repo
}

func stockOf(t *testing.T, repo *memory.MachineRepository, id string) int {
	t.Helper()
	m, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get machine %s: %v", id, err)
	}
	return m.Stock
}

func TestSaleHandlerDeductsBySourceID(t *testing.T) {
	repo := seedRepo(t, map[string]int{"m-1": 5, "m-2": 5})
	h := NewSaleHandler(repo, nil)

	if err := h.Handle(context.Background(), vending.NewSaleEvent("m-2", 2)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := stockOf(t, repo, "m-2"); got != 3 {
		t.Fatalf("m-2 stock %d, want 3", got)
	}
	if got := stockOf(t, repo, "m-1"); got != 5 {
		t.Fatalf("m-1 stock %d, want 5 (must not be touched)", got)
	}
}

func TestSaleHandlerRejectsOversell(t *testing.T) {
	repo := seedRepo(t, map[string]int{"m-1": 1})
	h := NewSaleHandler(repo, nil)

	if err := h.Handle(context.Background(), vending.NewSaleEvent("m-1", 5)); err != nil {
		t.Fatalf("oversell must not fault the dispatch: %v", err)
	}
	if got := stockOf(t, repo, "m-1"); got != 1 {
		t.Fatalf("m-1 stock %d, want 1 (rejected sale must not mutate)", got)
	}
}

func TestSaleHandlerUnknownMachine(t *testing.T) {
	repo := seedRepo(t, nil)
	h := NewSaleHandler(repo, nil)

	if err := h.Handle(context.Background(), vending.NewSaleEvent("ghost", 1)); err == nil {
		t.Fatal("expected error for unknown machine")
	}
}

func TestSaleHandlerIgnoresOtherEvents(t *testing.T) {
	repo := seedRepo(t, map[string]int{"m-1": 5})
	h := NewSaleHandler(repo, nil)

	if err := h.Handle(context.Background(), vending.NewRefillEvent("m-1", 2)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := stockOf(t, repo, "m-1"); got != 5 {
		t.Fatalf("m-1 stock %d, want 5 (mismatched kind must be ignored)", got)
	}
}

func TestRefillHandlerAddsStock(t *testing.T) {
	repo := seedRepo(t, map[string]int{"m-1": 2})
	h := NewRefillHandler(repo, nil)

	if err := h.Handle(context.Background(), vending.NewRefillEvent("m-1", 3)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := stockOf(t, repo, "m-1"); got != 5 {
		t.Fatalf("m-1 stock %d, want 5", got)
	}
}

func TestWarningHandlerLatchesOnce(t *testing.T) {
	logs := newCaptureLogger()
	tel := telemetry.New(nil, logs, nil, nil)
	h := NewWarningHandler(tel)

	for i := 0; i < 3; i++ {
		if err := h.Handle(context.Background(), vending.NewStockCheckEvent("m-1", vending.LevelLow)); err != nil {
			t.Fatalf("handle low %d: %v", i, err)
		}
	}
	if got := logs.count("stock_low"); got != 1 {
		t.Fatalf("stock_low emitted %d times, want 1", got)
	}

	if err := h.Handle(context.Background(), vending.NewStockCheckEvent("m-1", vending.LevelOK)); err != nil {
		t.Fatalf("handle ok: %v", err)
	}
	if got := logs.count("stock_ok"); got != 1 {
		t.Fatalf("stock_ok emitted %d times, want 1", got)
	}

	// Further events of either level stay suppressed.
	_ = h.Handle(context.Background(), vending.NewStockCheckEvent("m-2", vending.LevelLow))
	_ = h.Handle(context.Background(), vending.NewStockCheckEvent("m-2", vending.LevelOK))
	if got := logs.count("stock_low") + logs.count("stock_ok"); got != 2 {
		t.Fatalf("notifications %d, want 2 (latches never reset)", got)
	}
}

func TestWarningHandlerIgnoresOtherEvents(t *testing.T) {
	logs := newCaptureLogger()
	h := NewWarningHandler(telemetry.New(nil, logs, nil, nil))

	if err := h.Handle(context.Background(), vending.NewSaleEvent("m-1", 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := logs.count("stock_low") + logs.count("stock_ok"); got != 0 {
		t.Fatalf("notifications %d, want 0", got)
	}
}
