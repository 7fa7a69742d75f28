package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "machines: 5\nevents: 40\nseed: 9\ninitial_stock: 8\nmetrics_addr: :9999\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Machines != 5 || cfg.Events != 40 || cfg.Seed != 9 || cfg.InitialStock != 8 || cfg.MetricsAddr != ":9999" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.ServiceName != "vendtrack" {
		t.Fatalf("service name %q, want default", cfg.ServiceName)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "machines=2\nevents=10\nseed=3\nservice_name=\"vt\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Machines != 2 || cfg.Events != 10 || cfg.Seed != 3 || cfg.ServiceName != "vt" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"machines":4,"events":15,"env":"prod"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Machines != 4 || cfg.Events != 15 || cfg.Env != "prod" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := Load(filepath.Join(d, "missing.yaml")); err == nil {
		t.Fatal("expected error on missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "vt-env")
	t.Setenv("SEED", "77")
	t.Setenv("METRICS_ADDR", ":2112")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.ServiceName != "vt-env" {
		t.Fatalf("service name %q, want vt-env", cfg.ServiceName)
	}
	if cfg.Seed != 77 {
		t.Fatalf("seed %d, want 77", cfg.Seed)
	}
	if cfg.MetricsAddr != ":2112" {
		t.Fatalf("metrics addr %q, want :2112", cfg.MetricsAddr)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := cfg
	bad.Machines = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero machines")
	}

	bad = cfg
	bad.Events = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for negative events")
	}

	bad = cfg
	bad.InitialStock = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for negative initial stock")
	}
}
