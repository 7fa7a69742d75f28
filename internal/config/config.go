package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config drives the demo run: fleet size, event batch size, rng seed, and
// where (if anywhere) to expose metrics.
type Config struct {
	ServiceName  string `yaml:"service_name" toml:"service_name" json:"service_name"`
	Env          string `yaml:"env" toml:"env" json:"env"`
	Machines     int    `yaml:"machines" toml:"machines" json:"machines"`
	Events       int    `yaml:"events" toml:"events" json:"events"`
	Seed         int64  `yaml:"seed" toml:"seed" json:"seed"`
	InitialStock int    `yaml:"initial_stock" toml:"initial_stock" json:"initial_stock"`
	MetricsAddr  string `yaml:"metrics_addr" toml:"metrics_addr" json:"metrics_addr"`
}

func Default() Config {
	return Config{
		ServiceName:  "vendtrack",
		Env:          "dev",
		Machines:     3,
		Events:       20,
		Seed:         1,
		InitialStock: 5,
	}
}

// Load reads a config file, dispatching on the file extension
// (.yaml/.yml, .toml, .json). Fields absent from the file keep defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse toml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse json: %w", err)
		}
	default:
		return cfg, fmt.Errorf("config: unsupported extension %q", filepath.Ext(path))
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables on top of the current values.
func (c *Config) ApplyEnv() {
	c.ServiceName = getenvDefault("SERVICE_NAME", c.ServiceName)
	c.Env = getenvDefault("ENV", c.Env)
	c.MetricsAddr = getenvDefault("METRICS_ADDR", c.MetricsAddr)
	if v := os.Getenv("SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = seed
		}
	}
}

func (c Config) Validate() error {
	if c.Machines <= 0 {
		return errors.New("config: machines must be greater than zero")
	}
	if c.Events < 0 {
		return errors.New("config: events must not be negative")
	}
	if c.InitialStock < 0 {
		return errors.New("config: initial_stock must not be negative")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
