// Package config loads matchd's YAML configuration: the registered
// queues and the Runner's tick budgets, validated into typed structs
// at load time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/M1tsumi/MatchForge-SDK/pkg/merr"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/runner"
)

// PersistenceKind selects which persistence_ports.Store adapter to wire.
type PersistenceKind string

const (
	PersistenceMemory PersistenceKind = "memory"
	PersistenceSQLite PersistenceKind = "sqlite"
)

// RunnerConfig is the YAML-facing shape of runner.Config, using a
// plain integer millisecond field so the file stays readable.
type RunnerConfig struct {
	TickIntervalMS    int  `yaml:"tick_interval_ms"`
	MaxMatchesPerTick int  `yaml:"max_matches_per_tick"`
	AutoDispatch      bool `yaml:"auto_dispatch"`
}

func (r RunnerConfig) ToRunnerConfig() runner.Config {
	return runner.Config{
		TickInterval:      time.Duration(r.TickIntervalMS) * time.Millisecond,
		MaxMatchesPerTick: r.MaxMatchesPerTick,
		AutoDispatch:      r.AutoDispatch,
	}
}

// Config is the root of matchd's YAML configuration file.
type Config struct {
	Persistence PersistenceKind            `yaml:"persistence"`
	SQLitePath  string                     `yaml:"sqlite_path"`
	Runner      RunnerConfig               `yaml:"runner"`
	Queues      []queue_entities.QueueConfig `yaml:"queues"`
}

// Load reads and parses a matchd config file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Persistence == "" {
		c.Persistence = PersistenceMemory
	}
	if c.Persistence != PersistenceMemory && c.Persistence != PersistenceSQLite {
		return merr.NewInvalidConfiguration("persistence", fmt.Sprintf("unknown kind %q", c.Persistence))
	}
	if c.Persistence == PersistenceSQLite && c.SQLitePath == "" {
		return merr.NewInvalidConfiguration("sqlite_path", "required when persistence is sqlite")
	}
	if c.Runner.TickIntervalMS <= 0 {
		c.Runner.TickIntervalMS = 1000
	}
	if c.Runner.MaxMatchesPerTick <= 0 {
		c.Runner.MaxMatchesPerTick = 100
	}
	if len(c.Queues) == 0 {
		return merr.NewInvalidConfiguration("queues", "at least one queue must be configured")
	}
	return nil
}
