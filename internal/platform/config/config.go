// Package config holds the tunable parameters of the idle server.
// Values come from Default(), an optional YAML file, then IDLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the simulation and its transports.
type Config struct {
	// Simulation
	TickInterval     time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	AutosaveInterval time.Duration `yaml:"autosave_interval" env:"AUTOSAVE_INTERVAL"`
	TaskDuration     time.Duration `yaml:"task_duration" env:"TASK_DURATION"`
	TaskReward       float64       `yaml:"task_reward" env:"TASK_REWARD"`
	ClickValue       float64       `yaml:"click_value" env:"CLICK_VALUE"`
	CatalogPath      string        `yaml:"catalog_path" env:"CATALOG_PATH"`

	// Persistence
	DBPath   string `yaml:"db_path" env:"DB_PATH"`
	SaveSlot string `yaml:"save_slot" env:"SAVE_SLOT"`

	// Transport
	ListenAddr        string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	BroadcastBuffer   int           `yaml:"broadcast_buffer" env:"BROADCAST_BUFFER"`
	ClientSendBuffer  int           `yaml:"client_send_buffer" env:"CLIENT_SEND_BUFFER"`
	MinActionInterval time.Duration `yaml:"min_action_interval" env:"MIN_ACTION_INTERVAL"`
}

// Default returns sensible defaults for production.
func Default() *Config {
	return &Config{
		TickInterval:     100 * time.Millisecond,
		AutosaveInterval: 5 * time.Second,
		TaskDuration:     60 * time.Second,
		TaskReward:       100,
		ClickValue:       1,

		DBPath:   "idle.db",
		SaveSlot: "default",

		ListenAddr:        ":8080",
		BroadcastBuffer:   256, // Tick snapshots arrive 10x per second
		ClientSendBuffer:  64,  // Per WebSocket
		MinActionInterval: 20 * time.Millisecond,
	}
}

// LowResource returns minimal settings for development.
func LowResource() *Config {
	cfg := Default()
	cfg.TickInterval = 250 * time.Millisecond
	cfg.BroadcastBuffer = 16
	cfg.ClientSendBuffer = 8
	cfg.MinActionInterval = 100 * time.Millisecond
	return cfg
}

// ForProfile resolves a named preset.
func ForProfile(name string) (*Config, error) {
	switch name {
	case "", "default":
		return Default(), nil
	case "dev":
		return LowResource(), nil
	default:
		return nil, fmt.Errorf("unknown config profile %q", name)
	}
}

// Load applies the YAML file at path (if any) and then the environment on top of base.
func Load(base *Config, path string) (*Config, error) {
	cfg := *base

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "IDLE_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if c.AutosaveInterval <= 0 {
		errs = append(errs, errors.New("autosave_interval must be positive"))
	}
	if c.TaskDuration <= 0 {
		errs = append(errs, errors.New("task_duration must be positive"))
	}
	if c.TaskReward < 0 || c.ClickValue < 0 {
		errs = append(errs, errors.New("rewards must be non-negative"))
	}
	if c.SaveSlot == "" {
		errs = append(errs, errors.New("save_slot is required"))
	}
	if c.BroadcastBuffer < 1 || c.ClientSendBuffer < 1 {
		errs = append(errs, errors.New("channel buffers must be at least 1"))
	}
	return errors.Join(errs...)
}
