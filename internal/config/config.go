// Package config loads the shared YAML configuration for the master,
// worker and CLI processes.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

type Config struct {
	Etcd      EtcdConfig      `yaml:"etcd"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Worker    WorkerConfig    `yaml:"worker"`
	LogLevel  string          `yaml:"log_level"`
}

type EtcdConfig struct {
	Endpoints []string `yaml:"endpoints"`
}

type HeartbeatConfig struct {
	// Interval is how often a worker re-registers itself; TTL is how
	// stale a heartbeat may be before the node counts as dead.
	Interval string `yaml:"interval"`
	TTL      string `yaml:"ttl"`
}

type WorkerConfig struct {
	// Address this node advertises; empty means discover the outbound
	// address at startup.
	Address string             `yaml:"address"`
	CPU     float64            `yaml:"cpu"`
	GPU     float64            `yaml:"gpu"`
	Custom  map[string]float64 `yaml:"custom"`
}

func Default() Config {
	return Config{
		Etcd:      EtcdConfig{Endpoints: []string{"localhost:2379"}},
		Heartbeat: HeartbeatConfig{Interval: "3s", TTL: "10s"},
		Worker:    WorkerConfig{CPU: float64(runtime.NumCPU())},
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. A missing path ("") just returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.HeartbeatInterval(); err != nil {
		return cfg, err
	}
	if _, err := cfg.HeartbeatTTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) HeartbeatInterval() (time.Duration, error) {
	return parseDuration("heartbeat.interval", c.Heartbeat.Interval, 3*time.Second)
}

func (c Config) HeartbeatTTL() (time.Duration, error) {
	return parseDuration("heartbeat.ttl", c.Heartbeat.TTL, 10*time.Second)
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be > 0", field)
	}
	return d, nil
}
