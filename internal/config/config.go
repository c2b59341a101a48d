// Package config holds the run configuration for a benchmark run. The
// configuration is loaded once at start (flags plus a few environment
// overrides) and is immutable for the duration of the run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for a run. The host default is a private-network address because
// the harness is pointed at lab deployments.
const (
	DefaultHost       = "192.168.0.231"
	DefaultPort       = 32082
	DefaultPolicy     = "P03"
	DefaultStartData  = "0123456789123"
	DefaultIterations = 100
	DefaultTimeout    = 10 * time.Second
	DefaultBatchSize  = 25
)

// Config is the full run configuration.
type Config struct {
	Host      string
	Port      int
	Policy    string
	StartData string

	Iterations int
	Timeout    time.Duration

	Verbose      bool
	ShowBodies   bool
	ShowProgress bool

	Bulk      bool
	BatchSize int
}

// Default returns a Config populated with the defaults above.
func Default() Config {
	return Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Policy:     DefaultPolicy,
		StartData:  DefaultStartData,
		Iterations: DefaultIterations,
		Timeout:    DefaultTimeout,
		BatchSize:  DefaultBatchSize,
	}
}

// ApplyEnvOverrides overlays PRBENCH_HOST, PRBENCH_PORT and PRBENCH_POLICY
// onto the config. Called before flag binding so explicit flags still win.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("PRBENCH_HOST"); host != "" {
		c.Host = host
	}
	if portStr := os.Getenv("PRBENCH_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			c.Port = port
		}
	}
	if policy := os.Getenv("PRBENCH_POLICY"); policy != "" {
		c.Policy = policy
	}
}

// Validate rejects configurations the run loop cannot work with. A
// non-numeric start value is not rejected here: the loop handles it and
// stops gracefully after the first iteration.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Policy == "" {
		return fmt.Errorf("policy must not be empty")
	}
	if c.StartData == "" {
		return fmt.Errorf("start data must not be empty")
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}
