package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactor.json"

	// DefaultAddress is the default listen address for the serve command.
	DefaultAddress = "localhost:8080"

	// DefaultMetricsNamespace is the default Prometheus metric namespace.
	DefaultMetricsNamespace = "reactor"

	// DefaultSnapshotDir is the default snapshot output directory.
	DefaultSnapshotDir = "snapshots"

	// DefaultMutationInterval is the default pause between scripted
	// mutations driven by the serve command.
	DefaultMutationInterval = "1s"
)

// Config represents the complete reactor.json configuration.
type Config struct {
	// Name is the project name shown in logs.
	Name string `json:"name,omitempty"`

	// Server contains serve command settings.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Snapshots contains snapshot sink settings.
	Snapshots SnapshotConfig `json:"snapshots,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains serve command settings.
type ServerConfig struct {
	// Address is the listen address, host:port.
	Address string `json:"address,omitempty"`

	// MutationInterval is the pause between scripted mutations, in
	// time.ParseDuration syntax (e.g. "500ms").
	MutationInterval string `json:"mutationInterval,omitempty"`
}

// MetricsConfig contains Prometheus metric settings.
type MetricsConfig struct {
	// Enabled controls whether the serve command exposes /metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metric name prefix.
	Namespace string `json:"namespace,omitempty"`
}

// SnapshotConfig contains snapshot sink settings.
type SnapshotConfig struct {
	// Dir is the local directory snapshots are written to. Ignored
	// when an S3 bucket is configured.
	Dir string `json:"dir,omitempty"`

	// S3Bucket switches the snapshot sink to S3 when set.
	S3Bucket string `json:"s3Bucket,omitempty"`

	// S3Prefix is the key prefix for snapshot objects.
	S3Prefix string `json:"s3Prefix,omitempty"`

	// S3Region is the bucket's region. Required when S3Bucket is set.
	S3Region string `json:"s3Region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "reactor",
		Server: ServerConfig{
			Address:          DefaultAddress,
			MutationInterval: DefaultMutationInterval,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Snapshots: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// reactor.json in the directory; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. A missing
// file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from, or "" when
// the config is all defaults.
func (c *Config) Path() string {
	return c.configPath
}

// Interval returns the parsed mutation interval.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.MutationInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid mutation interval %q: %w", c.Server.MutationInterval, err)
	}
	return d, nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "reactor"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.MutationInterval == "" {
		c.Server.MutationInterval = DefaultMutationInterval
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = DefaultSnapshotDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.Server.Address, err)
	}

	d, err := c.Interval()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("mutation interval must be positive, got %q", c.Server.MutationInterval)
	}

	if c.Snapshots.S3Bucket != "" && c.Snapshots.S3Region == "" {
		return fmt.Errorf("snapshots.s3Region is required when snapshots.s3Bucket is set")
	}

	return nil
}
