package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Server.MutationInterval != DefaultMutationInterval {
		t.Errorf("Server.MutationInterval = %q, want %q", cfg.Server.MutationInterval, DefaultMutationInterval)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true")
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if cfg.Snapshots.Dir != DefaultSnapshotDir {
		t.Errorf("Snapshots.Dir = %q, want %q", cfg.Snapshots.Dir, DefaultSnapshotDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing config falls back to defaults.
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want default %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "name": "orders",
  "server": {
    "address": "0.0.0.0:9000",
    "mutationInterval": "250ms"
  },
  "metrics": {
    "enabled": false
  },
  "snapshots": {
    "s3Bucket": "orders-snapshots",
    "s3Region": "us-east-1"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "orders" {
		t.Errorf("Name = %q, want %q", cfg.Name, "orders")
	}
	if cfg.Server.Address != "0.0.0.0:9000" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, "0.0.0.0:9000")
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	// Unset fields keep their defaults.
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want default %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if cfg.Snapshots.Dir != DefaultSnapshotDir {
		t.Errorf("Snapshots.Dir = %q, want default %q", cfg.Snapshots.Dir, DefaultSnapshotDir)
	}
	if cfg.Snapshots.S3Bucket != "orders-snapshots" {
		t.Errorf("Snapshots.S3Bucket = %q, want %q", cfg.Snapshots.S3Bucket, "orders-snapshots")
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}

	d, err := cfg.Interval()
	if err != nil {
		t.Fatalf("Interval() error = %v", err)
	}
	if d != 250*time.Millisecond {
		t.Errorf("Interval() = %v, want 250ms", d)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Server.Address = "localhost:9000"
	cfg.Snapshots.S3Bucket = "bucket"
	cfg.Snapshots.S3Region = "eu-west-1"

	// Save should fail without a load path.
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Server.Address != "localhost:9000" {
		t.Errorf("Server.Address = %q, want %q", loaded.Server.Address, "localhost:9000")
	}
	if loaded.Snapshots.S3Region != "eu-west-1" {
		t.Errorf("Snapshots.S3Region = %q, want %q", loaded.Snapshots.S3Region, "eu-west-1")
	}

	// Save after load writes to the same file.
	loaded.Name = "renamed"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	again, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if again.Name != "renamed" {
		t.Errorf("Name = %q, want %q", again.Name, "renamed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad address", func(c *Config) { c.Server.Address = "no-port" }, true},
		{"bad interval", func(c *Config) { c.Server.MutationInterval = "soon" }, true},
		{"zero interval", func(c *Config) { c.Server.MutationInterval = "0s" }, true},
		{"negative interval", func(c *Config) { c.Server.MutationInterval = "-1s" }, true},
		{"s3 bucket without region", func(c *Config) { c.Snapshots.S3Bucket = "b" }, true},
		{"s3 bucket with region", func(c *Config) {
			c.Snapshots.S3Bucket = "b"
			c.Snapshots.S3Region = "us-east-1"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
