// pkg/config/config_test.go
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

func TestWorldBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldSize = 250

	bounds := cfg.WorldBounds()
	if bounds.X != 0 || bounds.Y != 0 {
		t.Errorf("WorldBounds() origin = (%g, %g), expected (0, 0)", bounds.X, bounds.Y)
	}
	if bounds.Width != 250 || bounds.Height != 250 {
		t.Errorf("WorldBounds() size = %gx%g, expected 250x250", bounds.Width, bounds.Height)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimConfig)
	}{
		{
			name:   "zero_world_size",
			mutate: func(c *SimConfig) { c.WorldSize = 0 },
		},
		{
			name:   "negative_world_size",
			mutate: func(c *SimConfig) { c.WorldSize = -100 },
		},
		{
			name:   "zero_tick_rate",
			mutate: func(c *SimConfig) { c.TickRate = 0 },
		},
		{
			name:   "zero_index_capacity",
			mutate: func(c *SimConfig) { c.Index.Capacity = 0 },
		},
		{
			name:   "negative_index_max_depth",
			mutate: func(c *SimConfig) { c.Index.MaxDepth = -1 },
		},
		{
			name:   "zero_damping",
			mutate: func(c *SimConfig) { c.Resolver.Damping = 0 },
		},
		{
			name:   "damping_above_one",
			mutate: func(c *SimConfig) { c.Resolver.Damping = 1.5 },
		},
		{
			name:   "negative_min_speed",
			mutate: func(c *SimConfig) { c.Resolver.MinSpeed = -1 },
		},
		{
			name:   "negative_jitter",
			mutate: func(c *SimConfig) { c.Resolver.MaxJitter = -0.1 },
		},
		{
			name:   "negative_spawn_rate",
			mutate: func(c *SimConfig) { c.Spawn.Rate = -5 },
		},
		{
			name:   "zero_particle_radius",
			mutate: func(c *SimConfig) { c.Spawn.Radius = 0 },
		},
		{
			name:   "negative_particle_cap",
			mutate: func(c *SimConfig) { c.Spawn.MaxParticles = -1 },
		},
		{
			name:   "zero_probe_radius",
			mutate: func(c *SimConfig) { c.Probe.Radius = 0 },
		},
		{
			name:   "zero_resource_memory_limit",
			mutate: func(c *SimConfig) { c.Resources.MaxMemoryMB = 0 },
		},
		{
			name:   "zero_resource_check_interval",
			mutate: func(c *SimConfig) { c.Resources.CheckIntervalSeconds = 0 },
		},
		{
			name:   "zero_resource_shutdown_timeout",
			mutate: func(c *SimConfig) { c.Resources.ShutdownTimeoutSeconds = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid configuration")
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldSize = 640
	cfg.Index.Capacity = 6
	cfg.Resolver.Damping = 0.7
	cfg.Resolver.Seed = 42
	cfg.Spawn.MaxParticles = 500

	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("LoadConfig() succeeded on a missing file")
		}
	})

	t.Run("malformed_json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() succeeded on malformed JSON")
		}
	})

	t.Run("invalid_values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.json")
		if err := os.WriteFile(path, []byte(`{"worldSize": -1}`), 0o644); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() accepted an invalid configuration")
		}
	})

	t.Run("missing_resources_section", func(t *testing.T) {
		// A file without a resources block would hand the monitoring loop a
		// zero check interval, which panics time.NewTicker. It must be
		// rejected at load time instead.
		cfg := DefaultConfig()
		cfg.Resources = ResourceConfig{}
		data, err := json.Marshal(cfg)
		if err != nil {
			t.Fatalf("Marshal() failed: %v", err)
		}
		path := filepath.Join(t.TempDir(), "noresources.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() accepted a configuration with no resource limits")
		}
	})
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Run("overrides_applied", func(t *testing.T) {
		t.Setenv(EnvWorldSize, "2000")
		t.Setenv(EnvIndexCapacity, "16")
		t.Setenv(EnvDamping, "0.5")
		t.Setenv(EnvMaxParticles, "750")

		cfg := DefaultConfig()
		if err := ApplyEnvironmentOverrides(cfg); err != nil {
			t.Fatalf("ApplyEnvironmentOverrides() failed: %v", err)
		}

		if cfg.WorldSize != 2000 {
			t.Errorf("WorldSize = %g, expected 2000", cfg.WorldSize)
		}
		if cfg.Index.Capacity != 16 {
			t.Errorf("Index.Capacity = %d, expected 16", cfg.Index.Capacity)
		}
		if cfg.Resolver.Damping != 0.5 {
			t.Errorf("Resolver.Damping = %g, expected 0.5", cfg.Resolver.Damping)
		}
		if cfg.Spawn.MaxParticles != 750 {
			t.Errorf("Spawn.MaxParticles = %d, expected 750", cfg.Spawn.MaxParticles)
		}
		// Untouched fields keep their defaults.
		if cfg.TickRate != 60 {
			t.Errorf("TickRate = %d, expected default 60", cfg.TickRate)
		}
	})

	t.Run("unparseable_value", func(t *testing.T) {
		t.Setenv(EnvTickRate, "fast")

		cfg := DefaultConfig()
		if err := ApplyEnvironmentOverrides(cfg); err == nil {
			t.Error("ApplyEnvironmentOverrides() accepted an unparseable value")
		}
	})

	t.Run("invalid_after_merge", func(t *testing.T) {
		t.Setenv(EnvDamping, "2.5")

		cfg := DefaultConfig()
		if err := ApplyEnvironmentOverrides(cfg); err == nil {
			t.Error("ApplyEnvironmentOverrides() accepted a damping outside (0, 1]")
		}
	})
}
