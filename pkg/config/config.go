// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// SimConfig bundles every tunable of a simulation run. The index and
// resolver never read process-wide state; their constructors receive the
// relevant section of this value explicitly.
type SimConfig struct {
	WorldSize float64        `json:"worldSize"`
	TickRate  int            `json:"tickRate"`
	Index     IndexConfig    `json:"index"`
	Resolver  ResolverConfig `json:"resolver"`
	Spawn     SpawnConfig    `json:"spawn"`
	Probe     ProbeConfig    `json:"probe"`
	Resources ResourceConfig `json:"resources"`
}

// IndexConfig contains spatial index configuration
type IndexConfig struct {
	// Capacity is the per-leaf point limit before subdivision.
	Capacity int `json:"capacity"`
	// MaxDepth is the subdivision ceiling; 0 selects the package default.
	MaxDepth int `json:"maxDepth"`
}

// ResolverConfig contains collision response configuration
type ResolverConfig struct {
	Damping   float64 `json:"damping"`
	MinSpeed  float64 `json:"minSpeed"`
	MaxJitter float64 `json:"maxJitter"`
	Seed      uint64  `json:"seed"`
}

// SpawnConfig contains particle spawning configuration
type SpawnConfig struct {
	// Rate is particles spawned per second.
	Rate float64 `json:"rate"`
	// Radius is the collision radius of spawned particles.
	Radius float64 `json:"radius"`
	// Speed is the initial speed of spawned particles.
	Speed float64 `json:"speed"`
	// MaxParticles caps the live population.
	MaxParticles int `json:"maxParticles"`
}

// ProbeConfig contains probe body configuration
type ProbeConfig struct {
	Radius float64 `json:"radius"`
	Speed  float64 `json:"speed"`
}

// ResourceConfig contains resource management configuration
type ResourceConfig struct {
	MaxMemoryMB            int64 `json:"maxMemoryMB"`
	CheckIntervalSeconds   int   `json:"checkIntervalSeconds"`
	ShutdownTimeoutSeconds int   `json:"shutdownTimeoutSeconds"`
}

// WorldBounds returns the root region of the spatial index: a square with
// its origin at (0, 0) and sides of WorldSize.
func (c *SimConfig) WorldBounds() physics.Rect {
	return physics.Rect{
		X:      0,
		Y:      0,
		Width:  c.WorldSize,
		Height: c.WorldSize,
	}
}

// Validate checks the configuration for invalid values. Configuration
// errors fail fast here, before any simulation state is built.
func (c *SimConfig) Validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("world size must be positive, got %g", c.WorldSize)
	}
	if c.TickRate < 1 {
		return fmt.Errorf("tick rate must be at least 1, got %d", c.TickRate)
	}
	if c.Index.Capacity < 1 {
		return fmt.Errorf("index capacity must be at least 1, got %d", c.Index.Capacity)
	}
	if c.Index.MaxDepth < 0 {
		return fmt.Errorf("index max depth must be non-negative, got %d", c.Index.MaxDepth)
	}
	if c.Resolver.Damping <= 0 || c.Resolver.Damping > 1 {
		return fmt.Errorf("resolver damping must be in (0, 1], got %g", c.Resolver.Damping)
	}
	if c.Resolver.MinSpeed < 0 {
		return fmt.Errorf("resolver minimum speed must be non-negative, got %g", c.Resolver.MinSpeed)
	}
	if c.Resolver.MaxJitter < 0 {
		return fmt.Errorf("resolver jitter bound must be non-negative, got %g", c.Resolver.MaxJitter)
	}
	if c.Spawn.Rate < 0 {
		return fmt.Errorf("spawn rate must be non-negative, got %g", c.Spawn.Rate)
	}
	if c.Spawn.Radius <= 0 {
		return fmt.Errorf("particle radius must be positive, got %g", c.Spawn.Radius)
	}
	if c.Spawn.MaxParticles < 0 {
		return fmt.Errorf("particle cap must be non-negative, got %d", c.Spawn.MaxParticles)
	}
	if c.Probe.Radius <= 0 {
		return fmt.Errorf("probe radius must be positive, got %g", c.Probe.Radius)
	}
	if c.Resources.MaxMemoryMB <= 0 {
		return fmt.Errorf("resource memory limit must be positive, got %d", c.Resources.MaxMemoryMB)
	}
	if c.Resources.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("resource check interval must be positive, got %d", c.Resources.CheckIntervalSeconds)
	}
	if c.Resources.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("resource shutdown timeout must be positive, got %d", c.Resources.ShutdownTimeoutSeconds)
	}
	return nil
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SimConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default simulation configuration
func DefaultConfig() *SimConfig {
	return &SimConfig{
		WorldSize: 1000,
		TickRate:  60,
		Index: IndexConfig{
			Capacity: 10,
			MaxDepth: 8,
		},
		Resolver: ResolverConfig{
			Damping:   0.85,
			MinSpeed:  20,
			MaxJitter: 0.1,
		},
		Spawn: SpawnConfig{
			Rate:         30,
			Radius:       4,
			Speed:        60,
			MaxParticles: 2000,
		},
		Probe: ProbeConfig{
			Radius: 16,
			Speed:  120,
		},
		Resources: ResourceConfig{
			MaxMemoryMB:            500,
			CheckIntervalSeconds:   10,
			ShutdownTimeoutSeconds: 30,
		},
	}
}
