// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names recognised by ApplyEnvironmentOverrides.
const (
	EnvWorldSize     = "QUADSIM_WORLD_SIZE"
	EnvTickRate      = "QUADSIM_TICK_RATE"
	EnvIndexCapacity = "QUADSIM_INDEX_CAPACITY"
	EnvIndexMaxDepth = "QUADSIM_INDEX_MAX_DEPTH"
	EnvDamping       = "QUADSIM_DAMPING"
	EnvMinSpeed      = "QUADSIM_MIN_SPEED"
	EnvMaxJitter     = "QUADSIM_MAX_JITTER"
	EnvSpawnRate     = "QUADSIM_SPAWN_RATE"
	EnvSpawnRadius   = "QUADSIM_PARTICLE_RADIUS"
	EnvMaxParticles  = "QUADSIM_MAX_PARTICLES"
	EnvProbeRadius   = "QUADSIM_PROBE_RADIUS"
	EnvMaxMemoryMB   = "QUADSIM_MAX_MEMORY_MB"
)

// ApplyEnvironmentOverrides overrides configuration fields from QUADSIM_*
// environment variables. Unset variables leave the file/default values in
// place. The merged configuration is re-validated so a bad override fails
// fast instead of being silently coerced.
func ApplyEnvironmentOverrides(config *SimConfig) error {
	if err := applyFloatEnv(EnvWorldSize, &config.WorldSize); err != nil {
		return err
	}
	if err := applyIntEnv(EnvTickRate, &config.TickRate); err != nil {
		return err
	}
	if err := applyIntEnv(EnvIndexCapacity, &config.Index.Capacity); err != nil {
		return err
	}
	if err := applyIntEnv(EnvIndexMaxDepth, &config.Index.MaxDepth); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvDamping, &config.Resolver.Damping); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvMinSpeed, &config.Resolver.MinSpeed); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvMaxJitter, &config.Resolver.MaxJitter); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvSpawnRate, &config.Spawn.Rate); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvSpawnRadius, &config.Spawn.Radius); err != nil {
		return err
	}
	if err := applyIntEnv(EnvMaxParticles, &config.Spawn.MaxParticles); err != nil {
		return err
	}
	if err := applyFloatEnv(EnvProbeRadius, &config.Probe.Radius); err != nil {
		return err
	}
	if err := applyInt64Env(EnvMaxMemoryMB, &config.Resources.MaxMemoryMB); err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after environment overrides: %w", err)
	}
	return nil
}

func applyFloatEnv(name string, target *float64) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	*target = parsed
	return nil
}

func applyIntEnv(name string, target *int) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	*target = parsed
	return nil
}

func applyInt64Env(name string, target *int64) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	*target = parsed
	return nil
}
