// cmd/quadsim/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/health"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
	"github.com/opd-ai/go-quadsim/pkg/render"
	engorender "github.com/opd-ai/go-quadsim/pkg/render/engo"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	renderMode := flag.String("render", "terminal", "Renderer: terminal, null, or engo")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		defaultConfig := config.DefaultConfig()
		if err := config.SaveConfig(defaultConfig, *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration
	var simConfig *config.SimConfig

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		simConfig = config.DefaultConfig()
	} else {
		simConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Apply environment variable overrides
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	// Create simulation
	sim, err := engine.NewSimulation(simConfig)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	if err := sim.Resources.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}

	// Setup health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(
		func() bool { return sim.Running },
	))
	healthChecker.AddCheck(health.NewTickHealthCheck(
		sim.LastTickTime, 5*time.Second,
	))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(
		simConfig.Resources.MaxMemoryMB,
		sim.Resources.MemoryUsage,
	))

	healthServer := startHealthServer(ctx, logger, healthChecker)

	// The probe drifts on a fixed heading; it wraps with the world like
	// everything else.
	sim.SetProbeVelocity(physics.FromAngle(0.6, simConfig.Probe.Speed))

	logger.Info(ctx, "Starting simulation",
		"world_size", simConfig.WorldSize,
		"tick_rate", simConfig.TickRate,
		"index_capacity", simConfig.Index.Capacity,
		"render", *renderMode,
	)

	if *renderMode == "engo" {
		// Engo owns the main loop and ticks the simulation per frame.
		engorender.Run(sim, "quadsim", 1)
	} else {
		runTickLoop(ctx, logger, sim, *renderMode)
	}

	shutdown(ctx, logger, sim, healthServer)
}

// runTickLoop drives the simulation at the configured tick rate until the
// process receives an interrupt.
func runTickLoop(ctx context.Context, logger *logging.Logger, sim *engine.Simulation, renderMode string) {
	var renderer entity.Renderer
	switch renderMode {
	case "terminal":
		terminal := render.NewTerminalRenderer(80, 40, sim.Config.WorldSize/80)
		terminal.SetCenter(sim.Config.WorldBounds().Center())
		renderer = terminal
	default:
		renderer = render.NewNullRenderer()
	}

	sim.Start()

	ticker := time.NewTicker(time.Second / time.Duration(sim.Config.TickRate))
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Render at a fraction of the tick rate; the terminal cannot keep up
	// with 60Hz redraws.
	renderEvery := uint64(sim.Config.TickRate / 10)
	if renderEvery == 0 {
		renderEvery = 1
	}

	for {
		select {
		case <-ticker.C:
			sim.Update()
			if sim.CurrentTick%renderEvery == 0 {
				sim.Render(renderer)
			}
		case <-sigChan:
			logger.Info(ctx, "Shutting down simulation")
			return
		}
	}
}

// startHealthServer exposes liveness and readiness probes on the port from
// QUADSIM_HEALTH_PORT, defaulting to 8080.
func startHealthServer(ctx context.Context, logger *logging.Logger, healthChecker *health.HealthChecker) *http.Server {
	healthPort := "8080"
	if envPort := os.Getenv("QUADSIM_HEALTH_PORT"); envPort != "" {
		if _, err := strconv.Atoi(envPort); err == nil {
			healthPort = envPort
		}
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	healthServer := &http.Server{
		Addr:         ":" + healthPort,
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server",
			"port", healthPort,
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return healthServer
}

// shutdown stops the simulation and its supporting services gracefully.
func shutdown(ctx context.Context, logger *logging.Logger, sim *engine.Simulation, healthServer *http.Server) {
	sim.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Health check server shutdown failed", err)
	}

	if err := sim.Resources.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource manager shutdown failed", err)
	}

	logger.Info(ctx, "Shutdown complete")
}
