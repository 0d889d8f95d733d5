// pkg/resource/manager.go
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/logging"
)

// Manager enforces the simulation's resource budget: a hard cap on the live
// particle population and a memory watermark checked by a background loop.
// The spawn path acquires a slot per particle, so the population can never
// outgrow the budget regardless of spawn rate.
type Manager struct {
	maxParticles    int64
	maxMemoryMB     int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	// Atomic counters for thread-safe access
	particleCount int64
	memoryUsageMB int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	logger  *logging.Logger

	lastMemoryCheck time.Time
}

// NewManager creates a resource manager with the given particle cap and
// resource configuration.
func NewManager(maxParticles int, cfg config.ResourceConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		maxParticles:    int64(maxParticles),
		maxMemoryMB:     cfg.MaxMemoryMB,
		shutdownTimeout: time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second,
		checkInterval:   time.Duration(cfg.CheckIntervalSeconds) * time.Second,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logging.NewLogger(),
		lastMemoryCheck: time.Now(),
	}
}

// Start begins the resource monitoring loop.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	m.running = true
	m.mu.Unlock()

	go m.monitoringLoop()

	m.logger.Info(m.ctx, "Resource manager started",
		"max_particles", m.maxParticles,
		"max_memory_mb", m.maxMemoryMB,
		"check_interval", m.checkInterval,
	)

	return nil
}

// AcquireParticle reserves one slot of the particle budget. It returns an
// error when the population cap would be exceeded; the caller should skip
// the spawn rather than treat this as a fault.
func (m *Manager) AcquireParticle() error {
	for {
		current := atomic.LoadInt64(&m.particleCount)
		if current >= m.maxParticles {
			return fmt.Errorf("particle budget exhausted: %d/%d", current, m.maxParticles)
		}
		if atomic.CompareAndSwapInt64(&m.particleCount, current, current+1) {
			return nil
		}
	}
}

// ReleaseParticle returns one slot to the particle budget.
func (m *Manager) ReleaseParticle() {
	atomic.AddInt64(&m.particleCount, -1)
}

// CheckMemoryUsage checks current memory usage against limits.
func (m *Manager) CheckMemoryUsage() error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	currentMB := int64(stats.Alloc / 1024 / 1024)
	atomic.StoreInt64(&m.memoryUsageMB, currentMB)
	m.lastMemoryCheck = time.Now()

	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}

	return nil
}

// ParticleCount returns the number of budget slots currently held.
func (m *Manager) ParticleCount() int64 {
	return atomic.LoadInt64(&m.particleCount)
}

// MemoryUsage returns the memory usage in MB observed at the last check.
func (m *Manager) MemoryUsage() int64 {
	return atomic.LoadInt64(&m.memoryUsageMB)
}

// Stats contains resource usage statistics.
type Stats struct {
	ParticleCount   int64     `json:"particle_count"`
	MaxParticles    int64     `json:"max_particles"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// GetStats returns current resource usage statistics.
func (m *Manager) GetStats() Stats {
	return Stats{
		ParticleCount:   m.ParticleCount(),
		MaxParticles:    m.maxParticles,
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.maxMemoryMB,
		LastMemoryCheck: m.lastMemoryCheck,
	}
}

// Shutdown gracefully stops the resource manager.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil // Already shut down
	}
	m.running = false
	m.mu.Unlock()

	m.logger.Info(ctx, "Shutting down resource manager")

	m.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
	defer cancel()

	select {
	case <-m.done:
		return nil
	case <-shutdownCtx.Done():
		m.logger.Warn(ctx, "Resource manager monitoring loop did not stop gracefully")
		return fmt.Errorf("shutdown timeout waiting for monitoring loop")
	}
}

// monitoringLoop runs periodic resource checks.
func (m *Manager) monitoringLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performResourceChecks()
		case <-m.ctx.Done():
			m.logger.Info(m.ctx, "Resource monitoring loop stopping")
			return
		}
	}
}

// performResourceChecks executes periodic resource usage checks.
func (m *Manager) performResourceChecks() {
	if err := m.CheckMemoryUsage(); err != nil {
		m.logger.Error(m.ctx, "Memory limit exceeded", err,
			"current_mb", m.MemoryUsage(),
			"limit_mb", m.maxMemoryMB,
		)
	}

	m.logger.Debug(m.ctx, "Resource usage check",
		"particles", m.ParticleCount(),
		"memory_mb", m.MemoryUsage(),
	)
}
