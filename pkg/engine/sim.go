// pkg/engine/sim.go
package engine

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/opd-ai/go-quadsim/pkg/collision"
	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/event"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
	"github.com/opd-ai/go-quadsim/pkg/quadtree"
	"github.com/opd-ai/go-quadsim/pkg/resource"
)

// Simulation owns the particle field, the probe, and the per-tick pipeline:
// integrate positions, rebuild the spatial index from scratch, broad-phase
// query around the probe, narrow-phase resolve the candidates, write the
// results back, spawn. Each tick runs synchronously on one goroutine; the
// index built during a tick never outlives it.
type Simulation struct {
	Config     *config.SimConfig
	Particles  map[entity.ID]*entity.Particle
	Probe      *entity.Probe
	EntityLock sync.RWMutex
	Running    bool
	TimeStep   float64 // Seconds per simulation tick
	CurrentTick uint64
	LastUpdate time.Time
	EventBus   *event.Bus

	// Resource management
	Resources *resource.Manager

	index    *quadtree.Tree
	resolver *collision.Resolver
	logger   *logging.Logger
	rng      *rand.Rand

	lastTickTime time.Time
	spawnAccum   float64
}

// NewSimulation validates the configuration and builds a simulation. All
// configuration errors surface here, before any tick runs.
func NewSimulation(cfg *config.SimConfig) (*Simulation, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, logging.WrapError(err, "invalid simulation configuration")
	}

	index, err := quadtree.New(cfg.WorldBounds(), quadtree.Config{
		Capacity: cfg.Index.Capacity,
		MaxDepth: cfg.Index.MaxDepth,
	})
	if err != nil {
		return nil, logging.WrapError(err, "building spatial index")
	}

	resolver, err := collision.NewResolver(collision.Config{
		Damping:   cfg.Resolver.Damping,
		MinSpeed:  cfg.Resolver.MinSpeed,
		MaxJitter: cfg.Resolver.MaxJitter,
		Seed:      cfg.Resolver.Seed,
	})
	if err != nil {
		return nil, logging.WrapError(err, "building collision resolver")
	}

	seed := cfg.Resolver.Seed
	sim := &Simulation{
		Config:    cfg,
		Particles: make(map[entity.ID]*entity.Particle),
		Probe: &entity.Probe{
			Position: cfg.WorldBounds().Center(),
			Radius:   cfg.Probe.Radius,
		},
		TimeStep:     1.0 / float64(cfg.TickRate),
		LastUpdate:   time.Now(),
		EventBus:     event.NewEventBus(),
		Resources:    resource.NewManager(cfg.Spawn.MaxParticles, cfg.Resources),
		index:        index,
		resolver:     resolver,
		logger:       logging.NewLogger(),
		rng:          rand.New(rand.NewPCG(seed, ^seed)),
		lastTickTime: time.Now(),
	}
	return sim, nil
}

// Start marks the simulation as running.
func (s *Simulation) Start() {
	s.Running = true
	s.LastUpdate = time.Now()
	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationStarted,
		Source:    s,
	})
}

// Stop halts the simulation.
func (s *Simulation) Stop() {
	s.Running = false
	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationEnded,
		Source:    s,
	})
}

// SetProbeVelocity sets the probe's velocity for subsequent ticks.
func (s *Simulation) SetProbeVelocity(velocity physics.Vector2D) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	s.Probe.Velocity = velocity
}

// Update advances the simulation by one tick using wall-clock delta time.
func (s *Simulation) Update() {
	deltaTime := s.calculateDeltaTime()
	s.step(deltaTime)
}

// calculateDeltaTime calculates the time since the last update and caps it.
func (s *Simulation) calculateDeltaTime() float64 {
	now := time.Now()
	deltaTime := now.Sub(s.LastUpdate).Seconds()
	s.LastUpdate = now

	// Cap delta time to prevent physics issues
	if deltaTime > 0.1 {
		deltaTime = 0.1
	}
	return deltaTime
}

// step runs one tick with an explicit delta time. Events raised during the
// tick are collected and published only after EntityLock is released, so
// handlers are free to call back into State, WalkIndex, or RemoveParticle.
func (s *Simulation) step(deltaTime float64) {
	var pending []event.Event

	s.EntityLock.Lock()
	s.advanceBodies(deltaTime)
	s.rebuildSpatialIndex()
	candidates, resolved := s.resolveProbeCollisions(&pending)
	s.spawnParticles(deltaTime, &pending)
	s.cleanupInactiveParticles(&pending)

	s.CurrentTick++
	s.lastTickTime = time.Now()
	pending = append(pending, event.NewTickEvent(
		s, s.CurrentTick, len(s.Particles), candidates, resolved,
	))
	s.EntityLock.Unlock()

	for _, e := range pending {
		s.EventBus.Publish(e)
	}
}

// advanceBodies integrates particle and probe positions and wraps them
// around the world bounds.
func (s *Simulation) advanceBodies(deltaTime float64) {
	for _, particle := range s.Particles {
		if particle.Active {
			particle.Update(deltaTime)
			particle.Position = s.wrapPosition(particle.Position)
		}
	}

	s.Probe.Update(deltaTime)
	s.Probe.Position = s.wrapPosition(s.Probe.Position)
}

// wrapPosition wraps a position around the world boundaries.
func (s *Simulation) wrapPosition(pos physics.Vector2D) physics.Vector2D {
	worldSize := s.Config.WorldSize
	pos.X = math.Mod(pos.X, worldSize)
	if pos.X < 0 {
		pos.X += worldSize
	}
	pos.Y = math.Mod(pos.Y, worldSize)
	if pos.Y < 0 {
		pos.Y += worldSize
	}
	return pos
}

// rebuildSpatialIndex rebuilds the index wholesale from the current
// particle positions. The tree is never carried across ticks; Reset only
// reuses the previous tick's allocations. Insertion runs in ascending ID
// order, not map order, so the candidate order a query returns is stable
// and seeded runs stay reproducible.
func (s *Simulation) rebuildSpatialIndex() {
	s.index.Reset(s.Config.WorldBounds())
	ids := make([]entity.ID, 0, len(s.Particles))
	for id, particle := range s.Particles {
		if particle.Active {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		s.index.Insert(id, s.Particles[id].Position)
	}
}

// resolveProbeCollisions runs the broad phase around the probe and the
// narrow phase over the returned candidates, writing resolved state back
// into the particle store. It returns the candidate and resolved counts.
//
// Boundary-tied points can appear twice in the candidate list; the second
// pass re-fetches the already-corrected particle, finds it tangent rather
// than overlapping, and leaves it alone, so no deduplication is needed.
func (s *Simulation) resolveProbeCollisions(pending *[]event.Event) (candidates, resolved int) {
	probeBody := collision.Body{
		Position: s.Probe.Position,
		Velocity: s.Probe.Velocity,
		Radius:   s.Probe.Radius,
	}

	found := s.index.Query(collision.ProbeBounds(probeBody))
	for _, point := range found {
		particle, ok := s.Particles[point.ID]
		if !ok || !particle.Active {
			continue
		}
		candidates++

		result, hit, err := s.resolver.Resolve(probeBody, collision.Body{
			ID:       particle.ID,
			Position: particle.Position,
			Velocity: particle.Velocity,
			Radius:   particle.Radius,
		})
		if err != nil {
			s.logger.Error(context.Background(), "Collision resolution failed", err,
				"particle_id", uint64(particle.ID),
			)
			continue
		}
		if !hit {
			continue
		}

		particle.Position = result.Position
		particle.Velocity = result.Velocity
		resolved++

		*pending = append(*pending, event.NewCollisionEvent(
			s, uint64(particle.ID), result.Velocity.Length(),
		))
	}
	return candidates, resolved
}

// spawnParticles adds new particles at the configured rate, subject to the
// resource budget. Fractional spawns accumulate across ticks.
func (s *Simulation) spawnParticles(deltaTime float64, pending *[]event.Event) {
	s.spawnAccum += s.Config.Spawn.Rate * deltaTime
	for s.spawnAccum >= 1 {
		s.spawnAccum--
		if err := s.Resources.AcquireParticle(); err != nil {
			s.logger.Debug(context.Background(), "Spawn skipped", "reason", err.Error())
			return
		}
		particle := s.newRandomParticle()
		s.Particles[particle.ID] = particle
		*pending = append(*pending, event.NewParticleEvent(
			event.ParticleSpawned, s, uint64(particle.ID),
		))
	}
}

// newRandomParticle creates a particle at a random position with a random
// heading at the configured spawn speed.
func (s *Simulation) newRandomParticle() *entity.Particle {
	worldSize := s.Config.WorldSize
	position := physics.Vector2D{
		X: s.rng.Float64() * worldSize,
		Y: s.rng.Float64() * worldSize,
	}
	velocity := physics.FromAngle(s.rng.Float64()*2*math.Pi, s.Config.Spawn.Speed)
	return entity.NewParticle(entity.GenerateID(), position, velocity, s.Config.Spawn.Radius)
}

// RemoveParticle deactivates a particle; the next tick's cleanup drops it
// and returns its budget slot.
func (s *Simulation) RemoveParticle(id entity.ID) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	if particle, ok := s.Particles[id]; ok {
		particle.Active = false
	}
}

// cleanupInactiveParticles removes inactive particles and releases their
// budget slots.
func (s *Simulation) cleanupInactiveParticles(pending *[]event.Event) {
	for id, particle := range s.Particles {
		if !particle.Active {
			delete(s.Particles, id)
			s.Resources.ReleaseParticle()
			*pending = append(*pending, event.NewParticleEvent(
				event.ParticleRemoved, s, uint64(id),
			))
		}
	}
}

// WalkIndex exposes the spatial index's debug traversal to a visitor, for
// rendering collaborators. The visitor must not mutate simulation state.
func (s *Simulation) WalkIndex(visit func(bounds physics.Rect, depth, points int)) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	s.index.Walk(visit)
}

// LastTickTime returns when the most recent tick completed, for health
// monitoring.
func (s *Simulation) LastTickTime() time.Time {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.lastTickTime
}

// Render draws the current state through a renderer: the index regions
// first, then particles, then the probe on top.
func (s *Simulation) Render(r entity.Renderer) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	r.Clear()
	s.index.Walk(func(bounds physics.Rect, depth, points int) {
		r.RenderRegion(bounds)
	})
	for _, particle := range s.Particles {
		if particle.Active {
			r.RenderParticle(particle)
		}
	}
	r.RenderProbe(s.Probe)
	r.Present()
}

// State returns a snapshot of the simulation for external consumers.
func (s *Simulation) State() SimState {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	state := SimState{
		Tick: s.CurrentTick,
		Probe: ProbeState{
			Position: s.Probe.Position,
			Velocity: s.Probe.Velocity,
			Radius:   s.Probe.Radius,
		},
		Particles: make([]ParticleState, 0, len(s.Particles)),
	}
	for _, particle := range s.Particles {
		if particle.Active {
			state.Particles = append(state.Particles, ParticleState{
				ID:       particle.ID,
				Position: particle.Position,
				Velocity: particle.Velocity,
				Radius:   particle.Radius,
			})
		}
	}
	return state
}

// SimState represents a snapshot of the simulation state
type SimState struct {
	Tick      uint64
	Probe     ProbeState
	Particles []ParticleState
}

// ProbeState represents a snapshot of the probe's state
type ProbeState struct {
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
}

// ParticleState represents a snapshot of a particle's state
type ParticleState struct {
	ID       entity.ID
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
}
