// pkg/entity/particle.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

var nextID uint64

// GenerateID returns a process-wide unique entity ID.
func GenerateID() ID {
	return ID(atomic.AddUint64(&nextID, 1))
}

// Particle is a point-like body tracked by the simulation. The spatial
// index only ever sees a snapshot of its position; the particle itself
// stays owned by the simulation's store.
type Particle struct {
	ID       ID
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
	Active   bool
}

// NewParticle creates an active particle with the given state.
func NewParticle(id ID, position, velocity physics.Vector2D, radius float64) *Particle {
	return &Particle{
		ID:       id,
		Position: position,
		Velocity: velocity,
		Radius:   radius,
		Active:   true,
	}
}

// Update advances the particle's position based on its velocity.
func (p *Particle) Update(deltaTime float64) {
	p.Position = p.Position.Add(p.Velocity.Scale(deltaTime))
}

// Collider returns the particle's collision shape.
func (p *Particle) Collider() physics.Circle {
	return physics.Circle{
		Center: p.Position,
		Radius: p.Radius,
	}
}

// Probe is the body collision checks are run for each tick, e.g. a player
// avatar moving through the particle field.
type Probe struct {
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
}

// Update advances the probe's position based on its velocity.
func (p *Probe) Update(deltaTime float64) {
	p.Position = p.Position.Add(p.Velocity.Scale(deltaTime))
}

// Collider returns the probe's collision shape.
func (p *Probe) Collider() physics.Circle {
	return physics.Circle{
		Center: p.Position,
		Radius: p.Radius,
	}
}
