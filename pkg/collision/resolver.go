// Package collision implements the narrow-phase resolution step that
// consumes the spatial index's query results: an exact circle overlap test
// followed by a physically plausible velocity and position response.
package collision

import (
	"fmt"
	"math/rand/v2"

	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// Body is the snapshot of a circular body handed to the resolver. The
// resolver never mutates external state; it returns the candidate's
// corrected state for the caller to write back.
type Body struct {
	ID       entity.ID
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
}

// Config carries the resolver tunables.
type Config struct {
	// Damping scales the reflected velocity. Must be in (0, 1].
	Damping float64
	// MinSpeed is the floor the damped speed is rescaled up to, keeping
	// particles from settling to a near-standstill after repeated hits.
	MinSpeed float64
	// MaxJitter bounds the random rotation (radians) applied to the final
	// velocity so repeated bounces are not visually identical.
	MaxJitter float64
	// Seed seeds the jitter source; zero selects a fixed default, which
	// keeps resolution reproducible under a given seed.
	Seed uint64
}

// Resolver computes collision responses. It holds no per-collision state
// beyond its random source; each Resolve call is an independent
// transformation.
type Resolver struct {
	cfg Config
	rng *rand.Rand
}

// NewResolver validates the configuration and builds a resolver. Invalid
// tunables are configuration errors and fail fast here, before any
// resolution is attempted.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Damping <= 0 || cfg.Damping > 1 {
		return nil, fmt.Errorf("collision: damping must be in (0, 1], got %g", cfg.Damping)
	}
	if cfg.MinSpeed < 0 {
		return nil, fmt.Errorf("collision: minimum speed must be non-negative, got %g", cfg.MinSpeed)
	}
	if cfg.MaxJitter < 0 {
		return nil, fmt.Errorf("collision: jitter bound must be non-negative, got %g", cfg.MaxJitter)
	}

	return &Resolver{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// ProbeBounds returns the broad-phase query region for a body: the square
// of side 2*radius centered on it.
func ProbeBounds(b Body) physics.Rect {
	return physics.NewRectAround(b.Position, b.Radius)
}

// Resolve runs the exact overlap test between the probe and one broad-phase
// candidate and, on overlap, computes the candidate's response:
//
//  1. the normal is the unit vector from probe center to candidate center;
//  2. the candidate is relocated so the circles are exactly tangent along
//     the normal (penetration resolved by placement, not impulse);
//  3. the combined velocity of candidate and probe is reflected across the
//     normal, then damped;
//  4. if the damped speed falls below the configured floor it is rescaled
//     to exactly that floor, preserving direction;
//  5. a bounded uniform random rotation is applied.
//
// The returned bool reports whether an overlap was found. A non-positive
// radius on either body is a precondition violation and returns an error.
func (r *Resolver) Resolve(probe, candidate Body) (Body, bool, error) {
	if probe.Radius <= 0 {
		return candidate, false, fmt.Errorf("collision: probe radius must be positive, got %g", probe.Radius)
	}
	if candidate.Radius <= 0 {
		return candidate, false, fmt.Errorf("collision: candidate radius must be positive, got %g", candidate.Radius)
	}

	result := physics.CheckCollision(
		physics.Circle{Center: probe.Position, Radius: probe.Radius},
		physics.Circle{Center: candidate.Position, Radius: candidate.Radius},
	)
	if !result.Collided {
		return candidate, false, nil
	}

	normal := result.Normal
	separation := probe.Radius + candidate.Radius

	resolved := candidate
	resolved.Position = probe.Position.Add(normal.Scale(separation))

	velocity := candidate.Velocity.Add(probe.Velocity).Reflect(normal)
	velocity = velocity.Scale(r.cfg.Damping)
	velocity = r.applySpeedFloor(velocity, normal)
	resolved.Velocity = velocity.Rotate(r.jitterAngle())

	return resolved, true, nil
}

// applySpeedFloor rescales the velocity up to MinSpeed when damping has
// dropped it below the floor. Direction is preserved; a zero vector has
// none to preserve, so it falls back to the collision normal.
func (r *Resolver) applySpeedFloor(velocity, normal physics.Vector2D) physics.Vector2D {
	speed := velocity.Length()
	if speed >= r.cfg.MinSpeed {
		return velocity
	}
	if speed == 0 {
		return normal.Scale(r.cfg.MinSpeed)
	}
	return velocity.Scale(r.cfg.MinSpeed / speed)
}

// jitterAngle draws a uniform rotation in [-MaxJitter, +MaxJitter].
func (r *Resolver) jitterAngle() float64 {
	if r.cfg.MaxJitter == 0 {
		return 0
	}
	return (r.rng.Float64()*2 - 1) * r.cfg.MaxJitter
}
