// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Common event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationEnded   Type = "simulation_ended"
	ParticleSpawned   Type = "particle_spawned"
	ParticleRemoved   Type = "particle_removed"
	CollisionResolved Type = "collision_resolved"
	TickCompleted     Type = "tick_completed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching. Dispatch is synchronous:
// Publish returns after every subscribed handler has run.
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// Specific event implementations

// ParticleEvent contains information about particle lifecycle events
type ParticleEvent struct {
	BaseEvent
	ParticleID uint64
}

// NewParticleEvent creates a new particle lifecycle event
func NewParticleEvent(eventType Type, source interface{}, particleID uint64) *ParticleEvent {
	return &ParticleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ParticleID: particleID,
	}
}

// CollisionEvent contains information about a resolved probe collision
type CollisionEvent struct {
	BaseEvent
	ParticleID uint64
	// Speed is the candidate's speed after damping, floor, and jitter.
	Speed float64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, particleID uint64, speed float64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: CollisionResolved,
			Source:    source,
		},
		ParticleID: particleID,
		Speed:      speed,
	}
}

// TickEvent summarises one completed simulation tick
type TickEvent struct {
	BaseEvent
	Tick       uint64
	Particles  int
	Candidates int
	Resolved   int
}

// NewTickEvent creates a new tick summary event
func NewTickEvent(source interface{}, tick uint64, particles, candidates, resolved int) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: TickCompleted,
			Source:    source,
		},
		Tick:       tick,
		Particles:  particles,
		Candidates: candidates,
		Resolved:   resolved,
	}
}
