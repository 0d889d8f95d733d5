// pkg/event/event_test.go
package event

import (
	"testing"
)

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()

	received := 0
	bus.Subscribe(TickCompleted, func(e Event) { received++ })
	bus.Subscribe(TickCompleted, func(e Event) { received++ })

	bus.Publish(&BaseEvent{EventType: TickCompleted})

	if received != 2 {
		t.Errorf("handlers ran %d times, expected 2", received)
	}
}

func TestBus_PublishIsSynchronous(t *testing.T) {
	bus := NewEventBus()

	done := false
	bus.Subscribe(SimulationStarted, func(e Event) { done = true })
	bus.Publish(&BaseEvent{EventType: SimulationStarted})

	if !done {
		t.Error("Publish() returned before the handler ran")
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus()

	var got Type
	bus.Subscribe(ParticleSpawned, func(e Event) { got = e.GetType() })

	bus.Publish(&BaseEvent{EventType: ParticleRemoved})
	if got != "" {
		t.Errorf("handler received %q for a type it never subscribed to", got)
	}

	bus.Publish(&BaseEvent{EventType: ParticleSpawned})
	if got != ParticleSpawned {
		t.Errorf("handler received %q, expected %q", got, ParticleSpawned)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Must not panic.
	bus.Publish(&BaseEvent{EventType: SimulationEnded})
}

func TestCollisionEvent_CarriesPayload(t *testing.T) {
	bus := NewEventBus()

	var got *CollisionEvent
	bus.Subscribe(CollisionResolved, func(e Event) {
		got = e.(*CollisionEvent)
	})

	source := "simulation"
	bus.Publish(NewCollisionEvent(source, 42, 31.5))

	if got == nil {
		t.Fatal("collision event not delivered")
	}
	if got.ParticleID != 42 || got.Speed != 31.5 {
		t.Errorf("payload = (%d, %g), expected (42, 31.5)", got.ParticleID, got.Speed)
	}
	if got.GetSource() != source {
		t.Errorf("source = %v, expected %v", got.GetSource(), source)
	}
}

func TestTickEvent_CarriesCounts(t *testing.T) {
	e := NewTickEvent(nil, 7, 100, 4, 2)

	if e.GetType() != TickCompleted {
		t.Errorf("type = %q, expected %q", e.GetType(), TickCompleted)
	}
	if e.Tick != 7 || e.Particles != 100 || e.Candidates != 4 || e.Resolved != 2 {
		t.Errorf("payload = %+v, expected tick 7, 100 particles, 4 candidates, 2 resolved", e)
	}
}

func TestParticleEvent_Types(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
	}{
		{name: "spawned", eventType: ParticleSpawned},
		{name: "removed", eventType: ParticleRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewParticleEvent(tt.eventType, nil, 9)
			if e.GetType() != tt.eventType {
				t.Errorf("type = %q, expected %q", e.GetType(), tt.eventType)
			}
			if e.ParticleID != 9 {
				t.Errorf("particle id = %d, expected 9", e.ParticleID)
			}
		})
	}
}
