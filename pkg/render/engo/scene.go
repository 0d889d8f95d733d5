// pkg/render/engo/scene.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-quadsim/pkg/engine"
)

// SimScene drives the simulation from Engo's frame loop and mirrors its
// state into the renderer every frame.
type SimScene struct {
	world    *ecs.World
	sim      *engine.Simulation
	renderer *Renderer
	scale    float32
}

// NewSimScene creates a scene around an existing simulation.
func NewSimScene(sim *engine.Simulation, scale float32) *SimScene {
	return &SimScene{
		sim:   sim,
		scale: scale,
	}
}

// Type returns the scene type (required by Engo)
func (scene *SimScene) Type() string {
	return "SimScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *SimScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *SimScene) Setup(u engo.Updater) {
	scene.world = &ecs.World{}
	if world, ok := u.(*ecs.World); ok {
		scene.world = world
	}

	scene.renderer = NewRenderer(scene.world, scene.scale)
	scene.renderer.Initialize()

	scene.world.AddSystem(&simSystem{scene: scene})
	scene.sim.Start()
}

// simSystem ticks the simulation once per rendered frame.
type simSystem struct {
	scene *SimScene
}

// Update implements ecs.System.
func (s *simSystem) Update(dt float32) {
	sim := s.scene.sim
	if !sim.Running {
		return
	}
	sim.Update()
	sim.Render(s.scene.renderer)
}

// Remove implements ecs.System; the sim system tracks no per-entity state.
func (s *simSystem) Remove(basic ecs.BasicEntity) {}

// Run opens an Engo window sized to the simulation's world and runs the
// scene until the window closes.
func Run(sim *engine.Simulation, title string, scale float32) {
	bounds := sim.Config.WorldBounds()
	opts := engo.RunOptions{
		Title:  title,
		Width:  int(float32(bounds.Width) * scale),
		Height: int(float32(bounds.Height) * scale),
	}
	engo.Run(opts, NewSimScene(sim, scale))
}
