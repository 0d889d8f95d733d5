// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// renderedBody tracks the ECS entity and components backing one simulation
// body, so per-frame updates mutate components in place instead of
// recreating entities.
type renderedBody struct {
	basic  ecs.BasicEntity
	render *common.RenderComponent
	space  *common.SpaceComponent
}

// Renderer implements entity.Renderer using the Engo game engine. Particles
// and the probe are circle drawables; quadtree regions are border-only
// rectangles redrawn every frame, since the tree is rebuilt every tick.
type Renderer struct {
	world        *ecs.World
	renderSystem *common.RenderSystem

	particles map[entity.ID]*renderedBody
	probe     *renderedBody
	regions   []renderedBody
	scale     float32
}

// NewRenderer creates a new Engo-based renderer. Scale converts world units
// to pixels.
func NewRenderer(world *ecs.World, scale float32) *Renderer {
	return &Renderer{
		world:     world,
		particles: make(map[entity.ID]*renderedBody),
		scale:     scale,
	}
}

// Initialize sets up the renderer's systems.
func (r *Renderer) Initialize() {
	r.renderSystem = &common.RenderSystem{}
	r.world.AddSystem(r.renderSystem)
}

// Clear implements entity.Renderer. Region overlays are transient and
// rebuilt each frame, so they are dropped here.
func (r *Renderer) Clear() {
	for i := range r.regions {
		r.renderSystem.Remove(r.regions[i].basic)
	}
	r.regions = r.regions[:0]
}

// Present implements entity.Renderer. Engo presents through its own render
// system, so nothing is needed here.
func (r *Renderer) Present() {}

// RenderParticle implements entity.Renderer.
func (r *Renderer) RenderParticle(particle *entity.Particle) {
	body, exists := r.particles[particle.ID]
	if !exists {
		body = r.addCircle(particle.Radius, color.RGBA{R: 90, G: 170, B: 255, A: 255})
		r.particles[particle.ID] = body
	}
	r.place(body, particle.Position, particle.Radius)
}

// RenderProbe implements entity.Renderer.
func (r *Renderer) RenderProbe(probe *entity.Probe) {
	if r.probe == nil {
		r.probe = r.addCircle(probe.Radius, color.RGBA{R: 255, G: 200, B: 60, A: 255})
	}
	r.place(r.probe, probe.Position, probe.Radius)
}

// RenderRegion implements entity.Renderer.
func (r *Renderer) RenderRegion(bounds physics.Rect) {
	basic := ecs.NewBasic()
	render := &common.RenderComponent{
		Drawable: common.Rectangle{
			BorderWidth: 1,
			BorderColor: color.RGBA{R: 70, G: 70, B: 70, A: 255},
		},
		Color: color.Transparent,
	}
	space := &common.SpaceComponent{
		Position: engo.Point{X: float32(bounds.X) * r.scale, Y: float32(bounds.Y) * r.scale},
		Width:    float32(bounds.Width) * r.scale,
		Height:   float32(bounds.Height) * r.scale,
	}
	r.renderSystem.Add(&basic, render, space)
	r.regions = append(r.regions, renderedBody{basic: basic, render: render, space: space})
}

// RemoveParticle removes a particle entity from rendering.
func (r *Renderer) RemoveParticle(id entity.ID) {
	if body, exists := r.particles[id]; exists {
		r.renderSystem.Remove(body.basic)
		delete(r.particles, id)
	}
}

// addCircle creates an ECS entity backed by a circle drawable.
func (r *Renderer) addCircle(radius float64, fill color.Color) *renderedBody {
	basic := ecs.NewBasic()
	body := &renderedBody{
		basic: basic,
		render: &common.RenderComponent{
			Drawable: common.Circle{},
			Color:    fill,
		},
		space: &common.SpaceComponent{
			Width:  float32(radius*2) * r.scale,
			Height: float32(radius*2) * r.scale,
		},
	}
	r.renderSystem.Add(&body.basic, body.render, body.space)
	return body
}

// place positions a body's space component from its world-space center.
func (r *Renderer) place(body *renderedBody, center physics.Vector2D, radius float64) {
	body.space.Position = engo.Point{
		X: float32(center.X-radius) * r.scale,
		Y: float32(center.Y-radius) * r.scale,
	}
	body.space.Width = float32(radius*2) * r.scale
	body.space.Height = float32(radius*2) * r.scale
}
