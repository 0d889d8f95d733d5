// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// NullRenderer is a simple implementation of entity.Renderer.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{
		logger: logging.NewLogger(),
	}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderParticle implements entity.Renderer.
func (d *NullRenderer) RenderParticle(particle *entity.Particle) {
	ctx := context.Background()
	if particle == nil {
		d.logger.Debug(ctx, "RenderParticle called with nil particle")
		return
	}
	d.logger.Debug(ctx, "RenderParticle called",
		"particle_id", uint64(particle.ID),
		"x", particle.Position.X,
		"y", particle.Position.Y,
	)
}

// RenderProbe implements entity.Renderer.
func (d *NullRenderer) RenderProbe(probe *entity.Probe) {
	ctx := context.Background()
	if probe == nil {
		d.logger.Debug(ctx, "RenderProbe called with nil probe")
		return
	}
	d.logger.Debug(ctx, "RenderProbe called",
		"x", probe.Position.X,
		"y", probe.Position.Y,
	)
}

// RenderRegion implements entity.Renderer.
func (d *NullRenderer) RenderRegion(bounds physics.Rect) {
	d.logger.Debug(context.Background(), "RenderRegion called",
		"x", bounds.X,
		"y", bounds.Y,
		"width", bounds.Width,
		"height", bounds.Height,
	)
}

// NullRendererInstance is a global instance of NullRenderer for convenience.
var NullRendererInstance entity.Renderer = NewNullRenderer()
