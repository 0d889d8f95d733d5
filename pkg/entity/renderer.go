package entity

import "github.com/opd-ai/go-quadsim/pkg/physics"

// Renderer handles drawing simulation state. RenderRegion consumes the
// spatial index's debug traversal, one call per visited node.
type Renderer interface {
	RenderParticle(particle *Particle)
	RenderProbe(probe *Probe)
	RenderRegion(bounds physics.Rect)
	Clear()
	Present()
}
