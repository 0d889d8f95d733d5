package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// TerminalRenderer provides a simple ASCII-based rendering for terminals.
// Quadtree regions are drawn as outlines under the particles, so the
// subdivision pattern is visible around dense clusters.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	out       io.Writer
}

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. Scale is world units per character cell.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	return &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    os.Stdout,
	}
}

// SetOutput redirects the renderer's output, e.g. for tests.
func (r *TerminalRenderer) SetOutput(w io.Writer) {
	r.out = w
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2)
	screenY := int((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2)
	return screenX, screenY
}

// Clear implements entity.Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	// Clear terminal
	fmt.Fprint(r.out, "\033[H\033[2J")

	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
	for y := range r.buffer {
		fmt.Fprint(r.out, "|")
		for x := range r.buffer[y] {
			fmt.Fprint(r.out, string(r.buffer[y][x]))
		}
		fmt.Fprintln(r.out, "|")
	}
	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
}

// RenderParticle implements entity.Renderer
func (r *TerminalRenderer) RenderParticle(particle *entity.Particle) {
	x, y := r.worldToScreen(particle.Position)
	r.set(x, y, 'o')
}

// RenderProbe implements entity.Renderer
func (r *TerminalRenderer) RenderProbe(probe *entity.Probe) {
	x, y := r.worldToScreen(probe.Position)
	r.set(x, y, '@')
}

// RenderRegion implements entity.Renderer. Regions are drawn before
// particles, so bodies overwrite the outline where they overlap it.
func (r *TerminalRenderer) RenderRegion(bounds physics.Rect) {
	x0, y0 := r.worldToScreen(physics.Vector2D{X: bounds.X, Y: bounds.Y})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: bounds.X + bounds.Width, Y: bounds.Y + bounds.Height})

	for x := x0; x <= x1; x++ {
		r.set(x, y0, '-')
		r.set(x, y1, '-')
	}
	for y := y0; y <= y1; y++ {
		r.set(x0, y, '|')
		r.set(x1, y, '|')
	}
	r.set(x0, y0, '+')
	r.set(x1, y0, '+')
	r.set(x0, y1, '+')
	r.set(x1, y1, '+')
}

// set writes a rune into the buffer if the cell is within bounds.
func (r *TerminalRenderer) set(x, y int, c rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = c
	}
}
