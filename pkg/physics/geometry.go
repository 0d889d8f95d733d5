// pkg/physics/geometry.go
package physics

// Rect represents an axis-aligned rectangular region defined by its
// origin (top-left corner) and non-negative extents.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRectAround builds the square of side 2*halfExtent centered on pos.
func NewRectAround(pos Vector2D, halfExtent float64) Rect {
	return Rect{
		X:      pos.X - halfExtent,
		Y:      pos.Y - halfExtent,
		Width:  halfExtent * 2,
		Height: halfExtent * 2,
	}
}

// Contains reports whether the point lies within the rectangle. All four
// edges are inclusive, so a point exactly on a shared edge is contained by
// both neighbouring rectangles. That keeps split-boundary ties symmetric
// instead of depending on which side claims the edge.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.X && point.X <= r.X+r.Width &&
		point.Y >= r.Y && point.Y <= r.Y+r.Height
}

// Intersects reports whether two rectangles overlap. Touching edges count
// as an intersection, matching the inclusive containment above.
func (r Rect) Intersects(other Rect) bool {
	return !(other.X > r.X+r.Width ||
		other.X+other.Width < r.X ||
		other.Y > r.Y+r.Height ||
		other.Y+other.Height < r.Y)
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vector2D {
	return Vector2D{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles are colliding
func (c Circle) Collides(other Circle) bool {
	return c.Center.Distance(other.Center) < c.Radius+other.Radius
}

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided    bool
	Normal      Vector2D
	Penetration float64
}

// CheckCollision performs detailed collision detection between two circles.
// The normal points from a toward b; coincident centers fall back to +X so
// callers always receive a unit normal on overlap.
func CheckCollision(a, b Circle) CollisionResult {
	delta := b.Center.Sub(a.Center)
	distance := delta.Length()

	if distance >= a.Radius+b.Radius {
		return CollisionResult{Collided: false}
	}

	normal := delta.Normalize()
	if distance == 0 {
		normal = Vector2D{X: 1, Y: 0}
	}

	return CollisionResult{
		Collided:    true,
		Normal:      normal,
		Penetration: a.Radius + b.Radius - distance,
	}
}
