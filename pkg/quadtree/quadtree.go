// Package quadtree implements the broad-phase spatial index: a point
// quadtree over an axis-aligned region, subdividing when a leaf exceeds a
// shared capacity limit. Nodes live in a single arena slice addressed by
// index rather than as individually allocated children, which keeps the
// tree cheap to rebuild every tick and makes the depth ceiling trivial to
// enforce.
//
// The index is built, queried, and discarded within one simulation tick.
// It is not safe for concurrent mutation.
package quadtree

import (
	"fmt"

	"github.com/opd-ai/go-quadsim/pkg/entity"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// DefaultMaxDepth bounds subdivision when Config.MaxDepth is unset. Many
// coincident points would otherwise recurse forever, since splitting never
// thins a fully coincident cluster below capacity.
const DefaultMaxDepth = 8

// noChild marks an unused child slot on a leaf node.
const noChild int32 = -1

// Config carries the tunables shared by every node of one tree.
type Config struct {
	// Capacity is the number of points a leaf holds before it splits.
	// Must be at least 1.
	Capacity int
	// MaxDepth is the subdivision ceiling. Leaves at this depth accept
	// points beyond Capacity instead of splitting. Values <= 0 select
	// DefaultMaxDepth.
	MaxDepth int
}

// Point is a stored entry: an entity id paired with the position it held
// when it was inserted. The tree never owns entity state beyond this
// snapshot.
type Point struct {
	ID       entity.ID
	Position physics.Vector2D
}

// node is one region of the tree. A node is either a leaf holding points,
// or internal holding four children partitioning its bounds into equal
// quadrants and no points of its own. Bounds never change after creation.
type node struct {
	bounds   physics.Rect
	points   []Point
	children [4]int32
	depth    int32
	divided  bool
}

// Tree is an arena-backed point quadtree.
type Tree struct {
	nodes    []node
	capacity int
	maxDepth int32
}

// New creates an empty tree covering bounds. The capacity limit and bounds
// are validated up front: a capacity below 1 or negative extents is a
// configuration error, never silently coerced.
func New(bounds physics.Rect, cfg Config) (*Tree, error) {
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("quadtree: capacity must be at least 1, got %d", cfg.Capacity)
	}
	if bounds.Width < 0 || bounds.Height < 0 {
		return nil, fmt.Errorf("quadtree: bounds must have non-negative extents, got %gx%g",
			bounds.Width, bounds.Height)
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	t := &Tree{
		capacity: cfg.Capacity,
		maxDepth: int32(maxDepth),
	}
	t.nodes = append(t.nodes, newLeaf(bounds, 0))
	return t, nil
}

// Reset drops all nodes and re-roots the tree over bounds, reusing the
// arena's backing storage. Semantically identical to building a fresh tree
// with the same configuration.
func (t *Tree) Reset(bounds physics.Rect) {
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, newLeaf(bounds, 0))
}

func newLeaf(bounds physics.Rect, depth int32) node {
	return node{
		bounds:   bounds,
		children: [4]int32{noChild, noChild, noChild, noChild},
		depth:    depth,
	}
}

// Bounds returns the root region.
func (t *Tree) Bounds() physics.Rect {
	return t.nodes[0].bounds
}

// Insert stores the point in every leaf whose region contains it. Positions
// outside the root region are silently dropped and Insert returns false;
// this is documented policy, not an error. A point exactly on a split
// boundary may be stored in more than one child, so queries can report it
// more than once.
func (t *Tree) Insert(id entity.ID, position physics.Vector2D) bool {
	return t.insert(0, Point{ID: id, Position: position})
}

func (t *Tree) insert(idx int32, p Point) bool {
	if !t.nodes[idx].bounds.Contains(p.Position) {
		return false
	}

	if !t.nodes[idx].divided {
		n := &t.nodes[idx]
		// At the depth ceiling the leaf keeps accepting points past
		// capacity rather than subdividing forever.
		if len(n.points) < t.capacity || n.depth >= t.maxDepth {
			n.points = append(n.points, p)
			return true
		}
		t.split(idx)
	}

	// Forward to every child whose region contains the position. Normally
	// exactly one; boundary ties land in several.
	inserted := false
	for _, child := range t.nodes[idx].children {
		if t.insert(child, p) {
			inserted = true
		}
	}
	return inserted
}

// split turns a leaf into an internal node: four equal quadrants sharing
// the tree's capacity limit, with the leaf's points drained and re-routed
// into them. It must only run once per node; insert guarantees that by
// checking divided first.
func (t *Tree) split(idx int32) {
	bounds := t.nodes[idx].bounds
	depth := t.nodes[idx].depth
	halfW := bounds.Width / 2
	halfH := bounds.Height / 2

	quadrants := [4]physics.Rect{
		{X: bounds.X, Y: bounds.Y, Width: halfW, Height: halfH},
		{X: bounds.X + halfW, Y: bounds.Y, Width: halfW, Height: halfH},
		{X: bounds.X, Y: bounds.Y + halfH, Width: halfW, Height: halfH},
		{X: bounds.X + halfW, Y: bounds.Y + halfH, Width: halfW, Height: halfH},
	}

	first := int32(len(t.nodes))
	for _, quadrant := range quadrants {
		t.nodes = append(t.nodes, newLeaf(quadrant, depth+1))
	}

	// The append above may have moved the arena, so re-take the node.
	n := &t.nodes[idx]
	drained := n.points
	n.points = nil
	n.divided = true
	for i := range n.children {
		n.children[i] = first + int32(i)
	}

	for _, p := range drained {
		for _, child := range t.nodes[idx].children {
			t.insert(child, p)
		}
	}
}

// Query returns every point stored in a leaf whose region intersects area.
// Subtrees whose region misses the area are pruned entirely; intersecting
// leaves are reported whole, without filtering individual points against
// the area. The result is therefore a superset of the points truly inside
// area (no false negatives, possible false positives), and callers must
// run an exact narrow-phase test on it.
func (t *Tree) Query(area physics.Rect) []Point {
	var found []Point
	t.query(0, area, &found)
	return found
}

func (t *Tree) query(idx int32, area physics.Rect, found *[]Point) {
	n := &t.nodes[idx]
	if !n.bounds.Intersects(area) {
		return
	}
	if !n.divided {
		*found = append(*found, n.points...)
		return
	}
	for _, child := range n.children {
		t.query(child, area, found)
	}
}

// Walk visits every node depth-first, exposing its region, depth, and
// stored point count. This is the debug traversal consumed by renderers;
// it is not part of the collision contract.
func (t *Tree) Walk(visit func(bounds physics.Rect, depth, points int)) {
	t.walk(0, visit)
}

func (t *Tree) walk(idx int32, visit func(bounds physics.Rect, depth, points int)) {
	n := &t.nodes[idx]
	visit(n.bounds, int(n.depth), len(n.points))
	if !n.divided {
		return
	}
	for _, child := range n.children {
		t.walk(child, visit)
	}
}

// Len returns the number of stored point entries. A boundary-tied point
// counts once per leaf holding it.
func (t *Tree) Len() int {
	total := 0
	for i := range t.nodes {
		total += len(t.nodes[i].points)
	}
	return total
}

// NodeCount returns the number of nodes in the arena, including internal
// nodes. Useful for introspecting subdivision in tests.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}
