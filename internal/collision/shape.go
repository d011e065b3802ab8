// Package collision detects overlaps between oriented rectangles with the
// separating axis theorem and emits contacts for the resolver.
package collision

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Box is the collision geometry of a body: half extents of its rectangle.
type Box struct {
	Half dynamo.Vec2
}

// BoxFromSize builds a box from full width and height.
func BoxFromSize(size dynamo.Vec2) Box {
	return Box{Half: size.Mul(0.5)}
}

// Size returns the full width and height.
func (b Box) Size() dynamo.Vec2 { return b.Half.Mul(2) }

// Empty reports a box with zero area. Empty boxes never collide.
func (b Box) Empty() bool { return b.Half[0] == 0 || b.Half[1] == 0 }

// Shape is an oriented rectangle in world space.
type Shape struct {
	Center   dynamo.Vec2
	Vertices [4]dynamo.Vec2
}

// NewShape places box at pos rotated by rot radians.
func NewShape(box Box, pos dynamo.Vec2, rot float64) Shape {
	r := mgl64.Rotate2D(rot)
	hx, hy := box.Half[0], box.Half[1]
	local := [4]dynamo.Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}

	s := Shape{Center: pos}
	for i, v := range local {
		s.Vertices[i] = pos.Add(r.Mul2x1(v))
	}
	return s
}

// Axes returns the two unique edge normals of the rectangle, normalized.
func (s Shape) Axes() ([2]dynamo.Vec2, error) {
	var axes [2]dynamo.Vec2
	for i := 0; i < 2; i++ {
		edge := s.Vertices[i+1].Sub(s.Vertices[i])
		n, _, ok := dynamo.Normalize(dynamo.Perp(edge))
		if !ok {
			return axes, fmt.Errorf("zero-length edge %d: %w", i, dynamo.ErrDegenerateGeometry)
		}
		axes[i] = n
	}
	return axes, nil
}

// Project returns the interval covered by the shape on axis.
func (s Shape) Project(axis dynamo.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s.Vertices {
		p := v.Dot(axis)
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}
