package collision

import (
	"math"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Contact is one overlapping pair found this tick.
type Contact struct {
	A, B        body.Handle
	Normal      dynamo.Vec2 // unit, points from A to B
	Penetration float64
	Restitution float64
}

// Overlap tests two shapes. When they intersect it returns the normal of
// least overlap (oriented from a to b) and the overlap depth on it.
// Ties go to the first axis found, axes of a before axes of b.
func Overlap(a, b Shape) (normal dynamo.Vec2, depth float64, hit bool, err error) {
	axesA, err := a.Axes()
	if err != nil {
		return normal, 0, false, err
	}
	axesB, err := b.Axes()
	if err != nil {
		return normal, 0, false, err
	}

	depth = math.Inf(1)
	for _, axis := range [4]dynamo.Vec2{axesA[0], axesA[1], axesB[0], axesB[1]} {
		loA, hiA := a.Project(axis)
		loB, hiB := b.Project(axis)
		o := math.Min(hiA, hiB) - math.Max(loA, loB)
		if o <= 0 {
			return dynamo.Vec2{}, 0, false, nil
		}
		if o < depth {
			depth = o
			normal = axis
		}
	}

	if b.Center.Sub(a.Center).Dot(normal) < 0 {
		normal = normal.Mul(-1)
	}
	return normal, depth, true, nil
}
