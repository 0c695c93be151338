package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Obstacle is a static contour registered with every cell its bounding box
// touches. It never migrates; queries near it return it alongside moving
// entities.
type Obstacle struct {
	points   []mgl64.Vec3
	box      AABB
	centroid mgl64.Vec3
}

// NewObstacle bounds the contour and computes its centroid. The points slice
// is retained, not copied.
func NewObstacle(points []mgl64.Vec3) *Obstacle {
	o := &Obstacle{points: points}
	if len(points) == 0 {
		return o
	}

	o.box = AABB{Min: points[0], Max: points[0]}
	sum := mgl64.Vec3{}
	for _, p := range points {
		for axis := 0; axis < 3; axis++ {
			o.box.Min[axis] = math.Min(o.box.Min[axis], p[axis])
			o.box.Max[axis] = math.Max(o.box.Max[axis], p[axis])
		}
		sum = sum.Add(p)
	}
	o.centroid = sum.Mul(1 / float64(len(points)))

	return o
}

// Position returns the centroid of the contour.
func (o *Obstacle) Position() mgl64.Vec3 {
	return o.centroid
}

// Bounds returns the contour's bounding box.
func (o *Obstacle) Bounds() AABB {
	return o.box
}

// Points returns the contour vertices.
func (o *Obstacle) Points() []mgl64.Vec3 {
	return o.points
}

// AddPolygon registers a static contour with every cell its bounding box
// intersects and returns the obstacle entry. MakeEmpty drops obstacles along
// with everything else.
func (p *Partition) AddPolygon(points []mgl64.Vec3) *Obstacle {
	o := NewObstacle(points)
	for _, c := range p.cells {
		if c.Box.Intersects(o.box) {
			c.Add(o)
		}
	}
	return o
}
