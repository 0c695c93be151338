package steering

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Wander produces a meandering force by chasing a jittering point constrained
// to a circle projected ahead of the vehicle. The local target persists
// between calls; this is the only behavior with frame-to-frame memory.
type Wander struct {
	BehaviorBase
	Radius   float64 // wander circle radius
	Distance float64 // circle offset ahead of the vehicle
	Jitter   float64 // per-second displacement of the local target

	rng    *rand.Rand
	target mgl64.Vec3 // local-space point, kept on the circle
}

// NewWander returns a wander behavior. rng drives the jitter; pass a seeded
// generator for reproducible runs or nil for a time-seeded one.
func NewWander(radius, distance, jitter float64, rng *rand.Rand) *Wander {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	theta := rng.Float64() * 2 * math.Pi
	return &Wander{
		BehaviorBase: newBehaviorBase(),
		Radius:       radius,
		Distance:     distance,
		Jitter:       jitter,
		rng:          rng,
		target: mgl64.Vec3{
			radius * math.Cos(theta),
			0,
			radius * math.Sin(theta),
		},
	}
}

// Calculate perturbs the local target in the x/z plane, pins it back onto the
// circle, projects it Distance along local +z, transforms it to world space
// and steers toward it.
func (w *Wander) Calculate(v *Vehicle, force *mgl64.Vec3, delta float64) {
	// Jitter scales with delta so wander strength is frame-rate independent.
	j := w.Jitter * delta
	w.target[0] += (w.rng.Float64()*2 - 1) * j
	w.target[2] += (w.rng.Float64()*2 - 1) * j

	if l := w.target.Len(); l > 0 {
		w.target = w.target.Mul(w.Radius / l)
	}

	local := w.target
	local[2] += w.Distance

	world := v.Rotation().Rotate(local).Add(v.Position())
	*force = world.Sub(v.Position())
}
