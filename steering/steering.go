// Package steering computes bounded per-frame steering forces for autonomous
// agents from a prioritized stack of behaviors.
//
// A Vehicle reads its pose from an external Transform each update, derives
// velocity from the observed position delta, and publishes the combined force
// of its behavior stack for an external mover to consume. The package never
// writes the authoritative position unless the opt-in integrating Mover is
// installed.
package steering

import "github.com/go-gl/mathgl/mgl64"

// Behavior computes one steering-force contribution for a vehicle at one
// instant. Concrete behaviors embed BehaviorBase and carry their own
// parameters; all parameters are mutable between frames.
type Behavior interface {
	// Base exposes the activation and weighting state shared by every
	// behavior. The manager checks Active and applies Weight; behaviors
	// themselves never do.
	Base() *BehaviorBase

	// Calculate writes the raw force for this frame into force, which
	// arrives zeroed. delta is the frame time in seconds.
	Calculate(v *Vehicle, force *mgl64.Vec3, delta float64)
}

// BehaviorBase is the state common to all behaviors.
type BehaviorBase struct {
	Active bool
	Weight float64
}

// Base returns b itself so embedding types satisfy Behavior.
func (b *BehaviorBase) Base() *BehaviorBase { return b }

func newBehaviorBase() BehaviorBase {
	return BehaviorBase{Active: true, Weight: 1}
}
