package steering

// Mover is the strategy run after a vehicle's steering force is computed. It
// decides whether the engine moves the agent or only observes it.
type Mover interface {
	Move(v *Vehicle, delta float64)
}

// ExternalMover leaves motion to an outside collaborator: the engine observes
// position changes and publishes Force, nothing more. This is the default.
type ExternalMover struct{}

// Move does nothing.
func (ExternalMover) Move(*Vehicle, float64) {}

// EulerMover makes the engine the authoritative mover: force/Mass accelerates
// the velocity, the velocity is clamped to MaxSpeed and integrated into the
// position, and the position is written back through the Transform. The
// observed velocity from the update step is replaced by the integrated one.
type EulerMover struct{}

// Move integrates one step.
func (EulerMover) Move(v *Vehicle, delta float64) {
	if delta <= 0 || v.Mass <= 0 {
		return
	}

	vel := v.velocity.Add(v.force.Mul(delta / v.Mass))
	if speed := vel.Len(); speed > v.MaxSpeed {
		vel = vel.Mul(v.MaxSpeed / speed)
	}

	v.velocity = vel
	// Only the Transform is written; the cached position is left behind so
	// the next update observes this write like any external move and derives
	// the same velocity back.
	v.transform.SetPosition(v.position.Add(vel.Mul(delta)))
}
