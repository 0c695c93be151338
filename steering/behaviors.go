package steering

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Seek steers at full speed directly toward a fixed target point.
type Seek struct {
	BehaviorBase
	Target mgl64.Vec3
}

// NewSeek returns a seek behavior aimed at target.
func NewSeek(target mgl64.Vec3) *Seek {
	return &Seek{BehaviorBase: newBehaviorBase(), Target: target}
}

// Calculate writes the desired velocity toward the target. The current
// velocity is not subtracted: the output is the full desired velocity. A
// target at the vehicle's own position yields zero force.
func (s *Seek) Calculate(v *Vehicle, force *mgl64.Vec3, _ float64) {
	dir := s.Target.Sub(v.Position())
	if d := dir.Dot(dir); d > 0 {
		*force = dir.Mul(v.MaxSpeed / math.Sqrt(d))
	}
}

// Flee steers away from a target point, but only while inside panic range.
type Flee struct {
	BehaviorBase
	Target        mgl64.Vec3
	PanicDistance float64
}

// NewFlee returns a flee behavior that triggers within panicDistance of
// target.
func NewFlee(target mgl64.Vec3, panicDistance float64) *Flee {
	return &Flee{BehaviorBase: newBehaviorBase(), Target: target, PanicDistance: panicDistance}
}

// Calculate leaves the force at zero outside panic range. Inside it, the
// force is the full-speed escape velocity minus the current velocity. When
// the vehicle sits exactly on the target the escape direction is +z.
func (f *Flee) Calculate(v *Vehicle, force *mgl64.Vec3, _ float64) {
	away := v.Position().Sub(f.Target)
	distSq := away.Dot(away)
	if distSq > f.PanicDistance*f.PanicDistance {
		return
	}

	if distSq > 0 {
		away = away.Mul(1 / math.Sqrt(distSq))
	} else {
		away = mgl64.Vec3{0, 0, 1}
	}

	*force = away.Mul(v.MaxSpeed).Sub(v.Velocity())
}

// Arrive steers toward a target and decelerates into it, going idle inside a
// tolerance band.
type Arrive struct {
	BehaviorBase
	Target       mgl64.Vec3
	Deceleration float64
	Tolerance    float64
}

// NewArrive returns an arrive behavior. deceleration stretches the braking
// distance and must be positive.
func NewArrive(target mgl64.Vec3, deceleration, tolerance float64) (*Arrive, error) {
	if deceleration <= 0 {
		return nil, fmt.Errorf("steering: arrive deceleration must be positive, got %v", deceleration)
	}
	return &Arrive{
		BehaviorBase: newBehaviorBase(),
		Target:       target,
		Deceleration: deceleration,
		Tolerance:    tolerance,
	}, nil
}

// Calculate writes the deceleration-scaled desired velocity minus the current
// velocity. Inside Tolerance the desired velocity is zero, so the force
// counteracts any remaining motion.
func (a *Arrive) Calculate(v *Vehicle, force *mgl64.Vec3, _ float64) {
	d := a.Target.Sub(v.Position())
	dist := d.Len()

	var desired mgl64.Vec3
	if dist > a.Tolerance {
		speed := math.Min(dist/a.Deceleration, v.MaxSpeed)
		// Scale once by speed/dist instead of normalizing then scaling.
		desired = d.Mul(speed / dist)
	}

	*force = desired.Sub(v.Velocity())
}

// Pursuit intercepts a moving evader by seeking its predicted position.
type Pursuit struct {
	BehaviorBase
	Evader           *Vehicle
	PredictionFactor float64

	seek *Seek
}

// NewPursuit returns a pursuit behavior chasing evader. predictionFactor
// scales how far ahead of the evader the pursuer aims; evader may be nil and
// set later.
func NewPursuit(evader *Vehicle, predictionFactor float64) *Pursuit {
	return &Pursuit{
		BehaviorBase:     newBehaviorBase(),
		Evader:           evader,
		PredictionFactor: predictionFactor,
		seek:             NewSeek(mgl64.Vec3{}),
	}
}

// Calculate seeks the evader's current position when it is ahead and closing
// head-on; otherwise it leads the target by a look-ahead proportional to
// distance over closing speed. A nil evader yields zero force.
func (p *Pursuit) Calculate(v *Vehicle, force *mgl64.Vec3, delta float64) {
	if p.Evader == nil {
		return
	}

	d := p.Evader.Position().Sub(v.Position())
	ownDir := v.Direction()
	evaderDir := p.Evader.Direction()

	ahead := d.Dot(ownDir) > 0
	facing := ownDir.Dot(evaderDir) < -0.95

	if ahead && facing {
		p.seek.Target = p.Evader.Position()
		p.seek.Calculate(v, force, delta)
		return
	}

	lookAhead := 0.0
	if closing := v.MaxSpeed + p.Evader.Speed(); closing > 0 {
		lookAhead = d.Len() / closing * p.PredictionFactor
	}

	p.seek.Target = p.Evader.Position().Add(p.Evader.Velocity().Mul(lookAhead))
	p.seek.Calculate(v, force, delta)
}
