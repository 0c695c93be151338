package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/michealparks/lib-ai/steering"
)

// bounceRestitution is the velocity fraction kept when reflecting off a
// world wall.
const bounceRestitution = 0.6

// DriftMover integrates steering forces into the ECS pose and motion
// components, adding the environmental drift current. It is the force
// sink of the steering contract: velocity changes happen here, the core
// only observes the resulting positions.
type DriftMover struct {
	motions *ecs.Map1[Motion]
	drift   *DriftField // optional
	half    mgl64.Vec3  // world half-extents forming the bounce walls
}

// NewDriftMover returns a mover bouncing agents inside the box spanning
// [-half, half] per axis. drift may be nil.
func NewDriftMover(motions *ecs.Map1[Motion], drift *DriftField, half mgl64.Vec3) *DriftMover {
	return &DriftMover{motions: motions, drift: drift, half: half}
}

// Move advances one agent: acceleration from the combined steering force
// and the drift current, a speed clamp, then integration and wall
// bounces. Vehicles without a pose-backed transform are left alone.
func (m *DriftMover) Move(v *steering.Vehicle, delta float64) {
	if delta <= 0 {
		return
	}
	pt, ok := v.Transform().(*poseTransform)
	if !ok {
		return
	}
	motion := m.motions.Get(pt.entity)

	mass := v.Mass
	if mass <= 0 {
		mass = 1
	}

	vel := motion.Vel.Add(v.Force().Mul(delta / mass))
	if m.drift != nil {
		vel = vel.Add(m.drift.At(v.Position()).Mul(delta))
	}
	if speed := vel.Len(); speed > v.MaxSpeed {
		vel = vel.Mul(v.MaxSpeed / speed)
	}

	pos := v.Position().Add(vel.Mul(delta))
	pos, vel = m.bounce(pos, vel)

	motion.Vel = vel
	pt.SetPosition(pos)
}

// bounce clamps pos back inside the world box and reflects the velocity
// component that crossed a wall.
func (m *DriftMover) bounce(pos, vel mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if pos[i] > m.half[i] {
			pos[i] = m.half[i]
			vel[i] = -vel[i] * bounceRestitution
		} else if pos[i] < -m.half[i] {
			pos[i] = -m.half[i]
			vel[i] = -vel[i] * bounceRestitution
		}
	}
	return pos, vel
}
