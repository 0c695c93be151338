package steering

import "github.com/go-gl/mathgl/mgl64"

// Vehicle is one steered agent. It caches the external pose once per update,
// observes velocity from position deltas rather than integrating force, and
// publishes the combined steering force for whatever actually moves the
// agent.
type Vehicle struct {
	// Forward and Up are the local basis the orientation rotates. Both must
	// stay unit length.
	Forward mgl64.Vec3
	Up      mgl64.Vec3

	MaxSpeed float64 // desired-velocity ceiling used by behaviors
	MaxForce float64 // per-frame force budget enforced by the manager
	Mass     float64

	// NeighborhoodRadius bounds Neighbors. Neighbors is rebuilt by the owning
	// system each frame; outside an update pass it is stale and read-only.
	NeighborhoodRadius float64
	Neighbors          []*Vehicle

	Active             bool
	UpdateOrientation  bool
	UpdateNeighborhood bool

	Manager  *Manager
	Smoother *Smoother // optional; smooths the orientation target
	Mover    Mover

	transform Transform
	position  mgl64.Vec3
	rotation  mgl64.Quat
	velocity  mgl64.Vec3
	force     mgl64.Vec3
}

// NewVehicle returns an active vehicle reading its pose from t. Neighborhood
// maintenance starts disabled; enable UpdateNeighborhood on vehicles whose
// behaviors need neighbors.
func NewVehicle(t Transform) *Vehicle {
	v := &Vehicle{
		Forward:            mgl64.Vec3{0, 0, 1},
		Up:                 mgl64.Vec3{0, 1, 0},
		MaxSpeed:           1,
		MaxForce:           100,
		Mass:               1,
		NeighborhoodRadius: 1,
		Active:             true,
		UpdateOrientation:  true,
		Mover:              ExternalMover{},
		transform:          t,
		position:           t.Position(),
		rotation:           t.Rotation(),
	}
	v.Manager = NewManager(v)
	return v
}

// Position returns the position cached at the last update.
func (v *Vehicle) Position() mgl64.Vec3 { return v.position }

// Rotation returns the orientation cached at the last update.
func (v *Vehicle) Rotation() mgl64.Quat { return v.rotation }

// Velocity returns the velocity observed from external position deltas.
func (v *Vehicle) Velocity() mgl64.Vec3 { return v.velocity }

// Speed returns the magnitude of the observed velocity.
func (v *Vehicle) Speed() float64 { return v.velocity.Len() }

// Force returns the steering force combined at the last update, for the
// external mover to consume.
func (v *Vehicle) Force() mgl64.Vec3 { return v.force }

// Transform returns the external pose source.
func (v *Vehicle) Transform() Transform { return v.transform }

// Direction returns the world-space facing: local Forward rotated by the
// current orientation, normalized.
func (v *Vehicle) Direction() mgl64.Vec3 {
	d := v.rotation.Rotate(v.Forward)
	if l := d.Len(); l > 0 {
		return d.Mul(1 / l)
	}
	return d
}

// LookAt orients local Forward toward target, rolling so local Up stays as
// close as possible to the Up reference. A target collinear with Up keeps the
// shortest-arc rotation and skips the roll correction; a target at the
// vehicle's own position leaves the orientation unchanged. The result is
// written to the cached rotation and through the Transform.
func (v *Vehicle) LookAt(target mgl64.Vec3) {
	dir := target.Sub(v.position)
	if dir.Dot(dir) < 1e-12 {
		return
	}
	dir = dir.Normalize()

	swing := mgl64.QuatBetweenVectors(v.Forward, dir)

	projected := v.Up.Sub(dir.Mul(v.Up.Dot(dir)))
	if projected.Dot(projected) < 1e-12 {
		v.setRotation(swing)
		return
	}

	roll := mgl64.QuatBetweenVectors(swing.Rotate(v.Up), projected.Normalize())
	v.setRotation(roll.Mul(swing).Normalize())
}

func (v *Vehicle) setRotation(q mgl64.Quat) {
	v.rotation = q
	v.transform.SetRotation(q)
}

// Update runs one kinematic step:
//
//  1. velocity = (external position - cached position) / delta. Velocity is
//     observed, never integrated from force; delta <= 0 keeps the previous
//     velocity.
//  2. Re-read the cached pose from the Transform.
//  3. Combine the behavior stack into Force.
//  4. Run the Mover strategy.
//  5. If UpdateOrientation is set and squared speed exceeds 1e-8, face the
//     point one displacement ahead, where displacement is velocity*delta or
//     the smoothed velocity times delta when a Smoother is attached.
func (v *Vehicle) Update(delta float64) {
	if delta > 0 {
		v.velocity = v.transform.Position().Sub(v.position).Mul(1 / delta)
	}

	v.position = v.transform.Position()
	v.rotation = v.transform.Rotation()

	v.Manager.Calculate(delta, &v.force)

	if v.Mover != nil {
		v.Mover.Move(v, delta)
	}

	if !v.UpdateOrientation || v.velocity.Dot(v.velocity) <= 1e-8 {
		return
	}

	displacement := v.velocity.Mul(delta)
	if v.Smoother != nil {
		displacement = v.Smoother.Calculate(v.velocity).Mul(delta)
	}
	v.LookAt(v.position.Add(displacement))
}
