package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/michealparks/lib-ai/config"
	"github.com/michealparks/lib-ai/steering"
)

// spawnMargin keeps initial and respawn positions off the world walls.
const spawnMargin = 0.9

// spawnInitialPopulation seeds the configured mix of wanderers and
// pursuers at random positions, then points every pursuer at its nearest
// quarry.
func (a *App) spawnInitialPopulation() {
	cfg := config.Cfg()

	for i := 0; i < cfg.Agents.Wanderers; i++ {
		a.spawnWanderer(a.randomPosition())
	}
	for i := 0; i < cfg.Agents.Pursuers; i++ {
		a.spawnPursuer(a.randomPosition())
	}

	for _, h := range a.handles {
		if h.role == RolePursuer {
			a.retarget(h, 0)
		}
	}
}

// randomPosition returns a uniform point inside the world box, pulled in
// by the spawn margin.
func (a *App) randomPosition() mgl64.Vec3 {
	d := config.Cfg().Derived
	return mgl64.Vec3{
		(a.rng.Float64()*2 - 1) * d.HalfWidth * spawnMargin,
		(a.rng.Float64()*2 - 1) * d.HalfHeight * spawnMargin,
		(a.rng.Float64()*2 - 1) * d.HalfDepth * spawnMargin,
	}
}

// spawnAgent creates the entity, the vehicle reading its pose, and the
// handle shared by both roles. Role-specific spawners attach behaviors
// in priority order afterwards.
func (a *App) spawnAgent(pos mgl64.Vec3, role Role) *agentHandle {
	cfg := config.Cfg()

	id := a.nextID
	a.nextID++

	pose := Pose{Pos: pos, Rot: mgl64.QuatIdent()}
	motion := Motion{}
	agent := Agent{ID: id, Role: role}
	entity := a.agentMapper.NewEntity(&pose, &motion, &agent)

	v := steering.NewVehicle(newPoseTransform(a.poses, entity))
	v.MaxSpeed = cfg.Vehicle.MaxSpeed
	v.MaxForce = cfg.Vehicle.MaxForce
	v.Mass = cfg.Vehicle.Mass
	v.NeighborhoodRadius = cfg.Vehicle.NeighborhoodRadius
	v.Mover = a.mover
	if cfg.Vehicle.SmootherSamples > 0 {
		if smoother, err := steering.NewSmoother(cfg.Vehicle.SmootherSamples); err == nil {
			v.Smoother = smoother
		}
	}

	h := &agentHandle{entity: entity, id: id, role: role, vehicle: v}
	a.handles = append(a.handles, h)
	a.byID[id] = h
	a.byVehicle[v] = h
	a.sys.Add(v)
	return h
}

// spawnWanderer creates a roaming agent. Escape outranks roaming: the
// manager spends the force budget in stack order, so flee goes first.
func (a *App) spawnWanderer(pos mgl64.Vec3) *agentHandle {
	st := config.Cfg().Steering
	h := a.spawnAgent(pos, RoleWanderer)

	h.flee = steering.NewFlee(pos, st.Flee.PanicDistance)
	h.flee.Weight = st.Flee.Weight
	h.flee.Active = false // armed by the brain pass once a pursuer exists
	h.vehicle.Manager.Add(h.flee)

	h.wander = steering.NewWander(st.Wander.Radius, st.Wander.Distance, st.Wander.Jitter, a.rng)
	h.wander.Weight = st.Wander.Weight
	h.vehicle.Manager.Add(h.wander)

	h.vehicle.UpdateNeighborhood = true
	return h
}

// spawnPursuer creates a hunting agent. Pursuit leads the stack but
// starts inactive; the brain enables it when the quarry comes in range.
func (a *App) spawnPursuer(pos mgl64.Vec3) *agentHandle {
	cfg := config.Cfg()
	st := cfg.Steering
	h := a.spawnAgent(pos, RolePursuer)

	h.pursuit = steering.NewPursuit(nil, st.Pursuit.PredictionFactor)
	h.pursuit.Weight = st.Pursuit.Weight
	h.pursuit.Active = false
	h.vehicle.Manager.Add(h.pursuit)

	h.wander = steering.NewWander(st.Wander.Radius, st.Wander.Distance, st.Wander.Jitter, a.rng)
	h.wander.Weight = st.Wander.Weight
	h.vehicle.Manager.Add(h.wander)

	// Without a speed edge a fleeing quarry is never caught.
	if cfg.Agents.SpeedAdvantage > 0 {
		h.vehicle.MaxSpeed = cfg.Vehicle.MaxSpeed * cfg.Agents.SpeedAdvantage
	}

	h.brain = a.newPursuerBrain(h)
	return h
}

// retarget points h at the nearest active wanderer, skipping excludeID.
// With no candidates the current assignment is kept.
func (a *App) retarget(h *agentHandle, excludeID uint32) {
	var nearest *agentHandle
	best := math.MaxFloat64
	for _, other := range a.handles {
		if other.role != RoleWanderer || other.id == excludeID || !other.vehicle.Active {
			continue
		}
		d := other.vehicle.Position().Sub(h.vehicle.Position())
		if dd := d.Dot(d); dd < best {
			best = dd
			nearest = other
		}
	}
	if nearest == nil {
		return
	}
	a.agents.Get(h.entity).QuarryID = nearest.id
	h.pursuit.Evader = nearest.vehicle
}
