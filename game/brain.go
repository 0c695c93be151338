package game

import (
	"log/slog"
	"math"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/michealparks/lib-ai/config"
)

// captureCooldownSec is the pursuer downtime after a capture. A pursuer
// on cooldown roams, giving the relocated quarry a head start.
const captureCooldownSec = 2.0

// msgTagged is sent from a pursuer to its quarry on contact. The system
// routes it to the app's message handler, which queues the capture
// trigger.
const msgTagged = "tagged"

// updateBrains runs the per-agent decision pass before the kinematic
// update: wanderers re-aim their flee behavior at the nearest pursuer,
// pursuers tick their behavior tree. Positions read here are the ones
// cached at the previous update.
func (a *App) updateBrains() {
	for _, h := range a.handles {
		if !h.vehicle.Active {
			continue
		}
		switch h.role {
		case RoleWanderer:
			a.updateFleeTarget(h)
		case RolePursuer:
			ag := a.agents.Get(h.entity)
			if ag.Cooldown > 0 {
				ag.Cooldown -= a.dt
			}
			if _, err := h.brain.Tick(); err != nil {
				slog.Error("brain tick failed", "agent", h.id, "error", err)
			}
		}
	}
}

// updateFleeTarget points h's flee behavior at the nearest active
// pursuer. With no pursuers alive the behavior is parked inactive, so
// lone wanderers never flee their own shadow.
func (a *App) updateFleeTarget(h *agentHandle) {
	if h.flee == nil {
		return
	}

	var nearest *agentHandle
	best := math.MaxFloat64
	for _, other := range a.handles {
		if other.role != RolePursuer || !other.vehicle.Active {
			continue
		}
		d := other.vehicle.Position().Sub(h.vehicle.Position())
		if dd := d.Dot(d); dd < best {
			best = dd
			nearest = other
		}
	}

	if nearest == nil {
		h.flee.Active = false
		return
	}
	h.flee.Active = true
	h.flee.Target = nearest.vehicle.Position()
}

// newPursuerBrain builds the role-switching tree for one pursuer:
//
//	Selector
//	  Sequence(quarry in hunt range, hunt)
//	  roam
//
// The leaves only flip behavior Active flags and retarget the pursuit;
// the steering manager picks the change up on the next update.
func (a *App) newPursuerBrain(h *agentHandle) bt.Node {
	return bt.New(
		bt.Selector,
		bt.New(
			bt.Sequence,
			bt.New(a.quarryInRange(h)),
			bt.New(a.huntQuarry(h)),
		),
		bt.New(a.roam(h)),
	)
}

// quarryInRange succeeds when the pursuer is off cooldown and its quarry
// is alive and within hunt range.
func (a *App) quarryInRange(h *agentHandle) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		ag := a.agents.Get(h.entity)
		if ag.Cooldown > 0 {
			return bt.Failure, nil
		}
		quarry := a.byID[ag.QuarryID]
		if quarry == nil || !quarry.vehicle.Active {
			return bt.Failure, nil
		}
		r := config.Cfg().Agents.HuntRange
		d := quarry.vehicle.Position().Sub(h.vehicle.Position())
		if d.Dot(d) > r*r {
			return bt.Failure, nil
		}
		return bt.Success, nil
	}
}

// huntQuarry enables pursuit of the current quarry and, on contact, tags
// it through the system's message channel. Capture resolution itself is
// deferred to the trigger stage so it runs against fresh poses.
func (a *App) huntQuarry(h *agentHandle) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		quarry := a.byID[a.agents.Get(h.entity).QuarryID]
		if quarry == nil {
			return bt.Failure, nil
		}

		h.pursuit.Evader = quarry.vehicle
		h.pursuit.Active = true
		h.wander.Active = false

		cr := config.Cfg().Agents.CaptureRadius
		d := quarry.vehicle.Position().Sub(h.vehicle.Position())
		if d.Dot(d) <= cr*cr {
			a.sys.SendMessage(h.vehicle, quarry.vehicle, msgTagged)
		}
		return bt.Success, nil
	}
}

// roam is the fallback: wander on, pursuit off.
func (a *App) roam(h *agentHandle) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		h.pursuit.Active = false
		h.wander.Active = true
		return bt.Success, nil
	}
}
