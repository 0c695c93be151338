package game

import "github.com/go-gl/mathgl/mgl64"

// Role classifies an agent's steering repertoire.
type Role uint8

const (
	// RoleWanderer roams the volume and flees nearby pursuers.
	RoleWanderer Role = iota
	// RolePursuer chases its quarry when in range, roams otherwise.
	RolePursuer
)

// String returns the role name used in snapshots and recordings.
func (r Role) String() string {
	switch r {
	case RoleWanderer:
		return "wanderer"
	case RolePursuer:
		return "pursuer"
	default:
		return "unknown"
	}
}

// Pose is the authoritative position and orientation of an agent. The
// steering core reads and writes it through a transform adapter; nothing
// else moves an agent.
type Pose struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// Motion is the mover-owned kinematic state. The steering core never
// sees it: the core observes velocity from pose deltas, while the mover
// integrates this one.
type Motion struct {
	Vel mgl64.Vec3
}

// Agent carries identity and chase bookkeeping.
type Agent struct {
	ID   uint32
	Role Role

	// QuarryID is the wanderer a pursuer is currently assigned to
	// (0 = none). Unused on wanderers.
	QuarryID uint32

	// Cooldown is the remaining downtime after a capture, in seconds.
	// A pursuer on cooldown roams instead of hunting.
	Cooldown float64
}
