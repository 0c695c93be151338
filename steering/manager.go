package steering

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrBehaviorNotFound is returned when removing a behavior the manager does
// not hold.
var ErrBehaviorNotFound = errors.New("steering: behavior not found")

// Manager combines the force contributions of an ordered behavior stack for
// one vehicle. List order is priority order: earlier behaviors spend the
// vehicle's force budget first.
type Manager struct {
	vehicle   *Vehicle
	behaviors []Behavior

	accum   mgl64.Vec3 // reset every Calculate
	scratch mgl64.Vec3
}

// NewManager returns an empty manager for v.
func NewManager(v *Vehicle) *Manager {
	return &Manager{vehicle: v}
}

// Add appends b at the lowest priority. Behaviors may be shared between
// managers and reconfigured at any time between frames.
func (m *Manager) Add(b Behavior) {
	m.behaviors = append(m.behaviors, b)
}

// Remove deletes b, preserving the order of the remaining stack. Returns
// ErrBehaviorNotFound when the manager does not hold b.
func (m *Manager) Remove(b Behavior) error {
	for i, existing := range m.behaviors {
		if existing == b {
			m.behaviors = append(m.behaviors[:i], m.behaviors[i+1:]...)
			return nil
		}
	}
	return ErrBehaviorNotFound
}

// Clear drops every behavior.
func (m *Manager) Clear() {
	m.behaviors = m.behaviors[:0]
}

// Behaviors returns the stack in priority order. The slice is owned by the
// manager.
func (m *Manager) Behaviors() []Behavior {
	return m.behaviors
}

// Calculate combines all active behaviors into result, spending at most the
// vehicle's MaxForce of magnitude. Contributions are taken in stack order;
// the one that exhausts the budget is scaled down to fit and every behavior
// after it contributes nothing this frame.
func (m *Manager) Calculate(delta float64, result *mgl64.Vec3) {
	m.accum = mgl64.Vec3{}

	for _, b := range m.behaviors {
		base := b.Base()
		if !base.Active {
			continue
		}

		m.scratch = mgl64.Vec3{}
		b.Calculate(m.vehicle, &m.scratch, delta)

		if !m.accumulate(m.scratch.Mul(base.Weight)) {
			break
		}
	}

	*result = m.accum
}

// accumulate folds one weighted contribution into the running total and
// reports whether any budget remains for later behaviors.
func (m *Manager) accumulate(contribution mgl64.Vec3) bool {
	remaining := m.vehicle.MaxForce - m.accum.Len()
	if remaining <= 0 {
		return false
	}

	magnitude := contribution.Len()
	if magnitude > remaining {
		m.accum = m.accum.Add(contribution.Mul(remaining / magnitude))
		return false
	}

	m.accum = m.accum.Add(contribution)
	return true
}
