package steering

import "github.com/go-gl/mathgl/mgl64"

// Transform is the external pose a vehicle reads every update. The engine
// writes orientation back through it; position is only written by the opt-in
// integrating mover.
type Transform interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	SetPosition(mgl64.Vec3)
	SetRotation(mgl64.Quat)
}

// BasicTransform is a plain in-memory pose.
type BasicTransform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// NewBasicTransform returns a pose at pos with identity orientation.
func NewBasicTransform(pos mgl64.Vec3) *BasicTransform {
	return &BasicTransform{Pos: pos, Rot: mgl64.QuatIdent()}
}

func (t *BasicTransform) Position() mgl64.Vec3     { return t.Pos }
func (t *BasicTransform) Rotation() mgl64.Quat     { return t.Rot }
func (t *BasicTransform) SetPosition(p mgl64.Vec3) { t.Pos = p }
func (t *BasicTransform) SetRotation(r mgl64.Quat) { t.Rot = r }

// TransformTable stores the poses of instanced agents in one block, addressed
// by slot index. Slot views share the table's storage.
type TransformTable struct {
	positions []mgl64.Vec3
	rotations []mgl64.Quat
}

// NewTransformTable returns a table with the given number of slots, all at
// the origin with identity orientation.
func NewTransformTable(slots int) *TransformTable {
	t := &TransformTable{
		positions: make([]mgl64.Vec3, slots),
		rotations: make([]mgl64.Quat, slots),
	}
	for i := range t.rotations {
		t.rotations[i] = mgl64.QuatIdent()
	}
	return t
}

// Len returns the number of slots.
func (t *TransformTable) Len() int {
	return len(t.positions)
}

// Slot returns a Transform view of slot i.
func (t *TransformTable) Slot(i int) Transform {
	return &tableSlot{table: t, index: i}
}

type tableSlot struct {
	table *TransformTable
	index int
}

func (s *tableSlot) Position() mgl64.Vec3     { return s.table.positions[s.index] }
func (s *tableSlot) Rotation() mgl64.Quat     { return s.table.rotations[s.index] }
func (s *tableSlot) SetPosition(p mgl64.Vec3) { s.table.positions[s.index] = p }
func (s *tableSlot) SetRotation(r mgl64.Quat) { s.table.rotations[s.index] = r }
