package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/michealparks/lib-ai/spatial"
	"github.com/michealparks/lib-ai/steering"
)

func newVehicleAt(pos mgl64.Vec3) *steering.Vehicle {
	return steering.NewVehicle(steering.NewBasicTransform(pos))
}

func TestAddRemoveHooks(t *testing.T) {
	s := New()

	var added, removed []*steering.Vehicle
	s.OnAdd(func(v *steering.Vehicle) { added = append(added, v) })
	s.OnRemove(func(v *steering.Vehicle) { removed = append(removed, v) })

	v := newVehicleAt(mgl64.Vec3{})
	s.Add(v)
	if len(added) != 1 || added[0] != v {
		t.Errorf("OnAdd saw %v, want the added vehicle", added)
	}

	if err := s.Remove(v); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(removed) != 1 || removed[0] != v {
		t.Errorf("OnRemove saw %v, want the removed vehicle", removed)
	}

	if err := s.Remove(v); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("second Remove = %v, want ErrVehicleNotFound", err)
	}
}

func TestRemoveClearsCell(t *testing.T) {
	p := spatial.NewPartition(10, 10, 10, 2, 2, 2)
	s := NewWithPartition(p)

	v := newVehicleAt(mgl64.Vec3{-2, -2, -2})
	s.Add(v)
	s.Update(1.0 / 60)

	idx := s.CellIndex(v)
	if idx == -1 {
		t.Fatal("vehicle unindexed after update")
	}

	if err := s.Remove(v); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, e := range p.Cells()[idx].Entries() {
		if e == v {
			t.Error("cell still holds the removed vehicle")
		}
	}
}

func TestNeighborhoodFiltering(t *testing.T) {
	s := New()

	a := newVehicleAt(mgl64.Vec3{})
	a.UpdateNeighborhood = true
	a.NeighborhoodRadius = 2

	b := newVehicleAt(mgl64.Vec3{1, 0, 0})
	onEdge := newVehicleAt(mgl64.Vec3{0, 2, 0})
	far := newVehicleAt(mgl64.Vec3{5, 0, 0})
	inactive := newVehicleAt(mgl64.Vec3{0, 1, 0})
	inactive.Active = false

	s.Add(a)
	s.Add(b)
	s.Add(onEdge)
	s.Add(far)
	s.Add(inactive)

	s.UpdateNeighborhood(a)

	if len(a.Neighbors) != 2 {
		t.Fatalf("neighbors = %d, want 2 (inside + on the radius)", len(a.Neighbors))
	}
	seen := map[*steering.Vehicle]bool{}
	for _, n := range a.Neighbors {
		seen[n] = true
		if n == a {
			t.Error("vehicle neighbors itself")
		}
	}
	if !seen[b] || !seen[onEdge] {
		t.Error("neighbor set missing an expected vehicle")
	}
	if seen[far] || seen[inactive] {
		t.Error("neighbor set holds a far or inactive vehicle")
	}
}

func TestNeighborhoodFlagGates(t *testing.T) {
	s := New()

	a := newVehicleAt(mgl64.Vec3{})
	b := newVehicleAt(mgl64.Vec3{0.5, 0, 0})
	s.Add(a)
	s.Add(b)

	// Flag off: the stale neighbor list is left alone.
	stale := newVehicleAt(mgl64.Vec3{99, 0, 0})
	a.Neighbors = append(a.Neighbors, stale)

	s.UpdateNeighborhood(a)

	if len(a.Neighbors) != 1 || a.Neighbors[0] != stale {
		t.Errorf("neighbors = %v, want untouched stale list", a.Neighbors)
	}
}

func TestNeighborhoodPartitionMatchesFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	positions := make([]mgl64.Vec3, 40)
	for i := range positions {
		positions[i] = mgl64.Vec3{
			rng.Float64()*80 - 40,
			rng.Float64()*80 - 40,
			rng.Float64()*80 - 40,
		}
	}

	build := func(p *spatial.Partition) *System {
		s := New()
		if p != nil {
			s = NewWithPartition(p)
		}
		for _, pos := range positions {
			v := newVehicleAt(pos)
			v.UpdateNeighborhood = true
			v.NeighborhoodRadius = 15
			s.Add(v)
		}
		// Two frames: cells fill during the first pass, so neighbor sets
		// are complete from the second on.
		s.Update(1.0 / 60)
		s.Update(1.0 / 60)
		return s
	}

	indexed := build(spatial.NewPartition(100, 100, 100, 4, 4, 4))
	scanned := build(nil)

	for i := range positions {
		got := neighborSet(indexed.Vehicles()[i])
		want := neighborSet(scanned.Vehicles()[i])
		if len(got) != len(want) {
			t.Fatalf("vehicle %d: %d neighbors indexed vs %d scanned", i, len(got), len(want))
		}
		for k := range want {
			if !got[k] {
				t.Fatalf("vehicle %d: indexed set missing neighbor at %v", i, k)
			}
		}
	}
}

// neighborSet keys neighbors by position so vehicles from different systems
// compare.
func neighborSet(v *steering.Vehicle) map[mgl64.Vec3]bool {
	set := make(map[mgl64.Vec3]bool, len(v.Neighbors))
	for _, n := range v.Neighbors {
		set[n.Position()] = true
	}
	return set
}

func TestUpdateMigratesCells(t *testing.T) {
	p := spatial.NewPartition(10, 10, 10, 2, 2, 2)
	s := NewWithPartition(p)

	tr := steering.NewBasicTransform(mgl64.Vec3{-2.5, -2.5, -2.5})
	v := steering.NewVehicle(tr)
	s.Add(v)

	if got := s.CellIndex(v); got != -1 {
		t.Fatalf("index before first update = %d, want -1", got)
	}

	s.Update(1.0 / 60)
	if got := s.CellIndex(v); got != 0 {
		t.Fatalf("index = %d, want 0", got)
	}

	tr.SetPosition(mgl64.Vec3{2.5, -2.5, -2.5})
	s.Update(1.0 / 60)
	if got := s.CellIndex(v); got != 4 {
		t.Fatalf("index after move = %d, want 4", got)
	}

	count := 0
	for _, c := range p.Cells() {
		for _, e := range c.Entries() {
			if e == v {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("vehicle held by %d cells, want 1", count)
	}
}

func TestInactiveVehicleSkipped(t *testing.T) {
	p := spatial.NewPartition(10, 10, 10, 2, 2, 2)
	s := NewWithPartition(p)

	tr := steering.NewBasicTransform(mgl64.Vec3{1, 1, 1})
	v := steering.NewVehicle(tr)
	v.Active = false
	s.Add(v)

	tr.SetPosition(mgl64.Vec3{2, 2, 2})
	s.Update(1.0 / 60)

	if !v.Velocity().ApproxEqual(mgl64.Vec3{}) {
		t.Errorf("inactive vehicle derived velocity %v", v.Velocity())
	}
	if got := s.CellIndex(v); got != -1 {
		t.Errorf("inactive vehicle indexed into cell %d", got)
	}
}

func TestTriggerStage(t *testing.T) {
	s := New()

	tr := steering.NewBasicTransform(mgl64.Vec3{})
	v := steering.NewVehicle(tr)
	s.Add(v)

	var seen mgl64.Vec3
	fired := 0
	s.QueueTrigger(TriggerFunc(func(sys *System) {
		fired++
		seen = sys.Vehicles()[0].Position()
	}))

	// Move the transform first, so the trigger proves it ran after the
	// vehicle pass refreshed the pose.
	tr.SetPosition(mgl64.Vec3{3, 0, 0})
	s.Update(1.0 / 60)

	if fired != 1 {
		t.Fatalf("trigger fired %d times, want 1", fired)
	}
	if want := (mgl64.Vec3{3, 0, 0}); !seen.ApproxEqual(want) {
		t.Errorf("trigger saw position %v, want the fresh pose %v", seen, want)
	}

	s.Update(1.0 / 60)
	if fired != 1 {
		t.Errorf("trigger fired again after the queue was cleared: %d", fired)
	}
}

func TestTriggerRequeueRunsNextFrame(t *testing.T) {
	s := New()

	fired := 0
	var again Trigger
	again = TriggerFunc(func(sys *System) {
		fired++
		if fired == 1 {
			sys.QueueTrigger(again)
		}
	})
	s.QueueTrigger(again)

	s.Update(1.0 / 60)
	if fired != 1 {
		t.Fatalf("fired = %d after first frame, want 1", fired)
	}
	s.Update(1.0 / 60)
	if fired != 2 {
		t.Fatalf("fired = %d after second frame, want 2", fired)
	}
}

func TestDeferredRemoval(t *testing.T) {
	s := New()
	a := newVehicleAt(mgl64.Vec3{})
	b := newVehicleAt(mgl64.Vec3{1, 0, 0})
	s.Add(a)
	s.Add(b)

	s.Defer(func(sys *System) {
		if err := sys.Remove(a); err != nil {
			t.Errorf("deferred Remove: %v", err)
		}
	})

	s.Update(1.0 / 60)

	if got := s.Vehicles(); len(got) != 1 || got[0] != b {
		t.Errorf("vehicles after deferred removal = %v, want just the second", got)
	}
}

func TestDeferRunsAfterTriggers(t *testing.T) {
	s := New()

	var order []string
	s.QueueTrigger(TriggerFunc(func(*System) { order = append(order, "trigger") }))
	s.Defer(func(*System) { order = append(order, "defer") })

	s.Update(1.0 / 60)

	if len(order) != 2 || order[0] != "trigger" || order[1] != "defer" {
		t.Errorf("stage order = %v, want [trigger defer]", order)
	}
}

func TestSendMessage(t *testing.T) {
	s := New()
	a := newVehicleAt(mgl64.Vec3{})
	b := newVehicleAt(mgl64.Vec3{})

	// No handler installed: silent no-op.
	s.SendMessage(a, b, "ping")

	var gotFrom, gotTo *steering.Vehicle
	var gotMsg string
	s.SetMessageHandler(func(from, to *steering.Vehicle, msg string) {
		gotFrom, gotTo, gotMsg = from, to, msg
	})
	s.SendMessage(a, b, "ping")

	if gotFrom != a || gotTo != b || gotMsg != "ping" {
		t.Errorf("handler saw (%p, %p, %q), want the original arguments", gotFrom, gotTo, gotMsg)
	}
}

func TestForceBudgetAcrossFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := spatial.NewPartition(60, 60, 60, 3, 3, 3)
	s := NewWithPartition(p)

	transforms := make([]*steering.BasicTransform, 12)
	for i := range transforms {
		transforms[i] = steering.NewBasicTransform(mgl64.Vec3{
			rng.Float64()*40 - 20,
			rng.Float64()*40 - 20,
			rng.Float64()*40 - 20,
		})
		v := steering.NewVehicle(transforms[i])
		v.MaxSpeed = 4
		v.MaxForce = 6
		v.UpdateNeighborhood = true
		v.NeighborhoodRadius = 10

		v.Manager.Add(steering.NewSeek(mgl64.Vec3{10, 0, 0}))
		v.Manager.Add(steering.NewFlee(mgl64.Vec3{}, 15))
		arrive, err := steering.NewArrive(mgl64.Vec3{-10, 5, 0}, 2, 0.5)
		if err != nil {
			t.Fatalf("NewArrive: %v", err)
		}
		v.Manager.Add(arrive)
		v.Manager.Add(steering.NewWander(2, 4, 20, rand.New(rand.NewSource(int64(i)))))

		s.Add(v)
	}

	for frame := 0; frame < 50; frame++ {
		// Play the external mover: jitter every transform a little.
		for _, tr := range transforms {
			tr.SetPosition(tr.Position().Add(mgl64.Vec3{
				rng.NormFloat64() * 0.2,
				rng.NormFloat64() * 0.2,
				rng.NormFloat64() * 0.2,
			}))
		}

		s.Update(1.0 / 60)

		for i, v := range s.Vehicles() {
			if f := v.Force().Len(); f > v.MaxForce+1e-9 {
				t.Fatalf("frame %d vehicle %d: |force| = %v exceeds MaxForce %v", frame, i, f, v.MaxForce)
			}
		}
	}
}
