package steering

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestVehicleObservesVelocity(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)

	// An external actor moves the transform; the update derives velocity
	// from the delta.
	tr.SetPosition(mgl64.Vec3{1, 0, 0})
	v.Update(0.5)

	if want := (mgl64.Vec3{2, 0, 0}); !v.Velocity().ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("velocity = %v, want %v", v.Velocity(), want)
	}
	if want := (mgl64.Vec3{1, 0, 0}); !v.Position().ApproxEqual(want) {
		t.Errorf("position = %v, want %v", v.Position(), want)
	}
}

func TestVehicleZeroDeltaKeepsVelocity(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)

	tr.SetPosition(mgl64.Vec3{1, 0, 0})
	v.Update(1)
	v.Update(0)

	if want := (mgl64.Vec3{1, 0, 0}); !v.Velocity().ApproxEqual(want) {
		t.Errorf("velocity after zero delta = %v, want unchanged %v", v.Velocity(), want)
	}
}

func TestVehicleDoesNotMoveItself(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)
	v.MaxSpeed = 5
	v.Manager.Add(NewSeek(mgl64.Vec3{10, 0, 0}))

	for i := 0; i < 10; i++ {
		v.Update(1.0 / 60)
	}

	if !tr.Position().ApproxEqual(mgl64.Vec3{}) {
		t.Errorf("transform moved to %v under the default mover, want origin", tr.Position())
	}
	if want := (mgl64.Vec3{5, 0, 0}); !v.Force().ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("force = %v, want %v published for the external mover", v.Force(), want)
	}
}

func TestDirectionDefault(t *testing.T) {
	v := newTestVehicle(mgl64.Vec3{})
	if want := (mgl64.Vec3{0, 0, 1}); !v.Direction().ApproxEqual(want) {
		t.Errorf("direction = %v, want %v", v.Direction(), want)
	}
}

func TestLookAt(t *testing.T) {
	v := newTestVehicle(mgl64.Vec3{})
	v.LookAt(mgl64.Vec3{10, 0, 0})

	if want := (mgl64.Vec3{1, 0, 0}); !v.Direction().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("direction = %v, want %v", v.Direction(), want)
	}
	// Up is preserved when the target is off the up axis.
	up := v.Rotation().Rotate(mgl64.Vec3{0, 1, 0})
	if want := (mgl64.Vec3{0, 1, 0}); !up.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("rotated up = %v, want %v", up, want)
	}
	// The new orientation is visible through the transform as well.
	if tr := v.Transform().Rotation(); tr != v.Rotation() {
		t.Error("transform rotation differs from cached rotation after LookAt")
	}
}

func TestLookAtDiagonal(t *testing.T) {
	v := newTestVehicle(mgl64.Vec3{1, 1, 1})
	v.LookAt(mgl64.Vec3{4, 1, 4})

	want := mgl64.Vec3{1, 0, 1}.Normalize()
	if !v.Direction().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("direction = %v, want %v", v.Direction(), want)
	}
}

func TestLookAtCollinearWithUp(t *testing.T) {
	// Target straight up the Up axis: the roll correction is skipped and
	// the shortest-arc rotation is kept.
	v := newTestVehicle(mgl64.Vec3{})
	v.LookAt(mgl64.Vec3{0, 10, 0})

	got := v.Direction()
	if want := (mgl64.Vec3{0, 1, 0}); !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("direction = %v, want %v", got, want)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(got[i]) {
			t.Fatalf("direction = %v, want finite", got)
		}
	}
}

func TestLookAtSelfKeepsRotation(t *testing.T) {
	v := newTestVehicle(mgl64.Vec3{3, 3, 3})
	before := v.Rotation()
	v.LookAt(mgl64.Vec3{3, 3, 3})

	if v.Rotation() != before {
		t.Errorf("rotation changed to %v for a zero-length target", v.Rotation())
	}
}

func TestUpdateOrientsAlongMotion(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)

	tr.SetPosition(mgl64.Vec3{2, 0, 0})
	v.Update(1)

	if want := (mgl64.Vec3{1, 0, 0}); !v.Direction().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("direction = %v, want %v", v.Direction(), want)
	}
}

func TestUpdateSkipsOrientationBelowEpsilon(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)
	before := v.Rotation()

	// Squared speed 2.5e-9 sits below the 1e-8 cutoff.
	tr.SetPosition(mgl64.Vec3{5e-5, 0, 0})
	v.Update(1)

	if v.Rotation() != before {
		t.Errorf("rotation changed at negligible speed")
	}
}

func TestUpdateOrientationDisabled(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)
	v.UpdateOrientation = false
	before := v.Rotation()

	tr.SetPosition(mgl64.Vec3{0, 0, -4})
	v.Update(1)

	if v.Rotation() != before {
		t.Errorf("rotation changed with UpdateOrientation disabled")
	}
}

func TestUpdateSmoothsOrientationTarget(t *testing.T) {
	tr := NewBasicTransform(mgl64.Vec3{})
	v := NewVehicle(tr)

	var err error
	v.Smoother, err = NewSmoother(2)
	if err != nil {
		t.Fatalf("NewSmoother: %v", err)
	}

	tr.SetPosition(mgl64.Vec3{2, 0, 0})
	v.Update(1)
	tr.SetPosition(mgl64.Vec3{2, 0, 2})
	v.Update(1)

	// Window holds {2 0 0} and {0 0 2}: the facing splits the difference
	// instead of snapping to the latest leg.
	want := mgl64.Vec3{1, 0, 1}.Normalize()
	if !v.Direction().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("direction = %v, want smoothed %v", v.Direction(), want)
	}
}
