package steering

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSmootherColdStartBias(t *testing.T) {
	s, err := NewSmoother(4)
	if err != nil {
		t.Fatalf("NewSmoother: %v", err)
	}

	// The divisor is always the window size, so the average climbs toward
	// the input as the zero slots are overwritten.
	in := mgl64.Vec3{1, 0, 0}
	want := []mgl64.Vec3{
		{0.25, 0, 0},
		{0.5, 0, 0},
		{0.75, 0, 0},
		{1, 0, 0},
		{1, 0, 0},
	}

	for i, w := range want {
		got := s.Calculate(in)
		if !got.ApproxEqualThreshold(w, 1e-15) {
			t.Errorf("call %d: average = %v, want %v", i+1, got, w)
		}
	}
}

func TestSmootherOverwritesOldest(t *testing.T) {
	s, err := NewSmoother(2)
	if err != nil {
		t.Fatalf("NewSmoother: %v", err)
	}

	s.Calculate(mgl64.Vec3{1, 0, 0})
	if got := s.Calculate(mgl64.Vec3{3, 0, 0}); !got.ApproxEqual(mgl64.Vec3{2, 0, 0}) {
		t.Errorf("average = %v, want {2 0 0}", got)
	}
	// The third sample replaces the first.
	if got := s.Calculate(mgl64.Vec3{5, 0, 0}); !got.ApproxEqual(mgl64.Vec3{4, 0, 0}) {
		t.Errorf("average = %v, want {4 0 0}", got)
	}
}

func TestSmootherRejectsBadCount(t *testing.T) {
	if _, err := NewSmoother(0); err == nil {
		t.Error("count 0 accepted, want error")
	}
	if _, err := NewSmoother(-3); err == nil {
		t.Error("negative count accepted, want error")
	}
}
