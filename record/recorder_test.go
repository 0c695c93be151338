package record

import (
	"path/filepath"
	"testing"
)

func TestRecorderRoundTrip(t *testing.T) {
	r, err := Open("", 100)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if err := r.Begin(42, 120, 60, 120, 3); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	for tick := int32(0); tick < 5; tick++ {
		for id := uint32(1); id <= 3; id++ {
			sample := VehicleSample{
				Tick:      tick,
				VehicleID: id,
				Role:      "wanderer",
				X:         float64(id),
				Z:         float64(tick),
				Speed:     2.5,
				ForceMag:  4.0,
				Neighbors: 2,
			}
			if err := r.Add(sample); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}
	}

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	var count int64
	if err := r.db.Model(&VehicleSample{}).Count(&count).Error; err != nil {
		t.Fatalf("counting samples: %v", err)
	}
	if count != 15 {
		t.Errorf("sample count = %v, want 15", count)
	}

	var s VehicleSample
	if err := r.db.Where("vehicle_id = ? AND tick = ?", 2, 3).First(&s).Error; err != nil {
		t.Fatalf("querying sample: %v", err)
	}
	if s.X != 2 || s.Z != 3 || s.Role != "wanderer" {
		t.Errorf("sample = %+v, want x=2 z=3 role=wanderer", s)
	}
	if s.RunID == 0 {
		t.Error("sample RunID not filled in")
	}

	if err := r.AddCapture(7, 2, 9); err != nil {
		t.Fatalf("AddCapture failed: %v", err)
	}
	var captures int64
	if err := r.db.Model(&CaptureEvent{}).Count(&captures).Error; err != nil {
		t.Fatalf("counting captures: %v", err)
	}
	if captures != 1 {
		t.Errorf("capture count = %v, want 1", captures)
	}

	if err := r.Finish(5); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	var run Run
	if err := r.db.First(&run).Error; err != nil {
		t.Fatalf("querying run: %v", err)
	}
	if run.Seed != 42 || run.FinalTick != 5 || run.VehicleCount != 3 {
		t.Errorf("run = %+v, want seed=42 finalTick=5 vehicles=3", run)
	}
}

func TestRecorderAutoFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flock.db")
	r, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if err := r.Begin(1, 10, 10, 10, 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Fill the buffer exactly: fourth Add flushes
	for i := 0; i < 4; i++ {
		if err := r.Add(VehicleSample{Tick: int32(i), VehicleID: 1}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	var count int64
	r.db.Model(&VehicleSample{}).Count(&count)
	if count != 4 {
		t.Errorf("count after auto-flush = %v, want 4", count)
	}

	// Two more stay buffered until an explicit flush
	r.Add(VehicleSample{Tick: 4, VehicleID: 1})
	r.Add(VehicleSample{Tick: 5, VehicleID: 1})

	r.db.Model(&VehicleSample{}).Count(&count)
	if count != 4 {
		t.Errorf("count before flush = %v, want 4", count)
	}

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	r.db.Model(&VehicleSample{}).Count(&count)
	if count != 6 {
		t.Errorf("count after flush = %v, want 6", count)
	}
}

func TestRecorderNil(t *testing.T) {
	var r *Recorder

	// A nil recorder discards everything without errors
	if err := r.Begin(1, 10, 10, 10, 0); err != nil {
		t.Errorf("nil Begin = %v, want nil", err)
	}
	if err := r.Add(VehicleSample{}); err != nil {
		t.Errorf("nil Add = %v, want nil", err)
	}
	if err := r.AddCapture(0, 1, 2); err != nil {
		t.Errorf("nil AddCapture = %v, want nil", err)
	}
	if err := r.Flush(); err != nil {
		t.Errorf("nil Flush = %v, want nil", err)
	}
	if err := r.Finish(0); err != nil {
		t.Errorf("nil Finish = %v, want nil", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close = %v, want nil", err)
	}
}

func TestRecorderAddBeforeBegin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flock.db")
	r, err := Open(path, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if err := r.Add(VehicleSample{}); err == nil {
		t.Error("expected error adding sample before Begin")
	}
	if err := r.AddCapture(0, 1, 2); err == nil {
		t.Error("expected error adding capture before Begin")
	}
}
