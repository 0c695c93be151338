package spatial

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCellAddRemove(t *testing.T) {
	c := newCell(AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}})

	a := &testEntity{}
	b := &testEntity{}
	c.Add(a)
	c.Add(b)

	if err := c.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(c.Entries()) != 1 || c.Entries()[0] != b {
		t.Errorf("entries = %v, want just the remaining entity", c.Entries())
	}

	if err := c.Remove(a); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Remove = %v, want ErrEntryNotFound", err)
	}
}

func TestCellMakeEmpty(t *testing.T) {
	c := newCell(AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}})
	c.Add(&testEntity{})
	c.Add(&testEntity{})

	c.MakeEmpty()

	if !c.Empty() {
		t.Error("cell not empty after MakeEmpty")
	}
}

func TestAABBIntersects(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{2, 2, 2}}

	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"overlapping", AABB{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{3, 3, 3}}, true},
		{"touching face", AABB{Min: mgl64.Vec3{2, 0, 0}, Max: mgl64.Vec3{4, 2, 2}}, true},
		{"disjoint on x", AABB{Min: mgl64.Vec3{3, 0, 0}, Max: mgl64.Vec3{4, 2, 2}}, false},
		{"disjoint on y only", AABB{Min: mgl64.Vec3{0, 5, 0}, Max: mgl64.Vec3{2, 6, 2}}, false},
		{"contained", AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{1, 1, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			// Intersection is symmetric.
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("reverse Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBContains(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	if !a.Contains(mgl64.Vec3{0, 0, 0}) {
		t.Error("center not contained")
	}
	if !a.Contains(mgl64.Vec3{1, 1, 1}) {
		t.Error("boundary not contained")
	}
	if a.Contains(mgl64.Vec3{1.01, 0, 0}) {
		t.Error("outside point contained")
	}
}
