package game

import (
	"github.com/go-gl/mathgl/mgl64"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Axis offsets decorrelate the three components sampled from one noise
// volume.
const (
	driftOffsetY = 61.8
	driftOffsetZ = 123.6
)

// DriftField is a smooth time-varying current over the world volume,
// sampled from simplex noise. Strength may be tuned live between frames;
// Advance moves the field through its time dimension.
type DriftField struct {
	Strength float64 // peak magnitude per axis, in accel units

	noise     opensimplex.Noise
	scale     float64
	timeScale float64
	t         float64
}

// NewDriftField returns a field seeded for reproducible runs. scale is
// the spatial frequency over world units, timeScale the animation speed
// (0 = static field).
func NewDriftField(seed int64, scale, strength, timeScale float64) *DriftField {
	return &DriftField{
		Strength:  strength,
		noise:     opensimplex.New(seed),
		scale:     scale,
		timeScale: timeScale,
	}
}

// Advance moves the field forward dt seconds of simulation time.
func (f *DriftField) Advance(dt float64) {
	f.t += dt * f.timeScale
}

// At samples the current at p. Each component stays within
// [-Strength, Strength].
func (f *DriftField) At(p mgl64.Vec3) mgl64.Vec3 {
	x := p.X() * f.scale
	y := p.Y() * f.scale
	z := p.Z() * f.scale
	return mgl64.Vec3{
		f.noise.Eval4(x, y, z, f.t),
		f.noise.Eval4(x+driftOffsetY, y, z, f.t),
		f.noise.Eval4(x, y+driftOffsetZ, z, f.t),
	}.Mul(f.Strength)
}
