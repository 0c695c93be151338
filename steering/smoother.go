package steering

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Smoother is a fixed-window moving average over velocity samples, used to
// damp orientation flicker. The mean always divides by the window size, so
// output is biased toward zero until the buffer has cycled once.
type Smoother struct {
	samples []mgl64.Vec3
	cursor  int
}

// NewSmoother returns a smoother averaging over count samples. The window
// size is fixed for the smoother's lifetime.
func NewSmoother(count int) (*Smoother, error) {
	if count <= 0 {
		return nil, fmt.Errorf("steering: smoother sample count must be positive, got %d", count)
	}
	return &Smoother{samples: make([]mgl64.Vec3, count)}, nil
}

// Calculate records sample at the cursor and returns the mean of the whole
// window, unwritten zero slots included.
func (s *Smoother) Calculate(sample mgl64.Vec3) mgl64.Vec3 {
	s.samples[s.cursor] = sample
	s.cursor = (s.cursor + 1) % len(s.samples)

	sum := mgl64.Vec3{}
	for _, v := range s.samples {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(s.samples)))
}

// Count returns the window size.
func (s *Smoother) Count() int {
	return len(s.samples)
}
