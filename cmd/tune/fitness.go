package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/michealparks/lib-ai/sim"
	"github.com/michealparks/lib-ai/steering"
)

// Scenario shape: a shell of vehicles flying into a fixed target through
// light wander noise.
const (
	scenarioVehicles = 16
	startRadius      = 30.0
	scenarioMaxSpeed = 6.0
	scenarioMaxForce = 12.0
	arriveTolerance  = 0.25
	settleRadius     = 0.75 // inside this distance of the target counts as settled
	settleHoldSec    = 0.5  // the whole batch must hold inside this long
	movingSpeed      = 0.1  // heading terms only count while moving

	noiseRadius   = 1.0
	noiseDistance = 4.0
	noiseJitter   = 8.0
	noiseWeight   = 0.3
)

// Cost weights. Settle time is in seconds; the remaining terms convert
// overshoot depth, heading jitter, and heading lag into comparable cost.
const (
	overshootPenalty = 2.0 // per unit of re-exit depth
	jitterPenalty    = 3.0 // per rad/s of heading jitter
	lagPenalty       = 4.0 // per rad of heading lag behind the velocity
)

// SettleEvaluator runs headless arrival scenarios and computes fitness.
type SettleEvaluator struct {
	params   *ParamVector
	maxTicks int
	seeds    []int64
	dt       float64

	// Metrics from the most recent Evaluate call, for progress output.
	mu            sync.Mutex
	lastSettle    float64
	lastOvershoot float64
}

// NewSettleEvaluator creates a new evaluator stepping at dt.
func NewSettleEvaluator(params *ParamVector, maxTicks int, seeds []int64, dt float64) *SettleEvaluator {
	return &SettleEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		dt:       dt,
	}
}

// LastSettle returns the mean settle time from the most recent evaluation.
func (se *SettleEvaluator) LastSettle() float64 {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.lastSettle
}

// LastOvershoot returns the mean overshoot from the most recent evaluation.
func (se *SettleEvaluator) LastOvershoot() float64 {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.lastOvershoot
}

// seedResult holds the score from one seeded scenario run.
type seedResult struct {
	fitness   float64
	settleSec float64
	overshoot float64
}

// Evaluate computes fitness for a parameter vector (lower = better),
// averaging the seeded runs. Runs are independent, so seeds evaluate in
// parallel.
func (se *SettleEvaluator) Evaluate(x []float64) float64 {
	clamped := se.params.Clamp(x)
	deceleration := clamped[0]
	samples := int(math.Round(clamped[1]))

	results := make([]seedResult, len(se.seeds))
	var wg sync.WaitGroup
	for i, seed := range se.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = se.runScenario(deceleration, samples, s)
		}(i, seed)
	}
	wg.Wait()

	var fitness, settle, overshoot float64
	for _, r := range results {
		fitness += r.fitness
		settle += r.settleSec
		overshoot += r.overshoot
	}
	n := float64(len(se.seeds))

	se.mu.Lock()
	se.lastSettle = settle / n
	se.lastOvershoot = overshoot / n
	se.mu.Unlock()

	return fitness / n
}

// runScenario flies one seeded batch into the target and scores it:
// settle time, plus weighted overshoot depth, heading jitter, and
// heading lag. The run stops early once the batch has held inside the
// settle radius long enough.
func (se *SettleEvaluator) runScenario(deceleration float64, samples int, seed int64) seedResult {
	rng := rand.New(rand.NewSource(seed))
	sys := sim.New()
	target := mgl64.Vec3{}

	vehicles := make([]*steering.Vehicle, scenarioVehicles)
	entered := make([]bool, scenarioVehicles)
	reExit := make([]float64, scenarioVehicles)
	prevDir := make([]mgl64.Vec3, scenarioVehicles)

	for i := range vehicles {
		dir := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if dir.Dot(dir) < 1e-12 {
			dir = mgl64.Vec3{1, 0, 0}
		}
		v := steering.NewVehicle(steering.NewBasicTransform(dir.Normalize().Mul(startRadius)))
		v.MaxSpeed = scenarioMaxSpeed
		v.MaxForce = scenarioMaxForce
		v.Mover = steering.EulerMover{}

		arrive, err := steering.NewArrive(target, deceleration, arriveTolerance)
		if err != nil {
			panic(err)
		}
		v.Manager.Add(arrive)

		wander := steering.NewWander(noiseRadius, noiseDistance, noiseJitter, rng)
		wander.Weight = noiseWeight
		v.Manager.Add(wander)

		if samples > 0 {
			if smoother, err := steering.NewSmoother(samples); err == nil {
				v.Smoother = smoother
			}
		}

		sys.Add(v)
		vehicles[i] = v
		prevDir[i] = v.Direction()
	}

	holdTicks := int(settleHoldSec / se.dt)
	consecutive := 0
	settledTick := se.maxTicks

	var jitterSum, lagSum float64
	var headingCount int

	for tick := 1; tick <= se.maxTicks; tick++ {
		sys.Update(se.dt)

		allInside := true
		for i, v := range vehicles {
			dist := v.Transform().Position().Sub(target).Len()
			if dist <= settleRadius {
				entered[i] = true
			} else {
				allInside = false
				if entered[i] && dist-settleRadius > reExit[i] {
					reExit[i] = dist - settleRadius
				}
			}

			if vel := v.Velocity(); vel.Len() > movingSpeed {
				dir := v.Direction()
				jitterSum += angleBetween(dir, prevDir[i]) / se.dt
				lagSum += angleBetween(dir, vel)
				headingCount++
				prevDir[i] = dir
			}
		}

		if allInside {
			consecutive++
			if consecutive >= holdTicks {
				settledTick = tick
				break
			}
		} else {
			consecutive = 0
		}
	}

	settleSec := float64(settledTick) * se.dt

	var overshoot float64
	for _, d := range reExit {
		overshoot += d
	}
	overshoot /= scenarioVehicles

	var jitterRate, lag float64
	if headingCount > 0 {
		jitterRate = jitterSum / float64(headingCount)
		lag = lagSum / float64(headingCount)
	}

	return seedResult{
		fitness:   settleSec + overshootPenalty*overshoot + jitterPenalty*jitterRate + lagPenalty*lag,
		settleSec: settleSec,
		overshoot: overshoot,
	}
}

// angleBetween returns the unsigned angle between two directions.
func angleBetween(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}
