// Package telemetry provides fleet health tracking, bookmarking, and snapshots.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawns   int
	removals int
	triggers int
	captures int

	// Steering saturation tracking
	steeringUpdates int
	saturated       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordSpawn records a vehicle entering the simulation.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordRemoval records a vehicle leaving the simulation.
func (c *Collector) RecordRemoval() {
	c.removals++
}

// RecordTrigger records an executed deferred trigger.
func (c *Collector) RecordTrigger() {
	c.triggers++
}

// RecordCapture records a pursuer closing within catch range of its quarry.
func (c *Collector) RecordCapture() {
	c.captures++
}

// RecordSteering records one per-vehicle steering update. saturated reports
// whether the accumulated force was clamped at the vehicle's budget.
func (c *Collector) RecordSteering(saturated bool) {
	c.steeringUpdates++
	if saturated {
		c.saturated++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller must provide:
// - currentTick: the current simulation tick
// - vehicleCount, activeCount: current population counts
// - speeds, forceMags: per-vehicle samples for distribution calculation
// - neighborCounts: per-vehicle neighbor set sizes
// The sample slices are sorted in place.
func (c *Collector) Flush(
	currentTick int32,
	vehicleCount, activeCount int,
	speeds, forceMags []float64,
	neighborCounts []int,
) WindowStats {
	var saturationRate float64
	if c.steeringUpdates > 0 {
		saturationRate = float64(c.saturated) / float64(c.steeringUpdates)
	}

	speedMean, speedStd, speedP10, speedP50, speedP90 := ComputeSampleStats(speeds)
	forceMean, forceStd, forceP10, forceP50, forceP90 := ComputeSampleStats(forceMags)
	neighborMean, neighborMax := ComputeNeighborStats(neighborCounts)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		VehicleCount: vehicleCount,
		ActiveCount:  activeCount,

		Spawns:   c.spawns,
		Removals: c.removals,
		Triggers: c.triggers,
		Captures: c.captures,

		SaturationRate: saturationRate,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		ForceMean: forceMean,
		ForceStd:  forceStd,
		ForceP10:  forceP10,
		ForceP50:  forceP50,
		ForceP90:  forceP90,

		NeighborMean: neighborMean,
		NeighborMax:  neighborMax,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.removals = 0
	c.triggers = 0
	c.captures = 0
	c.steeringUpdates = 0
	c.saturated = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
