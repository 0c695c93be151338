package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated fleet statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	VehicleCount int `csv:"vehicles"`
	ActiveCount  int `csv:"active"`

	// Events during window
	Spawns   int `csv:"spawns"`
	Removals int `csv:"removals"`
	Triggers int `csv:"triggers"`
	Captures int `csv:"captures"`

	// Steering saturation: fraction of per-vehicle updates where the
	// accumulated force was clamped at the vehicle's budget
	SaturationRate float64 `csv:"saturation_rate"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Steering force magnitude distribution
	ForceMean float64 `csv:"force_mean"`
	ForceStd  float64 `csv:"force_std"`
	ForceP10  float64 `csv:"force_p10"`
	ForceP50  float64 `csv:"force_p50"`
	ForceP90  float64 `csv:"force_p90"`

	// Neighborhood density
	NeighborMean float64 `csv:"neighbor_mean"`
	NeighborMax  int     `csv:"neighbor_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeSampleStats calculates mean, std, and percentiles from sampled
// values. The input slice is sorted in place.
func ComputeSampleStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sort.Float64s(values)

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// ComputeNeighborStats calculates mean and max from neighbor counts.
func ComputeNeighborStats(counts []int) (mean float64, max int) {
	n := len(counts)
	if n == 0 {
		return 0, 0
	}

	var sum int
	for _, c := range counts {
		sum += c
		if c > max {
			max = c
		}
	}
	mean = float64(sum) / float64(n)

	return mean, max
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("vehicles", s.VehicleCount),
		slog.Int("active", s.ActiveCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("removals", s.Removals),
		slog.Int("triggers", s.Triggers),
		slog.Int("captures", s.Captures),
		slog.Float64("saturation_rate", s.SaturationRate),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("force_mean", s.ForceMean),
		slog.Float64("force_std", s.ForceStd),
		slog.Float64("force_p10", s.ForceP10),
		slog.Float64("force_p50", s.ForceP50),
		slog.Float64("force_p90", s.ForceP90),
		slog.Float64("neighbor_mean", s.NeighborMean),
		slog.Int("neighbor_max", s.NeighborMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"vehicles", s.VehicleCount,
		"active", s.ActiveCount,
		"spawns", s.Spawns,
		"removals", s.Removals,
		"triggers", s.Triggers,
		"captures", s.Captures,
		"saturation_rate", s.SaturationRate,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"force_mean", s.ForceMean,
		"force_std", s.ForceStd,
		"force_p10", s.ForceP10,
		"force_p50", s.ForceP50,
		"force_p90", s.ForceP90,
		"neighbor_mean", s.NeighborMean,
		"neighbor_max", s.NeighborMax,
	)
}
