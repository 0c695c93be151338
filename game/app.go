// Package game is the demo harness around the steering engine: an ark
// ECS pose store, a drift-field mover, behavior-tree agent roles, fleet
// telemetry, and an optional session recorder, rendered with raylib or
// run headless.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/mlange-42/ark/ecs"

	"github.com/michealparks/lib-ai/config"
	"github.com/michealparks/lib-ai/record"
	"github.com/michealparks/lib-ai/sim"
	"github.com/michealparks/lib-ai/spatial"
	"github.com/michealparks/lib-ai/steering"
	"github.com/michealparks/lib-ai/telemetry"
)

// Options configures one app run. Zero values fall back to the loaded
// config.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	StepsPerUpdate int
	RecordPath     string // empty = session recording disabled
}

// agentHandle bundles the per-agent state living outside the ECS: the
// steering vehicle, its behaviors, and the optional brain. ark may move
// component memory between archetypes, so nothing here points into the
// world; component access goes through the entity handle.
type agentHandle struct {
	entity  ecs.Entity
	id      uint32
	role    Role
	vehicle *steering.Vehicle

	wander  *steering.Wander
	flee    *steering.Flee    // wanderers
	pursuit *steering.Pursuit // pursuers
	brain   bt.Node           // pursuers
}

// App owns the world, the steering system, and everything observing
// them. Update (or UpdateHeadless) advances the simulation; Draw renders
// it.
type App struct {
	opts Options
	seed int64
	rng  *rand.Rand

	world       *ecs.World
	agentMapper *ecs.Map3[Pose, Motion, Agent]
	agentFilter *ecs.Filter3[Pose, Motion, Agent]
	poses       *ecs.Map1[Pose]
	motions     *ecs.Map1[Motion]
	agents      *ecs.Map1[Agent]

	sys       *sim.System
	partition *spatial.Partition
	drift     *DriftField
	mover     *DriftMover

	// Handles in spawn order; the maps are lookup-only so the update
	// loop stays deterministic.
	handles   []*agentHandle
	byID      map[uint32]*agentHandle
	byVehicle map[*steering.Vehicle]*agentHandle
	nextID    uint32

	collector        *telemetry.Collector
	perf             *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	recorder         *record.Recorder
	statsCallback    func(telemetry.WindowStats)

	dt             float64
	tick           int32
	elapsed        float64
	paused         bool
	stepsPerUpdate int
	totalCaptures  int

	// Graphical state, untouched in headless mode.
	camera      rl.Camera3D
	showVectors bool
	showPanel   bool
	panel       panelValues
}

// NewApp builds a ready-to-run app from the loaded config and opts.
func NewApp(opts Options) (*App, error) {
	cfg := config.Cfg()

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	dt := cfg.Simulation.DT
	if dt <= 0 {
		dt = 1.0 / float64(cfg.Screen.TargetFPS)
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate <= 0 {
		stepsPerUpdate = cfg.Simulation.StepsPerUpdate
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	world := ecs.NewWorld()

	a := &App{
		opts:           opts,
		seed:           seed,
		rng:            rand.New(rand.NewSource(seed)),
		world:          world,
		agentMapper:    ecs.NewMap3[Pose, Motion, Agent](world),
		agentFilter:    ecs.NewFilter3[Pose, Motion, Agent](world),
		poses:          ecs.NewMap1[Pose](world),
		motions:        ecs.NewMap1[Motion](world),
		agents:         ecs.NewMap1[Agent](world),
		byID:           make(map[uint32]*agentHandle),
		byVehicle:      make(map[*steering.Vehicle]*agentHandle),
		nextID:         1, // 0 is the "no quarry" sentinel
		dt:             dt,
		stepsPerUpdate: stepsPerUpdate,
	}

	a.partition = spatial.NewPartition(
		cfg.World.Width, cfg.World.Height, cfg.World.Depth,
		cfg.World.CellsX, cfg.World.CellsY, cfg.World.CellsZ,
	)
	a.sys = sim.NewWithPartition(a.partition)

	if cfg.Drift.Enabled {
		a.drift = NewDriftField(seed, cfg.Drift.Scale, cfg.Drift.Strength, cfg.Drift.TimeScale)
	}
	a.mover = NewDriftMover(a.motions, a.drift, mgl64.Vec3{
		cfg.Derived.HalfWidth,
		cfg.Derived.HalfHeight,
		cfg.Derived.HalfDepth,
	})

	a.collector = telemetry.NewCollector(statsWindow, dt)
	a.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	a.bookmarkDetector = telemetry.NewBookmarkDetector(5)

	a.sys.OnAdd(func(*steering.Vehicle) { a.collector.RecordSpawn() })
	a.sys.OnRemove(func(*steering.Vehicle) { a.collector.RecordRemoval() })
	a.sys.SetMessageHandler(a.handleMessage)

	a.spawnInitialPopulation()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	a.outputManager = om
	if a.outputManager != nil {
		if err := a.outputManager.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	if opts.RecordPath != "" {
		rec, err := record.Open(opts.RecordPath, cfg.Record.FlushEvery)
		if err != nil {
			return nil, err
		}
		if err := rec.Begin(seed, cfg.World.Width, cfg.World.Height, cfg.World.Depth, len(a.handles)); err != nil {
			return nil, err
		}
		a.recorder = rec
	}

	a.initPanel()
	if !opts.Headless {
		a.initCamera()
	}

	slog.Info("app initialized",
		"seed", seed,
		"dt", dt,
		"wanderers", cfg.Agents.Wanderers,
		"pursuers", cfg.Agents.Pursuers,
	)
	return a, nil
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (a *App) SetStatsCallback(fn func(telemetry.WindowStats)) {
	a.statsCallback = fn
}

// Tick returns the number of completed simulation steps.
func (a *App) Tick() int32 { return a.tick }

// StepsPerUpdate returns the resolved number of fixed steps per update.
func (a *App) StepsPerUpdate() int { return a.stepsPerUpdate }

// Update advances the simulation for one rendered frame: input, then the
// configured number of fixed steps.
func (a *App) Update() {
	a.handleInput()
	a.perf.RecordFrame()

	if a.paused {
		return
	}
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.simulationStep()
	}
}

// UpdateHeadless advances the configured number of fixed steps without
// touching input or frame timing.
func (a *App) UpdateHeadless() {
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.simulationStep()
	}
}

// simulationStep runs one fixed tick: brains, kinematics, telemetry,
// recording.
func (a *App) simulationStep() {
	a.perf.StartTick()

	a.perf.StartPhase(telemetry.PhaseBrains)
	a.updateBrains()

	a.perf.StartPhase(telemetry.PhaseSimulate)
	if a.drift != nil {
		a.drift.Advance(a.dt)
	}
	a.sys.Update(a.dt)

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	a.sampleSteering()
	a.flushTelemetry()

	a.perf.StartPhase(telemetry.PhaseRecord)
	a.recordFrame()

	a.perf.EndTick()

	a.tick++
	a.elapsed += a.dt
}

// handleMessage receives steering-system messages. A tag queues capture
// resolution for the trigger stage, after every vehicle has a fresh
// pose.
func (a *App) handleMessage(from, to *steering.Vehicle, msg string) {
	if msg != msgTagged {
		return
	}
	pursuer, quarry := a.byVehicle[from], a.byVehicle[to]
	if pursuer == nil || quarry == nil {
		return
	}
	a.collector.RecordTrigger()
	a.sys.QueueTrigger(sim.TriggerFunc(func(*sim.System) {
		a.resolveCapture(pursuer, quarry)
	}))
}

// resolveCapture relocates the caught wanderer across the world with its
// motion cleared, puts the pursuer on cooldown, and hands it a fresh
// quarry.
func (a *App) resolveCapture(pursuer, quarry *agentHandle) {
	a.totalCaptures++
	a.collector.RecordCapture()
	if err := a.recorder.AddCapture(a.tick, pursuer.id, quarry.id); err != nil {
		slog.Error("failed to record capture", "error", err)
	}

	quarry.vehicle.Transform().SetPosition(a.randomPosition())
	a.motions.Get(quarry.entity).Vel = mgl64.Vec3{}

	ag := a.agents.Get(pursuer.entity)
	ag.Cooldown = captureCooldownSec
	a.retarget(pursuer, quarry.id)
}

// sampleSteering feeds this tick's saturation counters: an update is
// saturated when the combined force used the whole budget.
func (a *App) sampleSteering() {
	for _, h := range a.handles {
		v := h.vehicle
		if !v.Active {
			continue
		}
		a.collector.RecordSteering(v.Force().Len() >= v.MaxForce-1e-9)
	}
}

// flushTelemetry closes the stats window when due: distributions are
// sampled, the window row is logged and written, and any detected
// bookmarks are reported and snapshotted.
func (a *App) flushTelemetry() {
	if !a.collector.ShouldFlush(a.tick) {
		return
	}

	speeds, forces, neighborCounts, active := a.sampleKinematics()

	stats := a.collector.Flush(a.tick, len(a.handles), active, speeds, forces, neighborCounts)
	perfStats := a.perf.Stats()

	if a.statsCallback != nil {
		a.statsCallback(stats)
	}

	if a.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if a.outputManager != nil {
		if err := a.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := a.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range a.bookmarkDetector.Check(stats) {
		if a.opts.LogStats {
			bm.LogBookmark()
		}
		if a.outputManager != nil {
			if err := a.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if a.opts.SnapshotDir != "" {
			a.saveSnapshot(&bm)
		}
	}
}

// sampleKinematics collects the per-agent distributions for one stats
// window. Speeds come from the mover's velocity, so capture
// relocations do not spike them; neighbor counts only from agents that
// maintain a neighborhood.
func (a *App) sampleKinematics() (speeds, forces []float64, neighborCounts []int, active int) {
	for _, h := range a.handles {
		v := h.vehicle
		if !v.Active {
			continue
		}
		active++
		speeds = append(speeds, a.motions.Get(h.entity).Vel.Len())
		forces = append(forces, v.Force().Len())
		if v.UpdateNeighborhood {
			neighborCounts = append(neighborCounts, len(v.Neighbors))
		}
	}
	return speeds, forces, neighborCounts, active
}

// saveSnapshot writes the current fleet state next to the bookmark that
// triggered it.
func (a *App) saveSnapshot(bm *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(a.createSnapshot(bm), a.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", a.tick)
}

// createSnapshot captures the authoritative pose of every agent. The
// transform is read directly so positions reflect this tick's moves.
func (a *App) createSnapshot(bm *telemetry.Bookmark) *telemetry.Snapshot {
	cfg := config.Cfg()
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     a.seed,
		WorldWidth:  cfg.World.Width,
		WorldHeight: cfg.World.Height,
		WorldDepth:  cfg.World.Depth,
		Tick:        a.tick,
		Bookmark:    bm,
	}

	for _, h := range a.handles {
		v := h.vehicle
		t := v.Transform()
		pos := t.Position()
		rot := t.Rotation()
		vel := a.motions.Get(h.entity).Vel

		snap.Vehicles = append(snap.Vehicles, telemetry.VehicleState{
			ID:       h.id,
			Role:     h.role.String(),
			X:        pos.X(),
			Y:        pos.Y(),
			Z:        pos.Z(),
			VelX:     vel.X(),
			VelY:     vel.Y(),
			VelZ:     vel.Z(),
			QuatW:    rot.W,
			QuatX:    rot.X(),
			QuatY:    rot.Y(),
			QuatZ:    rot.Z(),
			MaxSpeed: v.MaxSpeed,
			MaxForce: v.MaxForce,
			Mass:     v.Mass,
			Active:   v.Active,
		})
	}
	return snap
}

// recordFrame appends one sample per active agent to the session
// recorder.
func (a *App) recordFrame() {
	if a.recorder == nil {
		return
	}
	for _, h := range a.handles {
		v := h.vehicle
		if !v.Active {
			continue
		}
		pos := v.Transform().Position()
		vel := a.motions.Get(h.entity).Vel

		sample := record.VehicleSample{
			Tick:      a.tick,
			VehicleID: h.id,
			Role:      h.role.String(),
			X:         pos.X(),
			Y:         pos.Y(),
			Z:         pos.Z(),
			VelX:      vel.X(),
			VelY:      vel.Y(),
			VelZ:      vel.Z(),
			Speed:     vel.Len(),
			ForceMag:  v.Force().Len(),
			Neighbors: len(v.Neighbors),
		}
		if err := a.recorder.Add(sample); err != nil {
			slog.Error("failed to record sample", "error", err)
			return
		}
	}
}

// Unload flushes and closes the recorder and the output manager.
func (a *App) Unload() {
	if err := a.recorder.Finish(a.tick); err != nil {
		slog.Error("failed to finalize recording", "error", err)
	}
	if err := a.recorder.Close(); err != nil {
		slog.Error("failed to close recorder", "error", err)
	}
	if a.outputManager != nil {
		if err := a.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
