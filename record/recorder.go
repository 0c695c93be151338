// Package record persists simulation sessions to SQLite for later analysis.
package record

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Recorder buffers per-tick vehicle samples and writes them to SQLite in
// batches. A nil Recorder is valid and discards everything.
type Recorder struct {
	db  *gorm.DB
	run *Run

	buf     []VehicleSample
	bufCap  int
	written int64
}

// Open opens (or creates) the recording database at path.
// If path is empty, an in-memory database is used.
func Open(path string, bufCap int) (*Recorder, error) {
	if bufCap < 1 {
		bufCap = 2000
	}

	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening recording database: %w", err)
	}

	// High-rate append workload, durability traded for throughput
	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting PRAGMA: %w", err)
		}
	}

	if err := db.AutoMigrate(DatabaseModels...); err != nil {
		return nil, fmt.Errorf("migrating recording tables: %w", err)
	}

	if path == "" {
		slog.Info("recorder opened", "db", "memory")
	} else {
		slog.Info("recorder opened", "db", path)
	}

	return &Recorder{
		db:     db,
		bufCap: bufCap,
		buf:    make([]VehicleSample, 0, bufCap),
	}, nil
}

// Begin starts a new run row. Samples added afterwards belong to it.
func (r *Recorder) Begin(seed int64, worldW, worldH, worldD float64, vehicles int) error {
	if r == nil {
		return nil
	}

	run := &Run{
		Seed:         seed,
		StartedAt:    time.Now(),
		WorldWidth:   worldW,
		WorldHeight:  worldH,
		WorldDepth:   worldD,
		VehicleCount: vehicles,
	}
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	r.run = run

	return nil
}

// Add buffers one vehicle sample. The sample's RunID is filled in.
// Flushes automatically when the buffer is full.
func (r *Recorder) Add(sample VehicleSample) error {
	if r == nil {
		return nil
	}
	if r.run == nil {
		return fmt.Errorf("recorder: Add before Begin")
	}

	sample.RunID = r.run.ID
	r.buf = append(r.buf, sample)

	if len(r.buf) >= r.bufCap {
		return r.Flush()
	}
	return nil
}

// AddCapture writes a capture event immediately (rare enough not to buffer).
func (r *Recorder) AddCapture(tick int32, pursuerID, targetID uint32) error {
	if r == nil {
		return nil
	}
	if r.run == nil {
		return fmt.Errorf("recorder: AddCapture before Begin")
	}

	event := &CaptureEvent{
		RunID:     r.run.ID,
		Tick:      tick,
		PursuerID: pursuerID,
		TargetID:  targetID,
	}
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("creating capture event: %w", err)
	}
	return nil
}

// Flush writes all buffered samples in one batch.
func (r *Recorder) Flush() error {
	if r == nil || len(r.buf) == 0 {
		return nil
	}

	if err := r.db.Create(&r.buf).Error; err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	r.written += int64(len(r.buf))
	r.buf = r.buf[:0]

	return nil
}

// Finish flushes remaining samples and stamps the run's final tick.
func (r *Recorder) Finish(finalTick int32) error {
	if r == nil {
		return nil
	}

	if err := r.Flush(); err != nil {
		return err
	}

	if r.run != nil {
		r.run.FinalTick = finalTick
		if err := r.db.Model(r.run).Update("final_tick", finalTick).Error; err != nil {
			return fmt.Errorf("updating run: %w", err)
		}
	}

	return nil
}

// Close flushes and closes the underlying database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}

	if err := r.Flush(); err != nil {
		return err
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("accessing sql interface: %w", err)
	}

	slog.Info("recorder closed", "samples", r.written)
	return sqlDB.Close()
}
