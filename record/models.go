package record

import (
	"time"

	"gorm.io/gorm"
)

// DatabaseModels lists every table the recorder migrates.
var DatabaseModels = []any{
	&Run{},
	&VehicleSample{},
	&CaptureEvent{},
}

// Run is one recorded simulation session.
type Run struct {
	gorm.Model
	Seed         int64     `json:"seed"`
	StartedAt    time.Time `json:"startedAt"`
	WorldWidth   float64   `json:"worldWidth"`
	WorldHeight  float64   `json:"worldHeight"`
	WorldDepth   float64   `json:"worldDepth"`
	VehicleCount int       `json:"vehicleCount"`
	FinalTick    int32     `json:"finalTick"`
	Notes        string    `json:"notes" gorm:"size:255"`
}

func (*Run) TableName() string {
	return "runs"
}

// VehicleSample is one vehicle's kinematic state at a tick.
type VehicleSample struct {
	ID        uint   `gorm:"primarykey"`
	RunID     uint   `json:"runId" gorm:"index:idx_vehiclesample_run_id"`
	Tick      int32  `json:"tick" gorm:"index:idx_vehiclesample_tick"`
	VehicleID uint32 `json:"vehicleId"`
	Role      string `json:"role" gorm:"size:32"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	VelX float64 `json:"velX"`
	VelY float64 `json:"velY"`
	VelZ float64 `json:"velZ"`

	Speed    float64 `json:"speed"`
	ForceMag float64 `json:"forceMag"`

	Neighbors int `json:"neighbors"`
}

func (*VehicleSample) TableName() string {
	return "vehicle_samples"
}

// CaptureEvent records a pursuer reaching its quarry.
type CaptureEvent struct {
	ID        uint   `gorm:"primarykey"`
	RunID     uint   `json:"runId" gorm:"index:idx_captureevent_run_id"`
	Tick      int32  `json:"tick"`
	PursuerID uint32 `json:"pursuerId"`
	TargetID  uint32 `json:"targetId"`
}

func (*CaptureEvent) TableName() string {
	return "capture_events"
}
