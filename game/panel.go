package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/michealparks/lib-ai/config"
)

const (
	panelWidth  = 250
	panelMargin = 10
)

// panelValues is the slider state for the live-tuning panel. Values
// start from the loaded config and write through to every agent on
// change; behavior parameters are mutable between frames by contract.
type panelValues struct {
	wanderJitter   float32
	wanderRadius   float32
	wanderDistance float32
	fleePanic      float32
	prediction     float32
	huntRange      float32
	maxSpeed       float32
	maxForce       float32
	driftStrength  float32
}

// initPanel seeds the slider state from the loaded config.
func (a *App) initPanel() {
	cfg := config.Cfg()
	a.panel = panelValues{
		wanderJitter:   float32(cfg.Steering.Wander.Jitter),
		wanderRadius:   float32(cfg.Steering.Wander.Radius),
		wanderDistance: float32(cfg.Steering.Wander.Distance),
		fleePanic:      float32(cfg.Steering.Flee.PanicDistance),
		prediction:     float32(cfg.Steering.Pursuit.PredictionFactor),
		huntRange:      float32(cfg.Agents.HuntRange),
		maxSpeed:       float32(cfg.Vehicle.MaxSpeed),
		maxForce:       float32(cfg.Vehicle.MaxForce),
		driftStrength:  float32(cfg.Drift.Strength),
	}
}

// drawPanel renders the tuning sliders and applies any changed value to
// the live fleet.
func (a *App) drawPanel() {
	cfg := config.Cfg()
	x := cfg.Derived.ScreenW32 - panelWidth - panelMargin
	y := float32(panelMargin)

	rl.DrawText("steering", int32(x), int32(y), 20, rl.RayWhite)
	y += 30

	p := &a.panel

	if v := sliderRow(x, &y, "wander jitter", p.wanderJitter, 0, 40); v != p.wanderJitter {
		p.wanderJitter = v
		a.applyWander()
	}
	if v := sliderRow(x, &y, "wander radius", p.wanderRadius, 0.5, 8); v != p.wanderRadius {
		p.wanderRadius = v
		a.applyWander()
	}
	if v := sliderRow(x, &y, "wander distance", p.wanderDistance, 1, 12); v != p.wanderDistance {
		p.wanderDistance = v
		a.applyWander()
	}
	if v := sliderRow(x, &y, "flee panic distance", p.fleePanic, 0, 30); v != p.fleePanic {
		p.fleePanic = v
		a.applyFlee()
	}
	if v := sliderRow(x, &y, "pursuit prediction", p.prediction, 0, 3); v != p.prediction {
		p.prediction = v
		a.applyPursuit()
	}
	if v := sliderRow(x, &y, "hunt range", p.huntRange, 5, 60); v != p.huntRange {
		p.huntRange = v
		config.Cfg().Agents.HuntRange = float64(v)
	}
	if v := sliderRow(x, &y, "max speed", p.maxSpeed, 1, 15); v != p.maxSpeed {
		p.maxSpeed = v
		a.applyLimits()
	}
	if v := sliderRow(x, &y, "max force", p.maxForce, 1, 40); v != p.maxForce {
		p.maxForce = v
		a.applyLimits()
	}
	if a.drift != nil {
		if v := sliderRow(x, &y, "drift strength", p.driftStrength, 0, 3); v != p.driftStrength {
			p.driftStrength = v
			a.drift.Strength = float64(v)
		}
	}
}

// sliderRow draws one labeled slider and returns its (possibly changed)
// value, advancing y past the row.
func sliderRow(x float32, y *float32, label string, value, min, max float32) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18

	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: panelWidth - 60, Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf("%.2f", v), int32(x+panelWidth-52), int32(*y+2), 16, rl.RayWhite)
	*y += 32
	return v
}

func (a *App) applyWander() {
	p := &a.panel
	for _, h := range a.handles {
		if h.wander == nil {
			continue
		}
		h.wander.Jitter = float64(p.wanderJitter)
		h.wander.Radius = float64(p.wanderRadius)
		h.wander.Distance = float64(p.wanderDistance)
	}
}

func (a *App) applyFlee() {
	for _, h := range a.handles {
		if h.flee != nil {
			h.flee.PanicDistance = float64(a.panel.fleePanic)
		}
	}
}

func (a *App) applyPursuit() {
	for _, h := range a.handles {
		if h.pursuit != nil {
			h.pursuit.PredictionFactor = float64(a.panel.prediction)
		}
	}
}

// applyLimits rewrites the kinematic ceilings, preserving the pursuer
// speed edge.
func (a *App) applyLimits() {
	cfg := config.Cfg()
	advantage := cfg.Agents.SpeedAdvantage
	if advantage <= 0 {
		advantage = 1
	}
	for _, h := range a.handles {
		h.vehicle.MaxForce = float64(a.panel.maxForce)
		h.vehicle.MaxSpeed = float64(a.panel.maxSpeed)
		if h.role == RolePursuer {
			h.vehicle.MaxSpeed *= advantage
		}
	}
}
