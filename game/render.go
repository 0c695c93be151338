package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/michealparks/lib-ai/config"
)

// Debug vector scales keep velocity and force lines readable without
// swamping the scene.
const (
	velocityVectorScale = 0.5
	forceVectorScale    = 0.25
	facingLineLength    = 2.0
)

// initCamera places the orbital camera outside the world box, looking at
// its center.
func (a *App) initCamera() {
	cfg := config.Cfg()
	a.camera = rl.Camera3D{
		Position: rl.NewVector3(
			float32(cfg.World.Width)*0.7,
			float32(cfg.World.Height)*1.1,
			float32(cfg.World.Depth)*0.7,
		),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
	a.showPanel = true
}

// Draw renders one frame: the world through the orbital camera, then the
// HUD and the tuning panel.
func (a *App) Draw() {
	rl.UpdateCamera(&a.camera, rl.CameraOrbital)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.BeginMode3D(a.camera)
	a.drawWorld()
	a.drawAgents()
	rl.EndMode3D()

	a.drawHUD()
	if a.showPanel {
		a.drawPanel()
	}

	rl.EndDrawing()
}

// drawWorld draws the bounding box and a floor grid.
func (a *App) drawWorld() {
	cfg := config.Cfg()
	rl.DrawCubeWires(
		rl.NewVector3(0, 0, 0),
		float32(cfg.World.Width), float32(cfg.World.Height), float32(cfg.World.Depth),
		rl.DarkGray,
	)

	gridColor := rl.Color{R: 60, G: 60, B: 60, A: 120}
	halfW := float32(cfg.Derived.HalfWidth)
	halfD := float32(cfg.Derived.HalfDepth)
	floor := float32(-cfg.Derived.HalfHeight)
	const lines = 12
	for i := 0; i <= lines; i++ {
		t := -1 + 2*float32(i)/lines
		rl.DrawLine3D(
			rl.NewVector3(t*halfW, floor, -halfD),
			rl.NewVector3(t*halfW, floor, halfD),
			gridColor,
		)
		rl.DrawLine3D(
			rl.NewVector3(-halfW, floor, t*halfD),
			rl.NewVector3(halfW, floor, t*halfD),
			gridColor,
		)
	}
}

// drawAgents renders every agent as a role-colored sphere with a facing
// tick, plus velocity and force vectors in debug mode.
func (a *App) drawAgents() {
	query := a.agentFilter.Query()
	for query.Next() {
		pose, motion, agent := query.Get()

		h := a.byID[agent.ID]
		if h == nil {
			continue
		}

		col := roleColor(agent.Role)
		if !h.vehicle.Active {
			col = rl.Gray
		}

		center := toRL(pose.Pos)
		rl.DrawSphere(center, roleRadius(agent.Role), col)

		facing := pose.Pos.Add(h.vehicle.Direction().Mul(facingLineLength))
		rl.DrawLine3D(center, toRL(facing), rl.RayWhite)

		if a.showVectors {
			vel := pose.Pos.Add(motion.Vel.Mul(velocityVectorScale))
			rl.DrawLine3D(center, toRL(vel), rl.Green)

			force := pose.Pos.Add(h.vehicle.Force().Mul(forceVectorScale))
			rl.DrawLine3D(center, toRL(force), rl.Orange)
		}
	}
}

// drawHUD draws the status block and the key help line.
func (a *App) drawHUD() {
	rl.DrawFPS(10, 10)

	active := 0
	for _, h := range a.handles {
		if h.vehicle.Active {
			active++
		}
	}

	rl.DrawText(fmt.Sprintf("tick %d  (%.1fs)", a.tick, a.elapsed), 10, 34, 18, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("agents %d/%d  captures %d", active, len(a.handles), a.totalCaptures), 10, 56, 18, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("speed %dx", a.stepsPerUpdate), 10, 78, 18, rl.RayWhite)

	if a.paused {
		rl.DrawText("PAUSED", 10, 100, 18, rl.Gold)
	}

	help := "[space] pause  [, .] speed  [d] vectors  [tab] panel"
	rl.DrawText(help, 10, int32(config.Cfg().Screen.Height)-26, 16, rl.Gray)
}

func roleColor(r Role) rl.Color {
	if r == RolePursuer {
		return rl.Red
	}
	return rl.SkyBlue
}

func roleRadius(r Role) float32 {
	if r == RolePursuer {
		return 0.9
	}
	return 0.6
}

func toRL(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}
