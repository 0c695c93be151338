package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input for the graphical loop.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyD) {
		a.showVectors = !a.showVectors
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.showPanel = !a.showPanel
	}
}
