package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/ui"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < ui.MaxSpeed {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyS) {
		g.view.ShowStats = !g.view.ShowStats
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.view.ShowNetwork = !g.view.ShowNetwork
	}
}

// Update handles input and advances the simulation by StepsPerUpdate fixed
// steps unless paused.
func (g *Game) Update() error {
	g.perfCollector.RecordFrame()
	g.handleInput()

	if g.paused {
		return nil
	}
	return g.UpdateHeadless()
}
