package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/birds"
	"github.com/pthm-cable/flappy/pipes"
	"github.com/pthm-cable/flappy/ui"
)

var (
	skyColor     = rl.Color{R: 112, G: 197, B: 206, A: 255}
	pipeColor    = rl.Color{R: 84, G: 170, B: 60, A: 255}
	pipeRimColor = rl.Color{R: 40, G: 90, B: 30, A: 255}
)

// originColor tints birds by how their brain entered the generation.
func originColor(o birds.Origin) rl.Color {
	switch o {
	case birds.OriginElite:
		return rl.Color{R: 250, G: 210, B: 40, A: 230}
	case birds.OriginSurvivor:
		return rl.Color{R: 90, G: 140, B: 230, A: 200}
	case birds.OriginOffspring:
		return rl.Color{R: 240, G: 120, B: 60, A: 200}
	default:
		return rl.Color{R: 235, G: 235, B: 235, A: 200}
	}
}

// Draw renders the course, the live birds and the UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(skyColor)

	obstacles := g.course.Pipes()
	for _, p := range obstacles {
		drawRect(p.Rect, pipeColor)
		rl.DrawRectangleLinesEx(toRaylib(p.Rect), 2, pipeRimColor)
	}

	// Draw back to front so the elite end up on top
	for i := g.pop.Len() - 1; i >= 0; i-- {
		b := g.pop.Bird(i)
		if b.Alive() {
			drawRect(b.Rect(), originColor(b.Origin()))
		}
	}

	g.drawUI(obstacles)

	rl.EndDrawing()
}

func (g *Game) drawUI(obstacles []pipes.Pipe) {
	g.hud.Draw(ui.HUDData{
		Title:        "Flappy Evolution",
		Generation:   g.pop.Generation(),
		Alive:        g.pop.Alive(),
		Population:   g.pop.Len(),
		PipesCleared: g.course.Cleared(),
		BestEver:     g.collector.BestEver(),
		Tick:         g.tick,
		Speed:        g.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
	})
	g.hud.DrawControls(int32(g.cfg.Screen.Height), "[Space] Pause  [,/.] Speed  [S] Stats  [N] Network  [F11] Fullscreen")

	state := g.controls.Draw(ui.ControlsState{
		Paused:         g.paused,
		StepsPerUpdate: g.stepsPerUpdate,
		ShowStats:      g.view.ShowStats,
		ShowNetwork:    g.view.ShowNetwork,
	})
	g.paused = state.Paused
	g.stepsPerUpdate = state.StepsPerUpdate
	g.view = state

	if g.view.ShowStats {
		if stats, ok := g.LastStats(); ok {
			g.stats.Draw(stats)
		}
	}

	if g.view.ShowNetwork {
		if b := g.leader(); b != nil {
			in := b.Sense(obstacles)
			g.network.Draw(ui.NetworkData{
				Topology: b.Brain().Topology(),
				Weights:  b.Brain().Weights(),
				Inputs:   in[:],
				Output:   b.Brain().Forward(in[:]),
				Label:    "Leader (" + b.Origin().String() + ")",
			})
		}
	}
}

// leader returns the first live bird in slot order. Slots start with the
// previous generation's elite in rank order.
func (g *Game) leader() *birds.Bird {
	for i := 0; i < g.pop.Len(); i++ {
		if b := g.pop.Bird(i); b.Alive() {
			return b
		}
	}
	return nil
}

func toRaylib(r pipes.Rect) rl.Rectangle {
	return rl.Rectangle{X: float32(r.Left), Y: float32(r.Top), Width: float32(r.Width()), Height: float32(r.Height())}
}

func drawRect(r pipes.Rect, c rl.Color) {
	rl.DrawRectangle(int32(r.Left), int32(r.Top), int32(r.Width()), int32(r.Height()), c)
}
