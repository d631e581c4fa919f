package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Controls panel geometry.
const (
	ControlsWidth  int32 = 200
	controlsHeight int32 = 120
	MaxSpeed             = 50
)

// ControlsState is the state edited by the controls panel.
type ControlsState struct {
	Paused         bool
	StepsPerUpdate int
	ShowStats      bool
	ShowNetwork    bool
}

// ControlsPanel renders pause, speed and panel toggles with raygui.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the panel and returns the state after this frame's clicks.
func (c *ControlsPanel) Draw(state ControlsState) ControlsState {
	r := c.renderer
	padding := float32(r.Theme.Padding)

	r.DrawPanel(c.x, c.y, ControlsWidth, controlsHeight)

	x := float32(c.x) + padding
	y := float32(c.y) + padding
	inner := float32(ControlsWidth) - 2*padding

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	y += 32

	rl.DrawText(fmt.Sprintf("Speed %dx", state.StepsPerUpdate), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	speed := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner, Height: 16},
		"", "",
		float32(state.StepsPerUpdate), 1, MaxSpeed,
	)
	state.StepsPerUpdate = clampSpeed(int(speed + 0.5))
	y += 24

	half := (inner - padding) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 20}, toggleText(state.ShowStats, "Hide stats", "Stats")) {
		state.ShowStats = !state.ShowStats
	}
	if gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 20}, toggleText(state.ShowNetwork, "Hide net", "Network")) {
		state.ShowNetwork = !state.ShowNetwork
	}

	return state
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

func clampSpeed(s int) int {
	if s < 1 {
		return 1
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}
