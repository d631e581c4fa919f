package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/neural"
)

// Network panel geometry.
const (
	NetworkWidth  int32 = 240
	NetworkHeight int32 = 170
	nodeRadius          = 7
)

// NetworkData describes one controller and its latest activations.
type NetworkData struct {
	Topology neural.Topology
	Weights  neural.BrainWeights
	Inputs   []float64
	Output   float64
	Label    string
}

// NetworkPanel draws a feed-forward controller as layered nodes with
// weight-colored edges.
type NetworkPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewNetworkPanel creates a network panel at the given position.
func NewNetworkPanel(x, y int32) *NetworkPanel {
	return &NetworkPanel{renderer: NewRenderer(), x: x, y: y}
}

// Draw renders the network.
func (p *NetworkPanel) Draw(data NetworkData) {
	r := p.renderer
	r.DrawPanel(p.x, p.y, NetworkWidth, NetworkHeight)
	rl.DrawText(data.Label, p.x+r.Theme.Padding, p.y+r.Theme.Padding, r.Theme.HeaderFontSize, r.Theme.SectionHeader)

	top := float32(p.y + r.Theme.Padding + r.Theme.LineHeight + 6)
	bottom := float32(p.y + NetworkHeight - r.Theme.Padding)
	in := layerPositions(data.Topology.Inputs, float32(p.x)+30, top, bottom)
	hid := layerPositions(data.Topology.Hidden, float32(p.x)+float32(NetworkWidth)/2, top, bottom)
	out := layerPositions(data.Topology.Outputs, float32(p.x+NetworkWidth)-50, top, bottom)

	drawEdges(in, hid, data.Weights.W1)
	drawEdges(hid, out, data.Weights.W2)

	for i, pos := range in {
		value := 0.0
		if i < len(data.Inputs) {
			value = data.Inputs[i]
		}
		drawNode(pos, value)
		rl.DrawText(fmt.Sprintf("%.2f", value), int32(pos.X)-28, int32(pos.Y)-5, 10, r.Theme.LabelColor)
	}
	for _, pos := range hid {
		rl.DrawCircleLines(int32(pos.X), int32(pos.Y), nodeRadius, r.Theme.LabelColor)
	}
	for _, pos := range out {
		drawNode(pos, data.Output)
		rl.DrawText(fmt.Sprintf("%.2f", data.Output), int32(pos.X)+12, int32(pos.Y)-5, 10, r.Theme.ValueColor)
	}
}

// layerPositions spreads n nodes evenly between top and bottom at x.
func layerPositions(n int, x, top, bottom float32) []rl.Vector2 {
	pos := make([]rl.Vector2, n)
	step := (bottom - top) / float32(n+1)
	for i := range pos {
		pos[i] = rl.Vector2{X: x, Y: top + step*float32(i+1)}
	}
	return pos
}

// drawEdges draws from→to edges for a row-major len(from)×len(to) weight slice.
func drawEdges(from, to []rl.Vector2, weights []float64) {
	for i, a := range from {
		for j, b := range to {
			k := i*len(to) + j
			if k >= len(weights) {
				return
			}
			rl.DrawLineEx(a, b, 1+2*float32(math.Min(math.Abs(weights[k]), 1)), WeightColor(weights[k]))
		}
	}
}

func drawNode(pos rl.Vector2, activation float64) {
	shade := uint8(math.Max(0, math.Min(1, activation)) * 255)
	rl.DrawCircleV(pos, nodeRadius, rl.Color{R: shade, G: shade, B: shade, A: 255})
	rl.DrawCircleLines(int32(pos.X), int32(pos.Y), nodeRadius, rl.LightGray)
}

// WeightColor maps a weight to green (positive) or red (negative) with
// opacity growing with magnitude.
func WeightColor(w float64) rl.Color {
	alpha := uint8(60 + 195*math.Min(math.Abs(w), 1))
	if w < 0 {
		return rl.Color{R: 220, G: 90, B: 90, A: alpha}
	}
	return rl.Color{R: 90, G: 200, B: 110, A: alpha}
}
