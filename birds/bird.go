// Package birds holds the agents being trained and the population that
// evolves their networks between generations.
package birds

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/pipes"
)

// DeathCause records why a bird stopped flying.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseFloor
	CausePipe
)

func (c DeathCause) String() string {
	switch c {
	case CauseFloor:
		return "floor"
	case CausePipe:
		return "pipe"
	default:
		return "none"
	}
}

// Origin records how a bird's network entered the current generation.
type Origin uint8

const (
	OriginFounder Origin = iota
	OriginElite
	OriginSurvivor
	OriginOffspring
)

func (o Origin) String() string {
	switch o {
	case OriginElite:
		return "elite"
	case OriginSurvivor:
		return "survivor"
	case OriginOffspring:
		return "offspring"
	default:
		return "founder"
	}
}

// Bird is one agent. It owns its brain exclusively; physical state is only
// meaningful while it is alive.
type Bird struct {
	cfg   *config.Config
	brain *neural.FFNN

	y       float64 // vertical center
	vy      float64
	alive   bool
	cause   DeathCause
	fitness float64
	lived   float64 // ms
	origin  Origin
}

// newBird creates a live bird at the start position with a random brain.
func newBird(cfg *config.Config, rng *rand.Rand) (*Bird, error) {
	brain, err := neural.New(Topology(cfg), WeightRange(cfg), rng)
	if err != nil {
		return nil, err
	}
	return newBirdWithBrain(cfg, brain, OriginFounder), nil
}

func newBirdWithBrain(cfg *config.Config, brain *neural.FFNN, origin Origin) *Bird {
	b := &Bird{cfg: cfg, brain: brain, origin: origin}
	b.Reset()
	return b
}

// Topology returns the network topology a config describes.
func Topology(cfg *config.Config) neural.Topology {
	return neural.Topology{Inputs: cfg.Neural.Inputs, Hidden: cfg.Neural.Hidden, Outputs: cfg.Neural.Outputs}
}

// WeightRange returns the weight initialization range a config describes.
func WeightRange(cfg *config.Config) neural.WeightRange {
	return neural.WeightRange{Min: cfg.Neural.WeightMin, Max: cfg.Neural.WeightMax}
}

// Reset restores the start position, clears fitness and lived time and
// revives the bird. The brain is kept.
func (b *Bird) Reset() {
	b.y = b.cfg.Bird.StartY
	b.vy = 0
	b.alive = true
	b.cause = CauseNone
	b.fitness = 0
	b.lived = 0
}

// Rect returns the bird's bounding box.
func (b *Bird) Rect() pipes.Rect {
	return pipes.RectFromCenter(b.cfg.Bird.StartX, b.y, b.cfg.Bird.Width, b.cfg.Bird.Height)
}

// Y returns the vertical center.
func (b *Bird) Y() float64 { return b.y }

// Velocity returns the vertical velocity in px/ms.
func (b *Bird) Velocity() float64 { return b.vy }

// Alive reports whether the bird is still flying.
func (b *Bird) Alive() bool { return b.alive }

// Cause returns why the bird died, or CauseNone while alive.
func (b *Bird) Cause() DeathCause { return b.cause }

// Fitness returns the current fitness.
func (b *Bird) Fitness() float64 { return b.fitness }

// Lived returns the accumulated flight time in ms.
func (b *Bird) Lived() float64 { return b.lived }

// Origin returns how the bird's brain entered this generation.
func (b *Bird) Origin() Origin { return b.origin }

// Brain returns the bird's network.
func (b *Bird) Brain() *neural.FFNN { return b.brain }

// Tick advances a live bird by dt ms: physics, then the flap decision,
// then the termination check. Dead birds are left untouched.
func (b *Bird) Tick(dt float64, obstacles []pipes.Pipe) {
	if !b.alive {
		return
	}
	b.lived += dt
	b.Step(dt)
	b.Decide(obstacles)
	b.CheckTermination(obstacles)
}

// Step applies constant gravity for dt ms. The bird cannot leave through
// the top of the screen; hitting it stops upward motion.
func (b *Bird) Step(dt float64) {
	g := b.cfg.Bird.Gravity
	b.y += b.vy*dt + 0.5*g*dt*dt
	b.vy += g * dt

	if top := b.y - b.cfg.Bird.Height/2; top < 0 {
		b.y = b.cfg.Bird.Height / 2
		b.vy = 0
	}
}

// Sense returns the two normalized network inputs: horizontal distance to
// the right edge of the nearest upper pipe ahead, and vertical offset of
// the bird from that pair's gap center. Both land roughly in [0.01, 1].
func (b *Bird) Sense(obstacles []pipes.Pipe) [config.SensorCount]float64 {
	cfg := b.cfg
	rect := b.Rect()

	// Without a pipe ahead, read a pipe edge two screens away at the top.
	closest := cfg.Screen.Width * 2
	gapEdge := 0.0
	for _, p := range obstacles {
		if p.Kind == pipes.Upper && p.Rect.Right < closest && p.Rect.Right > rect.Left {
			closest = p.Rect.Right
			gapEdge = p.Rect.Bottom
		}
	}

	horizontal := closest - cfg.Bird.StartX
	vertical := b.y - (gapEdge + cfg.Pipes.GapSize/2)

	return [config.SensorCount]float64{
		horizontal/cfg.Screen.Width*0.99 + 0.01,
		(vertical+cfg.Derived.YShift)/cfg.Derived.Normalizer*0.99 + 0.01,
	}
}

// Decide runs the brain on the current sensor reading and flaps when the
// output is strictly above the jump threshold.
func (b *Bird) Decide(obstacles []pipes.Pipe) bool {
	in := b.Sense(obstacles)
	if b.brain.Forward(in[:]) > b.cfg.Neural.JumpThreshold {
		b.vy = b.cfg.Bird.JumpSpeed
		return true
	}
	return false
}

// CheckTermination kills the bird when it falls below the screen or hits a
// pipe. Only the first pipe hit in slice order scores: fitness becomes the
// negative distance from the bird's center to that pair's gap center.
func (b *Bird) CheckTermination(obstacles []pipes.Pipe) {
	rect := b.Rect()
	if rect.Bottom > b.cfg.Screen.Height {
		b.die(CauseFloor)
		return
	}
	for _, p := range obstacles {
		if p.Rect.Overlaps(rect) {
			b.die(CausePipe)
			b.fitness = -math.Abs(b.y - p.GapCenter(b.cfg.Pipes.GapSize))
			return
		}
	}
}

func (b *Bird) die(cause DeathCause) {
	b.alive = false
	b.cause = cause
}
