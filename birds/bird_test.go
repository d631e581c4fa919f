package birds

import (
	"math"
	"testing"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/pipes"
)

// zeroBrain returns a network whose output is exactly σ(0) = 0.5 for any input.
func zeroBrain(t *testing.T, cfg *config.Config) *neural.FFNN {
	t.Helper()
	topo := Topology(cfg)
	bw := neural.BrainWeights{
		W1: make([]float64, topo.Inputs*topo.Hidden),
		W2: make([]float64, topo.Hidden*topo.Outputs),
	}
	nn, err := neural.FromWeights(topo, WeightRange(cfg), bw)
	if err != nil {
		t.Fatalf("FromWeights failed: %v", err)
	}
	return nn
}

func newTestBird(t *testing.T, cfg *config.Config) *Bird {
	t.Helper()
	return newBirdWithBrain(cfg, zeroBrain(t, cfg), OriginFounder)
}

func TestDecideThresholdIsStrict(t *testing.T) {
	cfg := config.Default()

	b := newTestBird(t, cfg)
	if b.Decide(nil) {
		t.Error("output equal to threshold must not flap")
	}
	if b.Velocity() != 0 {
		t.Errorf("velocity = %v, want 0", b.Velocity())
	}

	cfg.Neural.JumpThreshold = 0.49
	b = newTestBird(t, cfg)
	if !b.Decide(nil) {
		t.Error("output above threshold must flap")
	}
	if b.Velocity() != cfg.Bird.JumpSpeed {
		t.Errorf("velocity = %v, want %v", b.Velocity(), cfg.Bird.JumpSpeed)
	}
}

func TestStepKinematics(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	b.vy = 0.1

	b.Step(10)

	wantY := cfg.Bird.StartY + 0.1*10 + 0.5*cfg.Bird.Gravity*100
	wantVY := 0.1 + cfg.Bird.Gravity*10
	if math.Abs(b.Y()-wantY) > 1e-12 {
		t.Errorf("y = %v, want %v", b.Y(), wantY)
	}
	if math.Abs(b.Velocity()-wantVY) > 1e-12 {
		t.Errorf("vy = %v, want %v", b.Velocity(), wantVY)
	}
}

func TestStepClampsAtTop(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	b.y = cfg.Bird.Height/2 + 5
	b.vy = -1

	b.Step(10)

	if b.Rect().Top != 0 {
		t.Errorf("top = %v, want 0", b.Rect().Top)
	}
	if b.Velocity() != 0 {
		t.Errorf("vy = %v, want 0 after hitting the top", b.Velocity())
	}
}

func TestFloorDeathKeepsFitness(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	b.y = cfg.Screen.Height - cfg.Bird.Height/2 + 1

	b.CheckTermination(nil)

	if b.Alive() {
		t.Fatal("bird below the screen should be dead")
	}
	if b.Cause() != CauseFloor {
		t.Errorf("cause = %v, want floor", b.Cause())
	}
	if b.Fitness() != 0 {
		t.Errorf("fitness = %v, want 0", b.Fitness())
	}
}

func TestCollisionFitnessFirstHitOnly(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	b.y = 110 // top at 95

	x := cfg.Bird.StartX - 10
	obstacles := []pipes.Pipe{
		{Kind: pipes.Lower, Pair: 9, Rect: pipes.Rect{Left: x + 500, Right: x + 580, Top: 400, Bottom: 900}},
		{Kind: pipes.Upper, Pair: 1, Rect: pipes.Rect{Left: x, Right: x + 80, Top: -400, Bottom: 100}},
		{Kind: pipes.Upper, Pair: 2, Rect: pipes.Rect{Left: x, Right: x + 80, Top: -400, Bottom: 105}},
	}

	b.CheckTermination(obstacles)

	if b.Alive() || b.Cause() != CausePipe {
		t.Fatalf("alive=%v cause=%v, want dead by pipe", b.Alive(), b.Cause())
	}
	// Gap center of pair 1 is 100 + 80 = 180
	if b.Fitness() != -70 {
		t.Errorf("fitness = %v, want -70", b.Fitness())
	}
}

func TestCollisionWithLowerPipe(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	b.y = 400

	x := cfg.Bird.StartX - 10
	obstacles := []pipes.Pipe{
		{Kind: pipes.Lower, Rect: pipes.Rect{Left: x, Right: x + 80, Top: 390, Bottom: 900}},
	}
	b.CheckTermination(obstacles)

	// Gap center is 390 - 80 = 310
	if b.Fitness() != -90 {
		t.Errorf("fitness = %v, want -90", b.Fitness())
	}
}

func TestSenseWithoutPipes(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)

	got := b.Sense(nil)

	wantH := (2*cfg.Screen.Width-cfg.Bird.StartX)/cfg.Screen.Width*0.99 + 0.01
	wantV := (cfg.Bird.StartY-cfg.Pipes.GapSize/2+cfg.Derived.YShift)/cfg.Derived.Normalizer*0.99 + 0.01
	if math.Abs(got[0]-wantH) > 1e-12 || math.Abs(got[1]-wantV) > 1e-12 {
		t.Errorf("Sense(nil) = %v, want [%v %v]", got, wantH, wantV)
	}
}

func TestSensePicksNearestUpperAhead(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	left := b.Rect().Left

	obstacles := []pipes.Pipe{
		// Behind the bird: right edge at its left edge
		{Kind: pipes.Upper, Rect: pipes.Rect{Left: left - 80, Right: left, Top: -300, Bottom: 50}},
		{Kind: pipes.Upper, Rect: pipes.Rect{Left: 600, Right: 680, Top: -300, Bottom: 300}},
		{Kind: pipes.Upper, Rect: pipes.Rect{Left: 300, Right: 380, Top: -300, Bottom: 150}},
		// Lower pipes never count
		{Kind: pipes.Lower, Rect: pipes.Rect{Left: 210, Right: 290, Top: 310, Bottom: 900}},
	}

	got := b.Sense(obstacles)

	wantH := (380-cfg.Bird.StartX)/cfg.Screen.Width*0.99 + 0.01
	vertical := cfg.Bird.StartY - (150 + cfg.Pipes.GapSize/2)
	wantV := (vertical+cfg.Derived.YShift)/cfg.Derived.Normalizer*0.99 + 0.01
	if math.Abs(got[0]-wantH) > 1e-12 || math.Abs(got[1]-wantV) > 1e-12 {
		t.Errorf("Sense = %v, want [%v %v]", got, wantH, wantV)
	}
}

func TestSenseRangeOverPlayfield(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)

	for gapTop := cfg.Pipes.Min; gapTop <= cfg.Pipes.Max-cfg.Pipes.GapSize; gapTop += 20 {
		for y := 0.0; y <= cfg.Screen.Height; y += 20 {
			b.y = y
			p := []pipes.Pipe{{Kind: pipes.Upper, Rect: pipes.Rect{Left: 300, Right: 380, Bottom: gapTop}}}
			in := b.Sense(p)
			if in[1] < 0.01-1e-9 || in[1] > 1+1e-9 {
				t.Errorf("gapTop=%v y=%v: vertical input %v outside [0.01, 1]", gapTop, y, in[1])
			}
		}
	}
}

func TestTickOrderAndDeadNoop(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)

	b.Tick(10, nil)
	if b.Lived() != 10 {
		t.Errorf("lived = %v, want 10", b.Lived())
	}
	if !b.Alive() {
		t.Fatal("bird died in open air")
	}

	b.die(CauseFloor)
	y, lived := b.Y(), b.Lived()
	b.Tick(10, nil)
	if b.Y() != y || b.Lived() != lived {
		t.Error("dead bird changed on Tick")
	}
}

func TestResetKeepsBrain(t *testing.T) {
	cfg := config.Default()
	b := newTestBird(t, cfg)
	brain := b.Brain()

	b.y, b.vy, b.fitness, b.lived = 500, 0.3, -42, 1234
	b.die(CausePipe)
	b.Reset()

	if !b.Alive() || b.Cause() != CauseNone {
		t.Error("reset bird should be alive with no death cause")
	}
	if b.Y() != cfg.Bird.StartY || b.Velocity() != 0 || b.Fitness() != 0 || b.Lived() != 0 {
		t.Errorf("reset state y=%v vy=%v fitness=%v lived=%v", b.Y(), b.Velocity(), b.Fitness(), b.Lived())
	}
	if b.Brain() != brain {
		t.Error("reset replaced the brain")
	}
}
