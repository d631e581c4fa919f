package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/flappy/birds"
	"github.com/pthm-cable/flappy/config"
)

// fallingConfig returns a small config whose birds never flap, so every
// generation ends on the floor within a second of simulated time.
func fallingConfig() *config.Config {
	cfg := config.Default()
	cfg.Evolution.Population = 10
	cfg.Neural.JumpThreshold = 0.999
	return cfg
}

func newHeadlessGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(cfg, opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestNewGameRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Evolution.Population = 1
	_, err := NewGameWithOptions(cfg, Options{Headless: true})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want config.ErrInvalid", err)
	}
}

func TestHeadlessRunFinishesGenerations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := fallingConfig()
	g := newHeadlessGame(t, cfg, Options{
		Seed:           3,
		OutputDir:      dir,
		StepsPerUpdate: 10,
		MaxGenerations: 3,
	})

	for i := 0; i < 1000 && !g.Done(); i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("UpdateHeadless failed: %v", err)
		}
	}
	if !g.Done() || g.Generation() != 3 {
		t.Fatalf("done=%v generation=%d, want done after 3", g.Done(), g.Generation())
	}

	// Further updates are no-ops once done
	tick := g.Tick()
	if err := g.UpdateHeadless(); err != nil || g.Tick() != tick {
		t.Errorf("update after done: err=%v tick %d -> %d", err, tick, g.Tick())
	}

	stats, ok := g.LastStats()
	if !ok {
		t.Fatal("no stats recorded")
	}
	if stats.Generation != 2 || stats.Birds != 10 {
		t.Errorf("last stats generation=%d birds=%d, want 2 10", stats.Generation, stats.Birds)
	}
	if stats.FloorDeaths != 10 || stats.PipeDeaths != 0 {
		t.Errorf("deaths floor=%d pipe=%d, want 10 0", stats.FloorDeaths, stats.PipeDeaths)
	}
	if g.Collector().Generations() != 3 {
		t.Errorf("collector saw %d generations, want 3", g.Collector().Generations())
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 4 {
		t.Errorf("generations.csv has %d lines, want header + 3", len(lines))
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot unreadable: %v", err)
	}
}

func TestStepRestartsCourseAfterGeneration(t *testing.T) {
	cfg := fallingConfig()
	g := newHeadlessGame(t, cfg, Options{Seed: 1})

	dt := cfg.Derived.TickMillis
	for g.Generation() == 0 {
		if err := g.Step(dt); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		if g.Tick() > 1000 {
			t.Fatal("generation never ended")
		}
	}

	pop := g.Population()
	if pop.Alive() != pop.Len() {
		t.Errorf("alive = %d after evolve, want %d", pop.Alive(), pop.Len())
	}
	ps := g.Course().Pipes()
	if len(ps) != 2 || ps[0].Rect.Left != cfg.Pipes.FirstX {
		t.Errorf("course not restarted: %d pipes, first left %v", len(ps), ps[0].Rect.Left)
	}

	comp := birds.ExpectedComposition(pop.Config())
	var elite int
	for i := 0; i < pop.Len(); i++ {
		if pop.Bird(i).Origin() == birds.OriginElite {
			elite++
		}
	}
	if elite != comp.Elite {
		t.Errorf("elite slots = %d, want %d", elite, comp.Elite)
	}
}

func TestStepsPerUpdateFallsBackToConfig(t *testing.T) {
	cfg := fallingConfig()
	cfg.Run.StepsPerUpdate = 4
	cfg.Run.MaxGenerations = 2
	g := newHeadlessGame(t, cfg, Options{Seed: 1})

	if g.StepsPerUpdate() != 4 {
		t.Errorf("steps per update = %d, want 4", g.StepsPerUpdate())
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != 4 {
		t.Errorf("tick = %d after one update, want 4", g.Tick())
	}
	if g.maxGenerations != 2 {
		t.Errorf("max generations = %d, want 2", g.maxGenerations)
	}
}

func TestHeadlessRunDeterministic(t *testing.T) {
	run := func() ([]float64, int) {
		cfg := config.Default()
		cfg.Evolution.Population = 20
		g := newHeadlessGame(t, cfg, Options{Seed: 77, StepsPerUpdate: 50})
		for i := 0; i < 40; i++ {
			if err := g.UpdateHeadless(); err != nil {
				t.Fatal(err)
			}
		}
		pop := g.Population()
		ys := make([]float64, pop.Len())
		for i := range ys {
			ys[i] = pop.Bird(i).Y()
		}
		return ys, g.Generation()
	}

	ya, ga := run()
	yb, gb := run()
	if ga != gb {
		t.Fatalf("generations differ: %d vs %d", ga, gb)
	}
	for i := range ya {
		if ya[i] != yb[i] {
			t.Fatalf("bird %d: y %v vs %v", i, ya[i], yb[i])
		}
	}
}
