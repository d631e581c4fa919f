package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/flappy/birds"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/pipes"
	"github.com/pthm-cable/flappy/telemetry"
	"github.com/pthm-cable/flappy/ui"
)

// Options configures a game instance.
type Options struct {
	Seed           int64
	OutputDir      string // Directory for CSV logs and config snapshot (empty = disabled)
	Headless       bool   // Skip raylib resources
	StepsPerUpdate int    // Fixed steps per Update/UpdateHeadless call (0 = config)
	MaxGenerations int    // Stop after N finished generations (0 = config)
	LogStats       bool   // Emit perf records alongside generation records

	// StatsCallback, if set, receives every finished generation's stats.
	StatsCallback func(telemetry.GenerationStats)
}

// Game ties the course, the population and telemetry into one host loop.
type Game struct {
	cfg  *config.Config
	opts Options

	course *pipes.Course
	pop    *birds.Population

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.GenerationStats
	hasStats      bool

	// Viewer state
	hud      *ui.HUD
	controls *ui.ControlsPanel
	stats    *ui.StatsPanel
	network  *ui.NetworkPanel
	view     ui.ControlsState

	tick           int64
	paused         bool
	stepsPerUpdate int
	maxGenerations int
}

// NewGameWithOptions creates a game from cfg. The config is validated and
// copied into the population, so later changes to cfg have no effect.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	pop, err := birds.NewPopulation(*cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("creating population: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(pop.Config()); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:            pop.Config(),
		opts:           opts,
		course:         pipes.NewCourse(pop.Config(), rng),
		pop:            pop,
		collector:      telemetry.NewCollector(),
		perfCollector:  telemetry.NewPerfCollector(cfg.Screen.FPS * 2),
		outputManager:  om,
		stepsPerUpdate: opts.StepsPerUpdate,
		maxGenerations: opts.MaxGenerations,
	}
	if g.stepsPerUpdate <= 0 {
		g.stepsPerUpdate = cfg.Run.StepsPerUpdate
	}
	if g.maxGenerations <= 0 {
		g.maxGenerations = cfg.Run.MaxGenerations
	}

	if !opts.Headless {
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(int32(cfg.Screen.Width)-ui.ControlsWidth-10, 10)
		g.stats = ui.NewStatsPanel(int32(cfg.Screen.Width)-ui.StatsPanelWidth-10, 140)
		g.network = ui.NewNetworkPanel(10, int32(cfg.Screen.Height)-ui.NetworkHeight-40)
		g.view = ui.ControlsState{ShowStats: true, ShowNetwork: true}
	}

	g.logStart()
	return g, nil
}

// Step advances the world by dt milliseconds. When the last bird dies the
// generation is evolved, recorded and the course restarts.
func (g *Game) Step(dt float64) error {
	g.perfCollector.StartStep(dt)
	defer g.perfCollector.EndStep()

	g.perfCollector.StartPhase(telemetry.PhaseCourse)
	g.course.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseBirds)
	alive, err := g.pop.Tick(dt, g.course.Pipes())
	if err != nil && !errors.Is(err, birds.ErrExhausted) {
		return err
	}
	g.tick++

	if alive > 0 {
		return nil
	}
	return g.finishGeneration()
}

// UpdateHeadless runs StepsPerUpdate fixed steps without touching raylib.
func (g *Game) UpdateHeadless() error {
	dt := g.cfg.Derived.TickMillis
	for i := 0; i < g.stepsPerUpdate && !g.Done(); i++ {
		if err := g.Step(dt); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether MaxGenerations generations have finished.
func (g *Game) Done() bool {
	return g.maxGenerations > 0 && g.pop.Generation() >= g.maxGenerations
}

// Close flushes and closes telemetry output.
func (g *Game) Close() error {
	return g.outputManager.Close()
}

// Generation returns the number of finished generations.
func (g *Game) Generation() int {
	return g.pop.Generation()
}

// Tick returns the number of steps taken since start.
func (g *Game) Tick() int64 {
	return g.tick
}

// Population returns the evolving population.
func (g *Game) Population() *birds.Population {
	return g.pop
}

// Course returns the obstacle course.
func (g *Game) Course() *pipes.Course {
	return g.course
}

// Collector returns the cross-generation tracker.
func (g *Game) Collector() *telemetry.Collector {
	return g.collector
}

// LastStats returns the stats of the most recent finished generation.
func (g *Game) LastStats() (telemetry.GenerationStats, bool) {
	return g.lastStats, g.hasStats
}

// Paused reports whether the viewer is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// StepsPerUpdate returns the current fixed steps per update.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

func (g *Game) logStart() {
	slog.Info("starting simulation",
		"seed", g.opts.Seed,
		"population", g.pop.Len(),
		"headless", g.opts.Headless,
		"steps_per_update", g.stepsPerUpdate,
		"max_generations", g.maxGenerations,
		"output_dir", g.outputManager.Dir(),
	)
}
