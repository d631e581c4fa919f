package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/flappy/telemetry"
)

// finishGeneration evolves the exhausted population, records the generation
// and restarts the course.
func (g *Game) finishGeneration() error {
	cleared := g.course.Cleared()

	g.perfCollector.StartPhase(telemetry.PhaseEvolve)
	report, err := g.pop.Evolve()
	if err != nil {
		return fmt.Errorf("evolving generation %d: %w", g.pop.Generation(), err)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	stats := telemetry.ComputeGenerationStats(report, g.pop, cleared)
	g.collector.Record(&stats)
	g.lastStats = stats
	g.hasStats = true

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	logEvery := g.cfg.Telemetry.LogEvery
	if logEvery > 0 && report.Generation%logEvery == 0 {
		slog.Info("generation", "stats", stats)
		if g.opts.LogStats {
			g.perfCollector.Stats().LogStats()
		}
	}

	// CSV gets every generation regardless of log_every
	if err := g.outputManager.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
	if err := g.outputManager.WritePerf(g.perfCollector.Stats(), report.Generation); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	g.course.Reset()

	if g.Done() {
		slog.Info("max generations reached",
			"generations", g.pop.Generation(),
			"best_ever", g.collector.BestEver(),
			"best_generation", g.collector.BestGeneration(),
		)
	}
	return nil
}
