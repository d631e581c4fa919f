package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flappy/birds"
)

// GenerationStats holds aggregated statistics for one finished generation.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Birds      int `csv:"birds"`

	// Final fitness distribution (collision penalty + distance bonus)
	BestFitness  float64 `csv:"best_fitness"`
	MeanFitness  float64 `csv:"mean_fitness"`
	StdFitness   float64 `csv:"std_fitness"`
	P10Fitness   float64 `csv:"p10_fitness"`
	P50Fitness   float64 `csv:"p50_fitness"`
	P90Fitness   float64 `csv:"p90_fitness"`
	WorstFitness float64 `csv:"worst_fitness"`

	// How the generation ended
	FloorDeaths  int     `csv:"floor_deaths"`
	PipeDeaths   int     `csv:"pipe_deaths"`
	MeanLivedMs  float64 `csv:"mean_lived_ms"`
	PipesCleared int     `csv:"pipes_cleared"`

	// Composition of the next generation
	Elite     int `csv:"elite"`
	Survivors int `csv:"survivors"`
	Offspring int `csv:"offspring"`

	// Mean per-weight standard deviation across the next generation's brains
	WeightStd float64 `csv:"weight_std"`

	// Filled in by Collector
	BestEver float64 `csv:"best_ever"`
	Stagnant int     `csv:"stagnant"`
}

// Quantile returns the empirical p-quantile of sorted values, 0 if empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeFitnessStats calculates mean, std and percentiles of fitness values.
func ComputeFitnessStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if n == 1 {
		std = 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Quantile(sorted, 0.10)
	p50 = Quantile(sorted, 0.50)
	p90 = Quantile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// WeightDiversity returns the mean over weight positions of the standard
// deviation of that weight across the population.
func WeightDiversity(pop *birds.Population) float64 {
	n := pop.Len()
	if n < 2 {
		return 0
	}

	all := make([][]float64, n)
	for i := range all {
		all[i] = pop.Bird(i).Brain().Weights().All()
	}

	column := make([]float64, n)
	stds := make([]float64, len(all[0]))
	for k := range stds {
		for i := range all {
			column[i] = all[i][k]
		}
		stds[k] = stat.StdDev(column, nil)
	}
	return floats.Sum(stds) / float64(len(stds))
}

// ComputeGenerationStats builds the stats for the generation described by
// report. pop must already hold the next generation.
func ComputeGenerationStats(report birds.Report, pop *birds.Population, pipesCleared int) GenerationStats {
	s := GenerationStats{
		Generation:   report.Generation,
		Birds:        len(report.Fitness),
		FloorDeaths:  report.FloorDeaths,
		PipeDeaths:   report.PipeDeaths,
		MeanLivedMs:  report.MeanLived,
		PipesCleared: pipesCleared,
		Elite:        report.Next.Elite,
		Survivors:    report.Next.Survivors,
		Offspring:    report.Next.Offspring,
	}

	if len(report.Fitness) > 0 {
		s.BestFitness = floats.Max(report.Fitness)
		s.WorstFitness = floats.Min(report.Fitness)
		s.MeanFitness, s.StdFitness, s.P10Fitness, s.P50Fitness, s.P90Fitness = ComputeFitnessStats(report.Fitness)
	}
	if pop != nil {
		s.WeightStd = WeightDiversity(pop)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("birds", s.Birds),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("p50_fitness", s.P50Fitness),
		slog.Float64("worst_fitness", s.WorstFitness),
		slog.Int("floor_deaths", s.FloorDeaths),
		slog.Int("pipe_deaths", s.PipeDeaths),
		slog.Float64("mean_lived_ms", s.MeanLivedMs),
		slog.Int("pipes_cleared", s.PipesCleared),
		slog.Int("elite", s.Elite),
		slog.Int("survivors", s.Survivors),
		slog.Int("offspring", s.Offspring),
		slog.Float64("weight_std", s.WeightStd),
		slog.Float64("best_ever", s.BestEver),
		slog.Int("stagnant", s.Stagnant),
	)
}
