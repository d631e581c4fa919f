package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/telemetry"
)

// FitnessEvaluator runs headless evolutions and scores parameter vectors.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	maxSteps    int64
	tail        int
	seeds       []int64
	baseConfig  config.Config

	mu       sync.Mutex
	lastBest float64 // mean best fitness from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Each run evolves for
// generations generations or maxSteps steps, whichever comes first, and is
// scored on the best fitness of its last tail generations.
func NewFitnessEvaluator(params *ParamVector, generations int, maxSteps int64, tail int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		maxSteps:    maxSteps,
		tail:        max(tail, 1),
		seeds:       seeds,
		baseConfig:  *baseCfg,
	}
}

// LastBest returns the mean tail best fitness from the most recent evaluation.
func (fe *FitnessEvaluator) LastBest() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBest
}

// runResult holds the outcome of one seeded run.
type runResult struct {
	bests []float64 // best fitness per finished generation, plus a partial one if capped
	err   error
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// negated mean over seeds of the tail best fitness. Candidates that make an
// invalid config score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	if err := cfg.Validate(); err != nil {
		return math.Inf(1)
	}

	// Run all seeds in parallel; every run owns its game and config copy.
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		if r.err != nil || len(r.bests) == 0 {
			return math.Inf(1)
		}
		total += tailMean(r.bests, fe.tail)
	}
	meanBest := total / float64(len(results))

	fe.mu.Lock()
	fe.lastBest = meanBest
	fe.mu.Unlock()

	return -meanBest
}

// runSimulation evolves one population headless.
func (fe *FitnessEvaluator) runSimulation(cfg config.Config, seed int64) runResult {
	var res runResult

	g, err := game.NewGameWithOptions(&cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 100,
		MaxGenerations: fe.generations,
		StatsCallback: func(s telemetry.GenerationStats) {
			res.bests = append(res.bests, s.BestFitness)
		},
	})
	if err != nil {
		res.err = err
		return res
	}
	defer g.Close()

	for !g.Done() && g.Tick() < fe.maxSteps {
		if err := g.UpdateHeadless(); err != nil {
			res.err = err
			return res
		}
	}

	// A capped run still has a generation in the air; score its leader.
	if !g.Done() {
		res.bests = append(res.bests, partialBest(g))
	}
	return res
}

// partialBest returns the best fitness the running generation would get if
// it ended now.
func partialBest(g *game.Game) float64 {
	pop := g.Population()
	speed := pop.Config().Evolution.ForwardSpeed
	best := math.Inf(-1)
	for i := 0; i < pop.Len(); i++ {
		b := pop.Bird(i)
		best = max(best, b.Fitness()+b.Lived()*speed)
	}
	return best
}

// tailMean averages the last n values.
func tailMean(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
