// Package main provides CMA-ES optimization of the evolution
// hyper-parameters: how many birds are kept, how parents mix and how often
// weights are resampled.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flappy/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval                  int     `csv:"eval"`
	Fitness               float64 `csv:"fitness"`
	MeanBest              float64 `csv:"mean_best"`
	EliteFraction         float64 `csv:"elite_fraction"`
	SurvivorFraction      float64 `csv:"survivor_fraction"`
	WeightMutationProb    float64 `csv:"weight_mutation_prob"`
	CrossoverMix          float64 `csv:"crossover_mix"`
	OffspringMutationProb float64 `csv:"offspring_mutation_prob"`
}

func newEvalRecord(eval int, fitness, meanBest float64, values []float64) evalRecord {
	return evalRecord{
		Eval:                  eval,
		Fitness:               fitness,
		MeanBest:              meanBest,
		EliteFraction:         values[0],
		SurvivorFraction:      values[1],
		WeightMutationProb:    values[2],
		CrossoverMix:          values[3],
		OffspringMutationProb: values[4],
	}
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 30, "Generations per run")
	maxSteps := flag.Int64("max-steps", 200000, "Step cap per run")
	tail := flag.Int("tail", 5, "Score the best fitness of the last N generations")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Per-generation records from the runs would drown the progress output.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *generations, *maxSteps, *tail, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	tr := &tuner{
		params:    params,
		evaluator: evaluator,
		logFile:   logFile,
		maxEvals:  *maxEvals,
		best:      math.Inf(1),
		start:     time.Now(),
	}
	problem := optimize.Problem{Func: tr.evaluate}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d\n", *seeds, *generations)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	bestParams := tr.bestParams
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", tr.evals, formatDuration(time.Since(tr.start)))
	fmt.Printf("Best mean fitness: %.1f\n", -tr.best)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

// tuner wraps the evaluator for CMA-ES: it clamps candidates, tracks the
// best one and logs every evaluation.
type tuner struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	logFile   *os.File
	maxEvals  int

	evals      int
	best       float64
	bestParams []float64
	start      time.Time
}

// evaluate scores a normalized candidate x.
func (t *tuner) evaluate(x []float64) float64 {
	clamped := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(clamped)
	t.evals++

	if fitness < t.best {
		t.best = fitness
		t.bestParams = clamped
	}

	meanBest := math.NaN()
	if !math.IsInf(fitness, 1) {
		meanBest = t.evaluator.LastBest()
	}
	t.log(newEvalRecord(t.evals, fitness, meanBest, clamped))

	elapsed := time.Since(t.start)
	remaining := time.Duration(t.maxEvals-t.evals) * (elapsed / time.Duration(t.evals))
	fmt.Printf("Eval %d/%d: mean_best=%.1f (best=%.1f) | elapsed: %s, ETA: %s\n",
		t.evals, t.maxEvals, meanBest, -t.best,
		formatDuration(elapsed), formatDuration(remaining))

	return fitness
}

func (t *tuner) log(rec evalRecord) {
	records := []evalRecord{rec}
	var err error
	if t.evals == 1 {
		err = gocsv.Marshal(records, t.logFile)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, t.logFile)
	}
	if err != nil {
		log.Printf("failed to log evaluation %d: %v", rec.Eval, err)
	}
}
