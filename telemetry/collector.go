package telemetry

import "math"

// Collector tracks progress across generations.
type Collector struct {
	bestEver       float64
	bestGeneration int
	stagnant       int
	generations    int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{bestEver: math.Inf(-1), bestGeneration: -1}
}

// Record folds a finished generation into the running totals and fills
// BestEver and Stagnant on s.
func (c *Collector) Record(s *GenerationStats) {
	c.generations++
	if s.Birds > 0 && s.BestFitness > c.bestEver {
		c.bestEver = s.BestFitness
		c.bestGeneration = s.Generation
		c.stagnant = 0
	} else {
		c.stagnant++
	}
	s.BestEver = c.BestEver()
	s.Stagnant = c.stagnant
}

// BestEver returns the best fitness seen so far, 0 before any generation.
func (c *Collector) BestEver() float64 {
	if c.bestGeneration < 0 {
		return 0
	}
	return c.bestEver
}

// BestGeneration returns the generation that produced BestEver, -1 if none.
func (c *Collector) BestGeneration() int {
	return c.bestGeneration
}

// Stagnant returns how many generations have passed without a new best.
func (c *Collector) Stagnant() int {
	return c.stagnant
}

// Generations returns how many generations were recorded.
func (c *Collector) Generations() int {
	return c.generations
}
