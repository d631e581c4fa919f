package birds

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
)

// Composition is how the slots of a new generation were filled.
type Composition struct {
	Elite     int
	Survivors int
	Offspring int
}

// ExpectedComposition returns the split Evolve produces for cfg:
// floor(N*elite_fraction) elite, floor(N*survivor_fraction) survivors, the rest bred.
func ExpectedComposition(cfg *config.Config) Composition {
	n := cfg.Evolution.Population
	elite := cfg.EliteCount()
	survivors := cfg.SurvivorCount()
	return Composition{Elite: elite, Survivors: survivors, Offspring: n - elite - survivors}
}

// Report summarizes a finished generation.
type Report struct {
	Generation  int       // index of the generation that ended
	Fitness     []float64 // final fitness per bird, best first
	FloorDeaths int
	PipeDeaths  int
	MeanLived   float64 // ms
	Next        Composition
}

// Evolve turns an exhausted generation into the next one:
//
//  1. every bird gains lived*forward_speed fitness
//  2. birds are ranked by fitness, best first, ties keep slot order
//  3. the top floor(N*elite_fraction) are the elite, the others the rest
//  4. every brain in the rest is mutated
//  5. floor(N*survivor_fraction) of the rest are kept, drawn without replacement
//  6. offspring of two distinct elite parents fill the remaining slots;
//     each offspring is mutated once more with offspring_mutation_prob
//  7. all birds are reset and the generation counter advances
//
// New slot order is elite by rank, survivors in draw order, then offspring.
func (p *Population) Evolve() (Report, error) {
	if p.alive > 0 {
		return Report{}, fmt.Errorf("%w: %d alive", ErrNotExhausted, p.alive)
	}

	ev := p.cfg.Evolution
	n := len(p.birds)
	report := Report{Generation: p.generation}

	var livedSum float64
	for _, b := range p.birds {
		b.fitness += b.lived * ev.ForwardSpeed
		livedSum += b.lived
		switch b.cause {
		case CauseFloor:
			report.FloorDeaths++
		case CausePipe:
			report.PipeDeaths++
		}
	}
	report.MeanLived = livedSum / float64(n)

	ranked := make([]*Bird, n)
	copy(ranked, p.birds)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness > ranked[j].fitness
	})
	report.Fitness = make([]float64, n)
	for i, b := range ranked {
		report.Fitness[i] = b.fitness
	}

	comp := ExpectedComposition(&p.cfg)
	elite, rest := ranked[:comp.Elite], ranked[comp.Elite:]

	for _, b := range rest {
		b.brain.Mutate(p.rng, ev.WeightMutationProb)
	}

	next := make([]*Bird, 0, n)
	for _, b := range elite {
		b.origin = OriginElite
		next = append(next, b)
	}
	for _, idx := range p.rng.Perm(len(rest))[:comp.Survivors] {
		b := rest[idx]
		b.origin = OriginSurvivor
		next = append(next, b)
	}

	for len(next) < n {
		i, j := p.pickParents(len(elite))
		child, err := neural.Crossover(elite[i].brain, elite[j].brain, ev.CrossoverMix, p.rng)
		if err != nil {
			return report, fmt.Errorf("breeding offspring %d: %w", len(next), err)
		}
		if p.rng.Float64() < ev.OffspringMutationProb {
			child.Mutate(p.rng, ev.WeightMutationProb)
		}
		next = append(next, newBirdWithBrain(&p.cfg, child, OriginOffspring))
	}

	for _, b := range next {
		b.Reset()
	}

	p.birds = next
	p.alive = n
	p.generation++
	report.Next = comp
	return report, nil
}

// pickParents draws two distinct indices in [0, n) uniformly without
// replacement. Each call is independent of earlier ones, so an elite bird
// can parent several offspring.
func (p *Population) pickParents(n int) (int, int) {
	i := p.rng.Intn(n)
	j := p.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
