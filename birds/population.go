package birds

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/pipes"
)

var (
	// ErrExhausted is returned by Tick once every bird is dead and Evolve has not run.
	ErrExhausted = errors.New("birds: population exhausted, evolve before ticking")
	// ErrNotExhausted is returned by Evolve while birds are still alive.
	ErrNotExhausted = errors.New("birds: population still has live birds")
)

// Population is a fixed number of bird slots. Slots are replaced wholesale
// at each generation boundary; callers address birds by index.
//
// A generation runs while Tick reports live birds. Once it reports zero,
// the caller must run Evolve before ticking again.
type Population struct {
	cfg config.Config
	rng *rand.Rand

	birds      []*Bird
	alive      int
	generation int
}

// NewPopulation validates cfg and creates a generation of random birds.
// All randomness for the run is drawn from rng.
func NewPopulation(cfg config.Config, rng *rand.Rand) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Population{cfg: cfg, rng: rng}
	p.birds = make([]*Bird, cfg.Evolution.Population)
	for i := range p.birds {
		b, err := newBird(&p.cfg, rng)
		if err != nil {
			return nil, fmt.Errorf("creating bird %d: %w", i, err)
		}
		p.birds[i] = b
	}
	p.alive = len(p.birds)
	return p, nil
}

// Config returns the configuration the population was built with.
func (p *Population) Config() *config.Config {
	return &p.cfg
}

// Len returns the number of slots.
func (p *Population) Len() int {
	return len(p.birds)
}

// Bird returns the bird in slot i of the current generation.
// The pointer is only valid until the next Evolve.
func (p *Population) Bird(i int) *Bird {
	return p.birds[i]
}

// Alive returns the number of live birds after the last Tick.
func (p *Population) Alive() int {
	return p.alive
}

// Generation returns how many generations have been evolved.
func (p *Population) Generation() int {
	return p.generation
}

// Exhausted reports whether every bird is dead.
func (p *Population) Exhausted() bool {
	return p.alive == 0
}

// Tick advances every live bird by dt in slot order and returns how many
// are still alive.
func (p *Population) Tick(dt float64, obstacles []pipes.Pipe) (int, error) {
	if p.alive == 0 {
		return 0, ErrExhausted
	}

	alive := 0
	for _, b := range p.birds {
		b.Tick(dt, obstacles)
		if b.alive {
			alive++
		}
	}
	p.alive = alive
	return alive, nil
}
