package pipes

import (
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flappy/config"
)

// Segment tags a pipe entity with its role and pair.
type Segment struct {
	Kind Kind
	Pair uint32
}

// Course generates pipe pairs, scrolls them left and removes them once
// they leave the screen. Each pipe is one entity carrying a Segment and a Rect.
type Course struct {
	cfg *config.Config
	rng *rand.Rand

	world  *ecs.World
	mapper *ecs.Map2[Segment, Rect]
	filter *ecs.Filter2[Segment, Rect]

	nextPair uint32
	cleared  int
	count    int
}

// NewCourse creates a course with its first pair already placed.
func NewCourse(cfg *config.Config, rng *rand.Rand) *Course {
	world := ecs.NewWorld()
	c := &Course{
		cfg:    cfg,
		rng:    rng,
		world:  world,
		mapper: ecs.NewMap2[Segment, Rect](world),
		filter: ecs.NewFilter2[Segment, Rect](world),
	}
	c.spawnPair(cfg.Pipes.FirstX)
	return c
}

// spawnPair adds an upper and a lower pipe with left edge x and a random gap.
func (c *Course) spawnPair(x float64) {
	p := c.cfg.Pipes
	h := c.cfg.Screen.Height
	gapTop := p.Min + c.rng.Float64()*(p.Max-p.GapSize-p.Min)

	pair := c.nextPair
	c.nextPair++

	// Both pipes reach a full screen height beyond the gap so nothing slips past them.
	upper := Rect{Left: x, Right: x + p.Width, Top: gapTop - h, Bottom: gapTop}
	lower := Rect{Left: x, Right: x + p.Width, Top: gapTop + p.GapSize, Bottom: gapTop + p.GapSize + h}

	c.mapper.NewEntity(&Segment{Kind: Upper, Pair: pair}, &upper)
	c.mapper.NewEntity(&Segment{Kind: Lower, Pair: pair}, &lower)
	c.count += 2
}

// Update scrolls every pipe left by speed*dt, drops pipes that left the
// screen and spawns a new pair when the newest one has moved far enough.
func (c *Course) Update(dt float64) {
	dx := c.cfg.Pipes.Speed * dt
	birdX := c.cfg.Bird.StartX
	newestRight := -1.0

	var toRemove []ecs.Entity
	query := c.filter.Query()
	for query.Next() {
		seg, rect := query.Get()

		before := rect.Right
		rect.Left -= dx
		rect.Right -= dx

		if seg.Kind == Upper && before >= birdX && rect.Right < birdX {
			c.cleared++
		}
		if rect.Right < 0 {
			toRemove = append(toRemove, query.Entity())
			continue
		}
		if rect.Right > newestRight {
			newestRight = rect.Right
		}
	}

	// Remove after the query is closed
	for _, e := range toRemove {
		c.world.RemoveEntity(e)
		c.count--
	}

	if c.count == 0 || newestRight < c.cfg.Pipes.StartX-c.cfg.Pipes.AddGap {
		c.spawnPair(c.cfg.Pipes.StartX)
	}
}

// Pipes returns a snapshot of all pipes ordered by pair, upper before lower.
func (c *Course) Pipes() []Pipe {
	out := make([]Pipe, 0, c.count)
	query := c.filter.Query()
	for query.Next() {
		seg, rect := query.Get()
		out = append(out, Pipe{Kind: seg.Kind, Pair: seg.Pair, Rect: *rect})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pair != out[j].Pair {
			return out[i].Pair < out[j].Pair
		}
		return out[i].Kind > out[j].Kind
	})
	return out
}

// Cleared returns how many pairs have passed the bird column since the last reset.
func (c *Course) Cleared() int {
	return c.cleared
}

// Len returns the number of pipes on the course.
func (c *Course) Len() int {
	return c.count
}

// Reset removes every pipe and places a fresh first pair.
func (c *Course) Reset() {
	var all []ecs.Entity
	query := c.filter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		c.world.RemoveEntity(e)
	}

	c.count = 0
	c.cleared = 0
	c.nextPair = 0
	c.spawnPair(c.cfg.Pipes.FirstX)
}
