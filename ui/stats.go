package ui

import (
	"fmt"

	"github.com/pthm-cable/flappy/telemetry"
)

// StatsPanelWidth is the width of the generation stats panel.
const StatsPanelWidth int32 = 260

func statsOf(data any) telemetry.GenerationStats {
	s, _ := data.(telemetry.GenerationStats)
	return s
}

// GenerationSections describes the stats panel layout for a
// telemetry.GenerationStats value.
func GenerationSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "fitness",
			Title: "Last Generation",
			Fields: []FieldDescriptor{
				{ID: "generation", Label: "Generation", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(statsOf(d).Generation) }},
				{ID: "best", Label: "Best", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return float32(statsOf(d).BestFitness) }},
				{ID: "mean", Label: "Mean", Widget: WidgetText,
					TextGetter: func(d any) string {
						s := statsOf(d)
						return fmt.Sprintf("%.1f (sd %.1f)", s.MeanFitness, s.StdFitness)
					}},
				{ID: "p10_p90", Label: "P10 / P90", Widget: WidgetText,
					TextGetter: func(d any) string {
						s := statsOf(d)
						return fmt.Sprintf("%.1f / %.1f", s.P10Fitness, s.P90Fitness)
					}},
				{ID: "pipes", Label: "Pipes", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(statsOf(d).PipesCleared) }},
			},
		},
		{
			ID:    "deaths",
			Title: "Deaths",
			Fields: []FieldDescriptor{
				{ID: "pipe_share", Label: "Pipe share", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(d any) float32 {
						s := statsOf(d)
						if s.Birds == 0 {
							return 0
						}
						return float32(s.PipeDeaths) / float32(s.Birds)
					}},
				{ID: "lived", Label: "Mean lived", Widget: WidgetText,
					TextGetter: func(d any) string { return fmt.Sprintf("%.1fs", statsOf(d).MeanLivedMs/1000) }},
			},
		},
		{
			ID:    "progress",
			Title: "Progress",
			Fields: []FieldDescriptor{
				{ID: "best_ever", Label: "Best ever", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return float32(statsOf(d).BestEver) }},
				{ID: "stagnant", Label: "Stagnant", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(statsOf(d).Stagnant) }},
				{ID: "diversity", Label: "Weight std", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(d any) float32 { return float32(statsOf(d).WeightStd) }},
				{ID: "split", Label: "E / S / O", Widget: WidgetText,
					TextGetter: func(d any) string {
						s := statsOf(d)
						return fmt.Sprintf("%d / %d / %d", s.Elite, s.Survivors, s.Offspring)
					}},
			},
		},
	}
}

// StatsPanel renders the most recent generation's statistics.
type StatsPanel struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
}

// NewStatsPanel creates a stats panel at the given position.
func NewStatsPanel(x, y int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		sections: GenerationSections(),
		x:        x,
		y:        y,
	}
}

// Draw renders the panel for s.
func (p *StatsPanel) Draw(s telemetry.GenerationStats) {
	r := p.renderer
	padding := r.Theme.Padding

	lines := int32(0)
	for _, sd := range p.sections {
		lines += int32(len(sd.Fields)) + 1
	}
	height := lines*(r.Theme.LineHeight+2) + padding*2 + int32(len(p.sections))*4

	r.DrawPanel(p.x, p.y, StatsPanelWidth, height)

	y := p.y + padding
	for _, sd := range p.sections {
		y = r.DrawSection(p.x+padding, y, sd, s, StatsPanelWidth-padding*2)
	}
}
