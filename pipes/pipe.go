// Package pipes describes the obstacles birds fly through and provides
// the course that generates and moves them.
package pipes

// Kind tells which half of a gap pair a pipe is.
type Kind uint8

const (
	Lower Kind = iota
	Upper
)

func (k Kind) String() string {
	if k == Upper {
		return "upper"
	}
	return "lower"
}

// Rect is an axis-aligned rectangle in screen coordinates (y grows downward).
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromCenter builds a rectangle of the given size around (cx, cy).
func RectFromCenter(cx, cy, w, h float64) Rect {
	return Rect{Left: cx - w/2, Top: cy - h/2, Right: cx + w/2, Bottom: cy + h/2}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Overlaps reports whether the rectangles share a region of positive area.
// Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Pipe is one obstacle as seen by a bird. Pair links the two halves of a gap.
type Pipe struct {
	Kind Kind
	Pair uint32
	Rect Rect
}

// GapCenter returns the vertical middle of the pair's opening for a gap of gapSize.
func (p Pipe) GapCenter(gapSize float64) float64 {
	if p.Kind == Upper {
		return p.Rect.Bottom + gapSize/2
	}
	return p.Rect.Top - gapSize/2
}
