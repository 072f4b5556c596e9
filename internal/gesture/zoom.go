package gesture

import "math"

const (
	MinScale = 1.0
	MaxScale = 4.0
	// scales at or below this snap back to 1 when the fingers lift
	resetEpsilon = 1.05
)

// Zoom is the lightbox transform: a scale and a translation.
type Zoom struct {
	Scale    float64 `json:"scale"`
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Dragging bool    `json:"dragging"`

	baseScale float64
	startDist float64
	anchor    Point
}

func NewZoom() *Zoom {
	z := &Zoom{}
	z.Reset()
	return z
}

// Reset returns to the unzoomed, centred state (opening a new image).
func (z *Zoom) Reset() {
	*z = Zoom{Scale: MinScale, baseScale: MinScale}
}

// Start begins a gesture. Two touches record the pinch baseline; one touch
// starts a drag anchored so the image does not jump.
func (z *Zoom) Start(touches []Point) {
	switch len(touches) {
	case 2:
		z.startDist = distance(touches[0], touches[1])
		z.baseScale = z.Scale
		z.Dragging = false
	case 1:
		z.Dragging = true
		z.anchor = Point{X: touches[0].X - z.OffsetX, Y: touches[0].Y - z.OffsetY}
	}
}

// Move updates scale (two touches) or translation (one touch while dragging).
func (z *Zoom) Move(touches []Point) {
	switch len(touches) {
	case 2:
		scale := z.baseScale
		if z.startDist > 0 {
			scale = z.baseScale * (distance(touches[0], touches[1]) / z.startDist)
		}
		z.Scale = clampScale(scale)
	case 1:
		if z.Dragging {
			z.OffsetX = touches[0].X - z.anchor.X
			z.OffsetY = touches[0].Y - z.anchor.Y
		}
	}
}

// End finishes the gesture; back at (about) 1x the translation resets.
func (z *Zoom) End() {
	z.Dragging = false
	if z.Scale <= resetEpsilon {
		z.Scale = MinScale
		z.OffsetX, z.OffsetY = 0, 0
	}
	z.baseScale = z.Scale
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return MinScale
	}
	return math.Min(math.Max(s, MinScale), MaxScale)
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
