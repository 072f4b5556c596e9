// Package gesture recognises the two touch interactions of the app: a
// horizontal swipe that moves between view tabs, and pinch-zoom / pan on an
// enlarged image.
package gesture

import "math"

// Point is a touch position in client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SwipeConfig holds the classification limits. The front-ends shipped with
// slightly different numbers; DefaultSwipe matches the newest one.
type SwipeConfig struct {
	Threshold     float64 // minimum horizontal travel
	VerticalLimit float64 // maximum vertical travel
	Ratio         float64 // horizontal must exceed vertical by this factor
}

var DefaultSwipe = SwipeConfig{Threshold: 75, VerticalLimit: 35, Ratio: 3}

// Direction is the tab step a swipe asks for: +1 next, -1 previous, 0 none.
type Direction int

const (
	None     Direction = 0
	Next     Direction = 1
	Previous Direction = -1
)

// Classify decides whether a gesture from start to end is a tab swipe.
// Moving the finger left (start.X > end.X) asks for the next tab.
func (c SwipeConfig) Classify(start, end Point) Direction {
	dx := start.X - end.X
	dy := start.Y - end.Y
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax <= c.Threshold || ay >= c.VerticalLimit || ax <= ay*c.Ratio {
		return None
	}
	if dx > 0 {
		return Next
	}
	return Previous
}

// Step applies d to index current in a list of n tabs, clamped at both ends.
func Step(current, n int, d Direction) int {
	target := current + int(d)
	if target < 0 || target >= n {
		return current
	}
	return target
}
