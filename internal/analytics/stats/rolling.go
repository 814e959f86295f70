package stats

import (
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/window"
)

const (
	// autoWindowDivisor sets the auto window to about 1% of the input on each side
	autoWindowDivisor = 100
	// MinAutoWindow is the smallest auto window, in points on each side
	MinAutoWindow = 3
)

// AutoWindow returns the rolling half-width for n points: proportional to n
// with a floor of MinAutoWindow, and never wider than the data so that a
// small selection keeps its shape.
func AutoWindow(n int) int {
	w := n / autoWindowDivisor
	if w < MinAutoWindow {
		w = MinAutoWindow
	}
	if limit := (n - 1) / 2; w > limit {
		w = limit
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Rolling returns centered rolling moments aligned index for index with
// points. half is the number of neighbours on each side; half <= 0 selects
// AutoWindow(len(points)).
func Rolling(points analytics.Points, half int) []window.Moments {
	if half <= 0 {
		half = AutoWindow(len(points))
	}
	return window.Centered(points.Values(), half)
}
