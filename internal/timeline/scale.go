// Package timeline holds the pure coordinate math that maps timestamps and
// durations onto waterfall pixels. All functions are deterministic and agree
// with each other: Position(start)+BarWidth(d) equals Position(start+d)
// whenever the one-pixel minimum width is not binding.
package timeline

import "math"

// DefaultMsPerPixel is the baseline zoom: ten milliseconds of elapsed time
// rendered per pixel.
const DefaultMsPerPixel = 10.0

// Width returns the horizontal extent needed to render the full time span.
// It is never smaller than the visible container and never smaller than
// span/msPerPixel, so zooming in always grows the timeline and zooming out
// shrinks it until the container width becomes the floor. Zoom-out requests
// are not clamped back up to an auto-fit width.
func Width(containerPx, minTimestamp, maxTimestamp, msPerPixel float64) float64 {
	if msPerPixel <= 0 {
		msPerPixel = DefaultMsPerPixel
	}
	span := maxTimestamp - minTimestamp
	if span < 0 {
		span = 0
	}
	return math.Max(containerPx, span/msPerPixel)
}

// Position returns the pixel offset of an event inside [0, widthPx]. The
// linear interpolation is floored at elapsed/msPerPixel so that at high zoom
// an event is never rendered closer to the origin than its elapsed time
// implies.
func Position(eventTimestamp, minTimestamp, totalDurationMs, widthPx, msPerPixel float64) float64 {
	if msPerPixel <= 0 {
		msPerPixel = DefaultMsPerPixel
	}
	elapsed := eventTimestamp - minTimestamp
	if elapsed <= 0 {
		return 0
	}
	var linear float64
	if totalDurationMs > 0 {
		linear = elapsed / totalDurationMs * widthPx
	}
	return math.Max(linear, elapsed/msPerPixel)
}

// BarWidth returns the pixel width of a duration bar. Every non-zero
// duration renders at least one pixel, and the floor scales with the zoom
// level: halving msPerPixel doubles the minimum width of a given duration.
func BarWidth(durationMs, totalDurationMs, widthPx, msPerPixel float64) float64 {
	if msPerPixel <= 0 {
		msPerPixel = DefaultMsPerPixel
	}
	if durationMs <= 0 {
		return 0
	}
	var linear float64
	if totalDurationMs > 0 {
		linear = durationMs / totalDurationMs * widthPx
	}
	return math.Max(linear, math.Max(1, durationMs/msPerPixel))
}
