package viewport

import (
	"math"
	"time"
)

// Zoom tuning. These are fixed; the viewer does not expose them.
const (
	ZoomInFactor    = 1.1
	ZoomOutFactor   = 1 / ZoomInFactor
	ZoomDecayPeriod = 100 * time.Millisecond
	ZoomEpsilon     = 0.001
)

// ZoomDirection is the direction of a single wheel notch.
type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

// DirectionFromDelta maps a vertical wheel delta to a direction. Negative
// deltas (wheel pushed away from the user) zoom in.
func DirectionFromDelta(deltaY float64) ZoomDirection {
	if deltaY < 0 {
		return ZoomIn
	}
	return ZoomOut
}

// Factor returns the multiplicative zoom of one notch.
func (d ZoomDirection) Factor() float64 {
	if d == ZoomIn {
		return ZoomInFactor
	}
	return ZoomOutFactor
}

func (d ZoomDirection) String() string {
	switch d {
	case ZoomIn:
		return "in"
	case ZoomOut:
		return "out"
	default:
		return "unknown"
	}
}

// ZoomState tracks the zoom that wheel input asked for but that has not been
// applied yet. RemainingFactor decays toward 1 as ticks apply it.
type ZoomState struct {
	InProgress      bool
	RemainingFactor float64
	LastUpdateMs    int64
	Epsilon         float64
}

// NewZoomState returns an idle zoom state.
func NewZoomState() ZoomState {
	return ZoomState{RemainingFactor: 1, Epsilon: ZoomEpsilon}
}

// Impulse folds one wheel notch into the outstanding factor. It returns true
// when the animation was idle and the caller must schedule the first tick.
func (z *ZoomState) Impulse(d ZoomDirection, nowMs int64) bool {
	z.RemainingFactor *= d.Factor()
	if z.InProgress {
		return false
	}
	z.LastUpdateMs = nowMs
	z.InProgress = true
	return true
}

// Tick advances the animation to nowMs. It returns the factor to apply for
// this frame and, when the animation has converged, a final correction
// factor; correction is 1 otherwise. done reports that no further tick is
// needed.
//
// The applied step is remaining^(elapsed/ZoomDecayPeriod), so the speed of
// the ease depends on wall-clock time rather than frame rate. The exponent
// is capped at 1: a stalled frame applies everything that is left instead of
// overshooting.
func (z *ZoomState) Tick(nowMs int64) (step, correction float64, done bool) {
	elapsed := nowMs - z.LastUpdateMs
	if elapsed < 0 {
		elapsed = 0
	}
	z.LastUpdateMs = nowMs

	exponent := math.Min(1, float64(elapsed)/float64(ZoomDecayPeriod.Milliseconds()))
	step = math.Pow(z.RemainingFactor, exponent)
	z.RemainingFactor /= step

	if math.Abs(z.RemainingFactor-1) < z.Epsilon {
		correction = z.RemainingFactor
		z.Reset()
		return step, correction, true
	}
	return step, 1, false
}

// Cancel drops the outstanding factor but leaves the animation marked in
// progress, so an already scheduled tick still runs and settles at once.
func (z *ZoomState) Cancel() {
	z.RemainingFactor = 1
}

// Reset drops any outstanding zoom and marks the animation idle.
func (z *ZoomState) Reset() {
	z.RemainingFactor = 1
	z.InProgress = false
}
