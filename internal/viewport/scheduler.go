package viewport

import "time"

// FrameScheduler runs fn once on the next animation frame, on the goroutine
// that owns the Controller.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// FrameFunc adapts a function to FrameScheduler.
type FrameFunc func(fn func())

// RequestFrame calls f(fn).
func (f FrameFunc) RequestFrame(fn func()) {
	f(fn)
}

// Clock returns the current time. Only differences between readings matter.
type Clock func() time.Time
