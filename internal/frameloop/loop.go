// Package frameloop runs the single goroutine that owns interactive viewport
// state. Input is posted to it from any goroutine and animation callbacks are
// queued for the next frame tick.
package frameloop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"annotation-browser/internal/logging"
)

// DefaultFrameRate is used when New is given a non-positive rate.
const DefaultFrameRate = 60

const taskBuffer = 64

// Loop is a single event goroutine. Tasks posted with Post run in order on it;
// callbacks registered with RequestFrame run together on the next tick.
type Loop struct {
	interval time.Duration
	logger   *log.Logger

	tasks   chan func()
	pending []func() // loop goroutine only
	onFrame func()

	stopCh   chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	frames atomic.Uint64
}

// New creates a loop ticking fps times per second.
func New(fps int, logger *log.Logger) *Loop {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		logger:   logging.Component(logger, "frameloop"),
		tasks:    make(chan func(), taskBuffer),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnFrame sets a hook run on the loop goroutine after every tick that ran at
// least one frame callback. Set it before Start.
func (l *Loop) OnFrame(fn func()) {
	l.onFrame = fn
}

// Frames counts the ticks that ran callbacks.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Start launches the loop goroutine. Calling it again has no effect.
func (l *Loop) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	l.logger.Debug("starting", "interval", l.interval)
	go l.run()
}

// Stop ends the loop and waits for it. Queued tasks and frame callbacks are
// dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if l.started.Load() {
			<-l.done
		}
		l.logger.Debug("stopped", "frames", l.frames.Load())
	})
}

// Post queues fn to run on the loop goroutine. It reports false when the loop
// has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}
	select {
	case <-l.stopCh:
		return false
	case l.tasks <- fn:
		return true
	}
}

// RequestFrame queues fn for the next tick. It must be called on the loop
// goroutine, which makes Loop a viewport.FrameScheduler.
func (l *Loop) RequestFrame(fn func()) {
	l.pending = append(l.pending, fn)
}

func (l *Loop) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			l.pending = nil
			return
		case fn := <-l.tasks:
			l.safeCall(fn)
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	if len(l.pending) == 0 {
		return
	}
	// Callbacks requested while this frame runs belong to the next one.
	batch := l.pending
	l.pending = nil
	for _, fn := range batch {
		l.safeCall(fn)
	}
	l.frames.Add(1)
	if l.onFrame != nil {
		l.safeCall(l.onFrame)
	}
}

func (l *Loop) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("frame callback panicked", "panic", r)
		}
	}()
	fn()
}
