package viewport

import (
	"io"
	"time"

	"annotation-browser/pkg/geometry"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
)

// Controller owns the transform of one mounted viewer and drives it from
// wheel and pointer input. It is not safe for concurrent use; see the
// package documentation.
type Controller struct {
	imageSize    geometry.Size
	viewportSize geometry.Size

	transform Transform
	zoom      ZoomState
	pan       PanState
	cursor    r2.Vec

	scheduler FrameScheduler
	clock     Clock
	logger    *log.Logger
	onChange  func(Transform)

	alive bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used by the zoom animation.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithOnChange registers a callback invoked after every committed transform.
func WithOnChange(fn func(Transform)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController creates a controller for an image shown in a viewport of the
// given size. It fails with ErrInvalidGeometry if either size is degenerate.
func NewController(imageSize, viewportSize geometry.Size, scheduler FrameScheduler, opts ...Option) (*Controller, error) {
	if err := CheckGeometry(imageSize, viewportSize); err != nil {
		return nil, err
	}

	c := &Controller{
		imageSize:    imageSize,
		viewportSize: viewportSize,
		zoom:         NewZoomState(),
		scheduler:    scheduler,
		clock:        time.Now,
		logger:       log.New(io.Discard),
		alive:        true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transform = sanitize(Identity(), imageSize, viewportSize)
	return c, nil
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	return c.transform
}

// Zoom returns a copy of the zoom animation state.
func (c *Controller) Zoom() ZoomState {
	return c.zoom
}

// Pan returns a copy of the drag state.
func (c *Controller) Pan() PanState {
	return c.pan
}

// ViewportSize returns the size of the drawing surface.
func (c *Controller) ViewportSize() geometry.Size {
	return c.viewportSize
}

// Wheel handles one wheel notch at cursor. deltaY < 0 zooms in.
func (c *Controller) Wheel(deltaY float64, cursor r2.Vec) {
	if !c.alive {
		return
	}
	c.cursor = cursor

	dir := DirectionFromDelta(deltaY)
	if c.zoom.Impulse(dir, c.nowMs()) {
		c.logger.Debug("zoom started", "direction", dir, "cursor", cursor)
		c.scheduler.RequestFrame(c.zoomTick)
	}
}

// PointerDown starts a drag at cursor.
func (c *Controller) PointerDown(cursor r2.Vec) {
	if !c.alive {
		return
	}
	c.cursor = cursor
	c.pan.Press(cursor)
}

// PointerMove records the pointer position. While dragging it schedules a
// pan frame unless one is already pending.
func (c *Controller) PointerMove(cursor r2.Vec) {
	if !c.alive {
		return
	}
	c.cursor = cursor
	if c.pan.Motion() {
		c.scheduler.RequestFrame(c.panFrame)
	}
}

// PointerUp ends a drag at cursor.
func (c *Controller) PointerUp(cursor r2.Vec) {
	if !c.alive {
		return
	}
	c.cursor = cursor
	c.pan.Release(cursor)
}

// Resize changes the viewport size and re-sanitizes the current transform.
func (c *Controller) Resize(viewportSize geometry.Size) error {
	if err := CheckGeometry(c.imageSize, viewportSize); err != nil {
		return err
	}
	if !c.alive || viewportSize == c.viewportSize {
		return nil
	}
	c.viewportSize = viewportSize
	c.commit(c.transform)
	return nil
}

// Reset cancels any zoom animation and returns to the fitted identity view.
func (c *Controller) Reset() {
	if !c.alive {
		return
	}
	c.zoom.Cancel()
	c.commit(Identity())
}

// Destroy tears the controller down. Pending frame callbacks become no-ops
// and later input is ignored.
func (c *Controller) Destroy() {
	if !c.alive {
		return
	}
	c.alive = false
	c.zoom.Reset()
	c.pan.Release(c.cursor)
	c.logger.Debug("viewport destroyed")
}

func (c *Controller) zoomTick() {
	if !c.alive {
		return
	}

	step, correction, done := c.zoom.Tick(c.nowMs())
	c.applyZoom(step)
	if done {
		c.applyZoom(correction)
		c.logger.Debug("zoom settled", "transform", c.transform)
		return
	}
	c.scheduler.RequestFrame(c.zoomTick)
}

func (c *Controller) applyZoom(f float64) {
	c.commit(c.transform.ZoomAt(f, c.cursor))
}

func (c *Controller) panFrame() {
	if !c.alive {
		return
	}
	delta, ok := c.pan.Frame(c.cursor)
	if !ok {
		return
	}
	c.commit(c.transform.Translate(delta))
}

func (c *Controller) commit(candidate Transform) {
	c.transform = sanitize(candidate, c.imageSize, c.viewportSize)
	if c.onChange != nil {
		c.onChange(c.transform)
	}
}

func (c *Controller) nowMs() int64 {
	return c.clock().UnixMilli()
}
