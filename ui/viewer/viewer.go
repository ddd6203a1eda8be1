// Package viewer provides the pan and zoom widget that displays one annotated
// library entry.
package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"annotation-browser/internal/frameloop"
	"annotation-browser/internal/library"
	"annotation-browser/internal/logging"
	"annotation-browser/internal/render"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/colorutil"
	"annotation-browser/pkg/geometry"
)

// Viewer displays an entry and lets the user zoom with the wheel and pan by
// dragging. Input is forwarded to a viewport.Controller running on the
// viewer's frame loop; the raster reads the last published transform.
type Viewer struct {
	widget.BaseWidget

	logger *log.Logger
	loop   *frameloop.Loop
	opts   []render.Option
	bg     color.RGBA
	raster *fynecanvas.Raster

	// Published for the raster callback.
	mu        sync.Mutex
	renderer  *render.Renderer
	transform viewport.Transform
	dirty     atomic.Bool

	// Loop goroutine only.
	ctrl     *viewport.Controller
	pending  *render.Renderer
	viewSize geometry.Size
	lastDrag r2.Vec

	onTransform func(viewport.Transform, geometry.Rect)
}

var (
	_ fyne.Widget       = (*Viewer)(nil)
	_ fyne.Scrollable   = (*Viewer)(nil)
	_ fyne.Draggable    = (*Viewer)(nil)
	_ desktop.Mouseable = (*Viewer)(nil)
	_ desktop.Hoverable = (*Viewer)(nil)
)

// New creates a viewer whose animations tick fps times per second.
func New(fps int, logger *log.Logger, opts ...render.Option) *Viewer {
	o := render.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	v := &Viewer{
		logger:    logging.Component(logger, "viewer"),
		opts:      opts,
		bg:        o.Background,
		transform: viewport.Identity(),
	}
	v.loop = frameloop.New(fps, logger)
	v.loop.OnFrame(v.flush)
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.ExtendBaseWidget(v)
	v.loop.Start()
	return v
}

// OnTransform sets a callback invoked with every committed transform and the
// image region it shows. The region is empty while nothing is mounted. It runs
// on the frame loop goroutine. Set it before mounting an entry.
func (v *Viewer) OnTransform(fn func(viewport.Transform, geometry.Rect)) {
	v.onTransform = fn
}

// SetEntry mounts entry, replacing the current one. Box colors are resolved
// from colors now; later assignments do not affect this entry.
func (v *Viewer) SetEntry(entry *library.Entry, colors *colorutil.CategoryColors) {
	r := render.NewRenderer(entry, colors, v.opts...)
	v.logger.Debug("mount", "library", entry.Library, "key", entry.Key, "size", r.Size())
	v.post(func() { v.mount(r) })
}

// Unmount removes the current entry.
func (v *Viewer) Unmount() {
	v.post(func() { v.mount(nil) })
}

// Reset returns to the fitted, unzoomed view.
func (v *Viewer) Reset() {
	v.post(func() {
		if v.ctrl != nil {
			v.ctrl.Reset()
		}
	})
}

// Transform returns the last published transform.
func (v *Viewer) Transform() viewport.Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transform
}

// Close stops the frame loop and tears down the controller.
func (v *Viewer) Close() {
	v.loop.Stop()
	v.logger.Debug("closed", "frames", v.loop.Frames())
	// The loop goroutine has exited, so its state is ours now.
	if v.ctrl != nil {
		v.ctrl.Destroy()
		v.ctrl = nil
	}
}

// CreateRenderer implements fyne.Widget.
func (v *Viewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize implements fyne.CanvasObject.
func (v *Viewer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

// Resize keeps the controller's viewport in step with the widget.
func (v *Viewer) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	vs := geometry.NewSize(float64(size.Width), float64(size.Height))
	v.post(func() {
		v.viewSize = vs
		if v.ctrl == nil {
			if v.pending != nil {
				v.mount(v.pending)
			}
			return
		}
		if err := v.ctrl.Resize(vs); err != nil {
			v.logger.Debug("ignoring resize", "err", err, "keeping", v.ctrl.ViewportSize())
		}
	})
}

// Scrolled implements fyne.Scrollable. Fyne reports wheel-up as positive DY.
func (v *Viewer) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	dy := -float64(ev.Scrolled.DY)
	cursor := toVec(ev.Position)
	v.post(func() {
		if v.ctrl != nil {
			v.ctrl.Wheel(dy, cursor)
		}
	})
}

// MouseDown implements desktop.Mouseable.
func (v *Viewer) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	cursor := toVec(ev.Position)
	v.post(func() {
		v.lastDrag = cursor
		if v.ctrl != nil {
			v.ctrl.PointerDown(cursor)
		}
	})
}

// MouseUp implements desktop.Mouseable.
func (v *Viewer) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.release(toVec(ev.Position))
}

// MouseIn implements desktop.Hoverable.
func (v *Viewer) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (v *Viewer) MouseMoved(ev *desktop.MouseEvent) {
	v.move(toVec(ev.Position))
}

// MouseOut implements desktop.Hoverable.
func (v *Viewer) MouseOut() {}

// Dragged implements fyne.Draggable. Fyne delivers drags here instead of
// MouseMoved while a button is held.
func (v *Viewer) Dragged(ev *fyne.DragEvent) {
	v.move(toVec(ev.Position))
}

// DragEnd implements fyne.Draggable.
func (v *Viewer) DragEnd() {
	v.post(func() {
		if v.ctrl != nil {
			v.ctrl.PointerUp(v.lastDrag)
		}
	})
}

func (v *Viewer) move(cursor r2.Vec) {
	v.post(func() {
		v.lastDrag = cursor
		if v.ctrl != nil {
			v.ctrl.PointerMove(cursor)
		}
	})
}

func (v *Viewer) release(cursor r2.Vec) {
	v.post(func() {
		v.lastDrag = cursor
		if v.ctrl != nil {
			v.ctrl.PointerUp(cursor)
		}
	})
}

// post runs fn on the loop and refreshes the raster if fn committed.
func (v *Viewer) post(fn func()) {
	v.loop.Post(func() {
		fn()
		v.flush()
	})
}

// mount replaces the controller. Runs on the loop goroutine. Without a usable
// viewport size the renderer waits in pending until the first Resize.
func (v *Viewer) mount(r *render.Renderer) {
	if v.ctrl != nil {
		v.ctrl.Destroy()
		v.ctrl = nil
	}
	v.pending = nil

	if r == nil {
		v.publish(nil, viewport.Identity())
		return
	}

	ctrl, err := viewport.NewController(r.Size(), v.viewSize, v.loop,
		viewport.WithLogger(v.logger),
		viewport.WithOnChange(func(t viewport.Transform) { v.publish(r, t) }),
	)
	if err != nil {
		v.logger.Debug("deferring mount", "err", err)
		v.pending = r
		v.publish(nil, viewport.Identity())
		return
	}
	v.ctrl = ctrl
	v.publish(r, ctrl.Transform())
}

func (v *Viewer) publish(r *render.Renderer, t viewport.Transform) {
	v.mu.Lock()
	v.renderer = r
	v.transform = t
	v.mu.Unlock()
	v.dirty.Store(true)

	if v.onTransform != nil {
		var visible geometry.Rect
		if r != nil {
			visible = t.VisibleRect(v.viewSize)
		}
		v.onTransform(t, visible)
	}
}

func (v *Viewer) flush() {
	if v.dirty.Swap(false) {
		v.raster.Refresh()
	}
}

// draw is the raster callback. w and h are in device pixels while the
// transform is in widget units.
func (v *Viewer) draw(w, h int) image.Image {
	v.mu.Lock()
	r, t := v.renderer, v.transform
	v.mu.Unlock()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if r == nil {
		draw.Draw(dst, dst.Bounds(), &image.Uniform{C: v.bg}, image.Point{}, draw.Src)
		return dst
	}

	ratio := 1.0
	if size := v.Size(); size.Width > 0 {
		ratio = float64(w) / float64(size.Width)
	}
	r.Render(dst, t.Scaled(ratio))
	return dst
}

func toVec(p fyne.Position) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}
