package viewer

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotation-browser/internal/library"
	"annotation-browser/internal/render"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/colorutil"
	"annotation-browser/pkg/geometry"
)

const (
	waitFor = 3 * time.Second
	pollAt  = 5 * time.Millisecond
)

func newTestViewer(t *testing.T, opts ...render.Option) *Viewer {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	v := New(120, nil, opts...)
	t.Cleanup(v.Close)
	return v
}

func smallEntry() *library.Entry {
	return &library.Entry{
		Library: "craters",
		Key:     "k",
		Image:   image.NewRGBA(image.Rect(0, 0, 400, 200)),
		Width:   400,
		Height:  200,
		BoundingBoxes: []library.BoundingBox{
			{X0: 10, Y0: 10, X1: 50, Y1: 50, Meta: "user-1"},
		},
	}
}

func scaleIs(v *Viewer, want float64) func() bool {
	return func() bool { return v.Transform().ScaleX == want }
}

func TestMountWaitsForSize(t *testing.T) {
	v := newTestViewer(t)

	v.SetEntry(smallEntry(), colorutil.NewCategoryColors())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, viewport.Identity(), v.Transform())

	// A 400x200 image fills an 800x400 viewport at twice its size.
	v.Resize(fyne.NewSize(800, 400))
	require.Eventually(t, scaleIs(v, 2), waitFor, pollAt)
}

func TestWheelZoomsAroundCursor(t *testing.T) {
	v := newTestViewer(t)
	var commits atomic.Int32
	v.OnTransform(func(viewport.Transform, geometry.Rect) { commits.Add(1) })

	v.Resize(fyne.NewSize(800, 400))
	v.SetEntry(smallEntry(), nil)
	require.Eventually(t, scaleIs(v, 2), waitFor, pollAt)

	v.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 200)},
		Scrolled:   fyne.NewDelta(0, 10),
	})
	require.Eventually(t, func() bool { return round(v.Transform().ScaleX) == 2.2 }, waitFor, pollAt)

	tr := v.Transform()
	assert.InDelta(t, -40, tr.X, 1e-6)
	assert.InDelta(t, -20, tr.Y, 1e-6)
	assert.Greater(t, commits.Load(), int32(2))
}

func TestDragPans(t *testing.T) {
	v := newTestViewer(t)
	v.Resize(fyne.NewSize(800, 400))
	v.SetEntry(smallEntry(), nil)
	require.Eventually(t, scaleIs(v, 2), waitFor, pollAt)

	// Zoom in first so there is room to pan.
	v.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
		Scrolled:   fyne.NewDelta(0, 10),
	})
	require.Eventually(t, func() bool { return round(v.Transform().ScaleX) == 2.2 }, waitFor, pollAt)

	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)}, Button: desktop.MouseButtonPrimary})
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(80, 90)}})
	require.Eventually(t, func() bool { return v.Transform().X == -20 }, waitFor, pollAt)
	assert.Equal(t, -10.0, v.Transform().Y)
	v.DragEnd()
}

func TestUnmountAndDraw(t *testing.T) {
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	v := newTestViewer(t, render.WithBackground(bg))
	v.Resize(fyne.NewSize(800, 400))
	v.SetEntry(smallEntry(), nil)
	require.Eventually(t, scaleIs(v, 2), waitFor, pollAt)

	v.Unmount()
	require.Eventually(t, scaleIs(v, 1), waitFor, pollAt)

	img := v.draw(8, 4).(*image.RGBA)
	assert.Equal(t, bg, img.RGBAAt(7, 3))
}

func TestReportsVisibleRegion(t *testing.T) {
	v := newTestViewer(t)
	var (
		mu      sync.Mutex
		visible geometry.Rect
	)
	v.OnTransform(func(_ viewport.Transform, r geometry.Rect) {
		mu.Lock()
		visible = r
		mu.Unlock()
	})
	visibleIs := func(want geometry.Rect) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return visible == want
		}
	}

	v.Resize(fyne.NewSize(800, 400))
	v.SetEntry(smallEntry(), nil)
	require.Eventually(t, visibleIs(geometry.Rect{Width: 400, Height: 200}), waitFor, pollAt)

	v.Unmount()
	require.Eventually(t, visibleIs(geometry.Rect{}), waitFor, pollAt)
}

func TestResetAfterZoom(t *testing.T) {
	v := newTestViewer(t)
	v.Resize(fyne.NewSize(800, 400))
	v.SetEntry(smallEntry(), nil)
	require.Eventually(t, scaleIs(v, 2), waitFor, pollAt)

	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 10)})
	require.Eventually(t, func() bool { return v.Transform().ScaleX > 2 }, waitFor, pollAt)

	v.Reset()
	require.Eventually(t, func() bool {
		tr := v.Transform()
		return tr.ScaleX == 2 && tr.X == 0 && tr.Y == 0
	}, waitFor, pollAt)
}

func round(f float64) float64 {
	const k = 1e6
	return float64(int64(f*k+0.5)) / k
}
