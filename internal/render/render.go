// Package render draws an annotated entry into a viewport-sized raster under a
// pan and zoom transform.
package render

import (
	"image"
	"image/color"

	"annotation-browser/internal/library"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/colorutil"
	"annotation-browser/pkg/geometry"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Defaults for Options.
const (
	DefaultFillAlpha    = 64
	DefaultOutlineWidth = 2.0
)

// Options controls how frames are drawn.
type Options struct {
	Background   color.RGBA
	FillAlpha    uint8
	OutlineWidth float64
}

// DefaultOptions returns a black background with translucent box fills and
// 2px outlines.
func DefaultOptions() Options {
	return Options{
		Background:   colorutil.Black,
		FillAlpha:    DefaultFillAlpha,
		OutlineWidth: DefaultOutlineWidth,
	}
}

// Option customizes a Renderer.
type Option func(*Options)

// WithBackground sets the color shown where the image does not cover the
// viewport.
func WithBackground(c color.RGBA) Option {
	return func(o *Options) { o.Background = c }
}

// WithFillAlpha sets the opacity of box interiors.
func WithFillAlpha(a uint8) Option {
	return func(o *Options) { o.FillAlpha = a }
}

// WithOutlineWidth sets the box outline width in raster pixels.
func WithOutlineWidth(w float64) Option {
	return func(o *Options) {
		if w > 0 {
			o.OutlineWidth = w
		}
	}
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// Box is a bounding box clamped to the image with its resolved color.
type Box struct {
	library.BoundingBox
	Color color.RGBA
}

// Renderer holds everything needed to draw one entry. It is built once when
// the entry is mounted and is safe for concurrent Render calls on distinct
// destinations.
type Renderer struct {
	img   *image.RGBA
	size  geometry.Size
	boxes []Box
	opts  Options
}

// NewRenderer prepares entry for drawing. The image is converted to RGBA once,
// boxes are copied and clamped to the entry size, and their colors are looked
// up in colors. Metas without an assigned color use colorutil.Fallback.
func NewRenderer(entry *library.Entry, colors *colorutil.CategoryColors, opts ...Option) *Renderer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{opts: o}

	if entry.Image != nil {
		b := entry.Image.Bounds()
		r.img = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(r.img, r.img.Bounds(), entry.Image, b.Min, draw.Src)
	}

	w, h := float64(entry.Width), float64(entry.Height)
	if (w <= 0 || h <= 0) && r.img != nil {
		w, h = float64(r.img.Bounds().Dx()), float64(r.img.Bounds().Dy())
	}
	r.size = geometry.NewSize(w, h)

	r.boxes = make([]Box, len(entry.BoundingBoxes))
	for i, bb := range entry.BoundingBoxes {
		bb.Clamp(w, h)
		c := colorutil.Fallback
		if colors != nil {
			c = colors.ColorOf(bb.Meta)
		}
		r.boxes[i] = Box{BoundingBox: bb, Color: c}
	}
	return r
}

// Size is the image size in image pixels. Boxes are expressed in this space.
func (r *Renderer) Size() geometry.Size {
	return r.size
}

// Boxes returns the clamped boxes. The slice must not be modified.
func (r *Renderer) Boxes() []Box {
	return r.boxes
}

// Options returns the drawing options in effect.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render draws a frame into dst, whose origin is the viewport's top-left
// corner.
func (r *Renderer) Render(dst *image.RGBA, t viewport.Transform) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: r.opts.Background}, image.Point{}, draw.Src)

	if r.img != nil && r.img.Bounds().Dx() > 0 && r.img.Bounds().Dy() > 0 {
		// Decoded pixels are stretched to the entry size first.
		kx := r.size.Width / float64(r.img.Bounds().Dx())
		ky := r.size.Height / float64(r.img.Bounds().Dy())
		s2d := f64.Aff3{
			t.ScaleX * kx, 0, t.X,
			0, t.ScaleY * ky, t.Y,
		}
		draw.NearestNeighbor.Transform(dst, s2d, r.img, r.img.Bounds(), draw.Over, nil)
	}

	boxes := r.visibleBoxes(geometry.NewSize(float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())), t)
	if len(boxes) == 0 {
		return
	}

	dc := gg.NewContextForRGBA(dst)
	dc.Translate(t.X, t.Y)
	dc.Scale(t.ScaleX, t.ScaleY)
	dc.SetLineWidth(r.opts.OutlineWidth)
	for _, b := range boxes {
		dc.DrawRectangle(b.X0, b.Y0, b.X1-b.X0, b.Y1-b.Y0)
		dc.SetColor(colorutil.WithAlpha(b.Color, r.opts.FillAlpha))
		dc.FillPreserve()
		dc.SetColor(b.Color)
		dc.Stroke()
	}
}

// visibleBoxes returns the boxes that can touch a viewport of the given size,
// counting the outline that extends past each box edge.
func (r *Renderer) visibleBoxes(viewportSize geometry.Size, t viewport.Transform) []Box {
	if !viewportSize.Valid() || t.ScaleX <= 0 {
		return nil
	}
	view := t.VisibleRect(viewportSize).Expand(r.opts.OutlineWidth / t.ScaleX)

	var out []Box
	for _, b := range r.boxes {
		if b.Rect().Intersects(view) {
			out = append(out, b)
		}
	}
	return out
}

// RenderImage allocates a viewport-sized raster and renders into it.
func (r *Renderer) RenderImage(viewportSize geometry.Size, t viewport.Transform) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, int(viewportSize.Width), int(viewportSize.Height)))
	r.Render(dst, t)
	return dst
}
