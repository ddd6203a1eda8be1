package viewport

import (
	"fmt"

	"annotation-browser/pkg/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is the pan and zoom applied to the image.
type Transform struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
}

// Identity returns the unscaled, untranslated transform.
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// ToImage maps a viewport point back to image coordinates.
func (t Transform) ToImage(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.ScaleX, Y: (p.Y - t.Y) / t.ScaleY}
}

// Translate returns the transform moved by d viewport pixels.
func (t Transform) Translate(d r2.Vec) Transform {
	t.X += d.X
	t.Y += d.Y
	return t
}

// ZoomAt scales the transform by f while keeping the image point under
// cursor fixed in viewport space.
func (t Transform) ZoomAt(f float64, cursor r2.Vec) Transform {
	t.ScaleX *= f
	t.ScaleY *= f
	t.X -= (cursor.X - t.X) * (f - 1)
	t.Y -= (cursor.Y - t.Y) * (f - 1)
	return t
}

// Scaled converts a transform expressed in one unit system to another that is
// k times denser, e.g. from device-independent units to raster pixels.
func (t Transform) Scaled(k float64) Transform {
	return Transform{X: t.X * k, Y: t.Y * k, ScaleX: t.ScaleX * k, ScaleY: t.ScaleY * k}
}

// VisibleRect returns the region of the image, in image pixels, that is shown
// in a viewport of the given size.
func (t Transform) VisibleRect(viewport geometry.Size) geometry.Rect {
	tl := t.ToImage(r2.Vec{})
	br := t.ToImage(r2.Vec{X: viewport.Width, Y: viewport.Height})
	return geometry.RectFromCorners(tl.X, tl.Y, br.X, br.Y)
}

func (t Transform) String() string {
	return fmt.Sprintf("offset=(%.2f,%.2f) scale=(%.4f,%.4f)", t.X, t.Y, t.ScaleX, t.ScaleY)
}
