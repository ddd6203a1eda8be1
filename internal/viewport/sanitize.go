package viewport

import (
	"errors"
	"fmt"
	"math"

	"annotation-browser/pkg/geometry"
)

// ErrInvalidGeometry reports a zero, negative or non-finite image or viewport size.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeometryError describes which size was rejected.
type GeometryError struct {
	Name string
	Size geometry.Size
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: %s size %s", ErrInvalidGeometry, e.Name, e.Size)
}

func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}

// CheckGeometry validates the image and viewport sizes.
func CheckGeometry(image, viewport geometry.Size) error {
	if !image.Valid() {
		return &GeometryError{Name: "image", Size: image}
	}
	if !viewport.Valid() {
		return &GeometryError{Name: "viewport", Size: viewport}
	}
	return nil
}

// Sanitize maps a candidate transform to the nearest legal one: offsets never
// positive, no empty space revealed past the right or bottom image edge, and a
// uniform scale.
func Sanitize(candidate Transform, image, viewport geometry.Size) (Transform, error) {
	if err := CheckGeometry(image, viewport); err != nil {
		return Transform{}, err
	}
	return sanitize(candidate, image, viewport), nil
}

// sanitize assumes CheckGeometry passed.
func sanitize(t Transform, image, viewport geometry.Size) Transform {
	t.X = math.Min(0, t.X)
	t.Y = math.Min(0, t.Y)

	if image.Width*t.ScaleX+t.X < viewport.Width {
		t.X = math.Min(0, viewport.Width-image.Width*t.ScaleX)
		if t.X == 0 {
			t.ScaleX = viewport.Width / image.Width
		}
	}

	// The Y snap is gated on X being pinned, not Y. Kept as-is: changing it
	// alters zoom-out at non-square aspect ratios.
	if image.Height*t.ScaleY+t.Y < viewport.Height {
		t.Y = math.Min(0, viewport.Height-image.Height*t.ScaleY)
		if t.X == 0 {
			t.ScaleY = viewport.Height / image.Height
		}
	}

	if t.ScaleX != t.ScaleY {
		s := math.Max(t.ScaleX, t.ScaleY)
		t.ScaleX, t.ScaleY = s, s
	}
	return t
}
