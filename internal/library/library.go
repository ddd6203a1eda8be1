// Package library reads annotation libraries: named collections of images,
// each with a list of labeled bounding boxes.
package library

import (
	"context"
	"errors"
	"image"
	"math"

	"annotation-browser/pkg/geometry"
)

var (
	// ErrNotFound is returned for an unknown library name.
	ErrNotFound = errors.New("annotation library not found")
	// ErrEntryOutOfRange is returned for an entry index outside the library.
	ErrEntryOutOfRange = errors.New("entry index out of range")
)

// DefaultMeta is used for boxes stored without a meta value.
const DefaultMeta = "N/A"

// BoundingBox is an annotated rectangle in image pixel coordinates.
type BoundingBox struct {
	Y0    float64 `json:"y0"`
	X0    float64 `json:"x0"`
	Y1    float64 `json:"y1"`
	X1    float64 `json:"x1"`
	Label string  `json:"label"`
	Meta  string  `json:"meta"`
}

// Clamp limits the box to [0, width] x [0, height] in place.
func (b *BoundingBox) Clamp(width, height float64) {
	b.X0 = clamp(b.X0, 0, width)
	b.X1 = clamp(b.X1, 0, width)
	b.Y0 = clamp(b.Y0, 0, height)
	b.Y1 = clamp(b.Y1, 0, height)
}

// Rect returns the box as a rectangle in image pixels.
func (b BoundingBox) Rect() geometry.Rect {
	return geometry.RectFromCorners(b.X0, b.Y0, b.X1, b.Y1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Library describes an annotation library without loading its images.
type Library struct {
	Name              string   `json:"name"`
	FilePath          string   `json:"file_path"`
	FileSize          int64    `json:"file_size"`
	EntryCount        int      `json:"entry_count"`
	AnnotationClasses []string `json:"annotation_classes"`
}

// Entry is one image of a library with its boxes.
type Entry struct {
	Library       string
	Index         int
	Key           string
	Image         image.Image
	Width         int
	Height        int
	BoundingBoxes []BoundingBox
}

// Source provides annotation libraries.
type Source interface {
	// List returns all libraries, sorted by name.
	List(ctx context.Context) ([]Library, error)
	// Library returns a single library's description.
	Library(ctx context.Context, name string) (*Library, error)
	// Entry loads the entry at index, including its decoded image.
	Entry(ctx context.Context, name string, index int) (*Entry, error)
}
