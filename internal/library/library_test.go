package library

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"annotation-browser/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeManifest(t *testing.T, dir string, m Manifest) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644))
}

// newTestData lays out two libraries and a stray directory without a manifest.
func newTestData(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	craters := filepath.Join(root, "craters")
	writePNG(t, filepath.Join(craters, "img", "a.png"), 40, 30)
	writePNG(t, filepath.Join(craters, "img", "b.png"), 20, 20)
	writeManifest(t, craters, Manifest{
		Name: "moon_craters",
		Entries: []ManifestEntry{
			{
				Key:   "a",
				Image: "img/a.png",
				BoundingBoxes: []BoundingBox{
					{Y0: 1, X0: 2, Y1: 10, X1: 12, Label: "Crater", Meta: "user-1"},
					{Y0: 5, X0: 5, Y1: 8, X1: 9, Label: "Boulder"},
				},
			},
			{Image: "img/b.png", Width: 200, Height: 200},
		},
	})

	writePNG(t, filepath.Join(root, "arches", "x.png"), 8, 8)
	writeManifest(t, filepath.Join(root, "arches"), Manifest{
		Name:              "arches",
		AnnotationClasses: []string{"Arch"},
		Entries:           []ManifestEntry{{Key: "x", Image: "x.png"}},
	})

	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0o755))
	return root
}

func TestDirSourceList(t *testing.T) {
	src := NewDirSource(newTestData(t), nil)

	libs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, libs, 2)

	assert.Equal(t, "arches", libs[0].Name)
	assert.Equal(t, []string{"Arch"}, libs[0].AnnotationClasses)

	craters := libs[1]
	assert.Equal(t, "moon_craters", craters.Name)
	assert.Equal(t, 2, craters.EntryCount)
	assert.Equal(t, []string{"Boulder", "Crater"}, craters.AnnotationClasses, "classes derived from labels")
	assert.Greater(t, craters.FileSize, int64(0))
	assert.Equal(t, "craters", filepath.Base(craters.FilePath))
}

func TestDirSourceLibraryLookup(t *testing.T) {
	src := NewDirSource(newTestData(t), nil)
	ctx := context.Background()

	byManifest, err := src.Library(ctx, "moon_craters")
	require.NoError(t, err)
	byDir, err := src.Library(ctx, "craters")
	require.NoError(t, err)
	assert.Equal(t, byManifest, byDir)

	_, err = src.Library(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Library(ctx, "../craters")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDirSourceEntry(t *testing.T) {
	src := NewDirSource(newTestData(t), nil)
	ctx := context.Background()

	e, err := src.Entry(ctx, "moon_craters", 0)
	require.NoError(t, err)
	assert.Equal(t, "a", e.Key)
	assert.Equal(t, 40, e.Width, "size falls back to the decoded image")
	assert.Equal(t, 30, e.Height)
	require.Len(t, e.BoundingBoxes, 2)
	assert.Equal(t, "user-1", e.BoundingBoxes[0].Meta)
	assert.Equal(t, DefaultMeta, e.BoundingBoxes[1].Meta)

	e, err = src.Entry(ctx, "moon_craters", 1)
	require.NoError(t, err)
	assert.Equal(t, "moon_craters-1", e.Key)
	assert.Equal(t, 200, e.Width, "manifest size wins")
	assert.Equal(t, image.Rect(0, 0, 20, 20), e.Image.Bounds())

	_, err = src.Entry(ctx, "moon_craters", 2)
	assert.True(t, errors.Is(err, ErrEntryOutOfRange))
	_, err = src.Entry(ctx, "moon_craters", -1)
	assert.True(t, errors.Is(err, ErrEntryOutOfRange))
}

func TestDirSourceHonorsContext(t *testing.T) {
	src := NewDirSource(newTestData(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = src.Entry(ctx, "arches", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoundingBoxClamp(t *testing.T) {
	b := BoundingBox{Y0: -10, X0: 5, Y1: 50, X1: 1200, Label: "Crater"}
	b.Clamp(1000, 800)
	assert.Equal(t, BoundingBox{Y0: 0, X0: 5, Y1: 50, X1: 1000, Label: "Crater"}, b)

	assert.Equal(t, geometry.Rect{X: 5, Y: 0, Width: 995, Height: 50}, b.Rect())

	b = BoundingBox{Y0: 900, X0: -3, Y1: 1000, X1: -1}
	b.Clamp(1000, 800)
	assert.Equal(t, BoundingBox{Y0: 800, X0: 0, Y1: 800, X1: 0}, b)
}

type countingSource struct {
	Source
	entryCalls atomic.Int32
}

func (c *countingSource) Entry(ctx context.Context, name string, index int) (*Entry, error) {
	c.entryCalls.Add(1)
	return c.Source.Entry(ctx, name, index)
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{Source: NewDirSource(newTestData(t), nil)}
	src, err := NewCachedSource(inner, 1)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := src.Entry(ctx, "moon_craters", 0)
	require.NoError(t, err)
	again, err := src.Entry(ctx, "moon_craters", 0)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int32(1), inner.entryCalls.Load())

	_, err = src.Entry(ctx, "moon_craters", 1)
	require.NoError(t, err)
	_, err = src.Entry(ctx, "moon_craters", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.entryCalls.Load(), "size one cache evicts")

	_, err = src.Entry(ctx, "moon_craters", 9)
	assert.Error(t, err)
	assert.Equal(t, 1, src.Len(), "errors are not cached")

	libs, err := src.List(ctx)
	require.NoError(t, err)
	assert.Len(t, libs, 2)

	src.Purge()
	assert.Zero(t, src.Len())

	_, err = NewCachedSource(inner, 0)
	assert.Error(t, err)
}

func TestWatcherReportsNewLibrary(t *testing.T) {
	root := newTestData(t)
	w, err := NewWatcher(root, 20*time.Millisecond, nil)
	require.NoError(t, err)

	var calls atomic.Int32
	w.OnChange(func() { calls.Add(1) })
	w.Start()
	defer w.Stop()

	writeManifest(t, filepath.Join(root, "fresh"), Manifest{Name: "fresh"})

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
