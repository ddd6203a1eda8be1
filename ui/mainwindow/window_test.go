package mainwindow

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotation-browser/internal/app"
	"annotation-browser/internal/library"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/geometry"
	"annotation-browser/ui/prefs"
)

type oneLibrary struct{}

func (oneLibrary) List(ctx context.Context) ([]library.Library, error) {
	return []library.Library{{Name: "craters", EntryCount: 2, FileSize: 4096}}, nil
}

func (s oneLibrary) Library(ctx context.Context, name string) (*library.Library, error) {
	if name != "craters" {
		return nil, fmt.Errorf("%w: %s", library.ErrNotFound, name)
	}
	libs, _ := s.List(ctx)
	return &libs[0], nil
}

func (oneLibrary) Entry(ctx context.Context, name string, index int) (*library.Entry, error) {
	if index < 0 || index > 1 {
		return nil, library.ErrEntryOutOfRange
	}
	return &library.Entry{
		Library: name,
		Index:   index,
		Key:     fmt.Sprintf("e%d", index),
		Image:   image.NewRGBA(image.Rect(0, 0, 8, 8)),
		Width:   8,
		Height:  8,
		BoundingBoxes: []library.BoundingBox{
			{X1: 4, Y1: 4, Label: "Crater", Meta: "user-1"},
		},
	}, nil
}

func newTestWindow(t *testing.T) (*MainWindow, *prefs.Prefs) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "prefs.json"))
	state := app.NewState(oneLibrary{}, nil)
	mw := New(a, state, Options{FrameRate: 60, Width: 640, Height: 480, Prefs: p})
	t.Cleanup(mw.viewer.Close)
	return mw, p
}

func TestEventsUpdatePanels(t *testing.T) {
	mw, p := newTestWindow(t)
	ctx := context.Background()

	require.NoError(t, mw.state.RefreshLibraries(ctx))
	assert.Equal(t, 1, mw.libraries.Len())

	require.NoError(t, mw.state.OpenLibrary(ctx, "craters"))
	name, size, entry := mw.info.Text()
	assert.Equal(t, "craters", name)
	assert.Equal(t, "4.1 kB", size)
	assert.Equal(t, "e0  1 / 2", entry)
	assert.Equal(t, title+" - craters", mw.Title())
	assert.Equal(t, []string{"user-1  #e41a1c"}, mw.info.Legend())

	require.NoError(t, mw.state.NextEntry(ctx))
	lib, index := p.LastPosition()
	assert.Equal(t, "craters", lib)
	assert.Equal(t, 1, index)

	mw.state.ClearLibrary()
	name, _, _ = mw.info.Text()
	assert.Equal(t, "-", name)
	assert.Equal(t, title, mw.Title())
	lib, _ = p.LastPosition()
	assert.Empty(t, lib)
}

func TestFormatView(t *testing.T) {
	assert.Equal(t, "100%", formatView(viewport.Identity(), geometry.Rect{}))

	tr := viewport.Transform{X: -40, Y: -20, ScaleX: 2.2, ScaleY: 2.2}
	visible := geometry.Rect{X: 18.2, Y: 9.1, Width: 363.6, Height: 181.8}
	assert.Equal(t, "220%  (18.2,9.1 363.6x181.8)", formatView(tr, visible))
}
