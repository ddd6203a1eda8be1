// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"annotation-browser/internal/app"
	"annotation-browser/internal/library"
	"annotation-browser/internal/logging"
	"annotation-browser/internal/render"
	"annotation-browser/internal/version"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/geometry"
	"annotation-browser/ui/panels"
	"annotation-browser/ui/prefs"
	"annotation-browser/ui/viewer"
)

const title = "Annotation Browser"

// Options configures the window.
type Options struct {
	FrameRate int
	Width     int
	Height    int
	Render    []render.Option
	Prefs     *prefs.Prefs
	Logger    *log.Logger
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	viewer    *viewer.Viewer
	libraries *panels.LibraryPanel
	info      *panels.InfoPanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, opts Options) *MainWindow {
	win := fyneApp.NewWindow(title)

	if opts.Prefs == nil {
		opts.Prefs = prefs.Load()
	}
	ctx, cancel := context.WithCancel(context.Background())
	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  opts.Prefs,
		logger: logging.Component(opts.Logger, "window"),
		ctx:    ctx,
		cancel: cancel,
	}

	mw.viewer = viewer.New(opts.FrameRate, opts.Logger, opts.Render...)
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	w, h := mw.prefs.WindowSize(opts.Width, opts.Height)
	if w > 0 && h > 0 {
		mw.Resize(fyne.NewSize(float32(w), float32(h)))
	}
	mw.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.libraries = panels.NewLibraryPanel()
	mw.libraries.OnOpen(mw.OpenLibrary)

	mw.info = panels.NewInfoPanel()

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.viewer.OnTransform(func(t viewport.Transform, visible geometry.Rect) {
		mw.zoomLabel.SetText(formatView(t, visible))
	})

	// Viewer area with toolbar on top
	viewerArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.viewer,          // center
	)

	right := container.NewHSplit(viewerArea, mw.info.Container())
	right.SetOffset(0.7)

	split := container.NewHSplit(mw.libraries.Container(), right)
	split.SetOffset(0.2)

	// Main container with status bar at bottom
	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)), // bottom
		nil,   // left
		nil,   // right
		split, // center
	)

	mw.SetContent(content)

	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft, fyne.KeyPageUp:
			mw.onPrev()
		case fyne.KeyRight, fyne.KeyPageDown:
			mw.onNext()
		case fyne.KeyHome:
			mw.viewer.Reset()
		}
	})
}

// createToolbar creates the toolbar with navigation controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRefreshIcon(), mw.onRefresh),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateBackIcon(), mw.onPrev),
		widget.NewToolbarAction(theme.NavigateNextIcon(), mw.onNext),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomFitIcon(), mw.viewer.Reset),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Refresh Libraries", mw.onRefresh),
		fyne.NewMenuItem("Close Library", mw.state.ClearLibrary),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Previous Entry", mw.onPrev),
		fyne.NewMenuItem("Next Entry", mw.onNext),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Fit to Window", mw.viewer.Reset),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventLibrariesChanged, func(data interface{}) {
		if libs, ok := data.([]library.Library); ok {
			mw.libraries.SetLibraries(libs)
			if open := mw.state.Library(); open != nil {
				mw.libraries.Select(open.Name)
			}
			mw.updateStatus(fmt.Sprintf("%d libraries", len(libs)))
		}
	})

	mw.state.On(app.EventLibraryOpened, func(data interface{}) {
		if lib, ok := data.(*library.Library); ok {
			mw.SetTitle(title + " - " + lib.Name)
			mw.info.SetLibrary(lib)
			mw.libraries.Select(lib.Name)
			if lib.EntryCount == 0 {
				mw.viewer.Unmount()
				mw.info.SetEntry(nil, 0)
			}
		}
	})

	mw.state.On(app.EventEntryLoaded, func(data interface{}) {
		entry, ok := data.(*library.Entry)
		if !ok {
			return
		}
		count := 0
		if lib := mw.state.Library(); lib != nil {
			count = lib.EntryCount
		}
		mw.viewer.SetEntry(entry, mw.state.Colors())
		mw.info.SetEntry(entry, count)
		mw.info.SetLegend(mw.state.Colors())
		mw.prefs.SetLastPosition(entry.Library, entry.Index)
		mw.updateStatus(fmt.Sprintf("%s: %d boxes", entry.Key, len(entry.BoundingBoxes)))
	})

	mw.state.On(app.EventLibraryCleared, func(data interface{}) {
		mw.SetTitle(title)
		mw.viewer.Unmount()
		mw.info.SetLibrary(nil)
		mw.prefs.SetLastPosition("", 0)
		mw.updateStatus("Library closed")
	})
}

// Restore lists the libraries and reopens the last viewed entry.
func (mw *MainWindow) Restore() {
	name, index := mw.prefs.LastPosition()
	mw.run("restore", func(ctx context.Context) error {
		if err := mw.state.RefreshLibraries(ctx); err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		if err := mw.state.OpenLibrary(ctx, name); err != nil {
			if errors.Is(err, library.ErrNotFound) {
				mw.logger.Warn("last library is gone", "library", name)
				return nil
			}
			return err
		}
		if index > 0 {
			return mw.state.LoadEntry(ctx, index)
		}
		return nil
	})
}

// OpenLibrary opens name in the background.
func (mw *MainWindow) OpenLibrary(name string) {
	mw.updateStatus("Opening " + name + "...")
	mw.run("open library", func(ctx context.Context) error {
		return mw.state.OpenLibrary(ctx, name)
	})
}

// Refresh re-reads the library listing in the background.
func (mw *MainWindow) Refresh() {
	mw.onRefresh()
}

func (mw *MainWindow) onRefresh() {
	mw.run("refresh", mw.state.RefreshLibraries)
}

func (mw *MainWindow) onPrev() {
	mw.run("previous entry", mw.state.PrevEntry)
}

func (mw *MainWindow) onNext() {
	mw.run("next entry", mw.state.NextEntry)
}

// run executes fn off the UI goroutine and reports failures in a dialog.
func (mw *MainWindow) run(what string, fn func(context.Context) error) {
	go func() {
		err := fn(mw.ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
		case errors.Is(err, app.ErrNoLibrary):
			mw.updateStatus("Open a library first")
		default:
			mw.logger.Error(what+" failed", "err", err)
			mw.updateStatus(what + " failed")
			dialog.ShowError(err, mw.Window)
		}
	}()
}

// formatView is the zoom label: the zoom level and, with an entry shown, the
// image region in view.
func formatView(t viewport.Transform, visible geometry.Rect) string {
	zoom := fmt.Sprintf("%.0f%%", t.ScaleX*100)
	if visible.Width <= 0 || visible.Height <= 0 {
		return zoom
	}
	return zoom + "  " + visible.String()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(int(size.Width), int(size.Height))
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("could not save preferences", "path", mw.prefs.Path(), "err", err)
	}
	mw.cancel()
	mw.viewer.Close()
	mw.Close()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+title,
		fmt.Sprintf("%s v%s\n\n"+
			"Browse annotation libraries and inspect their bounding boxes.\n\n"+
			"Scroll to zoom, drag to pan.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			title, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
