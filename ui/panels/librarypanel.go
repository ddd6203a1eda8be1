// Package panels provides the side panels of the main window.
package panels

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"annotation-browser/internal/library"
)

// LibraryPanel lists the libraries found in the data directory.
type LibraryPanel struct {
	mu   sync.RWMutex
	libs []library.Library

	list   *widget.List
	header *widget.Label
	box    fyne.CanvasObject

	onOpen func(name string)
}

// NewLibraryPanel creates an empty library list.
func NewLibraryPanel() *LibraryPanel {
	lp := &LibraryPanel{}

	lp.list = widget.NewList(
		func() int {
			lp.mu.RLock()
			defer lp.mu.RUnlock()
			return len(lp.libs)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Library Name")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			lp.mu.RLock()
			defer lp.mu.RUnlock()
			if id < len(lp.libs) {
				obj.(*widget.Label).SetText(formatLibraryRow(lp.libs[id]))
			}
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		lp.mu.RLock()
		var name string
		if id < len(lp.libs) {
			name = lp.libs[id].Name
		}
		lp.mu.RUnlock()
		if name != "" && lp.onOpen != nil {
			lp.onOpen(name)
		}
	}

	lp.header = widget.NewLabelWithStyle("Annotation Libraries", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	lp.box = container.NewBorder(lp.header, nil, nil, nil, lp.list)
	return lp
}

// OnOpen sets the callback invoked with the selected library name.
func (lp *LibraryPanel) OnOpen(fn func(name string)) {
	lp.onOpen = fn
}

// SetLibraries replaces the listing.
func (lp *LibraryPanel) SetLibraries(libs []library.Library) {
	lp.mu.Lock()
	lp.libs = append([]library.Library(nil), libs...)
	lp.mu.Unlock()
	lp.list.UnselectAll()
	lp.list.Refresh()
}

// Len returns the number of listed libraries.
func (lp *LibraryPanel) Len() int {
	lp.mu.RLock()
	defer lp.mu.RUnlock()
	return len(lp.libs)
}

// Select highlights name without invoking OnOpen.
func (lp *LibraryPanel) Select(name string) {
	lp.mu.RLock()
	idx := -1
	for i, l := range lp.libs {
		if l.Name == name {
			idx = i
			break
		}
	}
	lp.mu.RUnlock()
	if idx < 0 {
		return
	}
	cb := lp.onOpen
	lp.onOpen = nil
	lp.list.Select(idx)
	lp.onOpen = cb
}

// Container returns the panel's root object.
func (lp *LibraryPanel) Container() fyne.CanvasObject {
	return lp.box
}
