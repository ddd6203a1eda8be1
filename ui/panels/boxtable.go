package panels

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"annotation-browser/internal/library"
)

var boxColumns = []struct {
	title string
	width float32
}{
	{"Box (y0, x0, y1, x1)", 220},
	{"Label", 100},
	{"Meta", 120},
}

// BoxTable lists the bounding boxes of the current entry.
type BoxTable struct {
	mu    sync.RWMutex
	boxes []library.BoundingBox

	table *widget.Table
}

// NewBoxTable creates an empty table.
func NewBoxTable() *BoxTable {
	bt := &BoxTable{}

	bt.table = widget.NewTableWithHeaders(
		func() (int, int) {
			bt.mu.RLock()
			defer bt.mu.RUnlock()
			return len(bt.boxes), len(boxColumns)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("(000, 000, 000, 000)")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(bt.cell(id.Row, id.Col))
		},
	)
	bt.table.ShowHeaderColumn = false
	bt.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	bt.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(boxColumns) {
			obj.(*widget.Label).SetText(boxColumns[id.Col].title)
		}
	}
	for i, c := range boxColumns {
		bt.table.SetColumnWidth(i, c.width)
	}
	return bt
}

// SetBoxes replaces the rows.
func (bt *BoxTable) SetBoxes(boxes []library.BoundingBox) {
	bt.mu.Lock()
	bt.boxes = append([]library.BoundingBox(nil), boxes...)
	bt.mu.Unlock()
	bt.table.Refresh()
}

// Len returns the number of rows.
func (bt *BoxTable) Len() int {
	bt.mu.RLock()
	defer bt.mu.RUnlock()
	return len(bt.boxes)
}

func (bt *BoxTable) cell(row, col int) string {
	bt.mu.RLock()
	defer bt.mu.RUnlock()
	if row < 0 || row >= len(bt.boxes) {
		return ""
	}
	b := bt.boxes[row]
	switch col {
	case 0:
		return formatBox(b)
	case 1:
		return b.Label
	case 2:
		return b.Meta
	}
	return ""
}

// Container returns the table.
func (bt *BoxTable) Container() fyne.CanvasObject {
	return bt.table
}
