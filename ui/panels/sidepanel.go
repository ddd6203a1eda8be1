package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"annotation-browser/internal/library"
	"annotation-browser/pkg/colorutil"
)

const swatchSize = 14

// InfoPanel shows the open library's details above the current entry's boxes.
type InfoPanel struct {
	name    *widget.Label
	path    *widget.Label
	size    *widget.Label
	entries *widget.Label
	classes *widget.Label
	entry   *widget.Label
	legend  *fyne.Container

	legendRows []string

	Boxes *BoxTable

	box fyne.CanvasObject
}

// NewInfoPanel creates the panel with no library shown.
func NewInfoPanel() *InfoPanel {
	ip := &InfoPanel{
		name:    widget.NewLabel(none),
		path:    widget.NewLabel(none),
		size:    widget.NewLabel(none),
		entries: widget.NewLabel(none),
		classes: widget.NewLabel(none),
		entry:   widget.NewLabel("No entry"),
		legend:  container.NewVBox(),
		Boxes:   NewBoxTable(),
	}
	ip.path.Wrapping = fyne.TextWrapBreak
	ip.classes.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Name", ip.name),
		widget.NewFormItem("File Path", ip.path),
		widget.NewFormItem("Size", ip.size),
		widget.NewFormItem("Entries", ip.entries),
		widget.NewFormItem("Classes", ip.classes),
	)

	top := container.NewVBox(
		widget.NewLabelWithStyle("Annotation Library", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		widget.NewSeparator(),
		ip.legend,
		ip.entry,
	)
	ip.box = container.NewBorder(top, nil, nil, nil, ip.Boxes.Container())
	return ip
}

// SetLibrary shows l, or clears the panel when l is nil.
func (ip *InfoPanel) SetLibrary(l *library.Library) {
	if l == nil {
		for _, lbl := range []*widget.Label{ip.name, ip.path, ip.size, ip.entries, ip.classes} {
			lbl.SetText(none)
		}
		ip.SetEntry(nil, 0)
		ip.SetLegend(nil)
		return
	}
	ip.name.SetText(l.Name)
	ip.path.SetText(l.FilePath)
	ip.size.SetText(formatSize(l.FileSize))
	ip.entries.SetText(fmt.Sprintf("%d", l.EntryCount))
	ip.classes.SetText(formatClasses(l.AnnotationClasses))
}

// SetEntry shows the entry position and its boxes.
func (ip *InfoPanel) SetEntry(e *library.Entry, count int) {
	ip.entry.SetText(formatEntryTitle(e, count))
	if e == nil {
		ip.Boxes.SetBoxes(nil)
		return
	}
	ip.Boxes.SetBoxes(e.BoundingBoxes)
}

// SetLegend lists every colored meta with its swatch, in assignment order.
func (ip *InfoPanel) SetLegend(colors *colorutil.CategoryColors) {
	ip.legendRows = nil
	var objects []fyne.CanvasObject
	if colors != nil {
		for _, category := range colors.Categories() {
			col := colors.ColorOf(category)
			row := formatLegendRow(category, col)
			ip.legendRows = append(ip.legendRows, row)

			swatch := canvas.NewRectangle(col)
			swatch.SetMinSize(fyne.NewSize(swatchSize, swatchSize))
			objects = append(objects, container.NewHBox(container.NewCenter(swatch), widget.NewLabel(row)))
		}
	}
	ip.legend.Objects = objects
	ip.legend.Refresh()
}

// Legend returns the legend rows as displayed.
func (ip *InfoPanel) Legend() []string {
	return ip.legendRows
}

// Text returns the displayed name, size and entry strings.
func (ip *InfoPanel) Text() (name, size, entry string) {
	return ip.name.Text, ip.size.Text, ip.entry.Text
}

// Container returns the panel's root object.
func (ip *InfoPanel) Container() fyne.CanvasObject {
	return ip.box
}
