package panels

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/dustin/go-humanize"

	"annotation-browser/internal/library"
	"annotation-browser/pkg/colorutil"
)

const none = "-"

// formatClasses joins annotation classes for display.
func formatClasses(classes []string) string {
	if len(classes) == 0 {
		return none
	}
	return strings.Join(classes, ", ")
}

// formatLibraryRow is the one-line list label for a library.
func formatLibraryRow(l library.Library) string {
	return fmt.Sprintf("%s  (%s entries)  %s", l.Name, humanize.Comma(int64(l.EntryCount)), formatClasses(l.AnnotationClasses))
}

// formatSize renders a byte count like "1.2 MB".
func formatSize(n int64) string {
	if n <= 0 {
		return none
	}
	return humanize.Bytes(uint64(n))
}

// formatBox renders box coordinates as (y0, x0, y1, x1).
func formatBox(b library.BoundingBox) string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.Y0, b.X0, b.Y1, b.X1)
}

// formatEntryTitle describes the current position inside a library.
func formatEntryTitle(e *library.Entry, count int) string {
	if e == nil {
		return "No entry"
	}
	return fmt.Sprintf("%s  %d / %d", e.Key, e.Index+1, count)
}

// formatLegendRow labels a legend swatch with its meta and hex color.
func formatLegendRow(meta string, c color.RGBA) string {
	return fmt.Sprintf("%s  %s", meta, colorutil.Hex(c))
}
