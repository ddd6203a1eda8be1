package colorutil

import (
	"image/color"
	"sync"
)

// Palette is the fixed set of category colors, handed out in order.
var Palette = [9]color.RGBA{
	MustParseHex("#e41a1c"),
	MustParseHex("#377eb8"),
	MustParseHex("#4daf4a"),
	MustParseHex("#984ea3"),
	MustParseHex("#ff7f00"),
	MustParseHex("#ffff33"),
	MustParseHex("#a65628"),
	MustParseHex("#f781bf"),
	MustParseHex("#00ced1"),
}

// Fallback is used for a category that was never assigned a color.
var Fallback = Gray

// CategoryColors assigns each category a palette color the first time it is
// seen, cycling through Palette.
type CategoryColors struct {
	mu     sync.RWMutex
	colors map[string]color.RGBA
	order  []string
}

// NewCategoryColors creates an empty color map.
func NewCategoryColors() *CategoryColors {
	return &CategoryColors{colors: make(map[string]color.RGBA)}
}

// Assign returns the color for category, assigning the next palette entry if
// the category is new.
func (c *CategoryColors) Assign(category string) color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.colors[category]; ok {
		return col
	}
	col := Palette[len(c.order)%len(Palette)]
	c.colors[category] = col
	c.order = append(c.order, category)
	return col
}

// Lookup returns the assigned color for category.
func (c *CategoryColors) Lookup(category string) (color.RGBA, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.colors[category]
	return col, ok
}

// ColorOf returns the assigned color, or Fallback.
func (c *CategoryColors) ColorOf(category string) color.RGBA {
	if col, ok := c.Lookup(category); ok {
		return col
	}
	return Fallback
}

// Categories returns the known categories in assignment order.
func (c *CategoryColors) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of assigned categories.
func (c *CategoryColors) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
