package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"annotation-browser/pkg/colorutil"
)

// BrowserTheme is the default theme tinted with one accent color, normally a
// category palette entry, so selection and focus match the box overlays.
type BrowserTheme struct {
	accent color.RGBA
}

var _ fyne.Theme = (*BrowserTheme)(nil)

// NewBrowserTheme creates a theme around accent.
func NewBrowserTheme(accent color.RGBA) *BrowserTheme {
	return &BrowserTheme{accent: accent}
}

func (t *BrowserTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return t.accent
	case theme.ColorNameFocus:
		return colorutil.WithAlpha(t.accent, 0x7f)
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(t.accent, 0x40)
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *BrowserTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BrowserTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *BrowserTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
