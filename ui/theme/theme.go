package theme

// Centralized theming for the SnapSolve UI. Provides palette constants and
// InitStyles to activate a base theme; dark mode swaps the palette and
// reapplies.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // buttons, accents
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(darkMode) }

// SetDark toggles dark mode and reapplies styles. Returns the new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(darkMode)
	return darkMode
}

// ToggleDark flips dark mode and reapplies styles. Returns the new mode value.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports the current mode.
func IsDark() bool { return darkMode }

// applyStyles activates the base theme and the mode's background.
func applyStyles(dark bool) {
	if dark {
		_ = ActivateTheme("azure dark")
		App.Configure(Background("#0f172a"))
		return
	}
	_ = ActivateTheme("azure light")
	App.Configure(Background(ColorBg))
}
