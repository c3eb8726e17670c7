// Package theme resolves semantic colour roles to concrete colours for one
// render pass. A Theme is a value; nothing here is global or mutable.
package theme

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrUnknownTheme is returned by Named for names outside Names.
var ErrUnknownTheme = errors.New("unknown theme")

// Role is a semantic colour slot.
type Role int

const (
	Primary Role = iota
	Secondary
	Critical
	OK
	Warn
	Info
	Text
	Muted
	Background
	Card
	Border
	RowAlt
	Grid
	OnPrimary
	numRoles
)

const (
	Light = "light"
	Dark  = "dark"
)

// Names lists the supported theme names.
var Names = []string{Light, Dark}

// Theme is a named palette.
type Theme struct {
	Name    string
	palette [numRoles]color.RGBA
	// Series is the cycle used for chart categories.
	Series []color.RGBA
}

// Color returns the colour for role r. Unknown roles resolve to Text.
func (t Theme) Color(r Role) color.RGBA {
	if r < 0 || r >= numRoles {
		return t.palette[Text]
	}
	return t.palette[r]
}

// SeriesColor returns the i-th chart series colour, cycling.
func (t Theme) SeriesColor(i int) color.RGBA {
	if len(t.Series) == 0 {
		return t.palette[Primary]
	}
	if i < 0 {
		i = -i
	}
	return t.Series[i%len(t.Series)]
}

// IsDark reports whether the palette is meant for a dark background.
func (t Theme) IsDark() bool { return t.Name == Dark }

// Named returns the palette registered under name. The lookup is case-insensitive;
// an empty name selects the light theme.
func Named(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Light:
		return lightTheme(), nil
	case Dark:
		return darkTheme(), nil
	default:
		return Theme{}, fmt.Errorf("%w %q (valid: %s)", ErrUnknownTheme, name, strings.Join(Names, ", "))
	}
}

// MustNamed is Named for known-good names; it panics on error.
func MustNamed(name string) Theme {
	t, err := Named(name)
	if err != nil {
		panic(err)
	}
	return t
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

func lightTheme() Theme {
	t := Theme{Name: Light}
	t.palette = [numRoles]color.RGBA{
		Primary:    rgb(0x1f6feb),
		Secondary:  rgb(0x6e7781),
		Critical:   rgb(0xcf222e),
		OK:         rgb(0x1a7f37),
		Warn:       rgb(0xbf8700),
		Info:       rgb(0x0969da),
		Text:       rgb(0x1f2328),
		Muted:      rgb(0x656d76),
		Background: rgb(0xffffff),
		Card:       rgb(0xf6f8fa),
		Border:     rgb(0xd0d7de),
		RowAlt:     rgb(0xeef2f6),
		Grid:       rgb(0xe1e4e8),
		OnPrimary:  rgb(0xffffff),
	}
	t.Series = []color.RGBA{
		rgb(0x1f6feb), rgb(0x1a7f37), rgb(0xbf8700), rgb(0xcf222e), rgb(0x8250df), rgb(0x1b7c83),
	}
	return t
}

func darkTheme() Theme {
	t := Theme{Name: Dark}
	t.palette = [numRoles]color.RGBA{
		Primary:    rgb(0x58a6ff),
		Secondary:  rgb(0x8b949e),
		Critical:   rgb(0xf85149),
		OK:         rgb(0x3fb950),
		Warn:       rgb(0xd29922),
		Info:       rgb(0x79c0ff),
		Text:       rgb(0xe6edf3),
		Muted:      rgb(0x8b949e),
		Background: rgb(0x0d1117),
		Card:       rgb(0x161b22),
		Border:     rgb(0x30363d),
		RowAlt:     rgb(0x1c2128),
		Grid:       rgb(0x21262d),
		OnPrimary:  rgb(0x0d1117),
	}
	t.Series = []color.RGBA{
		rgb(0x58a6ff), rgb(0x3fb950), rgb(0xd29922), rgb(0xf85149), rgb(0xbc8cff), rgb(0x39c5cf),
	}
	return t
}
