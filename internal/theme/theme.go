package theme

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/muesli/termenv"
)

// Status line palette (ANSI 256).
var (
	ColorMint     = lipgloss.Color("151") // nominal
	ColorWarm     = lipgloss.Color("222") // warning
	ColorCoral    = lipgloss.Color("210") // critical
	ColorSoftCyan = lipgloss.Color("117") // label
	ColorGray     = lipgloss.Color("249") // secondary
	ColorDimGray  = lipgloss.Color("242") // separator
	ColorOrange   = lipgloss.Color("216") // fallback arrow
)

// Styles is the set of styles bound to one renderer.
type Styles struct {
	Nominal   lipgloss.Style
	Warning   lipgloss.Style
	Critical  lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
	Fallback  lipgloss.Style
	Title     lipgloss.Style
}

// NewStyles builds the palette on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Nominal:   r.NewStyle().Foreground(ColorMint),
		Warning:   r.NewStyle().Foreground(ColorWarm),
		Critical:  r.NewStyle().Foreground(ColorCoral),
		Label:     r.NewStyle().Foreground(ColorGray),
		Muted:     r.NewStyle().Foreground(ColorDimGray),
		Dim:       r.NewStyle().Faint(true),
		Separator: r.NewStyle().Foreground(ColorDimGray),
		Fallback:  r.NewStyle().Foreground(ColorOrange),
		Title:     r.NewStyle().Foreground(ColorSoftCyan).Bold(true),
	}
}

// ForSeverity returns the style used for a utilization of that severity.
func (s Styles) ForSeverity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.Critical:
		return s.Critical
	case domain.Warning:
		return s.Warning
	default:
		return s.Nominal
	}
}

// Renderer returns a lipgloss renderer for w with a fixed colour profile.
// Hook output is a pipe, so autodetection would always pick no colour;
// the host terminal renders ANSI-256 fine. NO_COLOR disables colour.
func Renderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.ANSI256)
	}
	return r
}

// PlainRenderer renders without any escape sequences.
func PlainRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return r
}
