// Package statusline renders the one-line usage status shown by the host,
// and the advisory printed after a refresh.
package statusline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	"github.com/jung-wan-kim/usage-gate/internal/theme"
)

const separator = "│"

// Renderer formats snapshots. It only reads; it never refreshes the cache.
type Renderer struct {
	styles theme.Styles
	cat    i18n.Catalog
	now    func() time.Time
}

func NewRenderer(r *lipgloss.Renderer, cat i18n.Catalog) *Renderer {
	return &Renderer{
		styles: theme.NewStyles(r),
		cat:    cat,
		now:    time.Now,
	}
}

// Line renders the status for snap. A nil snapshot means no data.
func (r *Renderer) Line(snap *domain.Snapshot, limits domain.Limits) string {
	s := r.styles
	sep := " " + s.Separator.Render(separator) + " "

	if !limits.Enabled {
		off := s.Dim.Render(r.cat.T("gate_off"))
		if snap == nil {
			return off + sep + s.Muted.Render(r.cat.T("no_data"))
		}
		return strings.Join([]string{
			off,
			s.Muted.Render("5h " + snap.FiveHour.Percent()),
			s.Muted.Render("7d " + snap.SevenDay.Percent()),
		}, sep)
	}

	if snap == nil {
		return s.Dim.Render(r.cat.T("gate_prefix") + " " + r.cat.T("no_data"))
	}

	var head string
	if snap.Worst(limits) == domain.Critical {
		head = s.Fallback.Render(r.cat.T("gate")) + " " + s.Critical.Render(r.cat.T("gate_active"))
	} else {
		head = s.Nominal.Render(r.cat.T("gate")) + " " + s.Dim.Render(r.cat.T("gate_standby"))
	}

	return strings.Join([]string{
		head,
		r.segment(domain.FiveHourWindow, snap.FiveHour, limits.FiveHourLimit, limits.FallbackFor5h),
		r.segment(domain.SevenDayWindow, snap.SevenDay, limits.SevenDayLimit, limits.FallbackFor7d),
	}, sep)
}

func (r *Renderer) segment(label string, w domain.Window, limit int, fallback string) string {
	s := r.styles
	sev := domain.SeverityFor(w.Utilization, limit)

	var b strings.Builder
	b.WriteString(s.Label.Render(label + " "))
	b.WriteString(s.ForSeverity(sev).Render(w.Percent()))
	b.WriteString(s.Muted.Render(fmt.Sprintf("/%d%%", limit)))

	if sev == domain.Critical {
		if short := domain.ShortModel(fallback); short != "" {
			b.WriteString(" " + s.Fallback.Render("→"+short))
		}
		if left, ok := w.Remaining(r.now()); ok {
			b.WriteString(" " + s.Muted.Render(FormatRemaining(left)))
		}
	}
	return b.String()
}
