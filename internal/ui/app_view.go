package ui

import (
	"strings"
	"time"
)

func (a App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Usage Gate"))
	b.WriteString("  ")
	b.WriteString(a.styles.Muted.Render(string(a.Config.Mode())))
	b.WriteString("\n\n")
	b.WriteString(a.line.Line(a.snap, a.Config.Limits()))
	b.WriteString("\n")
	b.WriteString(a.renderAge())
	b.WriteString("\n\n")

	if banner := a.notifications.Render(a.width); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString(a.renderKeyHints())
	b.WriteString("\n")
	return b.String()
}

func (a App) renderAge() string {
	now := a.now()
	var parts []string

	if a.snap == nil || a.snap.CachedAt.IsZero() {
		parts = append(parts, a.cat.T("watch_never"))
	} else {
		parts = append(parts, a.cat.Tf("watch_cached", a.snap.Age(now).Round(time.Second)))
	}

	switch {
	case a.refreshing:
		parts = append(parts, a.cat.T("watch_refreshing"))
	case a.hasOutcome:
		left := a.nextRefresh.Sub(now).Round(time.Second)
		if left < 0 {
			left = 0
		}
		parts = append(parts, a.cat.Tf("watch_next", left))
	}

	return a.styles.Muted.Render(strings.Join(parts, " · "))
}

func (a App) renderKeyHints() string {
	hints := []struct{ key, desc string }{
		{"r", a.cat.T("key_refresh")},
		{"q", a.cat.T("key_quit")},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, a.styles.Title.Render(h.key)+" "+a.styles.Muted.Render(h.desc))
	}
	return strings.Join(parts, "  ")
}
