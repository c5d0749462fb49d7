package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/hook"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	"github.com/jung-wan-kim/usage-gate/internal/logging"
	"github.com/jung-wan-kim/usage-gate/internal/statusline"
	"github.com/jung-wan-kim/usage-gate/internal/theme"
)

type mockCache struct {
	snap *domain.Snapshot
}

func (m mockCache) Read() (*domain.Snapshot, bool) {
	return m.snap, m.snap != nil
}

const taskPayload = `{"hook_event_name":"PreToolUse","tool_name":"Task","tool_input":{"model":"opus","prompt":"review the diff"}}`

func main() {
	logging.Discard()

	now := time.Now().UTC()
	mock := func(fiveHour, sevenDay float64) *domain.Snapshot {
		return &domain.Snapshot{
			FiveHour: domain.NewWindow(fiveHour, now.Add(1*time.Hour+55*time.Minute).Format(time.RFC3339)),
			SevenDay: domain.NewWindow(sevenDay, now.Add(5*24*time.Hour).Format(time.RFC3339)),
			CachedAt: now,
		}
	}

	scenarios := []struct {
		name    string
		snap    *domain.Snapshot
		enabled bool
	}{
		{"no data", nil, true},
		{"nominal", mock(42, 18.5), true},
		{"approaching", mock(78, 30), true},
		{"5h exceeded", mock(95, 40), true},
		{"7d exceeded", mock(35, 91), true},
		{"both exceeded", mock(97, 93), true},
		{"gate off", mock(95, 40), false},
		{"gate off, no data", nil, false},
	}

	for _, lang := range []string{"en", "ko"} {
		cat := i18n.For(lang)
		r := statusline.NewRenderer(theme.Renderer(os.Stdout), cat)
		fmt.Printf("== %s ==\n\n", lang)

		for _, sc := range scenarios {
			limits := domain.DefaultLimits()
			limits.Enabled = sc.enabled

			fmt.Printf("[%s]\n", sc.name)
			fmt.Println("  " + r.Line(sc.snap, limits))
			if adv := statusline.Advisory(sc.snap, limits, domain.ModeTransparent, cat); adv != "" {
				fmt.Println("  refresh:     " + adv)
			}

			for _, mode := range []domain.Mode{domain.ModeTransparent, domain.ModeBlock} {
				g := hook.Gate{Snapshots: mockCache{sc.snap}, Limits: limits, Mode: mode, Catalog: cat}
				res := g.Evaluate([]byte(taskPayload))
				switch {
				case len(res.Stdout) > 0:
					fmt.Printf("  %-12s exit %d %s\n", mode+":", res.ExitCode, res.Stdout)
				case res.Stderr != "":
					fmt.Printf("  %-12s exit %d %s", mode+":", res.ExitCode, res.Stderr)
				default:
					fmt.Printf("  %-12s exit %d allow\n", mode+":", res.ExitCode)
				}
			}
			fmt.Println()
		}
	}
}
