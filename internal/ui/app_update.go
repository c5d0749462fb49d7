package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jung-wan-kim/usage-gate/internal/refresher"
)

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		case "r":
			if a.refreshing {
				return a, nil
			}
			a.refreshing = true
			return a, a.refresh(true)
		}
		return a, nil

	case TickMsg:
		a.notifications.Expire()
		if !a.refreshing && !a.now().Before(a.nextRefresh) {
			a.refreshing = true
			return a, tea.Batch(a.refresh(false), doTick())
		}
		return a, doTick()

	case refreshDoneMsg:
		a.refreshing = false
		a.outcome = msg.outcome
		a.hasOutcome = true
		a.nextRefresh = a.now().Add(a.Config.TTL())
		if msg.snap != nil {
			a.snap = msg.snap
		}
		switch msg.outcome {
		case refresher.OutcomeNoCredential, refresher.OutcomeFetchFailed, refresher.OutcomeWriteFailed:
			a.notifications.SetMessage(a.cat.Tf("watch_outcome", msg.outcome))
		}
		return a, nil

	case CacheChangedMsg:
		return a, a.reload

	case cacheLoadedMsg:
		if msg.snap != nil {
			a.snap = msg.snap
		}
		return a, nil
	}

	return a, nil
}
