// Package ui is the live view behind `usage-gate watch`.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jung-wan-kim/usage-gate/internal/cache"
	"github.com/jung-wan-kim/usage-gate/internal/config"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	"github.com/jung-wan-kim/usage-gate/internal/refresher"
	"github.com/jung-wan-kim/usage-gate/internal/statusline"
	"github.com/jung-wan-kim/usage-gate/internal/theme"
)

// TickMsg drives the clock and scheduled refreshes.
type TickMsg time.Time

// CacheChangedMsg is sent by the file watcher when another process
// rewrites the cache.
type CacheChangedMsg struct{}

// refreshDoneMsg carries the result of a refresh command.
type refreshDoneMsg struct {
	snap    *domain.Snapshot
	outcome refresher.Outcome
}

// cacheLoadedMsg carries a snapshot re-read from disk.
type cacheLoadedMsg struct {
	snap *domain.Snapshot
}

type App struct {
	Config config.Config

	store     *cache.Store
	refresher *refresher.Refresher
	line      *statusline.Renderer
	styles    theme.Styles
	cat       i18n.Catalog

	snap        *domain.Snapshot
	outcome     refresher.Outcome
	hasOutcome  bool
	refreshing  bool
	nextRefresh time.Time

	notifications *NotificationManager

	now   func() time.Time
	width int
}

func NewApp(cfg config.Config, store *cache.Store, ref *refresher.Refresher, r *lipgloss.Renderer) App {
	cat := i18n.For(cfg.General.Language)
	styles := theme.NewStyles(r)
	snap, _ := store.Read()
	return App{
		Config:        cfg,
		store:         store,
		refresher:     ref,
		line:          statusline.NewRenderer(r, cat),
		styles:        styles,
		cat:           cat,
		snap:          snap,
		notifications: NewNotificationManager(styles.Warning),
		now:           time.Now,
		// Init starts the first refresh.
		refreshing: true,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("usage-gate"),
		a.refresh(false),
		doTick(),
	)
}

func doTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refresh runs the refresher off the UI goroutine. force ignores the TTL.
func (a App) refresh(force bool) tea.Cmd {
	ref := a.refresher
	return func() tea.Msg {
		ctx := context.Background()
		if force {
			snap, outcome := ref.Refresh(ctx)
			return refreshDoneMsg{snap: snap, outcome: outcome}
		}
		snap, outcome := ref.RefreshIfStale(ctx)
		return refreshDoneMsg{snap: snap, outcome: outcome}
	}
}

func (a App) reload() tea.Msg {
	snap, _ := a.store.Read()
	return cacheLoadedMsg{snap: snap}
}
