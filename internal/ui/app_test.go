package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jung-wan-kim/usage-gate/internal/api"
	"github.com/jung-wan-kim/usage-gate/internal/cache"
	"github.com/jung-wan-kim/usage-gate/internal/config"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/refresher"
	"github.com/jung-wan-kim/usage-gate/internal/theme"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, fetch refresher.FetchFunc) (App, *cache.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	store := cache.New(cache.PathIn(t.TempDir()))
	token := func(context.Context) (string, error) { return "tok", nil }
	ref := refresher.New(store, cfg.TTL()).WithSources(token, fetch)

	app := NewApp(cfg, store, ref, theme.PlainRenderer(io.Discard))
	app.now = func() time.Time { return testNow }
	app.notifications.now = app.now
	return app, store
}

func usageFetch(fiveHour, sevenDay float64) refresher.FetchFunc {
	return func(context.Context, string) (*api.UsageData, error) {
		return &api.UsageData{
			FiveHour:  domain.NewWindow(fiveHour, ""),
			SevenDay:  domain.NewWindow(sevenDay, ""),
			FetchedAt: testNow,
		}, nil
	}
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestView_NoData(t *testing.T) {
	a, _ := newTestApp(t, usageFetch(0, 0))
	view := a.View()
	if !strings.Contains(view, "[Usage Gate] no data") {
		t.Errorf("view missing no-data line:\n%s", view)
	}
	if !strings.Contains(view, "no snapshot yet") {
		t.Errorf("view missing age line:\n%s", view)
	}
}

func TestRefreshUpdatesView(t *testing.T) {
	a, store := newTestApp(t, usageFetch(95, 40))

	msg := a.refresh(true)()
	a, _ = update(t, a, msg)

	view := a.View()
	if !strings.Contains(view, "Gate ACTIVE │ 5h 95%/90% →S │ 7d 40%/90%") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if !strings.Contains(view, "next refresh in 1m0s") {
		t.Errorf("view missing schedule:\n%s", view)
	}
	if _, ok := store.Read(); !ok {
		t.Error("refresh did not persist the snapshot")
	}
}

func TestRefreshFailureShowsNotification(t *testing.T) {
	a, _ := newTestApp(t, func(context.Context, string) (*api.UsageData, error) {
		return nil, errors.New("offline")
	})

	a, _ = update(t, a, a.refresh(true)())
	if !strings.Contains(a.View(), "last refresh: fetch failed") {
		t.Errorf("expected failure banner:\n%s", a.View())
	}

	a.now = func() time.Time { return testNow.Add(10 * time.Second) }
	a.notifications.now = a.now
	if strings.Contains(a.View(), "fetch failed") {
		t.Error("notification should expire")
	}
}

func TestTickSchedulesRefresh(t *testing.T) {
	a, _ := newTestApp(t, usageFetch(10, 10))
	a, _ = update(t, a, a.refresh(false)())

	a, _ = update(t, a, TickMsg(testNow))
	if a.refreshing {
		t.Error("tick before the TTL must not refresh")
	}

	a.now = func() time.Time { return testNow.Add(2 * time.Minute) }
	a, _ = update(t, a, TickMsg(testNow.Add(2*time.Minute)))
	if !a.refreshing {
		t.Error("tick after the TTL should refresh")
	}
}

func TestCacheChangedReloads(t *testing.T) {
	a, store := newTestApp(t, usageFetch(0, 0))
	store.Write(domain.Snapshot{
		FiveHour: domain.NewWindow(42, ""),
		SevenDay: domain.NewWindow(7, ""),
		CachedAt: testNow.Add(-5 * time.Second),
	})

	_, cmd := update(t, a, CacheChangedMsg{})
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	a, _ = update(t, a, cmd())

	view := a.View()
	if !strings.Contains(view, "5h 42%/90%") || !strings.Contains(view, "cached 5s ago") {
		t.Errorf("reload not reflected:\n%s", view)
	}
}

func TestQuitKeys(t *testing.T) {
	a, _ := newTestApp(t, usageFetch(0, 0))
	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}
