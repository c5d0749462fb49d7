package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSnapshot_IsStale(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	ttl := 60 * time.Second

	tests := []struct {
		name     string
		cachedAt time.Time
		want     bool
	}{
		{"just fetched", now, false},
		{"one second before ttl", now.Add(-ttl + time.Second), false},
		{"exactly ttl", now.Add(-ttl), true},
		{"ttl plus one second", now.Add(-ttl - time.Second), true},
		{"no timestamp", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{CachedAt: tt.cachedAt}
			if got := s.IsStale(now, ttl); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_JSONLayout(t *testing.T) {
	raw := `{"five_hour":{"utilization":95,"resets_at":"2025-01-15T17:00:00Z","extra":"kept"},"seven_day":{"utilization":40.5},"cached_at":1760000000}`

	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.FiveHour.Utilization != 95 {
		t.Errorf("five_hour utilization = %v, want 95", s.FiveHour.Utilization)
	}
	if s.SevenDay.Utilization != 40.5 {
		t.Errorf("seven_day utilization = %v, want 40.5", s.SevenDay.Utilization)
	}
	if s.CachedAt.Unix() != 1_760_000_000 {
		t.Errorf("cached_at = %d", s.CachedAt.Unix())
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"extra":"kept"`) {
		t.Errorf("unknown window fields dropped: %s", out)
	}
	if !strings.Contains(string(out), `"cached_at":1760000000`) {
		t.Errorf("cached_at not written as unix seconds: %s", out)
	}
}

func TestSnapshot_NullWindow(t *testing.T) {
	var s Snapshot
	if err := json.Unmarshal([]byte(`{"five_hour":null,"seven_day":{"utilization":12}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.FiveHour.Utilization != 0 {
		t.Errorf("null window utilization = %v, want 0", s.FiveHour.Utilization)
	}
	out, _ := json.Marshal(s.FiveHour)
	if string(out) != `{"utilization":0}` {
		t.Errorf("null window marshals to %s", out)
	}
}

func TestWindow_Remaining(t *testing.T) {
	now := time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)

	w := NewWindow(50, "2025-01-15T17:00:00Z")
	got, ok := w.Remaining(now)
	if !ok || got != 2*time.Hour {
		t.Errorf("Remaining() = %v, %v; want 2h, true", got, ok)
	}

	past := NewWindow(50, "2025-01-15T14:00:00Z")
	if got, ok := past.Remaining(now); !ok || got != 0 {
		t.Errorf("past reset: got %v, %v; want 0, true", got, ok)
	}

	if _, ok := NewWindow(50, "not-a-date").Remaining(now); ok {
		t.Error("expected ok=false for invalid resets_at")
	}
}

func TestWindow_Percent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{95, "95%"},
		{40.5, "40.5%"},
		{0, "0%"},
		{112, "112%"},
	}
	for _, tt := range tests {
		if got := NewWindow(tt.in, "").Percent(); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnapshot_LenientCachedAt(t *testing.T) {
	windows := `"five_hour":{"utilization":99},"seven_day":{"utilization":99}`
	tests := []struct {
		name     string
		cachedAt string
		wantUnix int64
	}{
		{"integer", `,"cached_at":1760000000`, 1_760_000_000},
		{"fractional", `,"cached_at":1760000000.5`, 1_760_000_000},
		{"missing", ``, 0},
		{"string", `,"cached_at":"yesterday"`, 0},
		{"negative", `,"cached_at":-3`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snapshot
			if err := json.Unmarshal([]byte("{"+windows+tt.cachedAt+"}"), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s.FiveHour.Utilization != 99 || s.SevenDay.Utilization != 99 {
				t.Errorf("windows lost: %+v", s)
			}
			if tt.wantUnix == 0 {
				if !s.CachedAt.IsZero() {
					t.Errorf("cached_at = %v, want zero", s.CachedAt)
				}
				if !s.IsStale(time.Now(), time.Hour) {
					t.Error("snapshot without a usable timestamp must be stale")
				}
				return
			}
			if s.CachedAt.Unix() != tt.wantUnix {
				t.Errorf("cached_at = %d, want %d", s.CachedAt.Unix(), tt.wantUnix)
			}
		})
	}
}

func TestSnapshot_RequiresAWindow(t *testing.T) {
	for _, raw := range []string{`{}`, `{"cached_at":1760000000}`, `{"five_hour":5,"seven_day":null}`} {
		var s Snapshot
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", raw)
		}
	}
}
