package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Window labels as shown to users.
const (
	FiveHourWindow = "5h"
	SevenDayWindow = "7d"
)

// Window is one rolling quota window as reported by the accounting service.
// Only utilization and resets_at are interpreted; the raw object is kept so
// a cache round-trip does not drop fields we do not know about.
type Window struct {
	Utilization float64 // 0-100+ percentage
	ResetsAt    string  // ISO 8601 timestamp, may be empty
	raw         json.RawMessage
}

// NewWindow builds a window without a raw backing object.
func NewWindow(utilization float64, resetsAt string) Window {
	return Window{Utilization: utilization, ResetsAt: resetsAt}
}

// ParseWindow reads a window from a raw JSON object. A null, missing or
// non-object value yields the zero window.
func ParseWindow(raw []byte) Window {
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return Window{}
	}
	return Window{
		Utilization: res.Get("utilization").Float(),
		ResetsAt:    res.Get("resets_at").String(),
		raw:         append(json.RawMessage(nil), bytes.TrimSpace(raw)...),
	}
}

func (w *Window) UnmarshalJSON(data []byte) error {
	*w = ParseWindow(data)
	return nil
}

func (w Window) MarshalJSON() ([]byte, error) {
	if len(w.raw) > 0 {
		return w.raw, nil
	}
	out := map[string]any{"utilization": w.Utilization}
	if w.ResetsAt != "" {
		out["resets_at"] = w.ResetsAt
	}
	return json.Marshal(out)
}

// ResetTime parses the resets_at string into time.Time.
func (w Window) ResetTime() (time.Time, error) {
	return time.Parse(time.RFC3339, w.ResetsAt)
}

// Remaining returns the duration until the window resets, clamped at zero.
func (w Window) Remaining(now time.Time) (time.Duration, bool) {
	reset, err := w.ResetTime()
	if err != nil {
		return 0, false
	}
	remaining := reset.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Exceeds reports whether utilization is at or over limit.
func (w Window) Exceeds(limit int) bool {
	return w.Utilization >= float64(limit)
}

// Percent formats utilization the way the service reports it: integers
// without a fraction, fractional values as-is.
func (w Window) Percent() string {
	return strconv.FormatFloat(w.Utilization, 'f', -1, 64) + "%"
}
