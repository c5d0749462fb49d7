package domain

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// Snapshot is the cached state of both quota windows at fetch time.
type Snapshot struct {
	FiveHour Window
	SevenDay Window
	CachedAt time.Time
}

type snapshotJSON struct {
	FiveHour Window `json:"five_hour"`
	SevenDay Window `json:"seven_day"`
	CachedAt int64  `json:"cached_at"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var cachedAt int64
	if !s.CachedAt.IsZero() {
		cachedAt = s.CachedAt.Unix()
	}
	return json.Marshal(snapshotJSON{
		FiveHour: s.FiveHour,
		SevenDay: s.SevenDay,
		CachedAt: cachedAt,
	})
}

var errNoWindows = errors.New("snapshot has neither five_hour nor seven_day")

// UnmarshalJSON accepts any numeric cached_at. A missing or malformed
// timestamp leaves CachedAt zero, which reads as stale rather than invalid.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("snapshot is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	fiveHour, sevenDay := root.Get("five_hour"), root.Get("seven_day")
	if !fiveHour.IsObject() && !sevenDay.IsObject() {
		return errNoWindows
	}

	s.FiveHour = ParseWindow([]byte(fiveHour.Raw))
	s.SevenDay = ParseWindow([]byte(sevenDay.Raw))
	s.CachedAt = time.Time{}
	if ts := root.Get("cached_at"); ts.Type == gjson.Number && ts.Float() > 0 {
		sec, frac := math.Modf(ts.Float())
		s.CachedAt = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	}
	return nil
}

// Age returns how long ago the snapshot was fetched. A snapshot without a
// timestamp is treated as infinitely old.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.CachedAt.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(s.CachedAt)
}

// IsStale reports now - CachedAt >= ttl. Stale data is still usable.
func (s Snapshot) IsStale(now time.Time, ttl time.Duration) bool {
	return s.Age(now) >= ttl
}
