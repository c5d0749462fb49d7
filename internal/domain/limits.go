package domain

import "strings"

const (
	DefaultLimit         = 90
	DefaultFallbackModel = "sonnet"
)

// Limits holds the gate thresholds and the fallback models they map to.
type Limits struct {
	FiveHourLimit int
	SevenDayLimit int
	FallbackFor5h string
	FallbackFor7d string
	// CheapModels lists models that are never gated in addition to the
	// two fallbacks.
	CheapModels []string
	Enabled     bool
}

func DefaultLimits() Limits {
	return Limits{
		FiveHourLimit: DefaultLimit,
		SevenDayLimit: DefaultLimit,
		FallbackFor5h: DefaultFallbackModel,
		FallbackFor7d: DefaultFallbackModel,
		CheapModels:   []string{"haiku"},
		Enabled:       true,
	}
}

// IsCheap reports whether model is one of the fallbacks or a configured
// cheap model. Matching is case-insensitive and ignores surrounding space.
func (l Limits) IsCheap(model string) bool {
	m := NormalizeModel(model)
	if m == "" {
		return false
	}
	if m == NormalizeModel(l.FallbackFor5h) || m == NormalizeModel(l.FallbackFor7d) {
		return true
	}
	for _, c := range l.CheapModels {
		if m == NormalizeModel(c) {
			return true
		}
	}
	return false
}

// FallbackFor returns the fallback model configured for a window.
func (l Limits) FallbackFor(t Trigger) string {
	if t == Trigger5h {
		return l.FallbackFor5h
	}
	return l.FallbackFor7d
}

func NormalizeModel(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

// ShortModel abbreviates a model id to the letter shown in the status line.
func ShortModel(model string) string {
	m := NormalizeModel(model)
	switch {
	case strings.Contains(m, "sonnet"):
		return "S"
	case strings.Contains(m, "haiku"):
		return "H"
	case strings.Contains(m, "opus"):
		return "O"
	case m == "":
		return ""
	}
	return strings.ToUpper(m[:1])
}
