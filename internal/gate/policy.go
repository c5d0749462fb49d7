// Package gate decides whether a privileged task dispatch may run on the
// model it asked for.
//
// Decide is pure: it looks only at the cached snapshot, the configured
// limits and the request. How a downgrade is enforced is left to the hook
// package.
package gate

import (
	"fmt"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
)

// Decide returns Allow or Downgrade for req.
//
// When both windows are over their limit the 7-day fallback wins: the
// long window stays exhausted longer than the short one.
func Decide(snap *domain.Snapshot, limits domain.Limits, req domain.PendingRequest) domain.Decision {
	if !limits.Enabled || snap == nil {
		return domain.AllowDecision()
	}

	// A request that already names a cheap model was either downgraded by
	// an earlier pass or chosen deliberately. Never gate it again.
	if req.Model != "" && limits.IsCheap(req.Model) {
		return domain.AllowDecision()
	}

	exceeded5h := snap.FiveHour.Exceeds(limits.FiveHourLimit)
	exceeded7d := snap.SevenDay.Exceeds(limits.SevenDayLimit)

	var trigger domain.Trigger
	switch {
	case exceeded5h && exceeded7d:
		trigger = domain.TriggerBoth
	case exceeded5h:
		trigger = domain.Trigger5h
	case exceeded7d:
		trigger = domain.Trigger7d
	default:
		return domain.AllowDecision()
	}

	model := limits.FallbackFor(trigger)
	if model == "" {
		return domain.AllowDecision()
	}
	return domain.Decision{
		Kind:    domain.Downgrade,
		Model:   model,
		Reason:  Reason(snap, limits),
		Trigger: trigger,
	}
}

// Reason formats both windows against their limits, e.g.
// "5h:95%/90% 7d:40%/90%".
func Reason(snap *domain.Snapshot, limits domain.Limits) string {
	return fmt.Sprintf("5h:%s/%d%% 7d:%s/%d%%",
		snap.FiveHour.Percent(), limits.FiveHourLimit,
		snap.SevenDay.Percent(), limits.SevenDayLimit)
}
