package statusline

import (
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/gate"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
)

// Advisory returns the note printed after a refresh, or "" when nothing
// needs attention. Over a limit it names the fallback the gate will apply;
// near a limit it warns.
func Advisory(snap *domain.Snapshot, limits domain.Limits, mode domain.Mode, cat i18n.Catalog) string {
	if snap == nil || !limits.Enabled {
		return ""
	}
	u5h, u7d := snap.FiveHour.Percent(), snap.SevenDay.Percent()

	switch snap.Worst(limits) {
	case domain.Critical:
		d := gate.Decide(snap, limits, domain.PendingRequest{Tool: "Task"})
		if d.Allowed() {
			return ""
		}
		if mode == domain.ModeBlock {
			return cat.Tf("advisory_blocking", u5h, u7d, d.Model)
		}
		return cat.Tf("advisory_exceeded", u5h, u7d, d.Model)
	case domain.Warning:
		return cat.Tf("advisory_warning", u5h, u7d, limits.FiveHourLimit, limits.SevenDayLimit)
	default:
		return ""
	}
}
