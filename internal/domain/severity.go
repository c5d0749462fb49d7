package domain

type Severity int

const (
	Nominal Severity = iota
	Warning
	Critical
)

// warningRatio is the fraction of a limit at which a window turns to Warning.
const warningRatio = 0.8

func SeverityFor(utilization float64, limit int) Severity {
	switch {
	case utilization >= float64(limit):
		return Critical
	case utilization >= float64(limit)*warningRatio:
		return Warning
	default:
		return Nominal
	}
}

// Worst returns the highest severity across both windows of a snapshot.
func (s Snapshot) Worst(l Limits) Severity {
	a := SeverityFor(s.FiveHour.Utilization, l.FiveHourLimit)
	b := SeverityFor(s.SevenDay.Utilization, l.SevenDayLimit)
	if b > a {
		return b
	}
	return a
}
