package booking

import (
	"fmt"
	"strings"
	"time"
)

// CutoffPolicy decides when a booking can no longer be edited or
// cancelled, based on its schedule's day compared with today (UTC).
type CutoffPolicy string

const (
	// CutoffLegacy locks bookings whose schedule date is after today.
	CutoffLegacy CutoffPolicy = "legacy"
	// CutoffShowtime locks bookings whose schedule date is before today.
	CutoffShowtime CutoffPolicy = "showtime"
)

// ParseCutoffPolicy reads a policy name; empty means CutoffLegacy.
func ParseCutoffPolicy(s string) (CutoffPolicy, error) {
	switch p := CutoffPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CutoffLegacy, nil
	case CutoffLegacy, CutoffShowtime:
		return p, nil
	default:
		return "", fmt.Errorf("unknown booking cutoff policy %q", s)
	}
}

// Locked reports whether a booking on a schedule dated scheduleDate is
// immutable at now.
func (p CutoffPolicy) Locked(scheduleDate, now time.Time) bool {
	sched, today := day(scheduleDate), day(now)
	switch p {
	case CutoffShowtime:
		return sched.Before(today)
	default:
		return sched.After(today)
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
