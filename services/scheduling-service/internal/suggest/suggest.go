// Package suggest proposes alternative appointment slots after a booking
// request fails validation or conflicts with existing commitments. The search
// is bounded by the policy look-ahead window and every proposal independently
// passes the business-rule validator and a conflict check against the busy
// intervals of its own day.
package suggest

import (
	"time"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/policy"
)

// Cause names the failure that triggered the search.
type Cause string

const (
	CauseWeekend    Cause = "weekend"
	CauseOutOfHours Cause = "out_of_hours"
	CausePastDate   Cause = "past_date"
	CauseConflict   Cause = "conflict"
)

// CauseOf maps a policy violation to a suggestion cause.
func CauseOf(v policy.Violation) Cause {
	return Cause(v)
}

// BusyFunc returns the busy intervals for the calendar day containing the
// given time. Implementations typically wrap the external calendar; an error
// makes the generator skip that day rather than risk suggesting a taken slot.
type BusyFunc func(day time.Time) ([]availability.Interval, error)

const defaultMax = 3

// Alternatives returns up to max acceptable slots near the failed interval.
// Strategy by cause:
//   - weekend/past_date: the same clock time on following valid weekdays;
//   - out_of_hours: the nearest boundary-clamped time, same day first;
//   - conflict: the first free default-length slots, same day then following
//     days.
//
// It returns fewer than max (possibly none) when the bounded look-ahead is
// exhausted.
func Alternatives(failed availability.Interval, cause Cause, pol policy.BusinessPolicy, now time.Time, busyFor BusyFunc, max int) []availability.Interval {
	if max <= 0 {
		max = defaultMax
	}
	lookahead := pol.LookAheadDays
	if lookahead <= 0 {
		lookahead = 14
	}
	dur := failed.Duration()
	if dur <= 0 {
		dur = pol.DefaultDuration
	}
	now = now.In(pol.Location)
	failedStart := failed.Start.In(pol.Location)
	if busyFor == nil {
		busyFor = func(time.Time) ([]availability.Interval, error) { return nil, nil }
	}

	out := make([]availability.Interval, 0, max)
	seen := make(map[int64]bool)
	accept := func(c availability.Interval) {
		if len(out) >= max || seen[c.Start.Unix()] {
			return
		}
		if pol.Validate(c, now) != policy.ViolationNone {
			return
		}
		busy, err := busyFor(c.Start)
		if err != nil {
			return
		}
		if availability.Conflicts(c, busy) {
			return
		}
		seen[c.Start.Unix()] = true
		out = append(out, c)
	}

	switch cause {
	case CauseWeekend, CausePastDate:
		base := failedStart
		if base.Before(now) {
			base = now
		}
		for off := 0; off <= lookahead && len(out) < max; off++ {
			day := base.AddDate(0, 0, off)
			accept(availability.NewInterval(sameClock(failedStart, day), dur))
		}

	case CauseOutOfHours:
		clamped := clampIntoHours(failedStart, dur, pol)
		for off := 0; off <= lookahead && len(out) < max; off++ {
			day := clamped.AddDate(0, 0, off)
			accept(availability.NewInterval(sameClock(clamped, day), dur))
		}

	case CauseConflict:
		for off := 0; off <= lookahead && len(out) < max; off++ {
			day := failedStart.AddDate(0, 0, off)
			if !pol.AllowsWeekday(day.Weekday()) {
				continue
			}
			busy, err := busyFor(day)
			if err != nil {
				continue
			}
			open, closeAt := pol.DayWindow(day)
			for _, gap := range availability.FreeSlots(open, closeAt, busy, dur) {
				start := gap.Start
				if start.Before(now) {
					start = roundUp(now, 15*time.Minute)
				}
				if gap.End.Sub(start) < dur {
					continue
				}
				accept(availability.NewInterval(start, dur))
				if len(out) >= max {
					break
				}
			}
		}
	}
	return out
}

// clampIntoHours moves an out-of-hours start to the nearest business-hours
// boundary on the same day.
func clampIntoHours(start time.Time, dur time.Duration, pol policy.BusinessPolicy) time.Time {
	open, closeAt := pol.DayWindow(start)
	if start.Before(open) {
		return open
	}
	if start.Add(dur).After(closeAt) {
		return closeAt.Add(-dur)
	}
	return start
}

// sameClock places from's wall-clock time onto day's date.
func sameClock(from, day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, day.Location())
}

func roundUp(t time.Time, step time.Duration) time.Time {
	r := t.Round(step)
	if r.Before(t) {
		r = r.Add(step)
	}
	return r
}
