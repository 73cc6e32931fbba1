// Package policy holds the advisor's booking rules: allowed weekdays,
// opening hours, default appointment length, and the bounded look-ahead used
// when searching for alternatives. A BusinessPolicy is built once at startup
// and passed by value into every check, so the engine stays reentrant and
// testable with varied policies in parallel.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
)

type BusinessPolicy struct {
	Location        *time.Location
	Weekdays        [7]bool // indexed by time.Weekday
	OpenMinute      int     // minutes from midnight, inclusive
	CloseMinute     int     // minutes from midnight, exclusive
	DefaultDuration time.Duration
	LookAheadDays   int
}

// Default is the advisor-office policy: Monday through Friday, 09:00-17:00,
// one-hour appointments, 14-day alternative search window.
func Default(loc *time.Location) BusinessPolicy {
	if loc == nil {
		loc = time.UTC
	}
	var days [7]bool
	for wd := time.Monday; wd <= time.Friday; wd++ {
		days[wd] = true
	}
	return BusinessPolicy{
		Location:        loc,
		Weekdays:        days,
		OpenMinute:      9 * 60,
		CloseMinute:     17 * 60,
		DefaultDuration: time.Hour,
		LookAheadDays:   14,
	}
}

func (p BusinessPolicy) AllowsWeekday(wd time.Weekday) bool {
	return p.Weekdays[wd]
}

// DayWindow returns the business-hours window [open, close) for the calendar
// day containing t, in the policy location.
func (p BusinessPolicy) DayWindow(t time.Time) (time.Time, time.Time) {
	d := t.In(p.Location)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, p.Location)
	return midnight.Add(time.Duration(p.OpenMinute) * time.Minute),
		midnight.Add(time.Duration(p.CloseMinute) * time.Minute)
}

// Violation names the policy rule an interval breaks. The empty string means
// the interval is acceptable.
type Violation string

const (
	ViolationNone       Violation = ""
	ViolationWeekend    Violation = "weekend"
	ViolationOutOfHours Violation = "out_of_hours"
	ViolationPastDate   Violation = "past_date"
)

// Validate checks an interval against the policy and the reference time now.
// It encodes policy only: passing validation says nothing about availability,
// which is checked separately against the calendar.
func (p BusinessPolicy) Validate(iv availability.Interval, now time.Time) Violation {
	start := iv.Start.In(p.Location)
	end := iv.End.In(p.Location)

	if !p.AllowsWeekday(start.Weekday()) {
		return ViolationWeekend
	}
	open, closeAt := p.DayWindow(start)
	if start.Before(open) || end.After(closeAt) {
		return ViolationOutOfHours
	}
	if start.Before(now) {
		return ViolationPastDate
	}
	return ViolationNone
}

// ParseClock parses "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	c, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return c.Hour()*60 + c.Minute(), nil
}

// ParseWeekdays parses a comma-separated weekday list such as "Mon,Tue,Wed".
func ParseWeekdays(raw string) ([7]bool, error) {
	var days [7]bool
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		wd, ok := names[part]
		if !ok {
			return days, fmt.Errorf("unknown weekday %q", part)
		}
		days[wd] = true
	}
	return days, nil
}
