// Package timeparse resolves natural-language scheduling phrases such as
// "next monday at 2pm" into absolute times. Recognized phrase shapes are a
// closed set (relative day words, weekday names with optional "next",
// explicit clock times, and combinations) resolved by ordered matching, so
// resolution is deterministic for a fixed phrase and reference time.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ErrorKind string

const (
	// Unrecognized means the phrase matched none of the known shapes.
	Unrecognized ErrorKind = "unrecognized"
	// MissingTime means a date was understood but no clock time was given.
	// No default time is assumed; the caller must ask for one.
	MissingTime ErrorKind = "missing_time"
)

type ParseError struct {
	Kind   ErrorKind
	Phrase string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %s", e.Phrase, e.Kind)
}

// Rules is the configurable ambiguity policy for weekday phrases.
type Rules struct {
	// NextMeansFollowingWeek makes "next <weekday>" resolve to that weekday
	// of the following calendar week (weeks starting Monday), even when the
	// weekday has not yet occurred this week. When false, "next <weekday>"
	// behaves like a bare weekday name: the nearest upcoming occurrence.
	NextMeansFollowingWeek bool
}

func DefaultRules() Rules {
	return Rules{NextMeansFollowingWeek: true}
}

// Resolve parses phrase against the reference time now using DefaultRules.
// The result is in now's location.
func Resolve(phrase string, now time.Time) (time.Time, error) {
	return ResolveWith(phrase, now, DefaultRules())
}

var (
	reClockTime    = regexp.MustCompile(`\b([0-2]?\d):([0-5]\d)\s*(am|pm)?\b`)
	reHourMeridiem = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	reNamedTime    = regexp.MustCompile(`\b(noon|midday|midnight)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

var fillerWords = map[string]bool{
	"at": true, "on": true, "the": true, "this": true,
	"a": true, "an": true, "for": true, "oclock": true,
}

// ResolveWith parses phrase against the reference time now. A phrase with a
// date but no time fails with MissingTime; a phrase with a time but no date
// resolves to the soonest day where that wall-clock time is not before now.
func ResolveWith(phrase string, now time.Time, rules Rules) (time.Time, error) {
	original := phrase
	text := normalize(phrase)
	if text == "" {
		return time.Time{}, &ParseError{Kind: Unrecognized, Phrase: original}
	}

	text, hour, minute, hasTime, err := extractClockTime(text, original)
	if err != nil {
		return time.Time{}, err
	}

	dayOffset, hasDate, err := extractDayOffset(text, now, rules, original)
	if err != nil {
		return time.Time{}, err
	}

	switch {
	case !hasDate && !hasTime:
		return time.Time{}, &ParseError{Kind: Unrecognized, Phrase: original}
	case hasDate && !hasTime:
		return time.Time{}, &ParseError{Kind: MissingTime, Phrase: original}
	case !hasDate && hasTime:
		candidate := atClock(now, 0, hour, minute)
		if candidate.Before(now) {
			candidate = atClock(now, 1, hour, minute)
		}
		return candidate, nil
	default:
		return atClock(now, dayOffset, hour, minute), nil
	}
}

func normalize(phrase string) string {
	s := strings.ToLower(strings.TrimSpace(phrase))
	s = strings.NewReplacer(".", "", ",", " ", "'", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// extractClockTime removes the first recognized clock expression from text
// and returns the remainder plus the 24h hour and minute.
func extractClockTime(text, original string) (rest string, hour, minute int, ok bool, err error) {
	if m := reClockTime.FindStringSubmatchIndex(text); m != nil {
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min, _ := strconv.Atoi(text[m[4]:m[5]])
		meridiem := ""
		if m[6] >= 0 {
			meridiem = text[m[6]:m[7]]
		}
		h, valid := to24Hour(h, meridiem)
		if !valid {
			return "", 0, 0, false, &ParseError{Kind: Unrecognized, Phrase: original}
		}
		return cut(text, m[0], m[1]), h, min, true, nil
	}
	if m := reHourMeridiem.FindStringSubmatchIndex(text); m != nil {
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		h, valid := to24Hour(h, text[m[4]:m[5]])
		if !valid {
			return "", 0, 0, false, &ParseError{Kind: Unrecognized, Phrase: original}
		}
		return cut(text, m[0], m[1]), h, 0, true, nil
	}
	if m := reNamedTime.FindStringSubmatchIndex(text); m != nil {
		h := 12
		if text[m[2]:m[3]] == "midnight" {
			h = 0
		}
		return cut(text, m[0], m[1]), h, 0, true, nil
	}
	return text, 0, 0, false, nil
}

func to24Hour(h int, meridiem string) (int, bool) {
	switch meridiem {
	case "":
		return h, h <= 23
	case "am":
		if h < 1 || h > 12 {
			return 0, false
		}
		if h == 12 {
			return 0, true
		}
		return h, true
	case "pm":
		if h < 1 || h > 12 {
			return 0, false
		}
		if h == 12 {
			return 12, true
		}
		return h + 12, true
	default:
		return 0, false
	}
}

// extractDayOffset reads the date words from text and returns the day offset
// from now. Any leftover token that is not a filler word makes the whole
// phrase unrecognized rather than silently guessed at.
func extractDayOffset(text string, now time.Time, rules Rules, original string) (offset int, ok bool, err error) {
	tokens := strings.Fields(text)
	hasDate := false

	set := func(n int) error {
		if hasDate {
			return &ParseError{Kind: Unrecognized, Phrase: original}
		}
		offset, hasDate = n, true
		return nil
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if fillerWords[tok] {
			continue
		}
		switch tok {
		case "today", "now":
			err = set(0)
		case "tomorrow":
			err = set(1)
		case "yesterday":
			err = set(-1)
		case "next":
			if i+1 >= len(tokens) {
				return 0, false, &ParseError{Kind: Unrecognized, Phrase: original}
			}
			i++
			if tokens[i] == "week" {
				err = set(7)
				break
			}
			wd, known := weekdays[tokens[i]]
			if !known {
				return 0, false, &ParseError{Kind: Unrecognized, Phrase: original}
			}
			if rules.NextMeansFollowingWeek {
				err = set(daysToFollowingWeek(now.Weekday(), wd))
			} else {
				err = set(daysToUpcoming(now.Weekday(), wd))
			}
		default:
			if wd, known := weekdays[tok]; known {
				err = set(daysToUpcoming(now.Weekday(), wd))
				break
			}
			return 0, false, &ParseError{Kind: Unrecognized, Phrase: original}
		}
		if err != nil {
			return 0, false, err
		}
	}
	return offset, hasDate, nil
}

// daysToUpcoming is the distance to the nearest upcoming occurrence of wd,
// always 1..7 days ahead (a bare weekday never means the reference day).
func daysToUpcoming(from, wd time.Weekday) int {
	d := (int(wd) - int(from) + 7) % 7
	if d == 0 {
		d = 7
	}
	return d
}

// daysToFollowingWeek is the distance to wd in the following calendar week,
// with weeks starting on Monday.
func daysToFollowingWeek(from, wd time.Weekday) int {
	return 7 - isoIndex(from) + isoIndex(wd)
}

// isoIndex maps Monday to 0 .. Sunday to 6.
func isoIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func atClock(now time.Time, dayOffset, hour, minute int) time.Time {
	d := now.AddDate(0, 0, dayOffset)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
}

// cut removes text[i:j] and re-collapses whitespace.
func cut(text string, i, j int) string {
	return strings.Join(strings.Fields(text[:i]+" "+text[j:]), " ")
}
