package timeparse

import (
	"errors"
	"testing"
	"time"
)

// Wednesday, reference time 10:00.
var wednesday = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func mustResolve(t *testing.T, phrase string, now time.Time) time.Time {
	t.Helper()
	got, err := Resolve(phrase, now)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", phrase, err)
	}
	return got
}

func TestResolve_NextMondayAt2pm(t *testing.T) {
	got := mustResolve(t, "next Monday at 2pm", wednesday)
	want := time.Date(2024, 6, 17, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_BareWeekdayIsNearestUpcoming(t *testing.T) {
	// Friday has not happened yet this week: bare "friday" is June 14.
	got := mustResolve(t, "friday at 10am", wednesday)
	want := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_NextWeekdaySkipsToFollowingWeek(t *testing.T) {
	// "next friday" said on a Wednesday skips the nearer June 14.
	got := mustResolve(t, "next friday at 10am", wednesday)
	want := time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_NextRuleConfigurable(t *testing.T) {
	rules := Rules{NextMeansFollowingWeek: false}
	got, err := ResolveWith("next friday at 10am", wednesday, rules)
	if err != nil {
		t.Fatalf("ResolveWith failed: %v", err)
	}
	want := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_TomorrowEvening(t *testing.T) {
	got := mustResolve(t, "tomorrow at 6pm", wednesday)
	want := time.Date(2024, 6, 13, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_TwentyFourHourClock(t *testing.T) {
	got := mustResolve(t, "monday 14:30", wednesday)
	want := time.Date(2024, 6, 17, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_TimeOnlyPicksSoonestDay(t *testing.T) {
	// 2pm is still ahead of the 10:00 reference: today.
	got := mustResolve(t, "2pm", wednesday)
	want := time.Date(2024, 6, 12, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected same day, got %s", got)
	}

	// 9am already passed: tomorrow.
	got = mustResolve(t, "9am", wednesday)
	want = time.Date(2024, 6, 13, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected next day, got %s", got)
	}
}

func TestResolve_NoonAndMidnight(t *testing.T) {
	got := mustResolve(t, "tomorrow at noon", wednesday)
	if got.Hour() != 12 || got.Day() != 13 {
		t.Fatalf("expected tomorrow 12:00, got %s", got)
	}
	got = mustResolve(t, "friday midnight", wednesday)
	if got.Hour() != 0 || got.Day() != 14 {
		t.Fatalf("expected friday 00:00, got %s", got)
	}
}

func TestResolve_NextWeekWithTime(t *testing.T) {
	got := mustResolve(t, "next week at 11am", wednesday)
	want := time.Date(2024, 6, 19, 11, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolve_DateOnlyFailsWithMissingTime(t *testing.T) {
	for _, phrase := range []string{"tomorrow", "next monday", "today", "friday"} {
		_, err := Resolve(phrase, wednesday)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Resolve(%q): expected ParseError, got %v", phrase, err)
		}
		if pe.Kind != MissingTime {
			t.Fatalf("Resolve(%q): expected missing_time, got %s", phrase, pe.Kind)
		}
	}
}

func TestResolve_GarbageFailsWithUnrecognized(t *testing.T) {
	for _, phrase := range []string{"", "whenever works", "the 32nd at 2pm", "next", "2pm tomorrow monday"} {
		_, err := Resolve(phrase, wednesday)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Resolve(%q): expected ParseError, got %v", phrase, err)
		}
		if pe.Kind != Unrecognized {
			t.Fatalf("Resolve(%q): expected unrecognized, got %s", phrase, pe.Kind)
		}
	}
}

func TestResolve_InvalidClockRejected(t *testing.T) {
	for _, phrase := range []string{"tomorrow at 13pm", "tomorrow at 0pm", "tomorrow at 25:00"} {
		_, err := Resolve(phrase, wednesday)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != Unrecognized {
			t.Fatalf("Resolve(%q): expected unrecognized, got %v", phrase, err)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	a := mustResolve(t, "next monday at 2pm", wednesday)
	b := mustResolve(t, "next monday at 2pm", wednesday)
	if !a.Equal(b) {
		t.Fatalf("resolution not idempotent: %s vs %s", a, b)
	}
}

func TestResolve_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, loc)
	got := mustResolve(t, "tomorrow at 2pm", now)
	if got.Location() != loc {
		t.Fatalf("expected result in %v, got %v", loc, got.Location())
	}
	if got.Hour() != 14 {
		t.Fatalf("expected 14:00 wall clock, got %s", got)
	}
}
