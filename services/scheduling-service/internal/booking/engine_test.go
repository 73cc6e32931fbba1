package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/calendar"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/policy"
)

// fakeCalendar is an in-memory Calendar for engine tests. Busy intervals are
// keyed by calendar date; errors are injected per call site.
type fakeCalendar struct {
	busy      map[string][]availability.Interval
	fetchErr  error
	createErr error
	created   []availability.Interval
}

func (f *fakeCalendar) FetchBusy(_ context.Context, day time.Time) ([]availability.Interval, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.busy[day.Format("2006-01-02")], nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, iv availability.Interval, _ calendar.EventMetadata) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, iv)
	return "evt-1", nil
}

func newTestEngine(cal calendar.Calendar) *Engine {
	return NewEngine(Config{
		Policy:   policy.Default(time.UTC),
		Calendar: cal,
	})
}

// Wednesday, well inside business hours.
var wednesday = time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

var client = ClientInfo{Name: "Dana Fischer", Email: "dana@example.com"}

func TestAttemptBookingBooksFreeSlot(t *testing.T) {
	cal := &fakeCalendar{busy: map[string][]availability.Interval{}}
	e := newTestEngine(cal)

	out := e.AttemptBooking(context.Background(), "next monday at 2pm", wednesday, client)
	if out.Status != StatusBooked {
		t.Fatalf("status = %s, want booked (reason=%s cause=%s)", out.Status, out.Reason, out.Cause)
	}
	if out.Confirmation != "evt-1" {
		t.Fatalf("confirmation = %q, want evt-1", out.Confirmation)
	}
	want := time.Date(2024, time.June, 17, 14, 0, 0, 0, time.UTC)
	if out.Interval == nil || !out.Interval.Start.Equal(want) {
		t.Fatalf("booked start = %v, want %v", out.Interval, want)
	}
	if got := out.Interval.Duration(); got != time.Hour {
		t.Fatalf("booked duration = %v, want 1h", got)
	}
	if len(cal.created) != 1 {
		t.Fatalf("created %d events, want 1", len(cal.created))
	}
}

func TestAttemptBookingUnrecognizedPhrase(t *testing.T) {
	e := newTestEngine(&fakeCalendar{})

	out := e.AttemptBooking(context.Background(), "whenever works for you", wednesday, client)
	if out.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", out.Status)
	}
	if out.Reason != ReasonNeedsClarification {
		t.Fatalf("reason = %s, want needs_clarification", out.Reason)
	}
	if out.Clarification != ClarifyUnrecognized {
		t.Fatalf("clarification = %s, want unrecognized", out.Clarification)
	}
	if len(out.Suggestions) != 0 {
		t.Fatalf("suggestions = %v, want none", out.Suggestions)
	}
}

func TestAttemptBookingMissingTime(t *testing.T) {
	e := newTestEngine(&fakeCalendar{})

	out := e.AttemptBooking(context.Background(), "tomorrow", wednesday, client)
	if out.Status != StatusRejected || out.Reason != ReasonNeedsClarification {
		t.Fatalf("got status=%s reason=%s, want rejected/needs_clarification", out.Status, out.Reason)
	}
	if out.Clarification != ClarifyMissingTime {
		t.Fatalf("clarification = %s, want missing_time", out.Clarification)
	}
}

func TestAttemptBookingWeekendRejectedWithAlternatives(t *testing.T) {
	cal := &fakeCalendar{busy: map[string][]availability.Interval{}}
	e := newTestEngine(cal)

	// Saturday 2024-06-15.
	out := e.AttemptBooking(context.Background(), "saturday at 11am", wednesday, client)
	if out.Status != StatusRejected || out.Reason != ReasonWeekend {
		t.Fatalf("got status=%s reason=%s, want rejected/weekend", out.Status, out.Reason)
	}
	if len(out.Suggestions) == 0 {
		t.Fatal("expected alternatives for weekend rejection")
	}
	// Alternatives keep the requested clock time on following business days.
	first := out.Suggestions[0]
	wantFirst := time.Date(2024, time.June, 17, 11, 0, 0, 0, time.UTC)
	if !first.Start.Equal(wantFirst) {
		t.Fatalf("first suggestion = %v, want %v", first.Start, wantFirst)
	}
	if len(cal.created) != 0 {
		t.Fatal("rejection must not create events")
	}
}

func TestAttemptBookingOutOfHours(t *testing.T) {
	e := newTestEngine(&fakeCalendar{busy: map[string][]availability.Interval{}})

	out := e.AttemptBooking(context.Background(), "tomorrow at 7am", wednesday, client)
	if out.Status != StatusRejected || out.Reason != ReasonOutOfHours {
		t.Fatalf("got status=%s reason=%s, want rejected/out_of_hours", out.Status, out.Reason)
	}
	if len(out.Suggestions) == 0 {
		t.Fatal("expected alternatives for out-of-hours rejection")
	}
}

func TestAttemptBookingPastDate(t *testing.T) {
	e := newTestEngine(&fakeCalendar{busy: map[string][]availability.Interval{}})

	out := e.AttemptBooking(context.Background(), "yesterday at 2pm", wednesday, client)
	if out.Status != StatusRejected || out.Reason != ReasonPastDate {
		t.Fatalf("got status=%s reason=%s, want rejected/past_date", out.Status, out.Reason)
	}
}

func TestAttemptBookingConflictSuggestsFreeSlots(t *testing.T) {
	day := "2024-06-17"
	cal := &fakeCalendar{busy: map[string][]availability.Interval{
		day: {
			{Start: time.Date(2024, time.June, 17, 13, 30, 0, 0, time.UTC), End: time.Date(2024, time.June, 17, 15, 0, 0, 0, time.UTC)},
		},
	}}
	e := newTestEngine(cal)

	out := e.AttemptBooking(context.Background(), "next monday at 2pm", wednesday, client)
	if out.Status != StatusRejected || out.Reason != ReasonConflict {
		t.Fatalf("got status=%s reason=%s, want rejected/conflict", out.Status, out.Reason)
	}
	if len(out.Suggestions) == 0 {
		t.Fatal("expected alternatives for conflict rejection")
	}
	for _, s := range out.Suggestions {
		if availability.Conflicts(s, cal.busy[s.Start.Format("2006-01-02")]) {
			t.Fatalf("suggestion %v overlaps busy time", s)
		}
	}
	if len(cal.created) != 0 {
		t.Fatal("conflict must not create events")
	}
}

func TestAttemptBookingFetchFailure(t *testing.T) {
	e := newTestEngine(&fakeCalendar{fetchErr: errors.New("connection refused")})

	out := e.AttemptBooking(context.Background(), "next monday at 2pm", wednesday, client)
	if out.Status != StatusExternalFailure {
		t.Fatalf("status = %s, want external_failure", out.Status)
	}
	if out.Cause != CauseUnreachable {
		t.Fatalf("cause = %s, want unreachable", out.Cause)
	}
	if out.Err == nil {
		t.Fatal("external failure must carry the underlying error")
	}
}

func TestAttemptBookingCreateLostRace(t *testing.T) {
	e := newTestEngine(&fakeCalendar{
		busy:      map[string][]availability.Interval{},
		createErr: calendar.ErrConflict,
	})

	out := e.AttemptBooking(context.Background(), "next monday at 2pm", wednesday, client)
	if out.Status != StatusExternalFailure {
		t.Fatalf("status = %s, want external_failure", out.Status)
	}
	if out.Cause != CauseRemoteRejected {
		t.Fatalf("cause = %s, want remote_rejected", out.Cause)
	}
}

func TestAttemptBookingCreateTimeout(t *testing.T) {
	e := newTestEngine(&fakeCalendar{
		busy:      map[string][]availability.Interval{},
		createErr: context.DeadlineExceeded,
	})

	out := e.AttemptBooking(context.Background(), "next monday at 2pm", wednesday, client)
	if out.Status != StatusExternalFailure || out.Cause != CauseTimeout {
		t.Fatalf("got status=%s cause=%s, want external_failure/timeout", out.Status, out.Cause)
	}
}

func TestValidate(t *testing.T) {
	e := newTestEngine(&fakeCalendar{busy: map[string][]availability.Interval{}})

	ok := availability.NewInterval(time.Date(2024, time.June, 13, 14, 0, 0, 0, time.UTC), time.Hour)
	res := e.Validate(context.Background(), ok, wednesday)
	if !res.Valid || res.Reason != policy.ViolationNone {
		t.Fatalf("got valid=%v reason=%s, want valid", res.Valid, res.Reason)
	}

	sat := availability.NewInterval(time.Date(2024, time.June, 15, 14, 0, 0, 0, time.UTC), time.Hour)
	res = e.Validate(context.Background(), sat, wednesday)
	if res.Valid || res.Reason != policy.ViolationWeekend {
		t.Fatalf("got valid=%v reason=%s, want invalid/weekend", res.Valid, res.Reason)
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("invalid result should carry alternatives")
	}
}

func TestDaySlots(t *testing.T) {
	day := time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: map[string][]availability.Interval{
		"2024-06-17": {
			{Start: time.Date(2024, time.June, 17, 9, 0, 0, 0, time.UTC), End: time.Date(2024, time.June, 17, 12, 0, 0, 0, time.UTC)},
		},
	}}
	e := newTestEngine(cal)

	slots, err := e.DaySlots(context.Background(), day)
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1: %v", len(slots), slots)
	}
	wantStart := time.Date(2024, time.June, 17, 12, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.June, 17, 17, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(wantStart) || !slots[0].End.Equal(wantEnd) {
		t.Fatalf("slot = %v, want %v-%v", slots[0], wantStart, wantEnd)
	}
}

func TestDaySlotsWeekendEmpty(t *testing.T) {
	e := newTestEngine(&fakeCalendar{})

	slots, err := e.DaySlots(context.Background(), time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots on a Sunday, want 0", len(slots))
	}
}
