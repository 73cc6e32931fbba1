// Package booking composes time resolution, policy validation, availability
// checking, and suggestion generation into a single attempt-to-book operation
// against an external calendar collaborator. The engine is stateless and
// reentrant; the only blocking points are the two calendar calls.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/calendar"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/policy"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/suggest"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/timeparse"
)

var tracer = otel.Tracer("scheduling-engine")

type Engine struct {
	pol            policy.BusinessPolicy
	cal            calendar.Calendar
	rules          timeparse.Rules
	logger         *slog.Logger
	maxSuggestions int
}

type Config struct {
	Policy         policy.BusinessPolicy
	Calendar       calendar.Calendar
	Rules          timeparse.Rules
	Logger         *slog.Logger
	MaxSuggestions int
}

func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 3
	}
	return &Engine{
		pol:            cfg.Policy,
		cal:            cfg.Calendar,
		rules:          cfg.Rules,
		logger:         cfg.Logger,
		maxSuggestions: cfg.MaxSuggestions,
	}
}

func (e *Engine) Policy() policy.BusinessPolicy {
	return e.pol
}

// AttemptBooking runs parse -> validate -> availability -> create and always
// returns an outcome: rejections carry a reason and alternatives where
// computable, collaborator errors become external failures, and the single
// CreateEvent call is the only side effect. It is never retried here; retry
// policy belongs to the caller.
func (e *Engine) AttemptBooking(ctx context.Context, phrase string, now time.Time, client ClientInfo) Outcome {
	ctx, span := tracer.Start(ctx, "booking.attempt")
	defer span.End()

	now = now.In(e.pol.Location)

	start, err := timeparse.ResolveWith(phrase, now, e.rules)
	if err != nil {
		var pe *timeparse.ParseError
		clarify := ClarifyUnrecognized
		if errors.As(err, &pe) && pe.Kind == timeparse.MissingTime {
			clarify = ClarifyMissingTime
		}
		span.SetAttributes(attribute.String("booking.status", string(StatusRejected)))
		e.logger.Info("phrase not resolvable", "clarification", string(clarify))
		return Outcome{
			Status:        StatusRejected,
			Reason:        ReasonNeedsClarification,
			Clarification: clarify,
			Suggestions:   []availability.Interval{},
		}
	}

	iv := availability.NewInterval(start, e.pol.DefaultDuration)

	if v := e.pol.Validate(iv, now); v != policy.ViolationNone {
		span.SetAttributes(attribute.String("booking.status", string(StatusRejected)))
		return Outcome{
			Status:      StatusRejected,
			Reason:      Reason(v),
			Suggestions: e.alternatives(ctx, iv, suggest.CauseOf(v), now, nil),
		}
	}

	busy, err := e.fetchBusy(ctx, iv.Start)
	if err != nil {
		return e.externalFailure(span, "fetch busy intervals", err)
	}

	if availability.Conflicts(iv, busy) {
		span.SetAttributes(attribute.String("booking.status", string(StatusRejected)))
		known := map[int64][]availability.Interval{dayKey(iv.Start, e.pol.Location): busy}
		return Outcome{
			Status:      StatusRejected,
			Reason:      ReasonConflict,
			Suggestions: e.alternatives(ctx, iv, suggest.CauseConflict, now, known),
		}
	}

	ref, err := e.createEvent(ctx, iv, client)
	if err != nil {
		return e.externalFailure(span, "create event", err)
	}

	span.SetAttributes(attribute.String("booking.status", string(StatusBooked)))
	e.logger.Info("appointment booked",
		"start", iv.Start.Format(time.RFC3339),
		"end", iv.End.Format(time.RFC3339),
		"confirmation", ref,
	)
	return Outcome{Status: StatusBooked, Interval: &iv, Confirmation: ref}
}

// Validate answers whether an interval would be bookable under policy,
// attaching alternatives on failure. It does not consult the calendar for
// the interval itself; availability is the booking flow's job.
func (e *Engine) Validate(ctx context.Context, iv availability.Interval, now time.Time) ValidationResult {
	now = now.In(e.pol.Location)
	v := e.pol.Validate(iv, now)
	if v == policy.ViolationNone {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{
		Valid:       false,
		Reason:      v,
		Suggestions: e.alternatives(ctx, iv, suggest.CauseOf(v), now, nil),
	}
}

// DaySlots returns the free business-hours slots of the day containing day.
func (e *Engine) DaySlots(ctx context.Context, day time.Time) ([]availability.Interval, error) {
	if !e.pol.AllowsWeekday(day.In(e.pol.Location).Weekday()) {
		return nil, nil
	}
	busy, err := e.fetchBusy(ctx, day)
	if err != nil {
		return nil, err
	}
	open, closeAt := e.pol.DayWindow(day)
	return availability.FreeSlots(open, closeAt, busy, e.pol.DefaultDuration), nil
}

// alternatives runs the suggestion generator with a busy lookup backed by the
// calendar, memoized per day so a single attempt never fetches a day twice.
func (e *Engine) alternatives(ctx context.Context, failed availability.Interval, cause suggest.Cause, now time.Time, known map[int64][]availability.Interval) []availability.Interval {
	cache := known
	if cache == nil {
		cache = make(map[int64][]availability.Interval)
	}
	busyFor := func(day time.Time) ([]availability.Interval, error) {
		key := dayKey(day, e.pol.Location)
		if busy, ok := cache[key]; ok {
			return busy, nil
		}
		busy, err := e.fetchBusy(ctx, day)
		if err != nil {
			return nil, err
		}
		cache[key] = busy
		return busy, nil
	}
	return suggest.Alternatives(failed, cause, e.pol, now, busyFor, e.maxSuggestions)
}

func (e *Engine) fetchBusy(ctx context.Context, day time.Time) ([]availability.Interval, error) {
	ctx, span := tracer.Start(ctx, "calendar.fetch_busy")
	defer span.End()
	busy, err := e.cal.FetchBusy(ctx, day)
	if err != nil {
		span.RecordError(err)
	}
	return busy, err
}

func (e *Engine) createEvent(ctx context.Context, iv availability.Interval, client ClientInfo) (string, error) {
	ctx, span := tracer.Start(ctx, "calendar.create_event")
	defer span.End()
	meta := calendar.EventMetadata{
		Summary:     "Appointment with " + client.Name,
		Description: client.Notes,
		ClientName:  client.Name,
		ClientEmail: client.Email,
	}
	ref, err := e.cal.CreateEvent(ctx, iv, meta)
	if err != nil {
		span.RecordError(err)
	}
	return ref, err
}

func (e *Engine) externalFailure(span trace.Span, op string, err error) Outcome {
	cause := causeOf(err)
	span.SetAttributes(
		attribute.String("booking.status", string(StatusExternalFailure)),
		attribute.String("booking.cause", string(cause)),
	)
	e.logger.Error("calendar collaborator failed", "op", op, "cause", string(cause), "err", err)
	return Outcome{Status: StatusExternalFailure, Cause: cause, Err: err}
}

func causeOf(err error) Cause {
	switch {
	case errors.Is(err, calendar.ErrConflict):
		return CauseRemoteRejected
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CauseTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}
	return CauseUnreachable
}

func dayKey(t time.Time, loc *time.Location) int64 {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Unix()
}
