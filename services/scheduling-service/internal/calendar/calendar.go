// Package calendar defines the external calendar collaborator the scheduling
// engine books against, plus the two production implementations: Google
// Calendar and a Postgres-backed appointment book. The calendar is the source
// of truth for busy time; the engine never caches or owns it.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
)

// ErrConflict is returned by CreateEvent when the remote calendar rejects the
// event because the slot was taken between the engine's availability check
// and the create call. The engine surfaces it as an external failure, not a
// crash: the check and the create are not atomic with respect to other
// bookers.
var ErrConflict = errors.New("calendar: slot already booked")

// EventMetadata carries the client-facing details attached to a booking.
type EventMetadata struct {
	Summary     string
	Description string
	ClientName  string
	ClientEmail string
}

// Calendar is the advisor's calendar seen through the two capabilities the
// engine needs. FetchBusy returns the busy intervals of the calendar day
// containing day, in the advisor's zone; order is not guaranteed, the engine
// re-sorts defensively. CreateEvent books the interval and returns an opaque
// confirmation reference.
type Calendar interface {
	FetchBusy(ctx context.Context, day time.Time) ([]availability.Interval, error)
	CreateEvent(ctx context.Context, iv availability.Interval, meta EventMetadata) (string, error)
}
