// Package events publishes domain events for downstream services. The
// scheduling service emits one event type: a confirmed booking, consumed by
// the notification service to send the client their confirmation email.
package events

import (
	"time"
)

const TopicAppointmentBooked = "scheduling.appointment.booked.v1"

// AppointmentBooked is the payload published after a successful booking.
// StartTime and EndTime are RFC3339 in the business timezone.
type AppointmentBooked struct {
	BookingID   string    `json:"booking_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	Summary     string    `json:"summary"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Timezone    string    `json:"timezone"`
	Notes       string    `json:"notes,omitempty"`

	// W3C trace context of the booking request, carried in the payload as
	// well as the Kafka headers so consumers can link their spans even when
	// an intermediary drops headers.
	Traceparent string `json:"traceparent,omitempty"`
	Tracestate  string `json:"tracestate,omitempty"`
}
