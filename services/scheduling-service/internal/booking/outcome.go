package booking

import (
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/policy"
)

type Status string

const (
	StatusBooked          Status = "booked"
	StatusRejected        Status = "rejected"
	StatusExternalFailure Status = "external_failure"
)

// Reason explains a rejection. Values mirror the policy violations plus the
// two outcomes only the orchestrator can produce.
type Reason string

const (
	ReasonNeedsClarification Reason = "needs_clarification"
	ReasonWeekend            Reason = Reason(policy.ViolationWeekend)
	ReasonOutOfHours         Reason = Reason(policy.ViolationOutOfHours)
	ReasonPastDate           Reason = Reason(policy.ViolationPastDate)
	ReasonConflict           Reason = "conflict"
)

// Clarification tells the conversational layer which follow-up to ask when a
// phrase could not be resolved.
type Clarification string

const (
	ClarifyUnrecognized Clarification = "unrecognized"
	ClarifyMissingTime  Clarification = "missing_time"
)

// Cause classifies an external-collaborator failure.
type Cause string

const (
	CauseUnreachable    Cause = "unreachable"
	CauseTimeout        Cause = "timeout"
	CauseRemoteRejected Cause = "remote_rejected"
)

// Outcome is the structured result of a booking attempt. Exactly one of the
// three status shapes is populated; the conversational layer phrases the
// response itself from the tag and payload, never from raw strings.
type Outcome struct {
	Status Status

	// Booked
	Interval     *availability.Interval
	Confirmation string

	// Rejected
	Reason        Reason
	Clarification Clarification
	Suggestions   []availability.Interval

	// ExternalFailure
	Cause Cause
	Err   error
}

// ValidationResult is the engine's answer to "would this interval be
// bookable under policy", with alternatives attached on failure.
type ValidationResult struct {
	Valid       bool
	Reason      policy.Violation
	Suggestions []availability.Interval
}

// ClientInfo identifies the client a booking is for.
type ClientInfo struct {
	Name  string
	Email string
	Notes string
}
