package email

import (
	"fmt"
	"strings"
	"time"
)

// Confirmation holds the booking details rendered into the client's
// confirmation email. Start and End are already in the business timezone.
type Confirmation struct {
	ClientName string
	Start      time.Time
	End        time.Time
	Office     string
	Notes      string
}

func (c Confirmation) Subject() string {
	return "Appointment Confirmation - " + c.Start.Format("Monday, 2 January 2006")
}

func (c Confirmation) Body() string {
	var b strings.Builder

	name := strings.TrimSpace(c.ClientName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("your appointment has been confirmed:\n\n")
	fmt.Fprintf(&b, "Date:     %s\n", c.Start.Format("Monday, 2 January 2006"))
	fmt.Fprintf(&b, "Time:     %s - %s (%s)\n", c.Start.Format("15:04"), c.End.Format("15:04"), c.Start.Format("MST"))
	fmt.Fprintf(&b, "Duration: %d minutes\n", int(c.End.Sub(c.Start).Minutes()))
	if office := strings.TrimSpace(c.Office); office != "" {
		fmt.Fprintf(&b, "Location: %s\n", office)
	}
	if notes := strings.TrimSpace(c.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes:    %s\n", notes)
	}
	b.WriteString("\nIf you need to reschedule or cancel, please reply to this email at least 24 hours in advance.\n")
	b.WriteString("\nWe look forward to seeing you.\n")
	return b.String()
}
