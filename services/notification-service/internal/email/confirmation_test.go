package email

import (
	"strings"
	"testing"
	"time"
)

func TestConfirmationSubject(t *testing.T) {
	c := Confirmation{
		Start: time.Date(2024, time.June, 17, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 17, 15, 0, 0, 0, time.UTC),
	}
	want := "Appointment Confirmation - Monday, 17 June 2024"
	if got := c.Subject(); got != want {
		t.Fatalf("subject = %q, want %q", got, want)
	}
}

func TestConfirmationBody(t *testing.T) {
	c := Confirmation{
		ClientName: "Dana Fischer",
		Start:      time.Date(2024, time.June, 17, 14, 0, 0, 0, time.UTC),
		End:        time.Date(2024, time.June, 17, 15, 0, 0, 0, time.UTC),
		Office:     "Hauptstrasse 1, Berlin",
		Notes:      "Bring last year's tax return",
	}
	body := c.Body()

	for _, want := range []string{
		"Hello Dana Fischer,",
		"Date:     Monday, 17 June 2024",
		"Time:     14:00 - 15:00",
		"Duration: 60 minutes",
		"Location: Hauptstrasse 1, Berlin",
		"Notes:    Bring last year's tax return",
		"reschedule",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestConfirmationBodyOmitsEmptyFields(t *testing.T) {
	c := Confirmation{
		Start: time.Date(2024, time.June, 17, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 17, 14, 30, 0, 0, time.UTC),
	}
	body := c.Body()

	if strings.Contains(body, "Location:") {
		t.Fatalf("body should omit empty location:\n%s", body)
	}
	if strings.Contains(body, "Notes:") {
		t.Fatalf("body should omit empty notes:\n%s", body)
	}
	if !strings.Contains(body, "Hello there,") {
		t.Fatalf("body should fall back to generic greeting:\n%s", body)
	}
	if !strings.Contains(body, "Duration: 30 minutes") {
		t.Fatalf("body missing duration:\n%s", body)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("from@x.test", "to@x.test", "Subject Line", "body text")
	for _, want := range []string{
		"From: from@x.test\r\n",
		"To: to@x.test\r\n",
		"Subject: Subject Line\r\n",
		"\r\n\r\nbody text\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
