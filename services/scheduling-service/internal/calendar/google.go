package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
)

// GoogleConfig locates the OAuth2 material for the advisor's Google account.
// CredentialsPath points at the OAuth client secrets JSON, TokenPath at a
// previously authorized token JSON (the authorization flow itself is an
// operator task, not something this service runs).
type GoogleConfig struct {
	CredentialsPath string
	TokenPath       string
	CalendarID      string
	Location        *time.Location
}

// GoogleCalendar implements Calendar on top of the Google Calendar API.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

func NewGoogleCalendar(ctx context.Context, cfg GoogleConfig) (*GoogleCalendar, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	creds, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	raw, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("read google token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parse google token: %w", err)
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, &token))
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &GoogleCalendar{svc: svc, calendarID: cfg.CalendarID, loc: cfg.Location}, nil
}

func (c *GoogleCalendar) FetchBusy(ctx context.Context, day time.Time) ([]availability.Interval, error) {
	d := day.In(c.loc)
	dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var busy []availability.Interval
	for _, ev := range events.Items {
		// All-day events carry only a date, not a dateTime; they do not block
		// timed appointment slots.
		if ev.Start == nil || ev.End == nil || ev.Start.DateTime == "" || ev.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, availability.Interval{Start: start.In(c.loc), End: end.In(c.loc)})
	}
	return busy, nil
}

func (c *GoogleCalendar) CreateEvent(ctx context.Context, iv availability.Interval, meta EventMetadata) (string, error) {
	event := &gcal.Event{
		Summary:     meta.Summary,
		Description: meta.Description,
		Start: &gcal.EventDateTime{
			DateTime: iv.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: iv.End.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			return "", ErrConflict
		}
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}
