// Package calendar provides the appointment stores behind the scheduling service:
// Google Calendar for production and an in-memory calendar for demos and tests.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

const reminderMinutes = 15

// GoogleConfig configures the Google Calendar adapter.
type GoogleConfig struct {
	CalendarID      string
	TokenPath       string // authorized-user token JSON
	CredentialsPath string // service account JSON, used when no token is configured
	Location        *time.Location
}

// GoogleCalendar implements scheduling.Calendar on the Google Calendar v3 API.
type GoogleCalendar struct {
	events     *gcal.EventsService
	calendarID string
	loc        *time.Location
	logger     *logging.Logger
}

// NewGoogleCalendar authenticates with the configured token or service account
// and returns a calendar adapter. Extra client options are appended last.
func NewGoogleCalendar(ctx context.Context, cfg GoogleConfig, logger *logging.Logger, extra ...option.ClientOption) (*GoogleCalendar, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if strings.TrimSpace(cfg.CalendarID) == "" {
		cfg.CalendarID = "primary"
	}

	var opts []option.ClientOption
	switch {
	case cfg.TokenPath != "":
		ts, err := LoadTokenSource(ctx, cfg.TokenPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(ts))
	case cfg.CredentialsPath != "":
		creds, err := LoadServiceAccount(ctx, cfg.CredentialsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	opts = append(opts, extra...)
	if len(opts) == 0 {
		return nil, errors.New("calendar: google calendar token or credentials path required")
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create google calendar client: %w", err)
	}
	return &GoogleCalendar{
		events:     svc.Events,
		calendarID: cfg.CalendarID,
		loc:        cfg.Location,
		logger:     logger,
	}, nil
}

// ListEvents returns single (expanded) events overlapping [start, end) ordered by start.
func (g *GoogleCalendar) ListEvents(ctx context.Context, start, end time.Time) ([]scheduling.Appointment, error) {
	var out []scheduling.Appointment
	call := g.events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			appt, ok := g.toAppointment(item)
			if !ok {
				g.logger.Warn("skipping calendar event without usable times", "event_id", item.Id)
				continue
			}
			out = append(out, appt)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	g.logger.Debug("calendar events listed", "start", start.Format(time.RFC3339), "count", len(out))
	return out, nil
}

// InsertEvent writes a timed event with zone-qualified start and end.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, ev scheduling.NewEvent) (*scheduling.Appointment, error) {
	tz := ev.TimeZone
	if tz == "" {
		tz = g.loc.String()
	}
	body := &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.In(g.loc).Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: ev.End.In(g.loc).Format(time.RFC3339), TimeZone: tz},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: reminderMinutes}},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, a := range ev.Attendees {
		body.Attendees = append(body.Attendees, &gcal.EventAttendee{Email: a.Email, DisplayName: a.DisplayName})
	}

	created, err := g.events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}
	appt, ok := g.toAppointment(created)
	if !ok {
		return nil, fmt.Errorf("calendar: inserted event %s has no usable times", created.Id)
	}
	return &appt, nil
}

// GetEvent fetches one event. Unknown and deleted ids wrap scheduling.ErrAppointmentNotFound.
func (g *GoogleCalendar) GetEvent(ctx context.Context, id string) (*scheduling.Appointment, error) {
	item, err := g.events.Get(g.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, g.wrapLookupErr("get", id, err)
	}
	appt, ok := g.toAppointment(item)
	if !ok {
		return nil, fmt.Errorf("calendar: event %s has no usable times", id)
	}
	return &appt, nil
}

// UpdateEvent rewrites the title, description and times of an existing event,
// preserving every other field stored by Google.
func (g *GoogleCalendar) UpdateEvent(ctx context.Context, appt scheduling.Appointment) (*scheduling.Appointment, error) {
	current, err := g.events.Get(g.calendarID, appt.ID).Context(ctx).Do()
	if err != nil {
		return nil, g.wrapLookupErr("get", appt.ID, err)
	}
	tz := g.loc.String()
	if current.Start != nil && current.Start.TimeZone != "" {
		tz = current.Start.TimeZone
	}
	current.Summary = appt.Title
	current.Description = appt.Description
	current.Start = &gcal.EventDateTime{DateTime: appt.Start.In(g.loc).Format(time.RFC3339), TimeZone: tz}
	current.End = &gcal.EventDateTime{DateTime: appt.End.In(g.loc).Format(time.RFC3339), TimeZone: tz}

	updated, err := g.events.Update(g.calendarID, appt.ID, current).Context(ctx).Do()
	if err != nil {
		return nil, g.wrapLookupErr("update", appt.ID, err)
	}
	out, ok := g.toAppointment(updated)
	if !ok {
		return nil, fmt.Errorf("calendar: updated event %s has no usable times", appt.ID)
	}
	return &out, nil
}

func (g *GoogleCalendar) wrapLookupErr(op, id string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return fmt.Errorf("calendar: %s event %s: %w", op, id, scheduling.ErrAppointmentNotFound)
	}
	return fmt.Errorf("calendar: %s event %s: %w", op, id, err)
}

// toAppointment converts an API event. dateTime values may carry "Z" or an
// offset; all are converted into the business zone.
func (g *GoogleCalendar) toAppointment(ev *gcal.Event) (scheduling.Appointment, bool) {
	if ev == nil || ev.Start == nil || ev.End == nil {
		return scheduling.Appointment{}, false
	}
	appt := scheduling.Appointment{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Status:      ev.Status,
		URL:         ev.HtmlLink,
	}
	switch {
	case ev.Start.DateTime != "" && ev.End.DateTime != "":
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return scheduling.Appointment{}, false
		}
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			return scheduling.Appointment{}, false
		}
		appt.Start, appt.End = start.In(g.loc), end.In(g.loc)
	case ev.Start.Date != "" && ev.End.Date != "":
		start, err := time.ParseInLocation("2006-01-02", ev.Start.Date, g.loc)
		if err != nil {
			return scheduling.Appointment{}, false
		}
		end, err := time.ParseInLocation("2006-01-02", ev.End.Date, g.loc)
		if err != nil {
			return scheduling.Appointment{}, false
		}
		appt.Start, appt.End, appt.AllDay = start, end, true
	default:
		return scheduling.Appointment{}, false
	}
	return appt, true
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read %s: %w", path, err)
	}
	return data, nil
}
