package bootstrap

import (
	"context"
	"fmt"

	"github.com/wolfman30/dental-receptionist/internal/calendar"
	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// BuildCalendar selects the appointment store named by CALENDAR_BACKEND.
func BuildCalendar(ctx context.Context, cfg *appconfig.Config, bizCal scheduling.BusinessCalendarConfig, logger *logging.Logger) (scheduling.Calendar, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.CalendarBackend {
	case appconfig.CalendarMemory:
		logger.Warn("using in-memory calendar; appointments are lost on restart")
		return calendar.NewMemoryCalendar(bizCal.Location()), nil
	case appconfig.CalendarGoogle, "":
		gc, err := calendar.NewGoogleCalendar(ctx, calendar.GoogleConfig{
			CalendarID:      cfg.CalendarID,
			TokenPath:       cfg.GoogleCalendarTokenPath,
			CredentialsPath: cfg.GoogleCalendarCredentialsPath,
			Location:        bizCal.Location(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: google calendar: %w", err)
		}
		logger.Info("google calendar connected", "calendar_id", cfg.CalendarID)
		return gc, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown calendar backend %q", cfg.CalendarBackend)
	}
}
