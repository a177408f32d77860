package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-receptionist/internal/observability/metrics"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

var schedulingTracer = otel.Tracer("dental.internal.scheduling")

const (
	// MaxDurationMinutes bounds a single appointment.
	MaxDurationMinutes = 240
	maxAlternatives    = 5
	nextDaysSlotLimit  = 5
	displayDateLayout  = "January 2, 2006"
	displayTimeLayout  = "03:04 PM"
)

// BusinessProfile carries the clinic contact details written onto events.
type BusinessProfile struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Options configures optional collaborators of the Service.
type Options struct {
	Clock    Clock
	Logger   *logging.Logger
	Locker   DayLocker
	Notifier Notifier
	Auditor  Auditor
	Metrics  *metrics.SchedulingMetrics
	Profile  BusinessProfile
}

// Service exposes availability lookups and booking against an external calendar.
// Every decision re-reads the calendar; the service keeps no appointment state.
type Service struct {
	cfg      BusinessCalendarConfig
	cal      Calendar
	clock    Clock
	logger   *logging.Logger
	locker   DayLocker
	notifier Notifier
	auditor  Auditor
	metrics  *metrics.SchedulingMetrics
	profile  BusinessProfile
	resolver DateResolver
	slots    SlotGenerator
	detector ConflictDetector
}

// NewService validates cfg and builds a scheduling service.
func NewService(cfg BusinessCalendarConfig, cal Calendar, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, errors.New("scheduling: calendar required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock(cfg.Location())
	}
	return &Service{
		cfg:      cfg,
		cal:      cal,
		clock:    opts.Clock,
		logger:   opts.Logger,
		locker:   opts.Locker,
		notifier: opts.Notifier,
		auditor:  opts.Auditor,
		metrics:  opts.Metrics,
		profile:  opts.Profile,
		resolver: NewDateResolver(cfg),
		slots:    NewSlotGenerator(cfg),
		detector: NewConflictDetector(cfg.Buffer()),
	}, nil
}

// Config returns the business calendar the service enforces.
func (s *Service) Config() BusinessCalendarConfig { return s.cfg }

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.cfg.Location())
}

// Today returns the current business-zone date.
func (s *Service) Today() Date { return s.cfg.Today(s.now()) }

// ResolveNaturalDate turns phrases like "tomorrow" or "21st July" into a date.
func (s *Service) ResolveNaturalDate(text string) (Date, error) {
	return s.resolver.Resolve(text, s.now())
}

// ResolveNaturalDateOrFallback resolves text, defaulting to the next open day
// after today when nothing can be parsed.
func (s *Service) ResolveNaturalDateOrFallback(text string) (Date, bool) {
	return s.resolver.ResolveOrFallback(text, s.now())
}

// dayEvents performs a fresh read of every event on date.
func (s *Service) dayEvents(ctx context.Context, date Date) ([]Appointment, error) {
	start := s.cfg.At(date, 0, 0)
	return s.listEvents(ctx, start, start.AddDate(0, 0, 1))
}

func (s *Service) listEvents(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	began := time.Now()
	events, err := s.cal.ListEvents(ctx, start, end)
	s.metrics.ObserveCalendarCall(OpList, time.Since(began))
	if err != nil {
		s.logger.Error("calendar list failed", "start", start, "end", end, "error", err)
		return nil, externalErr(OpList, err)
	}
	return events, nil
}

func (s *Service) getEvent(ctx context.Context, id string) (*Appointment, error) {
	began := time.Now()
	appt, err := s.cal.GetEvent(ctx, id)
	s.metrics.ObserveCalendarCall(OpGet, time.Since(began))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		s.logger.Error("calendar get failed", "event_id", id, "error", err)
		return nil, externalErr(OpGet, err)
	}
	return appt, nil
}

func (s *Service) updateEvent(ctx context.Context, appt Appointment) (*Appointment, error) {
	began := time.Now()
	updated, err := s.cal.UpdateEvent(ctx, appt)
	s.metrics.ObserveCalendarCall(OpUpdate, time.Since(began))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		s.logger.Error("calendar update failed", "event_id", appt.ID, "error", err)
		return nil, externalErr(OpUpdate, err)
	}
	return updated, nil
}

func (s *Service) lockDay(ctx context.Context, date Date) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, date)
	if err != nil {
		s.logger.Warn("booking day lock unavailable", "date", date.String(), "error", err)
		return nil, externalErr(OpLock, err)
	}
	return unlock, nil
}

func (s *Service) closedMessage() string {
	return fmt.Sprintf("We are closed on %ss. Please choose a different day.", s.cfg.ClosedDay())
}

// GetAvailableSlots lists the open slots of durationMinutes on date. A
// non-positive duration uses the default appointment length.
func (s *Service) GetAvailableSlots(ctx context.Context, date Date, durationMinutes int) (*Availability, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.available_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("dental.date", date.String()),
		attribute.Int("dental.duration_minutes", durationMinutes),
	)

	duration := s.cfg.DefaultDuration()
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	}

	result := &Availability{Date: date, Slots: []Slot{}}
	now := s.now()
	switch {
	case s.cfg.IsClosedDay(date):
		result.Message = s.closedMessage()
	case date.Before(s.cfg.Today(now)):
		result.Message = "Cannot show slots for past dates."
	default:
		events, err := s.dayEvents(ctx, date)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if slots := s.slots.Generate(date, duration, events, now); len(slots) > 0 {
			result.Slots = slots
			result.Available = true
			result.Message = fmt.Sprintf("Found %d available slots for %s", len(slots), date.Format(displayDateLayout))
		} else {
			result.Message = fmt.Sprintf("No available slots for %s. Please choose a different date.", date.Format(displayDateLayout))
		}
	}
	s.metrics.ObserveSlotQuery(result.Available)
	return result, nil
}

// CheckTodayAvailability lists today's remaining default-length slots.
func (s *Service) CheckTodayAvailability(ctx context.Context) (*Availability, error) {
	now := s.now()
	today := s.cfg.Today(now)
	result := &Availability{Date: today, Slots: []Slot{}}
	if s.cfg.IsClosedDay(today) {
		result.Message = fmt.Sprintf("We are closed on %ss.", s.cfg.ClosedDay())
		s.metrics.ObserveSlotQuery(false)
		return result, nil
	}
	if !now.Before(s.cfg.EndOfBusinessDay(today)) {
		result.Message = "Business hours are over for today."
		s.metrics.ObserveSlotQuery(false)
		return result, nil
	}

	availability, err := s.GetAvailableSlots(ctx, today, 0)
	if err != nil {
		return nil, err
	}
	if availability.Available {
		availability.Message = fmt.Sprintf("Found %d available slots for today.", len(availability.Slots))
	} else {
		availability.Message = "No available slots left for today."
	}
	return availability, nil
}

// NextDaysAvailability returns up to days upcoming open days that still have
// slots, starting tomorrow and scanning at most a week past the request.
func (s *Service) NextDaysAvailability(ctx context.Context, days int) ([]DayAvailability, error) {
	if days <= 0 {
		days = 3
	}
	now := s.now()
	today := s.cfg.Today(now)
	out := make([]DayAvailability, 0, days)
	for i := 1; i < days+8 && len(out) < days; i++ {
		date := today.AddDays(i)
		if s.cfg.IsClosedDay(date) {
			continue
		}
		events, err := s.dayEvents(ctx, date)
		if err != nil {
			return nil, err
		}
		slots := s.slots.Generate(date, s.cfg.DefaultDuration(), events, now)
		if len(slots) == 0 {
			continue
		}
		total := len(slots)
		if len(slots) > nextDaysSlotLimit {
			slots = slots[:nextDaysSlotLimit]
		}
		out = append(out, DayAvailability{
			Date:       date,
			DayName:    date.Weekday().String(),
			Formatted:  date.Format(displayDateLayout),
			Slots:      slots,
			TotalSlots: total,
		})
	}
	return out, nil
}

// GetAppointment fetches one event by id.
func (s *Service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrAppointmentNotFound
	}
	return s.getEvent(ctx, id)
}

// ListAppointments returns timed events from the start of from through the end
// of to, in chronological order. Cancelled events are included and marked.
func (s *Service) ListAppointments(ctx context.Context, from, to Date) ([]Appointment, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	events, err := s.listEvents(ctx, s.cfg.At(from, 0, 0), s.cfg.At(to.AddDays(1), 0, 0))
	if err != nil {
		return nil, err
	}
	timed := make([]Appointment, 0, len(events))
	for _, e := range events {
		if !e.AllDay {
			timed = append(timed, e)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].Start.Before(timed[j].Start) })
	return timed, nil
}

// BusinessInfo summarizes the clinic's rules for display.
type BusinessInfo struct {
	Business               BusinessProfile   `json:"business"`
	Hours                  string            `json:"hours"`
	OpenHour               int               `json:"open_hour"`
	CloseHour              int               `json:"close_hour"`
	ClosedDay              string            `json:"closed_day"`
	Timezone               string            `json:"timezone"`
	SlotStrideMinutes      int               `json:"slot_stride_minutes"`
	DefaultDurationMinutes int               `json:"appointment_duration_minutes"`
	BufferMinutes          int               `json:"buffer_minutes"`
	MinLeadTimeMinutes     int               `json:"min_lead_time_minutes"`
	AppointmentTypes       map[string]string `json:"appointment_types"`
}

// BusinessInfo reports hours, durations and appointment types.
func (s *Service) BusinessInfo() BusinessInfo {
	types := make(map[string]string, len(AppointmentTypes))
	for k, v := range AppointmentTypes {
		types[k] = v
	}
	return BusinessInfo{
		Business:               s.profile,
		Hours:                  s.cfg.HoursLabel(),
		OpenHour:               s.cfg.OpenHour,
		CloseHour:              s.cfg.CloseHour,
		ClosedDay:              s.cfg.ClosedDay().String(),
		Timezone:               s.cfg.Location().String(),
		SlotStrideMinutes:      s.cfg.SlotStrideMinutes,
		DefaultDurationMinutes: s.cfg.DefaultDurationMinutes,
		BufferMinutes:          s.cfg.BufferMinutes,
		MinLeadTimeMinutes:     s.cfg.MinLeadTimeMinutes,
		AppointmentTypes:       types,
	}
}
