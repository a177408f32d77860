package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Book validates req against the business rules, re-reads the target day and
// commits the appointment when no conflict is found. Rejections are returned
// as results; only calendar or lock failures produce an error.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("dental.date", req.Date),
		attribute.String("dental.time", req.Time),
	)

	req.PatientName = strings.TrimSpace(req.PatientName)
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)

	result, err := s.book(ctx, req)
	s.recordOutcome(ctx, span, AuditBook, req.ContactPhone, result, err)
	return result, err
}

func (s *Service) book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if req.PatientName == "" || req.ContactPhone == "" {
		return rejected(KindValidation, ReasonMissingField, "Patient name and phone number are required."), nil
	}
	if !ValidPhone(req.ContactPhone) {
		return rejected(KindValidation, ReasonInvalidPhone, "Please provide a valid phone number (e.g., +92-321-1234567 or 0321-1234567)."), nil
	}
	if req.ContactEmail != "" && !ValidEmail(req.ContactEmail) {
		return rejected(KindValidation, ReasonInvalidEmail, "Please provide a valid email address or leave it blank."), nil
	}

	slot, rej := s.requestedInterval(req.Date, req.Time, req.DurationMinutes, s.cfg.DefaultDuration())
	if rej != nil {
		return rej, nil
	}
	now := s.now()
	if rej := s.checkBusinessRules(slot, now); rej != nil {
		return rej, nil
	}

	date := DateOf(slot.Start)
	unlock, err := s.lockDay(ctx, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.dayEvents(ctx, date)
	if err != nil {
		return nil, err
	}
	if rej := s.conflictRejection(date, slot, existing, now, "Time slot %s conflicts with existing appointment %q. Please choose a different time."); rej != nil {
		return rej, nil
	}

	apptType := NormalizeAppointmentType(req.AppointmentType)
	minutes := int(slot.Duration() / time.Minute)
	event := NewEvent{
		Interval:    slot,
		Title:       fmt.Sprintf("%s - %s", AppointmentTypeLabel(apptType), req.PatientName),
		Description: s.eventDescription(req, apptType, minutes),
		Location:    s.profile.Address,
		TimeZone:    s.cfg.Location().String(),
		Attendees:   s.attendees(req.ContactEmail),
	}

	began := time.Now()
	created, err := s.cal.InsertEvent(ctx, event)
	s.metrics.ObserveCalendarCall(OpInsert, time.Since(began))
	if err != nil {
		s.logger.Error("calendar insert failed", "start", slot.Start, "error", err)
		return nil, externalErr(OpInsert, err)
	}

	s.logger.Info("appointment booked",
		"event_id", created.ID,
		"start", slot.Start.Format(time.RFC3339),
		"duration_minutes", minutes,
		"type", apptType,
	)
	s.notify(ctx, Confirmation{
		EventID:         created.ID,
		EventURL:        created.URL,
		PatientName:     req.PatientName,
		Phone:           req.ContactPhone,
		Email:           req.ContactEmail,
		AppointmentType: AppointmentTypeLabel(apptType),
		Interval:        slot,
		DurationMinutes: minutes,
	})

	return &BookingResult{
		Status:   StatusBooked,
		EventID:  created.ID,
		EventURL: created.URL,
		Interval: &slot,
		Message:  fmt.Sprintf("Appointment successfully booked for %s", req.PatientName),
	}, nil
}

// Reschedule moves an existing appointment after applying the same rules as
// Book. The appointment being moved never conflicts with itself.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (*BookingResult, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.reschedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("dental.event_id", req.EventID),
		attribute.String("dental.date", req.Date),
		attribute.String("dental.time", req.Time),
	)

	result, err := s.reschedule(ctx, req)
	s.recordOutcome(ctx, span, AuditReschedule, "", result, err)
	return result, err
}

func (s *Service) reschedule(ctx context.Context, req RescheduleRequest) (*BookingResult, error) {
	current, err := s.GetAppointment(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return rejected(KindValidation, ReasonCancelled, "This appointment has been cancelled and cannot be rescheduled."), nil
	}

	fallback := current.Interval().Duration()
	if fallback <= 0 {
		fallback = s.cfg.DefaultDuration()
	}
	slot, rej := s.requestedInterval(req.Date, req.Time, req.DurationMinutes, fallback)
	if rej != nil {
		return rej, nil
	}
	now := s.now()
	if rej := s.checkBusinessRules(slot, now); rej != nil {
		return rej, nil
	}

	date := DateOf(slot.Start)
	unlock, err := s.lockDay(ctx, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.dayEvents(ctx, date)
	if err != nil {
		return nil, err
	}
	others := existing[:0:0]
	for _, e := range existing {
		if e.ID != current.ID {
			others = append(others, e)
		}
	}
	if rej := s.conflictRejection(date, slot, others, now, "Cannot reschedule to %s - conflicts with existing appointment %q."); rej != nil {
		return rej, nil
	}

	moved := *current
	moved.Start = slot.Start
	moved.End = slot.End
	moved.Description = strings.TrimSpace(fmt.Sprintf("%s\n\nRescheduled at: %s\nNew time: %s",
		current.Description, now.Format("2006-01-02 15:04:05 MST"), slot.Start.Format("2006-01-02 15:04 MST")))
	updated, err := s.updateEvent(ctx, moved)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment rescheduled", "event_id", updated.ID, "start", slot.Start.Format(time.RFC3339))
	return &BookingResult{
		Status:   StatusBooked,
		EventID:  updated.ID,
		EventURL: updated.URL,
		Interval: &slot,
		Message:  "Appointment rescheduled successfully",
	}, nil
}

// Cancel marks an appointment cancelled so it no longer blocks its slot. The
// event stays on the calendar with the reason and time appended.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*Appointment, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("dental.event_id", id))

	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if appt.IsCancelled() {
		return appt, nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Cancelled by patient"
	}

	cancelled := *appt
	cancelled.Title = strings.TrimSpace(CancelledPrefix + " " + appt.Title)
	cancelled.Description = strings.TrimSpace(fmt.Sprintf("%s\n\nCancellation Reason: %s\nCancelled at: %s",
		appt.Description, reason, s.now().Format("2006-01-02 15:04:05 MST")))
	updated, err := s.updateEvent(ctx, cancelled)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment cancelled", "event_id", id, "reason", reason)
	s.audit(ctx, AuditRecord{Action: AuditCancel, Outcome: "cancelled", Reason: reason, EventID: id, RequestedStart: appt.Start})
	return updated, nil
}

// requestedInterval parses a YYYY-MM-DD date and clock time into a business-zone
// interval. A zero duration falls back to fallback.
func (s *Service) requestedInterval(dateStr, timeStr string, durationMinutes int, fallback time.Duration) (Interval, *BookingResult) {
	if strings.TrimSpace(dateStr) == "" || strings.TrimSpace(timeStr) == "" {
		return Interval{}, rejected(KindValidation, ReasonMissingField, "Appointment date and time are required.")
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return Interval{}, rejected(KindValidation, ReasonInvalidDate, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD.", dateStr))
	}
	hour, minute, ok := ParseClock(timeStr)
	if !ok {
		return Interval{}, rejected(KindValidation, ReasonInvalidTime, fmt.Sprintf("Invalid time format: %s", timeStr))
	}
	duration := fallback
	switch {
	case durationMinutes < 0 || durationMinutes > MaxDurationMinutes:
		return Interval{}, rejected(KindValidation, ReasonInvalidDuration,
			fmt.Sprintf("Appointment duration must be between 1 and %d minutes.", MaxDurationMinutes))
	case durationMinutes > 0:
		duration = time.Duration(durationMinutes) * time.Minute
	}
	start := s.cfg.At(date, hour, minute)
	return Interval{Start: start, End: start.Add(duration)}, nil
}

// checkBusinessRules applies the deterministic rules in user-facing order.
func (s *Service) checkBusinessRules(slot Interval, now time.Time) *BookingResult {
	closing := s.cfg.EndOfBusinessDay(DateOf(slot.Start))
	switch {
	case !slot.Start.After(now):
		return rejected(KindBusinessRule, ReasonPast, "Cannot book appointments in the past. Please select a future date and time.")
	case slot.Start.Before(now.Add(s.cfg.LeadTime())):
		return rejected(KindBusinessRule, ReasonTooSoon,
			fmt.Sprintf("Appointments must be booked at least %d minutes in advance. Please choose a later time.", s.cfg.MinLeadTimeMinutes))
	case !s.cfg.IsWithinBusinessHours(slot.Start) || !s.cfg.IsWithinBusinessHours(slot.End.Add(-time.Minute)):
		return rejected(KindBusinessRule, ReasonOutsideHours,
			fmt.Sprintf("Appointments can only be booked between %s.", strings.Replace(s.cfg.HoursLabel(), " - ", " and ", 1)))
	case s.cfg.IsClosedDay(DateOf(slot.Start)):
		return rejected(KindBusinessRule, ReasonClosedDay,
			fmt.Sprintf("We are closed on %ss. Please choose another day for your appointment.", s.cfg.ClosedDay()))
	case slot.End.After(closing):
		return rejected(KindBusinessRule, ReasonExceedsHours,
			fmt.Sprintf("Appointment would extend beyond clinic hours (%s). Please choose an earlier time.", formatHour(s.cfg.CloseHour)))
	}
	return nil
}

// conflictRejection runs the conflict check against a fresh snapshot and, on a
// hit, offers alternatives generated from that same snapshot.
func (s *Service) conflictRejection(date Date, slot Interval, existing []Appointment, now time.Time, format string) *BookingResult {
	conflict, blocking := s.detector.HasConflict(slot, existing)
	if !conflict {
		return nil
	}
	res := rejected(KindConflict, ReasonConflict, fmt.Sprintf(format, slot.Start.Format(displayTimeLayout), blocking.DisplayName()))
	res.Rejection.Conflict = blocking
	alternatives := s.slots.Generate(date, slot.Duration(), existing, now)
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	res.Rejection.Alternatives = alternatives
	s.logger.Info("booking conflict", "start", slot.Start.Format(time.RFC3339), "conflict_id", blocking.ID, "alternatives", len(alternatives))
	return res
}

func (s *Service) eventDescription(req BookingRequest, apptType string, minutes int) string {
	email := req.ContactEmail
	if email == "" {
		email = "Not provided"
	}
	lines := []string{
		"Patient: " + req.PatientName,
		"Phone: " + req.ContactPhone,
		"Email: " + email,
		"Type: " + AppointmentTypeLabel(apptType),
		fmt.Sprintf("Duration: %d minutes", minutes),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		lines = append(lines, "Notes: "+notes)
	}
	lines = append(lines, "", "Booked via AI Receptionist")
	return strings.Join(lines, "\n")
}

func (s *Service) attendees(patientEmail string) []Attendee {
	var out []Attendee
	if s.profile.Email != "" {
		out = append(out, Attendee{Email: s.profile.Email, DisplayName: s.profile.Name})
	}
	if patientEmail != "" && !strings.EqualFold(patientEmail, s.profile.Email) {
		out = append(out, Attendee{Email: patientEmail})
	}
	return out
}

func (s *Service) notify(ctx context.Context, c Confirmation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentBooked(ctx, c); err != nil {
		s.logger.Warn("booking confirmation not sent", "event_id", c.EventID, "error", err)
	}
}

func (s *Service) audit(ctx context.Context, rec AuditRecord) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, rec); err != nil {
		s.logger.Warn("booking audit write failed", "action", rec.Action, "event_id", rec.EventID, "error", err)
	}
}

// recordOutcome feeds the audit trail, metrics and span for a booking decision.
func (s *Service) recordOutcome(ctx context.Context, span trace.Span, action, phone string, result *BookingResult, err error) {
	rec := AuditRecord{Action: action, Phone: phone}
	switch {
	case err != nil:
		span.RecordError(err)
		rec.Outcome, rec.Reason = "error", "external"
		if errors.Is(err, ErrAppointmentNotFound) {
			rec.Reason = "not_found"
		}
	case result.Booked():
		rec.Outcome, rec.EventID = StatusBooked, result.EventID
		rec.RequestedStart = result.Interval.Start
	default:
		rec.Outcome, rec.Reason = StatusRejected, result.Rejection.Reason
	}
	span.SetAttributes(attribute.String("dental.outcome", rec.Outcome), attribute.String("dental.reason", rec.Reason))
	s.metrics.ObserveBooking(rec.Outcome, rec.Reason)
	s.audit(ctx, rec)
}
