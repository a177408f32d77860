package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// CategoryConfirmation tags booking confirmation emails.
const CategoryConfirmation = "appointment_confirmation"

// Clinic identifies the practice in patient emails.
type Clinic struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// AppointmentNotifier emails booking confirmations to patients.
type AppointmentNotifier struct {
	email  EmailSender
	clinic Clinic
	logger *logging.Logger
}

// NewAppointmentNotifier returns a notifier; a nil sender disables delivery.
func NewAppointmentNotifier(email EmailSender, clinic Clinic, logger *logging.Logger) *AppointmentNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if clinic.Name == "" {
		clinic.Name = "our dental office"
	}
	return &AppointmentNotifier{email: email, clinic: clinic, logger: logger}
}

// AppointmentBooked sends the confirmation when the patient left an email.
func (n *AppointmentNotifier) AppointmentBooked(ctx context.Context, c scheduling.Confirmation) error {
	if n == nil || n.email == nil {
		return nil
	}
	if strings.TrimSpace(c.Email) == "" {
		n.logger.Debug("notify: no patient email, skipping confirmation", "event_id", c.EventID)
		return nil
	}

	msg := EmailMessage{
		To:       c.Email,
		ToName:   c.PatientName,
		Subject:  fmt.Sprintf("Appointment Confirmation - %s", n.clinic.Name),
		Body:     n.confirmationText(c),
		Category: CategoryConfirmation,
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	n.logger.Info("appointment confirmation sent", "event_id", c.EventID, "to", c.Email)
	return nil
}

func (n *AppointmentNotifier) confirmationText(c scheduling.Confirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", c.PatientName)
	fmt.Fprintf(&b, "Your appointment with %s is confirmed.\n\n", n.clinic.Name)
	fmt.Fprintf(&b, "Service: %s\n", c.AppointmentType)
	fmt.Fprintf(&b, "Date: %s\n", c.Interval.Start.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "Time: %s\n", c.Interval.Start.Format("03:04 PM"))
	fmt.Fprintf(&b, "Duration: %d minutes\n", c.DurationMinutes)
	if n.clinic.Address != "" {
		fmt.Fprintf(&b, "Location: %s\n", n.clinic.Address)
	}
	b.WriteString("\nPlease arrive 15 minutes early for check-in.\n")
	b.WriteString("If you need to reschedule, contact us at least 24 hours in advance.\n")
	if n.clinic.Phone != "" {
		fmt.Fprintf(&b, "\nPhone: %s\n", n.clinic.Phone)
	}
	if n.clinic.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", n.clinic.Email)
	}
	fmt.Fprintf(&b, "\nThe %s Team\n", n.clinic.Name)
	return b.String()
}

var _ scheduling.Notifier = (*AppointmentNotifier)(nil)
