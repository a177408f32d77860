// Package compliance keeps the booking audit trail and the patient-facing
// disclaimer attached to assistant replies.
package compliance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
)

// AuditEvent is one immutable booking decision row.
type AuditEvent struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	Outcome        string    `json:"outcome"`
	Reason         string    `json:"reason,omitempty"`
	EventID        string    `json:"event_id,omitempty"`
	RequestedStart time.Time `json:"requested_start,omitempty"`
	PhoneLast4     string    `json:"phone_last4,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingAuditor writes booking decisions to booking_audit_events.
type BookingAuditor struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookingAuditor creates an auditor. A nil db disables writes.
func NewBookingAuditor(db *sql.DB) *BookingAuditor {
	return &BookingAuditor{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Record stores rec. Phone numbers are reduced to their last four digits.
func (a *BookingAuditor) Record(ctx context.Context, rec scheduling.AuditRecord) error {
	if a == nil || a.db == nil {
		return nil
	}
	event := AuditEvent{
		ID:             uuid.NewString(),
		Action:         rec.Action,
		Outcome:        rec.Outcome,
		Reason:         rec.Reason,
		EventID:        rec.EventID,
		RequestedStart: rec.RequestedStart,
		PhoneLast4:     MaskPhone(rec.Phone),
		CreatedAt:      a.now(),
	}

	query := `
		INSERT INTO booking_audit_events (
			id, action, outcome, reason, event_id,
			requested_start, phone_last4, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := a.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.Outcome,
		nullString(event.Reason),
		nullString(event.EventID),
		nullTime(event.RequestedStart),
		nullString(event.PhoneLast4),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log booking audit event: %w", err)
	}
	return nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	Action    string
	EventID   string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// QueryEvents returns matching events, newest first.
func (a *BookingAuditor) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	query := `
		SELECT id, action, outcome, reason, event_id,
			   requested_start, phone_last4, created_at
		FROM booking_audit_events
		WHERE 1=1`
	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		query += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}
	if filter.Action != "" {
		add("action =", filter.Action)
	}
	if filter.EventID != "" {
		add("event_id =", filter.EventID)
	}
	if !filter.StartTime.IsZero() {
		add("created_at >=", filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		add("created_at <=", filter.EndTime)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var reason, eventID, phone sql.NullString
		var start sql.NullTime
		if err := rows.Scan(&e.ID, &e.Action, &e.Outcome, &reason, &eventID, &start, &phone, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.Reason = reason.String
		e.EventID = eventID.String
		e.PhoneLast4 = phone.String
		e.RequestedStart = start.Time
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to read audit events: %w", err)
	}
	return events, nil
}

// MaskPhone keeps only the last four digits of a phone number.
func MaskPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 4 {
		return d
	}
	return d[len(d)-4:]
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

var _ scheduling.Auditor = (*BookingAuditor)(nil)
