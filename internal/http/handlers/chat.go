package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wolfman30/dental-receptionist/internal/compliance"
	"github.com/wolfman30/dental-receptionist/internal/intent"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

const chatSlotPreview = 5

// IntentAnalyzer reads a patient message.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, message string) intent.Analysis
	ResolveDate(a intent.Analysis) (scheduling.Date, bool)
}

// ChatHandler answers single chat messages. It keeps no conversation state:
// anything the model cannot find in the message may be sent as explicit fields.
type ChatHandler struct {
	svc        *scheduling.Service
	analyzer   IntentAnalyzer
	disclaimer *compliance.DisclaimerService
	logger     *logging.Logger
}

func NewChatHandler(svc *scheduling.Service, analyzer IntentAnalyzer, disclaimer *compliance.DisclaimerService, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, analyzer: analyzer, disclaimer: disclaimer, logger: logger}
}

type chatRequest struct {
	Message         string `json:"message"`
	PatientName     string `json:"patient_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type chatResponse struct {
	Intent        intent.Intent             `json:"intent"`
	Reply         string                    `json:"reply"`
	Analysis      intent.Analysis           `json:"analysis"`
	Availability  *scheduling.Availability  `json:"availability,omitempty"`
	Booking       *scheduling.BookingResult `json:"booking,omitempty"`
	MissingFields []string                  `json:"missing_fields,omitempty"`
}

// Message handles one patient message.
// POST /chat
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	analysis := h.analyzer.Analyze(r.Context(), req.Message)
	mergeExplicitFields(&analysis, req)
	resp := chatResponse{Intent: analysis.Intent, Analysis: analysis}

	var err error
	switch analysis.Intent {
	case intent.IntentAvailability:
		err = h.answerAvailability(r.Context(), req.Message, analysis, &resp)
	case intent.IntentBook:
		err = h.answerBooking(r.Context(), req, analysis, &resp)
	default:
		profile := h.svc.BusinessInfo().Business
		resp.Reply = intent.CannedReply(analysis.Intent, profile.Name, profile.Phone)
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp.Reply = h.disclaimer.Append(resp.Reply, string(analysis.Intent))
	h.logger.Info("chat message handled",
		"intent", analysis.Intent,
		"source", analysis.Source,
		"confidence", analysis.Confidence,
		"message", compliance.LogPreview(req.Message, 120),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) answerAvailability(ctx context.Context, message string, analysis intent.Analysis, resp *chatResponse) error {
	date, ok := h.analyzer.ResolveDate(analysis)
	if !ok {
		date, _ = h.svc.ResolveNaturalDateOrFallback(message)
	}
	availability, err := h.svc.GetAvailableSlots(ctx, date, 0)
	if err != nil {
		return err
	}
	resp.Availability = availability
	resp.Reply = availability.Message
	if preview := slotTimes(availability.Slots); preview != "" {
		resp.Reply += ". Open times include " + preview + "."
	}
	return nil
}

func (h *ChatHandler) answerBooking(ctx context.Context, req chatRequest, analysis intent.Analysis, resp *chatResponse) error {
	if missing := analysis.MissingBookingFields(); len(missing) > 0 {
		resp.MissingFields = missing
		resp.Reply = fmt.Sprintf("I'd be happy to book that for you. I still need your %s.", humanList(missing))
		return nil
	}

	dateText := analysis.Date
	if d, ok := h.analyzer.ResolveDate(analysis); ok {
		dateText = d.String()
	}
	result, err := h.svc.Book(ctx, scheduling.BookingRequest{
		PatientName:     analysis.PatientName,
		ContactPhone:    analysis.Phone,
		ContactEmail:    analysis.Email,
		Date:            dateText,
		Time:            analysis.Time,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: analysis.AppointmentType,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	resp.Booking = result
	resp.Reply = result.Message
	if result.Booked() && result.Interval != nil {
		resp.Reply = fmt.Sprintf("%s on %s at %s.", result.Message,
			result.Interval.Start.Format("Monday, January 2"), result.Interval.Start.Format("03:04 PM"))
	}
	if result.Rejection != nil {
		if preview := slotTimes(result.Rejection.Alternatives); preview != "" {
			resp.Reply += " Available alternatives: " + preview + "."
		}
	}
	return nil
}

// mergeExplicitFields lets form fields fill gaps the model left.
func mergeExplicitFields(a *intent.Analysis, req chatRequest) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&a.PatientName, req.PatientName)
	fill(&a.Phone, req.Phone)
	fill(&a.Email, req.Email)
	fill(&a.AppointmentType, req.AppointmentType)
}

func slotTimes(slots []scheduling.Slot) string {
	if len(slots) > chatSlotPreview {
		slots = slots[:chatSlotPreview]
	}
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Start.Format("03:04 PM"))
	}
	return strings.Join(times, ", ")
}

var fieldLabels = map[string]string{
	"patient_name": "name",
	"phone":        "phone number",
	"date":         "preferred date",
	"time":         "preferred time",
}

func humanList(fields []string) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		if l, ok := fieldLabels[f]; ok {
			labels = append(labels, l)
			continue
		}
		labels = append(labels, f)
	}
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}
