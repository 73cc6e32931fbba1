package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/booking"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/events"
)

type BookingHandler struct {
	engine    *booking.Engine
	publisher *events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewBookingHandler(engine *booking.Engine, publisher *events.Publisher, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

type createBookingRequest struct {
	Phrase      string `json:"phrase"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Notes       string `json:"notes"`
	// ReferenceNow pins "today" for deterministic clients and tests.
	ReferenceNow string `json:"reference_now"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type bookingResponse struct {
	Status        string     `json:"status"`
	Appointment   *slotItem  `json:"appointment,omitempty"`
	Confirmation  string     `json:"confirmation_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Clarification string     `json:"clarification,omitempty"`
	Suggestions   []slotItem `json:"suggestions,omitempty"`
	Cause         string     `json:"cause,omitempty"`
}

type validateRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type validateResponse struct {
	Valid       bool       `json:"valid"`
	Reason      string     `json:"reason,omitempty"`
	Suggestions []slotItem `json:"suggestions,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.Phrase = strings.TrimSpace(req.Phrase)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	if req.Phrase == "" || req.ClientName == "" {
		http.Error(w, "phrase and client_name required", http.StatusBadRequest)
		return
	}

	now := h.now()
	if raw := strings.TrimSpace(req.ReferenceNow); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid reference_now", http.StatusBadRequest)
			return
		}
		now = parsed
	}

	client := booking.ClientInfo{
		Name:  req.ClientName,
		Email: req.ClientEmail,
		Notes: strings.TrimSpace(req.Notes),
	}

	out := h.engine.AttemptBooking(r.Context(), req.Phrase, now, client)

	switch out.Status {
	case booking.StatusBooked:
		h.publishBooked(r, out, client)
		writeJSON(w, http.StatusCreated, bookingResponse{
			Status:       string(out.Status),
			Appointment:  toSlotItem(*out.Interval),
			Confirmation: out.Confirmation,
		})
	case booking.StatusRejected:
		writeJSON(w, http.StatusUnprocessableEntity, bookingResponse{
			Status:        string(out.Status),
			Reason:        string(out.Reason),
			Clarification: string(out.Clarification),
			Suggestions:   toSlotItems(out.Suggestions),
		})
	default:
		writeJSON(w, http.StatusBadGateway, bookingResponse{
			Status: string(out.Status),
			Cause:  string(out.Cause),
		})
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		http.Error(w, "date required", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, h.engine.Policy().Location)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	slots, err := h.engine.DaySlots(r.Context(), day)
	if err != nil {
		h.logger.Error("day slots failed", "date", dateStr, "err", err)
		http.Error(w, "calendar unavailable", http.StatusBadGateway)
		return
	}

	items := toSlotItems(slots)
	if items == nil {
		items = []slotItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	iv := availability.NewInterval(start, h.engine.Policy().DefaultDuration)
	if raw := strings.TrimSpace(req.EndTime); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil || !end.After(start) {
			http.Error(w, "invalid end_time", http.StatusBadRequest)
			return
		}
		iv = availability.Interval{Start: start, End: end}
	}
	res := h.engine.Validate(r.Context(), iv, h.now())

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:       res.Valid,
		Reason:      string(res.Reason),
		Suggestions: toSlotItems(res.Suggestions),
	})
}

func (h *BookingHandler) publishBooked(r *http.Request, out booking.Outcome, client booking.ClientInfo) {
	if h.publisher == nil {
		return
	}
	h.publisher.PublishBooked(r.Context(), events.AppointmentBooked{
		BookingID:   out.Confirmation,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Summary:     "Appointment with " + client.Name,
		StartTime:   out.Interval.Start,
		EndTime:     out.Interval.End,
		Timezone:    h.engine.Policy().Location.String(),
		Notes:       client.Notes,
	})
}

func toSlotItem(iv availability.Interval) *slotItem {
	return &slotItem{
		StartTime: iv.Start.Format(time.RFC3339),
		EndTime:   iv.End.Format(time.RFC3339),
	}
}

func toSlotItems(ivs []availability.Interval) []slotItem {
	if len(ivs) == 0 {
		return nil
	}
	items := make([]slotItem, 0, len(ivs))
	for _, iv := range ivs {
		items = append(items, *toSlotItem(iv))
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
