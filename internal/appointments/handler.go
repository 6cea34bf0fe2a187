package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brightline-hq/brightline/internal/tenancy"
	"github.com/brightline-hq/brightline/pkg/logging"
)

// Handler handles HTTP requests for booking commits
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type commitBody struct {
	RequestID       string    `json:"request_id"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
	TimeZone        string    `json:"time_zone"`
}

type commitResponse struct {
	AppointmentID string    `json:"appointment_id"`
	StartAt       time.Time `json:"start_at"`
}

// Commit handles POST /scheduling/bookings
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing org context")
		return
	}

	var body commitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.RequestID == "" {
		writeError(w, http.StatusBadRequest, "request_id is required")
		return
	}
	if body.StartAt.IsZero() {
		writeError(w, http.StatusBadRequest, "start_at is required")
		return
	}
	if body.DurationMinutes <= 0 {
		body.DurationMinutes = 30
	}

	appt, err := h.service.Commit(r.Context(), CommitRequest{
		OrgID:           orgID,
		RequestID:       body.RequestID,
		StartAt:         body.StartAt,
		DurationMinutes: body.DurationMinutes,
		TimeZone:        body.TimeZone,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			writeError(w, http.StatusNotFound, ErrRequestNotFound.Error())
		case errors.Is(err, ErrSlotTaken):
			writeError(w, http.StatusConflict, ErrSlotTaken.Error())
		default:
			h.logger.Error("booking commit failed", "error", err, "org_id", orgID)
			writeError(w, http.StatusInternalServerError, "failed to commit booking")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(commitResponse{AppointmentID: appt.ID, StartAt: appt.StartAt})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
