package availability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/brightline-hq/brightline/internal/tenancy"
	"github.com/brightline-hq/brightline/pkg/logging"
)

const (
	defaultDays     = 7
	defaultDuration = 30
	defaultLimit    = 200
	maxDays         = 31
	maxLimit        = 500
)

// Handler handles HTTP requests for slot suggestions
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new availability handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type suggestResponse struct {
	Slots []Slot `json:"slots"`
}

// Suggest handles GET /scheduling/slots
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing org context")
		return
	}

	q := Query{
		OrgID:           orgID,
		StartAt:         time.Now().UTC(),
		Days:            defaultDays,
		DurationMinutes: defaultDuration,
		Limit:           defaultLimit,
	}

	if raw := r.URL.Query().Get("start_at"); raw != "" {
		startAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_at must be RFC 3339")
			return
		}
		q.StartAt = startAt.UTC()
	}
	if days, ok := intParam(r, "days", 1, maxDays); ok {
		q.Days = days
	}
	if dur, ok := intParam(r, "duration_minutes", 5, 240); ok {
		q.DurationMinutes = dur
	}
	if limit, ok := intParam(r, "limit", 1, maxLimit); ok {
		q.Limit = limit
	}

	slots, cached, err := h.service.Suggest(r.Context(), q)
	if err != nil {
		h.logger.Error("slot suggestion failed", "error", err, "org_id", orgID)
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}
	if slots == nil {
		slots = []Slot{}
	}

	h.logger.Info("slots suggested",
		"org_id", orgID,
		"count", len(slots),
		"cache_hit", cached,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(suggestResponse{Slots: slots})
}

func intParam(r *http.Request, name string, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
