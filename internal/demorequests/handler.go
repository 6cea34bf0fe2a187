package demorequests

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightline-hq/brightline/internal/observability/metrics"
	"github.com/brightline-hq/brightline/internal/tenancy"
	"github.com/brightline-hq/brightline/pkg/logging"
)

// Handler handles HTTP requests for demo requests
type Handler struct {
	repo    Repository
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewHandler creates a new demo request handler
func NewHandler(repo Repository, m *metrics.SchedulingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

type createResponse struct {
	RequestID string `json:"request_id"`
	LeadID    string `json:"lead_id"`
}

// Create handles POST /scheduling/demo-requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode demo request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing org context")
		return
	}
	req.OrgID = orgID

	dr, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			h.metrics.ObserveIdentity("invalid")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create demo request", "error", err, "org_id", orgID)
		h.metrics.ObserveIdentity("error")
		writeError(w, http.StatusInternalServerError, "failed to create demo request")
		return
	}

	h.logger.Info("demo request created",
		"request_id", dr.RequestID,
		"lead_id", dr.LeadID,
		"org_id", orgID,
		"company", dr.Company,
	)
	h.metrics.ObserveIdentity("created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createResponse{RequestID: dr.RequestID, LeadID: dr.LeadID})
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidCompany) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrMissingOrgID)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
