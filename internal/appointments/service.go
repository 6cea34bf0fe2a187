package appointments

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightline-hq/brightline/internal/observability/metrics"
	"github.com/brightline-hq/brightline/pkg/logging"
)

var appointmentsTracer = otel.Tracer("brightline.internal.appointments")

// Service commits bookings and records outcomes.
type Service struct {
	repo    Repository
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Repository, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, metrics: m, logger: logger}
}

// Commit books the slot for the demo request.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("brightline.org_id", req.OrgID),
		attribute.String("brightline.request_id", req.RequestID),
	)

	appt, err := s.repo.CreateCommitted(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCommit(commitOutcome(err))
		return nil, err
	}

	s.metrics.ObserveCommit("confirmed")
	s.logger.Info("appointment committed",
		"org_id", req.OrgID,
		"request_id", req.RequestID,
		"appointment_id", appt.ID,
		"start_at", appt.StartAt,
	)
	return appt, nil
}

func commitOutcome(err error) string {
	switch {
	case errors.Is(err, ErrRequestNotFound):
		return "request_not_found"
	case errors.Is(err, ErrSlotTaken):
		return "conflict"
	default:
		return "error"
	}
}
