package availability

import (
	"context"
	"time"

	"github.com/brightline-hq/brightline/internal/observability/metrics"
	"github.com/brightline-hq/brightline/pkg/logging"
)

// Service answers slot suggestion queries through the cache.
type Service struct {
	repo    Repository
	cache   *Cache
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewService creates an availability service. cache may be nil.
func NewService(repo Repository, cache *Cache, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, cache: cache, metrics: m, logger: logger}
}

// Suggest returns open slots for the query window, serving from cache
// when a fresh entry exists. The second return reports a cache hit.
func (s *Service) Suggest(ctx context.Context, q Query) ([]Slot, bool, error) {
	start := time.Now()

	if slots, ok := s.cache.Get(ctx, q); ok {
		s.metrics.ObserveSuggest("ok", true)
		s.metrics.ObserveSuggestLatency(true, time.Since(start).Seconds())
		return slots, true, nil
	}

	slots, err := s.repo.ListOpenSlots(ctx, q)
	if err != nil {
		s.metrics.ObserveSuggest("error", false)
		return nil, false, err
	}
	s.cache.Set(ctx, q, slots)

	s.metrics.ObserveSuggest("ok", false)
	s.metrics.ObserveSuggestLatency(false, time.Since(start).Seconds())
	return slots, false, nil
}
