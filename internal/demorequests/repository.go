package demorequests

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for demo request storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*DemoRequest, error)
	GetByID(ctx context.Context, orgID, requestID string) (*DemoRequest, error)
}

// InMemoryRepository is an in-memory Repository used in tests and local
// development without a database.
type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*DemoRequest
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		requests: make(map[string]*DemoRequest),
	}
}

// Create stores a new demo request in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*DemoRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dr := &DemoRequest{
		RequestID:       uuid.New().String(),
		LeadID:          uuid.New().String(),
		OrgID:           req.OrgID,
		Name:            req.Name,
		Company:         req.Company,
		Email:           req.Email,
		Phone:           req.Phone,
		Goals:           req.Goals,
		NewsletterOptIn: req.NewsletterOptIn,
		CreatedAt:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.requests[dr.RequestID] = dr
	r.mu.Unlock()

	return dr, nil
}

// GetByID retrieves a demo request scoped to the org
func (r *InMemoryRepository) GetByID(ctx context.Context, orgID, requestID string) (*DemoRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dr, ok := r.requests[requestID]
	if !ok || dr.OrgID != orgID {
		return nil, ErrRequestNotFound
	}
	return dr, nil
}
