// Package booking is the HTTP client for the portal scheduling API. It
// implements the scheduler's SlotSource, IdentityCreator, and Committer
// interfaces so the wizard never touches the wire format directly.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brightline-hq/brightline/internal/scheduler"
	"github.com/brightline-hq/brightline/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the portal scheduling endpoints.
type Client struct {
	baseURL    string
	orgID      string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a scheduling API client. baseURL is the portal API
// root without a trailing slash; orgID scopes every request.
func NewClient(baseURL, orgID string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: baseURL,
		orgID:   orgID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

type slotPayload struct {
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CloserCount int       `json:"closer_count"`
}

type suggestResponse struct {
	Slots []slotPayload `json:"slots"`
}

type demoRequestPayload struct {
	Name            string `json:"name"`
	Company         string `json:"company"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Goals           string `json:"goals,omitempty"`
	NewsletterOptIn bool   `json:"newsletter_opt_in"`
}

type demoRequestResponse struct {
	RequestID string `json:"request_id"`
	LeadID    string `json:"lead_id"`
}

type commitPayload struct {
	RequestID       string    `json:"request_id"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
	TimeZone        string    `json:"time_zone"`
}

type commitResponse struct {
	AppointmentID string    `json:"appointment_id"`
	StartAt       time.Time `json:"start_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SuggestSlots fetches open call slots for a window starting at startAt.
func (c *Client) SuggestSlots(ctx context.Context, startAt time.Time, days, durationMinutes, limit int) ([]scheduler.Slot, error) {
	q := url.Values{}
	q.Set("start_at", startAt.UTC().Format(time.RFC3339))
	q.Set("days", strconv.Itoa(days))
	q.Set("duration_minutes", strconv.Itoa(durationMinutes))
	q.Set("limit", strconv.Itoa(limit))

	var out suggestResponse
	if err := c.do(ctx, http.MethodGet, "/scheduling/slots?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	slots := make([]scheduler.Slot, 0, len(out.Slots))
	for _, s := range out.Slots {
		slots = append(slots, scheduler.Slot{
			StartAt:  s.StartAt,
			EndAt:    s.EndAt,
			Capacity: s.CloserCount,
		})
	}
	return slots, nil
}

// CreateDemoRequest registers the contact and returns the identity used
// for subsequent booking commits.
func (c *Client) CreateDemoRequest(ctx context.Context, contact scheduler.Contact) (scheduler.Identity, error) {
	body := demoRequestPayload{
		Name:            contact.Name,
		Company:         contact.Company,
		Email:           contact.Email,
		Phone:           contact.Phone,
		Goals:           contact.Goals,
		NewsletterOptIn: contact.NewsletterOptIn,
	}
	var out demoRequestResponse
	if err := c.do(ctx, http.MethodPost, "/scheduling/demo-requests", body, &out); err != nil {
		return scheduler.Identity{}, err
	}
	if out.RequestID == "" {
		return scheduler.Identity{}, fmt.Errorf("booking: demo request returned empty request id")
	}
	return scheduler.Identity{RequestID: out.RequestID, LeadID: out.LeadID}, nil
}

// Commit reserves the slot for the given request id. A 404 maps to
// scheduler.ErrIdentityNotFound and a 409 to scheduler.ErrSlotConflict so
// the wizard can recover; any other failure is returned wrapped with the
// server's message.
func (c *Client) Commit(ctx context.Context, requestID string, startAt time.Time, durationMinutes int, timeZone string) (scheduler.Appointment, error) {
	body := commitPayload{
		RequestID:       requestID,
		StartAt:         startAt.UTC(),
		DurationMinutes: durationMinutes,
		TimeZone:        timeZone,
	}
	var out commitResponse
	if err := c.do(ctx, http.MethodPost, "/scheduling/bookings", body, &out); err != nil {
		return scheduler.Appointment{}, err
	}
	return scheduler.Appointment{StartAt: out.StartAt}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("booking: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("booking: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.orgID != "" {
		req.Header.Set("X-Org-Id", c.orgID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("booking: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("booking: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("booking: %s: %w", serverMessage(respBody), scheduler.ErrIdentityNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("booking: %s: %w", serverMessage(respBody), scheduler.ErrSlotConflict)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("booking: status %d: %s", resp.StatusCode, serverMessage(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("booking: unmarshal response: %w", err)
		}
	}
	return nil
}

// serverMessage extracts the error field from a JSON error body, falling
// back to a truncated body snippet.
func serverMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := string(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
