package demorequests

import (
	"strings"
	"time"
)

// DemoRequest is a captured demo lead with its scheduling identity. The
// request id is what the booking flow references; the lead id links the
// contact in the CRM sense.
type DemoRequest struct {
	RequestID       string    `json:"request_id"`
	LeadID          string    `json:"lead_id"`
	OrgID           string    `json:"org_id"`
	Name            string    `json:"name"`
	Company         string    `json:"company"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Goals           string    `json:"goals"`
	NewsletterOptIn bool      `json:"newsletter_opt_in"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateRequest is the request body for creating a demo request.
type CreateRequest struct {
	OrgID           string `json:"-"`
	Name            string `json:"name"`
	Company         string `json:"company"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Goals           string `json:"goals"`
	NewsletterOptIn bool   `json:"newsletter_opt_in"`
}

// Validate checks required fields. Phone must already be E.164; the
// portal client normalizes before submitting.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.OrgID) == "" {
		return ErrMissingOrgID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Company) == "" {
		return ErrInvalidCompany
	}
	if !validEmail(r.Email) {
		return ErrInvalidEmail
	}
	if !validE164(r.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func validE164(phone string) bool {
	if len(phone) < 9 || len(phone) > 16 || phone[0] != '+' {
		return false
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
