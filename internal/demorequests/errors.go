package demorequests

import "errors"

var (
	// ErrMissingOrgID is returned when the org context is absent
	ErrMissingOrgID = errors.New("org id is required")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidCompany is returned when the company is missing
	ErrInvalidCompany = errors.New("company is required")

	// ErrInvalidEmail is returned when the email is missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrInvalidPhone is returned when the phone is not E.164
	ErrInvalidPhone = errors.New("phone must be in E.164 format")

	// ErrRequestNotFound is returned when a demo request is not found
	ErrRequestNotFound = errors.New("demo request not found")
)
