package leads

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Lead statuses. Intake always creates records as StatusNew; the admin API
// performs the downstream transitions.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Provenance values stamped on every record by the server, never the client.
const (
	SourceLandingForm = "landing_form"
	DefaultPriority   = "medium"
	DefaultProductTag = "custom-development"
	DirectPageURL     = "direct"
)

// Lead represents a persisted prospective-customer submission.
type Lead struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Message          string    `json:"message"`
	ProductsInterest []string  `json:"products_interest"`
	UTMSource        *string   `json:"utm_source,omitempty"`
	UTMMedium        *string   `json:"utm_medium,omitempty"`
	UTMCampaign      *string   `json:"utm_campaign,omitempty"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	PageURL          string    `json:"page_url"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority"`
	GDPRConsent      bool      `json:"gdpr_consent"`
	CreatedAt        time.Time `json:"created_at"`
}

// UTMParams carries optional campaign attribution captured by the landing page.
type UTMParams struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
}

// SubmissionInput is the untrusted request body for the lead form.
type SubmissionInput struct {
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Message          string     `json:"message"`
	ProductsInterest []string   `json:"productsInterest,omitempty"`
	UTMParams        *UTMParams `json:"utmParams,omitempty"`
}

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks every field bound and returns the complete violation list,
// not just the first failure.
func (s *SubmissionInput) Validate() []FieldError {
	var errs []FieldError
	if n := utf8.RuneCountInString(s.Name); n < 2 || n > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be between 2 and 100 characters"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(s.Email)) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}
	if n := utf8.RuneCountInString(s.Message); n < 10 || n > 1000 {
		errs = append(errs, FieldError{Field: "message", Message: "message must be between 10 and 1000 characters"})
	}
	return errs
}

// RequestContext captures per-request metadata stamped on the stored record.
type RequestContext struct {
	IPAddress string
	UserAgent string
	PageURL   string
}

// NewLead builds the record to persist for a validated submission. The store
// assigns ID and CreatedAt.
func NewLead(in *SubmissionInput, rc RequestContext) *Lead {
	products := in.ProductsInterest
	if len(products) == 0 {
		products = []string{DefaultProductTag}
	} else {
		products = append([]string(nil), products...)
	}

	pageURL := rc.PageURL
	if pageURL == "" {
		pageURL = DirectPageURL
	}

	lead := &Lead{
		Name:             strings.TrimSpace(in.Name),
		Email:            strings.TrimSpace(in.Email),
		Message:          in.Message,
		ProductsInterest: products,
		IPAddress:        rc.IPAddress,
		UserAgent:        rc.UserAgent,
		PageURL:          pageURL,
		Source:           SourceLandingForm,
		Status:           StatusNew,
		Priority:         DefaultPriority,
		GDPRConsent:      true,
	}

	if utm := in.UTMParams; utm != nil {
		if utm.Source != "" {
			lead.UTMSource = &utm.Source
		}
		if utm.Medium != "" {
			lead.UTMMedium = &utm.Medium
		}
		if utm.Campaign != "" {
			lead.UTMCampaign = &utm.Campaign
		}
	}

	return lead
}

// ValidStatus reports whether s is one of the known lead statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}
