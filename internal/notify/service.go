package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cranelabs/landing-api/internal/leads"
	"github.com/cranelabs/landing-api/internal/observability/metrics"
	"github.com/cranelabs/landing-api/pkg/logging"
)

// Notification channels, used as metric labels.
const (
	ChannelConfirmation  = "confirmation"
	ChannelInternalAlert = "internal_alert"
)

// Service sends the two best-effort emails that follow a stored lead: a
// confirmation to the submitter and an alert to the sales inbox. Delivery
// failures are logged and counted, never returned.
type Service struct {
	email     EmailSender
	opsEmail  string
	baseURL   string
	fromLabel string
	metrics   *metrics.IntakeMetrics
	logger    *logging.Logger
}

// ServiceConfig holds notification service configuration.
type ServiceConfig struct {
	OpsEmail      string // internal alert recipient; empty disables the alert
	PublicBaseURL string // used for the dashboard deep link in the alert
	FromLabel     string // signature in outbound bodies
}

// NewService creates a notification service.
func NewService(email EmailSender, cfg ServiceConfig, m *metrics.IntakeMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromLabel == "" {
		cfg.FromLabel = "Crane Labs"
	}
	return &Service{
		email:     email,
		opsEmail:  cfg.OpsEmail,
		baseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		fromLabel: cfg.FromLabel,
		metrics:   m,
		logger:    logger,
	}
}

// NotifyLeadCreated fires the confirmation and the internal alert
// concurrently and waits for both to finish. Neither send's outcome reaches
// the caller.
func (s *Service) NotifyLeadCreated(ctx context.Context, lead *leads.Lead) {
	if s == nil || s.email == nil || lead == nil {
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.sendConfirmation(ctx, lead)
	}()

	if s.opsEmail != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.sendInternalAlert(ctx, lead)
		}()
	}

	wg.Wait()
}

func (s *Service) sendConfirmation(ctx context.Context, lead *leads.Lead) {
	subject := "We received your message"
	body := fmt.Sprintf(`Hi %s,

Thanks for reaching out! We received your message and one of our engineers
will get back to you within one business day.

Your message:
%s

— %s`, lead.Name, lead.Message, s.fromLabel)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #6366f1;">Thanks for reaching out, %s!</h2>
<p>We received your message and one of our engineers will get back to you within one business day.</p>
<blockquote style="background: #f9fafb; padding: 12px; border-left: 4px solid #6366f1;">%s</blockquote>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`, lead.Name, lead.Message, s.fromLabel)

	msg := EmailMessage{
		To:      lead.Email,
		ToName:  lead.Name,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send confirmation email", "error", err, "to", lead.Email, "lead_id", lead.ID)
		s.metrics.ObserveNotification(ChannelConfirmation, false)
		return
	}
	s.logger.Info("notify: confirmation email sent", "to", lead.Email, "lead_id", lead.ID)
	s.metrics.ObserveNotification(ChannelConfirmation, true)
}

func (s *Service) sendInternalAlert(ctx context.Context, lead *leads.Lead) {
	products := strings.Join(lead.ProductsInterest, ", ")
	subject := fmt.Sprintf("🆕 New Lead - %s", lead.Name)

	body := fmt.Sprintf(`A new lead has come in!

Name: %s
Email: %s
Products: %s
Message: %s
Page: %s
IP: %s%s%s

%s

— %s`, lead.Name, lead.Email, products, lead.Message, lead.PageURL, lead.IPAddress,
		s.formatUTMText(lead), s.formatUserAgentText(lead), s.dashboardLinkText(lead), s.fromLabel)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">🆕 New Lead</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Name:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Email:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><a href="mailto:%s">%s</a></td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Products:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Message:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Page:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>%s
</table>%s
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`, lead.Name, lead.Email, lead.Email, products, lead.Message, lead.PageURL,
		s.formatUTMHTML(lead), s.dashboardLinkHTML(lead), s.fromLabel)

	msg := EmailMessage{
		To:      s.opsEmail,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send lead alert", "error", err, "to", s.opsEmail, "lead_id", lead.ID)
		s.metrics.ObserveNotification(ChannelInternalAlert, false)
		return
	}
	s.logger.Info("notify: lead alert sent", "to", s.opsEmail, "lead_id", lead.ID)
	s.metrics.ObserveNotification(ChannelInternalAlert, true)
}

func (s *Service) formatUTMText(lead *leads.Lead) string {
	parts := utmParts(lead)
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("\nCampaign: %s", strings.Join(parts, " / "))
}

func (s *Service) formatUserAgentText(lead *leads.Lead) string {
	if lead.UserAgent == "" {
		return ""
	}
	return fmt.Sprintf("\nUser-Agent: %s", lead.UserAgent)
}

func (s *Service) formatUTMHTML(lead *leads.Lead) string {
	parts := utmParts(lead)
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(`
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Campaign:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
		strings.Join(parts, " / "))
}

func (s *Service) dashboardLinkText(lead *leads.Lead) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("View in dashboard: %s/admin/leads/%s", s.baseURL, lead.ID)
}

func (s *Service) dashboardLinkHTML(lead *leads.Lead) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf(`
<p><a href="%s/admin/leads/%s" style="background: #6366f1; color: #fff; padding: 10px 16px; border-radius: 6px; text-decoration: none;">View in dashboard</a></p>`,
		s.baseURL, lead.ID)
}

func utmParts(lead *leads.Lead) []string {
	var parts []string
	if lead.UTMSource != nil {
		parts = append(parts, *lead.UTMSource)
	}
	if lead.UTMMedium != nil {
		parts = append(parts, *lead.UTMMedium)
	}
	if lead.UTMCampaign != nil {
		parts = append(parts, *lead.UTMCampaign)
	}
	return parts
}
