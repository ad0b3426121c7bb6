package leads

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cranelabs/landing-api/internal/observability/metrics"
	"github.com/cranelabs/landing-api/pkg/logging"
)

var intakeTracer = otel.Tracer("landing-api/leads")

// RateLimiter decides whether a client identifier may submit again. The check
// runs before body parsing so malformed-payload spam is throttled too.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Notifier delivers best-effort emails after a lead is stored. Implementations
// must never fail the request; delivery errors stay internal.
type Notifier interface {
	NotifyLeadCreated(ctx context.Context, lead *Lead)
}

// IntakeHandler handles the public lead submission endpoint.
type IntakeHandler struct {
	repo     Repository
	limiter  RateLimiter
	notifier Notifier
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
}

// NewIntakeHandler creates the public intake handler.
func NewIntakeHandler(repo Repository, limiter RateLimiter, notifier Notifier, m *metrics.IntakeMetrics, logger *logging.Logger) *IntakeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{
		repo:     repo,
		limiter:  limiter,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// SubmitResponse is the success body for POST /leads.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the error body for every non-success path.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// Submit handles OPTIONS/POST /leads. Every response, success or error,
// carries the permissive CORS headers so the form can be posted from the
// marketing site or any embed.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	ctx, span := intakeTracer.Start(r.Context(), "leads.submit")
	defer span.End()

	clientIP := clientIPFromRequest(r)

	allowed, err := h.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Fail open: a broken limiter backend must not block lead capture.
		h.logger.Error("rate limiter unavailable", "error", err, "ip", clientIP)
		allowed = true
	}
	if !allowed {
		h.logger.Warn("submission rate limit exceeded", "ip", clientIP)
		h.observeOutcome(span, metrics.OutcomeRateLimited)
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Too many submissions, please try again later"})
		return
	}

	var input SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Error("failed to decode submission", "error", err)
		h.observeOutcome(span, metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Details: []FieldError{{Field: "body", Message: "malformed JSON"}},
		})
		return
	}

	if violations := input.Validate(); len(violations) > 0 {
		h.observeOutcome(span, metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: violations,
		})
		return
	}

	lead := NewLead(&input, RequestContext{
		IPAddress: clientIP,
		UserAgent: r.Header.Get("User-Agent"),
		PageURL:   r.Header.Get("Referer"),
	})

	stored, err := h.repo.Create(ctx, lead)
	if err != nil {
		h.logger.Error("failed to store lead", "error", err)
		h.observeOutcome(span, metrics.OutcomeStoreError)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save submission"})
		return
	}

	h.logger.Info("lead created", "id", stored.ID, "email", stored.Email, "products", strings.Join(stored.ProductsInterest, ","))
	h.observeOutcome(span, metrics.OutcomeAccepted)
	span.SetAttributes(attribute.String("leads.id", stored.ID))

	if h.notifier != nil {
		h.notifier.NotifyLeadCreated(ctx, stored)
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		Success: true,
		Message: "Thanks for reaching out. We'll be in touch shortly.",
		ID:      stored.ID,
	})
}

func (h *IntakeHandler) observeOutcome(span trace.Span, outcome string) {
	h.metrics.ObserveSubmission(outcome)
	span.SetAttributes(attribute.String("leads.outcome", outcome))
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// clientIPFromRequest derives the rate-limit key and stored ip_address:
// first hop of X-Forwarded-For when present, else the transport peer address.
func clientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
