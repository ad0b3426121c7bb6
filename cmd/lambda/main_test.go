package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/cranelabs/landing-api/internal/leads"
	"github.com/cranelabs/landing-api/internal/ratelimit"
	"github.com/cranelabs/landing-api/pkg/logging"
)

type noopNotifier struct{}

func (noopNotifier) NotifyLeadCreated(ctx context.Context, lead *leads.Lead) {}

func testIntake() *leads.IntakeHandler {
	return leads.NewIntakeHandler(
		leads.NewInMemoryRepository(),
		ratelimit.NewFixedWindow(5, time.Hour),
		noopNotifier{},
		nil,
		logging.New("error"),
	)
}

func leadEvent(method, body string, base64Encoded bool) events.APIGatewayV2HTTPRequest {
	evt := events.APIGatewayV2HTTPRequest{
		RawPath:         "/leads",
		Body:            body,
		IsBase64Encoded: base64Encoded,
		Headers:         map[string]string{"content-type": "application/json"},
	}
	evt.RequestContext.HTTP.Method = method
	evt.RequestContext.HTTP.SourceIP = "203.0.113.9"
	return evt
}

func TestHandleSubmission(t *testing.T) {
	body := `{"name":"Ana Ruiz","email":"ana@example.com","message":"Quiero más información sobre sus servicios"}`
	resp, err := handle(context.Background(), testIntake(), leadEvent("POST", body, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	var parsed leads.SubmitResponse
	if err := json.Unmarshal([]byte(resp.Body), &parsed); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if parsed.ID == "" {
		t.Fatal("expected a generated id")
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Fatalf("expected CORS headers, got %v", resp.Headers)
	}
}

func TestHandleBase64Body(t *testing.T) {
	body := `{"name":"Ana Ruiz","email":"ana@example.com","message":"Quiero más información sobre sus servicios"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	resp, err := handle(context.Background(), testIntake(), leadEvent("POST", encoded, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestHandlePreflight(t *testing.T) {
	resp, err := handle(context.Background(), testIntake(), leadEvent("OPTIONS", "", false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleUnknownPath(t *testing.T) {
	evt := events.APIGatewayV2HTTPRequest{RawPath: "/unknown"}
	evt.RequestContext.HTTP.Method = "POST"
	resp, err := handle(context.Background(), testIntake(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	evt := events.APIGatewayV2HTTPRequest{RawPath: "/health"}
	resp, err := handle(context.Background(), testIntake(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
