package notify

import (
	"testing"

	"github.com/cranelabs/landing-api/pkg/logging"
)

func TestNewSendGridSender_RequiresAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{}, logging.Default())
	if sender != nil {
		t.Fatal("expected nil sender without an API key")
	}
}

func TestNewSendGridSender_Defaults(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "hello@cranelabs.dev",
	}, nil)
	if sender == nil {
		t.Fatal("expected a sender")
	}
	if sender.fromName != "Crane Labs" {
		t.Fatalf("expected default from name, got %q", sender.fromName)
	}
	if sender.fromEmail != "hello@cranelabs.dev" {
		t.Fatalf("unexpected from email %q", sender.fromEmail)
	}
}

func TestNewSESSender_RequiresClient(t *testing.T) {
	sender := NewSESSender(nil, SESConfig{FromEmail: "hello@cranelabs.dev"}, logging.Default())
	if sender != nil {
		t.Fatal("expected nil sender without an SES client")
	}
}
