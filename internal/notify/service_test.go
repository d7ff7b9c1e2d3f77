package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestApprovalDecisionApproved(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, nil)

	n.ApprovalDecision(context.Background(), "doc@example.com", "Ada Okafor", true)

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if !strings.Contains(msg.Subject, "approved") {
		t.Errorf("subject = %q, want approval wording", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Dr. Ada Okafor") {
		t.Errorf("body should address the doctor by name, got %q", msg.Body)
	}
}

func TestApprovalDecisionRejected(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, nil)

	n.ApprovalDecision(context.Background(), "doc@example.com", "Ada Okafor", false)

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Subject, "not approved") {
		t.Errorf("subject = %q, want rejection wording", sender.sent[0].Subject)
	}
}

func TestSendErrorsAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("ses unavailable")}
	n := NewNotifier(sender, nil)

	// Must not panic or propagate the error.
	n.AppointmentBooked(context.Background(), "doc@example.com", "Ada Okafor", "John Mensah", time.Now())
	n.AppointmentStatusChanged(context.Background(), "pat@example.com", "John Mensah", "confirmed", time.Now())
	n.ReportResponded(context.Background(), "pat@example.com", "John Mensah", "Ada Okafor", "Blood Work")
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.ApprovalDecision(context.Background(), "x@example.com", "X", true)
}

func TestNilSenderDisablesEmail(t *testing.T) {
	n := NewNotifier(nil, nil)
	n.ReportResponded(context.Background(), "pat@example.com", "John", "Ada", "X-Ray")
}
