package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Notifier sends the clinic's transactional emails. Every method is nil-safe
// and swallows send errors after logging them: a failed email must never fail
// the operation that triggered it.
type Notifier struct {
	email  EmailSender
	logger *logging.Logger
}

// NewNotifier creates a notifier. A nil sender disables email entirely.
func NewNotifier(email EmailSender, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{email: email, logger: logger}
}

// ApprovalDecision tells a doctor their registration was approved or rejected.
func (n *Notifier) ApprovalDecision(ctx context.Context, to, toName string, approved bool) {
	subject := "Your CareBridge registration was approved"
	body := fmt.Sprintf("Dear Dr. %s,\n\nYour account has been approved. You can now sign in and start receiving appointments.\n", toName)
	if !approved {
		subject = "Your CareBridge registration was not approved"
		body = fmt.Sprintf("Dear %s,\n\nWe were unable to approve your registration. Please contact the clinic administration for details.\n", toName)
	}
	n.send(ctx, EmailMessage{To: to, ToName: toName, Subject: subject, Body: body})
}

// AppointmentBooked tells a doctor a patient requested an appointment.
func (n *Notifier) AppointmentBooked(ctx context.Context, to, toName, patientName string, when time.Time) {
	n.send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: "New appointment request",
		Body: fmt.Sprintf("Dear Dr. %s,\n\n%s requested an appointment on %s. Please confirm or cancel it from your dashboard.\n",
			toName, patientName, when.Format("Monday, 2 January 2006 at 15:04")),
	})
}

// AppointmentStatusChanged tells a patient their appointment moved.
func (n *Notifier) AppointmentStatusChanged(ctx context.Context, to, toName, status string, when time.Time) {
	n.send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: fmt.Sprintf("Your appointment is %s", status),
		Body: fmt.Sprintf("Dear %s,\n\nYour appointment on %s is now %s.\n",
			toName, when.Format("Monday, 2 January 2006 at 15:04"), status),
	})
}

// ReportResponded tells a patient a doctor responded to their medical report.
func (n *Notifier) ReportResponded(ctx context.Context, to, toName, doctorName, reportTitle string) {
	n.send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: "A doctor responded to your medical report",
		Body: fmt.Sprintf("Dear %s,\n\nDr. %s has responded to your report %q. The consultation document is ready to download.\n",
			toName, doctorName, reportTitle),
	})
}

func (n *Notifier) send(ctx context.Context, msg EmailMessage) {
	if n == nil || n.email == nil {
		return
	}
	if err := n.email.Send(ctx, msg); err != nil {
		n.logger.Error("notification send failed", "error", err, "to", msg.To, "subject", msg.Subject)
	}
}
