package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
)

// Message is an outbound email
type Message struct {
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Mailer delivers messages. Delivery failures never affect committed
// financial state; the outbox retries them.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ReceiptDispatcher sends receipt emails for payments that reached
// completed. It runs post-commit, fed by the outbox processor.
type ReceiptDispatcher struct {
	mailer    Mailer
	recipient string
	logger    *zap.Logger
}

// NewReceiptDispatcher creates the dispatcher. recipient is the
// front-desk inbox that receives every receipt copy.
func NewReceiptDispatcher(mailer Mailer, recipient string, logger *zap.Logger) *ReceiptDispatcher {
	return &ReceiptDispatcher{
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
	}
}

// EventTypes returns the event types the dispatcher subscribes to
func (d *ReceiptDispatcher) EventTypes() []string {
	return []string{billing.EventTypePaymentCompleted}
}

// Handle sends the receipt email for a completed payment
func (d *ReceiptDispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*billing.PaymentCompletedEvent)
	if !ok {
		d.logger.Warn("unexpected event type", zap.String("event_type", event.EventType()))
		return nil
	}

	msg := Message{
		To:      []string{d.recipient},
		CC:      completed.CCEmails,
		Subject: fmt.Sprintf("Payment receipt %s", completed.ReceiptNumber),
		Body:    receiptBody(completed),
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Error("receipt email failed",
			zap.String("receipt_number", completed.ReceiptNumber),
			zap.String("payment_reference", completed.PaymentReference),
			zap.Error(err))
		return shared.NewDomainError(shared.ErrCodeNotification, "receipt email delivery failed")
	}

	d.logger.Info("receipt email sent",
		zap.String("receipt_number", completed.ReceiptNumber),
		zap.Strings("cc", completed.CCEmails))
	return nil
}

func receiptBody(e *billing.PaymentCompletedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt number: %s\n", e.ReceiptNumber)
	fmt.Fprintf(&b, "Payment reference: %s\n", e.PaymentReference)
	fmt.Fprintf(&b, "Booking: %s (%s)\n", e.BookingReference, e.BookingKind)
	fmt.Fprintf(&b, "Amount: MWK %s\n", e.TotalAmount)
	return b.String()
}

var _ shared.EventHandler = (*ReceiptDispatcher)(nil)
