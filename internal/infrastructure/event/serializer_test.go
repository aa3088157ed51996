package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
)

func TestJSONSerializer_RoundTrip(t *testing.T) {
	s := NewJSONSerializer()
	s.Register(&billing.PaymentCompletedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentCompleted},
	})

	original := &billing.PaymentCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(billing.EventTypePaymentCompleted, "Payment", uuid.New()),
		PaymentID:        uuid.New(),
		PaymentReference: "PAY202608ABC123",
		ReceiptNumber:    "RCP202600042",
		BookingKind:      billing.BookingKindConference,
		BookingID:        uuid.New(),
		TotalAmount:      "11650.00",
		CCEmails:         []string{"finance@example.com"},
	}

	payload, err := s.Serialize(original)
	require.NoError(t, err)

	restored, err := s.Deserialize(billing.EventTypePaymentCompleted, payload)
	require.NoError(t, err)

	completed, ok := restored.(*billing.PaymentCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), completed.EventID())
	assert.Equal(t, original.PaymentReference, completed.PaymentReference)
	assert.Equal(t, original.ReceiptNumber, completed.ReceiptNumber)
	assert.Equal(t, original.BookingKind, completed.BookingKind)
	assert.Equal(t, original.CCEmails, completed.CCEmails)
}

func TestJSONSerializer_UnregisteredType(t *testing.T) {
	s := NewJSONSerializer()

	_, err := s.Deserialize("billing.payment.completed", []byte(`{}`))

	assert.Error(t, err)
}

func TestJSONSerializer_BadPayload(t *testing.T) {
	s := NewJSONSerializer()
	s.Register(&billing.PaymentRecordedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentRecorded},
	})

	_, err := s.Deserialize(billing.EventTypePaymentRecorded, []byte(`not json`))

	assert.Error(t, err)
}
