package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/cache"
)

type memOutboxRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *memOutboxRepo) Save(ctx context.Context, e *shared.OutboxEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *memOutboxRepo) Update(ctx context.Context, e *shared.OutboxEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *memOutboxRepo) FindDue(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	now := time.Now()
	var due []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.IsRetryable(now) {
			e.MarkProcessing()
			due = append(due, e)
			if len(due) >= limit {
				break
			}
		}
	}
	return due, nil
}

type recordingHandler struct {
	events []shared.DomainEvent
	err    error
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.err != nil {
		return h.err
	}
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return []string{billing.EventTypePaymentCompleted}
}

func newTestSerializer() *JSONSerializer {
	s := NewJSONSerializer()
	s.Register(&billing.PaymentCompletedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentCompleted},
	})
	return s
}

func completedEntry(t *testing.T, s *JSONSerializer) *shared.OutboxEntry {
	t.Helper()
	event := &billing.PaymentCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(billing.EventTypePaymentCompleted, "Payment", uuid.New()),
		PaymentReference: "PAY202608ABC123",
		ReceiptNumber:    "RCP202600042",
	}
	payload, err := s.Serialize(event)
	require.NoError(t, err)
	return shared.NewOutboxEntry(event, payload)
}

func TestOutboxProcessor_DeliversAndMarksSent(t *testing.T) {
	serializer := newTestSerializer()
	repo := newMemOutboxRepo()
	handler := &recordingHandler{}

	entry := completedEntry(t, serializer)
	require.NoError(t, repo.Save(context.Background(), entry))

	p := NewOutboxProcessor(repo, serializer, cache.NewInMemoryIdempotencyStore(), zap.NewNop(), ProcessorConfig{BatchSize: 10})
	p.Subscribe(handler)

	p.ProcessBatch(context.Background())

	require.Len(t, handler.events, 1)
	completed := handler.events[0].(*billing.PaymentCompletedEvent)
	assert.Equal(t, "RCP202600042", completed.ReceiptNumber)
	assert.Equal(t, shared.OutboxStatusSent, repo.entries[entry.ID].Status)
}

func TestOutboxProcessor_HandlerFailureSchedulesRetry(t *testing.T) {
	serializer := newTestSerializer()
	repo := newMemOutboxRepo()
	handler := &recordingHandler{err: errors.New("smtp down")}

	entry := completedEntry(t, serializer)
	require.NoError(t, repo.Save(context.Background(), entry))

	p := NewOutboxProcessor(repo, serializer, cache.NewInMemoryIdempotencyStore(), zap.NewNop(), ProcessorConfig{BatchSize: 10})
	p.Subscribe(handler)

	p.ProcessBatch(context.Background())

	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.NotNil(t, stored.NextRetryAt)
}

func TestOutboxProcessor_SkipsAlreadyProcessedEvents(t *testing.T) {
	serializer := newTestSerializer()
	repo := newMemOutboxRepo()
	handler := &recordingHandler{}
	store := cache.NewInMemoryIdempotencyStore()

	entry := completedEntry(t, serializer)
	require.NoError(t, repo.Save(context.Background(), entry))

	_, err := store.MarkProcessed(context.Background(), entry.EventID.String(), time.Hour)
	require.NoError(t, err)

	p := NewOutboxProcessor(repo, serializer, store, zap.NewNop(), ProcessorConfig{BatchSize: 10})
	p.Subscribe(handler)

	p.ProcessBatch(context.Background())

	assert.Empty(t, handler.events)
	assert.Equal(t, shared.OutboxStatusSent, repo.entries[entry.ID].Status)
}

func TestOutboxProcessor_UnregisteredEventFails(t *testing.T) {
	serializer := newTestSerializer()
	repo := newMemOutboxRepo()

	event := &billing.PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(billing.EventTypePaymentRecorded, "Payment", uuid.New()),
	}
	payload, err := serializer.Serialize(event)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(event, payload)
	require.NoError(t, repo.Save(context.Background(), entry))

	p := NewOutboxProcessor(repo, serializer, cache.NewInMemoryIdempotencyStore(), zap.NewNop(), ProcessorConfig{BatchSize: 10})

	p.ProcessBatch(context.Background())

	assert.Equal(t, shared.OutboxStatusFailed, repo.entries[entry.ID].Status)
}
