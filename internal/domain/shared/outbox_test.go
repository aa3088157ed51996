package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	BaseDomainEvent
}

func newStubEvent() *stubEvent {
	return &stubEvent{
		BaseDomainEvent: NewBaseDomainEvent("test.event", "TestAggregate", uuid.New()),
	}
}

func TestNewOutboxEntry(t *testing.T) {
	event := newStubEvent()
	payload := []byte(`{"k":"v"}`)

	entry := NewOutboxEntry(event, payload)

	require.NotNil(t, entry)
	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "test.event", entry.EventType)
	assert.Equal(t, event.AggregateID(), entry.AggregateID)
	assert.Equal(t, "TestAggregate", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Zero(t, entry.RetryCount)
	assert.Nil(t, entry.SentAt)
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := NewOutboxEntry(newStubEvent(), nil)
	entry.MarkProcessing()
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.SentAt)
	assert.False(t, entry.IsRetryable(time.Now()))
}

func TestOutboxEntry_MarkFailed_SchedulesRetry(t *testing.T) {
	entry := NewOutboxEntry(newStubEvent(), nil)

	entry.MarkFailed(errors.New("smtp timeout"))

	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, "smtp timeout", entry.LastError)
	require.NotNil(t, entry.NextRetryAt)
	assert.False(t, entry.IsRetryable(time.Now()))
	assert.True(t, entry.IsRetryable(entry.NextRetryAt.Add(time.Second)))
}

func TestOutboxEntry_MarkFailed_DeadAfterMaxRetries(t *testing.T) {
	entry := NewOutboxEntry(newStubEvent(), nil)

	for i := 0; i < MaxOutboxRetries; i++ {
		entry.MarkFailed(errors.New("unreachable"))
	}

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, MaxOutboxRetries, entry.RetryCount)
	assert.Nil(t, entry.NextRetryAt)
	assert.False(t, entry.IsRetryable(time.Now().Add(24*time.Hour)))
}

func TestOutboxEntry_BackoffGrows(t *testing.T) {
	entry := NewOutboxEntry(newStubEvent(), nil)

	entry.MarkFailed(errors.New("e1"))
	first := entry.NextRetryAt
	require.NotNil(t, first)

	entry.MarkFailed(errors.New("e2"))
	second := entry.NextRetryAt
	require.NotNil(t, second)

	assert.True(t, second.Sub(*first) >= time.Minute)
}
