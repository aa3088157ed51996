package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery status of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// MaxOutboxRetries is the number of delivery attempts before an entry is marked dead
const MaxOutboxRetries = 5

// OutboxEntry is a durable record of a domain event awaiting delivery.
// Entries are written in the same transaction as the state change that
// produced the event, and delivered by a background processor.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	LastError     string
	NextRetryAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SentAt        *time.Time
}

// NewOutboxEntry creates a pending outbox entry for a serialized event
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		RetryCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkProcessing transitions the entry to PROCESSING
func (e *OutboxEntry) MarkProcessing() {
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
}

// MarkSent transitions the entry to SENT
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.SentAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a delivery failure and schedules the next retry
// with exponential backoff. After MaxOutboxRetries failures the entry
// is marked DEAD and no longer retried.
func (e *OutboxEntry) MarkFailed(deliveryErr error) {
	now := time.Now()
	e.RetryCount++
	if deliveryErr != nil {
		e.LastError = deliveryErr.Error()
	}
	if e.RetryCount >= MaxOutboxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
	} else {
		e.Status = OutboxStatusFailed
		next := now.Add(e.backoff())
		e.NextRetryAt = &next
	}
	e.UpdatedAt = now
}

// IsRetryable reports whether the entry is eligible for another delivery attempt
func (e *OutboxEntry) IsRetryable(now time.Time) bool {
	switch e.Status {
	case OutboxStatusPending:
		return true
	case OutboxStatusFailed:
		return e.NextRetryAt == nil || !now.Before(*e.NextRetryAt)
	default:
		return false
	}
}

// OutboxRepository persists outbox entries. Save participates in the
// same transaction as the state change that produced the event.
type OutboxRepository interface {
	Save(ctx context.Context, entry *OutboxEntry) error
	Update(ctx context.Context, entry *OutboxEntry) error
	// FindDue returns up to limit entries eligible for delivery,
	// claiming them so concurrent processors do not double-deliver.
	FindDue(ctx context.Context, limit int) ([]*OutboxEntry, error)
}

func (e *OutboxEntry) backoff() time.Duration {
	// 1m, 2m, 4m, 8m, ...
	d := time.Minute
	for i := 1; i < e.RetryCount; i++ {
		d *= 2
	}
	return d
}
