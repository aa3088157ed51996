package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// ProcessorConfig configures the outbox processor
type ProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// OutboxProcessor polls the outbox and delivers pending events to
// registered handlers. Delivery happens strictly after the producing
// transaction committed; a handler failure marks the entry for retry
// with backoff and never touches the committed state.
type OutboxProcessor struct {
	repo        shared.OutboxRepository
	serializer  shared.EventSerializer
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
	cfg         ProcessorConfig

	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler

	stop chan struct{}
	done chan struct{}
}

// NewOutboxProcessor creates the processor
func NewOutboxProcessor(repo shared.OutboxRepository, serializer shared.EventSerializer, idempotency shared.IdempotencyStore, logger *zap.Logger, cfg ProcessorConfig) *OutboxProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &OutboxProcessor{
		repo:        repo,
		serializer:  serializer,
		idempotency: idempotency,
		logger:      logger.Named("outbox"),
		cfg:         cfg,
		handlers:    make(map[string][]shared.EventHandler),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a handler for the event types it declares
func (p *OutboxProcessor) Subscribe(handler shared.EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range handler.EventTypes() {
		p.handlers[t] = append(p.handlers[t], handler)
	}
}

// Start runs the polling loop until Stop is called or ctx is cancelled
func (p *OutboxProcessor) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.ProcessBatch(ctx)
			}
		}
	}()
}

// Stop stops the polling loop and waits for it to finish
func (p *OutboxProcessor) Stop() {
	close(p.stop)
	<-p.done
}

// ProcessBatch claims and delivers one batch of due entries. Exposed
// so tests and the poller share the same path.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) {
	entries, err := p.repo.FindDue(ctx, p.cfg.BatchSize)
	if err != nil {
		p.logger.Error("failed to load due outbox entries", zap.Error(err))
		return
	}
	for _, entry := range entries {
		p.deliver(ctx, entry)
	}
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) {
	already, err := p.idempotency.IsProcessed(ctx, entry.EventID.String())
	if err != nil {
		p.logger.Warn("idempotency check failed, delivering anyway",
			zap.String("event_id", entry.EventID.String()), zap.Error(err))
	}
	if already {
		entry.MarkSent()
		p.update(ctx, entry)
		return
	}

	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		p.logger.Error("undeliverable outbox entry",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.Error(err))
		entry.MarkFailed(err)
		p.update(ctx, entry)
		return
	}

	p.mu.RLock()
	handlers := p.handlers[entry.EventType]
	p.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			p.logger.Warn("event handler failed",
				zap.String("event_id", entry.EventID.String()),
				zap.String("event_type", entry.EventType),
				zap.Int("retry_count", entry.RetryCount),
				zap.Error(err))
			entry.MarkFailed(err)
			p.update(ctx, entry)
			return
		}
	}

	entry.MarkSent()
	p.update(ctx, entry)
	if _, err := p.idempotency.MarkProcessed(ctx, entry.EventID.String(), shared.DefaultIdempotencyTTL); err != nil {
		p.logger.Warn("failed to mark event processed",
			zap.String("event_id", entry.EventID.String()), zap.Error(err))
	}
}

func (p *OutboxProcessor) update(ctx context.Context, entry *shared.OutboxEntry) {
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to update outbox entry",
			zap.String("event_id", entry.EventID.String()), zap.Error(err))
	}
}
