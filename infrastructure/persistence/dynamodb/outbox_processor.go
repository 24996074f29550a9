package dynamodb

import (
	"context"
	"fmt"
	"time"

	"retroboard-backend/application/ports"

	"go.uber.org/zap"
)

// OutboxProcessor relays stored events that have not reached the event bus
// yet. Command handlers publish inline on the happy path; this loop picks up
// whatever a crash or a bus outage left behind.
type OutboxProcessor struct {
	eventStore     *DynamoDBEventStore
	eventPublisher ports.EventPublisher
	logger         *zap.Logger

	batchSize          int32
	processingInterval time.Duration
	maxRetries         int

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	eventStore *DynamoDBEventStore,
	eventPublisher ports.EventPublisher,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		eventStore:         eventStore,
		eventPublisher:     eventPublisher,
		logger:             logger,
		batchSize:          50,
		processingInterval: 5 * time.Second,
		maxRetries:         3,
		stopChan:           make(chan struct{}),
		stoppedChan:        make(chan struct{}),
	}
}

// Start begins the background relay loop
func (op *OutboxProcessor) Start(ctx context.Context) {
	op.logger.Info("Starting outbox processor",
		zap.Int32("batchSize", op.batchSize),
		zap.Duration("interval", op.processingInterval),
	)

	go op.processLoop(ctx)
}

// Stop stops the relay loop and waits for it to drain
func (op *OutboxProcessor) Stop() {
	close(op.stopChan)
	<-op.stoppedChan
	op.logger.Info("Outbox processor stopped")
}

func (op *OutboxProcessor) processLoop(ctx context.Context) {
	defer close(op.stoppedChan)

	ticker := time.NewTicker(op.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-op.stopChan:
			return
		case <-ticker.C:
			if err := op.processBatch(ctx); err != nil {
				op.logger.Error("Error processing outbox batch", zap.Error(err))
			}
		}
	}
}

func (op *OutboxProcessor) processBatch(ctx context.Context) error {
	pending, err := op.eventStore.GetPendingEvents(ctx, op.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	published := 0
	failed := 0

	for _, record := range pending {
		if err := op.processEvent(ctx, record); err != nil {
			failed++
		} else {
			published++
		}
	}

	op.logger.Debug("Outbox batch processed",
		zap.Int("published", published),
		zap.Int("failed", failed),
	)

	return nil
}

func (op *OutboxProcessor) processEvent(ctx context.Context, record *EventRecord) error {
	domainEvent, err := op.eventStore.recordToEvent(*record)
	if err != nil {
		// Malformed records burn an attempt so they eventually stop retrying
		return op.markEventFailed(ctx, record, fmt.Sprintf("failed to convert to domain event: %v", err))
	}

	if err := op.eventPublisher.Publish(ctx, domainEvent); err != nil {
		return op.markEventFailed(ctx, record, fmt.Sprintf("publish failed: %v", err))
	}

	if err := op.eventStore.MarkEventAsPublished(ctx, record.PK, record.SK); err != nil {
		op.logger.Error("Failed to mark event as published",
			zap.String("eventID", record.EventID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (op *OutboxProcessor) markEventFailed(ctx context.Context, record *EventRecord, errorMsg string) error {
	attempts := record.PublishAttempts + 1

	if err := op.eventStore.MarkEventAsFailed(ctx, record.PK, record.SK, errorMsg, attempts); err != nil {
		op.logger.Error("Failed to record publish failure",
			zap.String("eventID", record.EventID),
			zap.Error(err),
		)
		return err
	}

	if attempts >= op.maxRetries {
		op.logger.Warn("Event permanently failed after max retries",
			zap.String("eventID", record.EventID),
			zap.String("eventType", record.EventType),
			zap.Int("attempts", attempts),
			zap.String("error", errorMsg),
		)
	}

	return fmt.Errorf("event processing failed: %s", errorMsg)
}
