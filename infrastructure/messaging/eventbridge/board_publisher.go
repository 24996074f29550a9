package eventbridge

import (
	"context"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/events"

	"go.uber.org/zap"
)

// BoardEventPublisher adapts the event bus to the fire-and-forget fan-out
// port. Publish failures are logged and swallowed: the write that raised the
// event has already landed, and the outbox relay covers listeners that
// missed the live broadcast.
type BoardEventPublisher struct {
	bus    ports.EventPublisher
	logger *zap.Logger
}

var _ ports.BoardEventPublisher = (*BoardEventPublisher)(nil)

// NewBoardEventPublisher creates the fan-out adapter
func NewBoardEventPublisher(bus ports.EventPublisher, logger *zap.Logger) *BoardEventPublisher {
	return &BoardEventPublisher{
		bus:    bus,
		logger: logger,
	}
}

func (p *BoardEventPublisher) publish(ctx context.Context, event events.DomainEvent) {
	if err := p.bus.Publish(ctx, event); err != nil {
		p.logger.Warn("Board event broadcast failed",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

func (p *BoardEventPublisher) CardCreated(ctx context.Context, event events.CardCreated) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) CardContentUpdated(ctx context.Context, event events.CardContentUpdated) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) CardMoved(ctx context.Context, event events.CardMoved) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) CardDeleted(ctx context.Context, event events.CardDeleted) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) CardsLinked(ctx context.Context, event events.CardsLinked) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) CardsUnlinked(ctx context.Context, event events.CardsUnlinked) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) ReactionAdded(ctx context.Context, event events.ReactionAdded) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) ReactionRemoved(ctx context.Context, event events.ReactionRemoved) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) BoardCleared(ctx context.Context, event events.BoardCleared) {
	p.publish(ctx, event)
}

func (p *BoardEventPublisher) BoardReset(ctx context.Context, event events.BoardReset) {
	p.publish(ctx, event)
}
