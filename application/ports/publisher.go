package ports

import (
	"context"

	"retroboard-backend/domain/events"
)

// BoardEventPublisher is the fire-and-forget notification sink for board
// activity. Implementations carry enough denormalized data per call for a
// listener to update its view without re-querying. Publish failures are
// logged by the implementation and never surface to the mutation path.
type BoardEventPublisher interface {
	// CardCreated notifies that a card was created
	CardCreated(ctx context.Context, event events.CardCreated)

	// CardContentUpdated notifies that a card's text changed
	CardContentUpdated(ctx context.Context, event events.CardContentUpdated)

	// CardMoved notifies that a card changed column
	CardMoved(ctx context.Context, event events.CardMoved)

	// CardDeleted notifies that a card was deleted, with any orphaned children
	CardDeleted(ctx context.Context, event events.CardDeleted)

	// CardsLinked notifies that a relationship was established
	CardsLinked(ctx context.Context, event events.CardsLinked)

	// CardsUnlinked notifies that a relationship was removed
	CardsUnlinked(ctx context.Context, event events.CardsUnlinked)

	// ReactionAdded notifies that a reaction landed, with updated counts
	ReactionAdded(ctx context.Context, event events.ReactionAdded)

	// ReactionRemoved notifies that a reaction was removed, with updated counts
	ReactionRemoved(ctx context.Context, event events.ReactionRemoved)

	// BoardCleared notifies that a board's content was torn down
	BoardCleared(ctx context.Context, event events.BoardCleared)

	// BoardReset notifies that a board was cleared and possibly reopened
	BoardReset(ctx context.Context, event events.BoardReset)
}
