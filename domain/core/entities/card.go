package entities

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// CardType distinguishes feedback cards from action cards
type CardType string

const (
	CardTypeFeedback CardType = "feedback"
	CardTypeAction   CardType = "action"
)

// IsValid reports whether the card type is a known enumerant
func (t CardType) IsValid() bool {
	return t == CardTypeFeedback || t == CardTypeAction
}

// Card is the main entity of the board engine: a feedback or action item
// posted into a board column. Feedback cards may be grouped one level deep
// under a parent feedback card; action cards may link to feedback cards.
// This is a rich domain model with encapsulated business logic.
type Card struct {
	// Private fields ensure encapsulation
	id                  valueobjects.CardID
	boardID             valueobjects.BoardID
	columnID            string
	text                valueobjects.CardText
	cardType            CardType
	anonymous           bool
	creatorHash         string
	creatorAlias        string
	parentID            *valueobjects.CardID
	linkedFeedback      []valueobjects.CardID
	directReactions     int
	aggregatedReactions int
	createdAt           time.Time
	updatedAt           time.Time
	version             int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewCard creates a new card with zero counts and no relationships
func NewCard(boardID valueobjects.BoardID, columnID string, text valueobjects.CardText, cardType CardType, anonymous bool, creatorHash, creatorAlias string) (*Card, error) {
	if boardID.IsZero() {
		return nil, pkgerrors.NewValidationError("boardID cannot be empty")
	}
	if columnID == "" {
		return nil, pkgerrors.NewValidationError("columnID cannot be empty")
	}
	if text.IsEmpty() {
		return nil, pkgerrors.NewValidationError("card text cannot be empty")
	}
	if !cardType.IsValid() {
		return nil, pkgerrors.NewValidationError("card type must be feedback or action")
	}
	if creatorHash == "" {
		return nil, pkgerrors.NewValidationError("creator identity cannot be empty")
	}

	now := time.Now()
	card := &Card{
		id:             valueobjects.NewCardID(),
		boardID:        boardID,
		columnID:       columnID,
		text:           text,
		cardType:       cardType,
		anonymous:      anonymous,
		creatorHash:    creatorHash,
		creatorAlias:   creatorAlias,
		linkedFeedback: []valueobjects.CardID{},
		createdAt:      now,
		updatedAt:      now,
		version:        1,
		events:         []events.DomainEvent{},
	}

	alias := creatorAlias
	if anonymous {
		alias = ""
	}
	card.addEvent(events.NewCardCreated(
		card.id,
		boardID,
		columnID,
		string(cardType),
		text.String(),
		anonymous,
		alias,
		now,
	))

	return card, nil
}

// ReconstructCard reconstructs a card from repository data with preserved
// timestamps, counts and relationships
func ReconstructCard(
	id valueobjects.CardID,
	boardID valueobjects.BoardID,
	columnID string,
	text valueobjects.CardText,
	cardType CardType,
	anonymous bool,
	creatorHash, creatorAlias string,
	parentID *valueobjects.CardID,
	linkedFeedback []valueobjects.CardID,
	directReactions, aggregatedReactions int,
	createdAt, updatedAt time.Time,
) (*Card, error) {
	if !cardType.IsValid() {
		return nil, pkgerrors.NewValidationError("card type must be feedback or action")
	}
	if directReactions < 0 || aggregatedReactions < 0 {
		return nil, pkgerrors.NewValidationError("reaction counts cannot be negative")
	}

	if linkedFeedback == nil {
		linkedFeedback = []valueobjects.CardID{}
	}

	return &Card{
		id:                  id,
		boardID:             boardID,
		columnID:            columnID,
		text:                text,
		cardType:            cardType,
		anonymous:           anonymous,
		creatorHash:         creatorHash,
		creatorAlias:        creatorAlias,
		parentID:            parentID,
		linkedFeedback:      linkedFeedback,
		directReactions:     directReactions,
		aggregatedReactions: aggregatedReactions,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
		version:             1,
		events:              []events.DomainEvent{},
	}, nil
}

// ID returns the card's unique identifier
func (c *Card) ID() valueobjects.CardID {
	return c.id
}

// BoardID returns the board this card belongs to
func (c *Card) BoardID() valueobjects.BoardID {
	return c.boardID
}

// ColumnID returns the column this card sits in
func (c *Card) ColumnID() string {
	return c.columnID
}

// Text returns the card's text content
func (c *Card) Text() valueobjects.CardText {
	return c.text
}

// Type returns the card type
func (c *Card) Type() CardType {
	return c.cardType
}

// IsAnonymous reports whether the card hides its creator's alias
func (c *Card) IsAnonymous() bool {
	return c.anonymous
}

// CreatorHash returns the opaque hashed identity of the creator
func (c *Card) CreatorHash() string {
	return c.creatorHash
}

// CreatorAlias returns the creator's display alias; empty for anonymous cards
func (c *Card) CreatorAlias() string {
	if c.anonymous {
		return ""
	}
	return c.creatorAlias
}

// IsCreatedBy reports whether the given hashed identity created this card
func (c *Card) IsCreatedBy(userHash string) bool {
	return c.creatorHash == userHash
}

// ParentID returns the parent card ID, if this card is grouped
func (c *Card) ParentID() (valueobjects.CardID, bool) {
	if c.parentID == nil {
		return valueobjects.CardID{}, false
	}
	return *c.parentID, true
}

// HasParent reports whether this card is grouped under a parent
func (c *Card) HasParent() bool {
	return c.parentID != nil
}

// DirectReactionCount returns the number of reactions placed directly on
// this card
func (c *Card) DirectReactionCount() int {
	return c.directReactions
}

// AggregatedReactionCount returns the direct count plus the contributions
// propagated from children since they were linked
func (c *Card) AggregatedReactionCount() int {
	return c.aggregatedReactions
}

// UpdateText updates the card's text with validation
func (c *Card) UpdateText(text valueobjects.CardText) error {
	if text.IsEmpty() {
		return pkgerrors.NewValidationError("card text cannot be empty")
	}

	if text.Equals(c.text) {
		return nil // No change needed
	}

	oldText := c.text
	c.text = text
	c.updatedAt = time.Now()
	c.version++

	c.addEvent(events.NewCardContentUpdated(c.id, c.boardID, oldText.String(), text.String(), c.updatedAt))

	return nil
}

// MoveToColumn moves the card to another column. Column membership on the
// board is checked by the caller; relationships are preserved across moves.
func (c *Card) MoveToColumn(columnID string) error {
	if columnID == "" {
		return pkgerrors.NewValidationError("columnID cannot be empty")
	}

	if columnID == c.columnID {
		return nil // No movement needed
	}

	oldColumn := c.columnID
	c.columnID = columnID
	c.updatedAt = time.Now()

	c.addEvent(events.NewCardMoved(c.id, c.boardID, oldColumn, columnID, c.updatedAt))

	return nil
}

// SetParent groups this card under the given parent. Structural rules
// (card types, depth, cycles) are enforced by the link validator; the
// entity only guards its local invariant.
func (c *Card) SetParent(parentID valueobjects.CardID) error {
	if c.cardType != CardTypeFeedback {
		return pkgerrors.NewValidationError("only feedback cards can be grouped under a parent")
	}
	if c.id.Equals(parentID) {
		return pkgerrors.NewCircularRelationshipError("a card cannot be its own parent")
	}

	c.parentID = &parentID
	c.updatedAt = time.Now()

	c.addEvent(events.NewCardsLinked(parentID, c.id, c.boardID, "parent_of", c.updatedAt))

	return nil
}

// ClearParent removes the card's parent reference. Clearing a card that has
// no parent is a no-op.
func (c *Card) ClearParent() {
	if c.parentID == nil {
		return
	}

	parentID := *c.parentID
	c.parentID = nil
	c.updatedAt = time.Now()

	c.addEvent(events.NewCardsUnlinked(parentID, c.id, c.boardID, "parent_of", c.updatedAt))
}

// AddLinkedFeedback links a feedback card to this action card. The
// operation is an idempotent set add.
func (c *Card) AddLinkedFeedback(feedbackID valueobjects.CardID) error {
	if c.cardType != CardTypeAction {
		return pkgerrors.NewValidationError("only action cards can link feedback cards")
	}

	for _, id := range c.linkedFeedback {
		if id.Equals(feedbackID) {
			return nil // Already linked
		}
	}

	c.linkedFeedback = append(c.linkedFeedback, feedbackID)
	c.updatedAt = time.Now()

	c.addEvent(events.NewCardsLinked(c.id, feedbackID, c.boardID, "linked_to", c.updatedAt))

	return nil
}

// RemoveLinkedFeedback removes a feedback link. Removing an absent link is
// a no-op; the result reports whether a link was actually removed.
func (c *Card) RemoveLinkedFeedback(feedbackID valueobjects.CardID) bool {
	newLinks := make([]valueobjects.CardID, 0, len(c.linkedFeedback))
	found := false

	for _, id := range c.linkedFeedback {
		if id.Equals(feedbackID) {
			found = true
			continue
		}
		newLinks = append(newLinks, id)
	}

	if !found {
		return false
	}

	c.linkedFeedback = newLinks
	c.updatedAt = time.Now()

	c.addEvent(events.NewCardsUnlinked(c.id, feedbackID, c.boardID, "linked_to", c.updatedAt))

	return true
}

// LinkedFeedbackIDs returns the feedback cards linked to this action card
func (c *Card) LinkedFeedbackIDs() []valueobjects.CardID {
	// Return a copy to maintain encapsulation
	ids := make([]valueobjects.CardID, len(c.linkedFeedback))
	copy(ids, c.linkedFeedback)
	return ids
}

// HasLinkedFeedback reports whether the given feedback card is linked
func (c *Card) HasLinkedFeedback(feedbackID valueobjects.CardID) bool {
	for _, id := range c.linkedFeedback {
		if id.Equals(feedbackID) {
			return true
		}
	}
	return false
}

// ApplyDirectReactionDelta adjusts both counters by the given delta,
// floored at zero. Persistent stores apply the same change with atomic
// single-row updates; this method keeps the in-memory model consistent.
func (c *Card) ApplyDirectReactionDelta(delta int) {
	c.directReactions = clampNonNegative(c.directReactions + delta)
	c.aggregatedReactions = clampNonNegative(c.aggregatedReactions + delta)
	c.updatedAt = time.Now()
}

// ApplyAggregatedReactionDelta adjusts only the aggregated counter, floored
// at zero. Used when a child card's reaction change propagates to its parent.
func (c *Card) ApplyAggregatedReactionDelta(delta int) {
	c.aggregatedReactions = clampNonNegative(c.aggregatedReactions + delta)
	c.updatedAt = time.Now()
}

// CreatedAt returns when the card was created
func (c *Card) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the card was last updated
func (c *Card) UpdatedAt() time.Time {
	return c.updatedAt
}

// Version returns the card's version for optimistic locking
func (c *Card) Version() int {
	return c.version
}

// GetUncommittedEvents returns all uncommitted domain events
func (c *Card) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *Card) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (c *Card) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
