package handlers

import (
	"time"

	"retroboard-backend/application/queries"
	"retroboard-backend/domain/core/entities"
)

// toCardView maps a card entity to its read model
func toCardView(card *entities.Card) queries.CardView {
	view := queries.CardView{
		ID:                      card.ID().String(),
		BoardID:                 card.BoardID().String(),
		ColumnID:                card.ColumnID(),
		Text:                    card.Text().String(),
		CardType:                string(card.Type()),
		Anonymous:               card.IsAnonymous(),
		CreatorAlias:            card.CreatorAlias(),
		DirectReactionCount:     card.DirectReactionCount(),
		AggregatedReactionCount: card.AggregatedReactionCount(),
		CreatedAt:               card.CreatedAt().Format(time.RFC3339),
		UpdatedAt:               card.UpdatedAt().Format(time.RFC3339),
	}

	if parentID, ok := card.ParentID(); ok {
		view.ParentCardID = parentID.String()
	}

	for _, id := range card.LinkedFeedbackIDs() {
		view.LinkedFeedbackIDs = append(view.LinkedFeedbackIDs, id.String())
	}

	return view
}

// embedRelations turns a flat card list into top-level views with children
// and linked feedback embedded. Cards grouped under a parent appear only
// inside that parent's Children.
func embedRelations(cards []*entities.Card) []queries.CardView {
	views := make(map[string]queries.CardView, len(cards))
	for _, card := range cards {
		views[card.ID().String()] = toCardView(card)
	}

	// Attach children to their parents in input order
	for _, card := range cards {
		parentID, ok := card.ParentID()
		if !ok {
			continue
		}
		parent, exists := views[parentID.String()]
		if !exists {
			// Orphaned reference in storage; surface the card at top level
			continue
		}
		parent.Children = append(parent.Children, views[card.ID().String()])
		views[parentID.String()] = parent
	}

	// Attach linked feedback to action cards
	for _, card := range cards {
		if card.Type() != entities.CardTypeAction {
			continue
		}
		view := views[card.ID().String()]
		for _, feedbackID := range card.LinkedFeedbackIDs() {
			if linked, exists := views[feedbackID.String()]; exists {
				view.LinkedFeedback = append(view.LinkedFeedback, linked)
			}
		}
		views[card.ID().String()] = view
	}

	// Top level excludes grouped children whose parent is present
	var result []queries.CardView
	for _, card := range cards {
		if parentID, ok := card.ParentID(); ok {
			if _, parentPresent := views[parentID.String()]; parentPresent {
				continue
			}
		}
		result = append(result, views[card.ID().String()])
	}

	return result
}
