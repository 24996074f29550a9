package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
)

// LinkSuggester ranks feedback cards by text overlap with an action card,
// producing candidates for linked-feedback attachments. Suggestions are
// advisory only; nothing is written until the user links a card.
type LinkSuggester struct {
	cardRepo ports.CardRepository
	logger   *zap.Logger
}

// NewLinkSuggester creates a new link suggester
func NewLinkSuggester(cardRepo ports.CardRepository, logger *zap.Logger) *LinkSuggester {
	return &LinkSuggester{
		cardRepo: cardRepo,
		logger:   logger,
	}
}

// LinkSuggestion is one ranked candidate
type LinkSuggestion struct {
	CardID  string  `json:"card_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	Matched int     `json:"matched_words"`
}

const (
	defaultMaxSuggestions = 5
	// candidates below this score are noise, not matches
	scoreThreshold = 0.2
)

// SuggestForCard returns feedback cards on the same board ranked by word
// overlap with the given action card. Already-linked cards are excluded.
func (s *LinkSuggester) SuggestForCard(ctx context.Context, cardID valueobjects.CardID, limit int) ([]LinkSuggestion, error) {
	if limit <= 0 {
		limit = defaultMaxSuggestions
	}

	card, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card.Type() != entities.CardTypeAction {
		return nil, fmt.Errorf("link suggestions only apply to action cards")
	}

	boardCards, err := s.cardRepo.GetByBoard(ctx, card.BoardID())
	if err != nil {
		return nil, fmt.Errorf("failed to load board cards: %w", err)
	}

	sourceWords := extractWords(card.Text().String())
	if len(sourceWords) == 0 {
		return nil, nil
	}

	linked := make(map[string]bool)
	for _, id := range card.LinkedFeedbackIDs() {
		linked[id.String()] = true
	}

	suggestions := make([]LinkSuggestion, 0, len(boardCards))
	for _, candidate := range boardCards {
		if candidate.Type() != entities.CardTypeFeedback {
			continue
		}
		if linked[candidate.ID().String()] {
			continue
		}

		score, matched := overlapScore(sourceWords, extractWords(candidate.Text().String()))
		if score < scoreThreshold {
			continue
		}

		suggestions = append(suggestions, LinkSuggestion{
			CardID:  candidate.ID().String(),
			Text:    candidate.Text().Summary(120),
			Score:   score,
			Matched: matched,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].CardID < suggestions[j].CardID
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	s.logger.Debug("Link suggestions computed",
		zap.String("card_id", cardID.String()),
		zap.Int("candidates", len(boardCards)),
		zap.Int("suggested", len(suggestions)))

	return suggestions, nil
}

// overlapScore measures how much of the source vocabulary the target
// shares, as a fraction of the source word set
func overlapScore(source, target map[string]bool) (float64, int) {
	if len(source) == 0 || len(target) == 0 {
		return 0, 0
	}

	matches := 0
	for word := range source {
		if target[word] {
			matches++
		}
	}

	return float64(matches) / float64(len(source)), matches
}

// extractWords tokenizes text into a lowercase word set, dropping short
// tokens that match on noise words rather than content
func extractWords(text string) map[string]bool {
	words := make(map[string]bool)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		cleaned := strings.Trim(token, ".,!?;:\"'()[]{}#@$%^&*+=<>/\\|`~")
		if len(cleaned) >= 3 {
			words[cleaned] = true
		}
	}

	return words
}
