package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"retroboard-backend/domain/config"
	pkgerrors "retroboard-backend/pkg/errors"
)

// CardText is a value object for the text content of a card
type CardText struct {
	value string
}

// NewCardText creates card text with validation using default configuration
func NewCardText(text string) (CardText, error) {
	return NewCardTextWithConfig(text, config.DefaultDomainConfig())
}

// NewCardTextWithConfig creates card text with validation and configuration
func NewCardTextWithConfig(text string, cfg *config.DomainConfig) (CardText, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return CardText{}, pkgerrors.NewValidationError("card text cannot be empty")
	}

	length := utf8.RuneCountInString(text)
	if length > cfg.MaxCardTextLength {
		return CardText{}, fmt.Errorf("card text exceeds maximum length of %d characters", cfg.MaxCardTextLength)
	}

	return CardText{value: text}, nil
}

// String returns the text value
func (t CardText) String() string {
	return t.value
}

// IsEmpty checks if the text is empty
func (t CardText) IsEmpty() bool {
	return t.value == ""
}

// Equals checks if two card texts are equal
func (t CardText) Equals(other CardText) bool {
	return t.value == other.value
}

// Summary returns a truncated summary of the text
func (t CardText) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	if utf8.RuneCountInString(t.value) <= maxLength {
		return t.value
	}

	runes := []rune(t.value)
	return string(runes[:maxLength-3]) + "..."
}
