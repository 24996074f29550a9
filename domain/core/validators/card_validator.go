package validators

import (
	"fmt"
	"regexp"
	"strings"

	"retroboard-backend/domain/config"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/pkg/errors"
)

// CardValidator validates card-related domain rules
type CardValidator struct {
	textMinLength  int
	textMaxLength  int
	aliasMaxLength int
	columnPattern  *regexp.Regexp
	forbiddenWords []string
}

// NewCardValidator creates a new card validator with default rules
func NewCardValidator() *CardValidator {
	return NewCardValidatorWithConfig(config.DefaultDomainConfig())
}

// NewCardValidatorWithConfig creates a card validator from domain configuration
func NewCardValidatorWithConfig(cfg *config.DomainConfig) *CardValidator {
	return &CardValidator{
		textMinLength:  1,
		textMaxLength:  cfg.MaxCardTextLength,
		aliasMaxLength: cfg.MaxAliasLength,
		columnPattern:  regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
		forbiddenWords: []string{}, // Can be configured with inappropriate content filters
	}
}

// ValidateNewCard validates the fields of a card about to be created
func (v *CardValidator) ValidateNewCard(text, columnID string, cardType entities.CardType, alias string) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.validateText(text); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("text", err.Error())
		}
	}

	if err := v.ValidateColumn(columnID); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("column", err.Error())
		}
	}

	if err := v.validateCardType(cardType); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("type", err.Error())
		}
	}

	if err := v.ValidateAlias(alias); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("alias", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// ValidateText validates card text content
func (v *CardValidator) ValidateText(text string) error {
	return v.validateText(text)
}

func (v *CardValidator) validateText(text string) error {
	trimmed := strings.TrimSpace(text)

	if len(trimmed) < v.textMinLength {
		return errors.ErrCardTextRequired
	}

	if len(trimmed) > v.textMaxLength {
		return errors.ErrCardTextTooLong.
			WithDetail("actual_length", len(trimmed)).
			WithDetail("max_length", v.textMaxLength)
	}

	if strings.Contains(text, "<script>") || strings.Contains(text, "javascript:") {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MALICIOUS_CONTENT",
			"Card text contains potentially malicious code",
		).WithDetail("field", "text")
	}

	if v.containsForbiddenWords(trimmed) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INAPPROPRIATE_CONTENT",
			"Card text contains inappropriate content",
		).WithDetail("field", "text")
	}

	return nil
}

// ValidateColumn validates a column identifier
func (v *CardValidator) ValidateColumn(columnID string) error {
	if columnID == "" {
		return errors.ErrInvalidColumn.WithDetail("column", columnID)
	}

	if !v.columnPattern.MatchString(columnID) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_COLUMN_FORMAT",
			"Column identifier contains invalid characters",
		).WithDetail("field", "column").WithDetail("column", columnID)
	}

	return nil
}

// ValidateColumnOnBoard validates that the column exists on the given board
func (v *CardValidator) ValidateColumnOnBoard(board *entities.Board, columnID string) error {
	if err := v.ValidateColumn(columnID); err != nil {
		return err
	}

	if !board.HasColumn(columnID) {
		return errors.ErrInvalidColumn.
			WithDetail("column", columnID).
			WithDetail("board_id", board.ID().String())
	}

	return nil
}

// validateCardType validates the card type enumerant
func (v *CardValidator) validateCardType(cardType entities.CardType) error {
	if !cardType.IsValid() {
		return errors.ErrInvalidCardType.WithDetail("type", string(cardType))
	}
	return nil
}

// ValidateAlias validates a user display alias
func (v *CardValidator) ValidateAlias(alias string) error {
	if alias == "" {
		return nil // Alias is optional
	}

	if len(alias) > v.aliasMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"ALIAS_TOO_LONG",
			fmt.Sprintf("Alias exceeds maximum length of %d characters", v.aliasMaxLength),
		).WithDetail("field", "alias").WithDetail("actual_length", len(alias))
	}

	return nil
}

// containsForbiddenWords checks content against the configured word filter
func (v *CardValidator) containsForbiddenWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range v.forbiddenWords {
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
