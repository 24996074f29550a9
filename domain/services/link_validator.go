// Package services contains stateless domain services that coordinate
// rules across multiple entities without touching storage.
package services

import (
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/pkg/errors"
)

// LinkType identifies the kind of relationship being established between
// two cards
type LinkType string

const (
	// LinkTypeParentOf groups a feedback card under a parent feedback card
	LinkTypeParentOf LinkType = "parent_of"
	// LinkTypeLinkedTo attaches a feedback card to an action card
	LinkTypeLinkedTo LinkType = "linked_to"
)

// CardLookup resolves a card by ID from the caller's working set. The
// validator never reaches into storage itself.
type CardLookup func(valueobjects.CardID) (*entities.Card, bool)

// LinkValidator enforces the structural rules for card relationships:
// type compatibility, single-parent, depth-one hierarchy and cycle
// freedom. It is a pure rule checker with no storage access.
type LinkValidator struct{}

// NewLinkValidator creates a new link validator
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{}
}

// ValidateLink checks whether a link of the given type may be established
// from source to target. For parent_of links the source is the prospective
// parent and the target the prospective child. Checks run in a fixed order
// and short-circuit on the first failure.
func (v *LinkValidator) ValidateLink(linkType LinkType, source, target *entities.Card, lookup CardLookup) error {
	// Missing cards fail before anything else can be inspected
	if source == nil || target == nil {
		return errors.ErrCardNotFound
	}

	if source.ID().Equals(target.ID()) {
		return errors.ErrSelfLink
	}

	if !source.BoardID().Equals(target.BoardID()) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"CROSS_BOARD_LINK",
			"Cards on different boards cannot be linked",
		).WithDetail("source_board", source.BoardID().String()).
			WithDetail("target_board", target.BoardID().String())
	}

	switch linkType {
	case LinkTypeParentOf:
		return v.validateParentLink(source, target, lookup)
	case LinkTypeLinkedTo:
		return v.validateFeedbackLink(source, target)
	default:
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_LINK_TYPE",
			"Unknown link type",
		).WithDetail("link_type", string(linkType))
	}
}

// validateParentLink checks the grouping rules for parent_of links
func (v *LinkValidator) validateParentLink(parent, child *entities.Card, lookup CardLookup) error {
	if parent.Type() != entities.CardTypeFeedback || child.Type() != entities.CardTypeFeedback {
		return errors.ErrInvalidCardType.
			WithDetail("reason", "parent links require feedback cards on both sides").
			WithDetail("parent_type", string(parent.Type())).
			WithDetail("child_type", string(child.Type()))
	}

	if child.HasParent() {
		return errors.ErrChildHasParent.WithDetail("child_id", child.ID().String())
	}

	if parent.HasParent() {
		return errors.ErrParentIsChild.WithDetail("parent_id", parent.ID().String())
	}

	// Walk the prospective parent's ancestor chain. The depth-one cap makes
	// most cycles structurally impossible, but this also catches the swap
	// case: A is parent of B, then B is offered as parent of A.
	if v.reachesAncestor(parent, child.ID(), lookup) {
		return errors.ErrCircularLink.
			WithDetail("parent_id", parent.ID().String()).
			WithDetail("child_id", child.ID().String())
	}

	return nil
}

// validateFeedbackLink checks the attachment rules for linked_to links
func (v *LinkValidator) validateFeedbackLink(action, feedback *entities.Card) error {
	if action.Type() != entities.CardTypeAction {
		return errors.ErrInvalidCardType.
			WithDetail("reason", "only action cards can link feedback cards").
			WithDetail("source_type", string(action.Type()))
	}

	if feedback.Type() != entities.CardTypeFeedback {
		return errors.ErrInvalidCardType.
			WithDetail("reason", "action cards can only link feedback cards").
			WithDetail("target_type", string(feedback.Type()))
	}

	return nil
}

// reachesAncestor walks card's parent chain and reports whether it reaches
// the given ID. A visited set guards against malformed stored chains.
func (v *LinkValidator) reachesAncestor(card *entities.Card, id valueobjects.CardID, lookup CardLookup) bool {
	visited := map[string]bool{card.ID().String(): true}
	current := card

	for {
		parentID, ok := current.ParentID()
		if !ok {
			return false
		}
		if parentID.Equals(id) {
			return true
		}
		if visited[parentID.String()] {
			return false
		}
		visited[parentID.String()] = true

		if lookup == nil {
			return false
		}
		next, found := lookup(parentID)
		if !found {
			return false
		}
		current = next
	}
}
