package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// CardID is a value object representing a unique card identifier
// Value objects are immutable and have no identity beyond their value
type CardID struct {
	value string
}

// NewCardID creates a new random CardID
func NewCardID() CardID {
	return CardID{value: uuid.New().String()}
}

// NewCardIDFromString creates a CardID from an existing string
func NewCardIDFromString(id string) (CardID, error) {
	if id == "" {
		return CardID{}, errors.New("card ID cannot be empty")
	}
	if !isValidUUID(id) {
		return CardID{}, errors.New("card ID must be a valid UUID")
	}
	return CardID{value: id}, nil
}

// String returns the string representation of the CardID
func (id CardID) String() string {
	return id.value
}

// Equals checks if two CardIDs are equal
func (id CardID) Equals(other CardID) bool {
	return id.value == other.value
}

// IsZero checks if the CardID is the zero value
func (id CardID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id CardID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *CardID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("CardID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// BoardID is a value object representing a unique board identifier
type BoardID struct {
	value string
}

// NewBoardID creates a new random BoardID
func NewBoardID() BoardID {
	return BoardID{value: uuid.New().String()}
}

// NewBoardIDFromString creates a BoardID from an existing string
func NewBoardIDFromString(id string) (BoardID, error) {
	if id == "" {
		return BoardID{}, errors.New("board ID cannot be empty")
	}
	return BoardID{value: id}, nil
}

// String returns the string representation of the BoardID
func (id BoardID) String() string {
	return id.value
}

// Equals checks if two BoardIDs are equal
func (id BoardID) Equals(other BoardID) bool {
	return id.value == other.value
}

// IsZero checks if the BoardID is the zero value
func (id BoardID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id BoardID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *BoardID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("BoardID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
