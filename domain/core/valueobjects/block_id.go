package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// BlockID identifies a block within a document. It is stable across
// reorders and content edits, and is never reused for a different block.
type BlockID struct {
	value string
}

// NewBlockID creates a new random BlockID
func NewBlockID() BlockID {
	return BlockID{value: uuid.New().String()}
}

// NewBlockIDFromString creates a BlockID from an existing string.
// Persisted documents may carry ids minted by other clients, so any
// non-blank token is accepted, not only UUIDs.
func NewBlockIDFromString(id string) (BlockID, error) {
	if id == "" {
		return BlockID{}, errors.New("block ID cannot be empty")
	}
	if strings.TrimSpace(id) != id || strings.ContainsAny(id, " \t\r\n") {
		return BlockID{}, errors.New("block ID must not contain whitespace")
	}
	return BlockID{value: id}, nil
}

// String returns the string representation of the BlockID
func (id BlockID) String() string {
	return id.value
}

// Equals checks if two BlockIDs are equal
func (id BlockID) Equals(other BlockID) bool {
	return id.value == other.value
}

// IsZero checks if the BlockID is the zero value
func (id BlockID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id BlockID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *BlockID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("BlockID must be a string")
	}
	parsed, err := NewBlockIDFromString(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
