package types

import (
	"time"

	"github.com/google/uuid"
)

// RuleSetID represents a UUIDv7 rule set identifier.
// String alias enables type safety while maintaining JSON string serialization.
type RuleSetID string

// NewRuleSetID generates a UUIDv7 rule set identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleSetID() RuleSetID {
	return RuleSetID(uuid.Must(uuid.NewV7()).String())
}

// ParseRuleSetID validates and converts a string to RuleSetID.
func ParseRuleSetID(s string) (RuleSetID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return RuleSetID(u.String()), nil
}

// RuleSetIDTime extracts the creation timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RuleSetIDTime(id RuleSetID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
