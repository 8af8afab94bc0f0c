package profile

import "fmt"

// SubscriptionLevel is a user's plan tier.
type SubscriptionLevel int32

const (
	LevelFree    SubscriptionLevel = 0
	LevelPremium SubscriptionLevel = 1
)

// Valid reports whether l is a known tier.
func (l SubscriptionLevel) Valid() bool {
	return l == LevelFree || l == LevelPremium
}

func (l SubscriptionLevel) String() string {
	switch l {
	case LevelFree:
		return "free"
	case LevelPremium:
		return "premium"
	default:
		return fmt.Sprintf("unknown(%d)", int32(l))
	}
}

// UserProfile is a user account record.
//
// HistoryKey is a denormalized pointer to the user's listen history record.
// It is always recomputed from the ID on write and never trusted from
// caller input.
type UserProfile struct {
	ID                string
	Username          string
	Email             string
	SubscriptionLevel SubscriptionLevel
	HistoryKey        string
}

// DeriveHistoryKey returns the history pointer for a user ID.
func DeriveHistoryKey(userID string) string {
	return userID + ":history"
}
