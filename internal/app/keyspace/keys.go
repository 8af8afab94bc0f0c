// Package keyspace derives storage keys from entity identities.
//
// Every function is pure and deterministic: the same identity always maps
// to the same key, and no two entity types share a key for any identity.
// That determinism is what lets the transactional engine watch a wallet's
// key recomputed from the user ID alone, with no lookup step.
//
// Changing any layout here requires a migration for existing records.
package keyspace

import "fmt"

// GenreIndex is the well-known set holding every genre ID with a record.
const GenreIndex = "genres:all_ids"

// Genre returns the key of a genre's metadata record.
func Genre(id string) string {
	return fmt.Sprintf("genre:%s:metadata", id)
}

// UserProfile returns the key of a user's profile record.
func UserProfile(userID string) string {
	return fmt.Sprintf("user:%s:profile", userID)
}

// UserHistory returns the key of a user's listen history record.
func UserHistory(userID string) string {
	return fmt.Sprintf("user:%s:history", userID)
}

// UserWallet returns the key of a user's credit wallet record.
func UserWallet(userID string) string {
	return fmt.Sprintf("user:%s:wallet", userID)
}
