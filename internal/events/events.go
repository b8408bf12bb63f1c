// Package events defines the routing keys and payloads published after a
// transition commits. Publishing is fire-and-forget: a lost event never
// rolls back a committed transition.
package events

import (
	"encoding/json"
	"fmt"
)

const (
	RKGameCreated     = "game.created"
	RKGameApproved    = "game.approved"
	RKGameRejected    = "game.rejected"
	RKGameCancelled   = "game.cancelled"
	RKGameRescheduled = "game.rescheduled"
	RKGameJoined      = "game.joined"
	RKGameWaitlisted  = "game.waitlisted"
	RKGameLeft        = "game.left"
	RKGameRemoved     = "game.removed"
	RKGamePromoted    = "game.promoted"
	RKGameTransferred = "game.transferred"

	RKFriendRequested = "friend.requested"
	RKFriendResponded = "friend.responded"
)

// GameCreated carries enough for a notification message.
type GameCreated struct {
	GameID    string `json:"game_id"`
	FieldID   string `json:"field_id"`
	CreatorID string `json:"creator_id"`
	Start     int64  `json:"start"` // unix seconds
	End       int64  `json:"end"`
}

type GameSimple struct {
	GameID string `json:"game_id"`
}

type RosterChange struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
}

type CreatorTransferred struct {
	GameID       string `json:"game_id"`
	NewCreatorID string `json:"new_creator_id"`
}

type FriendRequested struct {
	RelationID  string `json:"relation_id"`
	RequesterID string `json:"requester_id"`
	RecipientID string `json:"recipient_id"`
}

type FriendResponded struct {
	RelationID string `json:"relation_id"`
	Decision   string `json:"decision"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
