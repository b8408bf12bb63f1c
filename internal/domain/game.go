package domain

import (
	"time"

	"github.com/juva99/yoop-sub001/internal/ledger"
)

type GameStatus string

const (
	GamePending   GameStatus = "PENDING"
	GameApproved  GameStatus = "APPROVED"
	GameRejected  GameStatus = "REJECTED"
	GameCancelled GameStatus = "CANCELLED"
)

// A PENDING game already reserves its slot: it blocks other bookings until
// a field manager rules on it, so two pending games can never both be
// approved for the same window.
func (s GameStatus) BlocksSlot() bool {
	return s == GamePending || s == GameApproved
}

var gameTransitions = ledger.Graph[GameStatus]{
	GamePending:  {GameApproved, GameRejected},
	GameApproved: {GameCancelled},
}

type Game struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	FieldID         string     `gorm:"index" json:"field_id"`
	CreatorID       string     `gorm:"index" json:"creator_id"`
	TimeRange       TimeRange  `gorm:"embedded" json:"time_range"`
	MaxParticipants int        `json:"max_participants"`
	Status          GameStatus `gorm:"index" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Transition applies a lifecycle step, rejecting anything outside
// PENDING → {APPROVED, REJECTED} and APPROVED → CANCELLED.
func (g *Game) Transition(to GameStatus) error {
	if !gameTransitions.Can(g.Status, to) {
		return ErrInvalidTransition
	}
	g.Status = to
	return nil
}
