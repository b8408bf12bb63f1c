package domain

import (
	"time"

	"github.com/juva99/yoop-sub001/internal/ledger"
)

type ParticipationStatus string

const (
	ParticipationPending  ParticipationStatus = "PENDING"
	ParticipationApproved ParticipationStatus = "APPROVED"
	ParticipationLeft     ParticipationStatus = "LEFT"
	ParticipationRemoved  ParticipationStatus = "REMOVED"
)

var participationTransitions = ledger.Graph[ParticipationStatus]{
	ParticipationPending:  {ParticipationApproved, ParticipationLeft, ParticipationRemoved},
	ParticipationApproved: {ParticipationLeft, ParticipationRemoved},
}

// Participation is one user's standing on one game's roster. A user holds
// at most one non-terminal row per game; JoinedAt orders the waitlist.
type Participation struct {
	ID        string              `gorm:"primaryKey" json:"id"`
	GameID    string              `gorm:"index:idx_roster" json:"game_id"`
	UserID    string              `gorm:"index:idx_roster" json:"user_id"`
	Status    ParticipationStatus `gorm:"index" json:"status"`
	JoinedAt  time.Time           `gorm:"index" json:"joined_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (p *Participation) Active() bool {
	return !participationTransitions.Terminal(p.Status)
}

func (p *Participation) Transition(to ParticipationStatus) error {
	if !participationTransitions.Can(p.Status, to) {
		return ErrInvalidTransition
	}
	p.Status = to
	return nil
}
