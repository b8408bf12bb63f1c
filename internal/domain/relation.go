package domain

import (
	"time"

	"github.com/juva99/yoop-sub001/internal/ledger"
)

type RelationStatus string

const (
	RelationPending  RelationStatus = "PENDING"
	RelationApproved RelationStatus = "APPROVED"
	RelationRejected RelationStatus = "REJECTED"
)

var relationTransitions = ledger.Graph[RelationStatus]{
	RelationPending: {RelationApproved, RelationRejected},
}

// FriendRelation is the two-party degenerate form of the roster ledger:
// one requester, one recipient, capacity one. At most one PENDING or
// APPROVED relation may exist per unordered user pair.
type FriendRelation struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	RequesterID string         `gorm:"index:idx_relation_pair" json:"requester_id"`
	RecipientID string         `gorm:"index:idx_relation_pair" json:"recipient_id"`
	Status      RelationStatus `gorm:"index" json:"status"`
	RequestedAt time.Time      `json:"requested_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Active reports whether the relation blocks a new request for the pair.
// APPROVED is active: an established friendship has no pending decision
// but still forbids a duplicate request.
func (r *FriendRelation) Active() bool {
	return r.Status == RelationPending || r.Status == RelationApproved
}

func (r *FriendRelation) Transition(to RelationStatus) error {
	if !relationTransitions.Can(r.Status, to) {
		return ErrInvalidTransition
	}
	r.Status = to
	return nil
}
