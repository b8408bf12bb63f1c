// Package roster implements the admission rules for one game: capacity
// enforcement, FIFO waitlist promotion and creator bookkeeping. It is pure
// bookkeeping over loaded rows; the repository runs it inside a locked
// transaction and persists whatever changed.
package roster

import (
	"time"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/ledger"
)

// Roster bundles a game with its participation rows. Mutating methods
// return pointers into Participants so callers can persist exactly the
// rows that changed.
type Roster struct {
	Game         *domain.Game
	Participants []domain.Participation
}

// Seed returns the creator's participation for a freshly created game.
// The creator is an approved member from the start and counts against
// capacity like anyone else.
func Seed(g *domain.Game, now time.Time) domain.Participation {
	return domain.Participation{
		GameID:    g.ID,
		UserID:    g.CreatorID,
		Status:    domain.ParticipationApproved,
		JoinedAt:  now,
		UpdatedAt: now,
	}
}

func (r *Roster) active(userID string) *domain.Participation {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID && r.Participants[i].Active() {
			return &r.Participants[i]
		}
	}
	return nil
}

// ApprovedCount is the number of seats currently taken.
func (r *Roster) ApprovedCount() int {
	n := 0
	for i := range r.Participants {
		if r.Participants[i].Status == domain.ParticipationApproved {
			n++
		}
	}
	return n
}

// Join admits userID: straight to APPROVED while seats remain, otherwise
// onto the waitlist as PENDING ordered by join time.
func (r *Roster) Join(userID string, now time.Time) (*domain.Participation, error) {
	if r.Game.Status != domain.GameApproved {
		return nil, domain.ErrGameNotOpen
	}
	if r.active(userID) != nil {
		return nil, domain.ErrAlreadyMember
	}
	status := domain.ParticipationPending
	if r.ApprovedCount() < r.Game.MaxParticipants {
		status = domain.ParticipationApproved
	}
	p := domain.Participation{
		GameID:    r.Game.ID,
		UserID:    userID,
		Status:    status,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	r.Participants = append(r.Participants, p)
	return &r.Participants[len(r.Participants)-1], nil
}

// Leave moves the member to LEFT. When an approved member leaves, the
// oldest waitlisted member (if any) is promoted so approved seats stay
// maximal. The creator cannot leave; ownership moves first.
func (r *Roster) Leave(userID string, now time.Time) (left, promoted *domain.Participation, err error) {
	if userID == r.Game.CreatorID {
		return nil, nil, domain.ErrCreatorLocked
	}
	return r.release(userID, domain.ParticipationLeft, now)
}

// Remove force-removes targetID. Only the creator or a field manager may
// do it, and the creator seat itself is never removable.
func (r *Roster) Remove(actorID, targetID string, actorIsManager bool, now time.Time) (removed, promoted *domain.Participation, err error) {
	if actorID == targetID {
		return nil, nil, domain.ErrSelfRemove
	}
	if actorID != r.Game.CreatorID && !actorIsManager {
		return nil, nil, domain.ErrUnauthorized
	}
	if targetID == r.Game.CreatorID {
		return nil, nil, domain.ErrCreatorLocked
	}
	return r.release(targetID, domain.ParticipationRemoved, now)
}

func (r *Roster) release(userID string, to domain.ParticipationStatus, now time.Time) (gone, promoted *domain.Participation, err error) {
	p := r.active(userID)
	if p == nil {
		return nil, nil, domain.ErrNotMember
	}
	wasApproved := p.Status == domain.ParticipationApproved
	if err := p.Transition(to); err != nil {
		return nil, nil, err
	}
	p.UpdatedAt = now
	if wasApproved {
		promoted = r.promote(now)
	}
	return p, promoted, nil
}

// promote flips the oldest waitlisted member to APPROVED, if a seat is
// free. Ordering is by JoinedAt, never slice position.
func (r *Roster) promote(now time.Time) *domain.Participation {
	if r.ApprovedCount() >= r.Game.MaxParticipants {
		return nil
	}
	i := ledger.Oldest(r.Participants,
		func(p domain.Participation) bool { return p.Status == domain.ParticipationPending },
		func(p domain.Participation) time.Time { return p.JoinedAt },
	)
	if i < 0 {
		return nil
	}
	r.Participants[i].Status = domain.ParticipationApproved
	r.Participants[i].UpdatedAt = now
	return &r.Participants[i]
}

// Transfer reassigns the creator role to an approved member. No
// participation status changes; creator is a role flag, not a tier.
func (r *Roster) Transfer(actorID, newCreatorID string) error {
	if actorID != r.Game.CreatorID {
		return domain.ErrUnauthorized
	}
	if newCreatorID == actorID {
		return domain.ErrSelfTransfer
	}
	p := r.active(newCreatorID)
	if p == nil || p.Status != domain.ParticipationApproved {
		return domain.ErrTargetNotApproved
	}
	r.Game.CreatorID = newCreatorID
	return nil
}

// CheckInvariants verifies the roster's standing invariants: approved
// seats within capacity, creator approved exactly once, one active row
// per user.
func (r *Roster) CheckInvariants() error {
	if r.ApprovedCount() > r.Game.MaxParticipants {
		return domain.ErrSlotConflict
	}
	creatorApproved := 0
	activeByUser := map[string]int{}
	for i := range r.Participants {
		p := &r.Participants[i]
		if p.Active() {
			activeByUser[p.UserID]++
			if activeByUser[p.UserID] > 1 {
				return domain.ErrAlreadyMember
			}
		}
		if p.UserID == r.Game.CreatorID && p.Status == domain.ParticipationApproved {
			creatorApproved++
		}
	}
	if creatorApproved != 1 {
		return domain.ErrCreatorLocked
	}
	return nil
}
