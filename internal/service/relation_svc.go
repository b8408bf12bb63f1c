package service

import (
	"context"
	"time"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/events"
)

// RelationStore is the transactional friend-relation persistence.
type RelationStore interface {
	Request(ctx context.Context, fromID, toID string) (*domain.FriendRelation, error)
	Respond(ctx context.Context, relationID, byUserID string, decision domain.RelationStatus) (*domain.FriendRelation, error)
	Unfriend(ctx context.Context, userID, otherID string) error
	Friends(ctx context.Context, userID string) ([]domain.FriendRelation, error)
	PendingFor(ctx context.Context, userID string) ([]domain.FriendRelation, error)
}

// RelationSvc runs the friend-request ledger.
type RelationSvc struct {
	rels      RelationStore
	pub       Publisher
	opTimeout time.Duration
}

func NewRelationSvc(rels RelationStore, pub Publisher, opTimeout time.Duration) *RelationSvc {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &RelationSvc{rels: rels, pub: pub, opTimeout: opTimeout}
}

func (s *RelationSvc) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *RelationSvc) RequestFriend(ctx context.Context, fromID, toID string) (*domain.FriendRelation, error) {
	if fromID == toID {
		return nil, domain.ErrSelfRequest
	}
	if toID == "" {
		return nil, domain.NewValidation("INVALID_USER", "recipient is required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rel, err := s.rels.Request(ctx, fromID, toID)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKFriendRequested, events.FriendRequested{
		RelationID: rel.ID, RequesterID: rel.RequesterID, RecipientID: rel.RecipientID,
	})
	return rel, nil
}

// RespondFriend settles a pending request; only the recipient may decide,
// and only APPROVED or REJECTED are decisions.
func (s *RelationSvc) RespondFriend(ctx context.Context, byUserID, relationID, decision string) (*domain.FriendRelation, error) {
	var to domain.RelationStatus
	switch domain.RelationStatus(decision) {
	case domain.RelationApproved, domain.RelationRejected:
		to = domain.RelationStatus(decision)
	default:
		return nil, domain.NewValidation("INVALID_DECISION", "decision must be APPROVED or REJECTED")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rel, err := s.rels.Respond(ctx, relationID, byUserID, to)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKFriendResponded, events.FriendResponded{
		RelationID: rel.ID, Decision: string(rel.Status),
	})
	return rel, nil
}

func (s *RelationSvc) Unfriend(ctx context.Context, userID, otherID string) error {
	if userID == otherID {
		return domain.ErrSelfRequest
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return translate(s.rels.Unfriend(ctx, userID, otherID))
}

func (s *RelationSvc) ListFriends(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	out, err := s.rels.Friends(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *RelationSvc) ListPendingRequests(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	out, err := s.rels.PendingFor(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
