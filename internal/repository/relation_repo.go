package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juva99/yoop-sub001/internal/domain"
)

// RelationRepo owns friend relations. The contended key is the unordered
// user pair, so every mutation locks both directions of the pair before
// deciding anything.
type RelationRepo struct{ db *gorm.DB }

func NewRelationRepo(db *gorm.DB) *RelationRepo {
	return &RelationRepo{db: db}
}

func (r *RelationRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.FriendRelation{})
}

func pairScope(tx *gorm.DB, a, b string) *gorm.DB {
	return tx.Model(&domain.FriendRelation{}).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)", a, b, b, a)
}

// Request opens a PENDING relation from → to unless an active one already
// exists in either direction.
func (r *RelationRepo) Request(ctx context.Context, fromID, toID string) (*domain.FriendRelation, error) {
	var rel domain.FriendRelation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []domain.FriendRelation
		if err := pairScope(tx, fromID, toID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&existing).Error; err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Active() {
				return domain.ErrDuplicateRelation
			}
		}
		now := time.Now().UTC()
		rel = domain.FriendRelation{
			ID:          uuid.NewString(),
			RequesterID: fromID,
			RecipientID: toID,
			Status:      domain.RelationPending,
			RequestedAt: now,
			UpdatedAt:   now,
		}
		return tx.Create(&rel).Error
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Respond lets the recipient settle a pending request. A settled request
// stays settled: a rejected pair needs a fresh Request, never a retry.
func (r *RelationRepo) Respond(ctx context.Context, relationID, byUserID string, decision domain.RelationStatus) (*domain.FriendRelation, error) {
	var rel domain.FriendRelation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rel, "id = ?", relationID).Error; err != nil {
			return err
		}
		if rel.RecipientID != byUserID {
			return domain.ErrUnauthorized
		}
		if rel.Status != domain.RelationPending {
			return domain.ErrNotPending
		}
		if err := rel.Transition(decision); err != nil {
			return err
		}
		rel.UpdatedAt = time.Now().UTC()
		return tx.Save(&rel).Error
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Unfriend deletes the APPROVED relation between the two users; either
// party may end it.
func (r *RelationRepo) Unfriend(ctx context.Context, userID, otherID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel domain.FriendRelation
		err := pairScope(tx, userID, otherID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", domain.RelationApproved).
			Take(&rel).Error
		if err != nil {
			return err
		}
		return tx.Delete(&rel).Error
	})
}

// Friends returns every APPROVED relation the user is part of.
func (r *RelationRepo) Friends(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	var out []domain.FriendRelation
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, domain.RelationApproved).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}

// PendingFor returns the requests awaiting the user's decision.
func (r *RelationRepo) PendingFor(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	var out []domain.FriendRelation
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userID, domain.RelationPending).
		Order("requested_at ASC").
		Find(&out).Error
	return out, err
}
