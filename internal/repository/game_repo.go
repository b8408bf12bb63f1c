package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/roster"
)

// GameRepo owns games and their rosters. Every mutating method is one
// transaction that locks the contended rows (the field's slot-blocking
// games, or the game plus its roster) so concurrent callers serialize per
// field id / game id even across instances.
type GameRepo struct{ db *gorm.DB }

func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

func (r *GameRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Game{}, &domain.Participation{})
}

// lockConflicting locks any slot-blocking game on the field that overlaps
// tr and reports ErrSlotConflict if one exists. Locking the candidates,
// not just reading them, is what closes the create/create and
// approve/approve races. Rejected and cancelled games never block.
func lockConflicting(tx *gorm.DB, fieldID string, tr domain.TimeRange, excludeID string) error {
	q := tx.Model(&domain.Game{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("field_id = ? AND status IN ?", fieldID, []domain.GameStatus{domain.GamePending, domain.GameApproved}).
		Where("start_time < ? AND end_time > ?", tr.End, tr.Start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var existing domain.Game
	err := q.Take(&existing).Error
	if err == nil {
		return domain.ErrSlotConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// lockRoster loads the game row and its participations FOR UPDATE and
// hands them to the roster package.
func lockRoster(tx *gorm.DB, gameID string) (*roster.Roster, error) {
	var g domain.Game
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&g, "id = ?", gameID).Error; err != nil {
		return nil, err
	}
	var parts []domain.Participation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("game_id = ?", gameID).
		Order("joined_at ASC").
		Find(&parts).Error; err != nil {
		return nil, err
	}
	return &roster.Roster{Game: &g, Participants: parts}, nil
}

// CreateNoConflict books the slot and seeds the creator as the first
// approved participant, all or nothing.
func (r *GameRepo) CreateNoConflict(ctx context.Context, g *domain.Game) (*domain.Participation, error) {
	var creator domain.Participation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConflicting(tx, g.FieldID, g.TimeRange, ""); err != nil {
			return err
		}
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		creator = roster.Seed(g, time.Now().UTC())
		creator.ID = uuid.NewString()
		return tx.Create(&creator).Error
	})
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// Decide moves a game through its lifecycle. An approval re-runs the
// conflict check excluding the game itself: two pending games for the
// same slot both pass creation, but only the first approval commits.
func (r *GameRepo) Decide(ctx context.Context, gameID string, to domain.GameStatus) (*domain.Game, error) {
	var g domain.Game
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&g, "id = ?", gameID).Error; err != nil {
			return err
		}
		if to == domain.GameApproved {
			if err := lockConflicting(tx, g.FieldID, g.TimeRange, g.ID); err != nil {
				return err
			}
		}
		if err := g.Transition(to); err != nil {
			return err
		}
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Reschedule moves a pending game to a new window, checking the slot
// against every booking but its own.
func (r *GameRepo) Reschedule(ctx context.Context, gameID string, tr domain.TimeRange) (*domain.Game, error) {
	var g domain.Game
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&g, "id = ?", gameID).Error; err != nil {
			return err
		}
		if g.Status != domain.GamePending {
			return domain.ErrNotPending
		}
		if err := lockConflicting(tx, g.FieldID, tr, g.ID); err != nil {
			return err
		}
		g.TimeRange = tr
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GameRepo) Join(ctx context.Context, gameID, userID string) (*domain.Participation, error) {
	var joined domain.Participation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ros, err := lockRoster(tx, gameID)
		if err != nil {
			return err
		}
		p, err := ros.Join(userID, time.Now().UTC())
		if err != nil {
			return err
		}
		p.ID = uuid.NewString()
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		joined = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (r *GameRepo) Leave(ctx context.Context, gameID, userID string) (left, promoted *domain.Participation, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ros, err := lockRoster(tx, gameID)
		if err != nil {
			return err
		}
		l, p, err := ros.Leave(userID, time.Now().UTC())
		if err != nil {
			return err
		}
		left, promoted = l, p
		return saveChanged(tx, l, p)
	})
	if err != nil {
		return nil, nil, err
	}
	return left, promoted, nil
}

func (r *GameRepo) Remove(ctx context.Context, gameID, actorID, targetID string, actorIsManager bool) (removed, promoted *domain.Participation, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ros, err := lockRoster(tx, gameID)
		if err != nil {
			return err
		}
		rm, p, err := ros.Remove(actorID, targetID, actorIsManager, time.Now().UTC())
		if err != nil {
			return err
		}
		removed, promoted = rm, p
		return saveChanged(tx, rm, p)
	})
	if err != nil {
		return nil, nil, err
	}
	return removed, promoted, nil
}

func (r *GameRepo) Transfer(ctx context.Context, gameID, actorID, newCreatorID string) (*domain.Game, error) {
	var g *domain.Game
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ros, err := lockRoster(tx, gameID)
		if err != nil {
			return err
		}
		if err := ros.Transfer(actorID, newCreatorID); err != nil {
			return err
		}
		g = ros.Game
		return tx.Save(ros.Game).Error
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func saveChanged(tx *gorm.DB, parts ...*domain.Participation) error {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GameRepo) ByID(ctx context.Context, id string) (*domain.Game, error) {
	var g domain.Game
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// Roster returns the participations of a game ordered by join time.
func (r *GameRepo) Roster(ctx context.Context, gameID string) ([]domain.Participation, error) {
	var parts []domain.Participation
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("joined_at ASC").
		Find(&parts).Error
	return parts, err
}

// List pages through games, optionally narrowed to a field, a creator or
// any game touching the given day.
func (r *GameRepo) List(ctx context.Context, page, size int32, fieldID, creatorID, dayISO string) ([]domain.Game, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Game{})
	if fieldID != "" {
		qb = qb.Where("field_id = ?", fieldID)
	}
	if creatorID != "" {
		qb = qb.Where("creator_id = ?", creatorID)
	}
	if dayISO != "" {
		if d, err := time.Parse(time.RFC3339, dayISO); err == nil {
			from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			to := from.Add(24 * time.Hour)
			qb = qb.Where("start_time < ? AND end_time > ?", to, from)
		}
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Game
	if err := qb.Order("start_time ASC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
