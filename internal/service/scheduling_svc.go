package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/events"
)

// GameStore is the transactional game/roster persistence the scheduling
// service orchestrates. Each method is one atomic unit: it either commits
// a complete transition or leaves everything untouched.
type GameStore interface {
	CreateNoConflict(ctx context.Context, g *domain.Game) (*domain.Participation, error)
	Decide(ctx context.Context, gameID string, to domain.GameStatus) (*domain.Game, error)
	Reschedule(ctx context.Context, gameID string, tr domain.TimeRange) (*domain.Game, error)
	Join(ctx context.Context, gameID, userID string) (*domain.Participation, error)
	Leave(ctx context.Context, gameID, userID string) (left, promoted *domain.Participation, err error)
	Remove(ctx context.Context, gameID, actorID, targetID string, actorIsManager bool) (removed, promoted *domain.Participation, err error)
	Transfer(ctx context.Context, gameID, actorID, newCreatorID string) (*domain.Game, error)
	ByID(ctx context.Context, id string) (*domain.Game, error)
	Roster(ctx context.Context, gameID string) ([]domain.Participation, error)
	List(ctx context.Context, page, size int32, fieldID, creatorID, dayISO string) ([]domain.Game, int64, error)
}

// FieldStore is the minimal field catalog.
type FieldStore interface {
	Create(ctx context.Context, f *domain.Field) error
	List(ctx context.Context) ([]domain.Field, error)
	ByID(ctx context.Context, id string) (*domain.Field, error)
}

// Authorizer answers capability questions; identity concerns stay out of
// the state machines.
type Authorizer interface {
	CanManageField(ctx context.Context, userID, fieldID string) (bool, error)
}

// Publisher dispatches committed-transition events. *mq.Publisher
// satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// SchedulingSvc sequences slot checks, lifecycle steps and roster
// mutations, and is the only translation boundary from store failures to
// the caller-facing error taxonomy.
type SchedulingSvc struct {
	games     GameStore
	fields    FieldStore
	auth      Authorizer
	pub       Publisher
	opTimeout time.Duration
}

func NewSchedulingSvc(games GameStore, fields FieldStore, auth Authorizer, pub Publisher, opTimeout time.Duration) *SchedulingSvc {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &SchedulingSvc{games: games, fields: fields, auth: auth, pub: pub, opTimeout: opTimeout}
}

func (s *SchedulingSvc) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func parseRFC3339UTC(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseRange(startISO, endISO string) (domain.TimeRange, error) {
	st, err := parseRFC3339UTC(startISO)
	if err != nil {
		return domain.TimeRange{}, domain.NewValidation("INVALID_TIME", "start must be RFC3339")
	}
	et, err := parseRFC3339UTC(endISO)
	if err != nil {
		return domain.TimeRange{}, domain.NewValidation("INVALID_TIME", "end must be RFC3339")
	}
	tr := domain.TimeRange{Start: st, End: et}
	if err := tr.Validate(); err != nil {
		return domain.TimeRange{}, err
	}
	return tr, nil
}

// translate folds infrastructure failures into the error taxonomy.
// Domain errors pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrTimeout
	default:
		return domain.ErrStoreUnavailable
	}
}

// CreateGame validates the request, books the slot and seeds the creator
// as the first approved participant. The game starts PENDING and already
// blocks its slot.
func (s *SchedulingSvc) CreateGame(ctx context.Context, creatorID, fieldID, startISO, endISO string, maxParticipants int) (*domain.Game, error) {
	tr, err := parseRange(startISO, endISO)
	if err != nil {
		return nil, err
	}
	if maxParticipants < 2 {
		return nil, domain.NewValidation("INVALID_CAPACITY", "max participants must be at least 2")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if _, err := s.fields.ByID(ctx, fieldID); err != nil {
		return nil, translate(err)
	}
	g := &domain.Game{
		FieldID:         fieldID,
		CreatorID:       creatorID,
		TimeRange:       tr,
		MaxParticipants: maxParticipants,
		Status:          domain.GamePending,
	}
	if _, err := s.games.CreateNoConflict(ctx, g); err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameCreated, events.GameCreated{
		GameID: g.ID, FieldID: g.FieldID, CreatorID: g.CreatorID,
		Start: g.TimeRange.Start.Unix(), End: g.TimeRange.End.Unix(),
	})
	return g, nil
}

func (s *SchedulingSvc) decide(ctx context.Context, actorID, gameID string, to domain.GameStatus, key string) (*domain.Game, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		return nil, translate(err)
	}
	ok, err := s.auth.CanManageField(ctx, actorID, g.FieldID)
	if err != nil {
		return nil, translate(err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	g, err = s.games.Decide(ctx, gameID, to)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, key, events.GameSimple{GameID: g.ID})
	return g, nil
}

// ApproveGame is a field-manager decision. The store re-checks the slot
// against all other bookings inside the same transaction, so of two
// concurrent approvals for overlapping pending games exactly one commits.
func (s *SchedulingSvc) ApproveGame(ctx context.Context, actorID, gameID string) (*domain.Game, error) {
	return s.decide(ctx, actorID, gameID, domain.GameApproved, events.RKGameApproved)
}

func (s *SchedulingSvc) RejectGame(ctx context.Context, actorID, gameID string) (*domain.Game, error) {
	return s.decide(ctx, actorID, gameID, domain.GameRejected, events.RKGameRejected)
}

// CancelGame is for the creator (or a field manager). Cancellation is a
// status transition; the game and its roster stay on record.
func (s *SchedulingSvc) CancelGame(ctx context.Context, actorID, gameID string) (*domain.Game, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		return nil, translate(err)
	}
	if actorID != g.CreatorID {
		ok, err := s.auth.CanManageField(ctx, actorID, g.FieldID)
		if err != nil {
			return nil, translate(err)
		}
		if !ok {
			return nil, domain.ErrUnauthorized
		}
	}
	g, err = s.games.Decide(ctx, gameID, domain.GameCancelled)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameCancelled, events.GameSimple{GameID: g.ID})
	return g, nil
}

// RescheduleGame moves a pending game to a new window, creator only.
func (s *SchedulingSvc) RescheduleGame(ctx context.Context, actorID, gameID, startISO, endISO string) (*domain.Game, error) {
	tr, err := parseRange(startISO, endISO)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		return nil, translate(err)
	}
	if actorID != g.CreatorID {
		return nil, domain.ErrUnauthorized
	}
	g, err = s.games.Reschedule(ctx, gameID, tr)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameRescheduled, events.GameSimple{GameID: g.ID})
	return g, nil
}

// JoinGame admits the user, waitlisting when the game is full.
func (s *SchedulingSvc) JoinGame(ctx context.Context, userID, gameID string) (*domain.Participation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p, err := s.games.Join(ctx, gameID, userID)
	if err != nil {
		return nil, translate(err)
	}
	key := events.RKGameJoined
	if p.Status == domain.ParticipationPending {
		key = events.RKGameWaitlisted
	}
	_ = s.pub.PublishJSON(ctx, key, events.RosterChange{GameID: gameID, UserID: userID})
	return p, nil
}

func (s *SchedulingSvc) LeaveGame(ctx context.Context, userID, gameID string) (*domain.Participation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	left, promoted, err := s.games.Leave(ctx, gameID, userID)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameLeft, events.RosterChange{GameID: gameID, UserID: userID})
	if promoted != nil {
		_ = s.pub.PublishJSON(ctx, events.RKGamePromoted, events.RosterChange{GameID: gameID, UserID: promoted.UserID})
	}
	return left, nil
}

func (s *SchedulingSvc) RemoveParticipant(ctx context.Context, actorID, gameID, targetID string) (*domain.Participation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		return nil, translate(err)
	}
	isManager, err := s.auth.CanManageField(ctx, actorID, g.FieldID)
	if err != nil {
		return nil, translate(err)
	}
	removed, promoted, err := s.games.Remove(ctx, gameID, actorID, targetID, isManager)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameRemoved, events.RosterChange{GameID: gameID, UserID: targetID})
	if promoted != nil {
		_ = s.pub.PublishJSON(ctx, events.RKGamePromoted, events.RosterChange{GameID: gameID, UserID: promoted.UserID})
	}
	return removed, nil
}

// TransferCreator hands the creator role to an approved member; no
// participation status changes.
func (s *SchedulingSvc) TransferCreator(ctx context.Context, actorID, gameID, newCreatorID string) (*domain.Game, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.Transfer(ctx, gameID, actorID, newCreatorID)
	if err != nil {
		return nil, translate(err)
	}
	_ = s.pub.PublishJSON(ctx, events.RKGameTransferred, events.CreatorTransferred{GameID: gameID, NewCreatorID: newCreatorID})
	return g, nil
}

func (s *SchedulingSvc) GetGame(ctx context.Context, gameID string) (*domain.Game, []domain.Participation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		return nil, nil, translate(err)
	}
	parts, err := s.games.Roster(ctx, gameID)
	if err != nil {
		return nil, nil, translate(err)
	}
	return g, parts, nil
}

func (s *SchedulingSvc) ListGames(ctx context.Context, page, size int32, fieldID, creatorID, dayISO string) ([]domain.Game, int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	games, total, err := s.games.List(ctx, page, size, fieldID, creatorID, dayISO)
	if err != nil {
		return nil, 0, translate(err)
	}
	return games, total, nil
}

func (s *SchedulingSvc) CreateField(ctx context.Context, managerID, name, address string) (*domain.Field, error) {
	if name == "" {
		return nil, domain.NewValidation("INVALID_FIELD", "name is required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	f := &domain.Field{Name: name, Address: address, ManagerID: managerID}
	if err := s.fields.Create(ctx, f); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

func (s *SchedulingSvc) ListFields(ctx context.Context) ([]domain.Field, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	out, err := s.fields.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
