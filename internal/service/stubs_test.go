package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/roster"
)

// fakeGameStore mirrors the repository's transactional semantics on maps,
// reusing the same pure roster logic the real store runs inside its
// transactions.
type fakeGameStore struct {
	mu    sync.Mutex
	games map[string]*domain.Game
	parts map[string][]domain.Participation
	seq   int
	clock time.Time
	err   error // when set, every method fails with it
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{
		games: map[string]*domain.Game{},
		parts: map[string][]domain.Participation{},
		clock: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeGameStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeGameStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeGameStore) conflict(fieldID string, tr domain.TimeRange, excludeID string) error {
	for _, g := range f.games {
		if g.FieldID != fieldID || g.ID == excludeID || !g.Status.BlocksSlot() {
			continue
		}
		if g.TimeRange.Overlaps(tr) {
			return domain.ErrSlotConflict
		}
	}
	return nil
}

func (f *fakeGameStore) CreateNoConflict(ctx context.Context, g *domain.Game) (*domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if err := f.conflict(g.FieldID, g.TimeRange, ""); err != nil {
		return nil, err
	}
	g.ID = f.nextID("g")
	f.games[g.ID] = g
	creator := roster.Seed(g, f.tick())
	creator.ID = f.nextID("p")
	f.parts[g.ID] = append(f.parts[g.ID], creator)
	return &creator, nil
}

func (f *fakeGameStore) Decide(ctx context.Context, gameID string, to domain.GameStatus) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.games[gameID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if to == domain.GameApproved {
		if err := f.conflict(g.FieldID, g.TimeRange, g.ID); err != nil {
			return nil, err
		}
	}
	if err := g.Transition(to); err != nil {
		return nil, err
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGameStore) Reschedule(ctx context.Context, gameID string, tr domain.TimeRange) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.games[gameID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if g.Status != domain.GamePending {
		return nil, domain.ErrNotPending
	}
	if err := f.conflict(g.FieldID, tr, g.ID); err != nil {
		return nil, err
	}
	g.TimeRange = tr
	cp := *g
	return &cp, nil
}

func (f *fakeGameStore) withRoster(gameID string, fn func(r *roster.Roster) error) error {
	g, ok := f.games[gameID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r := &roster.Roster{Game: g, Participants: f.parts[gameID]}
	if err := fn(r); err != nil {
		return err
	}
	for i := range r.Participants {
		if r.Participants[i].ID == "" {
			r.Participants[i].ID = f.nextID("p")
		}
	}
	f.parts[gameID] = r.Participants
	return nil
}

func (f *fakeGameStore) Join(ctx context.Context, gameID, userID string) (*domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out domain.Participation
	err := f.withRoster(gameID, func(r *roster.Roster) error {
		p, err := r.Join(userID, f.tick())
		if err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeGameStore) Leave(ctx context.Context, gameID, userID string) (left, promoted *domain.Participation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	err = f.withRoster(gameID, func(r *roster.Roster) error {
		l, p, err := r.Leave(userID, f.tick())
		if err != nil {
			return err
		}
		lc := *l
		left = &lc
		if p != nil {
			pc := *p
			promoted = &pc
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return left, promoted, nil
}

func (f *fakeGameStore) Remove(ctx context.Context, gameID, actorID, targetID string, actorIsManager bool) (removed, promoted *domain.Participation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	err = f.withRoster(gameID, func(r *roster.Roster) error {
		rm, p, err := r.Remove(actorID, targetID, actorIsManager, f.tick())
		if err != nil {
			return err
		}
		rc := *rm
		removed = &rc
		if p != nil {
			pc := *p
			promoted = &pc
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return removed, promoted, nil
}

func (f *fakeGameStore) Transfer(ctx context.Context, gameID, actorID, newCreatorID string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out domain.Game
	err := f.withRoster(gameID, func(r *roster.Roster) error {
		if err := r.Transfer(actorID, newCreatorID); err != nil {
			return err
		}
		out = *r.Game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeGameStore) ByID(ctx context.Context, id string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGameStore) Roster(ctx context.Context, gameID string) ([]domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Participation(nil), f.parts[gameID]...), nil
}

func (f *fakeGameStore) List(ctx context.Context, page, size int32, fieldID, creatorID, dayISO string) ([]domain.Game, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []domain.Game
	for _, g := range f.games {
		if fieldID != "" && g.FieldID != fieldID {
			continue
		}
		if creatorID != "" && g.CreatorID != creatorID {
			continue
		}
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

type fakeFieldStore struct {
	fields map[string]*domain.Field
	seq    int
}

func newFakeFieldStore(fields ...*domain.Field) *fakeFieldStore {
	f := &fakeFieldStore{fields: map[string]*domain.Field{}}
	for _, fld := range fields {
		f.fields[fld.ID] = fld
	}
	return f
}

func (f *fakeFieldStore) Create(ctx context.Context, fld *domain.Field) error {
	f.seq++
	fld.ID = fmt.Sprintf("f%d", f.seq)
	f.fields[fld.ID] = fld
	return nil
}

func (f *fakeFieldStore) List(ctx context.Context) ([]domain.Field, error) {
	var out []domain.Field
	for _, fld := range f.fields {
		out = append(out, *fld)
	}
	return out, nil
}

func (f *fakeFieldStore) ByID(ctx context.Context, id string) (*domain.Field, error) {
	fld, ok := f.fields[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *fld
	return &cp, nil
}

// CanManageField makes the fake field store double as the Authorizer,
// like the real FieldRepo does.
func (f *fakeFieldStore) CanManageField(ctx context.Context, userID, fieldID string) (bool, error) {
	fld, ok := f.fields[fieldID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	return fld.ManagerID == userID, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakePublisher) published(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		if k == key {
			return true
		}
	}
	return false
}

type fakeRelationStore struct {
	mu   sync.Mutex
	rels map[string]*domain.FriendRelation
	seq  int
	err  error
}

func newFakeRelationStore() *fakeRelationStore {
	return &fakeRelationStore{rels: map[string]*domain.FriendRelation{}}
}

func (f *fakeRelationStore) Request(ctx context.Context, fromID, toID string) (*domain.FriendRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rels {
		samePair := (r.RequesterID == fromID && r.RecipientID == toID) ||
			(r.RequesterID == toID && r.RecipientID == fromID)
		if samePair && r.Active() {
			return nil, domain.ErrDuplicateRelation
		}
	}
	f.seq++
	rel := &domain.FriendRelation{
		ID:          fmt.Sprintf("r%d", f.seq),
		RequesterID: fromID,
		RecipientID: toID,
		Status:      domain.RelationPending,
	}
	f.rels[rel.ID] = rel
	cp := *rel
	return &cp, nil
}

func (f *fakeRelationStore) Respond(ctx context.Context, relationID, byUserID string, decision domain.RelationStatus) (*domain.FriendRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rel, ok := f.rels[relationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if rel.RecipientID != byUserID {
		return nil, domain.ErrUnauthorized
	}
	if rel.Status != domain.RelationPending {
		return nil, domain.ErrNotPending
	}
	if err := rel.Transition(decision); err != nil {
		return nil, err
	}
	cp := *rel
	return &cp, nil
}

func (f *fakeRelationStore) Unfriend(ctx context.Context, userID, otherID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for id, r := range f.rels {
		samePair := (r.RequesterID == userID && r.RecipientID == otherID) ||
			(r.RequesterID == otherID && r.RecipientID == userID)
		if samePair && r.Status == domain.RelationApproved {
			delete(f.rels, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRelationStore) Friends(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FriendRelation
	for _, r := range f.rels {
		if r.Status == domain.RelationApproved && (r.RequesterID == userID || r.RecipientID == userID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRelationStore) PendingFor(ctx context.Context, userID string) ([]domain.FriendRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FriendRelation
	for _, r := range f.rels {
		if r.Status == domain.RelationPending && r.RecipientID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}
