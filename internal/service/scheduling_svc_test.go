package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juva99/yoop-sub001/internal/domain"
	"github.com/juva99/yoop-sub001/internal/events"
)

func newSvc(t *testing.T) (*SchedulingSvc, *fakeGameStore, *fakeFieldStore, *fakePublisher) {
	t.Helper()
	games := newFakeGameStore()
	fields := newFakeFieldStore(
		&domain.Field{ID: "fieldA", Name: "North Pitch", ManagerID: "manager1"},
		&domain.Field{ID: "fieldB", Name: "South Pitch", ManagerID: "manager2"},
	)
	pub := &fakePublisher{}
	return NewSchedulingSvc(games, fields, fields, pub, time.Second), games, fields, pub
}

func iso(hour, min int) string {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC).Format(time.RFC3339)
}

func TestCreateGameValidation(t *testing.T) {
	svc, _, _, _ := newSvc(t)
	ctx := context.Background()

	if _, err := svc.CreateGame(ctx, "u1", "fieldA", "not-a-time", iso(11, 0), 4); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("bad start: got %v, want validation error", err)
	}
	if _, err := svc.CreateGame(ctx, "u1", "fieldA", iso(11, 0), iso(10, 0), 4); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("inverted range: got %v, want validation error", err)
	}
	if _, err := svc.CreateGame(ctx, "u1", "fieldA", iso(10, 0), iso(11, 0), 1); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("capacity 1: got %v, want validation error", err)
	}
	if _, err := svc.CreateGame(ctx, "u1", "nowhere", iso(10, 0), iso(11, 0), 4); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown field: got %v, want ErrNotFound", err)
	}
}

func TestCreateGameSeedsCreatorAndPublishes(t *testing.T) {
	svc, games, _, pub := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Status != domain.GamePending {
		t.Fatalf("status = %s, want PENDING", g.Status)
	}
	parts := games.parts[g.ID]
	if len(parts) != 1 || parts[0].UserID != "creator1" || parts[0].Status != domain.ParticipationApproved {
		t.Fatalf("creator not seeded approved: %+v", parts)
	}
	if !pub.published(events.RKGameCreated) {
		t.Fatal("game.created not published")
	}
}

func TestSlotConflictHalfOpenBoundary(t *testing.T) {
	svc, _, _, _ := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// overlapping 10:30-11:30 conflicts
	if _, err := svc.CreateGame(ctx, "u2", "fieldA", iso(10, 30), iso(11, 30), 4); !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("overlap: got %v, want ErrSlotConflict", err)
	}
	// back-to-back 11:00-12:00 does not
	if _, err := svc.CreateGame(ctx, "u2", "fieldA", iso(11, 0), iso(12, 0), 4); err != nil {
		t.Fatalf("half-open boundary: %v", err)
	}
	// same slot on another field does not
	if _, err := svc.CreateGame(ctx, "u2", "fieldB", iso(10, 0), iso(11, 0), 4); err != nil {
		t.Fatalf("other field: %v", err)
	}
}

func TestPendingGameBlocksSlot(t *testing.T) {
	svc, _, _, _ := newSvc(t)
	ctx := context.Background()

	if _, err := svc.CreateGame(ctx, "u1", "fieldA", iso(10, 0), iso(11, 0), 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	// still pending, yet it reserves the slot
	if _, err := svc.CreateGame(ctx, "u2", "fieldA", iso(10, 30), iso(11, 30), 4); !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict", err)
	}
}

func TestApproveAuthorizationAndRaceRecheck(t *testing.T) {
	svc, _, _, pub := newSvc(t)
	ctx := context.Background()

	// two pending games for overlapping slots on different fields pass creation
	g1, err := svc.CreateGame(ctx, "u1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := svc.CreateGame(ctx, "u2", "fieldA", iso(11, 0), iso(12, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	// widen g2 into g1's window via the store to simulate the two-pending race
	_, err = svc.RescheduleGame(ctx, "u2", g2.ID, iso(10, 30), iso(11, 30))
	if !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("reschedule into held slot: got %v, want ErrSlotConflict", err)
	}

	if _, err := svc.ApproveGame(ctx, "someone-else", g1.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-manager approve: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.ApproveGame(ctx, "manager2", g1.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("other field's manager: got %v, want ErrUnauthorized", err)
	}

	g1, err = svc.ApproveGame(ctx, "manager1", g1.ID)
	if err != nil {
		t.Fatalf("approve g1: %v", err)
	}
	if g1.Status != domain.GameApproved {
		t.Fatalf("g1 status = %s", g1.Status)
	}
	if !pub.published(events.RKGameApproved) {
		t.Fatal("game.approved not published")
	}
	// approving an already-approved game is an invalid transition
	if _, err := svc.ApproveGame(ctx, "manager1", g1.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double approve: got %v, want ErrInvalidTransition", err)
	}
}

func TestApproveRecheckRejectsSecondOverlappingGame(t *testing.T) {
	svc, games, _, _ := newSvc(t)
	ctx := context.Background()

	g1, err := svc.CreateGame(ctx, "u1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := svc.CreateGame(ctx, "u2", "fieldA", iso(11, 0), iso(12, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	// overlap the two pending games directly in the store: both passed
	// their creation-time checks before the clash existed
	games.games[g2.ID].TimeRange = domain.TimeRange{
		Start: games.games[g1.ID].TimeRange.Start.Add(30 * time.Minute),
		End:   games.games[g1.ID].TimeRange.End.Add(30 * time.Minute),
	}

	if _, err := svc.ApproveGame(ctx, "manager1", g1.ID); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g2.ID); !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("second approval: got %v, want ErrSlotConflict", err)
	}
}

func TestJoinWaitlistAndPromotionEvents(t *testing.T) {
	svc, _, _, pub := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 2)
	if err != nil {
		t.Fatal(err)
	}
	// joining before approval fails
	if _, err := svc.JoinGame(ctx, "userA", g.ID); !errors.Is(err, domain.ErrGameNotOpen) {
		t.Fatalf("join pending game: got %v, want ErrGameNotOpen", err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g.ID); err != nil {
		t.Fatal(err)
	}

	pA, err := svc.JoinGame(ctx, "userA", g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pA.Status != domain.ParticipationApproved {
		t.Fatalf("userA status = %s, want APPROVED", pA.Status)
	}
	pB, err := svc.JoinGame(ctx, "userB", g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pB.Status != domain.ParticipationPending {
		t.Fatalf("userB status = %s, want PENDING (waitlisted)", pB.Status)
	}
	if !pub.published(events.RKGameWaitlisted) {
		t.Fatal("game.waitlisted not published")
	}

	left, err := svc.LeaveGame(ctx, "userA", g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if left.Status != domain.ParticipationLeft {
		t.Fatalf("left status = %s", left.Status)
	}
	if !pub.published(events.RKGamePromoted) {
		t.Fatal("game.promoted not published after promotion")
	}
}

func TestCancelAuthorization(t *testing.T) {
	svc, _, _, _ := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CancelGame(ctx, "stranger", g.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger cancel: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.CancelGame(ctx, "creator1", g.ID); err != nil {
		t.Fatalf("creator cancel: %v", err)
	}
	// cancellation is a transition, not erasure
	got, _, err := svc.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get after cancel: %v", err)
	}
	if got.Status != domain.GameCancelled {
		t.Fatalf("status = %s, want CANCELLED", got.Status)
	}
}

func TestRemoveParticipantManagerCapability(t *testing.T) {
	svc, _, _, pub := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.JoinGame(ctx, "userA", g.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RemoveParticipant(ctx, "userB", g.ID, "userA"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("random user remove: got %v, want ErrUnauthorized", err)
	}
	// the field manager may force-remove
	if _, err := svc.RemoveParticipant(ctx, "manager1", g.ID, "userA"); err != nil {
		t.Fatalf("manager remove: %v", err)
	}
	if !pub.published(events.RKGameRemoved) {
		t.Fatal("game.removed not published")
	}
}

func TestTransferCreatorFlow(t *testing.T) {
	svc, _, _, pub := newSvc(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "creator1", "fieldA", iso(10, 0), iso(11, 0), 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApproveGame(ctx, "manager1", g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransferCreator(ctx, "creator1", g.ID, "userA"); !errors.Is(err, domain.ErrTargetNotApproved) {
		t.Fatalf("transfer to non-member: got %v, want ErrTargetNotApproved", err)
	}
	if _, err := svc.JoinGame(ctx, "userA", g.ID); err != nil {
		t.Fatal(err)
	}
	got, err := svc.TransferCreator(ctx, "creator1", g.ID, "userA")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got.CreatorID != "userA" {
		t.Fatalf("creator = %s, want userA", got.CreatorID)
	}
	if !pub.published(events.RKGameTransferred) {
		t.Fatal("game.transferred not published")
	}
}

func TestTranslateInfraErrors(t *testing.T) {
	svc, games, _, _ := newSvc(t)
	ctx := context.Background()

	if _, _, err := svc.GetGame(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing game: got %v, want ErrNotFound", err)
	}

	games.err = context.DeadlineExceeded
	if _, err := svc.JoinGame(ctx, "u1", "g1"); !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("deadline: got %v, want ErrTimeout", err)
	}

	games.err = errors.New("connection refused")
	if _, err := svc.JoinGame(ctx, "u1", "g1"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("infra error: got %v, want ErrStoreUnavailable", err)
	}
}
