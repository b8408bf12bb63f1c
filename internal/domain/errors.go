package domain

import "errors"

// Kind classifies a failure for the transport layer; the service layer is
// the only place infrastructure errors get folded into this taxonomy.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindTimeout      Kind = "timeout"
	KindUnavailable  Kind = "unavailable"
)

type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Code + ": " + e.Msg }

func NewValidation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: msg}
}

var (
	ErrSlotConflict      = &Error{Kind: KindConflict, Code: "SLOT_CONFLICT", Msg: "field is already booked for an overlapping time"}
	ErrAlreadyMember     = &Error{Kind: KindConflict, Code: "ALREADY_MEMBER", Msg: "user already holds a spot in this game"}
	ErrDuplicateRelation = &Error{Kind: KindConflict, Code: "DUPLICATE_RELATION", Msg: "a friend relation already exists for this pair"}

	ErrInvalidTransition = &Error{Kind: KindInvalidState, Code: "INVALID_TRANSITION", Msg: "status transition not allowed"}
	ErrGameNotOpen       = &Error{Kind: KindInvalidState, Code: "GAME_NOT_OPEN", Msg: "game is not open for joining"}
	ErrNotPending        = &Error{Kind: KindInvalidState, Code: "NOT_PENDING", Msg: "request is no longer pending"}
	ErrNotMember         = &Error{Kind: KindInvalidState, Code: "NOT_MEMBER", Msg: "user holds no active spot in this game"}
	ErrTargetNotApproved = &Error{Kind: KindInvalidState, Code: "TARGET_NOT_APPROVED", Msg: "target user is not an approved participant"}
	ErrCreatorLocked     = &Error{Kind: KindInvalidState, Code: "CREATOR_LOCKED", Msg: "creator must transfer ownership first"}

	ErrSelfRequest  = NewValidation("SELF_REQUEST", "cannot send a friend request to yourself")
	ErrSelfTransfer = NewValidation("SELF_TRANSFER", "user is already the creator")
	ErrSelfRemove   = NewValidation("SELF_REMOVE", "use leave to remove yourself")

	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Code: "FORBIDDEN", Msg: "actor may not perform this operation"}
	ErrNotFound         = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Msg: "record not found"}
	ErrTimeout          = &Error{Kind: KindTimeout, Code: "TIMEOUT", Msg: "operation deadline exceeded"}
	ErrStoreUnavailable = &Error{Kind: KindUnavailable, Code: "STORE_UNAVAILABLE", Msg: "backing store unavailable"}
)

// KindOf extracts the taxonomy kind, or "" for untranslated errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
