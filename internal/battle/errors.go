package battle

import "errors"

// Kind classifies engine errors so callers can react without matching messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindStateConflict
	KindResourceExhausted
	KindUpstream
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindStateConflict:
		return "state_conflict"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindUpstream:
		return "upstream_failure"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal_invariant_violation"
	}
}

// Error is returned by every engine operation. Code is the stable reason
// shown to clients.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrInvalidInput     = &Error{Kind: KindValidation, Code: "invalid_input", Msg: "invalid input"}
	ErrInvalidSettings  = &Error{Kind: KindValidation, Code: "invalid_settings", Msg: "invalid session settings"}
	ErrInvalidAnswer    = &Error{Kind: KindValidation, Code: "invalid_answer", Msg: "answer does not match the current question"}
	ErrWrongRound       = &Error{Kind: KindValidation, Code: "wrong_round", Msg: "answer is not for the current round"}
	ErrAlreadyAnswered  = &Error{Kind: KindStateConflict, Code: "already_answered", Msg: "participant already answered this round"}
	ErrRoundClosed      = &Error{Kind: KindStateConflict, Code: "round_closed", Msg: "round is not accepting answers"}
	ErrNotJoinable      = &Error{Kind: KindStateConflict, Code: "session_not_joinable", Msg: "session is not accepting participants"}
	ErrSessionCompleted = &Error{Kind: KindStateConflict, Code: "session_completed", Msg: "session is completed"}
	ErrAlreadyStarted   = &Error{Kind: KindStateConflict, Code: "session_already_started", Msg: "session already started"}
	ErrEliminated       = &Error{Kind: KindStateConflict, Code: "participant_eliminated", Msg: "participant is eliminated"}
	ErrDuplicateUser    = &Error{Kind: KindStateConflict, Code: "duplicate_user", Msg: "user already joined this session"}
	ErrSessionFull      = &Error{Kind: KindResourceExhausted, Code: "session_full", Msg: "session is full"}
	ErrNotEnoughPlayers = &Error{Kind: KindResourceExhausted, Code: "insufficient_participants", Msg: "not enough participants to start"}
	ErrCatalog          = &Error{Kind: KindUpstream, Code: "catalog_unavailable", Msg: "quiz catalog could not supply a question"}
	ErrQuestionNotFound = &Error{Kind: KindUpstream, Code: "question_not_found", Msg: "question not found"}
	ErrInvariant        = &Error{Kind: KindInternal, Code: "invariant_violation", Msg: "internal invariant violated"}
	ErrSessionNotFound  = &Error{Kind: KindNotFound, Code: "session_not_found", Msg: "session not found"}
	ErrUnknownPlayer    = &Error{Kind: KindNotFound, Code: "participant_not_found", Msg: "participant not found"}
	ErrNotHost          = &Error{Kind: KindForbidden, Code: "not_host", Msg: "only the session host can do this"}
)

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the reason code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
