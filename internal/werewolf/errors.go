package werewolf

import "errors"

// Engine errors. These never cross the session boundary as raw errors;
// Session methods translate them into Result reason codes.
var (
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	ErrIllegalCommandForPhase = errors.New("command not allowed in current phase")
	ErrIllegalAction          = errors.New("ability not available to this role")
	ErrAlreadyActed           = errors.New("action already submitted this cycle")
	ErrInvalidTarget          = errors.New("invalid target")
	ErrInsufficientPlayers    = errors.New("not enough players to start")
	ErrAlreadyJoined          = errors.New("already joined")
	ErrSessionFull            = errors.New("session is full")
	ErrAlreadyStarted         = errors.New("game already started")
	ErrNotStarted             = errors.New("game not started")
	ErrPlayerNotFound         = errors.New("player not found")
	ErrDeadPlayer             = errors.New("dead players cannot act")
	ErrSessionExists          = errors.New("session already exists for group")
	ErrSessionNotFound        = errors.New("session not found")
)

// Reason codes carried in Result.Reason so the transport layer can react
// without string-matching display text.
const (
	ReasonInvalidPhaseTransition = "invalid_phase_transition"
	ReasonIllegalCommandForPhase = "illegal_command_for_phase"
	ReasonIllegalAction          = "illegal_action"
	ReasonAlreadyActed           = "already_acted"
	ReasonInvalidTarget          = "invalid_target"
	ReasonInsufficientPlayers    = "insufficient_players"
	ReasonAlreadyJoined          = "already_joined"
	ReasonSessionFull            = "session_full"
	ReasonAlreadyStarted         = "already_started"
	ReasonNotStarted             = "not_started"
	ReasonPlayerNotFound         = "player_not_found"
	ReasonDeadPlayer             = "dead_player"
	ReasonInternal               = "internal_error"
)

// reasonForError maps an engine error to its Result reason code.
func reasonForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPhaseTransition):
		return ReasonInvalidPhaseTransition
	case errors.Is(err, ErrIllegalCommandForPhase):
		return ReasonIllegalCommandForPhase
	case errors.Is(err, ErrIllegalAction):
		return ReasonIllegalAction
	case errors.Is(err, ErrAlreadyActed):
		return ReasonAlreadyActed
	case errors.Is(err, ErrInvalidTarget):
		return ReasonInvalidTarget
	case errors.Is(err, ErrInsufficientPlayers):
		return ReasonInsufficientPlayers
	case errors.Is(err, ErrAlreadyJoined):
		return ReasonAlreadyJoined
	case errors.Is(err, ErrSessionFull):
		return ReasonSessionFull
	case errors.Is(err, ErrAlreadyStarted):
		return ReasonAlreadyStarted
	case errors.Is(err, ErrNotStarted):
		return ReasonNotStarted
	case errors.Is(err, ErrPlayerNotFound):
		return ReasonPlayerNotFound
	case errors.Is(err, ErrDeadPlayer):
		return ReasonDeadPlayer
	default:
		return ReasonInternal
	}
}
