package engine

import "errors"

var (
	// ErrInvalidIntent marks an intent that breaks the rules (illegal play, wrong card count).
	ErrInvalidIntent = errors.New("invalid intent")
	// ErrWrongPhase marks an intent that does not belong to the active phase.
	ErrWrongPhase = errors.New("intent not accepted in this phase")
	// ErrNotYourTurn marks an intent from a seat other than the acting one.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrDuplicateIntent marks a repeat of a decision the seat already recorded this phase.
	ErrDuplicateIntent = errors.New("decision already recorded")
	// ErrInvalidTransition marks a phase change missing from the transition table.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrGameOver is returned for any intent after GAME_OVER.
	ErrGameOver = errors.New("game is already over")
)

// IsRejection reports whether err is an intent the acting seat should be told about,
// as opposed to a silent duplicate.
func IsRejection(err error) bool {
	return err != nil && !errors.Is(err, ErrDuplicateIntent)
}
