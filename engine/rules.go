// Package engine implements the Gurch card game rules.
//
// The engine is a deterministic phase state machine over a flat value-type
// GameState: dealing, the swap/vote negotiation, trick play with the
// mandatory-beat rule, scoring and the tie-break minigame. It has no timers
// and no I/O; the orchestrator in internal/game drives it with Intents.
package engine

const (
	MinPlayers       = 3
	MaxPlayers       = 4
	MaxHandSize      = 5
	DeckSize         = 52
	FaceDownCards    = 4
	MinigameHandSize = 3
	LogSize          = 16
)

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	NumPlayers            uint8 // 3 or 4; 0 treated as 4
	Dealer                uint8 // seat index of the dealer
	HumanSeat             int8  // seat of the human player, -1 for an all-bot table
	MaxFirstSwap          uint8 // most cards the first swapper may exchange
	MaxVote               uint8 // highest amount accepted in the final swap vote
	NonParticipantPenalty int   // added to hand value for a seat absent from the final trick
	MaxMinigameRounds     uint8 // reruns of the tie-break before falling back to turn order
}

// DefaultHouseRules returns the standard Gurch house rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		NumPlayers:            4,
		Dealer:                0,
		HumanSeat:             0,
		MaxFirstSwap:          2,
		MaxVote:               5,
		NonParticipantPenalty: 10,
		MaxMinigameRounds:     5,
	}
}

// numPlayers returns the effective number of seats, treating 0 as 4.
func (r *HouseRules) numPlayers() uint8 {
	if r.NumPlayers == 0 {
		return MaxPlayers
	}
	return r.NumPlayers
}
