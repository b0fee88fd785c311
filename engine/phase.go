package engine

import "fmt"

// Transitions is the table of allowed phase changes. Every pre-gameplay phase
// may also jump to GAMEPLAY: commander stand-pat, an empty vote, and the
// watchdog's forced start all take that edge.
var Transitions = map[Phase][]Phase{
	PhaseDealing:                 {PhaseFirstSwapDecision},
	PhaseFirstSwapDecision:       {PhaseFirstSwapAction, PhaseGameplay},
	PhaseFirstSwapAction:         {PhaseFirstSwapOthersDecision, PhaseVoteSwapDecision, PhaseGameplay},
	PhaseFirstSwapOthersDecision: {PhaseOthersSwapAction, PhaseVoteSwapDecision, PhaseGameplay},
	PhaseOthersSwapAction:        {PhaseFirstSwapOthersDecision, PhaseVoteSwapDecision, PhaseGameplay},
	PhaseVoteSwapDecision:        {PhaseVoteSwap, PhaseGameplay},
	PhaseVoteSwap: {
		PhaseFinalSwapDecision, PhaseFinalSwapAction, PhaseFinalSwapOneCardSelect, PhaseGameplay,
	},
	PhaseFinalSwapDecision:               {PhaseFinalSwapAction, PhaseFinalSwapOneCardSelect, PhaseGameplay},
	PhaseFinalSwapAction:                 {PhaseGameplay},
	PhaseFinalSwapOneCardSelect:          {PhaseFinalSwapOneCardRevealAndDecide, PhaseGameplay},
	PhaseFinalSwapOneCardRevealAndDecide: {PhaseFinalSwapOneCardSelect, PhaseGameplay},
	PhaseGameplay:                        {PhaseRoundOver},
	PhaseRoundOver:                       {PhaseGameplay, PhaseMinigame, PhaseGameOver},
	PhaseMinigame:                        {PhaseMinigameSwap, PhaseGameOver},
	PhaseMinigameSwap:                    {PhaseMinigame},
	PhaseGameOver:                        nil,
}

// CanTransition reports whether the table allows from → to.
func CanTransition(from, to Phase) bool {
	for _, p := range Transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// transition moves to phase `to` if the table allows it; otherwise the state is untouched.
func (g *GameState) transition(to Phase) error {
	if !CanTransition(g.Phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Phase, to)
	}
	g.Phase = to
	return nil
}

// needsAction reports whether seat still owes a decision in the active phase.
func (g *GameState) needsAction(seat uint8) bool {
	if seat >= g.NumPlayers {
		return false
	}
	p := &g.Players[seat]
	switch g.Phase {
	case PhaseFirstSwapDecision, PhaseFirstSwapOthersDecision:
		return !p.FirstSwapDecided
	case PhaseFirstSwapAction, PhaseOthersSwapAction:
		return p.FirstSwapDecided && !p.StoodPat && !p.HasSwapped
	case PhaseVoteSwapDecision:
		return !p.StoodPat && p.WantsToVote == DecisionNone
	case PhaseVoteSwap:
		return p.WantsToVote == DecisionYes && !p.HasVoted
	case PhaseFinalSwapDecision:
		return p.HasVoted && p.FinalSwapDecision == DecisionNone
	case PhaseFinalSwapAction, PhaseFinalSwapOneCardSelect, PhaseFinalSwapOneCardRevealAndDecide:
		return p.FinalSwapDecision == DecisionYes && !p.FinalSwapDone
	case PhaseGameplay, PhaseMinigame:
		return g.ActiveInTrick(seat) && p.PlayedLen == 0
	case PhaseMinigameSwap:
		return g.InMinigame(seat) && !p.MinigameSwapDecided
	}
	return false
}

// firstNeedingFrom returns the first seat at or after start (in turn order)
// that still owes a decision in the active phase.
func (g *GameState) firstNeedingFrom(start uint8) (uint8, bool) {
	for i := uint8(0); i < g.NumPlayers; i++ {
		s := (start + i) % g.NumPlayers
		if g.needsAction(s) {
			return s, true
		}
	}
	return 0, false
}

// advanceAfter moves CurrentPlayer to the next seat after `from` that still
// owes a decision. Returns false when the phase is complete.
func (g *GameState) advanceAfter(from uint8) bool {
	s, ok := g.firstNeedingFrom(g.NextSeat(from))
	if ok {
		g.CurrentPlayer = s
	}
	return ok
}

// enter transitions to `to` and seats the first actor at or after start.
// Returns false (with the transition applied) if nobody owes a decision.
func (g *GameState) enter(to Phase, start uint8) (bool, error) {
	if err := g.transition(to); err != nil {
		return false, err
	}
	s, ok := g.firstNeedingFrom(start)
	if ok {
		g.CurrentPlayer = s
	}
	return ok, nil
}
