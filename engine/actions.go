package engine

import "fmt"

// Step applies an intent to a copy of g and returns the new state. On error
// the returned state is g, unchanged.
func Step(g GameState, in Intent) (GameState, error) {
	next := g
	if err := next.ApplyIntent(in); err != nil {
		return g, err
	}
	return next, nil
}

// intentPhases lists the phases in which each intent type is accepted.
var intentPhases = map[IntentType][]Phase{
	IntentSwapDecision:      {PhaseFirstSwapDecision},
	IntentConfirmSwap:       {PhaseFirstSwapAction, PhaseOthersSwapAction},
	IntentOtherPlayerSwap:   {PhaseFirstSwapOthersDecision},
	IntentVoteDecision:      {PhaseVoteSwapDecision},
	IntentVote:              {PhaseVoteSwap},
	IntentFinalSwapDecision: {PhaseFinalSwapDecision},
	IntentFinalSwap:         {PhaseFinalSwapAction},
	IntentOneCardSelect:     {PhaseFinalSwapOneCardSelect},
	IntentOneCardDecide:     {PhaseFinalSwapOneCardRevealAndDecide},
	IntentPlayCards:         {PhaseGameplay, PhaseMinigame},
	IntentMinigameSwap:      {PhaseMinigameSwap},
	IntentContinue:          {PhaseRoundOver},
}

// ApplyIntent applies an intent in place. Returns an error if the intent is
// illegal; a failed intent may leave g partially updated, so callers that
// need rollback use Step.
func (g *GameState) ApplyIntent(in Intent) error {
	if g.IsTerminal() {
		return ErrGameOver
	}
	if in.Type == IntentContinue {
		if g.Phase != PhaseRoundOver {
			return fmt.Errorf("%w: continue in %s", ErrWrongPhase, g.Phase)
		}
		g.Steps++
		return g.continueRound()
	}
	if err := g.checkSeat(in); err != nil {
		return err
	}
	g.Steps++

	switch in.Type {
	case IntentSwapDecision:
		return g.swapDecision(in.Seat, in.Accept)
	case IntentConfirmSwap:
		return g.confirmSwap(in.Seat, in.Cards)
	case IntentOtherPlayerSwap:
		return g.otherPlayerSwap(in.Seat, in.Accept)
	case IntentVoteDecision:
		return g.voteDecision(in.Seat, in.Accept)
	case IntentVote:
		return g.vote(in.Seat, in.Amount)
	case IntentFinalSwapDecision:
		return g.finalSwapDecision(in.Seat, in.Accept)
	case IntentFinalSwap:
		return g.finalSwap(in.Seat, in.Cards)
	case IntentOneCardSelect:
		if len(in.Cards) != 1 {
			return fmt.Errorf("%w: select exactly one card, got %d", ErrInvalidIntent, len(in.Cards))
		}
		return g.oneCardSelect(in.Seat, in.Cards[0])
	case IntentOneCardDecide:
		return g.oneCardDecide(in.Seat, in.Choice)
	case IntentPlayCards:
		return g.playCards(in.Seat, in.Cards)
	case IntentMinigameSwap:
		return g.minigameSwap(in.Seat, in.Accept)
	}
	return fmt.Errorf("%w: unhandled intent type %d", ErrInvalidIntent, in.Type)
}

// checkSeat runs the shared guards: idempotency, phase, eligibility, turn.
func (g *GameState) checkSeat(in Intent) error {
	if in.Seat >= g.NumPlayers {
		return fmt.Errorf("%w: seat %d out of range", ErrInvalidIntent, in.Seat)
	}
	if g.alreadyDecided(in) {
		return fmt.Errorf("%w: seat %d, %s", ErrDuplicateIntent, in.Seat, in.Type)
	}
	phases, ok := intentPhases[in.Type]
	if !ok {
		return fmt.Errorf("%w: unknown intent type %d", ErrInvalidIntent, in.Type)
	}
	allowed := false
	for _, p := range phases {
		if p == g.Phase {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, in.Type, g.Phase)
	}
	if !g.needsAction(in.Seat) {
		return fmt.Errorf("%w: seat %d takes no part in %s", ErrNotYourTurn, in.Seat, g.Phase)
	}
	if in.Seat != g.CurrentPlayer {
		return fmt.Errorf("%w: seat %d acted, seat %d is up", ErrNotYourTurn, in.Seat, g.CurrentPlayer)
	}
	return nil
}

// alreadyDecided is the idempotency key: the flag a seat sets when it finalizes
// the decision carried by this intent type.
func (g *GameState) alreadyDecided(in Intent) bool {
	p := &g.Players[in.Seat]
	switch in.Type {
	case IntentSwapDecision, IntentOtherPlayerSwap:
		return p.FirstSwapDecided
	case IntentConfirmSwap:
		return p.HasSwapped
	case IntentVoteDecision:
		return p.WantsToVote != DecisionNone
	case IntentVote:
		return p.HasVoted
	case IntentFinalSwapDecision:
		return p.FinalSwapDecision != DecisionNone
	case IntentFinalSwap, IntentOneCardDecide:
		return p.FinalSwapDone
	case IntentOneCardSelect:
		return p.FinalSwapDone || (g.Phase == PhaseFinalSwapOneCardRevealAndDecide && g.CurrentPlayer == in.Seat)
	case IntentPlayCards:
		return g.ActiveInTrick(in.Seat) && p.PlayedLen > 0
	case IntentMinigameSwap:
		return p.MinigameSwapDecided
	}
	return false
}

// ForceGameplay jumps from any pre-gameplay phase straight into trick play.
// Used by the orchestrator's watchdog when negotiation stalls past its ceiling.
func (g *GameState) ForceGameplay() error {
	if !g.Phase.IsPreGameplay() {
		return fmt.Errorf("%w: cannot force gameplay from %s", ErrInvalidTransition, g.Phase)
	}
	if g.RevealedCard.Valid() {
		g.discard(g.RevealedCard)
		g.RevealedCard = EmptyCard
	}
	g.CardToSwap = EmptyCard
	g.logf(-1, "negotiation timed out, play starts now")
	return g.startGameplay()
}
