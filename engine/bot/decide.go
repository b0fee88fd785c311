// Package bot implements the heuristic player that drives non-human seats
// through every Gurch phase.
//
// Decisions are pure functions of the engine state: Decide picks the bot's
// intent for the acting seat and Conservative picks the safest one, which the
// orchestrator uses when a human's countdown runs out.
package bot

import (
	"fmt"
	"sort"

	engine "github.com/peka01/gurch/engine"
)

// Tuning holds the hand-quality thresholds behind every decision.
type Tuning struct {
	SwapBelow         float64    // first swap and others round: swap when quality is below
	SwapTwoBelow      float64    // first swapper takes two cards when quality is below
	VoteBelow         float64    // opt into the vote when quality is below
	VoteBands         [3]float64 // quality below VoteBands[i] votes 4-i; anything higher votes 1
	FinalJoinBelow    float64    // join a final swap voted by others when quality is below
	MinigameSwapBelow float64    // swap the three minigame cards when quality is below
	Isolation         float64    // WorstCards bonus for a card with no rank-mate
}

// DefaultTuning returns the thresholds the bots play with.
func DefaultTuning() Tuning {
	return Tuning{
		SwapBelow:         6,
		SwapTwoBelow:      3,
		VoteBelow:         8,
		VoteBands:         [3]float64{4, 7, 10},
		FinalJoinBelow:    6,
		MinigameSwapBelow: 4,
		Isolation:         1,
	}
}

// Decide returns the default bot's intent for seat.
func Decide(g *engine.GameState, seat uint8) (engine.Intent, error) {
	return DefaultTuning().Decide(g, seat)
}

// VoteAmount maps hand quality onto a vote: the worse the hand, the bigger the swap.
func (t Tuning) VoteAmount(q float64) uint8 {
	for i, band := range t.VoteBands {
		if q < band {
			return uint8(4 - i)
		}
	}
	return 1
}

// Decide returns the intent seat would submit in the current phase. During
// ROUND_OVER it returns Continue regardless of seat.
func (t Tuning) Decide(g *engine.GameState, seat uint8) (engine.Intent, error) {
	if g.Phase == engine.PhaseRoundOver {
		return engine.Intent{Type: engine.IntentContinue}, nil
	}
	if err := checkActing(g, seat); err != nil {
		return engine.Intent{}, err
	}
	hand := g.Hand(seat)
	q := HandQuality(hand)
	yes := func(typ engine.IntentType, accept bool) engine.Intent {
		return engine.Intent{Type: typ, Seat: seat, Accept: accept}
	}
	swap := func(typ engine.IntentType, n int) engine.Intent {
		return engine.Intent{Type: typ, Seat: seat, Cards: WorstCards(hand, n, t.Isolation)}
	}

	switch g.Phase {
	case engine.PhaseFirstSwapDecision:
		return yes(engine.IntentSwapDecision, q < t.SwapBelow), nil
	case engine.PhaseFirstSwapAction:
		n := 1
		if q < t.SwapTwoBelow {
			n = 2
		}
		if n > int(g.Rules.MaxFirstSwap) {
			n = int(g.Rules.MaxFirstSwap)
		}
		return swap(engine.IntentConfirmSwap, n), nil
	case engine.PhaseFirstSwapOthersDecision:
		return yes(engine.IntentOtherPlayerSwap, q < t.SwapBelow), nil
	case engine.PhaseOthersSwapAction:
		return swap(engine.IntentConfirmSwap, int(g.SwapAmount)), nil
	case engine.PhaseVoteSwapDecision:
		return yes(engine.IntentVoteDecision, q < t.VoteBelow), nil
	case engine.PhaseVoteSwap:
		amount := t.VoteAmount(q)
		if amount > g.Rules.MaxVote {
			amount = g.Rules.MaxVote
		}
		return engine.Intent{Type: engine.IntentVote, Seat: seat, Amount: amount}, nil
	case engine.PhaseFinalSwapDecision:
		return yes(engine.IntentFinalSwapDecision, q < t.FinalJoinBelow), nil
	case engine.PhaseFinalSwapAction:
		return swap(engine.IntentFinalSwap, int(g.VoteResult)), nil
	case engine.PhaseFinalSwapOneCardSelect:
		return swap(engine.IntentOneCardSelect, 1), nil
	case engine.PhaseFinalSwapOneCardRevealAndDecide:
		rest := without(hand, g.CardToSwap)
		choice := engine.ChoiceDecline
		if HandQuality(append(rest, g.RevealedCard)) >= q {
			choice = engine.ChoiceKeep
		}
		return engine.Intent{Type: engine.IntentOneCardDecide, Seat: seat, Choice: choice}, nil
	case engine.PhaseGameplay, engine.PhaseMinigame:
		return engine.Intent{Type: engine.IntentPlayCards, Seat: seat, Cards: choosePlay(g, hand)}, nil
	case engine.PhaseMinigameSwap:
		return yes(engine.IntentMinigameSwap, q < t.MinigameSwapBelow), nil
	}
	return engine.Intent{}, fmt.Errorf("%w: no bot decision in %s", engine.ErrWrongPhase, g.Phase)
}

// Conservative returns the safest intent for seat: stand pat, decline, keep
// swaps to the minimum and play the cheapest legal set. In VOTE_SWAP it
// returns the smallest vote; the orchestrator abstains there instead.
func Conservative(g *engine.GameState, seat uint8) (engine.Intent, error) {
	if g.Phase == engine.PhaseRoundOver {
		return engine.Intent{Type: engine.IntentContinue}, nil
	}
	if err := checkActing(g, seat); err != nil {
		return engine.Intent{}, err
	}
	hand := g.Hand(seat)
	iso := DefaultTuning().Isolation
	no := func(typ engine.IntentType) engine.Intent {
		return engine.Intent{Type: typ, Seat: seat}
	}
	swap := func(typ engine.IntentType, n int) engine.Intent {
		return engine.Intent{Type: typ, Seat: seat, Cards: WorstCards(hand, n, iso)}
	}

	switch g.Phase {
	case engine.PhaseFirstSwapDecision:
		return no(engine.IntentSwapDecision), nil
	case engine.PhaseFirstSwapAction:
		return swap(engine.IntentConfirmSwap, 1), nil
	case engine.PhaseFirstSwapOthersDecision:
		return no(engine.IntentOtherPlayerSwap), nil
	case engine.PhaseOthersSwapAction:
		return swap(engine.IntentConfirmSwap, int(g.SwapAmount)), nil
	case engine.PhaseVoteSwapDecision:
		return no(engine.IntentVoteDecision), nil
	case engine.PhaseVoteSwap:
		return engine.Intent{Type: engine.IntentVote, Seat: seat, Amount: 1}, nil
	case engine.PhaseFinalSwapDecision:
		return no(engine.IntentFinalSwapDecision), nil
	case engine.PhaseFinalSwapAction:
		return swap(engine.IntentFinalSwap, int(g.VoteResult)), nil
	case engine.PhaseFinalSwapOneCardSelect:
		return swap(engine.IntentOneCardSelect, 1), nil
	case engine.PhaseFinalSwapOneCardRevealAndDecide:
		return engine.Intent{Type: engine.IntentOneCardDecide, Seat: seat, Choice: engine.ChoiceDecline}, nil
	case engine.PhaseGameplay, engine.PhaseMinigame:
		return engine.Intent{Type: engine.IntentPlayCards, Seat: seat, Cards: cheapestPlay(g)}, nil
	case engine.PhaseMinigameSwap:
		return no(engine.IntentMinigameSwap), nil
	}
	return engine.Intent{}, fmt.Errorf("%w: nothing to decide in %s", engine.ErrWrongPhase, g.Phase)
}

func checkActing(g *engine.GameState, seat uint8) error {
	if g.IsTerminal() {
		return engine.ErrGameOver
	}
	if g.ActingPlayer() != int8(seat) {
		return fmt.Errorf("%w: seat %d asked, seat %d is up", engine.ErrNotYourTurn, seat, g.ActingPlayer())
	}
	return nil
}

// choosePlay leads the biggest rank group, or follows with the cheapest play
// the mandatory-beat rule allows.
func choosePlay(g *engine.GameState, hand []engine.Card) []engine.Card {
	var cards []engine.Card
	if g.TrickLen == 0 {
		cards = leadPlay(hand)
	} else {
		cards = followPlay(hand, g.Lead)
		if engine.ValidateFollow(hand, g.Lead, cards) != nil {
			cards = cheapestPlay(g)
		}
	}
	return cards
}

// leadPlay returns the largest same-rank group, preferring the higher rank on ties.
func leadPlay(hand []engine.Card) []engine.Card {
	groups := engine.RankGroups(hand)
	var best uint8
	for rank, n := range groups {
		if best == 0 || n > groups[best] || (n == groups[best] && rank > best) {
			best = rank
		}
	}
	return ofRank(hand, best, groups[best])
}

func followPlay(hand []engine.Card, lead engine.Play) []engine.Card {
	k, v := int(lead.N), lead.SetValue()
	switch engine.ClassifyFollow(hand, lead) {
	case engine.FollowMatch:
		groups := engine.RankGroups(hand)
		var low uint8
		for rank, n := range groups {
			if n >= k && int(rank) >= v && (low == 0 || rank < low) {
				low = rank
			}
		}
		return ofRank(hand, low, k)
	case engine.FollowSacrifice:
		sorted := engine.SortByValue(hand)
		q := sorted[len(sorted)-1]
		return append([]engine.Card{q}, engine.Lowest(without(hand, q), k-1)...)
	default:
		return engine.Lowest(hand, k)
	}
}

// ofRank returns n cards of rank from hand, lowest suit first.
func ofRank(hand []engine.Card, rank uint8, n int) []engine.Card {
	var out []engine.Card
	for _, c := range engine.SortByValue(hand) {
		if c.Rank() == rank && len(out) < n {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Suit() < out[j].Suit() })
	return out
}

// cheapestPlay returns the legal play with the lowest total, first listed on ties.
func cheapestPlay(g *engine.GameState) []engine.Card {
	plays := g.LegalPlays()
	if len(plays) == 0 {
		return nil
	}
	best := plays[0]
	for _, p := range plays[1:] {
		if engine.NewPlay(0, p).Total() < engine.NewPlay(0, best).Total() {
			best = p
		}
	}
	return best
}
