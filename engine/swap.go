package engine

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// First swap and the others round
// ---------------------------------------------------------------------------

// swapDecision records the commander's swap-or-stand-pat choice. Standing pat
// ends the negotiation: nobody swaps and play starts.
func (g *GameState) swapDecision(seat uint8, accept bool) error {
	p := &g.Players[seat]
	if accept {
		if err := g.transition(PhaseFirstSwapAction); err != nil {
			return err
		}
		p.FirstSwapDecided = true
		g.FirstSwapper = int8(seat)
		g.logf(int8(seat), "wants to swap")
		return nil
	}

	p.FirstSwapDecided = true
	p.StoodPat = true
	g.logf(int8(seat), "stands pat")
	return g.startGameplay()
}

// confirmSwap exchanges the chosen cards with the deck. The first swapper
// fixes SwapAmount; everyone after must match it exactly.
func (g *GameState) confirmSwap(seat uint8, cards []Card) error {
	first := g.Phase == PhaseFirstSwapAction
	if first {
		if len(cards) < 1 || len(cards) > int(g.Rules.MaxFirstSwap) {
			return fmt.Errorf("%w: first swap takes 1 to %d cards, got %d",
				ErrInvalidIntent, g.Rules.MaxFirstSwap, len(cards))
		}
	} else if len(cards) != int(g.SwapAmount) {
		return fmt.Errorf("%w: swap exactly %d cards, got %d", ErrInvalidIntent, g.SwapAmount, len(cards))
	}
	if err := g.replaceCards(seat, cards); err != nil {
		return err
	}
	if first {
		g.SwapAmount = uint8(len(cards))
	}
	g.Players[seat].HasSwapped = true
	g.logf(int8(seat), "swaps %d %s", len(cards), plural(len(cards), "card"))

	if err := g.transition(PhaseFirstSwapOthersDecision); err != nil {
		return err
	}
	if g.advanceAfter(seat) {
		return nil
	}
	return g.beginVoteDecision()
}

// otherPlayerSwap handles FIRST_SWAP_OTHERS_DECISION: match SwapAmount or stand pat.
func (g *GameState) otherPlayerSwap(seat uint8, accept bool) error {
	p := &g.Players[seat]
	if accept {
		if err := g.transition(PhaseOthersSwapAction); err != nil {
			return err
		}
		p.FirstSwapDecided = true
		g.logf(int8(seat), "will swap %d", g.SwapAmount)
		return nil
	}
	p.FirstSwapDecided = true
	p.StoodPat = true
	g.logf(int8(seat), "stands pat")
	if g.advanceAfter(seat) {
		return nil
	}
	return g.beginVoteDecision()
}

// ---------------------------------------------------------------------------
// Vote
// ---------------------------------------------------------------------------

func (g *GameState) beginVoteDecision() error {
	ok, err := g.enter(PhaseVoteSwapDecision, g.FirstToAct)
	if err != nil || ok {
		return err
	}
	return g.startGameplay()
}

// voteDecision records whether a seat takes part in the vote.
func (g *GameState) voteDecision(seat uint8, accept bool) error {
	g.Players[seat].WantsToVote = decisionOf(accept)
	if accept {
		g.logf(int8(seat), "joins the vote")
	} else {
		g.logf(int8(seat), "sits out the vote")
	}
	if g.advanceAfter(seat) {
		return nil
	}
	ok, err := g.enter(PhaseVoteSwap, g.FirstToAct)
	if err != nil || ok {
		return err
	}
	g.logf(-1, "nobody wants a final swap")
	return g.startGameplay()
}

// vote records an amount in [1, MaxVote].
func (g *GameState) vote(seat uint8, amount uint8) error {
	if amount < 1 || amount > g.Rules.MaxVote {
		return fmt.Errorf("%w: vote must be 1 to %d, got %d", ErrInvalidIntent, g.Rules.MaxVote, amount)
	}
	return g.recordVote(seat, amount)
}

// Abstain records a 0 vote for the acting seat. Only the orchestrator's
// timeout path uses it; a 0 never wins the tally.
func (g *GameState) Abstain(seat uint8) error {
	if err := g.checkSeat(Intent{Type: IntentVote, Seat: seat}); err != nil {
		return err
	}
	g.Steps++
	return g.recordVote(seat, 0)
}

func (g *GameState) recordVote(seat uint8, amount uint8) error {
	p := &g.Players[seat]
	p.SwapVote = amount
	p.HasVoted = true
	if amount == 0 {
		g.logf(int8(seat), "abstains")
	} else {
		g.logf(int8(seat), "votes %d", amount)
	}
	if g.advanceAfter(seat) {
		return nil
	}
	return g.closeVote()
}

// closeVote tallies the votes, auto-joins the winning voters and asks the rest.
func (g *GameState) closeVote() error {
	var votes []uint8
	for s := uint8(0); s < g.NumPlayers; s++ {
		if g.Players[s].HasVoted {
			votes = append(votes, g.Players[s].SwapVote)
		}
	}
	g.VoteResult = TallyVotes(votes)
	if g.VoteResult > MaxHandSize {
		g.VoteResult = MaxHandSize
	}
	g.logf(-1, "the table swaps %d", g.VoteResult)

	for s := uint8(0); s < g.NumPlayers; s++ {
		p := &g.Players[s]
		if p.HasVoted && p.SwapVote == g.VoteResult {
			p.FinalSwapDecision = DecisionYes
		}
	}
	ok, err := g.enter(PhaseFinalSwapDecision, g.FirstToAct)
	if err != nil || ok {
		return err
	}
	return g.beginFinalSwap()
}

// TallyVotes returns the plurality amount, ties going to the lowest tied value.
// A winning 0 is replaced by the lowest non-zero vote, or 1 if every vote is 0.
func TallyVotes(votes []uint8) uint8 {
	if len(votes) == 0 {
		return 1
	}
	counts := make(map[uint8]int)
	for _, v := range votes {
		counts[v]++
	}
	values := make([]uint8, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	best, bestCount := values[0], counts[values[0]]
	for _, v := range values[1:] {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	if best != 0 {
		return best
	}
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 1
}

// ---------------------------------------------------------------------------
// Final swap
// ---------------------------------------------------------------------------

// finalSwapDecision lets a seat that voted for a losing amount join anyway.
func (g *GameState) finalSwapDecision(seat uint8, accept bool) error {
	g.Players[seat].FinalSwapDecision = decisionOf(accept)
	if accept {
		g.logf(int8(seat), "joins the final swap")
	} else {
		g.logf(int8(seat), "skips the final swap")
	}
	if g.advanceAfter(seat) {
		return nil
	}
	return g.beginFinalSwap()
}

func (g *GameState) beginFinalSwap() error {
	next := PhaseFinalSwapAction
	if g.VoteResult == 1 {
		next = PhaseFinalSwapOneCardSelect
	}
	ok, err := g.enter(next, g.FirstToAct)
	if err != nil || ok {
		return err
	}
	return g.startGameplay()
}

// finalSwap exchanges exactly VoteResult cards.
func (g *GameState) finalSwap(seat uint8, cards []Card) error {
	if len(cards) != int(g.VoteResult) {
		return fmt.Errorf("%w: final swap takes exactly %d cards, got %d", ErrInvalidIntent, g.VoteResult, len(cards))
	}
	if err := g.replaceCards(seat, cards); err != nil {
		return err
	}
	g.Players[seat].FinalSwapDone = true
	g.logf(int8(seat), "swaps %d %s", len(cards), plural(len(cards), "card"))
	if g.advanceAfter(seat) {
		return nil
	}
	return g.startGameplay()
}

// oneCardSelect picks the card to give up and reveals a replacement face up.
func (g *GameState) oneCardSelect(seat uint8, card Card) error {
	if g.Players[seat].indexOf(card) < 0 {
		return fmt.Errorf("%w: %s is not in hand", ErrInvalidIntent, card)
	}
	revealed, err := g.draw()
	if err != nil {
		return err
	}
	if err := g.transition(PhaseFinalSwapOneCardRevealAndDecide); err != nil {
		return err
	}
	g.CardToSwap = card
	g.RevealedCard = revealed
	g.logf(int8(seat), "gives up a card and reveals %s", revealed)
	return nil
}

// oneCardDecide keeps the revealed card, or declines it for a hidden draw.
func (g *GameState) oneCardDecide(seat uint8, choice OneCardChoice) error {
	if choice != ChoiceKeep && choice != ChoiceDecline {
		return fmt.Errorf("%w: unknown choice %d", ErrInvalidIntent, choice)
	}
	p := &g.Players[seat]
	replacement := g.RevealedCard
	if choice == ChoiceDecline {
		g.discard(g.RevealedCard)
		g.RevealedCard = EmptyCard
		c, err := g.draw()
		if err != nil {
			return err
		}
		replacement = c
		g.logf(int8(seat), "declines the revealed card")
	} else {
		g.logf(int8(seat), "keeps %s", replacement)
	}
	p.removeCard(g.CardToSwap)
	g.discard(g.CardToSwap)
	p.addCard(replacement)
	p.FinalSwapDone = true
	g.CardToSwap = EmptyCard
	g.RevealedCard = EmptyCard

	if g.advanceAfter(seat) {
		return g.transition(PhaseFinalSwapOneCardSelect)
	}
	return g.startGameplay()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// validateSelection checks that cards are distinct and held by seat.
func (g *GameState) validateSelection(seat uint8, cards []Card) error {
	p := &g.Players[seat]
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return fmt.Errorf("%w: %s selected twice", ErrInvalidIntent, c)
		}
		seen[c] = true
		if p.indexOf(c) < 0 {
			return fmt.Errorf("%w: %s is not in hand", ErrInvalidIntent, c)
		}
	}
	return nil
}

// replaceCards discards each selected card and draws one replacement for it.
func (g *GameState) replaceCards(seat uint8, cards []Card) error {
	if err := g.validateSelection(seat, cards); err != nil {
		return err
	}
	p := &g.Players[seat]
	for _, c := range cards {
		fresh, err := g.draw()
		if err != nil {
			return err
		}
		p.removeCard(c)
		g.discard(c)
		p.addCard(fresh)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
