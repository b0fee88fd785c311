package engine

// subsets calls fn with every n-card subset of cards, in index order.
func subsets(cards []Card, n int, fn func([]Card)) {
	if n <= 0 || n > len(cards) {
		return
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for {
		pick := make([]Card, n)
		for i, j := range idx {
			pick[i] = cards[j]
		}
		fn(pick)

		i := n - 1
		for i >= 0 && idx[i] == len(cards)-n+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < n; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// LegalPlays lists every play the acting seat may make in the current trick.
// Returns nil outside GAMEPLAY and MINIGAME.
func (g *GameState) LegalPlays() [][]Card {
	if g.Phase != PhaseGameplay && g.Phase != PhaseMinigame {
		return nil
	}
	hand := g.Players[g.CurrentPlayer].HandSlice()
	var out [][]Card
	if g.TrickLen == 0 {
		for n := 1; n <= len(hand); n++ {
			subsets(hand, n, func(c []Card) {
				if sameRank(c) {
					out = append(out, c)
				}
			})
		}
		return out
	}
	subsets(hand, int(g.Lead.N), func(c []Card) {
		if ValidateFollow(hand, g.Lead, c) == nil {
			out = append(out, c)
		}
	})
	return out
}

// LegalIntents lists every intent the engine would accept right now. Card
// swaps enumerate every subset of the right size, so the list is for tests and
// simulations, not for hot paths.
func (g *GameState) LegalIntents() []Intent {
	if g.IsTerminal() {
		return nil
	}
	if g.Phase == PhaseRoundOver {
		return []Intent{{Type: IntentContinue}}
	}
	if g.Phase == PhaseDealing {
		return nil
	}
	seat := g.CurrentPlayer
	hand := g.Players[seat].HandSlice()
	yesNo := func(t IntentType) []Intent {
		return []Intent{{Type: t, Seat: seat, Accept: true}, {Type: t, Seat: seat, Accept: false}}
	}
	swaps := func(t IntentType, n int) []Intent {
		var out []Intent
		subsets(hand, n, func(c []Card) {
			out = append(out, Intent{Type: t, Seat: seat, Cards: c})
		})
		return out
	}

	switch g.Phase {
	case PhaseFirstSwapDecision:
		return yesNo(IntentSwapDecision)
	case PhaseFirstSwapAction:
		var out []Intent
		for n := 1; n <= int(g.Rules.MaxFirstSwap); n++ {
			out = append(out, swaps(IntentConfirmSwap, n)...)
		}
		return out
	case PhaseFirstSwapOthersDecision:
		return yesNo(IntentOtherPlayerSwap)
	case PhaseOthersSwapAction:
		return swaps(IntentConfirmSwap, int(g.SwapAmount))
	case PhaseVoteSwapDecision:
		return yesNo(IntentVoteDecision)
	case PhaseVoteSwap:
		var out []Intent
		for v := uint8(1); v <= g.Rules.MaxVote; v++ {
			out = append(out, Intent{Type: IntentVote, Seat: seat, Amount: v})
		}
		return out
	case PhaseFinalSwapDecision:
		return yesNo(IntentFinalSwapDecision)
	case PhaseFinalSwapAction:
		return swaps(IntentFinalSwap, int(g.VoteResult))
	case PhaseFinalSwapOneCardSelect:
		return swaps(IntentOneCardSelect, 1)
	case PhaseFinalSwapOneCardRevealAndDecide:
		return []Intent{
			{Type: IntentOneCardDecide, Seat: seat, Choice: ChoiceKeep},
			{Type: IntentOneCardDecide, Seat: seat, Choice: ChoiceDecline},
		}
	case PhaseGameplay, PhaseMinigame:
		var out []Intent
		for _, c := range g.LegalPlays() {
			out = append(out, Intent{Type: IntentPlayCards, Seat: seat, Cards: c})
		}
		return out
	case PhaseMinigameSwap:
		return yesNo(IntentMinigameSwap)
	}
	return nil
}
