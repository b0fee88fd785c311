package engine

// HandTotals returns each seat's penalty total for the hand: the summed value
// of its contribution to the final trick, or its hand value plus
// NonParticipantPenalty if it contributed nothing.
func (g *GameState) HandTotals() [MaxPlayers]int {
	var totals [MaxPlayers]int
	for s := uint8(0); s < g.NumPlayers; s++ {
		p := &g.Players[s]
		if p.PlayedLen > 0 {
			totals[s] = sumValues(p.Played[:p.PlayedLen])
		} else {
			totals[s] = sumValues(p.Hand[:p.HandLen]) + g.Rules.NonParticipantPenalty
		}
	}
	return totals
}

// highest returns the top total among the seats in mask and the mask of seats sharing it.
func (g *GameState) highest(totals [MaxPlayers]int, mask uint8) (int, uint8) {
	best, tied := -1, uint8(0)
	for s := uint8(0); s < g.NumPlayers; s++ {
		if mask&(1<<s) == 0 {
			continue
		}
		switch {
		case totals[s] > best:
			best, tied = totals[s], 1<<s
		case totals[s] == best:
			tied |= 1 << s
		}
	}
	return best, tied
}

func (g *GameState) allSeats() uint8 { return uint8(1)<<g.NumPlayers - 1 }

// singleSeat returns the seat of a one-bit mask.
func singleSeat(mask uint8) (uint8, bool) {
	if mask == 0 || mask&(mask-1) != 0 {
		return 0, false
	}
	for s := uint8(0); s < MaxPlayers; s++ {
		if mask == 1<<s {
			return s, true
		}
	}
	return 0, false
}

// finishHand scores the hand once the last trick closes. A tie for the
// highest total goes to the minigame.
func (g *GameState) finishHand() error {
	totals := g.HandTotals()
	best, tied := g.highest(totals, g.allSeats())
	g.TiedTotal = best
	if s, ok := singleSeat(tied); ok {
		return g.charge(s)
	}
	g.logf(-1, "tie at %d, minigame", best)
	return g.startMinigame(tied)
}

// charge adds TiedTotal to seat's score and ends the game.
func (g *GameState) charge(seat uint8) error {
	if err := g.transition(PhaseGameOver); err != nil {
		return err
	}
	g.Loser = int8(seat)
	g.Players[seat].Score += g.TiedTotal
	g.logf(int8(seat), "takes %d points", g.TiedTotal)
	return nil
}

// startMinigame clears the table, deals MinigameHandSize cards to each seat in
// mask and opens the one-shot swap, starting from the first tied seat after
// the last trick's winner.
func (g *GameState) startMinigame(mask uint8) error {
	if g.Phase != PhaseMinigame {
		if err := g.transition(PhaseMinigame); err != nil {
			return err
		}
	}
	g.sweepPlayed()
	for s := uint8(0); s < g.NumPlayers; s++ {
		p := &g.Players[s]
		for p.HandLen > 0 {
			c := p.Hand[p.HandLen-1]
			p.removeCard(c)
			g.discard(c)
		}
		p.MinigameSwapDecided = false
	}
	g.Minigame = mask
	g.MinigameRounds++

	for i := 0; i < MinigameHandSize; i++ {
		for s := uint8(0); s < g.NumPlayers; s++ {
			if !g.InMinigame(s) {
				continue
			}
			c, err := g.draw()
			if err != nil {
				return err
			}
			g.Players[s].addCard(c)
		}
	}

	start := g.RoundLeader
	if g.RoundWinner >= 0 {
		start = uint8(g.RoundWinner)
	}
	for i := uint8(0); i < g.NumPlayers; i++ {
		s := (start + i) % g.NumPlayers
		if g.InMinigame(s) {
			g.RoundLeader = s
			break
		}
	}
	g.openTrick()

	ok, err := g.enter(PhaseMinigameSwap, g.RoundLeader)
	if err != nil {
		return err
	}
	if !ok {
		return g.transition(PhaseMinigame)
	}
	return nil
}

// minigameSwap takes or skips the one-shot swap of the whole minigame hand.
func (g *GameState) minigameSwap(seat uint8, accept bool) error {
	p := &g.Players[seat]
	if accept {
		if err := g.replaceCards(seat, p.HandSlice()); err != nil {
			return err
		}
		g.logf(int8(seat), "swaps the minigame hand")
	} else {
		g.logf(int8(seat), "keeps the minigame hand")
	}
	p.MinigameSwapDecided = true
	if g.advanceAfter(seat) {
		return nil
	}
	if err := g.transition(PhaseMinigame); err != nil {
		return err
	}
	g.openTrick()
	return nil
}

// resolveMinigame compares the mini-trick totals. The highest pays the
// original tied total; a repeat tie reruns until MaxMinigameRounds, after
// which the first tied seat from the leader pays.
func (g *GameState) resolveMinigame() error {
	totals := g.HandTotals()
	best, tied := g.highest(totals, g.Minigame)
	if s, ok := singleSeat(tied); ok {
		return g.charge(s)
	}
	if g.MinigameRounds >= g.Rules.MaxMinigameRounds {
		for i := uint8(0); i < g.NumPlayers; i++ {
			s := (g.RoundLeader + i) % g.NumPlayers
			if tied&(1<<s) != 0 {
				g.logf(-1, "minigame still tied at %d after %d rounds", best, g.MinigameRounds)
				return g.charge(s)
			}
		}
	}
	g.logf(-1, "minigame tied at %d, again", best)
	return g.startMinigame(tied)
}
