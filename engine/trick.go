package engine

import (
	"fmt"
	"sort"
)

// FollowRule is the mandatory-beat rule that binds a following seat.
type FollowRule uint8

const (
	// FollowMatch: the seat holds a same-rank set of at least k cards valued >= v.
	FollowMatch FollowRule = iota + 1
	// FollowSacrifice: no such set, but a single card valued >= v plus the k-1 lowest others.
	FollowSacrifice
	// FollowForced: nothing reaches v, so the k lowest cards go.
	FollowForced
)

var followRuleNames = [...]string{"", "match", "sacrifice", "forced"}

func (r FollowRule) String() string {
	if int(r) < len(followRuleNames) && r != 0 {
		return followRuleNames[r]
	}
	return fmt.Sprintf("FollowRule(%d)", r)
}

func sumValues(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}

func sameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Rank() != cards[0].Rank() {
			return false
		}
	}
	return true
}

// RankGroups counts the cards of each rank in hand.
func RankGroups(hand []Card) map[uint8]int {
	groups := make(map[uint8]int, len(hand))
	for _, c := range hand {
		groups[c.Rank()]++
	}
	return groups
}

// SortByValue returns a copy of cards ordered by value, then suit.
func SortByValue(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value() != out[j].Value() {
			return out[i].Value() < out[j].Value()
		}
		return out[i].Suit() < out[j].Suit()
	})
	return out
}

// Lowest returns the n lowest-valued cards of hand.
func Lowest(hand []Card, n int) []Card {
	sorted := SortByValue(hand)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func without(cards []Card, drop Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}

func sameValues(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := SortByValue(a), SortByValue(b)
	for i := range sa {
		if sa[i].Value() != sb[i].Value() {
			return false
		}
	}
	return true
}

// ValidateLead checks a leading play: any non-empty set sharing one rank.
func ValidateLead(cards []Card) error {
	if len(cards) == 0 {
		return fmt.Errorf("%w: a lead needs at least one card", ErrInvalidIntent)
	}
	if !sameRank(cards) {
		return fmt.Errorf("%w: a lead must share one rank", ErrInvalidIntent)
	}
	return nil
}

// ClassifyFollow derives which rule binds a seat holding hand against lead.
func ClassifyFollow(hand []Card, lead Play) FollowRule {
	k, v := int(lead.N), lead.SetValue()
	for rank, n := range RankGroups(hand) {
		if n >= k && int(rank) >= v {
			return FollowMatch
		}
	}
	for _, c := range hand {
		if c.Value() >= v {
			return FollowSacrifice
		}
	}
	return FollowForced
}

// ValidateFollow checks that cards is a legal answer to lead from hand. A play
// that would only be legal under a later rule is rejected.
func ValidateFollow(hand []Card, lead Play, cards []Card) error {
	k, v := int(lead.N), lead.SetValue()
	if len(cards) != k {
		return fmt.Errorf("%w: follow with exactly %d cards, got %d", ErrInvalidIntent, k, len(cards))
	}
	rest := hand
	for _, c := range cards {
		next := without(rest, c)
		if len(next) == len(rest) {
			return fmt.Errorf("%w: %s is not in hand", ErrInvalidIntent, c)
		}
		rest = next
	}
	switch ClassifyFollow(hand, lead) {
	case FollowMatch:
		if !sameRank(cards) || cards[0].Value() < v {
			return fmt.Errorf("%w: you hold a set that matches %d, play it", ErrInvalidIntent, v)
		}
		return nil
	case FollowSacrifice:
		for _, q := range cards {
			if q.Value() < v {
				continue
			}
			if sameValues(without(cards, q), Lowest(without(hand, q), k-1)) {
				return nil
			}
		}
		return fmt.Errorf("%w: play one card of at least %d plus your %d lowest", ErrInvalidIntent, v, k-1)
	default:
		if !sameValues(cards, Lowest(hand, k)) {
			return fmt.Errorf("%w: you cannot beat %d, play your %d lowest", ErrInvalidIntent, v, k)
		}
		return nil
	}
}

// beats reports whether a same-rank play outranks the current best of the trick.
func beats(p, best Play) bool {
	return p.N == best.N && p.SetValue() > best.SetValue()
}

// ---------------------------------------------------------------------------
// Trick flow
// ---------------------------------------------------------------------------

// startGameplay leaves negotiation and opens the first trick with the commander leading.
func (g *GameState) startGameplay() error {
	if err := g.transition(PhaseGameplay); err != nil {
		return err
	}
	g.RoundLeader = g.FirstToAct
	g.openTrick()
	g.logf(int8(g.RoundLeader), "leads the first trick")
	return nil
}

// openTrick clears the trick and hands the turn to RoundLeader.
func (g *GameState) openTrick() {
	g.Lead = Play{}
	g.LastPlayed = Play{}
	g.Trick = [MaxPlayers]Play{}
	g.TrickLen = 0
	g.RoundWinner = -1
	if s, ok := g.firstNeedingFrom(g.RoundLeader); ok {
		g.CurrentPlayer = s
	}
}

// playCards validates and applies a lead or follow, closing the trick when every
// active seat has played.
func (g *GameState) playCards(seat uint8, cards []Card) error {
	if err := g.validateSelection(seat, cards); err != nil {
		return err
	}
	p := &g.Players[seat]
	if g.TrickLen == 0 {
		if err := ValidateLead(cards); err != nil {
			return err
		}
	} else if err := ValidateFollow(p.HandSlice(), g.Lead, cards); err != nil {
		return err
	}

	for _, c := range cards {
		p.removeCard(c)
		p.Played[p.PlayedLen] = c
		p.PlayedLen++
	}
	play := NewPlay(seat, cards)
	g.Trick[g.TrickLen] = play
	g.TrickLen++
	if g.TrickLen == 1 {
		g.Lead = play
		g.LastPlayed = play
		g.logf(int8(seat), "leads %v", cards)
	} else if beats(play, g.LastPlayed) {
		g.LastPlayed = play
		g.logf(int8(seat), "beats with %v", cards)
	} else {
		g.logf(int8(seat), "plays %v", cards)
	}

	if g.advanceAfter(seat) {
		return nil
	}
	return g.closeTrick()
}

// closeTrick names the winner and either scores or waits for Continue.
func (g *GameState) closeTrick() error {
	g.RoundWinner = int8(g.LastPlayed.Seat)
	g.TrickCount++
	g.logf(g.RoundWinner, "takes the trick")

	if g.Phase == PhaseMinigame {
		return g.resolveMinigame()
	}
	if err := g.transition(PhaseRoundOver); err != nil {
		return err
	}
	if g.handsEmpty() {
		return g.finishHand()
	}
	return nil
}

// continueRound sweeps the settled trick and lets its winner lead the next one.
func (g *GameState) continueRound() error {
	if err := g.transition(PhaseGameplay); err != nil {
		return err
	}
	g.sweepPlayed()
	if g.RoundWinner >= 0 {
		g.RoundLeader = uint8(g.RoundWinner)
	}
	g.openTrick()
	return nil
}

func (g *GameState) sweepPlayed() {
	for s := uint8(0); s < g.NumPlayers; s++ {
		p := &g.Players[s]
		for i := uint8(0); i < p.PlayedLen; i++ {
			g.discard(p.Played[i])
			p.Played[i] = EmptyCard
		}
		p.PlayedLen = 0
	}
}

// handsEmpty reports whether any seat has run out of cards. Hands shrink in
// step, so in practice they all empty on the same trick.
func (g *GameState) handsEmpty() bool {
	for s := uint8(0); s < g.NumPlayers; s++ {
		if g.Players[s].HandLen == 0 {
			return true
		}
	}
	return false
}
