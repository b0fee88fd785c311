package bot

import (
	"sort"

	engine "github.com/peka01/gurch/engine"
)

// HandQuality scores a hand: 3 per card in every rank group of two or more,
// 2 per card valued 5 or less, 1.5 per card valued 11 or more, and -3 when
// no two cards share a rank. Higher is better.
func HandQuality(hand []engine.Card) float64 {
	if len(hand) == 0 {
		return 0
	}
	q := 0.0
	paired := false
	for _, n := range engine.RankGroups(hand) {
		if n >= 2 {
			q += 3 * float64(n)
			paired = true
		}
	}
	for _, c := range hand {
		switch v := c.Value(); {
		case v <= 5:
			q += 2
		case v >= 11:
			q += 1.5
		}
	}
	if !paired {
		q -= 3
	}
	return q
}

// WorstCards returns the n least valuable cards of hand. Each card is scored
// by the quality of the hand left without it, plus isolation if it has no
// rank-mate; the highest scores go first. Ties fall to the lower value, then
// the lower suit, so the result is deterministic.
func WorstCards(hand []engine.Card, n int, isolation float64) []engine.Card {
	if n <= 0 {
		return nil
	}
	if n > len(hand) {
		n = len(hand)
	}
	groups := engine.RankGroups(hand)

	type scored struct {
		card  engine.Card
		score float64
	}
	cands := make([]scored, len(hand))
	rest := make([]engine.Card, 0, len(hand))
	for i, c := range hand {
		rest = rest[:0]
		for j, o := range hand {
			if j != i {
				rest = append(rest, o)
			}
		}
		s := HandQuality(rest)
		if groups[c.Rank()] == 1 {
			s += isolation
		}
		cands[i] = scored{c, s}
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.card.Value() != b.card.Value() {
			return a.card.Value() < b.card.Value()
		}
		return a.card.Suit() < b.card.Suit()
	})

	out := make([]engine.Card, n)
	for i := range out {
		out[i] = cands[i].card
	}
	return out
}

// without returns hand minus the given cards.
func without(hand []engine.Card, drop ...engine.Card) []engine.Card {
	out := make([]engine.Card, 0, len(hand))
outer:
	for _, c := range hand {
		for _, d := range drop {
			if c == d {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}
