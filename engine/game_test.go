package engine

import (
	"errors"
	"testing"
)

// TestNewGameDeck verifies NewGame builds 52 unique cards.
func TestNewGameDeck(t *testing.T) {
	g := NewGame(42, DefaultHouseRules())

	if g.DeckLen != DeckSize {
		t.Fatalf("DeckLen = %d, want %d", g.DeckLen, DeckSize)
	}
	seen := make(map[Card]bool)
	for i := uint8(0); i < g.DeckLen; i++ {
		c := g.Deck[i]
		if !c.Valid() {
			t.Errorf("Deck[%d] = %v is not a valid card", i, c)
		}
		if seen[c] {
			t.Errorf("duplicate card %s at index %d", c, i)
		}
		seen[c] = true
	}
	if g.Phase != PhaseDealing {
		t.Errorf("Phase = %s, want DEALING", g.Phase)
	}
}

// TestNewGameSeedZero verifies that seed 0 is corrected to 1.
func TestNewGameSeedZero(t *testing.T) {
	g := NewGame(0, DefaultHouseRules())
	if g.RNG != 1 {
		t.Errorf("RNG = %d, want 1 for seed=0", g.RNG)
	}
}

func TestNewGameClampsPlayers(t *testing.T) {
	tests := []struct {
		in, want uint8
	}{
		{0, 4}, {2, 3}, {3, 3}, {4, 4}, {9, 4},
	}
	for _, tt := range tests {
		rules := DefaultHouseRules()
		rules.NumPlayers = tt.in
		g := NewGame(1, rules)
		if g.NumPlayers != tt.want {
			t.Errorf("NumPlayers(%d) = %d, want %d", tt.in, g.NumPlayers, tt.want)
		}
	}
}

func TestNewGameMarksSeats(t *testing.T) {
	rules := DefaultHouseRules()
	rules.Dealer = 2
	rules.HumanSeat = 1
	g := NewGame(1, rules)
	for s := uint8(0); s < g.NumPlayers; s++ {
		if got := g.Players[s].IsDealer; got != (s == 2) {
			t.Errorf("seat %d IsDealer = %v", s, got)
		}
		if got := g.Players[s].IsHuman; got != (s == 1) {
			t.Errorf("seat %d IsHuman = %v", s, got)
		}
	}
}

// TestDeal checks hand sizes, uniqueness and card conservation for both table sizes.
func TestDeal(t *testing.T) {
	for _, n := range []uint8{3, 4} {
		g := newDealtGame(t, n)

		seen := make(map[Card]bool)
		for s := uint8(0); s < n; s++ {
			p := &g.Players[s]
			if p.HandLen != MaxHandSize {
				t.Errorf("n=%d seat %d HandLen = %d, want %d", n, s, p.HandLen, MaxHandSize)
			}
			if p.indexOf(p.FaceUp) < 0 {
				t.Errorf("n=%d seat %d face-up %s not in hand", n, s, p.FaceUp)
			}
			for _, c := range p.HandSlice() {
				if seen[c] {
					t.Errorf("n=%d card %s dealt twice", n, c)
				}
				seen[c] = true
			}
		}
		if int(g.DeckLen) != DeckSize-int(n)*MaxHandSize {
			t.Errorf("n=%d DeckLen = %d", n, g.DeckLen)
		}
		if g.CardCount() != DeckSize {
			t.Errorf("n=%d CardCount = %d, want %d", n, g.CardCount(), DeckSize)
		}
		if g.Phase != PhaseFirstSwapDecision {
			t.Errorf("n=%d Phase = %s", n, g.Phase)
		}
		if g.CurrentPlayer != g.FirstToAct || g.RoundLeader != g.FirstToAct {
			t.Errorf("n=%d commander %d not seated as actor and leader", n, g.FirstToAct)
		}
	}
}

func TestDealTwice(t *testing.T) {
	g := newDealtGame(t, 4)
	if err := g.Deal(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second Deal err = %v, want ErrWrongPhase", err)
	}
}

// TestFindCommander checks the highest face-up card wins and the later-dealt seat takes ties.
func TestFindCommander(t *testing.T) {
	tests := []struct {
		name   string
		dealer uint8
		faceUp string
		want   uint8
	}{
		{"single highest", 0, "3♣ K♦ 9♥ 2♠", 1},
		{"tie goes to later dealt", 0, "5♣ Q♦ 4♥ Q♠", 3},
		{"dealer is dealt last", 3, "A♣ 4♦ 5♥ A♠", 3},
		{"dealer first in deal order", 1, "A♣ 4♦ A♥ 2♠", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultHouseRules()
			rules.Dealer = tt.dealer
			g := NewGame(1, rules)
			for s, c := range mustCards(t, tt.faceUp) {
				g.Players[s].FaceUp = c
			}
			if got := g.findCommander(); got != tt.want {
				t.Errorf("commander = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDrawReshufflesDiscard(t *testing.T) {
	g := newDealtGame(t, 4)
	var moved []Card
	for g.DeckLen > 0 {
		c := g.popDeck()
		g.discard(c)
		moved = append(moved, c)
	}

	c, err := g.draw()
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if g.DiscardLen != 0 {
		t.Errorf("DiscardLen = %d after reshuffle, want 0", g.DiscardLen)
	}
	if int(g.DeckLen) != len(moved)-1 {
		t.Errorf("DeckLen = %d, want %d", g.DeckLen, len(moved)-1)
	}
	g.discard(c)
	if g.CardCount() != DeckSize {
		t.Errorf("CardCount = %d, want %d", g.CardCount(), DeckSize)
	}
}

func TestDrawFromNothing(t *testing.T) {
	g := newDealtGame(t, 4)
	g.DeckLen = 0
	if _, err := g.draw(); !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("err = %v, want ErrInvalidIntent", err)
	}
}

func TestActingPlayer(t *testing.T) {
	g := NewGame(3, DefaultHouseRules())
	if got := g.ActingPlayer(); got != -1 {
		t.Errorf("ActingPlayer during DEALING = %d, want -1", got)
	}
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	if got := g.ActingPlayer(); got != int8(g.FirstToAct) {
		t.Errorf("ActingPlayer = %d, want %d", got, g.FirstToAct)
	}
}

// TestLogRing checks the rolling log keeps the newest LogSize lines in order.
func TestLogRing(t *testing.T) {
	var g GameState
	for i := 0; i < LogSize+5; i++ {
		g.logf(-1, "line %d", i)
	}
	entries := g.LogEntries()
	if len(entries) != LogSize {
		t.Fatalf("len = %d, want %d", len(entries), LogSize)
	}
	if entries[0].Text != "line 5" {
		t.Errorf("oldest = %q, want %q", entries[0].Text, "line 5")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Seq != entries[i-1].Seq+1 {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	if got := g.LogSince(g.LogSeq - 2); len(got) != 2 {
		t.Errorf("LogSince returned %d entries, want 2", len(got))
	}
}
