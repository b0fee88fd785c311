package bot

import (
	"strings"
	"testing"

	engine "github.com/peka01/gurch/engine"
)

// cards parses a space-separated card list.
func cards(t *testing.T, s string) []engine.Card {
	t.Helper()
	var out []engine.Card
	for _, f := range strings.Fields(s) {
		c, err := engine.ParseCard(f)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", f, err)
		}
		out = append(out, c)
	}
	return out
}

func TestHandQuality(t *testing.T) {
	tests := []struct {
		hand string
		want float64
	}{
		{"K♠ K♦ 2♣ 3♥ 9♦", 13},
		{"2♣ 7♦ 9♥ J♠ A♣", 2},
		{"4♣ 4♦ 4♥ 8♠ 10♣", 15},
		{"6♣ 7♦ 8♥ 9♠ 10♣", -3},
		{"Q♣ Q♦ A♥ A♠ 5♣", 20},
		{"", 0},
	}
	for _, tt := range tests {
		if got := HandQuality(cards(t, tt.hand)); got != tt.want {
			t.Errorf("HandQuality(%s) = %v, want %v", tt.hand, got, tt.want)
		}
	}
}

func TestWorstCards(t *testing.T) {
	hand := cards(t, "K♠ K♦ 2♣ 9♦ 7♥")

	got := WorstCards(hand, 2, 1)
	want := cards(t, "7♥ 9♦")
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("WorstCards = %v, want %v", got, want)
	}

	full := WorstCards(hand, 9, 1)
	wantFull := cards(t, "7♥ 9♦ 2♣ K♦ K♠")
	if len(full) != len(wantFull) {
		t.Fatalf("len = %d, want %d", len(full), len(wantFull))
	}
	for i := range full {
		if full[i] != wantFull[i] {
			t.Errorf("order[%d] = %s, want %s", i, full[i], wantFull[i])
		}
	}

	if WorstCards(hand, 0, 1) != nil {
		t.Error("WorstCards(0) should be nil")
	}
}

func TestWorstCardsDeterministic(t *testing.T) {
	hand := cards(t, "6♣ 7♦ 8♥ 9♠ 10♣")
	first := WorstCards(hand, 3, 1)
	for i := 0; i < 20; i++ {
		again := WorstCards(hand, 3, 1)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs: %v vs %v", i, again, first)
			}
		}
	}
	// All removals score alike, so the lowest values go first.
	want := cards(t, "6♣ 7♦ 8♥")
	for i := range want {
		if first[i] != want[i] {
			t.Errorf("first[%d] = %s, want %s", i, first[i], want[i])
		}
	}
}

func TestVoteAmount(t *testing.T) {
	tu := DefaultTuning()
	tests := []struct {
		q    float64
		want uint8
	}{
		{-3, 4}, {3.5, 4}, {4, 3}, {6.5, 3}, {7, 2}, {9.5, 2}, {10, 1}, {20, 1},
	}
	for _, tt := range tests {
		if got := tu.VoteAmount(tt.q); got != tt.want {
			t.Errorf("VoteAmount(%v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}
