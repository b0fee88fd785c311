package bot

import (
	"testing"

	engine "github.com/peka01/gurch/engine"
)

type policy func(*engine.GameState, uint8) (engine.Intent, error)

// playOut runs an all-bot hand to GAME_OVER and returns the final state.
func playOut(t *testing.T, seed uint64, players uint8, decide policy) engine.GameState {
	t.Helper()
	rules := engine.DefaultHouseRules()
	rules.NumPlayers = players
	rules.HumanSeat = -1
	g := engine.NewGame(seed, rules)
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}

	const maxSteps = 300
	for step := 0; !g.IsTerminal(); step++ {
		if step >= maxSteps {
			t.Fatalf("seed %d: no GAME_OVER after %d steps, stuck in %s", seed, maxSteps, g.Phase)
		}
		seat := uint8(0)
		if a := g.ActingPlayer(); a >= 0 {
			seat = uint8(a)
		}
		in, err := decide(&g, seat)
		if err != nil {
			t.Fatalf("seed %d: decide in %s: %v", seed, g.Phase, err)
		}
		next, err := engine.Step(g, in)
		if err != nil {
			t.Fatalf("seed %d: %s rejected in %s: %v", seed, in, g.Phase, err)
		}
		g = next
		if g.CardCount() != engine.DeckSize {
			t.Fatalf("seed %d: CardCount = %d after %s", seed, g.CardCount(), in)
		}
	}
	return g
}

func assertOnePayer(t *testing.T, seed uint64, g engine.GameState) {
	t.Helper()
	scored := 0
	for s := uint8(0); s < g.NumPlayers; s++ {
		score := g.Players[s].Score
		if score < 0 {
			t.Errorf("seed %d: seat %d score %d", seed, s, score)
		}
		if score > 0 {
			scored++
			if int8(s) != g.Loser {
				t.Errorf("seed %d: seat %d scored but Loser = %d", seed, s, g.Loser)
			}
		}
	}
	if scored != 1 {
		t.Errorf("seed %d: %d seats scored, want exactly 1", seed, scored)
	}
}

// TestThreeBotsFinish plays a fixed-seed three-bot hand end to end.
func TestThreeBotsFinish(t *testing.T) {
	g := playOut(t, 20240917, 3, Decide)
	assertOnePayer(t, 20240917, g)
	if g.TrickCount == 0 {
		t.Error("game ended without a trick")
	}
}

func TestBotsFinishManySeeds(t *testing.T) {
	for seed := uint64(1); seed <= 60; seed++ {
		g := playOut(t, seed, uint8(3+seed%2), Decide)
		assertOnePayer(t, seed, g)
	}
}

func TestConservativeBotsFinish(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := playOut(t, seed, 3, Conservative)
		assertOnePayer(t, seed, g)
	}
}
