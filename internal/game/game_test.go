// internal/game/game_test.go
package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	engine "github.com/peka01/gurch/engine"
	"github.com/peka01/gurch/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []GameEvent{}
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events, ok := mb.playerEvents[playerID]
	if !ok || len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) countPlayerEvents(playerID uuid.UUID, eventType GameEventType) int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	n := 0
	for _, ev := range mb.playerEvents[playerID] {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func testTiming() Timing {
	return Timing{
		HumanTurn:       10 * time.Second,
		StallTimeout:    time.Minute,
		WatchdogTimeout: 5 * time.Minute,
		SettleDelay:     100 * time.Millisecond,
		BotThinkMin:     time.Second,
		BotThinkMax:     time.Second,
		RevealWindow:    500 * time.Millisecond,
	}
}

// setupTestGame seats numPlayers (a human at humanSeat unless it is -1),
// and deals from a fixed seed.
func setupTestGame(t *testing.T, numPlayers int, humanSeat int, timing Timing) (*GurchGame, []*models.Player, *mockBroadcaster, *ManualScheduler) {
	t.Helper()
	log, _ := test.NewNullLogger()
	sched := NewManualScheduler()
	g := NewGurchGame(log, sched)
	g.Timing = timing
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, numPlayers)
	for i := range players {
		name := "Bot" + string(rune('A'+i))
		if i == humanSeat {
			players[i] = models.NewHuman("You")
			players[i].Connected = true
		} else {
			players[i] = models.NewBot(name)
		}
		require.NoError(t, g.AddPlayer(players[i]))
	}
	require.NoError(t, g.Start(42))
	require.True(t, g.Started)
	return g, players, mb, sched
}

// takeCommand makes seat the commander and the acting seat of the opening decision.
func takeCommand(g *GurchGame, seat uint8) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.Engine.Phase = engine.PhaseFirstSwapDecision
	g.Engine.FirstToAct = seat
	g.Engine.RoundLeader = seat
	g.Engine.CurrentPlayer = seat
	g.TurnID++
	g.scheduleNext()
}

// runToEnd fires timers until the hand is over.
func runToEnd(t *testing.T, g *GurchGame, sched *ManualScheduler) {
	t.Helper()
	for i := 0; i < 2000 && !g.GameOver; i++ {
		if !sched.RunNext() {
			break
		}
	}
	require.True(t, g.GameOver, "hand did not finish; stuck in %s", g.Engine.Phase)
}

func TestStartDealsAndSchedules(t *testing.T) {
	g, players, mb, sched := setupTestGame(t, 4, 0, testTiming())

	assert.Equal(t, 1, g.HandNumber)
	assert.Equal(t, engine.PhaseFirstSwapDecision, g.Engine.Phase)
	assert.Equal(t, int8(0), g.Engine.Rules.HumanSeat)
	for s := uint8(0); s < 4; s++ {
		assert.Equal(t, uint8(engine.MaxHandSize), g.Engine.HandLen(s))
	}
	require.NotNil(t, mb.findEventByType(EventGameStart))
	phase := mb.findEventByType(EventGamePhase)
	require.NotNil(t, phase)
	assert.Equal(t, "FIRST_SWAP_DECISION", phase.Payload["to"])
	require.NotNil(t, mb.findEventByType(EventGameLog), "commander line expected")

	snap := mb.getLastPlayerEvent(players[0].ID)
	require.NotNil(t, snap)
	assert.Equal(t, EventPrivateSyncState, snap.Type)
	assert.Greater(t, sched.Pending(), 0, "a turn timer should be armed")

	assert.Error(t, g.Start(1), "second Start must fail")
}

func TestAddPlayerLimits(t *testing.T) {
	log, _ := test.NewNullLogger()
	g := NewGurchGame(log, NewManualScheduler())
	require.NoError(t, g.AddPlayer(models.NewHuman("You")))
	assert.Error(t, g.AddPlayer(models.NewHuman("Me")), "one human per table")
	for i := 0; i < 3; i++ {
		require.NoError(t, g.AddPlayer(models.NewBot("bot")))
	}
	assert.Error(t, g.AddPlayer(models.NewBot("fifth")))

	short := NewGurchGame(log, NewManualScheduler())
	require.NoError(t, short.AddPlayer(models.NewBot("a")))
	require.NoError(t, short.AddPlayer(models.NewBot("b")))
	assert.Error(t, short.Start(1), "two seats cannot play")
}

func TestBotsPlayOutHand(t *testing.T) {
	g, players, mb, sched := setupTestGame(t, 3, -1, testTiming())

	var endLoser uuid.UUID
	var endScores map[uuid.UUID]int
	g.OnGameEnd = func(_ uuid.UUID, loser uuid.UUID, scores map[uuid.UUID]int) {
		endLoser, endScores = loser, scores
	}
	runToEnd(t, g, sched)

	assert.Equal(t, engine.PhaseGameOver, g.Engine.Phase)
	require.NotNil(t, endScores, "OnGameEnd not called")
	require.NotEqual(t, uuid.Nil, endLoser)

	scored := 0
	for _, p := range players {
		if endScores[p.ID] > 0 {
			scored++
			assert.Equal(t, endLoser, p.ID)
		}
		assert.Equal(t, endScores[p.ID], g.Totals[p.ID])
	}
	assert.Equal(t, 1, scored, "exactly one seat pays")

	end := mb.findEventByType(EventGameEnd)
	require.NotNil(t, end)
	assert.Equal(t, endLoser, end.User.ID)
	assert.Equal(t, 0, sched.Pending(), "timers stop at GAME_OVER")
}

func TestNextHandRotatesDealerAndKeepsTotals(t *testing.T) {
	g, _, _, sched := setupTestGame(t, 3, -1, testTiming())
	assert.Error(t, g.NextHand(1), "hand still running")
	runToEnd(t, g, sched)

	dealer := g.Engine.Dealer
	before := make(map[uuid.UUID]int)
	for id, s := range g.Totals {
		before[id] = s
	}
	require.NoError(t, g.NextHand(7))
	assert.Equal(t, 2, g.HandNumber)
	assert.Equal(t, (dealer+1)%3, g.Engine.Dealer)
	assert.False(t, g.GameOver)
	assert.Equal(t, before, g.Totals)

	runToEnd(t, g, sched)
	sum := 0
	for _, s := range g.Totals {
		sum += s
	}
	assert.Greater(t, sum, 0)
}

func TestHumanActionAccepted(t *testing.T) {
	g, players, mb, _ := setupTestGame(t, 4, 0, testTiming())
	takeCommand(g, 0)
	turn := g.TurnID

	g.Mu.Lock()
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_swap_decision",
		Payload:    map[string]interface{}{"accept": false},
	})
	g.Mu.Unlock()

	assert.Equal(t, engine.PhaseGameplay, g.Engine.Phase, "commander standing pat starts play")
	assert.Equal(t, turn+1, g.TurnID)
	assert.True(t, g.Engine.Players[0].StoodPat)

	found := false
	mb.mu.Lock()
	for _, ev := range mb.allEvents {
		if ev.Type == EventGameLog && ev.Payload["text"] == "You stands pat" {
			found = true
		}
	}
	mb.mu.Unlock()
	assert.True(t, found, "log line carries the seat name")
}

func TestHandlePlayerActionRejects(t *testing.T) {
	g, players, mb, _ := setupTestGame(t, 4, 0, testTiming())
	takeCommand(g, 1)
	human := players[0].ID

	tests := []struct {
		name   string
		action models.GameAction
		want   string
	}{
		{"not your turn", models.GameAction{ActionType: "action_swap_decision", Payload: map[string]interface{}{"accept": true}}, "not your turn"},
		{"unknown action", models.GameAction{ActionType: "action_snap"}, "unknown action"},
		{"continue is internal", models.GameAction{ActionType: "action_continue"}, "unknown action"},
		{"bad payload", models.GameAction{ActionType: "action_vote", Payload: map[string]interface{}{"amount": "three"}}, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := g.TurnID
			g.Mu.Lock()
			g.HandlePlayerAction(human, tt.action)
			g.Mu.Unlock()

			ev := mb.getLastPlayerEvent(human)
			require.NotNil(t, ev)
			assert.Equal(t, EventPrivateError, ev.Type)
			assert.Contains(t, ev.Payload["message"], tt.want)
			assert.Equal(t, turn, g.TurnID, "rejected intents leave the state alone")
		})
	}
}

func TestDuplicateIntentIsSilent(t *testing.T) {
	g, players, mb, _ := setupTestGame(t, 4, 0, testTiming())
	takeCommand(g, 0)
	human := players[0].ID
	standPat := models.GameAction{ActionType: "action_swap_decision", Payload: map[string]interface{}{"accept": false}}

	g.Mu.Lock()
	g.HandlePlayerAction(human, standPat)
	turn := g.TurnID
	g.HandlePlayerAction(human, standPat)
	g.Mu.Unlock()

	assert.Equal(t, turn, g.TurnID)
	assert.Zero(t, mb.countPlayerEvents(human, EventPrivateError), "duplicates are not reported to the player")
}

func TestHumanTimeoutStandsPat(t *testing.T) {
	g, players, mb, sched := setupTestGame(t, 4, 0, testTiming())
	takeCommand(g, 0)

	sched.Advance(9 * time.Second)
	assert.Equal(t, engine.PhaseFirstSwapDecision, g.Engine.Phase, "countdown still running")

	sched.Advance(time.Second)
	assert.Equal(t, engine.PhaseGameplay, g.Engine.Phase)
	assert.True(t, g.Engine.Players[0].StoodPat)
	assert.Equal(t, 1, mb.countPlayerEvents(players[0].ID, EventPrivateTimeout))
}

func TestStaleTimerIgnored(t *testing.T) {
	g, players, mb, sched := setupTestGame(t, 4, 0, testTiming())
	takeCommand(g, 0)
	sched.Advance(5 * time.Second)

	g.Mu.Lock()
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_swap_decision",
		Payload:    map[string]interface{}{"accept": true},
	})
	g.Mu.Unlock()
	require.Equal(t, engine.PhaseFirstSwapAction, g.Engine.Phase)

	sched.Advance(5 * time.Second)
	assert.Zero(t, mb.countPlayerEvents(players[0].ID, EventPrivateTimeout), "old countdown must not fire")
	assert.Equal(t, engine.PhaseFirstSwapAction, g.Engine.Phase)

	// The new countdown swaps the single worst card.
	sched.Advance(5 * time.Second)
	assert.Equal(t, 1, mb.countPlayerEvents(players[0].ID, EventPrivateTimeout))
	assert.True(t, g.Engine.Players[0].HasSwapped)
	assert.Equal(t, uint8(1), g.Engine.SwapAmount)
}

func TestHumanVoteTimeoutAbstains(t *testing.T) {
	g, players, mb, sched := setupTestGame(t, 4, 0, testTiming())

	g.Mu.Lock()
	e := &g.Engine
	e.Phase = engine.PhaseVoteSwap
	e.FirstToAct = 0
	e.CurrentPlayer = 0
	for s := uint8(0); s < 4; s++ {
		e.Players[s].WantsToVote = engine.DecisionNo
	}
	e.Players[0].WantsToVote = engine.DecisionYes
	e.Players[2].WantsToVote = engine.DecisionYes
	g.TurnID++
	g.scheduleNext()
	g.Mu.Unlock()

	sched.Advance(10 * time.Second)
	assert.True(t, g.Engine.Players[0].HasVoted)
	assert.Equal(t, uint8(0), g.Engine.Players[0].SwapVote, "timeout abstains")
	assert.Equal(t, uint8(2), g.Engine.CurrentPlayer)
	assert.Equal(t, 1, mb.countPlayerEvents(players[0].ID, EventPrivateTimeout))
}

func TestStallAutoDecidesBlockingSeat(t *testing.T) {
	timing := testTiming()
	timing.HumanTurn = 0
	timing.StallTimeout = 5 * time.Second
	g, _, _, sched := setupTestGame(t, 4, 0, timing)
	takeCommand(g, 0)

	sched.Advance(4 * time.Second)
	assert.False(t, g.Engine.Players[0].FirstSwapDecided)

	sched.Advance(time.Second)
	assert.True(t, g.Engine.Players[0].FirstSwapDecided, "stall decides for the human seat")
}

func TestWatchdogForcesGameplay(t *testing.T) {
	timing := testTiming()
	timing.HumanTurn = 0
	timing.StallTimeout = 0
	timing.WatchdogTimeout = 30 * time.Second
	g, _, mb, sched := setupTestGame(t, 4, 0, timing)
	takeCommand(g, 0)

	sched.Advance(29 * time.Second)
	assert.Equal(t, engine.PhaseFirstSwapDecision, g.Engine.Phase)

	sched.Advance(time.Second)
	assert.Equal(t, engine.PhaseGameplay, g.Engine.Phase)
	phase := mb.findEventByType(EventGamePhase)
	require.NotNil(t, phase)
	assert.Equal(t, "GAMEPLAY", phase.Payload["to"])
}

func TestSnapshotHidesOtherHands(t *testing.T) {
	g, players, _, _ := setupTestGame(t, 4, 0, testTiming())

	g.Mu.Lock()
	obf := g.GetCurrentObfuscatedGameState(players[0].ID)
	g.Mu.Unlock()

	assert.Equal(t, engine.PhaseFirstSwapDecision, obf.Phase)
	assert.Equal(t, g.ID, obf.GameID)
	require.Len(t, obf.Players, 4)
	assert.Len(t, obf.Players[0].Hand, engine.MaxHandSize)
	for _, p := range obf.Players[1:] {
		assert.Nil(t, p.Hand, "seat %d hand leaked", p.Seat)
		assert.Equal(t, engine.MaxHandSize, p.HandSize)
		require.NotNil(t, p.FaceUp, "face-up card is public")
	}
	commanders := 0
	for _, p := range obf.Players {
		if p.IsCommander {
			commanders++
		}
	}
	assert.Equal(t, 1, commanders)
	assert.NotEmpty(t, obf.Log)
	assert.Equal(t, g.Players[g.Engine.FirstToAct].ID, obf.CurrentPlayerID)
}

func TestSnapshotRevealsHandsAtGameOver(t *testing.T) {
	g, players, _, sched := setupTestGame(t, 3, -1, testTiming())
	runToEnd(t, g, sched)

	g.Mu.Lock()
	obf := g.GetCurrentObfuscatedGameState(players[0].ID)
	g.Mu.Unlock()

	assert.True(t, obf.GameOver)
	assert.NotEqual(t, uuid.Nil, obf.LoserID)
	assert.Equal(t, uuid.Nil, obf.CurrentPlayerID)
	for _, p := range obf.Players {
		assert.Len(t, p.Hand, p.HandSize)
	}
}

func TestReconnectSendsSync(t *testing.T) {
	g, players, mb, _ := setupTestGame(t, 4, 0, testTiming())
	human := players[0].ID

	g.Mu.Lock()
	g.HandleDisconnect(human)
	g.Mu.Unlock()
	assert.False(t, players[0].Connected)

	mb.clear()
	g.Mu.Lock()
	g.HandleReconnect(human)
	g.Mu.Unlock()

	assert.True(t, players[0].Connected)
	ev := mb.getLastPlayerEvent(human)
	require.NotNil(t, ev)
	assert.Equal(t, EventPrivateSyncState, ev.Type)
	require.NotNil(t, ev.State)
	assert.Len(t, ev.State.Players[0].Hand, engine.MaxHandSize)
}

type upperFlavor struct{}

func (upperFlavor) Flavor(_ context.Context, line string) string { return strings.ToUpper(line) }

func TestFlavorLinesArriveAsync(t *testing.T) {
	log, _ := test.NewNullLogger()
	g := NewGurchGame(log, NewManualScheduler())
	g.Timing = testTiming()
	g.Flavor = upperFlavor{}
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	for _, name := range []string{"Ada", "Bo", "Cy"} {
		require.NoError(t, g.AddPlayer(models.NewBot(name)))
	}
	require.NoError(t, g.Start(3))

	assert.Eventually(t, func() bool {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		for _, ev := range mb.allEvents {
			if ev.Type == EventGameFlavor && strings.Contains(ev.Payload["text"].(string), "IS THE COMMANDER") {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
	g.Close()
}
