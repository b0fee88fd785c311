// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/peka01/gurch/engine"
	"github.com/peka01/gurch/engine/bot"
	"github.com/peka01/gurch/internal/cache"
	"github.com/peka01/gurch/internal/models"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc is called once a hand reaches GAME_OVER, with the seat that
// took the points (uuid.Nil if nobody did) and the points of this hand.
type OnGameEndFunc func(gameID uuid.UUID, loser uuid.UUID, scores map[uuid.UUID]int)

// GameEventType represents the type of a game event pushed to clients.
type GameEventType string

const (
	EventGameStart        GameEventType = "game_start"         // Public: a hand was dealt.
	EventGamePhase        GameEventType = "game_phase"         // Public: the engine changed phase.
	EventGamePlayerTurn   GameEventType = "game_player_turn"   // Public: a seat is up, with its countdown if human.
	EventGameLog          GameEventType = "game_log"           // Public: one line of the table log.
	EventGameFlavor       GameEventType = "game_flavor"        // Public: a styled rewrite of an earlier log line.
	EventGameEnd          GameEventType = "game_end"           // Public: the hand is scored.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: full snapshot for one viewer.
	EventPrivateError     GameEventType = "private_error"      // Private: an intent was rejected.
	EventPrivateTimeout   GameEventType = "private_timeout"    // Private: the countdown ran out and a default was applied.
)

// EventUser identifies a seat within a GameEvent.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Seat int       `json:"seat"`
}

// GameEvent is the envelope for everything the game pushes to clients.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// Flavorer restyles a log line. It must return the line unchanged on failure.
type Flavorer interface {
	Flavor(ctx context.Context, line string) string
}

// Timing holds the orchestrator's delays. A zero duration disables the
// corresponding timer, except the bot and settle delays which then fire at once.
type Timing struct {
	HumanTurn       time.Duration // countdown before the human seat gets the conservative default
	StallTimeout    time.Duration // no progress for this long auto-decides the blocking seat
	WatchdogTimeout time.Duration // negotiation lasting longer jumps straight to GAMEPLAY
	SettleDelay     time.Duration // pause on a closed trick before the next one
	BotThinkMin     time.Duration
	BotThinkMax     time.Duration
	RevealWindow    time.Duration // how long a bot lets the revealed card show before deciding
}

// DefaultTiming returns the delays used at the table.
func DefaultTiming() Timing {
	return Timing{
		HumanTurn:       30 * time.Second,
		StallTimeout:    45 * time.Second,
		WatchdogTimeout: 3 * time.Minute,
		SettleDelay:     2 * time.Second,
		BotThinkMin:     1500 * time.Millisecond,
		BotThinkMax:     2 * time.Second,
		RevealWindow:    1500 * time.Millisecond,
	}
}

// GurchGame drives one table: it owns the engine state, feeds it intents from
// the human seat and the bots, and runs every timer.
type GurchGame struct {
	ID uuid.UUID

	Players []*models.Player // Seat i is Players[i].
	Rules   engine.HouseRules
	Timing  Timing
	Tuning  bot.Tuning

	Engine     engine.GameState  // Authoritative state; replaced wholesale on every accepted intent.
	Totals     map[uuid.UUID]int // Points across every hand played at this table.
	HandNumber int

	TurnID   int // Bumped on every accepted intent; timers armed under an older value are stale.
	Started  bool
	GameOver bool

	Sched  Scheduler
	Log    logrus.FieldLogger
	Flavor Flavorer // Optional.

	turnTimer   Timer
	stallTimer  Timer
	watchdog    Timer
	actionIndex int
	logSeq      uint32
	lastPhase   engine.Phase
	rng         *rand.Rand

	Mu sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewGurchGame creates an empty table. A nil scheduler uses the wall clock.
func NewGurchGame(log logrus.FieldLogger, sched Scheduler) *GurchGame {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if sched == nil {
		sched = RealScheduler{}
	}
	id := uuid.New()
	return &GurchGame{
		ID:     id,
		Rules:  engine.DefaultHouseRules(),
		Timing: DefaultTiming(),
		Tuning: bot.DefaultTuning(),
		Totals: make(map[uuid.UUID]int),
		Sched:  sched,
		Log:    log.WithField("game", id.String()[:8]),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddPlayer seats p at the next free seat. Only allowed before the first deal.
// Assumes lock is held by caller.
func (g *GurchGame) AddPlayer(p *models.Player) error {
	if g.Started {
		return errors.New("table already playing")
	}
	if len(g.Players) >= engine.MaxPlayers {
		return fmt.Errorf("table is full (%d seats)", engine.MaxPlayers)
	}
	if p.IsHuman {
		for _, o := range g.Players {
			if o.IsHuman {
				return errors.New("table already has a human seat")
			}
		}
	}
	g.Players = append(g.Players, p)
	g.Totals[p.ID] = 0
	g.Log.WithFields(logrus.Fields{"seat": len(g.Players) - 1, "player": p.String()}).Debug("player seated")
	return nil
}

// Start deals the first hand. A zero seed picks one from the clock.
func (g *GurchGame) Start(seed uint64) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Started {
		return errors.New("table already playing")
	}
	return g.startHand(seed)
}

// NextHand deals a new hand after GAME_OVER with the deal passed to the left.
// Scores carry over in Totals.
func (g *GurchGame) NextHand(seed uint64) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if !g.GameOver {
		return errors.New("hand still in progress")
	}
	g.Rules.Dealer = g.Engine.NextSeat(g.Engine.Dealer)
	return g.startHand(seed)
}

// startHand deals a hand and hands control to the scheduler.
// Assumes lock is held by caller.
func (g *GurchGame) startHand(seed uint64) error {
	n := len(g.Players)
	if n < engine.MinPlayers || n > engine.MaxPlayers {
		return fmt.Errorf("need %d-%d players, have %d", engine.MinPlayers, engine.MaxPlayers, n)
	}
	rules := g.Rules
	rules.NumPlayers = uint8(n)
	rules.HumanSeat = -1
	for i, p := range g.Players {
		if p.IsHuman {
			rules.HumanSeat = int8(i)
		}
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	eng := engine.NewGame(seed, rules)
	if err := eng.Deal(); err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	g.stopTimers()
	g.Engine = eng
	g.Started, g.GameOver = true, false
	g.HandNumber++
	g.TurnID++
	g.logSeq = 0
	g.lastPhase = engine.PhaseDealing

	dealer := g.Players[eng.Dealer]
	commander := g.Players[eng.FirstToAct]
	g.Log.WithFields(logrus.Fields{
		"hand":      g.HandNumber,
		"seed":      seed,
		"dealer":    dealer.Name,
		"commander": commander.Name,
	}).Info("hand dealt")
	g.logAction(uuid.Nil, "hand_start", map[string]interface{}{
		"hand":      g.HandNumber,
		"seed":      seed,
		"dealer":    int(eng.Dealer),
		"commander": int(eng.FirstToAct),
	})
	g.fireEvent(GameEvent{
		Type: EventGameStart,
		User: g.eventUser(eng.FirstToAct),
		Payload: map[string]interface{}{
			"hand":   g.HandNumber,
			"dealer": dealer.ID,
		},
	})
	g.afterStep()
	return nil
}

// Close stops every timer. The table accepts no further intents.
func (g *GurchGame) Close() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.stopTimers()
	g.Started = false
}

// HandlePlayerAction parses a client action and feeds it to the engine.
// Assumes lock is held by caller.
func (g *GurchGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	seat, ok := g.seatOf(playerID)
	if !ok {
		g.Log.WithField("player", playerID).Warn("action from unknown player ignored")
		return
	}
	if !g.Started || g.GameOver {
		g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateError, Payload: map[string]interface{}{
			"message": "No hand is in progress.",
		}})
		return
	}
	in, err := parseAction(seat, action)
	if err != nil {
		g.Log.WithError(err).WithField("action", action.ActionType).Debug("unparseable action")
		g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateError, Payload: map[string]interface{}{
			"message": err.Error(),
			"action":  action.ActionType,
		}})
		return
	}
	g.submit(in, "player")
}

// submit steps the engine with in and commits the result. It reports whether
// the intent was accepted. Assumes lock is held by caller.
func (g *GurchGame) submit(in engine.Intent, source string) bool {
	next, err := engine.Step(g.Engine, in)
	if err != nil {
		g.reject(in, source, err)
		return false
	}
	actor := uuid.Nil
	if in.Type != engine.IntentContinue {
		actor = g.Players[in.Seat].ID
	}
	g.commit(next, actor, in.Type.String(), intentPayload(in, source))
	return true
}

// reject logs a refused intent by kind and tells a human seat what went wrong.
func (g *GurchGame) reject(in engine.Intent, source string, err error) {
	entry := g.Log.WithFields(logrus.Fields{
		"phase":  g.Engine.Phase.String(),
		"seat":   in.Seat,
		"intent": in.Type.String(),
		"source": source,
	})
	switch {
	case errors.Is(err, engine.ErrDuplicateIntent):
		entry.Debug("duplicate intent ignored")
		return
	case errors.Is(err, engine.ErrInvalidTransition):
		entry.WithError(err).Warn("invalid phase transition ignored")
	default:
		entry.WithError(err).Info("intent rejected")
	}
	if in.Type == engine.IntentContinue || int(in.Seat) >= len(g.Players) {
		return
	}
	if p := g.Players[in.Seat]; p.IsHuman {
		g.fireEventToPlayer(p.ID, GameEvent{Type: EventPrivateError, Payload: map[string]interface{}{
			"message": err.Error(),
			"action":  "action_" + in.Type.String(),
		}})
	}
}

// commit installs next as the authoritative state.
func (g *GurchGame) commit(next engine.GameState, actor uuid.UUID, action string, payload map[string]interface{}) {
	g.Engine = next
	g.TurnID++
	g.logAction(actor, action, payload)
	g.afterStep()
}

// afterStep publishes what the last step changed and arms the next timers.
// Assumes lock is held by caller.
func (g *GurchGame) afterStep() {
	for _, e := range g.Engine.LogSince(g.logSeq) {
		g.logSeq = e.Seq
		g.publishLine(e)
	}
	if phase := g.Engine.Phase; phase != g.lastPhase {
		g.Log.WithFields(logrus.Fields{"from": g.lastPhase.String(), "to": phase.String(), "turn": g.TurnID}).Debug("phase change")
		g.fireEvent(GameEvent{Type: EventGamePhase, Payload: map[string]interface{}{
			"from": g.lastPhase.String(),
			"to":   phase.String(),
		}})
		g.lastPhase = phase
	}
	if g.Engine.IsTerminal() {
		g.EndGame()
		return
	}
	g.broadcastSyncStateToAll()
	g.scheduleNext()
}

// publishLine pushes one table log line and, if configured, its styled rewrite.
func (g *GurchGame) publishLine(e engine.LogEntry) {
	text := g.lineText(e)
	ev := GameEvent{Type: EventGameLog, Payload: map[string]interface{}{"seq": e.Seq, "text": text}}
	if e.Seat >= 0 {
		ev.User = g.eventUser(uint8(e.Seat))
	}
	g.fireEvent(ev)
	if g.Flavor != nil {
		go g.flavorLine(e.Seq, text)
	}
}

// flavorLine runs off the lock; only the final broadcast takes it.
func (g *GurchGame) flavorLine(seq uint32, text string) {
	styled := g.Flavor.Flavor(context.Background(), text)
	if styled == text {
		return
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.fireEvent(GameEvent{Type: EventGameFlavor, Payload: map[string]interface{}{"seq": seq, "text": styled}})
}

func (g *GurchGame) lineText(e engine.LogEntry) string {
	if e.Seat >= 0 && int(e.Seat) < len(g.Players) {
		return g.Players[e.Seat].Name + " " + e.Text
	}
	return e.Text
}

// ---------------------------------------------------------------------------
// Timers
// ---------------------------------------------------------------------------

// scheduleNext arms the timer that moves the hand forward from its current
// phase: the settle delay, a bot's think time or the human countdown.
// Assumes lock is held by caller.
func (g *GurchGame) scheduleNext() {
	stopTimer(&g.turnTimer)
	g.armStall()
	g.syncWatchdog()

	if g.Engine.Phase == engine.PhaseRoundOver {
		g.turnTimer = g.after(g.Timing.SettleDelay, func() {
			g.submit(engine.Intent{Type: engine.IntentContinue}, "settle")
		})
		return
	}
	acting := g.Engine.ActingPlayer()
	if acting < 0 {
		return
	}
	seat := uint8(acting)
	p := g.Players[seat]

	if p.IsHuman {
		g.broadcastPlayerTurn(seat, g.Timing.HumanTurn)
		if g.Timing.HumanTurn > 0 {
			g.turnTimer = g.after(g.Timing.HumanTurn, func() { g.humanTimeout(seat) })
		}
		return
	}
	g.broadcastPlayerTurn(seat, 0)
	delay := g.thinkDelay()
	if g.Engine.Phase == engine.PhaseFinalSwapOneCardRevealAndDecide {
		delay = g.Timing.RevealWindow
	}
	g.turnTimer = g.after(delay, func() { g.botTurn(seat) })
}

// after schedules fn under the lock, dropping it if any intent was accepted
// in the meantime.
func (g *GurchGame) after(d time.Duration, fn func()) Timer {
	turn := g.TurnID
	return g.Sched.AfterFunc(d, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if !g.Started || g.GameOver || g.TurnID != turn {
			return
		}
		fn()
	})
}

func (g *GurchGame) botTurn(seat uint8) {
	in, err := g.Tuning.Decide(&g.Engine, seat)
	if err != nil {
		g.Log.WithError(err).WithField("seat", seat).Warn("bot could not decide")
		return
	}
	g.submit(in, "bot")
}

// humanTimeout applies the conservative default for the human seat. In the
// vote itself that means abstaining.
func (g *GurchGame) humanTimeout(seat uint8) {
	p := g.Players[seat]
	phase := g.Engine.Phase
	g.Log.WithFields(logrus.Fields{"seat": seat, "phase": phase.String()}).Info("turn timed out, applying default")
	g.fireEventToPlayer(p.ID, GameEvent{Type: EventPrivateTimeout, Payload: map[string]interface{}{
		"phase": phase.String(),
	}})
	if phase == engine.PhaseVoteSwap {
		g.abstain(seat, "timeout")
		return
	}
	in, err := bot.Conservative(&g.Engine, seat)
	if err != nil {
		g.Log.WithError(err).Warn("no conservative default")
		return
	}
	g.submit(in, "timeout")
}

func (g *GurchGame) abstain(seat uint8, source string) bool {
	next := g.Engine
	if err := next.Abstain(seat); err != nil {
		g.reject(engine.Intent{Type: engine.IntentVote, Seat: seat}, source, err)
		return false
	}
	g.commit(next, g.Players[seat].ID, "abstain", map[string]interface{}{"seat": int(seat), "source": source})
	return true
}

// armStall restarts the progress timer. When it fires, the blocking seat is
// decided by the bot heuristic whoever sits there.
func (g *GurchGame) armStall() {
	stopTimer(&g.stallTimer)
	if g.Timing.StallTimeout <= 0 {
		return
	}
	g.stallTimer = g.after(g.Timing.StallTimeout, g.resolveStall)
}

func (g *GurchGame) resolveStall() {
	entry := g.Log.WithFields(logrus.Fields{"phase": g.Engine.Phase.String(), "turn": g.TurnID})
	if g.Engine.Phase == engine.PhaseRoundOver {
		entry.Warn("stalled on a closed trick, continuing")
		g.submit(engine.Intent{Type: engine.IntentContinue}, "stall")
		return
	}
	acting := g.Engine.ActingPlayer()
	if acting < 0 {
		return
	}
	seat := uint8(acting)
	entry.WithField("seat", seat).Warn("no progress, auto-deciding the blocking seat")

	if in, err := g.Tuning.Decide(&g.Engine, seat); err == nil && g.submit(in, "stall") {
		return
	}
	if g.Engine.Phase == engine.PhaseVoteSwap && g.abstain(seat, "stall") {
		return
	}
	if in, err := bot.Conservative(&g.Engine, seat); err == nil && g.submit(in, "stall") {
		return
	}
	entry.Error("stall could not be resolved")
	g.armStall()
}

// syncWatchdog runs the negotiation ceiling while the hand is before GAMEPLAY.
// It is keyed to the hand rather than the turn.
func (g *GurchGame) syncWatchdog() {
	if !g.Engine.Phase.IsPreGameplay() {
		stopTimer(&g.watchdog)
		return
	}
	if g.watchdog != nil || g.Timing.WatchdogTimeout <= 0 {
		return
	}
	hand := g.HandNumber
	g.watchdog = g.Sched.AfterFunc(g.Timing.WatchdogTimeout, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.HandNumber != hand {
			return
		}
		g.watchdog = nil
		if !g.Started || g.GameOver || !g.Engine.Phase.IsPreGameplay() {
			return
		}
		g.forceGameplay()
	})
}

func (g *GurchGame) forceGameplay() {
	next := g.Engine
	if err := next.ForceGameplay(); err != nil {
		g.Log.WithError(err).Warn("watchdog could not force gameplay")
		return
	}
	g.Log.WithField("phase", g.Engine.Phase.String()).Warn("negotiation ran past the watchdog, forcing gameplay")
	g.commit(next, uuid.Nil, "force_gameplay", nil)
}

func (g *GurchGame) thinkDelay() time.Duration {
	span := g.Timing.BotThinkMax - g.Timing.BotThinkMin
	if span <= 0 {
		return g.Timing.BotThinkMin
	}
	return g.Timing.BotThinkMin + time.Duration(g.rng.Int63n(int64(span)+1))
}

func (g *GurchGame) stopTimers() {
	stopTimer(&g.turnTimer)
	stopTimer(&g.stallTimer)
	stopTimer(&g.watchdog)
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// ---------------------------------------------------------------------------
// Connection state
// ---------------------------------------------------------------------------

// HandleDisconnect marks a player as disconnected. The hand keeps running;
// the countdown decides for them.
// Assumes lock is held by caller.
func (g *GurchGame) HandleDisconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		g.Log.WithField("player", playerID).Warn("disconnect from unknown player")
		return
	}
	if !p.Connected {
		return
	}
	p.Connected = false
	g.Log.WithField("player", p.Name).Info("player disconnected")
	g.logAction(playerID, "player_disconnect", nil)
}

// HandleReconnect marks a player as connected, sends them the current state
// and restarts their countdown if they are up.
// Assumes lock is held by caller.
func (g *GurchGame) HandleReconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		g.Log.WithField("player", playerID).Warn("reconnect from unknown player")
		return
	}
	p.Connected = true
	g.Log.WithField("player", p.Name).Info("player connected")
	g.logAction(playerID, "player_reconnect", nil)
	g.sendSyncState(playerID)

	if !g.Started || g.GameOver {
		return
	}
	if seat, _ := g.seatOf(playerID); g.Engine.ActingPlayer() == int8(seat) {
		g.scheduleNext()
	}
}

// ---------------------------------------------------------------------------
// End of hand
// ---------------------------------------------------------------------------

// EndGame scores the finished hand, folds it into Totals and notifies listeners.
// Assumes lock is held by caller.
func (g *GurchGame) EndGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.stopTimers()

	scores := make(map[uuid.UUID]int, len(g.Players))
	byID := make(map[string]int, len(g.Players))
	totals := make(map[string]int, len(g.Players))
	for seat, p := range g.Players {
		s := g.Engine.Players[seat].Score
		scores[p.ID] = s
		g.Totals[p.ID] += s
		byID[p.ID.String()] = s
		totals[p.ID.String()] = g.Totals[p.ID]
	}
	loser := uuid.Nil
	var loserUser *EventUser
	if g.Engine.Loser >= 0 {
		loser = g.Players[g.Engine.Loser].ID
		loserUser = g.eventUser(uint8(g.Engine.Loser))
	}

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"loser":     loser,
		"scores":    byID,
		"tiedTotal": g.Engine.TiedTotal,
		"tricks":    int(g.Engine.TrickCount),
		"minigames": int(g.Engine.MinigameRounds),
	})
	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		User: loserUser,
		Payload: map[string]interface{}{
			"hand":      g.HandNumber,
			"scores":    byID,
			"totals":    totals,
			"points":    g.Engine.TiedTotal,
			"minigames": int(g.Engine.MinigameRounds),
		},
	})
	g.broadcastSyncStateToAll()

	entry := g.Log.WithFields(logrus.Fields{"hand": g.HandNumber, "points": g.Engine.TiedTotal, "steps": g.Engine.Steps})
	if loserUser != nil {
		entry = entry.WithField("loser", g.Players[loserUser.Seat].Name)
	}
	entry.Info("hand over")

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, loser, scores)
	}
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func (g *GurchGame) broadcastPlayerTurn(seat uint8, countdown time.Duration) {
	payload := map[string]interface{}{
		"turn":  g.TurnID,
		"phase": g.Engine.Phase.String(),
	}
	if countdown > 0 {
		payload["countdownMs"] = countdown.Milliseconds()
	}
	g.fireEvent(GameEvent{Type: EventGamePlayerTurn, User: g.eventUser(seat), Payload: payload})
}

// fireEvent broadcasts an event to every client.
// Assumes lock is held by caller.
func (g *GurchGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to one connected player.
// Assumes lock is held by caller.
func (g *GurchGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

func (g *GurchGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected human their own snapshot.
func (g *GurchGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.IsHuman && p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

func (g *GurchGame) eventUser(seat uint8) *EventUser {
	if int(seat) >= len(g.Players) {
		return nil
	}
	return &EventUser{ID: g.Players[seat].ID, Seat: int(seat)}
}

func (g *GurchGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *GurchGame) seatOf(playerID uuid.UUID) (uint8, bool) {
	for i, p := range g.Players {
		if p.ID == playerID {
			return uint8(i), true
		}
	}
	return 0, false
}

// logAction records an action in the Redis historian, if one is configured.
// Publishing happens off the lock with a 2s budget.
func (g *GurchGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if cache.Rdb == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.Log.WithError(err).WithFields(logrus.Fields{"index": rec.ActionIndex, "action": rec.ActionType}).Warn("historian publish failed")
		}
	}(record)
}
