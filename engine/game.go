package engine

import "fmt"

// PlayerState holds one seat's cards and its per-round decision flags.
type PlayerState struct {
	Hand      [MaxHandSize]Card
	HandLen   uint8
	FaceUp    Card              // the face-up card dealt last; still part of Hand until played or swapped
	Played    [MaxHandSize]Card // contribution to the current trick
	PlayedLen uint8
	Score     int
	IsHuman   bool
	IsDealer  bool

	FirstSwapDecided    bool
	HasSwapped          bool
	StoodPat            bool
	WantsToVote         Decision
	SwapVote            uint8 // 0 = abstained or not voted
	HasVoted            bool
	FinalSwapDecision   Decision
	FinalSwapDone       bool
	MinigameSwapDecided bool
}

// HandSlice returns a copy of the seat's hand.
func (p *PlayerState) HandSlice() []Card {
	out := make([]Card, p.HandLen)
	copy(out, p.Hand[:p.HandLen])
	return out
}

// PlayedSlice returns a copy of the seat's contribution to the current trick.
func (p *PlayerState) PlayedSlice() []Card {
	out := make([]Card, p.PlayedLen)
	copy(out, p.Played[:p.PlayedLen])
	return out
}

func (p *PlayerState) indexOf(c Card) int {
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == c {
			return int(i)
		}
	}
	return -1
}

func (p *PlayerState) addCard(c Card) {
	p.Hand[p.HandLen] = c
	p.HandLen++
}

// removeCard removes c preserving hand order. Returns false if c is not held.
func (p *PlayerState) removeCard(c Card) bool {
	idx := p.indexOf(c)
	if idx < 0 {
		return false
	}
	copy(p.Hand[idx:p.HandLen-1], p.Hand[idx+1:p.HandLen])
	p.HandLen--
	p.Hand[p.HandLen] = EmptyCard
	if p.FaceUp == c {
		p.FaceUp = EmptyCard
	}
	return true
}

// resetRoundFlags clears all per-round decision flags.
func (p *PlayerState) resetRoundFlags() {
	p.FirstSwapDecided = false
	p.HasSwapped = false
	p.StoodPat = false
	p.WantsToVote = DecisionNone
	p.SwapVote = 0
	p.HasVoted = false
	p.FinalSwapDecision = DecisionNone
	p.FinalSwapDone = false
	p.MinigameSwapDecided = false
}

// GameState holds the complete, self-contained state of a Gurch hand.
// It is a flat value type (arrays only, no pointers or slices): assigning it
// copies everything, which is what makes Step a pure transition.
type GameState struct {
	Players    [MaxPlayers]PlayerState
	NumPlayers uint8

	Deck       [DeckSize]Card
	DeckLen    uint8
	Discard    [DeckSize]Card
	DiscardLen uint8

	Phase         Phase
	CurrentPlayer uint8
	RoundLeader   uint8
	FirstToAct    uint8 // the commander
	Dealer        uint8
	FirstSwapper  int8

	SwapAmount uint8
	VoteResult uint8

	Lead        Play // leader's original set for the current trick
	LastPlayed  Play // winning play of the current trick so far
	Trick       [MaxPlayers]Play
	TrickLen    uint8
	RoundWinner int8
	TrickCount  uint16

	RevealedCard Card
	CardToSwap   Card

	Minigame       uint8 // bitmask of seats in the tie-break minigame
	MinigameRounds uint8
	TiedTotal      int
	Loser          int8 // seat that takes the hand's points, -1 until scored

	Steps uint32 // accepted intents, for bounding simulations
	RNG   uint64
	Rules HouseRules

	Log     [LogSize]LogEntry
	LogHead uint8
	LogLen  uint8
	LogSeq  uint32
}

// ---------------------------------------------------------------------------
// xorshift64 RNG: inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// shuffle performs an in-place Fisher-Yates shuffle of cards.
func (g *GameState) shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a new GameState with the given seed and rules.
// The deck is built but not yet shuffled or dealt.
func NewGame(seed uint64, rules HouseRules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.NumPlayers = rules.numPlayers()
	if g.NumPlayers < MinPlayers {
		g.NumPlayers = MinPlayers
	}
	if g.NumPlayers > MaxPlayers {
		g.NumPlayers = MaxPlayers
	}
	g.Rules.NumPlayers = g.NumPlayers
	g.Dealer = rules.Dealer % g.NumPlayers
	g.Phase = PhaseDealing
	g.FirstSwapper = -1
	g.RoundWinner = -1
	g.Loser = -1
	g.RevealedCard = EmptyCard
	g.CardToSwap = EmptyCard

	idx := 0
	for suit := SuitHearts; suit <= SuitSpades; suit++ {
		for rank := RankTwo; rank <= RankAce; rank++ {
			g.Deck[idx] = NewCard(suit, rank)
			idx++
		}
	}
	g.DeckLen = DeckSize

	for p := uint8(0); p < g.NumPlayers; p++ {
		pl := &g.Players[p]
		pl.FaceUp = EmptyCard
		pl.IsHuman = rules.HumanSeat >= 0 && uint8(rules.HumanSeat) == p
		pl.IsDealer = p == g.Dealer
	}
	return g
}

// Deal shuffles the deck, deals four face-down cards then one face-up card to
// every seat starting left of the dealer, and seats the commander.
func (g *GameState) Deal() error {
	if g.Phase != PhaseDealing {
		return fmt.Errorf("%w: deal outside %s", ErrWrongPhase, PhaseDealing)
	}
	g.shuffle(g.Deck[:g.DeckLen])

	order := g.dealOrder()
	for c := 0; c < FaceDownCards; c++ {
		for _, p := range order {
			g.Players[p].addCard(g.popDeck())
		}
	}
	for _, p := range order {
		card := g.popDeck()
		g.Players[p].addCard(card)
		g.Players[p].FaceUp = card
	}

	commander := g.findCommander()
	g.FirstToAct = commander
	g.RoundLeader = commander
	g.CurrentPlayer = commander
	g.logf(int8(commander), "is the commander with %s", g.Players[commander].FaceUp)
	return g.transition(PhaseFirstSwapDecision)
}

// dealOrder lists seats clockwise starting left of the dealer; the dealer is dealt last.
func (g *GameState) dealOrder() []uint8 {
	order := make([]uint8, 0, g.NumPlayers)
	for i := uint8(1); i <= g.NumPlayers; i++ {
		order = append(order, (g.Dealer+i)%g.NumPlayers)
	}
	return order
}

// findCommander scans the dealing order once; the later-dealt seat wins ties.
func (g *GameState) findCommander() uint8 {
	best := uint8(0)
	bestVal := -1
	for _, p := range g.dealOrder() {
		v := g.Players[p].FaceUp.Value()
		if v >= bestVal {
			best, bestVal = p, v
		}
	}
	return best
}

// ---------------------------------------------------------------------------
// Deck handling
// ---------------------------------------------------------------------------

func (g *GameState) popDeck() Card {
	g.DeckLen--
	c := g.Deck[g.DeckLen]
	g.Deck[g.DeckLen] = EmptyCard
	return c
}

// draw takes the top card, reshuffling the discard pile into the deck if it ran dry.
func (g *GameState) draw() (Card, error) {
	if g.DeckLen == 0 {
		g.reshuffleDiscard()
	}
	if g.DeckLen == 0 {
		return EmptyCard, fmt.Errorf("%w: deck and discard pile are empty", ErrInvalidIntent)
	}
	return g.popDeck(), nil
}

func (g *GameState) discard(c Card) {
	if !c.Valid() {
		return
	}
	g.Discard[g.DiscardLen] = c
	g.DiscardLen++
}

// reshuffleDiscard moves the whole discard pile under the deck and shuffles it.
func (g *GameState) reshuffleDiscard() {
	if g.DiscardLen == 0 {
		return
	}
	for i := uint8(0); i < g.DiscardLen; i++ {
		g.Deck[g.DeckLen] = g.Discard[i]
		g.DeckLen++
		g.Discard[i] = EmptyCard
	}
	g.DiscardLen = 0
	g.shuffle(g.Deck[:g.DeckLen])
	g.logf(-1, "reshuffled the discard pile into the deck")
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal returns true when the game is over.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseGameOver }

// ActingPlayer returns the seat that must act next, or -1 when no seat is
// waited on (DEALING, ROUND_OVER, GAME_OVER).
func (g *GameState) ActingPlayer() int8 {
	switch g.Phase {
	case PhaseDealing, PhaseRoundOver, PhaseGameOver:
		return -1
	}
	return int8(g.CurrentPlayer)
}

// NextSeat returns the seat after s in turn order.
func (g *GameState) NextSeat(s uint8) uint8 { return (s + 1) % g.NumPlayers }

// Hand returns a copy of a seat's hand.
func (g *GameState) Hand(seat uint8) []Card { return g.Players[seat].HandSlice() }

// HandLen returns the number of cards in a seat's hand.
func (g *GameState) HandLen(seat uint8) uint8 { return g.Players[seat].HandLen }

// InMinigame reports whether seat takes part in the tie-break minigame.
func (g *GameState) InMinigame(seat uint8) bool { return g.Minigame&(1<<seat) != 0 }

// ActiveInTrick reports whether seat plays in the current trick.
func (g *GameState) ActiveInTrick(seat uint8) bool {
	if g.Phase == PhaseMinigame || g.Phase == PhaseMinigameSwap {
		return g.InMinigame(seat)
	}
	return seat < g.NumPlayers
}

// TrickPlays returns the plays of the current trick in order.
func (g *GameState) TrickPlays() []Play {
	out := make([]Play, g.TrickLen)
	copy(out, g.Trick[:g.TrickLen])
	return out
}

// CardCount returns the number of cards held anywhere in the game. It is
// always DeckSize; tests use it to check card conservation.
func (g *GameState) CardCount() int {
	n := int(g.DeckLen) + int(g.DiscardLen)
	for p := uint8(0); p < g.NumPlayers; p++ {
		n += int(g.Players[p].HandLen) + int(g.Players[p].PlayedLen)
	}
	if g.RevealedCard.Valid() {
		n++
	}
	return n
}

// ---------------------------------------------------------------------------
// Rolling log
// ---------------------------------------------------------------------------

// logf appends a line to the rolling log, overwriting the oldest once full.
func (g *GameState) logf(seat int8, format string, args ...interface{}) {
	g.LogSeq++
	idx := (g.LogHead + g.LogLen) % LogSize
	if g.LogLen == LogSize {
		g.LogHead = (g.LogHead + 1) % LogSize
	} else {
		g.LogLen++
	}
	g.Log[idx] = LogEntry{Seq: g.LogSeq, Seat: seat, Text: fmt.Sprintf(format, args...)}
}

// LogEntries returns the rolling log oldest first.
func (g *GameState) LogEntries() []LogEntry {
	out := make([]LogEntry, 0, g.LogLen)
	for i := uint8(0); i < g.LogLen; i++ {
		out = append(out, g.Log[(g.LogHead+i)%LogSize])
	}
	return out
}

// LogSince returns the log entries with Seq greater than seq.
func (g *GameState) LogSince(seq uint32) []LogEntry {
	var out []LogEntry
	for _, e := range g.LogEntries() {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}
