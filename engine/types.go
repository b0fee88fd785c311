package engine

import (
	"fmt"
	"strings"
)

// Suit constants, packed into upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants, packed into lower 4 bits of Card. The rank is also the card's value.
const (
	RankTwo   uint8 = 2
	RankThree uint8 = 3
	RankFour  uint8 = 4
	RankFive  uint8 = 5
	RankSix   uint8 = 6
	RankSeven uint8 = 7
	RankEight uint8 = 8
	RankNine  uint8 = 9
	RankTen   uint8 = 10
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
	RankAce   uint8 = 14
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Value returns the point value of the card: 2–10 face value, J=11, Q=12, K=13, A=14.
// EmptyCard and malformed cards are worth 0.
func (c Card) Value() int {
	if c == EmptyCard || c.Suit() > SuitSpades {
		return 0
	}
	r := c.Rank()
	if r < RankTwo || r > RankAce {
		return 0
	}
	return int(r)
}

// Valid reports whether c is one of the 52 standard cards.
func (c Card) Valid() bool { return c.Value() != 0 }

var suitSymbols = [4]string{"♥", "♦", "♣", "♠"}
var suitLetters = [4]string{"H", "D", "C", "S"}

// RankString returns the printable rank ("2".."10", "J", "Q", "K", "A").
func RankString(rank uint8) string {
	switch rank {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	}
	if rank >= RankTwo && rank <= RankTen {
		return fmt.Sprintf("%d", rank)
	}
	return "?"
}

// SuitString returns the suit symbol.
func SuitString(suit uint8) string {
	if suit > SuitSpades {
		return "?"
	}
	return suitSymbols[suit]
}

func (c Card) String() string {
	if !c.Valid() {
		return "--"
	}
	return RankString(c.Rank()) + SuitString(c.Suit())
}

// ParseCard parses "A♠", "AS", "10h" or "TH" into a Card.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return EmptyCard, fmt.Errorf("%w: bad card %q", ErrInvalidIntent, s)
	}
	var suit uint8 = 0xFF
	var rankPart string
	for i, sym := range suitSymbols {
		if strings.HasSuffix(s, sym) {
			suit = uint8(i)
			rankPart = strings.TrimSuffix(s, sym)
		}
	}
	if suit == 0xFF {
		last := strings.ToUpper(s[len(s)-1:])
		for i, l := range suitLetters {
			if last == l {
				suit = uint8(i)
				rankPart = s[:len(s)-1]
			}
		}
	}
	if suit == 0xFF {
		return EmptyCard, fmt.Errorf("%w: bad suit in %q", ErrInvalidIntent, s)
	}

	var rank uint8
	switch strings.ToUpper(rankPart) {
	case "J":
		rank = RankJack
	case "Q":
		rank = RankQueen
	case "K":
		rank = RankKing
	case "A":
		rank = RankAce
	case "T", "10":
		rank = RankTen
	default:
		if len(rankPart) == 1 && rankPart[0] >= '2' && rankPart[0] <= '9' {
			rank = rankPart[0] - '0'
		} else {
			return EmptyCard, fmt.Errorf("%w: bad rank in %q", ErrInvalidIntent, s)
		}
	}
	return NewCard(suit, rank), nil
}

// Decision is a tri-state per-seat choice that may still be open.
type Decision uint8

const (
	DecisionNone Decision = iota // 0: not decided yet
	DecisionYes                  // 1
	DecisionNo                   // 2
)

// decisionOf converts a boolean choice into a Decision.
func decisionOf(accept bool) Decision {
	if accept {
		return DecisionYes
	}
	return DecisionNo
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

// Phase is the stage of a hand.
type Phase uint8

const (
	PhaseDealing Phase = iota
	PhaseFirstSwapDecision
	PhaseFirstSwapAction
	PhaseFirstSwapOthersDecision
	PhaseOthersSwapAction
	PhaseVoteSwapDecision
	PhaseVoteSwap
	PhaseFinalSwapDecision
	PhaseFinalSwapAction
	PhaseFinalSwapOneCardSelect
	PhaseFinalSwapOneCardRevealAndDecide
	PhaseGameplay
	PhaseRoundOver
	PhaseMinigame
	PhaseMinigameSwap
	PhaseGameOver
)

var phaseNames = [...]string{
	PhaseDealing:                         "DEALING",
	PhaseFirstSwapDecision:               "FIRST_SWAP_DECISION",
	PhaseFirstSwapAction:                 "FIRST_SWAP_ACTION",
	PhaseFirstSwapOthersDecision:         "FIRST_SWAP_OTHERS_DECISION",
	PhaseOthersSwapAction:                "OTHERS_SWAP_ACTION",
	PhaseVoteSwapDecision:                "VOTE_SWAP_DECISION",
	PhaseVoteSwap:                        "VOTE_SWAP",
	PhaseFinalSwapDecision:               "FINAL_SWAP_DECISION",
	PhaseFinalSwapAction:                 "FINAL_SWAP_ACTION",
	PhaseFinalSwapOneCardSelect:          "FINAL_SWAP_ONE_CARD_SELECT",
	PhaseFinalSwapOneCardRevealAndDecide: "FINAL_SWAP_ONE_CARD_REVEAL_AND_DECIDE",
	PhaseGameplay:                        "GAMEPLAY",
	PhaseRoundOver:                       "ROUND_OVER",
	PhaseMinigame:                        "MINIGAME",
	PhaseMinigameSwap:                    "MINIGAME_SWAP",
	PhaseGameOver:                        "GAME_OVER",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("PHASE(%d)", uint8(p))
}

// IsPreGameplay reports whether p belongs to the swap/vote negotiation before trick play.
func (p Phase) IsPreGameplay() bool {
	return p >= PhaseFirstSwapDecision && p <= PhaseFinalSwapOneCardRevealAndDecide
}

// MarshalText renders the phase name for JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ---------------------------------------------------------------------------
// Intents
// ---------------------------------------------------------------------------

// IntentType identifies the kind of input a seat (or the scheduler) feeds into the engine.
type IntentType uint8

const (
	IntentSwapDecision      IntentType = iota // 0, Accept: swap (true) or stand pat
	IntentConfirmSwap                         // 1, Cards: cards to exchange
	IntentOtherPlayerSwap                     // 2, Accept
	IntentVoteDecision                        // 3, Accept: take part in the vote
	IntentVote                                // 4, Amount 1..MaxVote
	IntentFinalSwapDecision                   // 5, Accept: join the winning swap
	IntentFinalSwap                           // 6, Cards
	IntentOneCardSelect                       // 7, Cards[0]
	IntentOneCardDecide                       // 8, Choice
	IntentPlayCards                           // 9, Cards
	IntentMinigameSwap                        // 10, Accept
	IntentContinue                            // 11, scheduler: leave ROUND_OVER
)

var intentNames = [...]string{
	"swap_decision", "confirm_swap", "other_player_swap", "vote_decision", "vote",
	"final_swap_decision", "final_swap", "one_card_select", "one_card_decide",
	"play_cards", "minigame_swap", "continue",
}

func (t IntentType) String() string {
	if int(t) < len(intentNames) {
		return intentNames[t]
	}
	return fmt.Sprintf("intent(%d)", uint8(t))
}

// OneCardChoice is the answer to a revealed one-card replacement.
type OneCardChoice uint8

const (
	ChoiceKeep    OneCardChoice = iota // take the revealed card
	ChoiceDecline                      // discard it and draw a hidden replacement
)

// Intent is one input to the engine. Only the fields relevant to Type are read.
type Intent struct {
	Type   IntentType
	Seat   uint8
	Accept bool
	Amount uint8
	Cards  []Card
	Choice OneCardChoice
}

func (in Intent) String() string {
	switch in.Type {
	case IntentVote:
		return fmt.Sprintf("%s(seat %d, %d)", in.Type, in.Seat, in.Amount)
	case IntentConfirmSwap, IntentFinalSwap, IntentOneCardSelect, IntentPlayCards:
		return fmt.Sprintf("%s(seat %d, %v)", in.Type, in.Seat, in.Cards)
	case IntentOneCardDecide:
		return fmt.Sprintf("%s(seat %d, keep=%v)", in.Type, in.Seat, in.Choice == ChoiceKeep)
	case IntentContinue:
		return in.Type.String()
	}
	return fmt.Sprintf("%s(seat %d, %v)", in.Type, in.Seat, in.Accept)
}

// ---------------------------------------------------------------------------
// Plays
// ---------------------------------------------------------------------------

// Play is one seat's contribution to a trick. Fixed-size so GameState stays a value type.
type Play struct {
	Seat  uint8
	Cards [MaxHandSize]Card
	N     uint8
}

// NewPlay builds a Play from a card slice (truncated to MaxHandSize).
func NewPlay(seat uint8, cards []Card) Play {
	p := Play{Seat: seat}
	for _, c := range cards {
		if p.N == MaxHandSize {
			break
		}
		p.Cards[p.N] = c
		p.N++
	}
	return p
}

// Slice returns the played cards as a new slice.
func (p Play) Slice() []Card {
	out := make([]Card, p.N)
	copy(out, p.Cards[:p.N])
	return out
}

// Empty reports whether nothing has been played.
func (p Play) Empty() bool { return p.N == 0 }

// Total is the summed value of the played cards.
func (p Play) Total() int { return sumValues(p.Cards[:p.N]) }

// SetValue returns the shared rank value if the play is a same-rank set, else 0.
func (p Play) SetValue() int {
	if p.N == 0 || !sameRank(p.Cards[:p.N]) {
		return 0
	}
	return p.Cards[0].Value()
}

// LogEntry is one line of the rolling human-readable event log.
type LogEntry struct {
	Seq  uint32
	Seat int8 // -1 for table events
	Text string
}
