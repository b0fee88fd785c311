// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	engine "github.com/peka01/gurch/engine"
)

// ObfCard is a face-up card as clients see it.
type ObfCard struct {
	Code  string `json:"code"` // e.g. "10♦"
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

// ObfPlay is one seat's contribution to a trick.
type ObfPlay struct {
	PlayerID uuid.UUID `json:"playerId"`
	Seat     int       `json:"seat"`
	Cards    []ObfCard `json:"cards"`
	Total    int       `json:"total"`
}

// ObfPlayerState is one seat, as seen by a specific viewer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Name          string    `json:"name"`
	Seat          int       `json:"seat"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	IsHuman       bool      `json:"isHuman"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	IsDealer      bool      `json:"isDealer"`
	IsCommander   bool      `json:"isCommander"`
	HandSize      int       `json:"handSize"`
	// Hand is populated for the viewer's own seat, and for every seat once the hand is over.
	Hand   []ObfCard `json:"hand,omitempty"`
	FaceUp *ObfCard  `json:"faceUp,omitempty"` // The dealt face-up card while still held.
	Played []ObfCard `json:"played,omitempty"`

	StoodPat   bool `json:"stoodPat"`
	HasSwapped bool `json:"hasSwapped"`
	HasVoted   bool `json:"hasVoted"`
	Vote       int  `json:"vote,omitempty"` // Viewer's own vote only.
	InMinigame bool `json:"inMinigame"`

	Score int `json:"score"` // This hand.
	Total int `json:"total"` // Across hands at this table.
}

// ObfGameState is the table snapshot for one viewer.
type ObfGameState struct {
	GameID          uuid.UUID         `json:"gameId"`
	Hand            int               `json:"hand"`
	Phase           engine.Phase      `json:"phase"`
	Started         bool              `json:"started"`
	GameOver        bool              `json:"gameOver"`
	TurnID          int               `json:"turnId"`
	CurrentPlayerID uuid.UUID         `json:"currentPlayerId"`
	DeckSize        int               `json:"deckSize"`
	DiscardSize     int               `json:"discardSize"`
	SwapAmount      int               `json:"swapAmount,omitempty"`
	VoteResult      int               `json:"voteResult,omitempty"`
	RevealedCard    *ObfCard          `json:"revealedCard,omitempty"`
	Lead            *ObfPlay          `json:"lead,omitempty"`
	LastPlayed      *ObfPlay          `json:"lastPlayed,omitempty"` // Winning play of the trick so far.
	Trick           []ObfPlay         `json:"trick"`
	TrickCount      int               `json:"trickCount"`
	RoundWinnerID   uuid.UUID         `json:"roundWinnerId"`
	LoserID         uuid.UUID         `json:"loserId"`
	TiedTotal       int               `json:"tiedTotal,omitempty"`
	Log             []string          `json:"log"`
	Players         []ObfPlayerState  `json:"players"`
	Rules           engine.HouseRules `json:"rules"`
}

func obfCard(c engine.Card) ObfCard {
	return ObfCard{
		Code:  c.String(),
		Rank:  engine.RankString(c.Rank()),
		Suit:  engine.SuitString(c.Suit()),
		Value: c.Value(),
	}
}

func obfCards(cards []engine.Card) []ObfCard {
	if len(cards) == 0 {
		return nil
	}
	out := make([]ObfCard, len(cards))
	for i, c := range cards {
		out[i] = obfCard(c)
	}
	return out
}

func (g *GurchGame) obfPlay(p engine.Play) *ObfPlay {
	if p.Empty() || int(p.Seat) >= len(g.Players) {
		return nil
	}
	return &ObfPlay{
		PlayerID: g.Players[p.Seat].ID,
		Seat:     int(p.Seat),
		Cards:    obfCards(p.Slice()),
		Total:    p.Total(),
	}
}

func (g *GurchGame) seatID(seat int8) uuid.UUID {
	if seat < 0 || int(seat) >= len(g.Players) {
		return uuid.Nil
	}
	return g.Players[seat].ID
}

// GetCurrentObfuscatedGameState builds the snapshot forUser is allowed to see:
// their own hand in full, other hands only by size and face-up card.
// Assumes lock is held by caller.
func (g *GurchGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	e := &g.Engine
	over := g.GameOver || e.IsTerminal()
	obf := ObfGameState{
		GameID:        g.ID,
		Hand:          g.HandNumber,
		Phase:         e.Phase,
		Started:       g.Started,
		GameOver:      over,
		TurnID:        g.TurnID,
		DeckSize:      int(e.DeckLen),
		DiscardSize:   int(e.DiscardLen),
		SwapAmount:    int(e.SwapAmount),
		VoteResult:    int(e.VoteResult),
		Lead:          g.obfPlay(e.Lead),
		LastPlayed:    g.obfPlay(e.LastPlayed),
		Trick:         []ObfPlay{},
		TrickCount:    int(e.TrickCount),
		RoundWinnerID: g.seatID(e.RoundWinner),
		LoserID:       g.seatID(e.Loser),
		TiedTotal:     e.TiedTotal,
		Rules:         e.Rules,
	}
	if !over {
		obf.CurrentPlayerID = g.seatID(e.ActingPlayer())
	}
	if e.RevealedCard.Valid() {
		c := obfCard(e.RevealedCard)
		obf.RevealedCard = &c
	}
	for _, p := range e.TrickPlays() {
		if op := g.obfPlay(p); op != nil {
			obf.Trick = append(obf.Trick, *op)
		}
	}
	for _, line := range e.LogEntries() {
		obf.Log = append(obf.Log, g.lineText(line))
	}

	obf.Players = make([]ObfPlayerState, len(g.Players))
	for i, pl := range g.Players {
		seat := uint8(i)
		ps := &e.Players[seat]
		self := pl.ID == forUser
		st := ObfPlayerState{
			PlayerID:      pl.ID,
			Name:          pl.Name,
			Seat:          i,
			AvatarURL:     pl.AvatarURL,
			IsHuman:       pl.IsHuman,
			Connected:     pl.Connected,
			IsCurrentTurn: !over && e.ActingPlayer() == int8(seat),
			IsDealer:      e.Dealer == seat,
			IsCommander:   e.FirstToAct == seat,
			HandSize:      int(ps.HandLen),
			Played:        obfCards(ps.PlayedSlice()),
			StoodPat:      ps.StoodPat,
			HasSwapped:    ps.HasSwapped,
			HasVoted:      ps.HasVoted,
			InMinigame:    e.InMinigame(seat),
			Score:         ps.Score,
			Total:         g.Totals[pl.ID],
		}
		if ps.FaceUp.Valid() {
			c := obfCard(ps.FaceUp)
			st.FaceUp = &c
		}
		if self || over {
			st.Hand = obfCards(ps.HandSlice())
		}
		if self {
			st.Vote = int(ps.SwapVote)
		}
		obf.Players[i] = st
	}
	return obf
}
