// internal/models/models.go
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Player is one seat at the table. Seat order follows the Players slice of the game.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsHuman   bool      `json:"isHuman"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Connected bool      `json:"connected"` // Bots are always connected; the human seat follows its WebSocket.
}

// NewBot returns a connected bot seat with a fresh ID.
func NewBot(name string) *Player {
	return &Player{ID: uuid.New(), Name: name, Connected: true}
}

// NewHuman returns the human seat. It starts disconnected until a client attaches.
func NewHuman(name string) *Player {
	return &Player{ID: uuid.New(), Name: name, IsHuman: true}
}

func (p *Player) String() string {
	kind := "bot"
	if p.IsHuman {
		kind = "human"
	}
	return fmt.Sprintf("%s (%s)", p.Name, kind)
}

// GameAction is the wire form of a player intent, as received from the client.
//
// ActionType is one of the "action_*" names handled by the game; Payload carries
// the intent fields: "accept" (bool), "amount" (number), "cards" (list of card
// codes such as "K♠" or "KS") and "choice" ("keep" or "decline").
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
