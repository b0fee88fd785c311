// internal/game/actions.go
package game

import (
	"fmt"
	"math"

	engine "github.com/peka01/gurch/engine"
	"github.com/peka01/gurch/internal/models"
)

// actionIntents maps the client action names ("action_" + intent name) onto
// engine intents. Continue is internal and has no client action.
var actionIntents = func() map[string]engine.IntentType {
	m := make(map[string]engine.IntentType)
	for t := engine.IntentSwapDecision; t <= engine.IntentMinigameSwap; t++ {
		m["action_"+t.String()] = t
	}
	return m
}()

// parseAction turns a client action into an intent for seat.
func parseAction(seat uint8, a models.GameAction) (engine.Intent, error) {
	typ, ok := actionIntents[a.ActionType]
	if !ok {
		return engine.Intent{}, fmt.Errorf("%w: unknown action %q", engine.ErrInvalidIntent, a.ActionType)
	}
	in := engine.Intent{Type: typ, Seat: seat}
	var err error
	switch typ {
	case engine.IntentSwapDecision, engine.IntentOtherPlayerSwap, engine.IntentVoteDecision,
		engine.IntentFinalSwapDecision, engine.IntentMinigameSwap:
		in.Accept, err = payloadBool(a.Payload, "accept")
	case engine.IntentVote:
		in.Amount, err = payloadAmount(a.Payload)
	case engine.IntentConfirmSwap, engine.IntentFinalSwap, engine.IntentOneCardSelect, engine.IntentPlayCards:
		in.Cards, err = payloadCards(a.Payload)
	case engine.IntentOneCardDecide:
		in.Choice, err = payloadChoice(a.Payload)
	}
	if err != nil {
		return engine.Intent{}, fmt.Errorf("%w: %s: %v", engine.ErrInvalidIntent, a.ActionType, err)
	}
	return in, nil
}

func payloadBool(p map[string]interface{}, key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, fmt.Errorf("missing %q", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%q must be true or false", key)
	}
	return b, nil
}

func payloadAmount(p map[string]interface{}) (uint8, error) {
	var f float64
	switch v := p["amount"].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case nil:
		return 0, fmt.Errorf("missing \"amount\"")
	default:
		return 0, fmt.Errorf("\"amount\" must be a number")
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxUint8 {
		return 0, fmt.Errorf("\"amount\" must be a whole number of cards")
	}
	return uint8(f), nil
}

// payloadCards reads "cards" as a list of card codes, or a single "card".
func payloadCards(p map[string]interface{}) ([]engine.Card, error) {
	var codes []string
	switch v := p["cards"].(type) {
	case []interface{}:
		for _, c := range v {
			s, ok := c.(string)
			if !ok {
				return nil, fmt.Errorf("\"cards\" must hold card codes")
			}
			codes = append(codes, s)
		}
	case []string:
		codes = v
	case nil:
		s, ok := p["card"].(string)
		if !ok {
			return nil, fmt.Errorf("missing \"cards\"")
		}
		codes = []string{s}
	default:
		return nil, fmt.Errorf("\"cards\" must be a list")
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no cards chosen")
	}

	cards := make([]engine.Card, 0, len(codes))
	for _, code := range codes {
		c, err := engine.ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func payloadChoice(p map[string]interface{}) (engine.OneCardChoice, error) {
	switch v := p["choice"].(type) {
	case string:
		switch v {
		case "keep":
			return engine.ChoiceKeep, nil
		case "decline":
			return engine.ChoiceDecline, nil
		}
		return 0, fmt.Errorf("\"choice\" must be keep or decline, got %q", v)
	case nil:
		keep, err := payloadBool(p, "accept")
		if err != nil {
			return 0, fmt.Errorf("missing \"choice\"")
		}
		if keep {
			return engine.ChoiceKeep, nil
		}
		return engine.ChoiceDecline, nil
	}
	return 0, fmt.Errorf("\"choice\" must be keep or decline")
}

// intentPayload is the historian form of an accepted intent.
func intentPayload(in engine.Intent, source string) map[string]interface{} {
	p := map[string]interface{}{"source": source}
	if in.Type == engine.IntentContinue {
		return p
	}
	p["seat"] = int(in.Seat)
	switch in.Type {
	case engine.IntentVote:
		p["amount"] = int(in.Amount)
	case engine.IntentConfirmSwap, engine.IntentFinalSwap, engine.IntentOneCardSelect, engine.IntentPlayCards:
		p["cards"] = cardCodes(in.Cards)
	case engine.IntentOneCardDecide:
		p["keep"] = in.Choice == engine.ChoiceKeep
	default:
		p["accept"] = in.Accept
	}
	return p
}

func cardCodes(cards []engine.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
