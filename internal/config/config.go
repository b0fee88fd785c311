// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	engine "github.com/peka01/gurch/engine"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read from GURCH_* environment variables
// (optionally seeded from a .env file).
type Config struct {
	ListenAddr string // GURCH_LISTEN_ADDR
	Headless   bool   // GURCH_HEADLESS: bots only, no WebSocket server

	Players   int    // GURCH_PLAYERS: 3 or 4
	HumanSeat int    // GURCH_HUMAN_SEAT: -1 for an all-bot table
	Dealer    int    // GURCH_DEALER
	Seed      uint64 // GURCH_SEED: 0 picks one from the clock
	Hands     int    // GURCH_HANDS: hands to play before the session ends

	MaxFirstSwap          int // GURCH_MAX_FIRST_SWAP
	MaxVote               int // GURCH_MAX_VOTE
	NonParticipantPenalty int // GURCH_NON_PARTICIPANT_PENALTY
	MaxMinigameRounds     int // GURCH_MAX_MINIGAME_ROUNDS

	HumanTurn       time.Duration // GURCH_HUMAN_TURN: soft countdown before the conservative default
	StallTimeout    time.Duration // GURCH_STALL_TIMEOUT
	WatchdogTimeout time.Duration // GURCH_WATCHDOG_TIMEOUT
	SettleDelay     time.Duration // GURCH_SETTLE_DELAY
	BotThinkMin     time.Duration // GURCH_BOT_THINK_MIN
	BotThinkMax     time.Duration // GURCH_BOT_THINK_MAX
	RevealWindow    time.Duration // GURCH_REVEAL_WINDOW

	RedisURL  string // GURCH_REDIS_URL: empty disables the historian
	FlavorURL string // GURCH_FLAVOR_URL: empty passes log lines through
	AvatarURL string // GURCH_AVATAR_URL: empty uses placeholders

	LogLevel  string // GURCH_LOG_LEVEL
	LogFormat string // GURCH_LOG_FORMAT: text or json
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	rules := engine.DefaultHouseRules()
	return Config{
		ListenAddr: "127.0.0.1:8080",
		Players:    4,
		HumanSeat:  0,
		Hands:      1,

		MaxFirstSwap:          int(rules.MaxFirstSwap),
		MaxVote:               int(rules.MaxVote),
		NonParticipantPenalty: rules.NonParticipantPenalty,
		MaxMinigameRounds:     int(rules.MaxMinigameRounds),

		HumanTurn:       30 * time.Second,
		StallTimeout:    45 * time.Second,
		WatchdogTimeout: 3 * time.Minute,
		SettleDelay:     2 * time.Second,
		BotThinkMin:     1500 * time.Millisecond,
		BotThinkMax:     2 * time.Second,
		RevealWindow:    1500 * time.Millisecond,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads .env (a missing file is fine), overlays the environment on
// Default and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.str("GURCH_LISTEN_ADDR", &c.ListenAddr)
	p.boolean("GURCH_HEADLESS", &c.Headless)
	p.integer("GURCH_PLAYERS", &c.Players)
	p.integer("GURCH_HUMAN_SEAT", &c.HumanSeat)
	p.integer("GURCH_DEALER", &c.Dealer)
	p.uint64("GURCH_SEED", &c.Seed)
	p.integer("GURCH_HANDS", &c.Hands)

	p.integer("GURCH_MAX_FIRST_SWAP", &c.MaxFirstSwap)
	p.integer("GURCH_MAX_VOTE", &c.MaxVote)
	p.integer("GURCH_NON_PARTICIPANT_PENALTY", &c.NonParticipantPenalty)
	p.integer("GURCH_MAX_MINIGAME_ROUNDS", &c.MaxMinigameRounds)

	p.duration("GURCH_HUMAN_TURN", &c.HumanTurn)
	p.duration("GURCH_STALL_TIMEOUT", &c.StallTimeout)
	p.duration("GURCH_WATCHDOG_TIMEOUT", &c.WatchdogTimeout)
	p.duration("GURCH_SETTLE_DELAY", &c.SettleDelay)
	p.duration("GURCH_BOT_THINK_MIN", &c.BotThinkMin)
	p.duration("GURCH_BOT_THINK_MAX", &c.BotThinkMax)
	p.duration("GURCH_REVEAL_WINDOW", &c.RevealWindow)

	p.str("GURCH_REDIS_URL", &c.RedisURL)
	p.str("GURCH_FLAVOR_URL", &c.FlavorURL)
	p.str("GURCH_AVATAR_URL", &c.AvatarURL)
	p.str("GURCH_LOG_LEVEL", &c.LogLevel)
	p.str("GURCH_LOG_FORMAT", &c.LogFormat)

	if c.Headless {
		c.HumanSeat = -1
	}
	if err := errors.Join(append(p.errs, c.Validate())...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Players < engine.MinPlayers || c.Players > engine.MaxPlayers {
		bad("players must be %d or %d, got %d", engine.MinPlayers, engine.MaxPlayers, c.Players)
	}
	if c.HumanSeat < -1 || c.HumanSeat >= c.Players {
		bad("human seat %d outside -1..%d", c.HumanSeat, c.Players-1)
	}
	if c.Dealer < 0 || c.Dealer >= c.Players {
		bad("dealer %d outside 0..%d", c.Dealer, c.Players-1)
	}
	if c.Hands < 1 {
		bad("hands must be at least 1, got %d", c.Hands)
	}
	if c.MaxFirstSwap < 1 || c.MaxFirstSwap > engine.MaxHandSize {
		bad("max first swap %d outside 1..%d", c.MaxFirstSwap, engine.MaxHandSize)
	}
	if c.MaxVote < 1 || c.MaxVote > engine.MaxHandSize {
		bad("max vote %d outside 1..%d", c.MaxVote, engine.MaxHandSize)
	}
	if c.NonParticipantPenalty < 0 {
		bad("non-participant penalty must not be negative")
	}
	if c.MaxMinigameRounds < 1 || c.MaxMinigameRounds > 255 {
		bad("max minigame rounds %d outside 1..255", c.MaxMinigameRounds)
	}
	for name, d := range map[string]time.Duration{
		"human turn":       c.HumanTurn,
		"stall timeout":    c.StallTimeout,
		"watchdog timeout": c.WatchdogTimeout,
		"settle delay":     c.SettleDelay,
		"bot think min":    c.BotThinkMin,
		"bot think max":    c.BotThinkMax,
		"reveal window":    c.RevealWindow,
	} {
		if d < 0 {
			bad("%s must not be negative", name)
		}
	}
	if c.BotThinkMin > c.BotThinkMax {
		bad("bot think min %s exceeds max %s", c.BotThinkMin, c.BotThinkMax)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		bad("log level: %v", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		bad("log format must be text or json, got %q", c.LogFormat)
	}
	return errors.Join(errs...)
}

// HouseRules returns the engine rules for this configuration.
func (c Config) HouseRules() engine.HouseRules {
	return engine.HouseRules{
		NumPlayers:            uint8(c.Players),
		Dealer:                uint8(c.Dealer),
		HumanSeat:             int8(c.HumanSeat),
		MaxFirstSwap:          uint8(c.MaxFirstSwap),
		MaxVote:               uint8(c.MaxVote),
		NonParticipantPenalty: c.NonParticipantPenalty,
		MaxMinigameRounds:     uint8(c.MaxMinigameRounds),
	}
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// parser collects conversion errors so Load can report them together.
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (p *parser) uint64(key string, dst *uint64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (p *parser) boolean(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}
