// cmd/gurch/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/peka01/gurch/internal/cache"
	"github.com/peka01/gurch/internal/collab"
	"github.com/peka01/gurch/internal/config"
	"github.com/peka01/gurch/internal/game"
	"github.com/peka01/gurch/internal/models"
	"github.com/peka01/gurch/internal/server"
)

var botNames = []string{"Astrid", "Bertil", "Greta", "Sixten"}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("gurch stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL != "" {
		if err := cache.Init(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Warn("historian unavailable, actions will not be recorded")
		} else {
			defer cache.Close()
			log.Info("historian connected")
		}
	}

	g := newTable(cfg, log)
	players := seatPlayers(cfg)
	resolveAvatars(ctx, collab.NewAvatars(cfg.AvatarURL, log), players)
	g.Mu.Lock()
	for _, p := range players {
		if err := g.AddPlayer(p); err != nil {
			g.Mu.Unlock()
			return err
		}
	}
	g.Mu.Unlock()
	defer g.Close()

	if cfg.Headless || cfg.HumanSeat < 0 {
		g.BroadcastFn = logEvents(log)
		return playSession(ctx, cfg, g, log)
	}

	human := players[cfg.HumanSeat]
	srv := server.New(g, human.ID, log)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	})
	eg.Go(func() error {
		log.WithField("addr", cfg.ListenAddr).Info("waiting for the player to connect")
		select {
		case <-ctx.Done():
			return nil
		case <-srv.Ready():
		}
		if err := playSession(ctx, cfg, g, log); err != nil {
			return err
		}
		// The final table stays up until the process is stopped.
		<-ctx.Done()
		return nil
	})
	return eg.Wait()
}

// newTable builds an empty table from cfg.
func newTable(cfg config.Config, log logrus.FieldLogger) *game.GurchGame {
	g := game.NewGurchGame(log, game.RealScheduler{})
	g.Rules = cfg.HouseRules()
	g.Timing = game.Timing{
		HumanTurn:       cfg.HumanTurn,
		StallTimeout:    cfg.StallTimeout,
		WatchdogTimeout: cfg.WatchdogTimeout,
		SettleDelay:     cfg.SettleDelay,
		BotThinkMin:     cfg.BotThinkMin,
		BotThinkMax:     cfg.BotThinkMax,
		RevealWindow:    cfg.RevealWindow,
	}
	if cfg.FlavorURL != "" {
		g.Flavor = collab.NewFlavorer(cfg.FlavorURL, log)
	}
	return g
}

// seatPlayers returns the table in seat order, the human at cfg.HumanSeat.
func seatPlayers(cfg config.Config) []*models.Player {
	players := make([]*models.Player, 0, cfg.Players)
	bots := 0
	for seat := 0; seat < cfg.Players; seat++ {
		if seat == cfg.HumanSeat {
			players = append(players, models.NewHuman("You"))
			continue
		}
		players = append(players, models.NewBot(botNames[bots%len(botNames)]))
		bots++
	}
	return players
}

// resolveAvatars fetches every portrait at once. Failures fall back to placeholders.
func resolveAvatars(ctx context.Context, avatars *collab.Avatars, players []*models.Player) {
	var eg errgroup.Group
	for _, p := range players {
		p := p
		eg.Go(func() error {
			p.AvatarURL = avatars.URL(ctx, avatarPrompt(p))
			return nil
		})
	}
	_ = eg.Wait()
}

func avatarPrompt(p *models.Player) string {
	if p.IsHuman {
		return "card player seen from behind, warm tavern light"
	}
	return fmt.Sprintf("portrait of %s, a card player at a tavern table", p.Name)
}

// playSession deals cfg.Hands hands in a row, each after the previous one
// is scored, and logs the running totals.
func playSession(ctx context.Context, cfg config.Config, g *game.GurchGame, log logrus.FieldLogger) error {
	ended := make(chan struct{}, 1)
	g.Mu.Lock()
	g.OnGameEnd = func(gameID, loser uuid.UUID, scores map[uuid.UUID]int) {
		select {
		case ended <- struct{}{}:
		default:
		}
	}
	g.Mu.Unlock()

	for hand := 1; hand <= cfg.Hands; hand++ {
		var err error
		if hand == 1 {
			err = g.Start(seedFor(cfg.Seed, hand))
		} else {
			err = g.NextHand(seedFor(cfg.Seed, hand))
		}
		if err != nil {
			return fmt.Errorf("hand %d: %w", hand, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ended:
		}
		if hand < cfg.Hands {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.SettleDelay):
			}
		}
	}

	g.Mu.Lock()
	fields := logrus.Fields{"hands": g.HandNumber}
	for _, p := range g.Players {
		fields[p.Name] = g.Totals[p.ID]
	}
	g.Mu.Unlock()
	log.WithFields(fields).Info("session over")
	return nil
}

// seedFor derives the seed of a hand. A zero base leaves every hand to the clock.
func seedFor(base uint64, hand int) uint64 {
	if base == 0 {
		return 0
	}
	return base + uint64(hand-1)
}

// logEvents prints the table log when nobody is watching over a socket.
func logEvents(log logrus.FieldLogger) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		switch ev.Type {
		case game.EventGameLog, game.EventGameFlavor:
			log.WithField("event", ev.Type).Info(ev.Payload["text"])
		case game.EventGameEnd:
			log.WithFields(logrus.Fields{
				"hand":   ev.Payload["hand"],
				"points": ev.Payload["points"],
			}).Info("hand scored")
		}
	}
}
