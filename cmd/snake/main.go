package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	snake "github.com/kuredoro/snake"
	"github.com/kuredoro/snake/config"
	"github.com/kuredoro/snake/engine"
	"github.com/kuredoro/snake/engine/console"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()
	if err := cfg.LoadEnv(".env"); err != nil {
		printErr("load environment:", err)
		return 2
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		printErr("invalid configuration:", err)
		return 2
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		printErr("open log:", err)
		return 1
	}
	defer closeLog()

	grid, err := cfg.Grid()
	if err != nil {
		printErr("create grid:", err)
		return 2
	}

	if cfg.Menu {
		choice, err := console.ShowCover()
		if err != nil {
			printErr("show menu:", err)
			return 1
		}
		if choice == console.ChoiceQuit {
			return 0
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := engine.NewSessionContext(grid, cfg.Seed, cfg.SessionOptions())
	sc.Renderer = nil

	if cfg.Spectate {
		node, err := snake.New(ctx, log.Logger)
		if err != nil {
			printErr("start spectator feed:", err)
			return 1
		}
		defer func() {
			if err := node.Close(); err != nil {
				log.Err(err).Msg("Close node")
			}
		}()

		b := node.Broadcaster(ctx, sc.ID, grid)
		defer func() {
			if err := b.Close(); err != nil {
				log.Err(err).Msg("Close broadcaster")
			}
		}()

		sc.Renderer = b
		log.Info().Str("session", sc.ID).Str("peer", node.ID().String()).Msg("Broadcasting")
	}

	s, err := tcell.NewScreen()
	if err != nil {
		printErr("create screen:", err)
		return 1
	}
	if err := s.Init(); err != nil {
		printErr("init screen:", err)
		return 1
	}

	rate := cfg.TickRate
	game := console.NewGame(s, sc, func() engine.Clock {
		return engine.NewTickerClock(rate)
	})

	res, err := game.Run(ctx)
	s.Fini()

	if err != nil && ctx.Err() == nil {
		printErr("run game:", err)
		return 1
	}

	cfmt.Printf("{{Final score:}}::bold %d  {{best:}}::bold %d  {{rounds:}}::bold %d\n",
		res.Last.Score, res.BestScore, res.Rounds)
	return 0
}

// setupLogging points the global logger at cfg.LogFile. The screen belongs
// to the game, so without a file logs are discarded.
func setupLogging(cfg config.Config) (func(), error) {
	zerolog.SetGlobalLevel(cfg.Level())

	if cfg.LogFile == "" {
		log.Logger = zerolog.New(io.Discard)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}

func printErr(m string, args ...interface{}) {
	if len(args) == 0 {
		panic("printErr: no arguments passed")
	}

	err := args[len(args)-1]

	header := m
	if len(args) > 1 {
		header = fmt.Sprintf(m, args[:len(args)-1]...)
	}

	cfmt.Printf("{{error:}}::lightRed|bold %s %v\n", header, err)
}
