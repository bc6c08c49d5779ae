package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/config"
	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/game"
	"github.com/michalgawin/checkers/internal/logging"
	"github.com/michalgawin/checkers/internal/pool"
	"github.com/michalgawin/checkers/internal/protocol"
	"github.com/michalgawin/checkers/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Configure(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(&cfg)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("checkers failed")
		stop()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) *cli.App {
	var profile *os.File

	positionFlag := &cli.StringFlag{
		Name:    "fen",
		Aliases: []string{"f"},
		Usage:   "position to analyse",
		Value:   board.StartFEN,
	}

	return &cli.App{
		Name:  "checkers",
		Usage: "checkers engine and game host",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cpuprofile", Usage: "write cpu profile to file", EnvVars: []string{"CPUPROFILE"}},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn, error or off"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "worker pool size"},
			&cli.IntFlag{Name: "cache-mb", Usage: "evaluation cache size in MB"},
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Usage: "search depth in plies (overrides difficulty)"},
			&cli.StringFlag{Name: "difficulty", Usage: "easy, medium or hard"},
			&cli.StringFlag{Name: "data-dir", Usage: "directory for preferences and statistics"},
		},
		Before: func(c *cli.Context) error {
			if err := applyFlags(c, cfg); err != nil {
				return err
			}
			if path := c.String("cpuprofile"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				profile = f
				log.Info().Str("path", path).Msg("CPU profiling enabled")
			}
			return nil
		},
		After: func(*cli.Context) error {
			if profile != nil {
				pprof.StopCPUProfile()
				return profile.Close()
			}
			return nil
		},
		Action: func(*cli.Context) error {
			fmt.Println("--help for more information.")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "protocol",
				Usage: "run the text protocol on stdin/stdout",
				Action: func(c *cli.Context) error {
					return runProtocol(c, cfg)
				},
			},
			{
				Name:  "bestmove",
				Usage: "search a position and print the best move",
				Flags: []cli.Flag{
					positionFlag,
					&cli.BoolFlag{Name: "minimax", Usage: "search without pruning"},
					&cli.DurationFlag{Name: "movetime", Usage: "abort the search after this long"},
				},
				Action: func(c *cli.Context) error {
					pos, err := board.ParseFEN(c.String("fen"))
					if err != nil {
						return err
					}
					eng := newEngine(cfg)
					eng.OnInfo = func(info engine.SearchInfo) {
						log.Info().
							Int("depth", info.Depth).
							Uint64("nodes", info.Nodes).
							Uint64("visited", info.Visited).
							Dur("time", info.Time).
							Float64("cache", info.CacheRate).
							Msg("search")
					}
					choice, ok, err := eng.SearchWithLimits(c.Context, pos, engine.SearchLimits{
						Depth:    cfg.SearchDepth(),
						MoveTime: c.Duration("movetime"),
						Minimax:  c.Bool("minimax"),
					})
					if err != nil {
						return err
					}
					if !ok {
						fmt.Println("bestmove none")
						return nil
					}
					fmt.Printf("bestmove %s score %d\n", choice.Move, choice.Score)
					return nil
				},
			},
			{
				Name:  "eval",
				Usage: "print the static evaluation for the side to move",
				Flags: []cli.Flag{positionFlag},
				Action: func(c *cli.Context) error {
					pos, err := board.ParseFEN(c.String("fen"))
					if err != nil {
						return err
					}
					fmt.Println(pos.String())
					fmt.Printf("eval %d\n", engine.Evaluate(pos.Board, pos.SideToMove))
					return nil
				},
			},
			{
				Name:  "perft",
				Usage: "count move tree leaves",
				Flags: []cli.Flag{
					positionFlag,
					&cli.BoolFlag{Name: "divide", Usage: "print the count below each root move"},
				},
				Action: func(c *cli.Context) error {
					pos, err := board.ParseFEN(c.String("fen"))
					if err != nil {
						return err
					}
					depth := cfg.SearchDepth()
					if depth < 1 {
						depth = 1
					}
					eng := newEngine(cfg)
					if !c.Bool("divide") {
						fmt.Printf("perft %d: %d\n", depth, eng.Perft(pos, depth))
						return nil
					}
					moves, counts := eng.PerftDivide(pos, depth)
					var total uint64
					for i, m := range moves {
						fmt.Printf("%s: %d\n", m, counts[i])
						total += counts[i]
					}
					fmt.Printf("nodes %d\n", total)
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "show game statistics",
				Action: func(c *cli.Context) error {
					store, err := storage.OpenDataDir(cfg.DataDir)
					if err != nil {
						return err
					}
					defer store.Close()

					stats, err := store.LoadStats()
					if err != nil {
						return err
					}
					fmt.Printf("games %d wins %d losses %d abandoned %d win-rate %.1f%%\n",
						stats.GamesPlayed, stats.Wins, stats.Losses, stats.Abandoned, stats.GetWinRate())
					fmt.Printf("streak %d longest %d plies %d time %s\n",
						stats.CurrentStreak, stats.LongestWinStrk, stats.TotalPlies, stats.TotalPlayTime)
					return nil
				},
			},
			{
				Name:  "prefs",
				Usage: "show or change saved preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "set-difficulty", Usage: "easy, medium or hard"},
					&cli.StringFlag{Name: "color", Usage: "side the human plays: b or w"},
					&cli.IntFlag{Name: "set-workers", Usage: "worker pool size, 0 = configuration"},
				},
				Action: func(c *cli.Context) error {
					store, err := storage.OpenDataDir(cfg.DataDir)
					if err != nil {
						return err
					}
					defer store.Close()

					prefs, err := store.LoadPreferences()
					if err != nil {
						return err
					}
					changed, err := updatePrefs(c, prefs)
					if err != nil {
						return err
					}
					if changed {
						if err := store.SavePreferences(prefs); err != nil {
							return err
						}
					}
					color := board.Black
					if prefs.PlayerColor == storage.ColorWhite {
						color = board.White
					}
					fmt.Printf("username %s difficulty %s color %s workers %d\n",
						prefs.Username, prefs.Difficulty, color, prefs.Workers)
					return nil
				},
			},
		},
	}
}

// applyFlags lets explicitly set global flags override the configuration.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
		logging.Configure(cfg.LogLevel, cfg.LogPretty)
	}
	if c.IsSet("workers") {
		if c.Int("workers") < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", c.Int("workers"))
		}
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("cache-mb") {
		if c.Int("cache-mb") < 1 {
			return fmt.Errorf("cache-mb must be at least 1, got %d", c.Int("cache-mb"))
		}
		cfg.CacheMB = c.Int("cache-mb")
	}
	if c.IsSet("depth") {
		d := c.Int("depth")
		if d < 0 || d > engine.MaxDepth {
			return fmt.Errorf("depth must be in [0, %d]", engine.MaxDepth)
		}
		cfg.Depth = d
	}
	if c.IsSet("difficulty") {
		d, err := engine.ParseDifficulty(c.String("difficulty"))
		if err != nil {
			return err
		}
		cfg.Difficulty = d
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	return nil
}

func updatePrefs(c *cli.Context, prefs *storage.UserPreferences) (bool, error) {
	changed := false
	if c.IsSet("username") {
		prefs.Username = c.String("username")
		changed = true
	}
	if c.IsSet("set-difficulty") {
		d, err := engine.ParseDifficulty(c.String("set-difficulty"))
		if err != nil {
			return false, err
		}
		prefs.Difficulty = storage.Difficulty(d)
		changed = true
	}
	if c.IsSet("color") {
		side, ok := board.ParseSide(c.String("color"))
		if !ok {
			return false, fmt.Errorf("invalid color: %s", c.String("color"))
		}
		prefs.PlayerColor = storage.ColorBlack
		if side == board.White {
			prefs.PlayerColor = storage.ColorWhite
		}
		changed = true
	}
	if c.IsSet("set-workers") {
		if c.Int("set-workers") < 0 {
			return false, fmt.Errorf("invalid worker count: %d", c.Int("set-workers"))
		}
		prefs.Workers = c.Int("set-workers")
		changed = true
	}
	return changed, nil
}

func newEngine(cfg *config.Config) *engine.Engine {
	eng := engine.NewEngine(pool.New(cfg.Workers), cfg.CacheMB)
	eng.SetDifficulty(cfg.Difficulty)
	return eng
}

// runProtocol serves the text protocol. Saved preferences fill in what the
// environment and flags leave open; finished games are recorded when the
// data directory can be opened.
func runProtocol(c *cli.Context, cfg *config.Config) error {
	var recorder game.ResultRecorder
	human := board.White

	store, err := storage.OpenDataDir(cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("statistics disabled")
	} else {
		defer store.Close()
		recorder = store

		prefs, err := store.LoadPreferences()
		if err != nil {
			return err
		}
		if prefs.PlayerColor == storage.ColorBlack {
			human = board.Black
		}
		if !explicit(c, "difficulty", config.EnvDifficulty) {
			cfg.Difficulty = engine.Difficulty(prefs.Difficulty)
		}
		if prefs.Workers > 0 && !explicit(c, "workers", config.EnvWorkers) {
			cfg.Workers = prefs.Workers
		}
		if err := store.SavePreferences(prefs); err != nil {
			log.Warn().Err(err).Msg("could not save preferences")
		}
	}

	eng := newEngine(cfg)
	var mover game.Mover = eng
	if cfg.Depth >= 0 {
		depth := cfg.Depth
		mover = game.MoverFunc(func(ctx context.Context, pos *board.Position) (engine.Choice, bool, error) {
			return eng.BestMove(ctx, pos, depth)
		})
	}

	log.Info().
		Int("workers", eng.Pool().Workers()).
		Str("difficulty", eng.Difficulty().String()).
		Str("human", strings.ToLower(human.String())).
		Msg("protocol ready")

	p := protocol.New(eng, game.NewManager(mover, recorder), cfg.Depth, os.Stdout)
	var players [2]game.PlayerKind
	players[human] = game.Human
	players[human.Other()] = game.Computer
	p.SetPlayers(players)
	return p.Run(c.Context, os.Stdin)
}

// explicit reports whether a setting came from a flag or the environment.
func explicit(c *cli.Context, flag, env string) bool {
	if c.IsSet(flag) {
		return true
	}
	v, ok := os.LookupEnv(env)
	return ok && strings.TrimSpace(v) != ""
}
