// Command popsim runs a population simulation headless, fast-forwarding by
// default, and prints a summary report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/api"
	"github.com/talgya/populace/internal/config"
	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/persistence"
)

// policyList collects repeated -policy flags.
type policyList []string

func (p *policyList) String() string { return strings.Join(*p, ",") }

func (p *policyList) Set(v string) error {
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*p = append(*p, id)
		}
	}
	return nil
}

type flags struct {
	config   string
	years    int
	seed     int64
	realtime bool
	speed    string
	policies policyList
	journal  string
	events   string
	http     string
	verbose  bool
}

func parseFlags(args []string) (flags, map[string]bool, error) {
	var f flags
	fs := flag.NewFlagSet("popsim", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML run configuration")
	fs.IntVar(&f.years, "years", 0, "years to simulate (overrides config)")
	fs.Int64Var(&f.seed, "seed", 0, "random seed (overrides config; 0 = random)")
	fs.BoolVar(&f.realtime, "realtime", false, "pace ticks with the wall clock instead of fast-forwarding")
	fs.StringVar(&f.speed, "speed", "", "realtime speed: paused, 1x, 2x, 5x, 10x")
	fs.Var(&f.policies, "policy", "policy id to enact at start (repeatable)")
	fs.StringVar(&f.journal, "journal", "", "SQLite chronicle path")
	fs.StringVar(&f.events, "events", "", "directory for the zstd JSONL event log")
	fs.StringVar(&f.http, "http", "", "serve a read-only JSON API on this address while playing in realtime")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return f, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

func main() {
	f, set, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(f, set)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, f, os.Stdout); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(f flags, set map[string]bool) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}
	if set["years"] {
		cfg.Years = f.years
	}
	if set["seed"] {
		cfg.Seed = f.seed
	}
	if set["journal"] {
		cfg.Output.Journal = f.journal
	}
	if set["events"] {
		cfg.Output.Events = f.events
	}
	if set["speed"] {
		s, err := engine.ParseSpeed(f.speed)
		if err != nil {
			return cfg, err
		}
		cfg.Clock.Speed = float64(s)
	}
	cfg.Activate = append(cfg.Activate, f.policies...)
	if cfg.Years <= 0 {
		return cfg, fmt.Errorf("years must be positive, got %d", cfg.Years)
	}
	return cfg, nil
}

// run wires the sinks, plays the game to its end or the year limit and writes
// the report to out.
func run(cfg config.Config, f flags, out io.Writer) error {
	tally := &tally{counts: map[engine.EventKind]int{}}
	sinks := engine.MultiSink{tally}

	var chronicle *persistence.Chronicle
	if cfg.Output.Journal != "" {
		c, err := persistence.Open(cfg.Output.Journal)
		if err != nil {
			return err
		}
		defer c.Close()
		chronicle = c
		sinks = append(sinks, c)
		slog.Info("chronicle opened", "path", cfg.Output.Journal)
	}

	// The event log is named after the run, so the game is created first and
	// the log sink is attached through a forwarding sink.
	fwd := &forward{}
	sinks = append(sinks, fwd)
	game := engine.NewGame(cfg.Options(), cfg.Interval(), sinks)
	runID := game.RunID()

	if cfg.Output.Events != "" {
		l, err := persistence.CreateEventLog(cfg.Output.Events, runID)
		if err != nil {
			return err
		}
		defer func() {
			if err := l.Close(); err != nil {
				slog.Warn("event log close failed", "error", err)
			}
		}()
		fwd.to = l
		slog.Info("event log opened", "path", l.Path())
	}

	if chronicle != nil {
		if err := chronicle.BeginRun(runID, cfg.Seed, cfg.Population, time.Now()); err != nil {
			return err
		}
	}

	for _, id := range cfg.Activate {
		if err := game.ActivatePolicy(id); err != nil {
			return fmt.Errorf("enact %s: %w", id, err)
		}
	}

	slog.Info("populace simulation starting",
		"run", runID,
		"seed", cfg.Seed,
		"population", cfg.Population,
		"years", cfg.Years,
		"realtime", f.realtime,
	)

	limit := int64(cfg.Years) * agents.TicksPerYear
	hist := &historyWriter{chronicle: chronicle}
	if f.realtime {
		if err := playRealtime(game, cfg, f.http, limit, hist); err != nil {
			return err
		}
	} else {
		for game.CurrentTick() < limit && game.Step() {
			if engine.IsYearEnd(game.CurrentTick()) {
				if err := hist.sync(game.Snapshot()); err != nil {
					return err
				}
			}
		}
	}

	snap := game.Snapshot()
	if err := hist.sync(snap); err != nil {
		return err
	}
	if chronicle != nil && snap.Ending != nil {
		if err := chronicle.EndRun(*snap.Ending); err != nil {
			return err
		}
	}

	writeReport(out, snap, tally)
	return nil
}

// playRealtime drives the game from the wall clock until it ends, reaches the
// tick limit or the process is signalled. A non-empty addr also serves the
// read-only API for the duration of play.
func playRealtime(game *engine.Game, cfg config.Config, addr string, limit int64, hist *historyWriter) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := game.SetSpeed(cfg.Speed()); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		game.Run(runCtx)
		close(done)
	}()
	if addr != "" {
		srv := api.NewServer(game, addr)
		go func() {
			if err := srv.Serve(runCtx); err != nil {
				slog.Error("HTTP server error", "error", err)
			}
		}()
	}
	game.Start()

	poll := time.NewTicker(250 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			cancel()
			<-done
			return nil
		case <-poll.C:
			snap := game.Snapshot()
			if err := hist.sync(snap); err != nil {
				cancel()
				<-done
				return err
			}
			if snap.Ending != nil || snap.Tick >= limit {
				game.Pause()
				cancel()
				<-done
				return nil
			}
		}
	}
}
