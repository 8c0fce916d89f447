package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/SquadMinimax/internal/config"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/events"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
	"github.com/mitchelldurbincs/SquadMinimax/internal/inspect"
	"github.com/mitchelldurbincs/SquadMinimax/internal/monitoring"
	"github.com/mitchelldurbincs/SquadMinimax/internal/scenario"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	scenarioPath := flag.String("scenario", "", "Scenario YAML (empty to use config, then random generation)")
	seed := flag.Int64("seed", -1, "Seed for random scenarios (-1 to use config default)")
	depth := flag.Int("depth", -1, "Plies to count below the root (-1 to use config default)")
	workers := flag.Int("workers", -1, "Parallel subtree walkers (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	dumpPath := flag.String("dump", "", "Write the starting scenario as YAML to this path")
	noColor := flag.Bool("no-color", false, "Render the board without ANSI colors")
	progress := flag.Duration("progress", -1, "Progress log interval while counting (0 disables, -1 to use config default)")
	watch := flag.Bool("watch", false, "Keep running and re-score the root when the config file changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *scenarioPath == "" {
		*scenarioPath = cfg.Scenario.Path
	}
	if *seed < 0 {
		*seed = int64(cfg.Scenario.Random.Seed)
	}
	if *depth < 0 {
		*depth = cfg.Inspect.Depth
	}
	if *workers < 0 {
		*workers = cfg.Inspect.Workers
	}
	if *progress < 0 {
		*progress = cfg.Inspect.ProgressInterval
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := loadObservation(*scenarioPath, cfg.GeneratorConfig(), uint64(*seed))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scenario")
	}
	if *dumpPath != "" {
		if err := dumpObservation(*dumpPath, obs); err != nil {
			log.Fatal().Err(err).Msg("Failed to write scenario")
		}
	}

	root, err := world.FromObservation(obs)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid observation")
	}

	bus := events.NewEventBus(log.Logger)
	eventLog := subscribers.NewLoggerSubscriber("cli-events", log.Logger, zerolog.DebugLevel)
	bus.Subscribe(eventLog)

	engine, err := game.NewEngine(ctx, game.EngineConfig{
		Logger:   log.Logger,
		EventBus: bus,
		Weights:  cfg.Weights(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	log.Info().
		Str("search_id", engine.SearchID()).
		Str("scenario", scenarioName(*scenarioPath, *seed)).
		Int("depth", *depth).
		Int("workers", *workers).
		Msg("Inspecting root state")

	out := os.Stdout
	fmt.Fprintln(out, root.Render(!*noColor))
	printScore(out, engine, root)

	children, err := engine.Successors(root)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to expand root")
	}
	fmt.Fprintf(out, "\n%d successors:\n", len(children))
	for _, c := range children {
		fmt.Fprintf(out, "  %-40s utility=%.3f\n", c.Action, engine.Utility(c.State))
	}

	var monitor *monitoring.ProgressMonitor
	if *progress > 0 {
		monitor = monitoring.NewProgressMonitor(engine, *progress)
		monitor.Start()
	}
	res, err := inspect.NewCounter(engine, inspect.WithWorkers(*workers), inspect.WithLogger(log.Logger)).Count(ctx, root, *depth)
	if monitor != nil {
		m := monitor.Stop()
		log.Info().Int("peak_goroutines", m.PeakGoroutines).Dur("elapsed", m.Elapsed).Msg("Progress monitor stopped")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Tree count failed")
	}
	fmt.Fprintln(out, "\nnodes per depth:")
	for d, n := range res.Nodes {
		fmt.Fprintf(out, "  %2d  %d\n", d, n)
	}
	stats := engine.Stats()
	fmt.Fprintf(out, "total=%d terminals=%d elapsed=%s\n", res.Total(), res.Terminals, res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "expansions=%d generated=%d rejected=%d\n", stats.Expansions, stats.Generated, stats.Rejected)

	if !*watch {
		return
	}
	if config.ConfigFilePath() == "" {
		log.Fatal().Msg("--watch needs a config file")
	}
	config.WatchConfig(func(err error) {
		if err != nil {
			log.Error().Err(err).Msg("Ignoring invalid config change")
			return
		}
		engine.SetWeights(config.Get().Weights())
		printScore(out, engine, root)
	})
	log.Info().Str("config", config.ConfigFilePath()).Msg("Watching config for weight changes")
	<-ctx.Done()
}

func loadObservation(path string, gen scenario.GeneratorConfig, seed uint64) (world.Observation, error) {
	if path != "" {
		return scenario.Load(path)
	}
	return scenario.NewSeededGenerator(gen, seed).Generate()
}

func dumpObservation(path string, obs world.Observation) error {
	data, err := scenario.Marshal(obs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func scenarioName(path string, seed int64) string {
	if path != "" {
		return path
	}
	return fmt.Sprintf("random(seed=%d)", seed)
}

func printScore(out io.Writer, engine *game.Engine, s *world.State) {
	f := engine.Features(s)
	fmt.Fprintf(out, "utility=%.3f terminal=%t\n", engine.Utility(s), engine.IsTerminal(s))
	fmt.Fprintf(out, "  player_hp=%.0f enemy_hp=%.0f friendlies=%.0f enemies=%.0f cornered=%.0f\n",
		f.PlayerHitpoints, f.EnemyHitpoints, f.FriendliesAlive, f.EnemiesAlive, f.EnemyCornered)
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
