package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/api"
	"github.com/talgya/candymarket/internal/config"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/engine"
	"github.com/talgya/candymarket/internal/persistence"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Run the candy economy. A saved world in the database is resumed;
otherwise a fresh population is spawned from the seed.

Examples:
  candysim run                          # defaults, fresh or resumed world
  candysim run --config candy.yaml      # custom candy table and settings
  candysim run --agents 50 --seed 7     # bigger fresh world
  candysim run --ticks 6000             # batch: run N ticks, save, exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dbPath, _ := cmd.Flags().GetString("db")
			seed, _ := cmd.Flags().GetInt64("seed")
			numAgents, _ := cmd.Flags().GetInt("agents")
			apiPort, _ := cmd.Flags().GetInt("port")
			speed, _ := cmd.Flags().GetFloat64("speed")
			ticks, _ := cmd.Flags().GetUint64("ticks")
			fresh, _ := cmd.Flags().GetBool("fresh")
			verbose, _ := cmd.Flags().GetBool("verbose")

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			return runSimulation(configPath, dbPath, seed, numAgents, apiPort, speed, ticks, fresh)
		},
	}

	cmd.Flags().String("config", "", "Path to YAML config (empty = built-in defaults)")
	cmd.Flags().String("db", "data/candymarket.db", "SQLite database path")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = use config value)")
	cmd.Flags().Int("agents", 0, "Population size (0 = use config value)")
	cmd.Flags().Int("port", 8080, "HTTP API port")
	cmd.Flags().Float64("speed", 1.0, "Simulation speed multiplier")
	cmd.Flags().Uint64("ticks", 0, "Run exactly N ticks then exit (0 = run until interrupted)")
	cmd.Flags().Bool("fresh", false, "Ignore saved world state and start over")
	cmd.Flags().Bool("verbose", false, "Debug logging (per-trade detail)")

	return cmd
}

func runSimulation(configPath, dbPath string, seed int64, numAgents, apiPort int, speed float64, ticks uint64, fresh bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if numAgents == 0 {
		numAgents = cfg.Simulation.NumAgents
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	market := economy.NewMarket(cfg.CandyTypes, cfg.Economy)
	spawner := agents.NewSpawner(seed)

	var population []*agents.Agent
	var startTick uint64

	if !fresh && db.HasWorldState() {
		slog.Info("found saved world state, loading...")

		population, err = db.LoadAgents()
		if err != nil {
			return fmt.Errorf("load agents: %w", err)
		}

		history, err := db.LoadTrades()
		if err != nil {
			return fmt.Errorf("load trades: %w", err)
		}

		if tickStr, err := db.GetMeta("last_tick"); err == nil {
			if t, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
				startTick = t
			}
		}
		market.Restore(history, float64(startTick)*engine.DefaultTickSeconds)

		var maxID agents.AgentID
		for _, a := range population {
			// Blocs are not restored; stale membership would point at
			// a bloc the manager does not know about.
			a.BlocID = nil
			if a.ID > maxID {
				maxID = a.ID
			}
		}
		spawner.SetNextID(maxID + 1)

		slog.Info("world state restored",
			"agents", len(population),
			"trades", len(history),
			"tick", startTick,
		)
	} else {
		slog.Info("spawning fresh population", "agents", numAgents, "seed", seed)
		population = spawner.SpawnPopulation(numAgents, cfg.Simulation.WorldWidth, cfg.Simulation.WorldHeight, market)
	}

	sim := engine.NewSimulation(market, population, seed)
	sim.AIInterval = cfg.Simulation.AITickInterval
	sim.TradeRadius = cfg.Simulation.TradeRadius
	sim.SetLastTick(startTick)

	if startTick == 0 {
		if err := db.SaveWorldState(sim.Snapshot()); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Tick = startTick
	eng.Speed = speed
	eng.OnTick = sim.Step
	eng.OnSummary = func(tick uint64) {
		sim.LogSummary(tick)
		if err := db.SaveWorldState(sim.Snapshot()); err != nil {
			slog.Error("periodic save failed", "error", err)
		}
	}

	adminKey := os.Getenv("CANDYSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("CANDYSIM_ADMIN_KEY not set, admin POST endpoints disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	fmt.Printf("\nThe playground is open: %d kids, %d candy types.\n",
		len(population), len(market.Goods()))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %s\n", humanize.Comma(int64(startTick)))
	}

	if ticks > 0 {
		// Batch mode: step without the real-time loop.
		slog.Info("batch run", "ticks", ticks)
		for i := uint64(0); i < ticks; i++ {
			eng.Step()
		}
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)
			eng.Stop()
		}()

		fmt.Println("Starting simulation... (Ctrl+C to stop)")
		eng.Run()
	}

	slog.Info("final save...")
	if err := db.SaveWorldState(sim.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	stats := sim.Stats()
	fmt.Printf("Simulation stopped at tick %s. %s trades executed, %s rejected.\n",
		humanize.Comma(int64(eng.Tick)),
		humanize.Comma(int64(stats.TradesExecuted)),
		humanize.Comma(int64(stats.TradesRejected)))
	return nil
}
