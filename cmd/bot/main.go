package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"goalwire/bot/internal/app"
	"goalwire/bot/internal/config"
	"goalwire/bot/internal/database"
	"goalwire/bot/internal/database/migrations"
	"goalwire/bot/internal/repo"
	"goalwire/bot/internal/server"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func usage() {
	fmt.Println("Usage: bot [command] [options]")
	fmt.Println("Commands: seed, start, serve, migrate")
	fmt.Println("\nFor command-specific options, use: bot [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: GOALWIRE_DB_PATH)")
	seedCmd.StringVar(&cfg.SourcesPath, "sources", cfg.SourcesPath,
		"Path to the sources YAML file (env: GOALWIRE_SOURCES_PATH)")

	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	startCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: GOALWIRE_DB_PATH)")
	startCmd.StringVar(&cfg.SourcesPath, "sources", cfg.SourcesPath,
		"Path to the sources YAML file (env: GOALWIRE_SOURCES_PATH)")
	var oneShot bool
	startCmd.BoolVar(&oneShot, "once", false, "Run a single news cycle and exit")
	var startLogLevelStr string
	startCmd.StringVar(&startLogLevelStr, "log-level", config.GetEnvString("GOALWIRE_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: GOALWIRE_LOG_LEVEL)")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: GOALWIRE_DB_PATH)")
	serveCmd.StringVar(&cfg.ServerHost, "host", cfg.ServerHost,
		"Host to bind the server to (env: GOALWIRE_SERVER_HOST)")
	serveCmd.IntVar(&cfg.ServerPort, "port", cfg.ServerPort,
		"Port to listen on (env: GOALWIRE_SERVER_PORT)")
	var serveLogLevelStr string
	serveCmd.StringVar(&serveLogLevelStr, "log-level", config.GetEnvString("GOALWIRE_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: GOALWIRE_LOG_LEVEL)")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: GOALWIRE_DB_PATH)")
	var rollback int
	migrateCmd.IntVar(&rollback, "rollback", 0, "Roll back the last N migrations instead of migrating up")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		seedCmd.Parse(os.Args[2:])
		if err := runSeed(cfg); err != nil {
			log.Error().Err(err).Msg("Seed failed")
			os.Exit(1)
		}

	case "start":
		startCmd.Parse(os.Args[2:])
		if level, err := zerolog.ParseLevel(startLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runStart(cfg, oneShot); err != nil {
			log.Error().Err(err).Msg("Bot failed")
			os.Exit(1)
		}

	case "serve":
		serveCmd.Parse(os.Args[2:])
		if level, err := zerolog.ParseLevel(serveLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runServe(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		if err := runMigrate(cfg, rollback); err != nil {
			log.Error().Err(err).Msg("Migration failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		usage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}
}

// runSeed opens the database (running migrations) and syncs the source
// list from the YAML file or built-in defaults.
func runSeed(cfg *config.Config) error {
	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return app.SeedSources(context.Background(), cfg, repo.New(db), log.Logger)
}

// runStart runs the bot until interrupted, or for a single news cycle
// with -once.
func runStart(cfg *config.Config, oneShot bool) error {
	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	bot, err := app.New(cfg, db, log.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if oneShot {
		log.Info().Msg("Running in one-shot mode")
		return bot.RunOnce(ctx)
	}

	if err := bot.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

// runServe starts the read-only status API against the database.
func runServe(cfg *config.Config) error {
	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = true
	db, err := database.NewDB(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return server.RunServer(db, cfg.ListenAddr(), log.Logger, cfg.APIKey)
}

// runMigrate applies pending migrations, or rolls back the last N with
// -rollback.
func runMigrate(cfg *config.Config, rollback int) error {
	if rollback <= 0 {
		// Opening the database runs pending migrations.
		db, err := database.NewDB(database.NewConfig(cfg.DBPath))
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		return db.Close()
	}

	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	migrationFiles, err := migrations.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	return migrations.RollbackMigrations(db.DB.DB, migrationFiles, rollback)
}
