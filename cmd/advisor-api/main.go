package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advisorapi/cmd/migration/initialize"
	"advisorapi/cmd/migration/seed"
	"advisorapi/config"
	"advisorapi/internal/app"
	"advisorapi/internal/database"
	"advisorapi/internal/handlers"
	"advisorapi/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "advisor-api",
		Short:         "Advisor records API",
		Long:          "advisor-api serves create, read, update and delete for advisor records with masked sin and phone output.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down]",
			Short:     "Apply or roll back the database migrations",
			Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down"},
			RunE: func(cmd *cobra.Command, args []string) error {
				direction := "up"
				if len(args) == 1 {
					direction = args[0]
				}
				return runMigrate(direction)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the development advisors if they are missing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed()
			},
		},
		&cobra.Command{
			Use:   "flush-cache",
			Short: "Empty the valkey cache databases",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFlushCache()
			},
		},
	)

	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return config.Config{}, err
	}
	if cfg.GeneralVersion == "" || cfg.GeneralVersion == "dev" {
		cfg.GeneralVersion = version
	}

	logger.Init(cfg.LogLevel, cfg.Environment != "development")
	return cfg, nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("main").Function("serve")

	a, err := app.NewWithConfig(cfg)
	if err != nil {
		return log.Err("failed to build app", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	if err := initialize.InitializeTables(a.Database, cfg, log); err != nil {
		return err
	}

	server := fiber.New(fiber.Config{
		AppName:               "advisor-api " + cfg.GeneralVersion,
		DisableStartupMessage: cfg.IsProduction(),
	})
	server.Use(recover.New())

	if err := handlers.Router(server, a); err != nil {
		return log.Err("failed to register routes", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf(":%d", cfg.ServerPort)
		log.Info("Starting server", "address", address, "driver", cfg.DatabaseDriver)
		listenErr <- server.Listen(address)
	}()

	select {
	case err := <-listenErr:
		return log.Err("server stopped", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return log.Err("failed to shut down server", err)
	}

	return nil
}

func runMigrate(direction string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("main").Function("migrate")

	db, err := database.New(cfg)
	if err != nil {
		return log.Err("failed to open database", err)
	}
	defer db.Close()

	migrationDirection := migrate.Up
	if direction == "down" {
		migrationDirection = migrate.Down
	}

	applied, err := db.Migrate(migrationDirection)
	if err != nil {
		return err
	}

	log.Info("Migration finished", "direction", direction, "applied", applied)
	return nil
}

func runSeed() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("main").Function("seed")

	db, err := database.New(cfg)
	if err != nil {
		return log.Err("failed to open database", err)
	}
	defer db.Close()

	if db.SQL == nil {
		return errors.New("seed needs a sqlite or postgres database")
	}

	if err := initialize.InitializeTables(db, cfg, log); err != nil {
		return err
	}

	created, err := seed.Seed(db.SQL, cfg, log)
	if err != nil {
		return err
	}

	log.Info("Seed finished", "created", created)
	return nil
}

func runFlushCache() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("main").Function("flushCache")

	if !cfg.CacheEnabled() {
		return errors.New("no cache configured")
	}

	db, err := database.New(cfg)
	if err != nil {
		return log.Err("failed to open database", err)
	}
	defer db.Close()

	return db.FlushAllCaches()
}
