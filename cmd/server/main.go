// Command server is the connection core's entrypoint: it loads
// configuration, bootstraps the database and RSA keypair, and runs the
// accept loop until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/mcgo/internal/auth"
	"github.com/udisondev/mcgo/internal/config"
	"github.com/udisondev/mcgo/internal/connection"
	"github.com/udisondev/mcgo/internal/crypto"
	"github.com/udisondev/mcgo/internal/db"
	"github.com/udisondev/mcgo/internal/gameserver"
	"github.com/udisondev/mcgo/internal/level"
	"github.com/udisondev/mcgo/internal/registry"
	"github.com/udisondev/mcgo/internal/world"
)

const configPath = "config/server.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := configPath
	if p := os.Getenv("MCGO_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("mcgo starting", "bind", fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port))

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating RSA keypair: %w", err)
	}

	profiles := db.NewProfileRepository(database)
	authenticator := auth.NewOfflineAuthenticator(profiles)

	levelProvider := &level.FlatWorldProvider{Workers: 8}

	w := world.New(world.Config{
		Hardcore:           cfg.Hardcore,
		MaxPlayers:         int32(cfg.MaxPlayers),
		ViewDistance:       int32(cfg.ViewDistance),
		SimulationDistance: int32(cfg.SimulationDistance),
		DefaultGameMode:    cfg.GameModeByte(),
		DimensionName:      "minecraft:overworld",
	}, levelProvider)

	collab := connection.Collaborators{
		Table:                registry.Default(),
		Auth:                 authenticator,
		RSAKeyPair:           keyPair,
		CompressionThreshold: cfg.CompressionThreshold,
		CompressionLevel:     cfg.CompressionLevel,
	}

	srv := gameserver.New(fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port), collab, w)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
