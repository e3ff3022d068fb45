package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ws-backend/auth"
	"ws-backend/internal"
	"ws-backend/runtime"
	"ws-backend/runtime/workers"
	"ws-backend/server"
	"ws-backend/services"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until SIGINT or SIGTERM.
// Deferred cleanups (store, redis) run before main exits.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Persistence
	store, closeStore, err := openStore(ctx, config, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Live state & routing
	registry := runtime.NewRegistry()
	membership := runtime.NewMembership(registry, log)
	broadcaster := runtime.NewBroadcaster(registry, log)
	chat := services.NewChatService(store, config.StrictPersistence, config.PersistTimeout, log)
	router := runtime.NewRouter(registry, membership, chat, broadcaster, log)

	// 5. WebSocket front door
	verifier := auth.NewVerifier(config.JWTSecret, config.JWTIssuer)
	ws := server.NewWSHandler(
		verifier, registry, router,
		server.NewOriginPolicy(config.Origins(), log),
		server.ConnConfig{
			BufferSize:     config.ConnectionBufferSize,
			MaxMessageSize: int64(config.MaxMessageSize),
			WriteTimeout:   config.WriteTimeout,
			PongWait:       config.PongWait,
		},
		log,
	)
	srv := server.NewServer(config.Addr(), ws, registry, config.ShutdownTimeout, log)

	// 6. Supervision
	log.Info("Starting ws-backend",
		"addr", config.Addr(),
		"store", config.StoreDriver,
		"strict_persistence", config.StrictPersistence,
		"at", time.Now().UTC())
	workers.NewSupervisor(log, config.RestartInterval).
		Add(srv, workers.NewStatsWorker(log, registry, config.StatsInterval)).
		Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
