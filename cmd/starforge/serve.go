/*
Package main
File: cmd/starforge/serve.go
Description:
    `starforge serve` — composes every component into a running process:
    config, balance tables, the store, world generator, the sim engine,
    every session manager, the dispatch router, and the transport hub,
    then listens until SIGTERM/SIGINT. Grounded on the teacher's main.go
    init-then-serve shape (load config, start background loop, mount
    routes, block on ListenAndServe) and its SIGHUP hot-reload idiom,
    generalized from a single global Hub/game state to an explicit,
    locally-scoped composition root per spec.md §9's redesign flag.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/voidreach/starforge/internal/audit"
	"github.com/voidreach/starforge/internal/auth"
	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/dispatch"
	"github.com/voidreach/starforge/internal/fleet"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/loot"
	"github.com/voidreach/starforge/internal/market"
	"github.com/voidreach/starforge/internal/mining"
	"github.com/voidreach/starforge/internal/shipsvc"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/worldgen"
	"github.com/voidreach/starforge/internal/wormhole"
)

func serveCmd() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the galaxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLevel(logLevel)
			return runServe()
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func runServe() error {
	log := logging.For("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	bal, err := balance.NewStore(cfg.BalancePath)
	if err != nil {
		return fmt.Errorf("load balance table: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	gen := worldgen.New(cfg.GalaxySeed, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)

	sessions := auth.NewSessionStore(cfg.TokenExpiry)
	spawner := sim.NewSpawner(gen, cfg.SectorSize)
	authSvc := auth.NewService(st, bal, sessions, spawner, cfg.DefaultHullHP, cfg.DefaultShieldHP, cfg.LoginRateLimit, cfg.RegisterRateLimit)
	shipSvc := shipsvc.NewService(st, bal, engine)
	miningMgr := mining.NewManager(engine, st, bal, gen, cfg)
	lootMgr := loot.NewManager(engine, st)
	marketSvc := market.NewService(st, engine)
	fleetMgr := fleet.NewManager(st, engine)
	wormholeMgr := wormhole.NewManager(engine, st, gen, cfg)
	engine.SetWormholeTicker(wormholeMgr)

	disp := dispatch.New(authSvc, shipSvc, miningMgr, lootMgr, marketSvc, fleetMgr, wormholeMgr, engine, st)
	hub := transport.NewHub(cfg.MaxConns, disp)
	engine.SetSender(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run()
	go engine.Run(ctx)

	// SIGHUP reloads config/balance.yaml without a restart, the same
	// hot-reload idiom the teacher's main.go used for universe.yaml.
	go func() {
		sighup := make(chan os.Signal, 1)
		signal.Notify(sighup, syscall.SIGHUP)
		for range sighup {
			log.Infof("reloading balance table from %s", cfg.BalancePath)
			if err := bal.Reload(); err != nil {
				log.Errorf("balance reload failed: %v", err)
				continue
			}
			log.Infof("balance table reloaded")
		}
	}()

	router := chi.NewRouter()
	router.Get("/ws", hub.ServeWs)
	router.Get("/health", audit.HealthHandler(engine))

	server := &http.Server{Addr: cfg.Addr(), Handler: router}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		cancel()
		return err
	case sig := <-shutdown:
		log.Infof("received %s, shutting down", sig)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
		return err
	}

	<-serveErr
	log.Infof("shutdown complete")
	return nil
}
