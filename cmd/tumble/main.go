package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akmonengine/tumble"
	"github.com/akmonengine/tumble/assets"
	"github.com/akmonengine/tumble/config"
	"github.com/akmonengine/tumble/engine"
	"github.com/akmonengine/tumble/input"
	"github.com/akmonengine/tumble/render"
	"github.com/akmonengine/tumble/transport/ws"
)

type flags struct {
	configPath string
	addr       string
	stateDir   string
	tps        int
	autostart  bool
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.configPath, "config", "tumble.yaml", "YAML configuration file")
	flag.StringVar(&f.addr, "addr", "", "viewer listen address (overrides server.addr)")
	flag.StringVar(&f.stateDir, "state-dir", "", "saved scene directory (overrides storage.dir)")
	flag.IntVar(&f.tps, "tps", 0, "ticks per second (overrides engine.tick_rate)")
	flag.BoolVar(&f.autostart, "autostart", false, "start ticking without waiting for a viewer")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tumble - a box tumbling inside walls, streamed to a websocket viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	return f
}

func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.stateDir != "" {
		cfg.Storage.Dir = f.stateDir
	}
	if f.tps != 0 {
		cfg.Engine.TickRate = f.tps
	}

	return cfg, cfg.Validate()
}

func main() {
	f := parseFlags()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Fatalf("[Main] %v", err)
	}

	store := assets.NewStore(logger)
	simulation := tumble.NewSimulation(cfg.Scene, store, logger)
	simulation.Events.Subscribe(tumble.CONTACT_ENTER, func(event tumble.Event) {
		logger.Printf("[Simulation] hit %v", event.(tumble.ContactEnterEvent).Face)
	})
	stream := render.NewStream(simulation, logger)
	accelerometer := input.NewAccelerometer(cfg.Input, simulation, logger)

	eng := engine.New(engine.Collaborators{
		Assets:   store,
		Physics:  simulation,
		Renderer: stream,
		Input:    accelerometer,
	}, cfg.Engine, engine.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Initialize(engine.InitParams{AssetsDir: cfg.Storage.Dir})
	if err := eng.WaitInitialized(ctx); err != nil {
		logger.Printf("[Main] %v", err)
		eng.Finalize()
		stop()
		os.Exit(1)
	}
	if f.autostart {
		eng.Start()
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, ws.NewServer(eng, accelerometer, logger))
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("[Main] viewer endpoint ws://%s%s", cfg.Server.Addr, cfg.Server.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("[Main] http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("[Main] http shutdown: %v", err)
	}

	if err := eng.Finalize(); err != nil {
		logger.Printf("[Main] %v", err)
		os.Exit(1)
	}
}
