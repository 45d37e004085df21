// Command server ticks the flock in real time and streams every snapshot to
// websocket viewers on /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/internal/stream"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "JSON or YAML config file (defaults are used when empty)")
	schemaFile := flag.String("schema", "", "JSON schema overriding the embedded one")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	if err := run(*configFile, *schemaFile, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, schemaFile, addr string) error {
	cfg := simulation.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(configFile, schemaFile); err != nil {
			return err
		}
	}

	logger, err := simulation.NewLogger(cfg.LogLevel, uuid.New())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := simulation.StartSystem(ctx, "SwarmServer", golog.New(golog.InfoLevel, os.Stderr))
	if err != nil {
		return err
	}
	defer system.Stop(context.Background())

	snapshots := make(chan *simulation.WorldSnapshot, 4)
	world, err := system.Spawn(ctx, "world", simulation.NewWorldActor(cfg, snapshots))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	hub := stream.NewHub(logger.Named("stream"))
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/snapshot", snapshotHandler(world, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr), zap.Int("agents", cfg.NumAgents), zap.Int("tickRate", cfg.TickRate))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		hub.Run(gctx, snapshots)
		return nil
	})
	g.Go(func() error {
		return tickLoop(gctx, world, cfg, logger)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// tickLoop tells the world one tick per interval until ctx is done.
func tickLoop(ctx context.Context, world *actor.PID, cfg *simulation.Config, logger *zap.Logger) error {
	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()
	tick := durationpb.New(0) // config dt
	sent := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("tick loop stopped", zap.Int("ticksSent", sent))
			return nil
		case <-ticker.C:
			if err := actor.Tell(ctx, world, tick); err != nil {
				return fmt.Errorf("tick %d: %w", sent, err)
			}
			sent++
			if cfg.Ticks > 0 && sent >= cfg.Ticks {
				logger.Info("tick budget reached, world paused", zap.Int("ticks", sent))
				<-ctx.Done()
				return nil
			}
		}
	}
}

func snapshotHandler(world *actor.PID, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pb, err := simulation.AskSnapshot(r.Context(), world, 5*time.Second)
		if err != nil {
			logger.Warn("snapshot request failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		data, err := protojson.Marshal(pb)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}
