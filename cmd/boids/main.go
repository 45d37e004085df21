// Command boids opens an ebiten window on the flock.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/viewer"
)

func main() {
	configFile := flag.String("config", "", "JSON or YAML config file (defaults are used when empty)")
	schemaFile := flag.String("schema", "", "JSON schema overriding the embedded one")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, *schemaFile); err != nil {
			log.Fatal(err)
		}
	}

	logger, err := simulation.NewLogger(cfg.LogLevel, uuid.New())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	system, err := simulation.StartSystem(ctx, "SwarmWorld", golog.DiscardLogger)
	if err != nil {
		logger.Fatal("actor system", zap.Error(err))
	}
	defer system.Stop(ctx)

	game, err := viewer.NewGame(ctx, cfg, system)
	if err != nil {
		logger.Fatal("viewer", zap.Error(err))
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Boids + Kalman")
	ebiten.SetTPS(cfg.TickRate)
	logger.Info("viewer starting", zap.Int("agents", cfg.NumAgents), zap.String("sensor", cfg.Sensor.Model))
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
	}
}
