// Command simulation runs the flock headless for a fixed number of ticks and
// prints the final world snapshot as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "JSON or YAML config file (defaults are used when empty)")
	schemaFile := flag.String("schema", "", "JSON schema overriding the embedded one")
	ticks := flag.Int("ticks", -1, "ticks to run, overrides the config when >= 0")
	every := flag.Int("every", 60, "log flock stats every N ticks")
	out := flag.String("out", "", "write the final snapshot here instead of stdout")
	flag.Parse()

	if err := run(*configFile, *schemaFile, *ticks, *every, *out); err != nil {
		fmt.Fprintf(os.Stderr, "simulation: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, schemaFile string, ticks, every int, out string) error {
	cfg := simulation.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(configFile, schemaFile); err != nil {
			return err
		}
	}
	if ticks >= 0 {
		cfg.Ticks = ticks
	}

	logger, err := simulation.NewLogger(cfg.LogLevel, uuid.New())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := simulation.StartSystem(ctx, "SwarmHeadless", golog.New(golog.InfoLevel, os.Stderr))
	if err != nil {
		return err
	}
	defer system.Stop(context.Background())

	world, err := system.Spawn(ctx, "world", simulation.NewWorldActor(cfg, nil))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	logger.Info("headless run starting",
		zap.Int("agents", cfg.NumAgents),
		zap.Int("ticks", cfg.Ticks),
		zap.String("sensor", cfg.Sensor.Model),
		zap.String("broadphase", cfg.Broadphase),
		zap.Int("workers", cfg.Workers))
	start := time.Now()

	tick := durationpb.New(0) // config dt
	every = max(every, 1)
	for i := 1; cfg.Ticks == 0 || i <= cfg.Ticks; i++ {
		if ctx.Err() != nil {
			logger.Warn("interrupted", zap.Int("ticksSent", i-1))
			break
		}
		if err := actor.Tell(ctx, world, tick); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		// the ask also keeps the mailbox from growing without bound
		if i%every == 0 {
			snap, err := askSnapshot(ctx, world)
			if err != nil {
				return err
			}
			logStats(logger, "flock", snap)
		}
	}

	final, err := askSnapshot(context.Background(), world)
	if err != nil {
		return fmt.Errorf("failed to fetch final snapshot: %w", err)
	}
	elapsed := time.Since(start)
	logStats(logger, "headless run finished", final,
		zap.Duration("elapsed", elapsed),
		zap.Float64("ticksPerSecond", float64(final.Tick)/elapsed.Seconds()))

	pb, err := final.ToProto()
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(pb)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func askSnapshot(ctx context.Context, world *actor.PID) (*simulation.WorldSnapshot, error) {
	pb, err := simulation.AskSnapshot(ctx, world, time.Minute)
	if err != nil {
		return nil, err
	}
	return simulation.WorldSnapshotFromProto(pb)
}

func logStats(logger *zap.Logger, msg string, snap *simulation.WorldSnapshot, fields ...zap.Field) {
	logger.Info(msg, append([]zap.Field{
		zap.Uint64("tick", snap.Tick),
		zap.Float32("meanSpeed", snap.Stats.MeanSpeed),
		zap.Float32("maxSpeed", snap.Stats.MaxSpeed),
		zap.Float32("meanEstimateError", snap.Stats.MeanEstimateError),
		zap.Float32("maxEstimateError", snap.Stats.MaxEstimateError),
		zap.Float32("spread", snap.Stats.Spread),
		zap.Int("nonFinite", snap.Stats.NonFinite),
	}, fields...)...)
}
