package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
)

// WorldActor owns the flock. Hosts drive it with messages:
//
//   - *durationpb.Duration: advance one tick, the duration being the
//     estimator dt (zero or negative falls back to Config.DeltaTime)
//   - *emptypb.Empty: reply with the current snapshot as a *structpb.Struct
//
// After every tick a WorldSnapshot is offered to snapshotCh without blocking.
type WorldActor struct {
	cfg        *Config
	flock      *flocking.Flock
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	ticksSinceLog int
	stepTime      time.Duration
	droppedFrames int
	lastLogTime   time.Time
}

// NewWorldActor creates the world logic unit. snapshotCh may be nil.
func NewWorldActor(cfg *Config, snapshotCh chan<- *WorldSnapshot) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	flock, err := w.cfg.NewFlock()
	if err != nil {
		return err
	}
	w.flock = flock
	ctx.ActorSystem().Logger().Infof("World is spawning %d agents in %vx%v...",
		w.cfg.NumAgents, w.cfg.WorldWidth, w.cfg.WorldHeight)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started: layout=%s broadphase=%s workers=%d sensor=%s",
			w.cfg.Layout, w.cfg.Broadphase, w.cfg.Workers, w.cfg.Sensor.Model)

	// The Main Simulation Step (Driven by the host loop)
	case *durationpb.Duration:
		dt := float32(msg.AsDuration().Seconds())
		if dt <= 0 {
			dt = w.cfg.DeltaTime
		}

		start := time.Now()
		if err := w.flock.Step(ctx.Context(), dt); err != nil {
			ctx.Logger().Errorf("tick %d skipped: %v", w.flock.Tick(), err)
			return
		}
		w.stepTime += time.Since(start)
		w.ticksSinceLog++

		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *emptypb.Empty:
		snapshot, err := NewWorldSnapshot(w.flock).ToProto()
		if err != nil {
			ctx.Logger().Errorf("failed to encode snapshot: %v", err)
			return
		}
		ctx.Response(snapshot)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second || w.ticksSinceLog == 0 {
		return
	}
	stats := flocking.ComputeStats(w.flock.States(), w.flock.Arena())
	avg := w.stepTime / time.Duration(w.ticksSinceLog)
	ctx.Logger().Infof("📊 TICK RATE: %d/sec (avg step %s, dropped frames %d) | tick %d | spread %.1f | est. error %.3f",
		w.ticksSinceLog, avg, w.droppedFrames, w.flock.Tick(), stats.Spread, stats.MeanEstimateError)
	if stats.NonFinite > 0 {
		ctx.Logger().Warnf("%d agents have non-finite state", stats.NonFinite)
	}
	w.ticksSinceLog = 0
	w.stepTime = 0
	w.droppedFrames = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- NewWorldSnapshot(w.flock):
	default:
		// consumer busy, skip frame
		w.droppedFrames++
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	if w.flock != nil {
		ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.flock.Tick())
	}
	return nil
}
