package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
)

func startSystem(t *testing.T) (context.Context, actor.ActorSystem) {
	t.Helper()
	ctx := context.Background()
	system, err := StartSystem(ctx, "SwarmWorldTest", golog.DiscardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = system.Stop(ctx) })
	return ctx, system
}

func askSnapshot(t *testing.T, ctx context.Context, pid *actor.PID) *WorldSnapshot {
	t.Helper()
	pb, err := AskSnapshot(ctx, pid, 5*time.Second)
	require.NoError(t, err)
	snap, err := WorldSnapshotFromProto(pb)
	require.NoError(t, err)
	return snap
}

func TestWorldActor_TickAndSnapshot(t *testing.T) {
	ctx, system := startSystem(t)

	cfg := DefaultConfig()
	cfg.NumAgents = 25
	snapshots := make(chan *WorldSnapshot, 16)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(cfg, snapshots))
	require.NoError(t, err)

	initial := askSnapshot(t, ctx, pid)
	assert.Equal(t, uint64(0), initial.Tick)
	require.Len(t, initial.Agents, 25)
	for _, a := range initial.Agents {
		assert.Equal(t, cfg.Arena().Center(), a.Position)
	}

	for range 10 {
		require.NoError(t, actor.Tell(ctx, pid, durationpb.New(time.Second/60)))
	}

	// The mailbox is FIFO, so the Ask is answered after all ten ticks ran.
	snap := askSnapshot(t, ctx, pid)
	assert.Equal(t, uint64(10), snap.Tick)
	assert.Equal(t, cfg.Arena(), snap.Arena)
	assert.Len(t, snap.Agents, 25)
	assert.Equal(t, 25, snap.Stats.Count)
	assert.Zero(t, snap.Stats.NonFinite)

	require.Len(t, snapshots, 10, "one snapshot is pushed per tick")
	var last *WorldSnapshot
	for range 10 {
		last = <-snapshots
	}
	assert.Equal(t, uint64(10), last.Tick)
	assert.Equal(t, last.Agents, snap.Agents, "pushed and asked snapshots agree")
}

func TestWorldActor_ZeroDurationUsesConfigDelta(t *testing.T) {
	ctx, system := startSystem(t)

	cfg := DefaultConfig()
	cfg.NumAgents = 5
	pid, err := system.Spawn(ctx, "world", NewWorldActor(cfg, nil))
	require.NoError(t, err)

	require.NoError(t, actor.Tell(ctx, pid, durationpb.New(0)))
	snap := askSnapshot(t, ctx, pid)
	assert.Equal(t, uint64(1), snap.Tick)

	// Same flock stepped directly with the configured dt must match.
	f, err := cfg.NewFlock()
	require.NoError(t, err)
	require.NoError(t, f.Step(context.Background(), cfg.DeltaTime))
	assert.Equal(t, f.States(), snap.Agents)
}

func TestWorldActor_FullChannelDropsFrames(t *testing.T) {
	ctx, system := startSystem(t)

	cfg := DefaultConfig()
	cfg.NumAgents = 3
	snapshots := make(chan *WorldSnapshot, 1)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(cfg, snapshots))
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, actor.Tell(ctx, pid, durationpb.New(time.Second/60)))
	}
	snap := askSnapshot(t, ctx, pid)
	assert.Equal(t, uint64(5), snap.Tick, "a slow consumer must not stall the world")

	first := <-snapshots
	assert.Equal(t, uint64(1), first.Tick)
}

func TestWorldSnapshot_ProtoRoundTrip(t *testing.T) {
	f, err := flocking.NewFlock(12, flocking.Arena{Width: 320, Height: 240}, flocking.WithLayout(flocking.LayoutGrid))
	require.NoError(t, err)
	for range 5 {
		require.NoError(t, f.Step(context.Background(), 0.1))
	}

	want := NewWorldSnapshot(f)
	pb, err := want.ToProto()
	require.NoError(t, err)

	got, err := WorldSnapshotFromProto(pb)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorldSnapshotFromProto_Invalid(t *testing.T) {
	_, err := WorldSnapshotFromProto(nil)
	assert.Error(t, err)

	pb, err := structpb.NewStruct(map[string]interface{}{
		"agents": []interface{}{"not an object"},
	})
	require.NoError(t, err)
	_, err = WorldSnapshotFromProto(pb)
	assert.Error(t, err)
}
