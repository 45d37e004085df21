package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// StartSystem creates and starts the actor system hosting the world.
func StartSystem(ctx context.Context, name string, logger golog.Logger) (actor.ActorSystem, error) {
	system, err := actor.NewActorSystem(name,
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	return system, nil
}

// AskSnapshot asks the world actor for its current state. Ticks already in
// its mailbox run first.
func AskSnapshot(ctx context.Context, pid *actor.PID, timeout time.Duration) (*structpb.Struct, error) {
	reply, err := actor.Ask(ctx, pid, &emptypb.Empty{}, timeout)
	if err != nil {
		return nil, err
	}
	pb, ok := reply.(*structpb.Struct)
	if !ok {
		return nil, fmt.Errorf("unexpected snapshot reply %T", reply)
	}
	return pb, nil
}
