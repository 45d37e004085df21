package flocking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/sensor"
)

var ErrInvalidArena = errors.New("arena dimensions must be positive")

// Layout decides where NewFlock places the agents.
type Layout int

const (
	// LayoutCenter stacks every agent on the arena centre. Their id-derived
	// headings fan them out on the first ticks.
	LayoutCenter Layout = iota
	// LayoutGrid spreads agents on an evenly spaced grid.
	LayoutGrid
)

func (l Layout) String() string {
	switch l {
	case LayoutCenter:
		return "center"
	case LayoutGrid:
		return "grid"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// Broadphase selects how an agent's candidate neighbours are gathered.
type Broadphase int

const (
	// BroadphaseBrute hands every agent the whole snapshot.
	BroadphaseBrute Broadphase = iota
	// BroadphaseGrid hands every agent only the snapshot entries in the
	// surrounding spatial hash cells.
	BroadphaseGrid
)

func (b Broadphase) String() string {
	switch b {
	case BroadphaseBrute:
		return "brute"
	case BroadphaseGrid:
		return "grid"
	default:
		return fmt.Sprintf("Broadphase(%d)", int(b))
	}
}

// Option configures a Flock.
type Option func(*Flock)

// WithWorkers splits each tick's per-agent updates across n goroutines.
// n <= 1 runs them sequentially.
func WithWorkers(n int) Option {
	return func(f *Flock) { f.workers = max(n, 1) }
}

func WithBroadphase(b Broadphase) Option {
	return func(f *Flock) { f.broadphase = b }
}

func WithLayout(l Layout) Option {
	return func(f *Flock) { f.layout = l }
}

// WithSensors gives every agent the sensor built by factory for its id.
func WithSensors(factory sensor.Factory) Option {
	return func(f *Flock) { f.sensors = factory }
}

// Flock is a fixed-size, id-ordered set of agents stepped in lockstep.
//
// Every tick first copies all agent states into a snapshot buffer, then
// updates each agent against that snapshot only. Agents never see each
// other's mid-tick state, which is what lets WithWorkers update them in
// parallel without locks.
type Flock struct {
	arena      Arena
	agents     []Agent
	snapshot   []State
	tick       uint64
	workers    int
	broadphase Broadphase
	layout     Layout
	sensors    sensor.Factory
	grid       *grid
	scratch    []workerScratch
}

type workerScratch struct {
	indices   []int
	neighbors []State
}

// NewFlock builds n agents with ids 0..n-1.
func NewFlock(n int, arena Arena, opts ...Option) (*Flock, error) {
	if !(arena.Width > 0) || !(arena.Height > 0) {
		return nil, fmt.Errorf("%w: got %vx%v", ErrInvalidArena, arena.Width, arena.Height)
	}
	if n < 0 {
		return nil, fmt.Errorf("flock size %d must not be negative", n)
	}

	f := &Flock{
		arena:   arena,
		workers: 1,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.agents = make([]Agent, n)
	for i := range f.agents {
		x, y := f.spawnPosition(i, n)
		f.agents[i] = *NewAgent(i, x, y)
		if f.sensors != nil {
			f.agents[i].Sensor = f.sensors(i)
		}
	}
	f.snapshot = make([]State, n)
	f.scratch = make([]workerScratch, f.workers)
	if f.broadphase == BroadphaseGrid {
		f.grid = newGrid(NeighborRadius)
	}
	return f, nil
}

func (f *Flock) spawnPosition(i, n int) (float32, float32) {
	if f.layout != LayoutGrid {
		c := f.arena.Center()
		return c.X, c.Y
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	dx := f.arena.Width / float32(cols+1)
	dy := f.arena.Height / float32(rows+1)
	return dx * float32(i%cols+1), dy * float32(i/cols+1)
}

// Step advances every agent by one tick: snapshot, steer, integrate,
// estimate, wrap. dt only feeds the estimators.
//
// A cancelled ctx is checked once before the tick starts; a tick that has
// started always runs to completion.
func (f *Flock) Step(ctx context.Context, dt float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range f.agents {
		f.snapshot[i] = f.agents[i].State()
	}
	if f.grid != nil {
		f.grid.rebuild(f.snapshot)
	}

	n := len(f.agents)
	if f.workers <= 1 || n < 2 {
		f.stepRange(0, n, &f.scratch[0], dt)
		f.tick++
		return nil
	}

	chunk := (n + f.workers - 1) / f.workers
	var g errgroup.Group
	for w := 0; w < f.workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		scratch := &f.scratch[w]
		g.Go(func() error {
			f.stepRange(lo, hi, scratch, dt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.tick++
	return nil
}

func (f *Flock) stepRange(lo, hi int, scratch *workerScratch, dt float32) {
	for i := lo; i < hi; i++ {
		a := &f.agents[i]
		a.Flock(f.neighbors(i, scratch), f.arena)
		a.Body.Integrate()
		a.UpdateEstimator(dt)
		a.Edges(f.arena.Width, f.arena.Height)
	}
}

func (f *Flock) neighbors(i int, scratch *workerScratch) []State {
	if f.grid == nil {
		return f.snapshot
	}
	scratch.indices = f.grid.query(f.snapshot[i].Position, scratch.indices[:0])
	scratch.neighbors = scratch.neighbors[:0]
	for _, j := range scratch.indices {
		scratch.neighbors = append(scratch.neighbors, f.snapshot[j])
	}
	return scratch.neighbors
}

func (f *Flock) Arena() Arena { return f.arena }
func (f *Flock) Len() int     { return len(f.agents) }
func (f *Flock) Tick() uint64 { return f.tick }

// Agents exposes the live agents. Callers must not hold on to it across a
// Step running in another goroutine.
func (f *Flock) Agents() []Agent { return f.agents }

func (f *Flock) Agent(i int) *Agent { return &f.agents[i] }

// States returns a fresh copy of every agent's state in id order.
func (f *Flock) States() []State {
	return f.AppendStates(make([]State, 0, len(f.agents)))
}

// AppendStates appends every agent's state to dst, for callers that recycle
// their buffers.
func (f *Flock) AppendStates(dst []State) []State {
	for i := range f.agents {
		dst = append(dst, f.agents[i].State())
	}
	return dst
}
