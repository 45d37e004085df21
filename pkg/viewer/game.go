package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/ui"
)

const panelWidth = 220

var (
	background    = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	estimateColor = color.RGBA{R: 255, G: 180, B: 60, A: 255}
	linkColor     = color.RGBA{R: 80, G: 120, B: 200, A: 60}
)

// Game renders the world actor's snapshots with ebiten and feeds it one tick
// per frame, or more when the speed slider says so.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.WorldSnapshot
	lastState  *simulation.WorldSnapshot
	cfg        *simulation.Config
	tick       *durationpb.Duration
	paused     bool

	panel                   *ui.UIPanel
	widgetTicksPerFrame     *ui.Slider
	widgetShowEstimates     *ui.Checkbox
	widgetShowNeighborhoods *ui.Checkbox
	widgetPause             *ui.Button

	// triangle batch, reused every frame
	whiteImage *ebiten.Image
	vertices   []ebiten.Vertex
	indices    []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// NewGame spawns the world actor on system and builds the control panel.
func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) (*Game, error) {
	snapshotCh := make(chan *simulation.WorldSnapshot, 10)
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(cfg, snapshotCh))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.WorldSnapshot{Arena: cfg.Arena()},
		cfg:        cfg,
		tick:       durationpb.New(time.Duration(float64(cfg.DeltaTime) * float64(time.Second))),
		whiteImage: ebiten.NewImage(3, 3),
	}
	g.whiteImage.Fill(color.White)

	panel := ui.NewUIPanel("Flock", float64(cfg.WorldWidth)+10, 10, panelWidth-20, float64(cfg.WorldHeight)-20)
	panel.AddSection("Simulation")
	g.widgetTicksPerFrame = panel.AddSlider("Ticks / frame", 1, 10, 1, 1)
	g.widgetPause = panel.AddButton("Pause", g.togglePause)
	panel.EndSection()
	panel.AddSection("Display")
	g.widgetShowEstimates = panel.AddCheckbox("Show Estimates", cfg.DisplayEstimates)
	g.widgetShowNeighborhoods = panel.AddCheckbox("Neighbor Links", cfg.DisplayNeighborhood)
	panel.EndSection()
	g.panel = panel

	return g, nil
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	if g.paused {
		g.widgetPause.Label = "Resume"
	} else {
		g.widgetPause.Label = "Pause"
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// keep only the newest frame
	for drained := false; !drained; {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			drained = true
		}
	}

	if g.paused {
		return nil
	}
	for range int(g.widgetTicksPerFrame.Value) {
		if err := actor.Tell(g.ctx, g.worldPID, g.tick); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	agents := g.lastState.Agents

	if g.widgetShowNeighborhoods.Value {
		drawLinks(screen, agents)
	}
	if g.widgetShowEstimates.Value {
		for _, a := range agents {
			vector.StrokeLine(screen, a.Position.X, a.Position.Y, a.Estimate.X, a.Estimate.Y, 1, estimateColor, true)
			vector.StrokeCircle(screen, a.Estimate.X, a.Estimate.Y, 3, 1, estimateColor, true)
		}
	}
	g.drawAgents(screen, agents)

	g.panel.Draw(screen)

	st := g.lastState.Stats
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nTick: %d\nSpeed: %.2f (max %.2f)\nEst. error: %.3f\nSpread: %.1f\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Tick,
		st.MeanSpeed, st.MaxSpeed,
		st.MeanEstimateError,
		st.Spread,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

// drawLinks joins every pair of agents that see each other.
func drawLinks(screen *ebiten.Image, agents []flocking.State) {
	const r2 = flocking.NeighborRadius * flocking.NeighborRadius
	for i := range agents {
		for j := i + 1; j < len(agents); j++ {
			p, q := agents[i].Position, agents[j].Position
			if p.DistanceSquaredTo(q) < r2 {
				vector.StrokeLine(screen, p.X, p.Y, q.X, q.Y, 1, linkColor, true)
			}
		}
	}
}

// drawAgents submits one triangle per agent, pointed along its velocity,
// batched so that indices fit in uint16.
func (g *Game) drawAgents(screen *ebiten.Image, agents []flocking.State) {
	const maxBatch = math.MaxUint16 / 3
	for len(agents) > 0 {
		n := min(len(agents), maxBatch)
		g.drawBatch(screen, agents[:n])
		agents = agents[n:]
	}
}

func (g *Game) drawBatch(screen *ebiten.Image, agents []flocking.State) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for i, a := range agents {
		angle := math.Atan2(float64(a.Velocity.Y), float64(a.Velocity.X))
		x, y := float64(a.Position.X), float64(a.Position.Y)
		g.vertices = append(g.vertices,
			vertex(x+math.Cos(angle)*6, y+math.Sin(angle)*6),
			vertex(x+math.Cos(angle+2.5)*5, y+math.Sin(angle+2.5)*5),
			vertex(x+math.Cos(angle-2.5)*5, y+math.Sin(angle-2.5)*5),
		)
		base := uint16(i * 3)
		g.indices = append(g.indices, base, base+1, base+2)
	}
	screen.DrawTriangles(g.vertices, g.indices, g.whiteImage, &ebiten.DrawTrianglesOptions{})
}

func vertex(x, y float64) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: 1, SrcY: 1,
		ColorR: 0.4, ColorG: 0.8, ColorB: 1, ColorA: 1,
	}
}

func (g *Game) Layout(w, h int) (int, int) {
	return int(g.cfg.WorldWidth) + panelWidth, int(g.cfg.WorldHeight)
}
