package simulation

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"
)

// WorldSnapshot is what the world hands to renderers and streams after a tick.
// It owns its Agents slice.
type WorldSnapshot struct {
	Tick   uint64           `json:"tick"`
	Arena  flocking.Arena   `json:"arena"`
	Agents []flocking.State `json:"agents"`
	Stats  flocking.Stats   `json:"stats"`
}

func NewWorldSnapshot(f *flocking.Flock) *WorldSnapshot {
	states := f.States()
	return &WorldSnapshot{
		Tick:   f.Tick(),
		Arena:  f.Arena(),
		Agents: states,
		Stats:  flocking.ComputeStats(states, f.Arena()),
	}
}

// ToProto encodes the snapshot as a structpb.Struct so it can travel as an
// actor reply and be printed with protojson.
func (s *WorldSnapshot) ToProto() (*structpb.Struct, error) {
	agents := make([]interface{}, len(s.Agents))
	for i, a := range s.Agents {
		agents[i] = map[string]interface{}{
			"id":        a.ID,
			"x":         a.Position.X,
			"y":         a.Position.Y,
			"vx":        a.Velocity.X,
			"vy":        a.Velocity.Y,
			"estimateX": a.Estimate.X,
			"estimateY": a.Estimate.Y,
		}
	}

	return structpb.NewStruct(map[string]interface{}{
		"tick":        s.Tick,
		"worldWidth":  s.Arena.Width,
		"worldHeight": s.Arena.Height,
		"agents":      agents,
		"stats": map[string]interface{}{
			"count":             s.Stats.Count,
			"meanSpeed":         s.Stats.MeanSpeed,
			"maxSpeed":          s.Stats.MaxSpeed,
			"meanEstimateError": s.Stats.MeanEstimateError,
			"maxEstimateError":  s.Stats.MaxEstimateError,
			"spread":            s.Stats.Spread,
			"nonFinite":         s.Stats.NonFinite,
		},
	})
}

// WorldSnapshotFromProto reverses ToProto.
func WorldSnapshotFromProto(pb *structpb.Struct) (*WorldSnapshot, error) {
	if pb == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	f := pb.GetFields()
	s := &WorldSnapshot{
		Tick: uint64(f["tick"].GetNumberValue()),
		Arena: flocking.Arena{
			Width:  float32(f["worldWidth"].GetNumberValue()),
			Height: float32(f["worldHeight"].GetNumberValue()),
		},
	}

	if st := f["stats"].GetStructValue(); st != nil {
		sf := st.GetFields()
		s.Stats = flocking.Stats{
			Count:             int(sf["count"].GetNumberValue()),
			MeanSpeed:         float32(sf["meanSpeed"].GetNumberValue()),
			MaxSpeed:          float32(sf["maxSpeed"].GetNumberValue()),
			MeanEstimateError: float32(sf["meanEstimateError"].GetNumberValue()),
			MaxEstimateError:  float32(sf["maxEstimateError"].GetNumberValue()),
			Spread:            float32(sf["spread"].GetNumberValue()),
			NonFinite:         int(sf["nonFinite"].GetNumberValue()),
		}
	}

	list := f["agents"].GetListValue()
	s.Agents = make([]flocking.State, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		a := v.GetStructValue()
		if a == nil {
			return nil, fmt.Errorf("agent %d is not an object", i)
		}
		af := a.GetFields()
		s.Agents = append(s.Agents, flocking.State{
			ID:       int(af["id"].GetNumberValue()),
			Position: vec(af["x"], af["y"]),
			Velocity: vec(af["vx"], af["vy"]),
			Estimate: vec(af["estimateX"], af["estimateY"]),
		})
	}
	return s, nil
}

func vec(x, y *structpb.Value) geometry.Vector2D {
	return geometry.NewVector(float32(x.GetNumberValue()), float32(y.GetNumberValue()))
}
