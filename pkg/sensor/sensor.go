// Package sensor models how an agent observes its own position before the
// observation is fed to the estimator.
//
// Every sensor instance belongs to exactly one agent, so implementations may
// keep per-agent state without locking.
package sensor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/aquilax/go-perlin"
	"github.com/cespare/xxhash/v2"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"
)

// Model names accepted by Config.Model.
const (
	ModelPerfect  = "perfect"
	ModelGaussian = "gaussian"
	ModelPerlin   = "perlin"
)

var ErrUnknownModel = errors.New("unknown sensor model")

// Sensor turns the true position into the measurement for one tick.
type Sensor interface {
	Measure(truth geometry.Vector2D) geometry.Vector2D
}

// Factory builds the sensor owned by agent id.
type Factory func(id int) Sensor

// Config selects and parameterises a sensor model.
type Config struct {
	Model     string  `json:"model" yaml:"model"`
	StdDev    float64 `json:"stdDev" yaml:"stdDev"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Seed      uint64  `json:"seed" yaml:"seed"`
}

// NewFactory returns the Factory for cfg. An empty model means perfect.
func NewFactory(cfg Config) (Factory, error) {
	switch cfg.Model {
	case "", ModelPerfect:
		return func(int) Sensor { return Perfect{} }, nil
	case ModelGaussian:
		if cfg.StdDev < 0 {
			return nil, fmt.Errorf("gaussian stdDev %v must not be negative", cfg.StdDev)
		}
		return func(id int) Sensor { return NewGaussian(cfg.StdDev, cfg.Seed, id) }, nil
	case ModelPerlin:
		if cfg.Frequency <= 0 {
			return nil, fmt.Errorf("perlin frequency %v must be positive", cfg.Frequency)
		}
		noise := perlin.NewPerlin(2, 2, 3, int64(cfg.Seed))
		return func(id int) Sensor { return NewPerlin(noise, cfg.Amplitude, cfg.Frequency, id) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}
}

// Perfect reports the truth.
type Perfect struct{}

func (Perfect) Measure(truth geometry.Vector2D) geometry.Vector2D { return truth }

// Gaussian adds zero-mean white noise with the given standard deviation on
// each axis. Each agent draws from its own PCG stream.
type Gaussian struct {
	StdDev float64
	rng    *rand.Rand
}

// NewGaussian seeds a stream from (seed, id), so two runs with the same seed
// see the same noise.
func NewGaussian(stdDev float64, seed uint64, id int) *Gaussian {
	return &Gaussian{
		StdDev: stdDev,
		rng:    rand.New(rand.NewPCG(agentSeed(seed, id), seed)),
	}
}

func (g *Gaussian) Measure(truth geometry.Vector2D) geometry.Vector2D {
	if g.StdDev == 0 {
		return truth
	}
	return truth.Add(geometry.NewVector(
		float32(g.rng.NormFloat64()*g.StdDev),
		float32(g.rng.NormFloat64()*g.StdDev),
	))
}

// Perlin adds a smooth, time-correlated drift: a biased sensor rather than a
// jittery one. The offset is sampled along the agent's own row of the noise
// field, advancing Frequency per call.
type Perlin struct {
	Amplitude float64
	Frequency float64
	noise     *perlin.Perlin
	row       float64
	step      uint64
}

// NewPerlin samples noise, which may be shared between agents.
func NewPerlin(noise *perlin.Perlin, amplitude, frequency float64, id int) *Perlin {
	return &Perlin{
		Amplitude: amplitude,
		Frequency: frequency,
		noise:     noise,
		// integer lattice points are always zero in Perlin noise
		row: float64(id)*3 + 0.5,
	}
}

func (p *Perlin) Measure(truth geometry.Vector2D) geometry.Vector2D {
	t := float64(p.step)*p.Frequency + 0.5
	p.step++
	dx := p.noise.Noise2D(t, p.row) * p.Amplitude
	dy := p.noise.Noise2D(t, p.row+1.5) * p.Amplitude
	return truth.Add(geometry.NewVector(float32(dx), float32(dy)))
}

func agentSeed(seed uint64, id int) uint64 {
	return xxhash.Sum64String(strconv.FormatUint(seed, 10) + "/" + strconv.Itoa(id))
}
