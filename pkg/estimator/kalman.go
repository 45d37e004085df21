// Package estimator implements the per-agent position filter.
package estimator

import "github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"

const (
	DefaultProcessNoise     float32 = 0.1
	DefaultMeasurementNoise float32 = 1.0
)

// Kalman is a 2-state (x, y) linear Kalman filter with a constant-velocity
// motion model. Predict and Update are meant to be called in that order once
// per tick.
//
// Transition and Observation default to the identity. They are kept as real
// matrices so the general forms F·P·Fᵗ and H·P·Hᵗ are what actually run.
type Kalman struct {
	State            geometry.Vector2D `json:"state"`
	Covariance       geometry.Matrix2  `json:"covariance"`
	ProcessNoise     geometry.Matrix2  `json:"processNoise"`
	MeasurementNoise geometry.Matrix2  `json:"measurementNoise"`
	Transition       geometry.Matrix2  `json:"transition"`
	Observation      geometry.Matrix2  `json:"observation"`
}

// New returns a filter that believes it is at initial with unit uncertainty.
func New(initial geometry.Vector2D) Kalman {
	return Kalman{
		State:            initial,
		Covariance:       geometry.Identity(),
		ProcessNoise:     geometry.Diagonal(DefaultProcessNoise, DefaultProcessNoise),
		MeasurementNoise: geometry.Diagonal(DefaultMeasurementNoise, DefaultMeasurementNoise),
		Transition:       geometry.Identity(),
		Observation:      geometry.Identity(),
	}
}

// Predict propagates the belief by velocity·dt and grows the covariance by
// the process noise.
func (k *Kalman) Predict(velocity geometry.Vector2D, dt float32) {
	f := k.Transition
	k.State = f.MulVec(k.State).Add(velocity.Mul(dt))
	k.Covariance = f.Mul(k.Covariance).Mul(f.Transpose()).Add(k.ProcessNoise)
}

// Update corrects the belief with a position measurement. It reports false,
// leaving the predicted state and covariance untouched, when the innovation
// covariance is not invertible.
func (k *Kalman) Update(measurement geometry.Vector2D) bool {
	h := k.Observation
	innovation := measurement.Sub(h.MulVec(k.State))

	pht := k.Covariance.Mul(h.Transpose())
	s := h.Mul(pht).Add(k.MeasurementNoise)
	sInv, ok := s.Inverse()
	if !ok {
		return false
	}

	gain := pht.Mul(sInv)
	k.State = k.State.Add(gain.MulVec(innovation))
	k.Covariance = geometry.Identity().Sub(gain.Mul(h)).Mul(k.Covariance)
	return true
}

// Error is the distance between the belief and truth.
func (k Kalman) Error(truth geometry.Vector2D) float32 {
	return k.State.DistanceTo(truth)
}
