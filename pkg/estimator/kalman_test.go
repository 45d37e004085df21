package estimator

import (
	"testing"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	k := New(geometry.NewVector(3, 4))
	assert.Equal(t, geometry.NewVector(3, 4), k.State)
	assert.Equal(t, geometry.Identity(), k.Covariance)
	assert.Equal(t, geometry.Diagonal(0.1, 0.1), k.ProcessNoise)
	assert.Equal(t, geometry.Diagonal(1, 1), k.MeasurementNoise)
	assert.Equal(t, geometry.Identity(), k.Transition)
	assert.Equal(t, geometry.Identity(), k.Observation)
}

func TestPredict(t *testing.T) {
	k := New(geometry.Zero)
	k.Predict(geometry.NewVector(1, 0), 1)

	assert.InDelta(t, 1, k.State.X, 1e-6)
	assert.InDelta(t, 0, k.State.Y, 1e-6)
	assert.Greater(t, k.Covariance.M11, float32(1), "uncertainty must grow on predict")
	assert.InDelta(t, 1.1, k.Covariance.M11, 1e-6)
	assert.InDelta(t, 1.1, k.Covariance.M22, 1e-6)
}

func TestUpdate_ShrinksCovariance(t *testing.T) {
	k := New(geometry.Zero)
	k.Predict(geometry.Zero, 1)
	before := k.Covariance.M11

	require.True(t, k.Update(geometry.NewVector(1, 1)))
	assert.Less(t, k.Covariance.M11, before)
	// P=1.1, R=1 -> K=1.1/2.1
	assert.InDelta(t, 1.1/2.1, k.State.X, 1e-5)
}

func TestConvergence_Stationary(t *testing.T) {
	truth := geometry.NewVector(10, 10)
	k := New(geometry.Zero)
	for range 50 {
		k.Predict(geometry.Zero, 0.1)
		k.Update(truth)
	}
	assert.Less(t, k.Error(truth), float32(0.5), "state %v", k.State)
}

func TestConvergence_FarTarget(t *testing.T) {
	truth := geometry.NewVector(100, 100)
	k := New(geometry.Zero)
	for range 100 {
		k.Predict(geometry.Zero, 1.0/60)
		k.Update(truth)
	}
	assert.Less(t, k.Error(truth), float32(5))
}

func TestTracksMovingTarget(t *testing.T) {
	vel := geometry.NewVector(2, 1)
	truth := geometry.NewVector(50, 50)
	k := New(truth)
	for range 60 {
		truth = truth.Add(vel)
		k.Predict(vel, 1)
		k.Update(truth)
	}
	assert.Less(t, k.Error(truth), float32(5))
}

func TestUpdate_SingularInnovationSkips(t *testing.T) {
	k := New(geometry.NewVector(1, 2))
	k.Covariance = geometry.ZeroMatrix()
	k.ProcessNoise = geometry.ZeroMatrix()
	k.MeasurementNoise = geometry.ZeroMatrix()

	k.Predict(geometry.NewVector(1, 1), 1)
	predicted := k

	ok := k.Update(geometry.NewVector(100, 100))
	assert.False(t, ok)
	assert.Equal(t, predicted.State, k.State, "state must stay as predicted")
	assert.Equal(t, predicted.Covariance, k.Covariance, "covariance must stay as predicted")
	assert.True(t, k.State.IsFinite())
}

func TestFinite_ExtremeTimeSteps(t *testing.T) {
	for _, dt := range []float32{1000, 0.0001} {
		k := New(geometry.NewVector(400, 300))
		truth := k.State
		vel := geometry.NewVector(4, -3)
		for i := range 300 {
			truth = truth.Add(vel)
			k.Predict(vel, dt)
			k.Update(truth)
			require.True(t, k.State.IsFinite(), "dt=%v tick %d state %v", dt, i, k.State)
			require.True(t, k.Covariance.IsFinite(), "dt=%v tick %d covariance %v", dt, i, k.Covariance)
		}
	}
}

func TestCovariance_DoesNotDiverge(t *testing.T) {
	k := New(geometry.Zero)
	for range 10000 {
		k.Predict(geometry.Zero, 1)
		k.Update(geometry.Zero)
	}
	// Steady state for Q=0.1, R=1 is well below 1.
	assert.Less(t, k.Covariance.M11, float32(1))
	assert.Greater(t, k.Covariance.M11, float32(0))
}

func BenchmarkPredictUpdate(b *testing.B) {
	k := New(geometry.Zero)
	vel := geometry.NewVector(1, 1)
	truth := geometry.Zero
	for b.Loop() {
		truth = truth.Add(vel)
		k.Predict(vel, 1)
		k.Update(truth)
	}
}
