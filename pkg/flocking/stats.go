package flocking

// Stats summarises a set of agent states.
type Stats struct {
	Count             int     `json:"count"`
	MeanSpeed         float32 `json:"meanSpeed"`
	MaxSpeed          float32 `json:"maxSpeed"`
	MeanEstimateError float32 `json:"meanEstimateError"`
	MaxEstimateError  float32 `json:"maxEstimateError"`
	// Spread is the mean distance from the arena centre.
	Spread float32 `json:"spread"`
	// NonFinite counts states with a NaN or Inf component.
	NonFinite int `json:"nonFinite"`
}

// ComputeStats aggregates states in float64.
func ComputeStats(states []State, arena Arena) Stats {
	s := Stats{Count: len(states)}
	if len(states) == 0 {
		return s
	}

	center := arena.Center()
	var speedSum, errSum, spreadSum float64
	for i := range states {
		st := states[i]
		if !st.IsFinite() {
			s.NonFinite++
		}
		speed := st.Velocity.Len()
		estErr := st.Estimate.DistanceTo(st.Position)
		speedSum += float64(speed)
		errSum += float64(estErr)
		spreadSum += float64(st.Position.DistanceTo(center))
		s.MaxSpeed = max(s.MaxSpeed, speed)
		s.MaxEstimateError = max(s.MaxEstimateError, estErr)
	}
	n := float64(len(states))
	s.MeanSpeed = float32(speedSum / n)
	s.MeanEstimateError = float32(errSum / n)
	s.Spread = float32(spreadSum / n)
	return s
}
