package model

// Trajectory assigns a target speed in m/s to every segment of the route.
// It is the decision variable searched by the optimizer.
type Trajectory []float64

// Clone returns an independent copy of the trajectory.
func (t Trajectory) Clone() Trajectory {
	cp := make(Trajectory, len(t))
	copy(cp, t)
	return cp
}

// Objective selects the race scoring mode.
type Objective int

const (
	// ObjectiveFSGP maximizes distance covered within a fixed time budget.
	ObjectiveFSGP Objective = iota
	// ObjectiveASC minimizes elapsed time over the full route distance.
	ObjectiveASC
)

// String returns a human-readable representation of the objective.
func (o Objective) String() string {
	switch o {
	case ObjectiveFSGP:
		return "fsgp"
	case ObjectiveASC:
		return "asc"
	default:
		return "unknown"
	}
}

// Constraint names used in violation reports.
const (
	ConstraintSoCLow     = "soc_below_min"
	ConstraintSoCHigh    = "soc_above_max"
	ConstraintSpeedLimit = "speed_limit"
	ConstraintSpeed      = "invalid_speed"
	ConstraintEnvData    = "environment_data"
	ConstraintIncomplete = "route_incomplete"
)

// ConstraintViolation records one constraint breach at the segment where it
// first occurred.
type ConstraintViolation struct {
	Constraint   string  `json:"constraint"`
	SegmentIndex int     `json:"segment_index"`
	Magnitude    float64 `json:"magnitude"`
}

// ObjectiveResult is the outcome of scoring one candidate trajectory.
type ObjectiveResult struct {
	Objective  Objective             `json:"-"`
	Value      float64               `json:"value"` // meters for FSGP, seconds for ASC
	DistanceM  float64               `json:"distance_m"`
	ElapsedS   float64               `json:"elapsed_s"`
	FinalSoC   float64               `json:"final_soc"`
	Feasible   bool                  `json:"feasible"`
	Violations []ConstraintViolation `json:"violations,omitempty"`
}

// Better reports whether r beats other under the race tie-break policy:
// the primary objective decides first, equal objectives prefer lower elapsed
// time, and equal times prefer a higher terminal state of charge.
func (r ObjectiveResult) Better(other ObjectiveResult) bool {
	if r.Feasible != other.Feasible {
		return r.Feasible
	}
	switch r.Objective {
	case ObjectiveASC:
		if r.Value != other.Value {
			return r.Value < other.Value
		}
	default:
		if r.Value != other.Value {
			return r.Value > other.Value
		}
		if r.ElapsedS != other.ElapsedS {
			return r.ElapsedS < other.ElapsedS
		}
	}
	return r.FinalSoC > other.FinalSoC
}
