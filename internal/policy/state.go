// Package policy implements the supervision decision engine. Agent behavior
// is modeled as a stochastic state-transition process; the engine searches
// the model for the intervention with the best expected long-run outcome.
package policy

// AgentState is a snapshot of one supervised agent's behavior. States are
// plain values: transitions return new states and never touch their input,
// so no search ply can observe another ply's half-applied mutation.
type AgentState struct {
	Quality  float64 `json:"quality_score"`  // Output quality, 0..1
	Errors   int     `json:"error_count"`    // Consecutive errors, >= 0
	Resource float64 `json:"resource_usage"` // Resource consumption, 0..1
	Progress float64 `json:"task_progress"`  // Task completion, 0..1
}

// clamp forces every field back into its domain. Every transition must end
// with a clamp; a state outside its domain is an invariant breach.
func (s AgentState) clamp() AgentState {
	s.Quality = clampUnit(s.Quality)
	s.Resource = clampUnit(s.Resource)
	s.Progress = clampUnit(s.Progress)
	if s.Errors < 0 {
		s.Errors = 0
	}
	return s
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Terminal reports whether the supervision episode is over: the task is done
// (Progress >= 1) or quality has collapsed (Quality <= 0.1).
func (s AgentState) Terminal() bool {
	return s.Progress >= 1.0 || s.Quality <= 0.1
}

// Terminal evaluation scores. Success dominates: a state that is both done
// and degraded still counts as a win.
const (
	terminalSuccess = 1000.0
	terminalFailure = -1000.0
)

// Weights are the tunable evaluation parameters. The defaults are policy
// constants, not derived values.
type Weights struct {
	Quality         float64 `json:"quality"`
	Progress        float64 `json:"progress"`
	ErrorPenalty    float64 `json:"error_penalty"`
	ResourcePenalty float64 `json:"resource_penalty"`
}

// DefaultWeights returns the standard evaluation parameters.
func DefaultWeights() Weights {
	return Weights{
		Quality:         70,
		Progress:        30,
		ErrorPenalty:    200,
		ResourcePenalty: 40,
	}
}

// Evaluate scores a state. Terminal states collapse to +/-1000; everything
// else is a weighted linear combination of the state components.
func (w Weights) Evaluate(s AgentState) float64 {
	if s.Progress >= 1.0 {
		return terminalSuccess
	}
	if s.Quality <= 0.1 {
		return terminalFailure
	}
	return w.Quality*s.Quality +
		w.Progress*s.Progress -
		w.ErrorPenalty*float64(s.Errors) -
		w.ResourcePenalty*s.Resource
}
