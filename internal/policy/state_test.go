package policy

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestTerminal tests episode termination at both boundaries.
func TestTerminal(t *testing.T) {
	tests := []struct {
		name  string
		state AgentState
		want  bool
	}{
		{
			name:  "in progress",
			state: AgentState{Quality: 0.8, Errors: 0, Resource: 0.3, Progress: 0.5},
			want:  false,
		},
		{
			name:  "progress complete",
			state: AgentState{Quality: 0.8, Errors: 0, Resource: 0.3, Progress: 1.0},
			want:  true,
		},
		{
			name:  "quality collapsed",
			state: AgentState{Quality: 0.1, Errors: 0, Resource: 0.3, Progress: 0.5},
			want:  true,
		},
		{
			name:  "quality just above collapse",
			state: AgentState{Quality: 0.11, Errors: 0, Resource: 0.3, Progress: 0.5},
			want:  false,
		},
		{
			name:  "progress just below complete",
			state: AgentState{Quality: 0.8, Errors: 0, Resource: 0.3, Progress: 0.99},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEvaluate tests the static evaluation function.
func TestEvaluate(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name  string
		state AgentState
		want  float64
	}{
		{
			name:  "success dominates",
			state: AgentState{Quality: 0.05, Errors: 2, Resource: 0.9, Progress: 1.0},
			want:  1000,
		},
		{
			name:  "failure",
			state: AgentState{Quality: 0.1, Errors: 0, Resource: 0.1, Progress: 0.5},
			want:  -1000,
		},
		{
			name:  "weighted combination",
			state: AgentState{Quality: 0.5, Errors: 1, Resource: 0.5, Progress: 0.5},
			// 70*0.5 + 30*0.5 - 200*1 - 40*0.5
			want: -170,
		},
		{
			name:  "clean high quality",
			state: AgentState{Quality: 0.9, Errors: 0, Resource: 0.2, Progress: 0.5},
			// 70*0.9 + 30*0.5 - 40*0.2
			want: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Evaluate(tt.state); !almostEqual(got, tt.want) {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEvaluateCustomWeights tests that evaluation respects non-default weights.
func TestEvaluateCustomWeights(t *testing.T) {
	w := Weights{Quality: 10, Progress: 10, ErrorPenalty: 10, ResourcePenalty: 10}
	s := AgentState{Quality: 1, Errors: 1, Resource: 1, Progress: 0.5}

	// 10*1 + 10*0.5 - 10*1 - 10*1
	if got := w.Evaluate(s); !almostEqual(got, -5) {
		t.Errorf("Evaluate() = %v, want -5", got)
	}
}

// TestClampViaTransitions verifies that transitions never leave the state
// domains, even when the raw arithmetic would.
func TestClampViaTransitions(t *testing.T) {
	t.Run("resource saturates at one", func(t *testing.T) {
		s := AgentState{Quality: 0.6, Errors: 0, Resource: 0.99, Progress: 0.5}
		for _, o := range Outcomes(s, ActionCorrect) {
			if o.State.Resource > 1.0 {
				t.Errorf("Resource = %v, want <= 1.0", o.State.Resource)
			}
		}
	})

	t.Run("progress saturates at one", func(t *testing.T) {
		s := AgentState{Quality: 0.6, Errors: 0, Resource: 0.2, Progress: 0.97}
		for _, o := range Outcomes(s, ActionAllow) {
			if o.State.Progress > 1.0 {
				t.Errorf("Progress = %v, want <= 1.0", o.State.Progress)
			}
		}
	})

	t.Run("error count floors at zero", func(t *testing.T) {
		s := AgentState{Quality: 0.5, Errors: 0, Resource: 0.2, Progress: 0.5}
		for _, o := range Outcomes(s, ActionCorrect) {
			if o.State.Errors < 0 {
				t.Errorf("Errors = %v, want >= 0", o.State.Errors)
			}
		}
	})
}
