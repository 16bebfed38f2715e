package policy

import "testing"

// TestApply tests the deterministic transition used by the minimax model.
func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		state  AgentState
		action Action
		want   AgentState
	}{
		{
			name:   "allow advances with slight drift",
			state:  AgentState{Quality: 0.8, Errors: 0, Resource: 0.5, Progress: 0.5},
			action: ActionAllow,
			want:   AgentState{Quality: 0.76, Errors: 0, Resource: 0.55, Progress: 0.6},
		},
		{
			name:   "warn advances slowly at extra cost",
			state:  AgentState{Quality: 0.8, Errors: 0, Resource: 0.5, Progress: 0.5},
			action: ActionWarn,
			want:   AgentState{Quality: 0.8, Errors: 0, Resource: 0.65, Progress: 0.55},
		},
		{
			name:   "correct repairs quality and clears an error",
			state:  AgentState{Quality: 0.6, Errors: 1, Resource: 0.5, Progress: 0.5},
			action: ActionCorrect,
			want:   AgentState{Quality: 0.76, Errors: 0, Resource: 0.7, Progress: 0.6},
		},
		{
			name:   "correct leaves high quality untouched",
			state:  AgentState{Quality: 0.9, Errors: 1, Resource: 0.2, Progress: 0.5},
			action: ActionCorrect,
			want:   AgentState{Quality: 0.9, Errors: 1, Resource: 0.4, Progress: 0.6},
		},
		{
			name:   "escalate discards progress and quality",
			state:  AgentState{Quality: 0.8, Errors: 0, Resource: 0.5, Progress: 0.5},
			action: ActionEscalate,
			want:   AgentState{Quality: 0.08, Errors: 1, Resource: 0.55, Progress: 0.1},
		},
		{
			name:   "resource clamps at one",
			state:  AgentState{Quality: 0.9, Errors: 0, Resource: 0.95, Progress: 0.5},
			action: ActionCorrect,
			want:   AgentState{Quality: 0.9, Errors: 0, Resource: 1.0, Progress: 0.6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.state, tt.action)
			if !almostEqual(got.Quality, tt.want.Quality) {
				t.Errorf("Quality = %v, want %v", got.Quality, tt.want.Quality)
			}
			if got.Errors != tt.want.Errors {
				t.Errorf("Errors = %d, want %d", got.Errors, tt.want.Errors)
			}
			if !almostEqual(got.Resource, tt.want.Resource) {
				t.Errorf("Resource = %v, want %v", got.Resource, tt.want.Resource)
			}
			if !almostEqual(got.Progress, tt.want.Progress) {
				t.Errorf("Progress = %v, want %v", got.Progress, tt.want.Progress)
			}
		})
	}
}

// TestMinimaxDecide tests the adversarial variant's decisions.
func TestMinimaxDecide(t *testing.T) {
	engine := NewMinimaxEngine(DefaultWeights(), DefaultDepth)

	t.Run("error streak forces escalation", func(t *testing.T) {
		d := engine.Decide(AgentState{Quality: 0.5, Errors: 3, Resource: 0.5, Progress: 0.5})
		if d.Action != ActionEscalate {
			t.Errorf("Decide() action = %v, want ESCALATE", d.Action)
		}
	})

	t.Run("healthy agent is left alone", func(t *testing.T) {
		d := engine.Decide(AgentState{Quality: 0.95, Errors: 0, Resource: 0.2, Progress: 0.8})
		if d.Action != ActionAllow {
			t.Errorf("Decide() action = %v, want ALLOW", d.Action)
		}
	})

	t.Run("considered actions are ranked", func(t *testing.T) {
		d := engine.Decide(AgentState{Quality: 0.6, Errors: 1, Resource: 0.5, Progress: 0.5})
		if len(d.Considered) != 4 {
			t.Fatalf("considered %d actions, want 4", len(d.Considered))
		}
		for i := 1; i < len(d.Considered); i++ {
			if d.Considered[i-1].Score < d.Considered[i].Score {
				t.Errorf("considered not sorted at index %d", i)
			}
		}
		if d.Considered[0].Action != d.Action {
			t.Errorf("top considered action = %v, want chosen %v", d.Considered[0].Action, d.Action)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		state := AgentState{Quality: 0.6, Errors: 1, Resource: 0.5, Progress: 0.5}
		first := engine.Decide(state)
		second := engine.Decide(state)
		if first.Action != second.Action || !almostEqual(first.Score, second.Score) {
			t.Errorf("Decide() not deterministic: %v/%v vs %v/%v",
				first.Action, first.Score, second.Action, second.Score)
		}
	})
}
