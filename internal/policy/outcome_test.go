package policy

import (
	"testing"
)

// TestOutcomes tests the stochastic transition model for each action.
func TestOutcomes(t *testing.T) {
	base := AgentState{Quality: 0.6, Errors: 1, Resource: 0.5, Progress: 0.5}

	t.Run("allow splits into drift and clean progress", func(t *testing.T) {
		outcomes := Outcomes(base, ActionAllow)
		if len(outcomes) != 2 {
			t.Fatalf("Outcomes() returned %d outcomes, want 2", len(outcomes))
		}

		drift := outcomes[0]
		if !almostEqual(drift.Probability, 0.8) {
			t.Errorf("drift probability = %v, want 0.8", drift.Probability)
		}
		if !almostEqual(drift.State.Quality, 0.6*0.95) {
			t.Errorf("drift quality = %v, want %v", drift.State.Quality, 0.6*0.95)
		}
		if !almostEqual(drift.State.Progress, 0.6) {
			t.Errorf("drift progress = %v, want 0.6", drift.State.Progress)
		}
		if !almostEqual(drift.State.Resource, 0.55) {
			t.Errorf("drift resource = %v, want 0.55", drift.State.Resource)
		}

		clean := outcomes[1]
		if !almostEqual(clean.Probability, 0.2) {
			t.Errorf("clean probability = %v, want 0.2", clean.Probability)
		}
		if !almostEqual(clean.State.Quality, 0.6) {
			t.Errorf("clean quality = %v, want 0.6 (unchanged)", clean.State.Quality)
		}
		if !almostEqual(clean.State.Progress, 0.6) {
			t.Errorf("clean progress = %v, want 0.6", clean.State.Progress)
		}
	})

	t.Run("warn is deterministic with extra resource cost", func(t *testing.T) {
		outcomes := Outcomes(base, ActionWarn)
		if len(outcomes) != 1 {
			t.Fatalf("Outcomes() returned %d outcomes, want 1", len(outcomes))
		}

		o := outcomes[0]
		if !almostEqual(o.Probability, 1.0) {
			t.Errorf("probability = %v, want 1.0", o.Probability)
		}
		if !almostEqual(o.State.Progress, 0.55) {
			t.Errorf("progress = %v, want 0.55", o.State.Progress)
		}
		// 0.5 + 0.05 universal + 0.10 warn
		if !almostEqual(o.State.Resource, 0.65) {
			t.Errorf("resource = %v, want 0.65", o.State.Resource)
		}
	})

	t.Run("correct success restores quality and clears an error", func(t *testing.T) {
		outcomes := Outcomes(base, ActionCorrect)
		if len(outcomes) != 2 {
			t.Fatalf("Outcomes() returned %d outcomes, want 2", len(outcomes))
		}

		fixed := outcomes[0]
		if !almostEqual(fixed.Probability, 0.7) {
			t.Errorf("fixed probability = %v, want 0.7", fixed.Probability)
		}
		// 0.6 + 0.4*(1-0.6)
		if !almostEqual(fixed.State.Quality, 0.76) {
			t.Errorf("fixed quality = %v, want 0.76", fixed.State.Quality)
		}
		if fixed.State.Errors != 0 {
			t.Errorf("fixed errors = %d, want 0", fixed.State.Errors)
		}
		if !almostEqual(fixed.State.Progress, 0.6) {
			t.Errorf("fixed progress = %v, want 0.6", fixed.State.Progress)
		}
		if !almostEqual(fixed.State.Resource, 0.7) {
			t.Errorf("fixed resource = %v, want 0.7", fixed.State.Resource)
		}

		missed := outcomes[1]
		if !almostEqual(missed.Probability, 0.3) {
			t.Errorf("missed probability = %v, want 0.3", missed.Probability)
		}
		if !almostEqual(missed.State.Quality, 0.6) {
			t.Errorf("missed quality = %v, want 0.6 (unchanged)", missed.State.Quality)
		}
		if missed.State.Errors != 1 {
			t.Errorf("missed errors = %d, want 1 (unchanged)", missed.State.Errors)
		}
		if !almostEqual(missed.State.Progress, 0.52) {
			t.Errorf("missed progress = %v, want 0.52", missed.State.Progress)
		}
	})

	t.Run("correct leaves high quality untouched", func(t *testing.T) {
		s := AgentState{Quality: 0.9, Errors: 2, Resource: 0.2, Progress: 0.5}
		outcomes := Outcomes(s, ActionCorrect)

		fixed := outcomes[0]
		if !almostEqual(fixed.State.Quality, 0.9) {
			t.Errorf("quality = %v, want 0.9 (already above repair threshold)", fixed.State.Quality)
		}
		if fixed.State.Errors != 2 {
			t.Errorf("errors = %d, want 2 (no repair, no decrement)", fixed.State.Errors)
		}
	})

	t.Run("escalate is a deterministic setback", func(t *testing.T) {
		outcomes := Outcomes(base, ActionEscalate)
		if len(outcomes) != 1 {
			t.Fatalf("Outcomes() returned %d outcomes, want 1", len(outcomes))
		}

		o := outcomes[0]
		if !almostEqual(o.State.Progress, 0.1) {
			t.Errorf("progress = %v, want 0.1", o.State.Progress)
		}
		if !almostEqual(o.State.Quality, 0.06) {
			t.Errorf("quality = %v, want 0.06", o.State.Quality)
		}
		if o.State.Errors != 2 {
			t.Errorf("errors = %d, want 2", o.State.Errors)
		}
	})

	t.Run("input state is never modified", func(t *testing.T) {
		before := base
		for _, a := range []Action{ActionAllow, ActionWarn, ActionCorrect, ActionEscalate} {
			Outcomes(base, a)
		}
		if base != before {
			t.Errorf("input state mutated: %+v, want %+v", base, before)
		}
	})

	t.Run("probabilities sum to one", func(t *testing.T) {
		for _, a := range []Action{ActionAllow, ActionWarn, ActionCorrect, ActionEscalate} {
			var sum float64
			for _, o := range Outcomes(base, a) {
				sum += o.Probability
			}
			if !almostEqual(sum, 1.0) {
				t.Errorf("probabilities for %v sum to %v, want 1.0", a, sum)
			}
		}
	})
}
