package policy

// Outcome is one stochastic result of applying an action: a successor state
// and the probability of reaching it.
type Outcome struct {
	Probability float64
	State       AgentState
}

// Outcomes models the stochastic transition for an action. Every outcome
// starts from a universal resource tick (supervision itself costs something),
// then applies the action's effects. All writes clamp.
func Outcomes(s AgentState, a Action) []Outcome {
	base := s
	base.Resource += 0.05
	base = base.clamp()

	switch a {
	case ActionAllow:
		// Usually the agent drifts slightly while making progress; sometimes
		// it progresses with quality intact.
		drift := base
		drift.Quality *= 0.95
		drift.Progress += 0.1
		clean := base
		clean.Progress += 0.1
		return []Outcome{
			{Probability: 0.8, State: drift.clamp()},
			{Probability: 0.2, State: clean.clamp()},
		}

	case ActionWarn:
		warned := base
		warned.Progress += 0.05
		warned.Resource += 0.10
		return []Outcome{{Probability: 1.0, State: warned.clamp()}}

	case ActionCorrect:
		// Correction restores quality toward 1.0 and clears an error when it
		// lands; either way it burns resources.
		fixed := base
		if fixed.Quality < 0.85 {
			fixed.Quality += 0.4 * (1 - fixed.Quality)
			fixed.Errors--
		}
		fixed.Progress += 0.1
		fixed.Resource += 0.15
		missed := base
		missed.Progress += 0.02
		missed.Resource += 0.15
		return []Outcome{
			{Probability: 0.7, State: fixed.clamp()},
			{Probability: 0.3, State: missed.clamp()},
		}

	case ActionEscalate:
		// Deterministic setback: the handoff discards most progress and the
		// current output, and counts as an error.
		halted := base
		halted.Progress *= 0.2
		halted.Quality *= 0.1
		halted.Errors++
		return []Outcome{{Probability: 1.0, State: halted.clamp()}}
	}

	return []Outcome{{Probability: 1.0, State: base}}
}
