package policy

import "fmt"

// Action is a supervisory intervention.
type Action int

const (
	ActionAllow    Action = iota // Let the agent continue unmodified
	ActionWarn                   // Nudge the agent, small overhead
	ActionCorrect                // Actively repair quality, larger overhead
	ActionEscalate               // Hand off to a human, resets progress
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "ALLOW"
	case ActionWarn:
		return "WARN"
	case ActionCorrect:
		return "CORRECT"
	case ActionEscalate:
		return "ESCALATE"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction converts a stored action string back to an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "ALLOW":
		return ActionAllow, nil
	case "WARN":
		return ActionWarn, nil
	case "CORRECT":
		return ActionCorrect, nil
	case "ESCALATE":
		return ActionEscalate, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// PossibleActions returns the legal interventions for a state, always in the
// same fixed order so tie-breaking is reproducible. Three or more errors
// force escalation; high quality rules out heavy interventions; low quality
// rules out light ones.
func PossibleActions(s AgentState) []Action {
	switch {
	case s.Errors >= 3:
		return []Action{ActionEscalate}
	case s.Quality >= 0.9:
		return []Action{ActionAllow, ActionWarn}
	case s.Quality < 0.4:
		return []Action{ActionCorrect, ActionEscalate}
	}
	return []Action{ActionAllow, ActionWarn, ActionCorrect, ActionEscalate}
}
