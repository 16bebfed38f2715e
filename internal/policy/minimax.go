package policy

import (
	"math"
	"sort"
)

// MinimaxEngine is the adversarial variant of the policy search: actions
// transition deterministically via Apply, and between agent moves the
// environment takes a ply that decays quality. The stochastic Engine is what
// the orchestrator runs; this variant exists to compare decisions under the
// harsher worst-case model.
type MinimaxEngine struct {
	Weights Weights
	Depth   int
}

// NewMinimaxEngine returns a minimax engine with the given weights. A
// non-positive depth falls back to DefaultDepth.
func NewMinimaxEngine(w Weights, depth int) *MinimaxEngine {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &MinimaxEngine{Weights: w, Depth: depth}
}

// Apply is the deterministic transition used by the minimax model: the
// expected effect of each action, with the universal resource tick applied
// at the end.
func Apply(s AgentState, a Action) AgentState {
	switch a {
	case ActionAllow:
		s.Progress += 0.1
		s.Quality *= 0.95
	case ActionWarn:
		s.Progress += 0.05
		s.Resource += 0.10
	case ActionCorrect:
		if s.Quality < 0.85 {
			s.Quality += 0.4 * (1 - s.Quality)
			s.Errors--
		}
		s.Progress += 0.1
		s.Resource += 0.15
	case ActionEscalate:
		s.Progress *= 0.2
		s.Quality *= 0.1
		s.Errors++
	}
	s.Resource += 0.05
	return s.clamp()
}

// Decide applies each legal action and scores the resulting state with the
// environment to move. Result shape matches Engine.Decide.
func (e *MinimaxEngine) Decide(state AgentState) Decision {
	state = state.clamp()

	best := ActionAllow
	bestScore := math.Inf(-1)
	legal := minimaxActions(state)
	considered := make([]ScoredAction, 0, len(legal))
	for _, a := range legal {
		score := e.minimax(Apply(state, a), e.Depth, false)
		considered = append(considered, ScoredAction{Action: a, Score: score})
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	if len(considered) == 0 {
		bestScore = e.Weights.Evaluate(state)
	}

	sort.SliceStable(considered, func(i, j int) bool {
		return considered[i].Score > considered[j].Score
	})

	return Decision{Action: best, Score: bestScore, Considered: considered, State: state}
}

func (e *MinimaxEngine) minimax(s AgentState, depth int, maximizing bool) float64 {
	if depth == 0 || s.Terminal() {
		return e.Weights.Evaluate(s)
	}

	if maximizing {
		best := math.Inf(-1)
		for _, a := range minimaxActions(s) {
			if v := e.minimax(Apply(s, a), depth-1, false); v > best {
				best = v
			}
		}
		if math.IsInf(best, -1) {
			return e.Weights.Evaluate(s)
		}
		return best
	}

	// Minimizing ply: the environment degrades quality while the agent works.
	next := s
	next.Quality *= 0.95
	return e.minimax(next.clamp(), depth-1, true)
}

// minimaxActions mirrors PossibleActions except at the high-quality bound,
// where this model keeps the full action set for quality exactly 0.9.
func minimaxActions(s AgentState) []Action {
	switch {
	case s.Errors >= 3:
		return []Action{ActionEscalate}
	case s.Quality > 0.9:
		return []Action{ActionAllow, ActionWarn}
	case s.Quality < 0.4:
		return []Action{ActionCorrect, ActionEscalate}
	}
	return []Action{ActionAllow, ActionWarn, ActionCorrect, ActionEscalate}
}
