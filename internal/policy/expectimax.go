package policy

import (
	"math"
	"sort"
)

// DefaultDepth bounds the search cost: each ply multiplies the tree by up to
// four actions and two outcomes.
const DefaultDepth = 2

// ScoredAction pairs a considered action with its expected value.
type ScoredAction struct {
	Action Action  `json:"action"`
	Score  float64 `json:"score"`
}

// Decision is the result of one policy search.
type Decision struct {
	Action     Action         // Chosen intervention
	Score      float64        // Its expected value
	Considered []ScoredAction // Every legal action, best first
	State      AgentState     // The state that was evaluated
}

// Engine searches the stochastic outcome model, assuming the supervisor
// picks its best legal action after every stochastic draw. It holds no
// mutable state: identical inputs always produce identical decisions.
type Engine struct {
	Weights Weights
	Depth   int
}

// NewEngine returns an engine with the given weights. A non-positive depth
// falls back to DefaultDepth.
func NewEngine(w Weights, depth int) *Engine {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Engine{Weights: w, Depth: depth}
}

// Decide searches at the engine's configured depth.
func (e *Engine) Decide(state AgentState) Decision {
	return e.DecideDepth(state, e.Depth)
}

// DecideDepth returns the legal action with the strictly greatest expected
// value; ties keep the first action in legality order. With no legal actions
// (unreachable under the legality rules) the decision defaults to ALLOW.
func (e *Engine) DecideDepth(state AgentState, depth int) Decision {
	state = state.clamp()

	best := ActionAllow
	bestScore := math.Inf(-1)
	legal := PossibleActions(state)
	considered := make([]ScoredAction, 0, len(legal))
	for _, a := range legal {
		score := e.actionValue(state, a, depth)
		considered = append(considered, ScoredAction{Action: a, Score: score})
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	if len(considered) == 0 {
		bestScore = e.Weights.Evaluate(state)
	}

	// Stable sort so equal scores keep legality order.
	sort.SliceStable(considered, func(i, j int) bool {
		return considered[i].Score > considered[j].Score
	})

	return Decision{Action: best, Score: bestScore, Considered: considered, State: state}
}

// actionValue is the expected value of taking an action: the probability
// weighted sum over its outcomes of the best value achievable from each
// successor. Recursion bottoms out at depth zero or a terminal state by
// returning the static evaluation.
func (e *Engine) actionValue(s AgentState, a Action, depth int) float64 {
	var expected float64
	for _, o := range Outcomes(s, a) {
		next := o.State
		var value float64
		if depth == 0 || next.Terminal() {
			value = e.Weights.Evaluate(next)
		} else {
			value = math.Inf(-1)
			for _, na := range PossibleActions(next) {
				if v := e.actionValue(next, na, depth-1); v > value {
					value = v
				}
			}
		}
		expected += o.Probability * value
	}
	return expected
}
