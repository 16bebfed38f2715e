package policy

import (
	"fmt"
	"math"
	"sort"
)

// TraceNode is one node of an explained search tree: the root carries the
// evaluated state, action nodes carry expected values, and outcome nodes
// carry probabilities and successor states.
type TraceNode struct {
	Name        string       `json:"name"`
	Action      string       `json:"action,omitempty"`
	Score       float64      `json:"score,omitempty"`
	Probability float64      `json:"probability,omitempty"`
	Evaluation  float64      `json:"evaluation,omitempty"`
	State       *AgentState  `json:"state,omitempty"`
	Children    []*TraceNode `json:"children,omitempty"`
}

// DecideWithTrace runs the same search as Decide and additionally returns
// the tree it explored. The decision is identical to Decide's for the same
// state and depth.
func (e *Engine) DecideWithTrace(state AgentState) (Decision, *TraceNode) {
	state = state.clamp()
	rootEval := e.Weights.Evaluate(state)
	root := &TraceNode{
		Name:       "root",
		Evaluation: rootEval,
		State:      &state,
	}

	best := ActionAllow
	bestScore := math.Inf(-1)
	legal := PossibleActions(state)
	considered := make([]ScoredAction, 0, len(legal))
	for _, a := range legal {
		node, score := e.traceAction(state, a, e.Depth)
		root.Children = append(root.Children, node)
		considered = append(considered, ScoredAction{Action: a, Score: score})
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	if len(considered) == 0 {
		bestScore = rootEval
	}

	sort.SliceStable(considered, func(i, j int) bool {
		return considered[i].Score > considered[j].Score
	})

	decision := Decision{Action: best, Score: bestScore, Considered: considered, State: state}
	return decision, root
}

// traceAction mirrors actionValue while recording every explored node.
func (e *Engine) traceAction(s AgentState, a Action, depth int) (*TraceNode, float64) {
	node := &TraceNode{Name: a.String(), Action: a.String()}

	var expected float64
	for _, o := range Outcomes(s, a) {
		next := o.State
		child := &TraceNode{
			Name:        fmt.Sprintf("p=%.2f", o.Probability),
			Probability: o.Probability,
			State:       &next,
		}

		var value float64
		if depth == 0 || next.Terminal() {
			value = e.Weights.Evaluate(next)
			child.Evaluation = value
		} else {
			value = math.Inf(-1)
			for _, na := range PossibleActions(next) {
				grand, v := e.traceAction(next, na, depth-1)
				child.Children = append(child.Children, grand)
				if v > value {
					value = v
				}
			}
		}

		expected += o.Probability * value
		node.Children = append(node.Children, child)
	}

	node.Score = expected
	return node, expected
}
