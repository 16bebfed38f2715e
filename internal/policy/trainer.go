package policy

import "sort"

// DefaultLearningRate is the step size for feedback training.
const DefaultLearningRate = 0.01

// Feedback is one human correction of a recorded decision: the action the
// engine chose, the action the reviewer says it should have chosen, and the
// heuristic contributions of every action considered at the time.
type Feedback struct {
	Original   Action
	Corrected  Action
	Heuristics map[Action]map[string]float64
}

// Heuristics returns the per-component contributions an action is expected
// to produce: the probability-weighted components of its successor states.
// Keys are "quality", "progress", "errors", "resource".
func Heuristics(s AgentState, a Action) map[string]float64 {
	h := map[string]float64{
		"quality":  0,
		"progress": 0,
		"errors":   0,
		"resource": 0,
	}
	for _, o := range Outcomes(s, a) {
		h["quality"] += o.Probability * o.State.Quality
		h["progress"] += o.Probability * o.State.Progress
		h["errors"] += o.Probability * float64(o.State.Errors)
		h["resource"] += o.Probability * o.State.Resource
	}
	return h
}

// Train nudges heuristic weights toward corrected decisions: one perceptron
// style update per record, moving each weight by rate times the difference
// between the corrected and the original action's contribution. Records
// whose original or corrected action was not among the considered actions
// are skipped. The result is normalized to sum to one and floored at zero.
// The input map is left unmodified.
func Train(weights map[string]float64, records []Feedback, rate float64) map[string]float64 {
	if rate <= 0 {
		rate = DefaultLearningRate
	}

	trained := make(map[string]float64, len(weights))
	for k, v := range weights {
		trained[k] = v
	}
	keys := make([]string, 0, len(trained))
	for k := range trained {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, r := range records {
		correct, ok := r.Heuristics[r.Corrected]
		if !ok {
			continue
		}
		incorrect, ok := r.Heuristics[r.Original]
		if !ok {
			continue
		}
		for _, k := range keys {
			trained[k] += rate * (correct[k] - incorrect[k])
		}
	}

	var total float64
	for _, k := range keys {
		total += trained[k]
	}
	if total > 0 {
		for _, k := range keys {
			trained[k] /= total
		}
	}
	for _, k := range keys {
		if trained[k] < 0 {
			trained[k] = 0
		}
	}

	return trained
}
