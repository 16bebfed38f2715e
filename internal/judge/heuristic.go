package judge

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Drift above this threshold flags the output for intervention.
const driftThreshold = 0.5

var driftPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(instead|however|but let's focus on|alternatively|a different approach)`),
	regexp.MustCompile(`(?i)(let's try something else|let's switch gears|on another note)`),
	regexp.MustCompile(`(?i)(i can't do that, but i can|i'm unable to fulfill that request, so instead)`),
}

var distractions = []string{"what's the weather", "tell me a joke", "who are you"}

var wordPattern = regexp.MustCompile(`\b\w{3,}\b`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "in": true, "on": true,
	"of": true, "for": true, "to": true, "and": true, "but": true,
}

// HeuristicJudge scores output locally by looking for topic drift: explicit
// pivot phrases, known distractions, and low keyword overlap with the goals.
// It needs no network and is the default judge.
type HeuristicJudge struct {
	monitored *monitoredGoals
}

// NewHeuristicJudge creates the rule-based judge.
func NewHeuristicJudge() *HeuristicJudge {
	return &HeuristicJudge{monitored: newMonitoredGoals()}
}

// Monitor records the task's goals for the validation that follows.
func (j *HeuristicJudge) Monitor(ctx context.Context, req MonitorRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.monitored.record(req.TaskID, goalList(req))
	return nil
}

// Validate analyzes the output for drift from the monitored goals. The score
// is the inverse of the accumulated drift; intervention triggers at 0.5 drift.
// A task that was never monitored is checked for drift phrases only.
func (j *HeuristicJudge) Validate(ctx context.Context, taskID, output string) (*ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drift, findings := analyzeDrift(output, j.monitored.lookup(taskID))

	reasoning := "output stays on task"
	if len(findings) > 0 {
		reasoning = strings.Join(findings, "; ")
	}

	result := &ValidationResult{
		Score:     1.0 - drift,
		Reasoning: reasoning,
		Safe:      true,
	}
	if drift >= driftThreshold {
		result.Intervention = Intervention{
			Required: true,
			Reason:   fmt.Sprintf("drift score %.2f for task %s: %s", drift, taskID, reasoning),
		}
	}

	return result, nil
}

// analyzeDrift accumulates drift signals and caps the total at 1.0.
func analyzeDrift(output string, goals []string) (float64, []string) {
	var drift float64
	var findings []string

	for _, pattern := range driftPatterns {
		if match := pattern.FindString(output); match != "" {
			drift += 0.6
			findings = append(findings, fmt.Sprintf("output shifts topic (%q)", strings.ToLower(match)))
		}
	}

	lowered := strings.ToLower(output)
	for _, distraction := range distractions {
		if strings.Contains(lowered, distraction) {
			drift += 0.3
			findings = append(findings, fmt.Sprintf("output contains a distraction (%q)", distraction))
		}
	}

	goalKeywords := make(map[string]bool)
	for _, goal := range goals {
		for _, word := range extractKeywords(goal) {
			goalKeywords[word] = true
		}
	}

	if len(goalKeywords) > 0 {
		outputKeywords := make(map[string]bool)
		for _, word := range extractKeywords(output) {
			outputKeywords[word] = true
		}

		var matches int
		for word := range goalKeywords {
			if outputKeywords[word] {
				matches++
			}
		}
		alignment := float64(matches) / float64(len(goalKeywords))

		switch {
		case alignment < 0.2:
			drift += 0.5
			findings = append(findings, fmt.Sprintf("keyword alignment with goals is very low (%.2f)", alignment))
		case alignment < 0.5:
			drift += 0.2
			findings = append(findings, fmt.Sprintf("keyword alignment with goals is moderate (%.2f)", alignment))
		}
	}

	if drift > 1.0 {
		drift = 1.0
	}
	return drift, findings
}

// extractKeywords lowercases the text and keeps words of three or more
// characters that are not stop words.
func extractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
