// Package judge scores agent output against the goals it was produced for.
// The scheduler only acts on the intervention flag; everything else is
// diagnostic context for operators and the decision history.
package judge

import (
	"context"
	"fmt"
	"sync"
)

// MonitorRequest announces that an agent has started working on a task. The
// task text and instructions become the goals its output is validated against.
type MonitorRequest struct {
	AgentName    string
	Framework    string
	TaskID       string
	Task         string
	Instructions []string
}

// Intervention is the judge's verdict on whether the output is unusable.
type Intervention struct {
	Required bool   `json:"intervention_required"`
	Reason   string `json:"reason,omitempty"`
}

// ValidationResult is the structured evaluation of one task output.
type ValidationResult struct {
	Score        float64      `json:"overall_score"` // 0.0 (terrible) to 1.0 (perfect)
	Reasoning    string       `json:"reasoning"`
	Safe         bool         `json:"is_safe"`
	Intervention Intervention `json:"intervention_result"`
}

// Judge defines the interface that all output judges must implement.
type Judge interface {
	// Monitor registers the task an agent is about to work on. The scheduler
	// fires it before the work starts and relies on nothing but the error.
	Monitor(ctx context.Context, req MonitorRequest) error

	// Validate scores the output produced for a previously monitored task.
	Validate(ctx context.Context, taskID, output string) (*ValidationResult, error)
}

// Config selects and tunes a judge.
type Config struct {
	Type      string // "heuristic" or "anthropic"
	Model     string // Model for the anthropic judge
	MaxTokens int    // Response budget for the anthropic judge
	APIKey    string // Falls back to ANTHROPIC_API_KEY when empty
}

// New creates a judge based on the provided configuration.
// This factory function switches on cfg.Type and returns the appropriate adapter.
func New(cfg Config) (Judge, error) {
	switch cfg.Type {
	case "", "heuristic":
		return NewHeuristicJudge(), nil
	case "anthropic":
		return NewAnthropicJudge(cfg)
	default:
		return nil, fmt.Errorf("unknown judge type: %s", cfg.Type)
	}
}

// goalList flattens a monitor request into the goal strings a judge
// validates against.
func goalList(req MonitorRequest) []string {
	goals := make([]string, 0, len(req.Instructions)+1)
	if req.Task != "" {
		goals = append(goals, req.Task)
	}
	return append(goals, req.Instructions...)
}

// monitoredGoals maps task ids to the goals Monitor registered for them.
// Execution units call the judge concurrently, so access is serialized here
// rather than in each adapter.
type monitoredGoals struct {
	mu    sync.Mutex
	goals map[string][]string
}

func newMonitoredGoals() *monitoredGoals {
	return &monitoredGoals{goals: make(map[string][]string)}
}

func (m *monitoredGoals) record(taskID string, goals []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[taskID] = goals
}

// lookup returns the registered goals, or nil for a task never monitored.
func (m *monitoredGoals) lookup(taskID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goals[taskID]
}
