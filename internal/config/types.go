package config

import "time"

// SchedulerConfig controls the assignment loop.
type SchedulerConfig struct {
	IntervalSeconds  int `json:"interval_seconds"`  // Seconds between assignment passes
	ConcurrencyLimit int `json:"concurrency_limit"` // Max in-flight task executions
}

// Interval returns the assignment pass interval as a duration.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// WeightsConfig holds the policy evaluation parameters. Keys match
// policy.Weights so the section can be copied field for field.
type WeightsConfig struct {
	Quality         float64 `json:"quality"`
	Progress        float64 `json:"progress"`
	ErrorPenalty    float64 `json:"error_penalty"`
	ResourcePenalty float64 `json:"resource_penalty"`
}

// PolicyConfig controls the supervision search.
type PolicyConfig struct {
	SearchDepth  int           `json:"search_depth"`
	Weights      WeightsConfig `json:"weights"`
	LearningRate float64       `json:"learning_rate"`
}

// JudgeConfig selects and tunes the output judge.
type JudgeConfig struct {
	Type      string `json:"type"`                 // Judge type: "heuristic" or "anthropic"
	Model     string `json:"model,omitempty"`      // Model for the anthropic judge
	MaxTokens int    `json:"max_tokens,omitempty"` // Response budget for the anthropic judge
}

// HistoryConfig controls the decision/run history store.
type HistoryConfig struct {
	Path string `json:"path,omitempty"` // SQLite file path; empty disables persistence
}

// WorkerConfig controls how tasks execute. With a command set, each task
// runs it as a subprocess in a scratch workspace; with no command, work is
// simulated in-process.
type WorkerConfig struct {
	Command        []string `json:"command,omitempty"`         // Worker command and arguments
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"` // Per-task execution timeout
	WorkspaceRoot  string   `json:"workspace_root,omitempty"`  // Root directory for task workspaces
}

// Timeout returns the per-task execution timeout as a duration.
func (c WorkerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AgentConfig defines one worker registered at startup.
type AgentConfig struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// TemplateTaskConfig is one task in a decomposition template.
type TemplateTaskConfig struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	DependsOn    []int    `json:"depends_on,omitempty"` // Indices of earlier tasks in this template
}

// TemplateConfig maps goal keywords to a fixed task graph shape. A template
// matches when every keyword appears in the goal description.
type TemplateConfig struct {
	Keywords []string             `json:"keywords"`
	Tasks    []TemplateTaskConfig `json:"tasks"`
}

// Config is the top-level configuration.
type Config struct {
	Scheduler SchedulerConfig           `json:"scheduler"`
	Policy    PolicyConfig              `json:"policy"`
	Judge     JudgeConfig               `json:"judge"`
	History   HistoryConfig             `json:"history"`
	Worker    WorkerConfig              `json:"worker"`
	Agents    map[string]AgentConfig    `json:"agents"`
	Templates map[string]TemplateConfig `json:"templates"`
}
