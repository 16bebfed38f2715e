// Package scheduler holds the task graph side of the orchestrator: tasks
// with dependency edges, project goals with a derived aggregate status, and
// the rule-based decomposition of goal text into a task graph. Containers
// here carry no locks of their own; the orchestrator serializes access.
package scheduler

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus int

const (
	TaskPending   TaskStatus = iota // Waiting for dependencies or an agent
	TaskRunning                     // Assigned and executing
	TaskCompleted                   // Finished, output accepted
	TaskFailed                      // Finished, output rejected or errored
	TaskBlocked                     // A dependency failed; will never run
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "PENDING"
	case TaskRunning:
		return "RUNNING"
	case TaskCompleted:
		return "COMPLETED"
	case TaskFailed:
		return "FAILED"
	case TaskBlocked:
		return "BLOCKED"
	}
	return "UNKNOWN"
}

// Terminal reports whether the status can never change again.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskBlocked
}

// Task represents a unit of work in a project's graph.
type Task struct {
	ID                   string
	Name                 string
	Description          string
	RequiredCapabilities []string   // An agent must cover all of these
	DependsOn            []string   // Task IDs within the same project
	Status               TaskStatus
	Output               string     // Validation result or error, set on completion
	AssignedAgentID      string     // Set while running
	CreatedAt            time.Time
	CompletedAt          time.Time  // Zero until terminal
}

// ProjectStatus is the aggregate state of a project, always derived from its
// tasks rather than stored.
type ProjectStatus int

const (
	ProjectInProgress ProjectStatus = iota
	ProjectCompleted
	ProjectFailed
)

func (s ProjectStatus) String() string {
	switch s {
	case ProjectInProgress:
		return "IN_PROGRESS"
	case ProjectCompleted:
		return "COMPLETED"
	case ProjectFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Project is one submitted goal and its task graph. The task set is fixed at
// decomposition time; only task statuses change afterwards.
type Project struct {
	ID          string
	Name        string
	Description string
	Graph       *Graph
	CreatedAt   time.Time
}

// Status derives the aggregate state: COMPLETED when every task completed,
// FAILED when the graph has settled with at least one failed or blocked
// task, IN_PROGRESS while any task can still run. A project with a failed
// branch stays in progress until its independent branches finish too.
func (p *Project) Status() ProjectStatus {
	allCompleted := true
	anyRejected := false
	anyActive := false

	for _, task := range p.Graph.Tasks() {
		switch task.Status {
		case TaskCompleted:
		case TaskFailed, TaskBlocked:
			allCompleted = false
			anyRejected = true
		default:
			allCompleted = false
			anyActive = true
		}
	}

	switch {
	case allCompleted:
		return ProjectCompleted
	case anyRejected && !anyActive:
		return ProjectFailed
	}
	return ProjectInProgress
}
