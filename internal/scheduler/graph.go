package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gammazero/toposort"
)

// Graph is a directed acyclic graph of tasks. It is a plain container: the
// orchestrator holds the lock that serializes every read and write.
type Graph struct {
	tasks      map[string]*Task    // All tasks indexed by ID
	dependents map[string][]string // Maps taskID -> list of tasks that depend on it
	order      []string            // Insertion order, keeps Ready output stable
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:      make(map[string]*Task),
		dependents: make(map[string][]string),
	}
}

// AddTask adds a task to the graph. Returns error if task ID already exists.
func (g *Graph) AddTask(task *Task) error {
	if _, exists := g.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %q already exists", task.ID)
	}

	g.tasks[task.ID] = task
	g.order = append(g.order, task.ID)

	// Build dependents map for efficient downstream lookup
	for _, depID := range task.DependsOn {
		g.dependents[depID] = append(g.dependents[depID], task.ID)
	}

	return nil
}

// Validate runs topological sort using gammazero/toposort.
// Returns ordered task IDs or error if cycle detected.
// Also verifies all task IDs in DependsOn exist in the graph.
func (g *Graph) Validate() ([]string, error) {
	// First, verify all dependencies exist
	for _, taskID := range g.order {
		for _, depID := range g.tasks[taskID].DependsOn {
			if _, exists := g.tasks[depID]; !exists {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", taskID, depID)
			}
		}
	}

	// Build edges for topological sort
	var edges []toposort.Edge
	for _, taskID := range g.order {
		task := g.tasks[taskID]
		if len(task.DependsOn) == 0 {
			// Task with no dependencies - add edge from nil to ensure it's included
			edges = append(edges, toposort.Edge{nil, taskID})
		} else {
			for _, depID := range task.DependsOn {
				// Edge (depID, taskID) means depID must come before taskID
				edges = append(edges, toposort.Edge{depID, taskID})
			}
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("graph contains cycle: %w", err)
	}

	// Convert []interface{} to []string
	ordered := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			ordered = append(ordered, id.(string))
		}
	}

	// Verify all tasks are in the sorted result (catches disconnected components)
	if len(ordered) != len(g.tasks) {
		missing := []string{}
		foundMap := make(map[string]bool)
		for _, id := range ordered {
			foundMap[id] = true
		}
		for _, taskID := range g.order {
			if !foundMap[taskID] {
				missing = append(missing, taskID)
			}
		}
		return nil, fmt.Errorf("topological sort lost %d tasks: %s", len(missing), strings.Join(missing, ", "))
	}

	return ordered, nil
}

// Ready returns all pending tasks whose dependencies have ALL completed, in
// insertion order. Tasks downstream of a failure never appear; they get
// blocked by BlockDependents instead.
func (g *Graph) Ready() []*Task {
	ready := []*Task{}

	for _, taskID := range g.order {
		task := g.tasks[taskID]
		if task.Status != TaskPending {
			continue
		}

		allCompleted := true
		for _, depID := range task.DependsOn {
			dep, exists := g.tasks[depID]
			if !exists || dep.Status != TaskCompleted {
				allCompleted = false
				break
			}
		}

		if allCompleted {
			ready = append(ready, cloneTask(task))
		}
	}

	return ready
}

// MarkRunning sets a pending task to TaskRunning and records the agent.
func (g *Graph) MarkRunning(taskID, agentID string) error {
	task, exists := g.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	if task.Status != TaskPending {
		return fmt.Errorf("task %q is %s, not PENDING", taskID, task.Status)
	}

	task.Status = TaskRunning
	task.AssignedAgentID = agentID
	return nil
}

// MarkCompleted sets a running task to TaskCompleted and stores its output.
func (g *Graph) MarkCompleted(taskID, output string) error {
	task, exists := g.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	if task.Status != TaskRunning {
		return fmt.Errorf("task %q is %s, not RUNNING", taskID, task.Status)
	}

	task.Status = TaskCompleted
	task.Output = output
	task.CompletedAt = time.Now()
	return nil
}

// MarkFailed sets a running task to TaskFailed and stores the reason.
func (g *Graph) MarkFailed(taskID, reason string) error {
	task, exists := g.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	if task.Status != TaskRunning {
		return fmt.Errorf("task %q is %s, not RUNNING", taskID, task.Status)
	}

	task.Status = TaskFailed
	task.Output = reason
	task.CompletedAt = time.Now()
	return nil
}

// BlockDependents marks every still-pending task downstream of taskID as
// TaskBlocked, walking transitively, and returns the blocked IDs. Tasks
// already running or terminal are left alone.
func (g *Graph) BlockDependents(taskID string) []string {
	blocked := []string{}

	queue := append([]string(nil), g.dependents[taskID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		task, exists := g.tasks[id]
		if !exists || task.Status != TaskPending {
			continue
		}

		task.Status = TaskBlocked
		task.Output = fmt.Sprintf("dependency failed: %s", taskID)
		task.CompletedAt = time.Now()
		blocked = append(blocked, id)
		queue = append(queue, g.dependents[id]...)
	}

	return blocked
}

// Get returns a copy of the task by ID.
func (g *Graph) Get(taskID string) (*Task, bool) {
	task, exists := g.tasks[taskID]
	if !exists {
		return nil, false
	}
	return cloneTask(task), true
}

// Tasks returns copies of all tasks in insertion order.
func (g *Graph) Tasks() []*Task {
	tasks := make([]*Task, 0, len(g.tasks))
	for _, taskID := range g.order {
		tasks = append(tasks, cloneTask(g.tasks[taskID]))
	}
	return tasks
}

// Counts returns the number of tasks per status.
func (g *Graph) Counts() map[TaskStatus]int {
	counts := make(map[TaskStatus]int)
	for _, task := range g.tasks {
		counts[task.Status]++
	}
	return counts
}

func cloneTask(task *Task) *Task {
	if task == nil {
		return nil
	}

	cp := *task
	if task.RequiredCapabilities != nil {
		cp.RequiredCapabilities = append([]string(nil), task.RequiredCapabilities...)
	}
	if task.DependsOn != nil {
		cp.DependsOn = append([]string(nil), task.DependsOn...)
	}
	return &cp
}
