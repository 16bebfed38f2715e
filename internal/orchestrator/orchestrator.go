// Package orchestrator runs the agent pool: it owns the registry and the
// project graphs behind one lock, assigns ready tasks to idle agents on a
// fixed cadence, and executes each assignment as a bounded concurrent unit
// supervised by the judge and the policy engine.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/overseer/internal/events"
	"github.com/aristath/overseer/internal/history"
	"github.com/aristath/overseer/internal/judge"
	"github.com/aristath/overseer/internal/policy"
	"github.com/aristath/overseer/internal/registry"
	"github.com/aristath/overseer/internal/scheduler"
)

// Config configures the orchestrator.
type Config struct {
	Interval         time.Duration         // Time between assignment passes (default 2s)
	ConcurrencyLimit int                   // Max in-flight execution units (default 4)
	Judge            judge.Judge           // Output validator (default heuristic)
	JudgeType        string                // Names the judge's circuit breaker
	Engine           *policy.Engine        // Supervision search (default weights and depth)
	Decomposer       *scheduler.Decomposer // Goal decomposition (default has no templates)
	WorkFunc         WorkFunc              // Task work (default simulates it)
	Retry            RetryConfig           // Judge retry policy (zero value uses defaults)
	Bus              *events.Bus           // Optional event bus
	History          history.Store         // Optional decision and run history
	Escalations      *EscalationChannel    // Optional channel for ESCALATE decisions
}

// Orchestrator coordinates agents and projects. All shared mutable state
// lives behind a single mutex; execution units and the assignment loop only
// touch it through short transition sections, never across a judge call or
// the work itself.
type Orchestrator struct {
	cfg      Config
	breakers *CircuitBreakerRegistry
	group    errgroup.Group

	mu       sync.Mutex
	registry *registry.Registry
	projects map[string]*scheduler.Project
	order    []string        // Project IDs in submission order
	finished map[string]bool // Projects whose finish event has been published
	streaks  map[string]int  // Agent ID -> consecutive failed tasks
	seq      int             // Goal ID counter
	inFlight int
	running  bool
	baseCtx  context.Context
	stopCh   chan struct{}
	loopDone chan struct{}
	escOnce  bool
}

// New creates an orchestrator with an empty registry and no projects.
func New(cfg Config) *Orchestrator {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 4
	}
	if cfg.Judge == nil {
		cfg.Judge = judge.NewHeuristicJudge()
	}
	if cfg.JudgeType == "" {
		cfg.JudgeType = "heuristic"
	}
	if cfg.Engine == nil {
		cfg.Engine = policy.NewEngine(policy.DefaultWeights(), policy.DefaultDepth)
	}
	if cfg.Decomposer == nil {
		cfg.Decomposer = scheduler.NewDecomposer(nil)
	}
	if cfg.WorkFunc == nil {
		cfg.WorkFunc = SimulateWork(defaultWorkDuration)
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}

	o := &Orchestrator{
		cfg:      cfg,
		breakers: NewCircuitBreakerRegistry(),
		registry: registry.NewRegistry(),
		projects: make(map[string]*scheduler.Project),
		finished: make(map[string]bool),
		streaks:  make(map[string]int),
	}
	o.group.SetLimit(cfg.ConcurrencyLimit)
	return o
}

// Start launches the assignment loop. Starting a running orchestrator is a
// no-op. The context flows to every execution unit dispatched from here on;
// cancelling it aborts in-flight judge calls and work.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		log.Printf("orchestrator is already running")
		return
	}

	o.running = true
	o.baseCtx = ctx
	o.stopCh = make(chan struct{})
	o.loopDone = make(chan struct{})

	if o.cfg.Escalations != nil && !o.escOnce {
		o.cfg.Escalations.Start(ctx)
		o.escOnce = true
	}

	go o.loop(ctx, o.stopCh, o.loopDone)
	log.Printf("orchestrator started")
}

// Stop halts the assignment loop and returns once it has exited. In-flight
// execution units are not cancelled; they finish naturally. Stopping a
// stopped orchestrator is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	stop := o.stopCh
	done := o.loopDone
	o.mu.Unlock()

	close(stop)
	<-done
	log.Printf("orchestrator stopped")
}

// Wait blocks until every in-flight execution unit has finished. Call after
// Stop to drain.
func (o *Orchestrator) Wait() {
	_ = o.group.Wait()
}

// loop runs assignment passes until stopped or the context ends.
func (o *Orchestrator) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		o.assignPass()

		select {
		case <-stop:
			return
		case <-ctx.Done():
			o.mu.Lock()
			o.running = false
			o.mu.Unlock()
			return
		case <-ticker.C:
		}
	}
}

// assignPass pairs ready tasks with idle capable agents. Each pairing is
// committed atomically under the lock; the execution units are dispatched
// after it is released.
func (o *Orchestrator) assignPass() {
	type assignment struct {
		projectID string
		task      *scheduler.Task
		agent     *registry.Agent
	}
	var assigned []assignment

	o.mu.Lock()
	ctx := o.baseCtx
pass:
	for _, goalID := range o.order {
		project := o.projects[goalID]
		if project.Status() != scheduler.ProjectInProgress {
			continue
		}

		for _, task := range project.Graph.Ready() {
			if o.inFlight >= o.cfg.ConcurrencyLimit {
				break pass
			}

			agent := o.registry.FindIdleWithCapabilities(task.RequiredCapabilities)
			if agent == nil {
				continue
			}

			if err := project.Graph.MarkRunning(task.ID, agent.ID); err != nil {
				log.Printf("ERROR: failed to mark task %q as running: %v", task.ID, err)
				continue
			}
			o.registry.SetStatus(agent.ID, registry.AgentBusy, task.ID)
			o.inFlight++

			task.Status = scheduler.TaskRunning
			task.AssignedAgentID = agent.ID
			assigned = append(assigned, assignment{projectID: goalID, task: task, agent: agent})
		}
	}
	o.mu.Unlock()

	for _, a := range assigned {
		log.Printf("assigning task %s to agent %s", a.task.ID, a.agent.ID)
		o.publish(events.TaskAssignedEvent{
			ProjectID: a.projectID,
			ID:        a.task.ID,
			AgentID:   a.agent.ID,
			Timestamp: time.Now(),
		})
		o.publish(events.AgentStatusEvent{
			AgentID:       a.agent.ID,
			Status:        registry.AgentBusy.String(),
			CurrentTaskID: a.task.ID,
			Timestamp:     time.Now(),
		})

		// Capture for the closure
		a := a
		o.group.Go(func() error {
			o.execute(ctx, a.projectID, a.task, a.agent)
			return nil
		})
	}
}

// RegisterAgent adds an agent to the pool or refreshes an existing entry.
func (o *Orchestrator) RegisterAgent(id, name string, capabilities []string) *registry.Agent {
	o.mu.Lock()
	agent := o.registry.Register(id, name, capabilities)
	o.mu.Unlock()

	log.Printf("agent registered: %s (%s)", agent.ID, agent.Name)
	o.publish(events.AgentRegisteredEvent{
		AgentID:      agent.ID,
		Name:         agent.Name,
		Capabilities: agent.Capabilities,
		Timestamp:    time.Now(),
	})
	return agent
}

// SetAgentStatus updates an agent's live status. Unknown agents are logged
// and ignored.
func (o *Orchestrator) SetAgentStatus(id string, status registry.AgentStatus, taskID string) {
	o.mu.Lock()
	_, known := o.registry.Get(id)
	o.registry.SetStatus(id, status, taskID)
	o.mu.Unlock()

	if known {
		o.publish(events.AgentStatusEvent{
			AgentID:       id,
			Status:        status.String(),
			CurrentTaskID: taskID,
			Timestamp:     time.Now(),
		})
	}
}

// Agents returns a snapshot of all registered agents in registration order.
func (o *Orchestrator) Agents() []*registry.Agent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registry.List()
}

// SubmitGoal decomposes a goal into a project and adds it to the pool.
func (o *Orchestrator) SubmitGoal(name, description string) (*ProjectView, error) {
	o.mu.Lock()
	o.seq++
	goalID := fmt.Sprintf("goal-%d", o.seq)
	o.mu.Unlock()

	project, err := o.cfg.Decomposer.Decompose(goalID, name, description)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.projects[project.ID] = project
	o.order = append(o.order, project.ID)
	view := snapshotProject(project)
	o.mu.Unlock()

	log.Printf("goal %s submitted: %q decomposed into %d tasks", project.ID, name, len(view.Tasks))
	o.publish(events.GoalSubmittedEvent{
		ProjectID: project.ID,
		Name:      name,
		TaskCount: len(view.Tasks),
		Timestamp: time.Now(),
	})
	return view, nil
}

// ProjectView is a point-in-time copy of a project and its tasks. Views are
// detached from the orchestrator: mutating one changes nothing.
type ProjectView struct {
	ID          string
	Name        string
	Description string
	Status      scheduler.ProjectStatus
	Tasks       []*scheduler.Task
	CreatedAt   time.Time
}

// Project returns a snapshot of one project.
func (o *Orchestrator) Project(goalID string) (*ProjectView, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	project, exists := o.projects[goalID]
	if !exists {
		return nil, false
	}
	return snapshotProject(project), true
}

// Projects returns snapshots of all projects in submission order.
func (o *Orchestrator) Projects() []*ProjectView {
	o.mu.Lock()
	defer o.mu.Unlock()

	views := make([]*ProjectView, 0, len(o.order))
	for _, goalID := range o.order {
		views = append(views, snapshotProject(o.projects[goalID]))
	}
	return views
}

func snapshotProject(p *scheduler.Project) *ProjectView {
	return &ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status(),
		Tasks:       p.Graph.Tasks(),
		CreatedAt:   p.CreatedAt,
	}
}

// Status is a point-in-time summary of the orchestrator.
type Status struct {
	Running  bool
	Agents   int
	Projects int
	InFlight int
	Tasks    map[scheduler.TaskStatus]int
}

// Status summarizes the pool: running flag, counts, and tasks per status
// across every project.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	tasks := make(map[scheduler.TaskStatus]int)
	for _, goalID := range o.order {
		for status, n := range o.projects[goalID].Graph.Counts() {
			tasks[status] += n
		}
	}

	return Status{
		Running:  o.running,
		Agents:   len(o.registry.List()),
		Projects: len(o.projects),
		InFlight: o.inFlight,
		Tasks:    tasks,
	}
}

// publish sends an event when a bus is configured.
func (o *Orchestrator) publish(event events.Event) {
	if o.cfg.Bus != nil {
		o.cfg.Bus.Publish(event)
	}
}
