package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aristath/overseer/internal/events"
	"github.com/aristath/overseer/internal/history"
	"github.com/aristath/overseer/internal/judge"
	"github.com/aristath/overseer/internal/policy"
	"github.com/aristath/overseer/internal/registry"
	"github.com/aristath/overseer/internal/scheduler"
)

// monitorFramework labels the execution framework in monitor signals.
const monitorFramework = "orchestrated"

// defaultWorkDuration paces the built-in simulated work.
const defaultWorkDuration = 5 * time.Second

// WorkFunc performs the actual work for an assigned task and returns its raw
// output. The orchestrator never interprets the output itself; the judge does.
type WorkFunc func(ctx context.Context, task *scheduler.Task, agent *registry.Agent) (string, error)

// SimulateWork returns a WorkFunc that waits for d and reports the task done.
// It stands in for dispatching to a real agent runtime.
func SimulateWork(d time.Duration) WorkFunc {
	return func(ctx context.Context, task *scheduler.Task, agent *registry.Agent) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(d):
		}
		return "Completed: " + task.Description, nil
	}
}

// execute runs one dispatched (task, agent) unit: monitor signal, the work,
// validation, the recorded outcome with its dependency cascade, and the
// supervision hook. The agent goes back to idle no matter how the unit ends.
func (o *Orchestrator) execute(ctx context.Context, projectID string, task *scheduler.Task, agent *registry.Agent) {
	started := time.Now()
	defer o.releaseAgent(agent.ID)

	log.Printf("executing task %s on agent %s", task.ID, agent.ID)
	verdict, err := o.runTask(ctx, task, agent)

	output := ""
	if verdict != nil {
		data, jsonErr := json.Marshal(verdict)
		if jsonErr != nil {
			err = fmt.Errorf("encoding validation result for task %q: %w", task.ID, jsonErr)
		} else {
			output = string(data)
		}
	}

	failReason := ""
	switch {
	case err != nil:
		failReason = err.Error()
		output = failReason
	case verdict.Intervention.Required:
		failReason = verdict.Intervention.Reason
	}
	failed := failReason != ""

	o.mu.Lock()
	project := o.projects[projectID]
	var blocked []string
	var markErr error
	if failed {
		markErr = project.Graph.MarkFailed(task.ID, output)
		blocked = project.Graph.BlockDependents(task.ID)
	} else {
		markErr = project.Graph.MarkCompleted(task.ID, output)
	}
	o.inFlight--
	settled := !o.finished[projectID] && project.Status() != scheduler.ProjectInProgress
	if settled {
		o.finished[projectID] = true
	}
	finalStatus := project.Status()
	o.mu.Unlock()

	if markErr != nil {
		log.Printf("ERROR: failed to record outcome of task %q: %v", task.ID, markErr)
	}

	duration := time.Since(started)
	if failed {
		log.Printf("task %s FAILED: %s", task.ID, failReason)
		o.publish(events.TaskFailedEvent{
			ProjectID: projectID,
			ID:        task.ID,
			Reason:    failReason,
			Duration:  duration,
			Timestamp: time.Now(),
		})
	} else {
		log.Printf("task %s COMPLETED", task.ID)
		o.publish(events.TaskCompletedEvent{
			ProjectID: projectID,
			ID:        task.ID,
			Output:    output,
			Duration:  duration,
			Timestamp: time.Now(),
		})
	}
	for _, id := range blocked {
		log.Printf("task %s BLOCKED: dependency %s failed", id, task.ID)
		o.publish(events.TaskBlockedEvent{
			ProjectID:    projectID,
			ID:           id,
			FailedTaskID: task.ID,
			Timestamp:    time.Now(),
		})
	}
	if settled {
		log.Printf("project %s finished: %s", projectID, finalStatus)
		o.publish(events.ProjectFinishedEvent{
			ProjectID: projectID,
			Status:    finalStatus.String(),
			Timestamp: time.Now(),
		})
	}

	runStatus := scheduler.TaskCompleted
	if failed {
		runStatus = scheduler.TaskFailed
	}
	o.recordRun(ctx, &history.TaskRun{
		ProjectID:  projectID,
		TaskID:     task.ID,
		AgentID:    agent.ID,
		Status:     runStatus.String(),
		Output:     output,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})

	if verdict != nil {
		o.supervise(ctx, projectID, task, agent, verdict, failed)
	}
}

// runTask sends the monitor signal, performs the work, and validates the
// output. A panic in the pluggable work function is captured as an error so
// a bad WorkFunc cannot take down the scheduler. The monitor signal is
// fire-and-forget: its error is logged, never fatal.
func (o *Orchestrator) runTask(ctx context.Context, task *scheduler.Task, agent *registry.Agent) (verdict *judge.ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict = nil
			err = fmt.Errorf("task execution panicked: %v", r)
		}
	}()

	monitorErr := o.cfg.Judge.Monitor(ctx, judge.MonitorRequest{
		AgentName: agent.Name,
		Framework: monitorFramework,
		TaskID:    task.ID,
		Task:      task.Description,
	})
	if monitorErr != nil {
		log.Printf("WARNING: monitor signal for task %q failed: %v", task.ID, monitorErr)
	}

	output, err := o.cfg.WorkFunc(ctx, task, agent)
	if err != nil {
		return nil, fmt.Errorf("work for task %q: %w", task.ID, err)
	}

	cb := o.breakers.Get(o.cfg.JudgeType)
	verdict, err = validateWithRetry(ctx, o.cfg.Judge, task.ID, output, cb, o.cfg.Retry)
	if err != nil {
		return nil, fmt.Errorf("validating task %q: %w", task.ID, err)
	}
	return verdict, nil
}

// supervise derives an agent state from the verdict, searches for the best
// intervention, and records the decision. The decision is advisory: the task
// outcome was already fixed by the intervention flag.
func (o *Orchestrator) supervise(ctx context.Context, projectID string, task *scheduler.Task, agent *registry.Agent, verdict *judge.ValidationResult, failed bool) {
	o.mu.Lock()
	if failed {
		o.streaks[agent.ID]++
	} else {
		o.streaks[agent.ID] = 0
	}
	state := policy.AgentState{
		Quality:  verdict.Score,
		Errors:   o.streaks[agent.ID],
		Resource: float64(o.inFlight) / float64(o.cfg.ConcurrencyLimit),
		Progress: o.projectProgress(projectID),
	}
	o.mu.Unlock()

	decision := o.cfg.Engine.Decide(state)

	log.Printf("decision for task %s: %s (score %.1f)", task.ID, decision.Action, decision.Score)
	o.publish(events.DecisionEvent{
		AgentID:   agent.ID,
		ID:        task.ID,
		Action:    decision.Action.String(),
		Score:     decision.Score,
		Timestamp: time.Now(),
	})
	o.recordDecision(ctx, task.ID, agent.ID, decision)

	if decision.Action != policy.ActionEscalate {
		return
	}

	reason := fmt.Sprintf("agent %s needs review on task %s: %s", agent.ID, task.ID, verdict.Reasoning)
	o.publish(events.EscalationEvent{
		AgentID:   agent.ID,
		ID:        task.ID,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	if o.cfg.Escalations == nil {
		log.Printf("ESCALATION task %q: %s (no channel configured)", task.ID, reason)
		return
	}
	note, err := o.cfg.Escalations.Raise(ctx, task.ID, reason)
	if err != nil {
		log.Printf("WARNING: escalation for task %q failed: %v", task.ID, err)
		return
	}
	log.Printf("escalation for task %s resolved: %s", task.ID, note)
}

// projectProgress is the completed fraction of the project's tasks. Callers
// hold the orchestrator lock.
func (o *Orchestrator) projectProgress(projectID string) float64 {
	project, exists := o.projects[projectID]
	if !exists {
		return 0
	}

	counts := project.Graph.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(counts[scheduler.TaskCompleted]) / float64(total)
}

// releaseAgent returns the agent to the idle pool.
func (o *Orchestrator) releaseAgent(agentID string) {
	o.mu.Lock()
	o.registry.SetStatus(agentID, registry.AgentIdle, "")
	o.mu.Unlock()

	o.publish(events.AgentStatusEvent{
		AgentID:   agentID,
		Status:    registry.AgentIdle.String(),
		Timestamp: time.Now(),
	})
}

// recordDecision checkpoints a supervision decision when a history store is
// configured. Actions are stored by name so the rows read without the code.
func (o *Orchestrator) recordDecision(ctx context.Context, taskID, agentID string, d policy.Decision) {
	if o.cfg.History == nil {
		return
	}

	type consideredEntry struct {
		Action string  `json:"action"`
		Score  float64 `json:"score"`
	}
	entries := make([]consideredEntry, 0, len(d.Considered))
	for _, sa := range d.Considered {
		entries = append(entries, consideredEntry{Action: sa.Action.String(), Score: sa.Score})
	}
	considered, err := json.Marshal(entries)
	if err != nil {
		log.Printf("WARNING: failed to encode alternatives for task %q: %v", taskID, err)
		considered = nil
	}

	rec := &history.Decision{
		TaskID:     taskID,
		AgentID:    agentID,
		Action:     d.Action.String(),
		Score:      d.Score,
		Considered: string(considered),
		Quality:    d.State.Quality,
		ErrorCount: d.State.Errors,
		Resource:   d.State.Resource,
		Progress:   d.State.Progress,
	}
	if err := o.cfg.History.SaveDecision(ctx, rec); err != nil {
		log.Printf("WARNING: failed to record decision for task %q: %v", taskID, err)
	}
}

// recordRun checkpoints an execution attempt when a history store is
// configured.
func (o *Orchestrator) recordRun(ctx context.Context, run *history.TaskRun) {
	if o.cfg.History == nil {
		return
	}
	if err := o.cfg.History.SaveTaskRun(ctx, run); err != nil {
		log.Printf("WARNING: failed to record run of task %q: %v", run.TaskID, err)
	}
}
