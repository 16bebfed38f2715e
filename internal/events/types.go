package events

import (
	"time"
)

// Event is the base interface for all events. Topic routes the event on the
// bus; TaskID is empty for events not tied to a task.
type Event interface {
	EventType() string
	Topic() string
	TaskID() string
}

// Topic constants
const (
	TopicTask     = "task"
	TopicAgent    = "agent"
	TopicProject  = "project"
	TopicDecision = "decision"
)

// Event type constants
const (
	EventTypeTaskAssigned    = "task.assigned"
	EventTypeTaskCompleted   = "task.completed"
	EventTypeTaskFailed      = "task.failed"
	EventTypeTaskBlocked     = "task.blocked"
	EventTypeAgentRegistered = "agent.registered"
	EventTypeAgentStatus     = "agent.status"
	EventTypeGoalSubmitted   = "project.submitted"
	EventTypeProjectFinished = "project.finished"
	EventTypeDecisionMade    = "decision.made"
	EventTypeEscalation      = "decision.escalated"
)

// TaskAssignedEvent is published when the scheduler pairs a task with an agent.
type TaskAssignedEvent struct {
	ProjectID string
	ID        string
	AgentID   string
	Timestamp time.Time
}

func (e TaskAssignedEvent) EventType() string { return EventTypeTaskAssigned }
func (e TaskAssignedEvent) Topic() string     { return TopicTask }
func (e TaskAssignedEvent) TaskID() string    { return e.ID }

// TaskCompletedEvent is published when a task's output passes validation.
type TaskCompletedEvent struct {
	ProjectID string
	ID        string
	Output    string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskCompletedEvent) EventType() string { return EventTypeTaskCompleted }
func (e TaskCompletedEvent) Topic() string     { return TopicTask }
func (e TaskCompletedEvent) TaskID() string    { return e.ID }

// TaskFailedEvent is published when a task fails validation or errors.
type TaskFailedEvent struct {
	ProjectID string
	ID        string
	Reason    string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskFailedEvent) EventType() string { return EventTypeTaskFailed }
func (e TaskFailedEvent) Topic() string     { return TopicTask }
func (e TaskFailedEvent) TaskID() string    { return e.ID }

// TaskBlockedEvent is published for each dependent blocked by a failure.
type TaskBlockedEvent struct {
	ProjectID    string
	ID           string
	FailedTaskID string
	Timestamp    time.Time
}

func (e TaskBlockedEvent) EventType() string { return EventTypeTaskBlocked }
func (e TaskBlockedEvent) Topic() string     { return TopicTask }
func (e TaskBlockedEvent) TaskID() string    { return e.ID }

// AgentRegisteredEvent is published when an agent joins the pool.
type AgentRegisteredEvent struct {
	AgentID      string
	Name         string
	Capabilities []string
	Timestamp    time.Time
}

func (e AgentRegisteredEvent) EventType() string { return EventTypeAgentRegistered }
func (e AgentRegisteredEvent) Topic() string     { return TopicAgent }
func (e AgentRegisteredEvent) TaskID() string    { return "" }

// AgentStatusEvent is published on every agent status transition.
type AgentStatusEvent struct {
	AgentID       string
	Status        string
	CurrentTaskID string
	Timestamp     time.Time
}

func (e AgentStatusEvent) EventType() string { return EventTypeAgentStatus }
func (e AgentStatusEvent) Topic() string     { return TopicAgent }
func (e AgentStatusEvent) TaskID() string    { return e.CurrentTaskID }

// GoalSubmittedEvent is published when a goal is decomposed into a project.
type GoalSubmittedEvent struct {
	ProjectID string
	Name      string
	TaskCount int
	Timestamp time.Time
}

func (e GoalSubmittedEvent) EventType() string { return EventTypeGoalSubmitted }
func (e GoalSubmittedEvent) Topic() string     { return TopicProject }
func (e GoalSubmittedEvent) TaskID() string    { return "" }

// ProjectFinishedEvent is published once a project's graph settles.
type ProjectFinishedEvent struct {
	ProjectID string
	Status    string // Final aggregate: COMPLETED or FAILED
	Timestamp time.Time
}

func (e ProjectFinishedEvent) EventType() string { return EventTypeProjectFinished }
func (e ProjectFinishedEvent) Topic() string     { return TopicProject }
func (e ProjectFinishedEvent) TaskID() string    { return "" }

// DecisionEvent is published for every supervision decision.
type DecisionEvent struct {
	AgentID   string
	ID        string // Task under supervision
	Action    string
	Score     float64
	Timestamp time.Time
}

func (e DecisionEvent) EventType() string { return EventTypeDecisionMade }
func (e DecisionEvent) Topic() string     { return TopicDecision }
func (e DecisionEvent) TaskID() string    { return e.ID }

// EscalationEvent is published when the policy demands a human look.
type EscalationEvent struct {
	AgentID   string
	ID        string
	Reason    string
	Timestamp time.Time
}

func (e EscalationEvent) EventType() string { return EventTypeEscalation }
func (e EscalationEvent) Topic() string     { return TopicDecision }
func (e EscalationEvent) TaskID() string    { return e.ID }
