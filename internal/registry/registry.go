// Package registry tracks the worker agents known to the orchestrator:
// identity, capability set, and live status. The registry is a plain
// container with no lock of its own; the orchestrator serializes every
// access behind its single state lock.
package registry

import (
	"log"
	"time"
)

// AgentStatus is the live state of a registered agent.
type AgentStatus int

const (
	AgentIdle AgentStatus = iota // Available for assignment
	AgentBusy                    // Executing a task
)

func (s AgentStatus) String() string {
	switch s {
	case AgentIdle:
		return "IDLE"
	case AgentBusy:
		return "BUSY"
	}
	return "UNKNOWN"
}

// Agent is one registered worker.
type Agent struct {
	ID            string
	Name          string
	Capabilities  []string
	Status        AgentStatus
	CurrentTaskID string // Set while busy, empty otherwise
	LastSeen      time.Time
}

// Registry holds agents in registration order. Accessors return copies;
// internal entries are never handed out.
type Registry struct {
	agents map[string]*Agent
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]*Agent)}
}

// Register adds an agent or updates an existing one in place. Re-registering
// refreshes name and capabilities, resets the agent to idle, and keeps its
// original position in the registration order. Returns a copy of the entry.
func (r *Registry) Register(id, name string, capabilities []string) *Agent {
	agent, exists := r.agents[id]
	if !exists {
		agent = &Agent{ID: id}
		r.agents[id] = agent
		r.order = append(r.order, id)
	}

	agent.Name = name
	agent.Capabilities = append([]string(nil), capabilities...)
	agent.Status = AgentIdle
	agent.CurrentTaskID = ""
	agent.LastSeen = time.Now()

	return cloneAgent(agent)
}

// Get returns a copy of the agent with the given id.
func (r *Registry) Get(id string) (*Agent, bool) {
	agent, exists := r.agents[id]
	if !exists {
		return nil, false
	}
	return cloneAgent(agent), true
}

// List returns copies of all agents in registration order.
func (r *Registry) List() []*Agent {
	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneAgent(r.agents[id]))
	}
	return out
}

// SetStatus updates an agent's status and current task. Unknown ids are
// logged and ignored; a status update must never fail the caller.
func (r *Registry) SetStatus(id string, status AgentStatus, taskID string) {
	agent, exists := r.agents[id]
	if !exists {
		log.Printf("WARNING: status update for unknown agent %q ignored", id)
		return
	}

	agent.Status = status
	agent.CurrentTaskID = taskID
	agent.LastSeen = time.Now()
}

// FindIdleWithCapabilities returns a copy of the first idle agent, in
// registration order, whose capability set covers every required tag, or nil
// if there is none. The match is not claimed here: the caller must mark the
// agent busy while still holding the lock that serialized this lookup.
func (r *Registry) FindIdleWithCapabilities(required []string) *Agent {
	for _, id := range r.order {
		agent := r.agents[id]
		if agent.Status != AgentIdle {
			continue
		}
		if hasAllCapabilities(agent.Capabilities, required) {
			return cloneAgent(agent)
		}
	}
	return nil
}

func hasAllCapabilities(have, required []string) bool {
	set := make(map[string]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	for _, c := range required {
		if !set[c] {
			return false
		}
	}
	return true
}

func cloneAgent(agent *Agent) *Agent {
	cp := *agent
	if agent.Capabilities != nil {
		cp.Capabilities = append([]string(nil), agent.Capabilities...)
	}
	return &cp
}
