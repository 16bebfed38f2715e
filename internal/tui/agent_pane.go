package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/overseer/internal/events"
)

// agentEntry is the pane's view of one registered agent.
type agentEntry struct {
	ID       string
	Name     string
	Status   string // "IDLE" or "BUSY"
	Activity []string
}

// AgentPaneModel shows the agent pool: a registration-ordered list with
// status icons plus a scrollable activity log for the selected agent.
type AgentPaneModel struct {
	agents      map[string]*agentEntry // agent ID -> entry
	agentOrder  []string               // registration order for display
	taskAgents  map[string]string      // task ID -> agent ID, for settle lines
	selectedIdx int
	viewport    viewport.Model
	width       int
	height      int
	focused     bool
}

// NewAgentPaneModel creates a new agent pane model.
func NewAgentPaneModel() AgentPaneModel {
	vp := viewport.New(0, 0)
	return AgentPaneModel{
		agents:     make(map[string]*agentEntry),
		taskAgents: make(map[string]string),
		viewport:   vp,
	}
}

// Update handles messages for the agent pane.
func (m AgentPaneModel) Update(msg tea.Msg) (AgentPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case tea.KeyMsg:
		if !m.focused {
			break
		}

		switch {
		case key.Matches(msg, keys.Down):
			if m.selectedIdx < len(m.agentOrder)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
		case key.Matches(msg, keys.Up):
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
		default:
			// Other keys scroll the activity viewport.
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case events.AgentRegisteredEvent:
		if entry, exists := m.agents[msg.AgentID]; exists {
			// Re-registration refreshes the name and frees the agent.
			entry.Name = msg.Name
			entry.Status = "IDLE"
			m.appendActivity(msg.AgentID, msg.Timestamp, "re-registered")
		} else {
			m.agents[msg.AgentID] = &agentEntry{
				ID:     msg.AgentID,
				Name:   msg.Name,
				Status: "IDLE",
			}
			m.agentOrder = append(m.agentOrder, msg.AgentID)
			m.appendActivity(msg.AgentID, msg.Timestamp,
				fmt.Sprintf("registered (%s)", strings.Join(msg.Capabilities, ", ")))
			if len(m.agentOrder) == 1 {
				m.selectedIdx = 0
				m.updateViewportContent()
			}
		}

	case events.AgentStatusEvent:
		if entry, exists := m.agents[msg.AgentID]; exists {
			entry.Status = msg.Status
		}

	case events.TaskAssignedEvent:
		m.taskAgents[msg.ID] = msg.AgentID
		if entry, exists := m.agents[msg.AgentID]; exists {
			entry.Status = "BUSY"
			m.appendActivity(msg.AgentID, msg.Timestamp, "assigned "+msg.ID)
		}

	case events.TaskCompletedEvent:
		if agentID, exists := m.taskAgents[msg.ID]; exists {
			delete(m.taskAgents, msg.ID)
			m.appendActivity(agentID, msg.Timestamp,
				fmt.Sprintf("completed %s in %v", msg.ID, msg.Duration.Round(time.Millisecond)))
		}

	case events.TaskFailedEvent:
		if agentID, exists := m.taskAgents[msg.ID]; exists {
			delete(m.taskAgents, msg.ID)
			m.appendActivity(agentID, msg.Timestamp,
				fmt.Sprintf("failed %s: %s", msg.ID, msg.Reason))
		}
	}

	return m, cmd
}

// appendActivity adds a timestamped line to an agent's log and refreshes
// the viewport when that agent is selected.
func (m *AgentPaneModel) appendActivity(agentID string, ts time.Time, line string) {
	entry, exists := m.agents[agentID]
	if !exists {
		return
	}
	entry.Activity = append(entry.Activity, ts.Format("15:04:05")+" "+line)
	if m.selectedAgentID() == agentID {
		m.updateViewportContent()
	}
}

// View renders the agent pane.
func (m AgentPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	// Two columns: agent list on the left, activity viewport on the right.
	listWidth := 25
	viewportWidth := m.width - listWidth - 4 // account for borders and padding

	listContent := m.renderAgentList(listWidth)
	viewportContent := m.viewport.View()

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		listContent,
		lipgloss.NewStyle().
			Width(viewportWidth).
			Height(m.height-2).
			Render(viewportContent),
	)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// renderAgentList renders the agent list column.
func (m AgentPaneModel) renderAgentList(width int) string {
	var b strings.Builder

	title := StyleTitle.Render("Agents")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(width, lipgloss.Width(title))))
	b.WriteString("\n\n")

	if len(m.agentOrder) == 0 {
		b.WriteString(StyleStatusPending.Render("Waiting..."))
	} else {
		for i, agentID := range m.agentOrder {
			entry := m.agents[agentID]
			icon := m.StatusIcon(entry.Status)
			name := entry.Name
			if len(name) > width-6 {
				name = name[:width-9] + "..."
			}

			line := fmt.Sprintf("%s %s", icon, name)
			if i == m.selectedIdx {
				line = StyleSelectedRow.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

// StatusIcon returns a styled status indicator for an agent.
func (m AgentPaneModel) StatusIcon(status string) string {
	switch status {
	case "BUSY":
		return StyleStatusRunning.Render("●")
	case "IDLE":
		return StyleStatusPending.Render("○")
	default:
		return StyleStatusPending.Render("?")
	}
}

// selectedAgentID returns the ID of the currently selected agent.
func (m AgentPaneModel) selectedAgentID() string {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.agentOrder) {
		return m.agentOrder[m.selectedIdx]
	}
	return ""
}

// updateViewportContent fills the viewport with the selected agent's
// activity log.
func (m *AgentPaneModel) updateViewportContent() {
	agentID := m.selectedAgentID()
	if agentID == "" {
		m.viewport.SetContent("Waiting for agents...")
		return
	}

	entry, exists := m.agents[agentID]
	if !exists {
		m.viewport.SetContent("Waiting for agents...")
		return
	}

	m.viewport.SetContent(strings.Join(entry.Activity, "\n"))
	m.viewport.GotoBottom()
}

// resizeViewport resizes the viewport based on pane dimensions.
func (m *AgentPaneModel) resizeViewport() {
	listWidth := 25
	viewportWidth := m.width - listWidth - 4
	viewportHeight := m.height - 4 // account for borders

	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 5 {
		viewportHeight = 5
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight
}

// SetSize updates the pane dimensions.
func (m *AgentPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *AgentPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
