// Package tui renders the live dashboard: the agent pool on the left, the
// project graphs and supervision decisions on the right, and a modal
// settings form. All state is fed by bus events; the panes never reach
// into the orchestrator.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/overseer/internal/config"
	"github.com/aristath/overseer/internal/events"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneAgents PaneID = iota
	PaneProjects
)

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	agentPane    AgentPaneModel
	projectPane  ProjectPaneModel
	settingsPane SettingsPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	width        int
	height       int
	quitting     bool
	showSettings bool
}

// New creates the dashboard model, subscribed to every topic on the bus.
func New(bus *events.Bus, cfg *config.Config, globalPath, projectPath string) Model {
	return Model{
		agentPane:    NewAgentPaneModel(),
		projectPane:  NewProjectPaneModel(),
		settingsPane: NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:  PaneAgents,
		eventSub:     bus.SubscribeAll(256),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next bus event.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// An open settings form captures every key (modal behavior).
		// Only esc dismisses it; "s" has to stay typable in the inputs.
		if m.showSettings {
			if key.Matches(msg, keys.Dismiss) {
				m.showSettings = false
				m.settingsPane.SetVisible(false)
			} else {
				var cmd tea.Cmd
				m.settingsPane, cmd = m.settingsPane.Update(msg)
				cmds = append(cmds, cmd)

				// The pane hides itself after a successful save.
				if !m.settingsPane.IsVisible() {
					m.showSettings = false
				}
			}
			return m, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Settings):
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			cmds = append(cmds, m.settingsPane.Init())

		case key.Matches(msg, keys.CycleFocus):
			// Two panes, so forward and backward meet.
			m.focusedPane = (m.focusedPane + 1) % 2
			m.updateFocusStates()

		case key.Matches(msg, keys.Agents):
			m.focusedPane = PaneAgents
			m.updateFocusStates()

		case key.Matches(msg, keys.Projects):
			m.focusedPane = PaneProjects
			m.updateFocusStates()

		default:
			// Delegate to the focused pane.
			switch m.focusedPane {
			case PaneAgents:
				var cmd tea.Cmd
				m.agentPane, cmd = m.agentPane.Update(msg)
				cmds = append(cmds, cmd)
			case PaneProjects:
				var cmd tea.Cmd
				m.projectPane, cmd = m.projectPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.settingsPane.SetSize(msg.Width, msg.Height)

	case events.AgentRegisteredEvent, events.AgentStatusEvent:
		var cmd tea.Cmd
		m.agentPane, cmd = m.agentPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.TaskAssignedEvent, events.TaskCompletedEvent, events.TaskFailedEvent:
		// Both panes track task transitions: the agent pane for activity
		// lines, the project pane for counts.
		var cmd tea.Cmd
		m.agentPane, cmd = m.agentPane.Update(msg)
		cmds = append(cmds, cmd)
		m.projectPane, cmd = m.projectPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.TaskBlockedEvent, events.GoalSubmittedEvent, events.ProjectFinishedEvent,
		events.DecisionEvent, events.EscalationEvent:
		var cmd tea.Cmd
		m.projectPane, cmd = m.projectPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))
	}

	return m, tea.Batch(cmds...)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showSettings {
		return m.settingsPane.View()
	}

	leftPane := m.agentPane.View()
	rightPane := m.projectPane.View()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	helpBar := HelpView()

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, helpBar)
}

// computeLayout calculates pane dimensions and updates the child models.
func (m *Model) computeLayout() {
	leftWidth := (m.width * 35) / 100
	rightWidth := m.width - leftWidth
	availableHeight := m.height - 1 // reserve one line for the help bar

	m.agentPane.SetSize(leftWidth, availableHeight)
	m.projectPane.SetSize(rightWidth, availableHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of the panes.
func (m *Model) updateFocusStates() {
	m.agentPane.SetFocused(m.focusedPane == PaneAgents)
	m.projectPane.SetFocused(m.focusedPane == PaneProjects)
}
