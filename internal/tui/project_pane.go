package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/overseer/internal/events"
)

// maxRecentDecisions bounds the decision feed at the bottom of the pane.
const maxRecentDecisions = 5

// projectEntry tracks one submitted goal's task counts, derived entirely
// from task transition events.
type projectEntry struct {
	ID        string
	Name      string
	Total     int
	Completed int
	Running   int
	Failed    int
	Blocked   int
	Pending   int
	Status    string // IN_PROGRESS until the project settles
}

// ProjectPaneModel shows per-goal progress and the recent supervision
// decisions.
type ProjectPaneModel struct {
	projects  map[string]*projectEntry
	order     []string // submission order for display
	decisions []string // newest last
	width     int
	height    int
	focused   bool
}

// NewProjectPaneModel creates a new project pane model.
func NewProjectPaneModel() ProjectPaneModel {
	return ProjectPaneModel{
		projects: make(map[string]*projectEntry),
	}
}

// Update handles messages for the project pane.
func (m ProjectPaneModel) Update(msg tea.Msg) (ProjectPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.GoalSubmittedEvent:
		if _, exists := m.projects[msg.ProjectID]; !exists {
			m.projects[msg.ProjectID] = &projectEntry{
				ID:      msg.ProjectID,
				Name:    msg.Name,
				Total:   msg.TaskCount,
				Pending: msg.TaskCount,
				Status:  "IN_PROGRESS",
			}
			m.order = append(m.order, msg.ProjectID)
		}

	case events.TaskAssignedEvent:
		if p, exists := m.projects[msg.ProjectID]; exists {
			p.Pending--
			p.Running++
		}

	case events.TaskCompletedEvent:
		if p, exists := m.projects[msg.ProjectID]; exists {
			p.Running--
			p.Completed++
		}

	case events.TaskFailedEvent:
		if p, exists := m.projects[msg.ProjectID]; exists {
			p.Running--
			p.Failed++
		}

	case events.TaskBlockedEvent:
		if p, exists := m.projects[msg.ProjectID]; exists {
			p.Pending--
			p.Blocked++
		}

	case events.ProjectFinishedEvent:
		if p, exists := m.projects[msg.ProjectID]; exists {
			p.Status = msg.Status
		}

	case events.DecisionEvent:
		m.appendDecision(fmt.Sprintf("%s %s (%.1f)", msg.Action, msg.ID, msg.Score))

	case events.EscalationEvent:
		m.appendDecision(fmt.Sprintf("ESCALATE %s: %s", msg.ID, msg.Reason))
	}

	return m, nil
}

// appendDecision adds a line to the decision feed, dropping the oldest
// once the feed is full.
func (m *ProjectPaneModel) appendDecision(line string) {
	m.decisions = append(m.decisions, line)
	if len(m.decisions) > maxRecentDecisions {
		m.decisions = m.decisions[len(m.decisions)-maxRecentDecisions:]
	}
}

// View renders the project pane.
func (m ProjectPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Projects")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	if len(m.order) == 0 {
		b.WriteString(StyleStatusPending.Render("No goals submitted yet"))
		b.WriteString("\n")
	}

	for _, projectID := range m.order {
		p := m.projects[projectID]
		b.WriteString(m.renderProject(p))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	title = StyleTitle.Render("Recent Decisions")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n")
	if len(m.decisions) == 0 {
		b.WriteString(StyleStatusPending.Render("None yet"))
		b.WriteString("\n")
	}
	for _, line := range m.decisions {
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// renderProject renders one goal: a header line, labeled counts, and a
// progress bar.
func (m ProjectPaneModel) renderProject(p *projectEntry) string {
	var b strings.Builder

	name := p.Name
	maxName := m.width - len(p.ID) - len(p.Status) - 10
	if maxName > 3 && len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	status := p.Status
	switch p.Status {
	case "COMPLETED":
		status = StyleStatusComplete.Render(p.Status)
	case "FAILED":
		status = StyleStatusFailed.Render(p.Status)
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n", p.ID, status, name))

	b.WriteString(fmt.Sprintf("  Completed: %s  Running: %s  Failed: %s  Blocked: %s  Pending: %s\n",
		StyleStatusComplete.Render(fmt.Sprintf("%d", p.Completed)),
		StyleStatusRunning.Render(fmt.Sprintf("%d", p.Running)),
		StyleStatusFailed.Render(fmt.Sprintf("%d", p.Failed)),
		StyleStatusBlocked.Render(fmt.Sprintf("%d", p.Blocked)),
		StyleStatusPending.Render(fmt.Sprintf("%d", p.Pending))))

	if p.Total > 0 {
		barWidth := min(m.width-10, 40)
		completedWidth := (p.Completed * barWidth) / p.Total
		failedWidth := (p.Failed * barWidth) / p.Total
		blockedWidth := (p.Blocked * barWidth) / p.Total
		runningWidth := (p.Running * barWidth) / p.Total
		pendingWidth := barWidth - completedWidth - failedWidth - blockedWidth - runningWidth

		bar := StyleStatusComplete.Render(strings.Repeat("=", max(0, completedWidth)))
		bar += StyleStatusFailed.Render(strings.Repeat("!", max(0, failedWidth)))
		bar += StyleStatusBlocked.Render(strings.Repeat("x", max(0, blockedWidth)))
		bar += StyleStatusRunning.Render(strings.Repeat("-", max(0, runningWidth)))
		bar += StyleStatusPending.Render(strings.Repeat(".", max(0, pendingWidth)))

		b.WriteString(fmt.Sprintf("  [%s]  %d/%d\n", bar, p.Completed, p.Total))
	}

	return b.String()
}

// SetSize updates the pane dimensions.
func (m *ProjectPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProjectPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
