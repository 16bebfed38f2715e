package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/overseer/internal/config"
)

// SettingsPaneModel manages the settings form overlay. Saving writes the
// whole config to the chosen path, so the file also picks up sections the
// form does not edit.
type SettingsPaneModel struct {
	form        *huh.Form
	config      *config.Config
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	saved       bool
	err         error

	// Form field bindings (strings for Huh)
	saveTarget  string
	interval    string
	concurrency string
	judgeType   string
	judgeModel  string
	searchDepth string
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(cfg *config.Config, globalPath, projectPath string) SettingsPaneModel {
	m := SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
		visible:     false,
		saved:       false,

		saveTarget:  "global",
		interval:    strconv.Itoa(cfg.Scheduler.IntervalSeconds),
		concurrency: strconv.Itoa(cfg.Scheduler.ConcurrencyLimit),
		judgeType:   cfg.Judge.Type,
		judgeModel:  cfg.Judge.Model,
		searchDepth: strconv.Itoa(cfg.Policy.SearchDepth),
	}

	m.buildForm()
	return m
}

// validatePositiveInt rejects anything that is not a whole number >= 1.
func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

// buildForm constructs the Huh form with all settings fields.
func (m *SettingsPaneModel) buildForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption("Global (~/.overseer/config.json)", "global"),
					huh.NewOption("Project (.overseer/config.json)", "project"),
				).
				Value(&m.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("interval").
				Title("Assignment Interval (seconds)").
				Value(&m.interval).
				Validate(validatePositiveInt).
				Placeholder("2"),

			huh.NewInput().
				Key("concurrency").
				Title("Concurrency Limit").
				Value(&m.concurrency).
				Validate(validatePositiveInt).
				Placeholder("4"),
		).Title("Scheduler"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Key("judgeType").
				Title("Judge").
				Options(
					huh.NewOption("Heuristic (offline)", "heuristic"),
					huh.NewOption("Anthropic (API)", "anthropic"),
				).
				Value(&m.judgeType),

			huh.NewInput().
				Key("judgeModel").
				Title("Judge Model").
				Value(&m.judgeModel).
				Placeholder("claude-3-opus-20240229"),

			huh.NewInput().
				Key("searchDepth").
				Title("Policy Search Depth").
				Value(&m.searchDepth).
				Validate(validatePositiveInt).
				Placeholder("2"),
		).Title("Supervision"),
	)
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Dismiss) {
			// Cancel without saving.
			m.visible = false
			m.saved = false
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.applyFormToConfig()

		targetPath := m.globalPath
		if m.saveTarget == "project" {
			targetPath = m.projectPath
		}

		if err := config.Save(m.config, targetPath); err != nil {
			m.err = err
			m.saved = false
		} else {
			m.saved = true
			m.err = nil
		}

		if m.saved {
			m.visible = false
		}
	}

	return m, cmd
}

// applyFormToConfig copies form field values back to the config struct.
// The integer fields were already validated by the form.
func (m *SettingsPaneModel) applyFormToConfig() {
	if n, err := strconv.Atoi(strings.TrimSpace(m.interval)); err == nil {
		m.config.Scheduler.IntervalSeconds = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.concurrency)); err == nil {
		m.config.Scheduler.ConcurrencyLimit = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.searchDepth)); err == nil {
		m.config.Policy.SearchDepth = n
	}
	m.config.Judge.Type = m.judgeType
	m.config.Judge.Model = strings.TrimSpace(m.judgeModel)
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string

	if m.saved && m.form.State == huh.StateCompleted {
		content = StyleSaveOK.Render("✓ Settings saved successfully!")
	} else if m.err != nil {
		content = StyleSaveError.Render(fmt.Sprintf("✗ Error saving: %v", m.err))
	} else {
		content = m.form.View()
	}

	title := StyleModalTitle.Render("⚙ Settings")

	body := StyleModalBorder.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	// Rebuild the form on open so a cancelled or completed run starts clean.
	if v && m.form != nil {
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}
