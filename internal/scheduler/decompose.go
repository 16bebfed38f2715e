package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/overseer/internal/config"
)

// Decomposer turns goal text into a project with a task graph by matching
// configured templates. This is plain keyword matching, not inference: a
// template applies when every one of its keywords appears in the goal text.
type Decomposer struct {
	templates map[string]config.TemplateConfig
}

// NewDecomposer creates a decomposer over the given templates.
func NewDecomposer(templates map[string]config.TemplateConfig) *Decomposer {
	return &Decomposer{templates: templates}
}

// Decompose builds a validated project for the goal. Templates are tried in
// name order so matching stays deterministic; when none match, the goal
// becomes a single task requiring the "general" capability.
func (d *Decomposer) Decompose(goalID, name, description string) (*Project, error) {
	tasks := d.templateTasks(goalID, description)
	if tasks == nil {
		tasks = []*Task{
			{
				ID:                   goalID + "-t1",
				Name:                 "Execute Goal",
				Description:          description,
				RequiredCapabilities: []string{"general"},
				Status:               TaskPending,
				CreatedAt:            time.Now(),
			},
		}
	}

	graph := NewGraph()
	for _, task := range tasks {
		if err := graph.AddTask(task); err != nil {
			return nil, fmt.Errorf("decomposing goal %q: %w", goalID, err)
		}
	}
	if _, err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("decomposing goal %q: %w", goalID, err)
	}

	return &Project{
		ID:          goalID,
		Name:        name,
		Description: description,
		Graph:       graph,
		CreatedAt:   time.Now(),
	}, nil
}

// templateTasks returns the tasks for the first matching template, or nil
// when no template matches.
func (d *Decomposer) templateTasks(goalID, description string) []*Task {
	lowered := strings.ToLower(description)

	names := make([]string, 0, len(d.templates))
	for name := range d.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		template := d.templates[name]
		if !matchesKeywords(lowered, template.Keywords) {
			continue
		}

		tasks := make([]*Task, 0, len(template.Tasks))
		for i, entry := range template.Tasks {
			task := &Task{
				ID:                   fmt.Sprintf("%s-t%d", goalID, i+1),
				Name:                 entry.Name,
				Description:          entry.Description,
				RequiredCapabilities: append([]string(nil), entry.Capabilities...),
				Status:               TaskPending,
				CreatedAt:            time.Now(),
			}
			// Template dependencies are indices into earlier tasks
			for _, dep := range entry.DependsOn {
				task.DependsOn = append(task.DependsOn, fmt.Sprintf("%s-t%d", goalID, dep+1))
			}
			tasks = append(tasks, task)
		}
		return tasks
	}

	return nil
}

func matchesKeywords(lowered string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, keyword := range keywords {
		if !strings.Contains(lowered, strings.ToLower(keyword)) {
			return false
		}
	}
	return true
}
