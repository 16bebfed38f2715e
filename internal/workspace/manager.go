package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Info holds information about a created workspace.
type Info struct {
	TaskID    string    // Owning task ID
	Path      string    // Absolute path to the workspace directory
	CreatedAt time.Time // When the workspace was created
}

// Manager hands out isolated scratch directories for task execution.
// Each running task gets its own directory under the root so concurrent
// workers never share files.
type Manager struct {
	root string

	mu     sync.Mutex
	active map[string]*Info
}

// NewManager creates a workspace manager rooted at root. An empty root
// falls back to .overseer/workspaces under the current directory.
func NewManager(root string) *Manager {
	if root == "" {
		root = filepath.Join(".overseer", "workspaces")
	}
	return &Manager{
		root:   root,
		active: make(map[string]*Info),
	}
}

// Root returns the directory workspaces are created under.
func (m *Manager) Root() string {
	return m.root
}

// Create makes a fresh directory for the given task ID and registers it
// as active. A task that already has a workspace is an error.
func (m *Manager) Create(taskID string) (*Info, error) {
	if taskID == "" {
		return nil, fmt.Errorf("workspace: empty task ID")
	}
	// Task IDs become directory names.
	if strings.ContainsAny(taskID, `/\`) {
		return nil, fmt.Errorf("workspace: task ID %q contains a path separator", taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[taskID]; exists {
		return nil, fmt.Errorf("workspace: task %s already has a workspace", taskID)
	}

	if err := os.MkdirAll(m.root, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace root: %w", err)
	}

	dir := filepath.Join(m.root, taskID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace for task %s: %w", taskID, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	info := &Info{
		TaskID:    taskID,
		Path:      abs,
		CreatedAt: time.Now(),
	}
	m.active[taskID] = info
	return info, nil
}

// Cleanup removes the workspace directory and forgets the task.
func (m *Manager) Cleanup(info *Info) error {
	m.mu.Lock()
	delete(m.active, info.TaskID)
	m.mu.Unlock()

	if err := os.RemoveAll(info.Path); err != nil {
		return fmt.Errorf("removing workspace for task %s: %w", info.TaskID, err)
	}
	return nil
}

// List returns the active workspaces ordered by task ID.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]Info, 0, len(m.active))
	for _, info := range m.active {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].TaskID < infos[j].TaskID })
	return infos
}

// Prune removes directories under the root that no active task owns,
// clearing leftovers from a previous run. It returns the number of
// directories removed.
func (m *Manager) Prune() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading workspace root: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := m.active[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, entry.Name())); err != nil {
			return removed, fmt.Errorf("pruning workspace %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
