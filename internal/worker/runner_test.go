package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aristath/overseer/internal/registry"
	"github.com/aristath/overseer/internal/scheduler"
	"github.com/aristath/overseer/internal/workspace"
)

func testTask(id string) *scheduler.Task {
	return &scheduler.Task{
		ID:                   id,
		Name:                 "Write Scraper Code",
		Description:          "Write a Python script that scrapes the data described in the goal.",
		RequiredCapabilities: []string{"python", "file_io"},
	}
}

func testAgent() *registry.Agent {
	return &registry.Agent{
		ID:           "worker-1",
		Name:         "Coder",
		Capabilities: []string{"python", "file_io", "general"},
	}
}

func TestNewRunner_EmptyCommand(t *testing.T) {
	if _, err := NewRunner(Config{}); err == nil {
		t.Fatal("expected error for empty command, got nil")
	}
}

func TestRun_StdoutBecomesOutput(t *testing.T) {
	r, err := NewRunner(Config{Command: []string{"sh", "-c", `echo "done: $OVERSEER_TASK_ID"`}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	output, err := r.Run(context.Background(), testTask("goal-1-t1"), testAgent())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if output != "done: goal-1-t1" {
		t.Errorf("output = %q, want %q", output, "done: goal-1-t1")
	}
}

func TestRun_DescriptionOnStdin(t *testing.T) {
	r, err := NewRunner(Config{Command: []string{"sh", "-c", "cat"}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	task := testTask("goal-1-t1")
	output, err := r.Run(context.Background(), task, testAgent())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if output != task.Description {
		t.Errorf("output = %q, want the task description %q", output, task.Description)
	}
}

func TestRun_EnvironmentDescribesAssignment(t *testing.T) {
	script := `echo "$OVERSEER_AGENT_ID/$OVERSEER_AGENT_NAME/$OVERSEER_TASK_NAME/$OVERSEER_TASK_CAPABILITIES"`
	r, err := NewRunner(Config{Command: []string{"sh", "-c", script}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	output, err := r.Run(context.Background(), testTask("goal-1-t1"), testAgent())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "worker-1/Coder/Write Scraper Code/python,file_io"
	if output != want {
		t.Errorf("output = %q, want %q", output, want)
	}
}

func TestRun_ExecutesInWorkspace(t *testing.T) {
	workspaces := workspace.NewManager(filepath.Join(t.TempDir(), "workspaces"))
	r, err := NewRunner(Config{
		Command:    []string{"sh", "-c", "pwd"},
		Workspaces: workspaces,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	output, err := r.Run(context.Background(), testTask("goal-1-t1"), testAgent())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(output, "goal-1-t1") {
		t.Errorf("worker ran in %q, want a directory named for the task", output)
	}

	// The workspace is removed once the run finishes.
	if got := len(workspaces.List()); got != 0 {
		t.Errorf("active workspaces after run = %d, want 0", got)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("workspace directory %q still exists after run", output)
	}
}

func TestRun_WorkerFailure(t *testing.T) {
	r, err := NewRunner(Config{Command: []string{"sh", "-c", "echo scraper exploded >&2; exit 1"}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	_, err = r.Run(context.Background(), testTask("goal-1-t1"), testAgent())
	if err == nil {
		t.Fatal("expected error for failing worker, got nil")
	}
	if !strings.Contains(err.Error(), "scraper exploded") {
		t.Errorf("error %q does not carry the worker's stderr", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	r, err := NewRunner(Config{
		Command: []string{"sleep", "30"},
		Timeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	start := time.Now()
	_, err = r.Run(context.Background(), testTask("goal-1-t1"), testAgent())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %q, want a timeout message", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %v, the worker outlived its timeout", elapsed)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewRunner(Config{Command: []string{"sleep", "30"}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	if _, err := r.Run(ctx, testTask("goal-1-t1"), testAgent()); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}
