package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aristath/overseer/internal/registry"
	"github.com/aristath/overseer/internal/scheduler"
	"github.com/aristath/overseer/internal/workspace"
)

// Config configures a Runner.
type Config struct {
	Command    []string           // Worker command and arguments; must not be empty
	Timeout    time.Duration      // Wall clock limit per task; zero means no limit
	Workspaces *workspace.Manager // Scratch directory source; nil runs tasks in the current directory
	Processes  *ProcessManager    // Tracker for shutdown cleanup; nil disables tracking
}

// Runner executes task work by launching the worker command once per task.
// The task description arrives on the worker's stdin, the task and agent
// identity through OVERSEER_* environment variables, and whatever the
// worker prints to stdout becomes the task output.
type Runner struct {
	command    []string
	timeout    time.Duration
	workspaces *workspace.Manager
	procs      *ProcessManager
}

// NewRunner creates a Runner for the given command.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("worker: empty command")
	}
	return &Runner{
		command:    cfg.Command,
		timeout:    cfg.Timeout,
		workspaces: cfg.Workspaces,
		procs:      cfg.Processes,
	}, nil
}

// Run executes the worker command for one task. It matches the
// orchestrator's work function contract: the returned string is the task
// output, and a non-zero exit, timeout, or cancellation is an error.
func (r *Runner) Run(ctx context.Context, task *scheduler.Task, agent *registry.Agent) (string, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var ws *workspace.Info
	if r.workspaces != nil {
		var err error
		ws, err = r.workspaces.Create(task.ID)
		if err != nil {
			return "", fmt.Errorf("preparing workspace: %w", err)
		}
		defer r.workspaces.Cleanup(ws)
	}

	cmd := newCommand(runCtx, r.command[0], r.command[1:]...)
	if ws != nil {
		cmd.Dir = ws.Path
	}
	cmd.Stdin = strings.NewReader(task.Description)
	cmd.Env = append(os.Environ(), taskEnv(task, agent)...)

	stdout, _, err := executeCommand(cmd, r.procs)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("worker timed out after %s: %w", r.timeout, err)
		}
		return "", err
	}

	return strings.TrimSpace(string(stdout)), nil
}

// taskEnv describes the task and the executing agent to the worker command.
func taskEnv(task *scheduler.Task, agent *registry.Agent) []string {
	return []string{
		"OVERSEER_TASK_ID=" + task.ID,
		"OVERSEER_TASK_NAME=" + task.Name,
		"OVERSEER_TASK_CAPABILITIES=" + strings.Join(task.RequiredCapabilities, ","),
		"OVERSEER_AGENT_ID=" + agent.ID,
		"OVERSEER_AGENT_NAME=" + agent.Name,
	}
}
