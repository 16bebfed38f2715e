package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"
)

// TestExecuteCommand_BasicExecution verifies stdout capture for a plain command
func TestExecuteCommand_BasicExecution(t *testing.T) {
	cmd := newCommand(context.Background(), "echo", "hello")

	stdout, stderr, err := executeCommand(cmd, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(string(stdout), "hello") {
		t.Errorf("Expected stdout to contain 'hello', got: %s", stdout)
	}
	if len(stderr) > 0 {
		t.Errorf("Expected empty stderr, got: %s", stderr)
	}
}

// TestExecuteCommand_LargeOutput verifies concurrent pipe reading does not
// deadlock when the worker writes far more than the pipe buffer holds
func TestExecuteCommand_LargeOutput(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Roughly 280KB of output, well above the 64KB pipe buffer.
	script := `i=0; while [ $i -lt 20000 ]; do echo "line $i"; i=$((i+1)); done`
	cmd := newCommand(ctx, "sh", "-c", script)

	start := time.Now()
	stdout, _, err := executeCommand(cmd, nil)
	duration := time.Since(start)

	if err != nil {
		t.Fatalf("Expected no error, got: %v (took %v)", err, duration)
	}

	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	if len(lines) != 20000 {
		t.Errorf("Expected 20000 lines of output, got %d", len(lines))
	}
	if duration > 5*time.Second {
		t.Errorf("Command took too long (%v), possible deadlock", duration)
	}

	t.Logf("Processed %d lines in %v", len(lines), duration)
}

// TestExecuteCommand_StderrCapture verifies stdout and stderr are captured separately
func TestExecuteCommand_StderrCapture(t *testing.T) {
	cmd := newCommand(context.Background(), "sh", "-c", "echo error >&2; echo ok")

	stdout, stderr, err := executeCommand(cmd, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(string(stdout), "ok") {
		t.Errorf("Expected stdout to contain 'ok', got: %s", stdout)
	}
	if !strings.Contains(string(stderr), "error") {
		t.Errorf("Expected stderr to contain 'error', got: %s", stderr)
	}
}

// TestExecuteCommand_NonZeroExitCode verifies output is captured even when the command fails
func TestExecuteCommand_NonZeroExitCode(t *testing.T) {
	cmd := newCommand(context.Background(), "sh", "-c", "echo partial; echo boom >&2; exit 3")

	stdout, _, err := executeCommand(cmd, nil)
	if err == nil {
		t.Fatal("Expected error for non-zero exit code, got nil")
	}
	if !strings.Contains(string(stdout), "partial") {
		t.Errorf("Expected stdout to be captured despite the error, got: %s", stdout)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected error to carry stderr, got: %v", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 3 {
			t.Errorf("Expected exit code 3, got %d", code)
		}
	} else {
		t.Errorf("Expected error to wrap *exec.ExitError, got %T: %v", err, err)
	}
}

// TestExecuteCommand_ContextCancellation verifies the subprocess dies with its context
func TestExecuteCommand_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	cmd := newCommand(ctx, "sleep", "30")

	start := time.Now()
	_, _, err := executeCommand(cmd, nil)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected error due to context cancellation, got nil")
	}
	if elapsed > 5*time.Second {
		t.Errorf("Subprocess outlived its context by %v", elapsed)
	}

	t.Logf("Subprocess terminated: %v", err)
}

// TestExecuteCommand_TracksWhileRunning verifies the ProcessManager sees the
// subprocess during execution and forgets it afterwards
func TestExecuteCommand_TracksWhileRunning(t *testing.T) {
	pm := NewProcessManager()
	cmd := newCommand(context.Background(), "sleep", "0.3")

	done := make(chan error, 1)
	go func() {
		_, _, err := executeCommand(cmd, pm)
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for pm.Count() == 0 {
		select {
		case err := <-done:
			t.Fatalf("Command finished before it was observed as tracked: %v", err)
		case <-deadline:
			t.Fatal("Timed out waiting for the process to be tracked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if pm.Count() != 0 {
		t.Errorf("Expected 0 tracked processes after completion, got %d", pm.Count())
	}
}

// TestProcessManager_TrackAndKillAll verifies tracked processes can be terminated in bulk
func TestProcessManager_TrackAndKillAll(t *testing.T) {
	pm := NewProcessManager()

	cmd := newCommand(context.Background(), "sleep", "300")
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start process: %v", err)
	}

	pm.Track(cmd)
	if pm.Count() != 1 {
		t.Errorf("Expected 1 tracked process, got %d", pm.Count())
	}

	if err := pm.KillAll(); err != nil {
		t.Fatalf("KillAll failed: %v", err)
	}

	err := cmd.Wait()
	if err == nil {
		t.Error("Expected process to be killed, got nil error")
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && !status.Signaled() {
			t.Errorf("Expected process to die from a signal, got exit status: %v", status)
		}
	}

	pm.Untrack(cmd)
	if pm.Count() != 0 {
		t.Errorf("Expected 0 tracked processes after Untrack, got %d", pm.Count())
	}
}

// TestProcessManager_KillsProcessTree verifies the whole process group dies,
// not just the immediate subprocess
func TestProcessManager_KillsProcessTree(t *testing.T) {
	pm := NewProcessManager()

	// The worker forks a background child, then sleeps.
	cmd := newCommand(context.Background(), "sh", "-c", "sleep 300 & sleep 300")
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start process: %v", err)
	}

	parentPID := cmd.Process.Pid
	pm.Track(cmd)

	// Give the shell a moment to fork.
	time.Sleep(200 * time.Millisecond)

	pm.KillAll()
	cmd.Wait()
	pm.Untrack(cmd)

	// pgrep exits 1 when nothing matches, which is the outcome we want.
	checkCmd := exec.Command("pgrep", "-P", fmt.Sprintf("%d", parentPID))
	output, err := checkCmd.CombinedOutput()
	if err == nil && len(bytes.TrimSpace(output)) > 0 {
		t.Errorf("Child processes still running after KillAll: %s", output)
	}

	t.Logf("Process tree terminated (parent PID: %d)", parentPID)
}

// TestKillProcessGroup_NotStarted verifies the error path for an unstarted command
func TestKillProcessGroup_NotStarted(t *testing.T) {
	cmd := exec.Command("sleep", "1")
	if err := killProcessGroup(cmd); err == nil {
		t.Error("Expected error for an unstarted process, got nil")
	}
}
