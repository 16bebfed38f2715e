package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/overseer/internal/config"
	"github.com/aristath/overseer/internal/events"
	"github.com/aristath/overseer/internal/history"
	"github.com/aristath/overseer/internal/ideas"
	"github.com/aristath/overseer/internal/judge"
	"github.com/aristath/overseer/internal/orchestrator"
	"github.com/aristath/overseer/internal/policy"
	"github.com/aristath/overseer/internal/scheduler"
	"github.com/aristath/overseer/internal/tui"
	"github.com/aristath/overseer/internal/worker"
	"github.com/aristath/overseer/internal/workspace"
)

func main() {
	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create ProcessManager for subprocess tracking
	pm := worker.NewProcessManager()

	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Determine config paths
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		os.Exit(1)
	}
	globalPath := filepath.Join(homeDir, ".overseer", "config.json")
	projectPath := filepath.Join(".overseer", "config.json")

	// Build the judge before opening any resources; a bad judge type is a
	// config error, not a runtime one.
	jdg, err := judge.New(judge.Config{
		Type:      cfg.Judge.Type,
		Model:     cfg.Judge.Model,
		MaxTokens: cfg.Judge.MaxTokens,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating judge: %v\n", err)
		os.Exit(1)
	}

	// Build the worker runtime when a command is configured. Without one,
	// the orchestrator falls back to simulated work.
	var workFn orchestrator.WorkFunc
	if len(cfg.Worker.Command) > 0 {
		workspaces := workspace.NewManager(cfg.Worker.WorkspaceRoot)
		if removed, err := workspaces.Prune(); err != nil {
			log.Printf("Pruning stale workspaces: %v", err)
		} else if removed > 0 {
			log.Printf("Pruned %d stale workspace(s)", removed)
		}

		runner, err := worker.NewRunner(worker.Config{
			Command:    cfg.Worker.Command,
			Timeout:    cfg.Worker.Timeout(),
			Workspaces: workspaces,
			Processes:  pm,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating worker runner: %v\n", err)
			os.Exit(1)
		}
		workFn = runner.Run
	}

	// Open the decision/run history when configured
	var store *history.SQLiteStore
	if cfg.History.Path != "" {
		store, err = history.NewSQLiteStore(ctx, cfg.History.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening history store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	// Create event bus
	bus := events.NewBus()
	defer bus.Close()

	// Escalations buffer at twice the concurrency limit so execution units
	// never block on the reviewer.
	escalations := orchestrator.NewEscalationChannel(2*cfg.Scheduler.ConcurrencyLimit, nil)

	ocfg := orchestrator.Config{
		Interval:         cfg.Scheduler.Interval(),
		ConcurrencyLimit: cfg.Scheduler.ConcurrencyLimit,
		Judge:            jdg,
		JudgeType:        cfg.Judge.Type,
		Engine: policy.NewEngine(policy.Weights{
			Quality:         cfg.Policy.Weights.Quality,
			Progress:        cfg.Policy.Weights.Progress,
			ErrorPenalty:    cfg.Policy.Weights.ErrorPenalty,
			ResourcePenalty: cfg.Policy.Weights.ResourcePenalty,
		}, cfg.Policy.SearchDepth),
		Decomposer:  scheduler.NewDecomposer(cfg.Templates),
		WorkFunc:    workFn,
		Bus:         bus,
		Escalations: escalations,
	}
	if store != nil {
		ocfg.History = store
	}
	orch := orchestrator.New(ocfg)

	// Create the TUI model first so its subscription catches the
	// registration and submission events published below.
	model := tui.New(bus, cfg, globalPath, projectPath)

	// Register configured agents in a stable order
	agentIDs := make([]string, 0, len(cfg.Agents))
	for id := range cfg.Agents {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	for _, id := range agentIDs {
		agent := cfg.Agents[id]
		orch.RegisterAgent(id, agent.Name, agent.Capabilities)
	}

	// Submit the goal from the command line, if one was given. The idea
	// check is advisory: findings are logged and submission proceeds.
	if goal := strings.TrimSpace(strings.Join(os.Args[1:], " ")); goal != "" {
		report := ideas.NewValidator().Validate(ideas.Idea{Description: goal})
		if len(report.Findings) > 0 {
			log.Printf("Idea check scored %.2f: %s", report.Score, report.Summary)
			for _, f := range report.Findings {
				log.Printf("  [%s] %s: %s", f.Risk, f.Category, f.Message)
			}
		}

		if _, err := orch.SubmitGoal(goalName(goal), goal); err != nil {
			fmt.Fprintf(os.Stderr, "Error submitting goal: %v\n", err)
			os.Exit(1)
		}
	}

	orch.Start(ctx)

	// Start Bubble Tea program in a goroutine so main can handle shutdown
	p := tea.NewProgram(model, tea.WithAltScreen())

	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	// Handle shutdown
	select {
	case err := <-errChan:
		// Normal TUI exit (user pressed 'q' or TUI finished)
		orch.Stop()
		if killErr := pm.KillAll(); killErr != nil {
			log.Printf("Error killing subprocesses: %v", killErr)
		}
		orch.Wait()
		stop()
		escalations.Stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		// Signal received (Ctrl+C or SIGTERM)
		// Call stop() to restore default signal handling (double Ctrl+C = force exit)
		stop()

		log.Println("Shutdown signal received, cleaning up...")

		// Halt the assignment loop, then kill tracked worker subprocesses
		// so in-flight execution units fail fast instead of running out
		// their timeouts.
		orch.Stop()
		if err := pm.KillAll(); err != nil {
			log.Printf("Error killing subprocesses: %v", err)
		}
		orch.Wait()
		escalations.Stop()

		// Quit the TUI
		p.Quit()

		// Wait for TUI to exit with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		select {
		case err := <-errChan:
			if err != nil {
				log.Printf("TUI exit error: %v", err)
			}
		case <-shutdownCtx.Done():
			log.Println("Shutdown timeout exceeded, forcing exit")
		}
	}

	log.Println("Shutdown complete")
}

// goalName derives the short project label shown in the dashboard.
func goalName(goal string) string {
	const max = 48
	if len(goal) <= max {
		return goal
	}
	return goal[:max-3] + "..."
}
