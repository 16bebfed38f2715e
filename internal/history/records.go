package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Default window for ListDecisions when the caller passes no limit.
const defaultListLimit = 50

// SaveDecision appends a supervision decision. A missing ID is filled in.
func (s *SQLiteStore) SaveDecision(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, task_id, agent_id, action, score, considered, quality, error_count, resource, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.TaskID, d.AgentID, d.Action, d.Score, d.Considered, d.Quality, d.ErrorCount, d.Resource, d.Progress)

	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// ListDecisions returns the most recent decisions, newest first. A limit of
// zero or less falls back to the default window.
func (s *SQLiteStore) ListDecisions(ctx context.Context, limit int) ([]*Decision, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	// rowid breaks ties within the one-second created_at granularity
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, agent_id, action, score, considered, quality, error_count, resource, progress, created_at
		FROM decisions
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*Decision
	for rows.Next() {
		d := &Decision{}
		err := rows.Scan(&d.ID, &d.TaskID, &d.AgentID, &d.Action, &d.Score, &d.Considered,
			&d.Quality, &d.ErrorCount, &d.Resource, &d.Progress, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return decisions, nil
}

// SaveTaskRun appends one execution attempt. A missing ID is filled in.
func (s *SQLiteStore) SaveTaskRun(ctx context.Context, r *TaskRun) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs (id, project_id, task_id, agent_id, status, output, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProjectID, r.TaskID, r.AgentID, r.Status, r.Output, r.StartedAt, r.FinishedAt)

	if err != nil {
		return fmt.Errorf("failed to save task run: %w", err)
	}
	return nil
}

// ListTaskRuns returns all runs for a project in execution order.
func (s *SQLiteStore) ListTaskRuns(ctx context.Context, projectID string) ([]*TaskRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, task_id, agent_id, status, output, started_at, finished_at
		FROM task_runs
		WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task runs: %w", err)
	}
	defer rows.Close()

	var runs []*TaskRun
	for rows.Next() {
		r := &TaskRun{}
		err := rows.Scan(&r.ID, &r.ProjectID, &r.TaskID, &r.AgentID, &r.Status, &r.Output, &r.StartedAt, &r.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task runs: %w", err)
	}

	return runs, nil
}

// SaveFeedback appends an operator correction. A missing ID is filled in.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, f *Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, agent_id, original_action, corrected_action, context)
		VALUES (?, ?, ?, ?, ?)
	`, f.ID, f.AgentID, f.Original, f.Corrected, f.Context)

	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all recorded corrections, oldest first, the order the
// trainer consumes them in.
func (s *SQLiteStore) ListFeedback(ctx context.Context) ([]*Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, original_action, corrected_action, context, created_at
		FROM feedback
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []*Feedback
	for rows.Next() {
		f := &Feedback{}
		if err := rows.Scan(&f.ID, &f.AgentID, &f.Original, &f.Corrected, &f.Context, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return records, nil
}
