package orchestrator

import (
	"context"
	"fmt"
	"log"
)

// Escalation represents a task raised for human review by the policy.
type Escalation struct {
	TaskID     string
	Reason     string
	responseCh chan Resolution
}

// Resolution represents the reviewer's response to an escalation.
type Resolution struct {
	Note  string
	Error error
}

// ResolveFunc is a callback invoked for each escalation. A real deployment
// pages a human here; the default just acknowledges and logs.
type ResolveFunc func(ctx context.Context, taskID string, reason string) (string, error)

// defaultResolve acknowledges the escalation so unattended runs keep moving.
func defaultResolve(ctx context.Context, taskID string, reason string) (string, error) {
	log.Printf("ESCALATION task %q: %s", taskID, reason)
	return fmt.Sprintf("acknowledged escalation for task %s", taskID), nil
}

// EscalationChannel manages non-blocking escalation traffic between
// execution units and whoever reviews them. Escalations are advisory: the
// task outcome is already decided by the time one is raised.
type EscalationChannel struct {
	escalationCh chan Escalation
	resolveFn    ResolveFunc
	done         chan struct{}
}

// NewEscalationChannel creates an escalation channel with the specified
// buffer size. bufferSize should typically be 2x the concurrency limit to
// prevent blocking. A nil resolveFn falls back to acknowledge-and-log.
func NewEscalationChannel(bufferSize int, resolveFn ResolveFunc) *EscalationChannel {
	if resolveFn == nil {
		resolveFn = defaultResolve
	}
	return &EscalationChannel{
		escalationCh: make(chan Escalation, bufferSize),
		resolveFn:    resolveFn,
		done:         make(chan struct{}),
	}
}

// Start launches the escalation handler goroutine.
// It processes escalations until the context is cancelled.
func (ec *EscalationChannel) Start(ctx context.Context) {
	go ec.handleEscalations(ctx)
}

// handleEscalations processes incoming escalations until context is cancelled.
func (ec *EscalationChannel) handleEscalations(ctx context.Context) {
	defer close(ec.done)

	for {
		select {
		case <-ctx.Done():
			return
		case esc := <-ec.escalationCh:
			// Resolve the escalation
			note, err := ec.resolveFn(ctx, esc.TaskID, esc.Reason)

			// Check if context was cancelled during resolution
			select {
			case <-ctx.Done():
				// Send cancellation error instead
				esc.responseCh <- Resolution{
					Note:  "",
					Error: ctx.Err(),
				}
				return
			default:
				// Send the resolution
				esc.responseCh <- Resolution{
					Note:  note,
					Error: err,
				}
			}
		}
	}
}

// Raise sends an escalation to the reviewer and waits for a resolution.
// It respects context cancellation at both the send and receive stages.
func (ec *EscalationChannel) Raise(ctx context.Context, taskID string, reason string) (string, error) {
	// Create buffered response channel to prevent handler blocking
	responseCh := make(chan Resolution, 1)

	esc := Escalation{
		TaskID:     taskID,
		Reason:     reason,
		responseCh: responseCh,
	}

	// Send escalation (or cancel)
	select {
	case ec.escalationCh <- esc:
		// Escalation sent successfully
	case <-ctx.Done():
		return "", ctx.Err()
	}

	// Wait for resolution (or cancel)
	select {
	case resolution := <-responseCh:
		if resolution.Error != nil {
			return "", resolution.Error
		}
		return resolution.Note, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop blocks until the handler goroutine has exited.
func (ec *EscalationChannel) Stop() {
	<-ec.done
}
