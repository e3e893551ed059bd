package events

import (
	"context"
	"sync"

	"github.com/rizeos/workforce/internal/chain"
	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/pkg/logger"
	"github.com/rizeos/workforce/pkg/metrics"
)

// ScoreRecomputer triggers a full score recomputation for one employee.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, employeeID, orgID string) error
}

// TaskCompletedHandler is the single subscriber to task.completed. It is
// stateless: one reaction per publish, no retry, no dedup. Recomputation is
// idempotent by construction, so a duplicated publish only repeats the same
// write.
type TaskCompletedHandler struct {
	scorer ScoreRecomputer
	chain  chain.Logger
	logger logger.Logger

	// wg tracks the detached chain-logging goroutines so tests and
	// shutdown can wait for them.
	wg sync.WaitGroup
}

// NewTaskCompletedHandler wires the handler to its collaborators.
func NewTaskCompletedHandler(scorer ScoreRecomputer, chainLogger chain.Logger) *TaskCompletedHandler {
	return &TaskCompletedHandler{
		scorer: scorer,
		chain:  chainLogger,
		logger: logger.Get().Named("task_completed"),
	}
}

// Handle reacts to one task.completed publish. A recompute failure is
// logged and swallowed so the task-status update that triggered the event
// always succeeds. The chain logger runs detached and its outcome is
// observed only in logs.
func (h *TaskCompletedHandler) Handle(ctx context.Context, payload any) {
	p, ok := payload.(model.TaskCompletedPayload)
	if !ok {
		h.logger.Warn(ctx, "unexpected payload type for task.completed")
		return
	}

	if err := h.scorer.Recompute(ctx, p.EmployeeID, p.OrgID); err != nil {
		metrics.RecordHandlerError("task_completed")
		h.logger.Error(ctx, "score recompute failed",
			logger.String("task_id", p.TaskID),
			logger.String("employee_id", p.EmployeeID),
			logger.Error(err),
		)
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// The request context may be gone by the time the ledger call
		// finishes; only its values carry over.
		bg := context.WithoutCancel(ctx)
		hash, err := h.chain.LogTaskCompletion(bg, p.TaskID, p.EmployeeID, p.OrgID)
		if err != nil {
			metrics.RecordHandlerError("chain_logger")
			h.logger.Error(bg, "chain logging failed", logger.Error(err))
			return
		}
		if hash != "" {
			h.logger.Info(bg, "task completion logged on-chain", logger.String("tx_hash", hash))
		}
	}()
}

// Wait blocks until all detached chain-logging calls have finished.
func (h *TaskCompletedHandler) Wait() {
	h.wg.Wait()
}
