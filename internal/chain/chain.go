// Package chain declares the on-chain audit logging collaborator. The real
// ledger client lives outside this service; completion events are handed to
// it fire-and-forget and its failures never reach the request path.
package chain

import (
	"context"

	"github.com/rizeos/workforce/pkg/logger"
)

// Logger records a task completion on an external ledger and returns the
// transaction hash, or an empty string when logging is disabled.
type Logger interface {
	LogTaskCompletion(ctx context.Context, taskID, employeeID, orgID string) (string, error)
}

// Noop is the disabled implementation. It only leaves a debug trace so
// operators can confirm the hook fires.
type Noop struct {
	logger logger.Logger
}

// NewNoop creates a disabled chain logger.
func NewNoop() *Noop {
	return &Noop{logger: logger.Get().Named("chain")}
}

// LogTaskCompletion records intent and returns no hash.
func (n *Noop) LogTaskCompletion(ctx context.Context, taskID, employeeID, orgID string) (string, error) {
	n.logger.Debug(ctx, "chain logging disabled, skipping",
		logger.String("task_id", taskID),
		logger.String("employee_id", employeeID),
		logger.String("org_id", orgID),
	)
	return "", nil
}
