// Package scoring converts an employee's full task history into a single
// 0-100 productivity score.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/pkg/logger"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Weights of the score blend and per-priority contributions.
const (
	completionWeight = 0.40
	priorityWeight   = 0.60

	weightHigh   = 1.5
	weightMedium = 1.0
	weightLow    = 0.7

	// trendThreshold is the final score at and above which the trend reads "up".
	trendThreshold = 80
)

// TaskSource yields every task ever assigned to an employee, with no time
// window. The engine depends on this being the complete history.
type TaskSource interface {
	FindTasksByEmployee(ctx context.Context, employeeID string) ([]model.Task, error)
}

// ScoreStore persists a score keyed by employee id with upsert semantics.
type ScoreStore interface {
	UpsertScore(ctx context.Context, score *model.Score) error
}

// Engine recomputes productivity scores from scratch on every call.
type Engine struct {
	tasks  TaskSource
	scores ScoreStore
	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a scoring engine over the given stores.
func NewEngine(tasks TaskSource, scores ScoreStore, opts ...Option) *Engine {
	e := &Engine{
		tasks:  tasks,
		scores: scores,
		now:    time.Now,
		logger: logger.Get().Named("scoring"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recompute derives the employee's score from their current task set and
// upserts it. An employee with zero tasks is a no-op: no row is written.
// The result is a pure function of the task set, so duplicate or reordered
// recomputations settle to the same stored score.
func (e *Engine) Recompute(ctx context.Context, employeeID, orgID string) error {
	start := e.now()
	defer func() {
		metrics.RecordRecomputeLatency(float64(time.Since(start).Milliseconds()))
	}()

	tasks, err := e.tasks.FindTasksByEmployee(ctx, employeeID)
	if err != nil {
		metrics.RecordRecomputeError()
		return fmt.Errorf("fetch task history: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	total := len(tasks)
	var completed []model.Task
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			completed = append(completed, t)
		}
	}

	completionRate := float64(len(completed)) / float64(total)

	var prioritySum float64
	for _, t := range completed {
		switch t.Priority {
		case model.PriorityHigh:
			prioritySum += weightHigh
		case model.PriorityMedium:
			prioritySum += weightMedium
		default:
			prioritySum += weightLow
		}
	}
	var normalizedPriority float64
	if len(completed) > 0 {
		normalizedPriority = prioritySum / float64(len(completed))
	}
	priorityCap := math.Min(normalizedPriority, 1.0)

	baseScore := completionRate*completionWeight + priorityCap*priorityWeight
	finalScore := int(math.Round(baseScore * 100))

	trend := model.TrendStable
	if finalScore >= trendThreshold {
		trend = model.TrendUp
	}

	score := model.Score{
		OrgID:              orgID,
		EmployeeID:         employeeID,
		ProductivityScore:  finalScore,
		TaskCompletionRate: completionRate,
		Trend:              trend,
		ScoreBreakdown: model.Breakdown{
			TotalAssigned:     total,
			TotalCompleted:    len(completed),
			CompletionRatePct: int(math.Round(completionRate * 100)),
		},
		ComputedAt: e.now().UTC(),
	}

	if err := e.scores.UpsertScore(ctx, &score); err != nil {
		metrics.RecordRecomputeError()
		return fmt.Errorf("store score: %w", err)
	}

	metrics.RecordScoreRecomputed()
	e.logger.Info(ctx, "score updated",
		logger.String("employee_id", employeeID),
		logger.Int("score", finalScore),
		logger.String("trend", trend),
	)
	return nil
}
