// Package repository provides the relational store used by the engines and
// the HTTP layer. All task and employee access is partitioned by org id.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/pkg/metrics"
)

// TaskFilter narrows ListTasks. Zero values mean "no filter" and defaults
// are applied by the caller.
type TaskFilter struct {
	Status string
	Page   int
	Limit  int
}

// Candidate is an active employee joined with their productivity score.
// Productivity is nil when no score row exists yet.
type Candidate struct {
	Employee     model.Employee
	Productivity *int
}

// Store wraps a gorm DB with the queries the service needs.
type Store struct {
	db *gorm.DB
}

// New creates a Store and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&model.Organization{},
		&model.Employee{},
		&model.Task{},
		&model.Score{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for test seeding.
func (s *Store) DB() *gorm.DB { return s.db }

func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Milliseconds()))
}

// CreateOrg persists an organization.
func (s *Store) CreateOrg(ctx context.Context, org *model.Organization) error {
	defer observe("org_create", time.Now())
	if err := s.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("create org: %w", err)
	}
	return nil
}

// GetOrg fetches an organization by id.
func (s *Store) GetOrg(ctx context.Context, orgID string) (model.Organization, error) {
	defer observe("org_get", time.Now())
	var org model.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Organization{}, ErrNotFound
	}
	if err != nil {
		return model.Organization{}, fmt.Errorf("get org: %w", err)
	}
	return org, nil
}

// CreateEmployee persists an employee.
func (s *Store) CreateEmployee(ctx context.Context, emp *model.Employee) error {
	defer observe("employee_create", time.Now())
	if err := s.db.WithContext(ctx).Create(emp).Error; err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// GetEmployee fetches one employee scoped by org.
func (s *Store) GetEmployee(ctx context.Context, orgID, employeeID string) (model.Employee, error) {
	defer observe("employee_get", time.Now())
	var emp model.Employee
	err := s.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", employeeID, orgID).
		First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Employee{}, ErrNotFound
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return emp, nil
}

// ListEmployees returns all of an organization's employees, newest first.
func (s *Store) ListEmployees(ctx context.Context, orgID string) ([]model.Employee, error) {
	defer observe("employee_list", time.Now())
	var emps []model.Employee
	err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&emps).Error
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return emps, nil
}

// ActiveWithScores returns the organization's active employees left-joined
// with their score rows. Employees without a score row keep a nil
// Productivity; the default is applied by the assignment engine.
func (s *Store) ActiveWithScores(ctx context.Context, orgID string) ([]Candidate, error) {
	defer observe("employee_active_scores", time.Now())
	var emps []model.Employee
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, model.EmployeeActive).
		Order("id ASC").
		Find(&emps).Error
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	if len(emps) == 0 {
		return nil, nil
	}

	ids := make([]string, len(emps))
	for i, e := range emps {
		ids[i] = e.ID
	}
	var scores []model.Score
	if err := s.db.WithContext(ctx).Where("employee_id IN ?", ids).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	byEmployee := make(map[string]int, len(scores))
	for _, sc := range scores {
		byEmployee[sc.EmployeeID] = sc.ProductivityScore
	}

	out := make([]Candidate, len(emps))
	for i, e := range emps {
		c := Candidate{Employee: e}
		if v, ok := byEmployee[e.ID]; ok {
			p := v
			c.Productivity = &p
		}
		out[i] = c
	}
	return out, nil
}

// CreateTask persists a task.
func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	defer observe("task_create", time.Now())
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask fetches one task scoped by org.
func (s *Store) GetTask(ctx context.Context, orgID, taskID string) (model.Task, error) {
	defer observe("task_get", time.Now())
	var task model.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", taskID, orgID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasks returns a page of an organization's tasks, newest first, with an
// optional status filter. It also reports the total row count for the filter.
func (s *Store) ListTasks(ctx context.Context, orgID string, f TaskFilter) ([]model.Task, int64, error) {
	defer observe("task_list", time.Now())
	q := s.db.WithContext(ctx).Model(&model.Task{}).Where("org_id = ?", orgID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	var tasks []model.Task
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(offset).Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// FindTasksByEmployee returns every task ever assigned to the employee, with
// no filter besides assignee. The scoring engine depends on this being the
// complete history.
func (s *Store) FindTasksByEmployee(ctx context.Context, employeeID string) ([]model.Task, error) {
	defer observe("task_by_employee", time.Now())
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("assigned_to = ?", employeeID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("find tasks by employee: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies partial field updates to an org's task and returns the
// refreshed row.
func (s *Store) UpdateTask(ctx context.Context, orgID, taskID string, updates map[string]any) (model.Task, error) {
	defer observe("task_update", time.Now())
	if len(updates) == 0 {
		return s.GetTask(ctx, orgID, taskID)
	}
	res := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND org_id = ?", taskID, orgID).
		Updates(updates)
	if res.Error != nil {
		return model.Task{}, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Task{}, ErrNotFound
	}
	return s.GetTask(ctx, orgID, taskID)
}

// UpdateTaskStatus sets a task's status, maintaining the completed_at
// invariant: set when the status becomes completed, cleared otherwise.
func (s *Store) UpdateTaskStatus(ctx context.Context, orgID, taskID, status string) (model.Task, error) {
	defer observe("task_update_status", time.Now())
	updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
	if status == model.StatusCompleted {
		updates["completed_at"] = time.Now().UTC()
	} else {
		updates["completed_at"] = nil
	}
	res := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND org_id = ?", taskID, orgID).
		Updates(updates)
	if res.Error != nil {
		return model.Task{}, fmt.Errorf("update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Task{}, ErrNotFound
	}
	return s.GetTask(ctx, orgID, taskID)
}

// DeleteTask removes an org's task.
func (s *Store) DeleteTask(ctx context.Context, orgID, taskID string) error {
	defer observe("task_delete", time.Now())
	res := s.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", taskID, orgID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertScore writes a score row keyed by employee id. On conflict every
// derived column is overwritten; the write is a single atomic statement so
// concurrent recomputations need no extra locking.
func (s *Store) UpsertScore(ctx context.Context, score *model.Score) error {
	defer observe("score_upsert", time.Now())
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"productivity_score",
			"task_completion_rate",
			"trend",
			"score_breakdown",
			"computed_at",
		}),
	}).Create(score).Error
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// GetScore fetches an employee's score row.
func (s *Store) GetScore(ctx context.Context, employeeID string) (model.Score, error) {
	defer observe("score_get", time.Now())
	var score model.Score
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Score{}, ErrNotFound
	}
	if err != nil {
		return model.Score{}, fmt.Errorf("get score: %w", err)
	}
	return score, nil
}

// ScoreRow is a score joined with the employee it belongs to, for the org
// insights roster.
type ScoreRow struct {
	Name               string          `json:"name"`
	Role               string          `json:"role"`
	EmployeeID         string          `json:"employee_id"`
	ProductivityScore  int             `json:"productivity_score"`
	TaskCompletionRate float64         `json:"task_completion_rate"`
	Trend              string          `json:"trend"`
	ScoreBreakdown     model.Breakdown `json:"score_breakdown"`
	ComputedAt         time.Time       `json:"computed_at"`
}

// ListScores returns the org's scored employees, highest productivity first.
func (s *Store) ListScores(ctx context.Context, orgID string) ([]ScoreRow, error) {
	defer observe("score_list", time.Now())
	var rows []ScoreRow
	err := s.db.WithContext(ctx).Model(&model.Score{}).
		Select("employees.name, employees.role, scores.employee_id, scores.productivity_score, scores.task_completion_rate, scores.trend, scores.score_breakdown, scores.computed_at").
		Joins("JOIN employees ON employees.id = scores.employee_id").
		Where("scores.org_id = ?", orgID).
		Order("scores.productivity_score DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return rows, nil
}
