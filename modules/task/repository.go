package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"gorm.io/gorm"
)

// priorityOrder sorts HIGH before MEDIUM before LOW in SQL.
const priorityOrder = "CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'LOW' THEN 2 ELSE 3 END"

// Repository provides task persistence using GORM. Deletes are hard: the
// entity carries no DeletedAt column, and SQLite AUTOINCREMENT keeps ids
// from being reused.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

// Create saves a new task. GORM assigns the id and both timestamps.
func (r *Repository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindAll retrieves every task, most recently created first.
func (r *Repository) FindAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindDueToday retrieves tasks whose due date falls on now's calendar day in
// local time, from midnight up to but not including the next midnight,
// ordered by priority HIGH first.
func (r *Repository) FindDueToday(ctx context.Context, now time.Time) ([]domain.Task, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ?", start, end).
		Order(priorityOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due today: %w", err)
	}
	return tasks, nil
}

// Save writes the full task row back and refreshes UpdatedAt, even when no
// other column changed. Callers merge patch fields before saving.
func (r *Repository) Save(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(task).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"due_date":    task.DueDate,
			"status":      task.Status,
			"priority":    task.Priority,
			"updated_at":  task.UpdatedAt,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a task by id.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
