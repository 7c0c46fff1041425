package task

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
)

// Cache keys for the read paths. Every mutation clears the whole key space.
const (
	cacheKeyAll = "all"
)

func cacheKeyByID(id uint) string {
	return "id:" + strconv.FormatUint(uint64(id), 10)
}

func cacheKeyToday(now time.Time) string {
	return "today:" + now.Format("2006-01-02")
}

// createTask handles the task.create service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return TaskResponse{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	status := domain.StatusTodo
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !status.Valid() {
			return TaskResponse{}, fmt.Errorf("%w: invalid status %q", ErrValidation, req.Status)
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
		if !priority.Valid() {
			return TaskResponse{}, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.Priority)
		}
	}

	newTask := &domain.Task{
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
	}
	if req.DueDate != nil {
		newTask.DueDate = req.DueDate.Time
	}

	if err := m.repo.Create(ctx, newTask); err != nil {
		return TaskResponse{}, fmt.Errorf("failed to save task: %w", err)
	}

	m.invalidateCache(ctx)

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    newTask.ID,
			Title:     newTask.Title,
			Priority:  string(newTask.Priority),
			DueDate:   newTask.DueDate,
			CreatedAt: newTask.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %d: %v", newTask.ID, err)
		}
	}

	return toTaskResponse(newTask), nil
}

// getTask handles the task.get service request with a cache-aside read.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	key := cacheKeyByID(req.ID)

	if c := m.getCache(); c != nil {
		var cached TaskResponse
		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[task] Cache error for id=%d: %v", req.ID, err)
		}
		if found {
			return cached, nil
		}
	}

	t, err := m.repo.FindByID(ctx, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	resp := toTaskResponse(t)
	m.cacheSet(ctx, key, resp)
	return resp, nil
}

// listTasks handles the task.list service request. The raw store order is
// newest first; filters and sort keys run through the pure query engine so
// an unfiltered request returns the stored sequence unchanged. Singleflight
// collapses concurrent database reads on a cold cache.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if err := validateFilter(req.Status, req.Priority, req.SortBy); err != nil {
		return ListTasksResponse{}, err
	}

	tasks, err := m.loadAll(ctx)
	if err != nil {
		return ListTasksResponse{}, err
	}

	if req.Status != "" {
		tasks = domain.FilterByStatus(tasks, req.Status)
	}
	if req.Priority != "" {
		tasks = domain.FilterByPriority(tasks, req.Priority)
	}
	if req.SortBy != "" {
		tasks = domain.SortTasks(tasks, domain.SortKey(req.SortBy))
	}

	return toListResponse(tasks), nil
}

// loadAll returns every task, through the cache when one is wired.
func (m *TaskModule) loadAll(ctx context.Context) ([]domain.Task, error) {
	c := m.getCache()
	if c != nil {
		var cached []domain.Task
		found, err := c.Get(ctx, cacheKeyAll, &cached)
		if err != nil {
			log.Printf("[task] Cache error for list: %v", err)
		}
		if found {
			return cached, nil
		}
	}

	val, err, _ := m.sfGroup.Do(cacheKeyAll, func() (any, error) {
		return m.repo.FindAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	tasks := val.([]domain.Task)

	m.cacheSet(ctx, cacheKeyAll, tasks)
	return tasks, nil
}

// listDueToday handles the task.list-due-today service request. Results are
// limited to the current local calendar day and ordered HIGH to LOW.
func (m *TaskModule) listDueToday(ctx context.Context, _ ListDueTodayRequest, _ *mono.Msg) (ListTasksResponse, error) {
	now := time.Now()
	key := cacheKeyToday(now)

	if c := m.getCache(); c != nil {
		var cached ListTasksResponse
		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[task] Cache error for due-today list: %v", err)
		}
		if found {
			return cached, nil
		}
	}

	tasks, err := m.repo.FindDueToday(ctx, now)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := toListResponse(tasks)
	m.cacheSet(ctx, key, resp)
	return resp, nil
}

// updateTask handles the task.update service request. Only supplied fields
// are merged; an explicit null due date clears it, an omitted one is left
// alone. Even an empty patch refreshes UpdatedAt.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.FindByID(ctx, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	prevStatus := t.Status

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return TaskResponse{}, fmt.Errorf("%w: title is required", ErrValidation)
		}
		t.Title = title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.DueDate != nil {
		due, err := ParseDueDatePatch(req.DueDate)
		if err != nil {
			return TaskResponse{}, err
		}
		t.DueDate = due
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			return TaskResponse{}, fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
		}
		t.Status = status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !priority.Valid() {
			return TaskResponse{}, fmt.Errorf("%w: invalid priority %q", ErrValidation, *req.Priority)
		}
		t.Priority = priority
	}

	if err := m.repo.Save(ctx, t); err != nil {
		return TaskResponse{}, err
	}

	m.invalidateCache(ctx)

	if m.eventBus != nil && prevStatus != domain.StatusDone && t.Status == domain.StatusDone {
		event := events.TaskCompletedEvent{
			TaskID:      t.ID,
			Title:       t.Title,
			CompletedAt: t.UpdatedAt,
		}
		if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCompleted event for task %d: %v", t.ID, err)
		}
	}

	return toTaskResponse(t), nil
}

// deleteTask handles the task.delete service request. Deletes are permanent;
// a second delete of the same id fails with not found.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.repo.FindByID(ctx, req.ID)
	if err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, err
	}

	if err := m.repo.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, err
	}

	m.invalidateCache(ctx)

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %d: %v", t.ID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// summary handles the task.summary service request: status counts, the
// completion rate, and due-today/overdue tallies over all tasks.
func (m *TaskModule) summary(ctx context.Context, _ SummaryRequest, _ *mono.Msg) (SummaryResponse, error) {
	tasks, err := m.loadAll(ctx)
	if err != nil {
		return SummaryResponse{}, err
	}

	agg := domain.Aggregate(tasks)
	resp := SummaryResponse{
		Total:          agg.Total,
		Completed:      agg.Completed,
		InProgress:     agg.InProgress,
		Pending:        agg.Pending,
		CompletionRate: agg.CompletionRate,
	}

	now := time.Now()
	for _, t := range tasks {
		if domain.IsDueToday(t.DueDate, now) {
			resp.DueToday++
		} else if domain.IsOverdue(t.DueDate, now) {
			resp.Overdue++
		}
	}

	return resp, nil
}

// validateFilter rejects filter and sort values outside the closed sets.
// Empty strings and the ALL sentinel pass through as identity.
func validateFilter(status, priority, sortBy string) error {
	if status != "" && status != domain.FilterAll && !domain.Status(status).Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	if priority != "" && priority != domain.FilterAll && !domain.Priority(priority).Valid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, priority)
	}
	switch domain.SortKey(sortBy) {
	case "", domain.SortByDueDate, domain.SortByPriority, domain.SortByStatus, domain.SortByCreatedAt:
		return nil
	default:
		return fmt.Errorf("%w: invalid sort key %q", ErrValidation, sortBy)
	}
}

func (m *TaskModule) cacheSet(ctx context.Context, key string, value any) {
	c := m.getCache()
	if c == nil {
		return
	}
	if err := c.Set(ctx, key, value); err != nil {
		log.Printf("[task] Warning: failed to cache %s: %v", key, err)
	}
}

func (m *TaskModule) invalidateCache(ctx context.Context) {
	c := m.getCache()
	if c == nil {
		return
	}
	if err := c.DeletePattern(ctx, "*"); err != nil {
		log.Printf("[task] Warning: failed to invalidate cache: %v", err)
	}
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toListResponse(tasks []domain.Task) ListTasksResponse {
	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&tasks[i]))
	}
	return resp
}
