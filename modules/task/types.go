package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// NullableTime is a due-date wire value that encodes to the wrapped time or
// to JSON null when absent.
type NullableTime struct {
	Time *time.Time
}

// MarshalJSON encodes the wrapped time, or null when absent.
func (n NullableTime) MarshalJSON() ([]byte, error) {
	if n.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

// UnmarshalJSON accepts null, RFC 3339 timestamps, and bare dates.
func (n *NullableTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Time = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseDueDate(s)
	if err != nil {
		return err
	}
	n.Time = &t
	return nil
}

// ParseDueDate parses a due-date string. RFC 3339 timestamps keep their
// offset; bare dates and offset-less timestamps are interpreted in local
// time so the due-today day boundary matches the server's calendar.
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid due date %q", ErrValidation, s)
}

// CreateTaskRequest is the request for creating a task. Status and Priority
// default to TODO and MEDIUM when empty.
type CreateTaskRequest struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	DueDate     *NullableTime `json:"dueDate,omitempty"`
	Status      string        `json:"status,omitempty"`
	Priority    string        `json:"priority,omitempty"`
}

// GetTaskRequest is the request for getting a task by id.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// UpdateTaskRequest is the request for a partial task update. Nil fields are
// left untouched. DueDate is kept raw because encoding/json collapses an
// explicit null into an absent pointer; the raw bytes preserve the
// omitted / null / value distinction across the bus.
type UpdateTaskRequest struct {
	ID          uint            `json:"id"`
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	DueDate     json.RawMessage `json:"dueDate,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Priority    *string         `json:"priority,omitempty"`
}

// ParseDueDatePatch interprets a raw dueDate patch value. JSON null yields a
// nil time, meaning clear the due date; a string parses via ParseDueDate.
func ParseDueDatePatch(raw json.RawMessage) (*time.Time, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: invalid due date %s", ErrValidation, raw)
	}
	t, err := ParseDueDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}

// ListTasksRequest is the request for listing tasks. Empty filter and sort
// fields leave the store order (newest first) untouched; "ALL" is accepted
// as an explicit identity filter.
type ListTasksRequest struct {
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	SortBy   string `json:"sortBy,omitempty"`
}

// ListDueTodayRequest is the request for listing tasks due today.
type ListDueTodayRequest struct{}

// ListTasksResponse is the response for the list services.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// SummaryRequest is the request for the dashboard summary.
type SummaryRequest struct{}

// SummaryResponse is the dashboard aggregate over all tasks.
type SummaryResponse struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"inProgress"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
	DueToday       int `json:"dueToday"`
	Overdue        int `json:"overdue"`
}

// TaskResponse is the response for a single task. Description and DueDate
// are null when absent; timestamps serialize as ISO-8601.
type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPort defines the interface driving adapters use to reach the task
// services across the service bus.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, id uint) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id uint) (*DeleteTaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	ListDueToday(ctx context.Context) (*ListTasksResponse, error)
	Summary(ctx context.Context) (*SummaryResponse, error)
}
