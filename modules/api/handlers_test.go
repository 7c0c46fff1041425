package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/taskboard/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTaskPort is an in-memory TaskPort for handler tests. Errors arrive as
// plain strings, the same shape they have after crossing the service bus.
type stubTaskPort struct {
	tasks  map[uint]*task.TaskResponse
	nextID uint
	err    error
}

func newStubTaskPort() *stubTaskPort {
	return &stubTaskPort{tasks: make(map[uint]*task.TaskResponse), nextID: 1}
}

func (s *stubTaskPort) CreateTask(_ context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	resp := &task.TaskResponse{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		Status:      "TODO",
		Priority:    "MEDIUM",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Status != "" {
		resp.Status = req.Status
	}
	if req.Priority != "" {
		resp.Priority = req.Priority
	}
	s.tasks[s.nextID] = resp
	s.nextID++
	return resp, nil
}

func (s *stubTaskPort) GetTask(_ context.Context, id uint) (*task.TaskResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	return t, nil
}

func (s *stubTaskPort) UpdateTask(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tasks[req.ID]
	if !ok {
		return nil, errors.New("task not found")
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	t.UpdatedAt = time.Now()
	return t, nil
}

func (s *stubTaskPort) DeleteTask(_ context.Context, id uint) (*task.DeleteTaskResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return nil, errors.New("task not found")
	}
	delete(s.tasks, id)
	return &task.DeleteTaskResponse{Deleted: true, ID: id}, nil
}

func (s *stubTaskPort) ListTasks(_ context.Context, _ *task.ListTasksRequest) (*task.ListTasksResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := &task.ListTasksResponse{Tasks: make([]task.TaskResponse, 0, len(s.tasks))}
	for _, t := range s.tasks {
		resp.Tasks = append(resp.Tasks, *t)
	}
	resp.Total = len(resp.Tasks)
	return resp, nil
}

func (s *stubTaskPort) ListDueToday(_ context.Context) (*task.ListTasksResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &task.ListTasksResponse{Tasks: []task.TaskResponse{}}, nil
}

func (s *stubTaskPort) Summary(_ context.Context) (*task.SummaryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &task.SummaryResponse{Total: len(s.tasks)}, nil
}

// setupTestApp builds a Fiber app with routes wired to the stub port.
func setupTestApp(stub *stubTaskPort) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrorHandler,
	})
	registerRoutes(app, NewHandlers(stub))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestCreateTask(t *testing.T) {
	t.Run("returns 201 with the created task", func(t *testing.T) {
		app := setupTestApp(newStubTaskPort())

		resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{
			"title": "Write docs",
		})

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var got task.TaskResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, uint(1), got.ID)
		assert.Equal(t, "Write docs", got.Title)
		assert.Equal(t, "TODO", got.Status)
		assert.Equal(t, "MEDIUM", got.Priority)
	})

	t.Run("returns 400 for a missing title", func(t *testing.T) {
		app := setupTestApp(newStubTaskPort())

		resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{
			"title": "   ",
		})

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Title is required", got.Message)
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		app := setupTestApp(newStubTaskPort())

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetTask(t *testing.T) {
	stub := newStubTaskPort()
	app := setupTestApp(stub)

	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "Seed"})

	t.Run("returns the task", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks/1", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got task.TaskResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Seed", got.Title)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks/99", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Task not found", got.Message)
	})

	t.Run("returns 400 for a non-numeric id", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks/abc", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Invalid task id", got.Message)
	})
}

func TestListTasks(t *testing.T) {
	stub := newStubTaskPort()
	app := setupTestApp(stub)

	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "One"})
	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "Two"})

	t.Run("returns a bare array", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got []task.TaskResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got, 2)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		stub.err = errors.New("validation failed: invalid status \"NOPE\"")
		defer func() { stub.err = nil }()

		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks?status=NOPE", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Invalid status value", got.Message)
	})

	t.Run("maps unknown errors to 500 with a stable body", func(t *testing.T) {
		stub.err = errors.New("nats: connection closed")
		defer func() { stub.err = nil }()

		resp, body := doJSON(t, app, http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Failed to fetch tasks", got.Message)
	})
}

func TestListDueToday(t *testing.T) {
	app := setupTestApp(newStubTaskPort())

	resp, body := doJSON(t, app, http.MethodGet, "/api/tasks/today/tasks", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []task.TaskResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Empty(t, got)
}

func TestSummary(t *testing.T) {
	stub := newStubTaskPort()
	app := setupTestApp(stub)

	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "One"})

	resp, body := doJSON(t, app, http.MethodGet, "/api/tasks/stats/summary", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got task.SummaryResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 1, got.Total)
}

func TestUpdateTask(t *testing.T) {
	stub := newStubTaskPort()
	app := setupTestApp(stub)

	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "Before"})

	t.Run("applies the patch", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/api/tasks/1", map[string]any{
			"status": "DONE",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got task.TaskResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "DONE", got.Status)
		assert.Equal(t, "Before", got.Title)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/tasks/42", map[string]any{
			"status": "DONE",
		})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteTask(t *testing.T) {
	stub := newStubTaskPort()
	app := setupTestApp(stub)

	_, _ = doJSON(t, app, http.MethodPost, "/api/tasks", map[string]any{"title": "Doomed"})

	t.Run("returns a confirmation message", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodDelete, "/api/tasks/1", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got MessageResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Task deleted successfully", got.Message)
	})

	t.Run("returns 404 on a second delete", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, "/api/tasks/1", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestHealth(t *testing.T) {
	app := setupTestApp(newStubTaskPort())

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ok", got.Status)
}
