package api

import (
	"log"
	"strings"

	"github.com/example/taskboard/modules/task"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the task API.
type Handlers struct {
	tasks task.TaskPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tasks task.TaskPort) *Handlers {
	return &Handlers{tasks: tasks}
}

// registerRoutes wires the task API routes onto the Fiber app.
func registerRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)

	tasks := app.Group("/api/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Get("/today/tasks", h.ListDueToday)
	tasks.Get("/stats/summary", h.Summary)
	tasks.Get("/:id", h.GetTask)
	tasks.Post("/", h.CreateTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "ok",
		Details: map[string]any{
			"module": "api",
		},
	})
}

// ListTasks handles GET /api/tasks. Optional status, priority, and sortBy
// query parameters run through the query engine; without them the response
// is every task, newest first.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	req := task.ListTasksRequest{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		SortBy:   c.Query("sortBy"),
	}

	resp, err := h.tasks.ListTasks(c.UserContext(), &req)
	if err != nil {
		return h.handleTaskError(c, err, "Failed to fetch tasks")
	}

	return c.JSON(resp.Tasks)
}

// ListDueToday handles GET /api/tasks/today/tasks.
func (h *Handlers) ListDueToday(c *fiber.Ctx) error {
	resp, err := h.tasks.ListDueToday(c.UserContext())
	if err != nil {
		return h.handleTaskError(c, err, "Failed to fetch today's tasks")
	}

	return c.JSON(resp.Tasks)
}

// Summary handles GET /api/tasks/stats/summary.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	resp, err := h.tasks.Summary(c.UserContext())
	if err != nil {
		return h.handleTaskError(c, err, "Failed to fetch task summary")
	}

	return c.JSON(resp)
}

// GetTask handles GET /api/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid task id"})
	}

	resp, err := h.tasks.GetTask(c.UserContext(), uint(id))
	if err != nil {
		return h.handleTaskError(c, err, "Failed to fetch task")
	}

	return c.JSON(resp)
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req task.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body"})
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Title is required"})
	}

	resp, err := h.tasks.CreateTask(c.UserContext(), &req)
	if err != nil {
		return h.handleTaskError(c, err, "Failed to create task")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid task id"})
	}

	var req task.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body"})
	}
	req.ID = uint(id)

	resp, err := h.tasks.UpdateTask(c.UserContext(), &req)
	if err != nil {
		return h.handleTaskError(c, err, "Failed to update task")
	}

	return c.JSON(resp)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid task id"})
	}

	if _, err := h.tasks.DeleteTask(c.UserContext(), uint(id)); err != nil {
		return h.handleTaskError(c, err, "Failed to delete task")
	}

	return c.JSON(MessageResponse{Message: "Task deleted successfully"})
}

// handleTaskError translates task service errors into HTTP responses.
// Errors cross the service bus as flattened strings, so known messages are
// matched by substring; anything unknown is logged and surfaced as a
// generic 500 without internal detail.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error, fallback string) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Message: "Task not found"})
	case strings.Contains(errStr, "title is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Title is required"})
	case strings.Contains(errStr, "invalid status"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid status value"})
	case strings.Contains(errStr, "invalid priority"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid priority value"})
	case strings.Contains(errStr, "invalid sort key"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid sort key"})
	case strings.Contains(errStr, "invalid due date"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid due date"})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: fallback})
	}
}
