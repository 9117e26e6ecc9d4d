package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/service"
)

// ItemHandlers contains HTTP handlers for the task list
type ItemHandlers struct {
	taskService *service.TaskService
}

// NewItemHandlers creates new item handlers
func NewItemHandlers(taskService *service.TaskService) *ItemHandlers {
	return &ItemHandlers{
		taskService: taskService,
	}
}

// List returns the caller's tasks
func (h *ItemHandlers) List(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context(), c.GetString(ContextUsernameKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Create adds a task
func (h *ItemHandlers) Create(c *gin.Context) {
	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Completed == nil {
		invalidInput(c)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), c.GetString(ContextUsernameKey), *req.Title, *req.Completed)
	if err != nil {
		taskError(c, err, "Failed to create item")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Update overwrites a task's title and completion status
func (h *ItemHandlers) Update(c *gin.Context) {
	var req struct {
		ID        *string `json:"id"`
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil || req.Title == nil || req.Completed == nil {
		invalidInput(c)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), c.GetString(ContextUsernameKey), *req.ID, *req.Title, *req.Completed)
	if err != nil {
		taskError(c, err, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, task)
}

// Toggle flips the completion status of the task named in the path
func (h *ItemHandlers) Toggle(c *gin.Context) {
	task, err := h.taskService.Toggle(c.Request.Context(), c.GetString(ContextUsernameKey), c.Param("id"))
	if err != nil {
		taskError(c, err, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete removes a task
func (h *ItemHandlers) Delete(c *gin.Context) {
	var req struct {
		ID *string `json:"id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		invalidInput(c)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), c.GetString(ContextUsernameKey), *req.ID); err != nil {
		taskError(c, err, "Failed to delete item")
		return
	}

	c.Status(http.StatusNoContent)
}

func invalidInput(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
}

func taskError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task title cannot be empty."})
	case errors.Is(err, core.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
