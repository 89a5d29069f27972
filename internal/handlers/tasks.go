package handlers

import (
	"net/http"
	"strconv"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/models"
	"task-manager/internal/repositories"
	"task-manager/internal/services"
	"task-manager/internal/taskerr"

	"github.com/gin-gonic/gin"
)

// TaskHandler exposes the task service over HTTP.
type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// taskInput is the write payload for create and full update.
type taskInput struct {
	Title          string       `json:"title" binding:"required,max=100"`
	Description    string       `json:"description" binding:"max=500"`
	DueDate        *models.Date `json:"dueDate"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	Category       string       `json:"category" binding:"max=50"`
	AssignedTo     *string      `json:"assignedTo" binding:"omitempty,max=100"`
	EstimatedHours *int         `json:"estimatedHours" binding:"omitempty,gte=0,lte=1000"`
	CreatedBy      *string      `json:"createdBy" binding:"omitempty,max=100"`
}

func (in *taskInput) toTask() (*models.Task, error) {
	task := &models.Task{
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        in.DueDate,
		Category:       in.Category,
		AssignedTo:     in.AssignedTo,
		EstimatedHours: in.EstimatedHours,
		CreatedBy:      in.CreatedBy,
	}

	if in.Status != "" {
		status, err := models.ParseStatus(in.Status)
		if err != nil {
			return nil, taskerr.Validation("%v", err)
		}
		task.Status = status
	}
	if in.Priority != "" {
		priority, err := models.ParsePriority(in.Priority)
		if err != nil {
			return nil, taskerr.Validation("%v", err)
		}
		task.Priority = priority
	}

	return task, nil
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	result, err := h.taskService.ListTasks(page)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) FilterTasks(c *gin.Context) {
	filter, err := parseTaskFilter(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	page, err := parsePageRequest(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	result, err := h.taskService.FilterTasks(filter, page)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	task, err := h.taskService.GetTaskByID(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var in taskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := in.toTask()
	if err != nil {
		handleTaskError(c, err)
		return
	}

	created, err := h.taskService.CreateTask(task)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	var in taskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := in.toTask()
	if err != nil {
		handleTaskError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(id, updated)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) PatchTask(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.PatchTask(id, updates)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if err := h.taskService.DeleteTask(id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	task, err := h.taskService.CompleteTask(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) StartTask(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	task, err := h.taskService.StartTask(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetOverdueTasks(c *gin.Context) {
	h.respondList(c)(h.taskService.GetOverdueTasks())
}

func (h *TaskHandler) GetTasksDueToday(c *gin.Context) {
	h.respondList(c)(h.taskService.GetTasksDueToday())
}

func (h *TaskHandler) GetTasksDueWithin(c *gin.Context) {
	daysStr := c.Query("days")
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		handleTaskError(c, taskerr.Validation("invalid days parameter: %q", daysStr))
		return
	}

	h.respondList(c)(h.taskService.GetTasksDueWithin(days))
}

func (h *TaskHandler) GetHighPriorityPendingTasks(c *gin.Context) {
	h.respondList(c)(h.taskService.GetHighPriorityPendingTasks())
}

func (h *TaskHandler) GetRecentlyUpdatedTasks(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	result, err := h.taskService.GetRecentlyUpdatedTasks(page)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) SearchTasks(c *gin.Context) {
	h.respondList(c)(h.taskService.SearchTasks(c.Query("query")))
}

func (h *TaskHandler) GetStatistics(c *gin.Context) {
	stats, err := h.taskService.GetStatistics()
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) GetTasksByStatus(c *gin.Context) {
	status, err := models.ParseStatus(c.Param("status"))
	if err != nil {
		handleTaskError(c, taskerr.Validation("%v", err))
		return
	}
	h.respondList(c)(h.taskService.GetTasksByStatus(status))
}

func (h *TaskHandler) GetTasksByPriority(c *gin.Context) {
	priority, err := models.ParsePriority(c.Param("priority"))
	if err != nil {
		handleTaskError(c, taskerr.Validation("%v", err))
		return
	}
	h.respondList(c)(h.taskService.GetTasksByPriority(priority))
}

func (h *TaskHandler) GetTasksByCategory(c *gin.Context) {
	h.respondList(c)(h.taskService.GetTasksByCategory(c.Param("category")))
}

func (h *TaskHandler) GetTasksAssignedTo(c *gin.Context) {
	h.respondList(c)(h.taskService.GetTasksAssignedTo(c.Param("assignedTo")))
}

func (h *TaskHandler) GetTasksCreatedBy(c *gin.Context) {
	h.respondList(c)(h.taskService.GetTasksCreatedBy(c.Param("createdBy")))
}

func (h *TaskHandler) BulkUpdateStatus(c *gin.Context) {
	var req struct {
		TaskIDs []uint `json:"taskIds" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		handleTaskError(c, taskerr.Validation("%v", err))
		return
	}

	updated, err := h.taskService.BulkUpdateStatus(req.TaskIDs, status)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *TaskHandler) BulkDeleteTasks(c *gin.Context) {
	var ids []uint
	if err := c.ShouldBindJSON(&ids); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.taskService.BulkDeleteTasks(ids)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// respondList returns a closure matching the (tasks, err) shape of list
// queries so the happy/error paths stay in one place.
func (h *TaskHandler) respondList(c *gin.Context) func([]models.Task, error) {
	return func(tasks []models.Task, err error) {
		if err != nil {
			handleTaskError(c, err)
			return
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, taskerr.Validation("invalid task id: %q", idStr)
	}
	return uint(id), nil
}

func parsePageRequest(c *gin.Context) (repositories.PageRequest, error) {
	page := repositories.DefaultPageRequest()

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, taskerr.Validation("invalid page parameter: %q", v)
		}
		page.Page = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return page, taskerr.Validation("invalid size parameter: %q", v)
		}
		page.Size = n
	}
	if v := c.Query("sortBy"); v != "" {
		page.SortBy = v
	}
	if v := c.Query("sortDir"); v != "" {
		page.SortDir = v
	}

	return page, nil
}

// timestampLayouts are accepted for createdAfter/createdBefore.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseTaskFilter(c *gin.Context) (*repositories.TaskFilter, error) {
	filter := &repositories.TaskFilter{}

	if v := c.Query("title"); v != "" {
		filter.Title = &v
	}
	if v := c.Query("description"); v != "" {
		filter.Description = &v
	}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseStatus(v)
		if err != nil {
			return nil, taskerr.Validation("%v", err)
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority, err := models.ParsePriority(v)
		if err != nil {
			return nil, taskerr.Validation("%v", err)
		}
		filter.Priority = &priority
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("assignedTo"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("createdBy"); v != "" {
		filter.CreatedBy = &v
	}
	if v := c.Query("createdAfter"); v != "" {
		ts, err := parseTimestamp(v)
		if err != nil {
			return nil, err
		}
		filter.CreatedAfter = &ts
	}
	if v := c.Query("createdBefore"); v != "" {
		ts, err := parseTimestamp(v)
		if err != nil {
			return nil, err
		}
		filter.CreatedBefore = &ts
	}
	if v := c.Query("dueAfter"); v != "" {
		date, err := models.ParseDate(v)
		if err != nil {
			return nil, taskerr.Validation("invalid dueAfter: %v", err)
		}
		filter.DueAfter = &date
	}
	if v := c.Query("dueBefore"); v != "" {
		date, err := models.ParseDate(v)
		if err != nil {
			return nil, taskerr.Validation("invalid dueBefore: %v", err)
		}
		filter.DueBefore = &date
	}
	if v := c.Query("searchTerm"); v != "" {
		filter.SearchTerm = &v
	}

	return filter, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, taskerr.Validation("invalid timestamp: %q", v)
}

func handleTaskError(c *gin.Context, err error) {
	status := taskerr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		config.Logger.Errorw("task request failed", "error", err)
		c.JSON(status, gin.H{"error": "failed to process task request"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
