package services

import (
	"strings"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/models"
	"task-manager/internal/repositories"
	"task-manager/internal/taskerr"
)

// TaskService is the application boundary for every task operation.
type TaskService interface {
	ListTasks(page repositories.PageRequest) (*repositories.TaskPage, error)
	FilterTasks(filter *repositories.TaskFilter, page repositories.PageRequest) (*repositories.TaskPage, error)
	GetTaskByID(id uint) (*models.Task, error)
	CreateTask(task *models.Task) (*models.Task, error)
	UpdateTask(id uint, updated *models.Task) (*models.Task, error)
	PatchTask(id uint, updates map[string]interface{}) (*models.Task, error)
	DeleteTask(id uint) error
	CompleteTask(id uint) (*models.Task, error)
	StartTask(id uint) (*models.Task, error)
	GetOverdueTasks() ([]models.Task, error)
	GetTasksDueToday() ([]models.Task, error)
	GetTasksDueWithin(days int) ([]models.Task, error)
	GetHighPriorityPendingTasks() ([]models.Task, error)
	GetRecentlyUpdatedTasks(page repositories.PageRequest) (*repositories.TaskPage, error)
	SearchTasks(query string) ([]models.Task, error)
	GetTasksByStatus(status models.Status) ([]models.Task, error)
	GetTasksByPriority(priority models.Priority) ([]models.Task, error)
	GetTasksByCategory(category string) ([]models.Task, error)
	GetTasksAssignedTo(assignedTo string) ([]models.Task, error)
	GetTasksCreatedBy(createdBy string) ([]models.Task, error)
	BulkUpdateStatus(ids []uint, status models.Status) (int, error)
	BulkDeleteTasks(ids []uint) (int, error)
	GetStatistics() (*TaskStatistics, error)
}

type taskService struct {
	repo *repositories.TaskRepository
}

func NewTaskService(repo *repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) ListTasks(page repositories.PageRequest) (*repositories.TaskPage, error) {
	return s.repo.FindPage(nil, page)
}

func (s *taskService) FilterTasks(filter *repositories.TaskFilter, page repositories.PageRequest) (*repositories.TaskPage, error) {
	return s.repo.FindPage(filter, page)
}

func (s *taskService) GetTaskByID(id uint) (*models.Task, error) {
	return s.repo.FindByID(id)
}

func (s *taskService) CreateTask(task *models.Task) (*models.Task, error) {
	config.Logger.Debugf("creating new task: %s", task.Title)

	applyDefaults(task)
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.repo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask overwrites every mutable field of the stored task from updated,
// reconciling the completion-date invariant before saving.
func (s *taskService) UpdateTask(id uint, updated *models.Task) (*models.Task, error) {
	config.Logger.Debugf("updating task with id: %d", id)

	var result *models.Task
	err := s.repo.WithTx(func(tx *repositories.TaskRepository) error {
		existing, err := tx.FindByID(id)
		if err != nil {
			return err
		}

		existing.Title = updated.Title
		existing.Description = updated.Description
		existing.DueDate = updated.DueDate
		existing.Status = updated.Status
		existing.Priority = updated.Priority
		existing.Category = updated.Category
		existing.AssignedTo = updated.AssignedTo
		existing.EstimatedHours = updated.EstimatedHours
		existing.CreatedBy = updated.CreatedBy

		reconcileCompletionDate(existing)

		applyDefaults(existing)
		if err := validateTask(existing); err != nil {
			return err
		}

		result = existing
		return tx.Save(existing)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PatchTask applies only the recognized keys present in updates; unrecognized
// keys are silently dropped.
func (s *taskService) PatchTask(id uint, updates map[string]interface{}) (*models.Task, error) {
	config.Logger.Debugf("patching task with id: %d (%d fields)", id, len(updates))

	var result *models.Task
	err := s.repo.WithTx(func(tx *repositories.TaskRepository) error {
		task, err := tx.FindByID(id)
		if err != nil {
			return err
		}

		if err := applyPatch(task, updates); err != nil {
			return err
		}

		result = task
		return tx.Save(task)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *taskService) DeleteTask(id uint) error {
	config.Logger.Debugf("deleting task with id: %d", id)
	return s.repo.Delete(id)
}

func (s *taskService) CompleteTask(id uint) (*models.Task, error) {
	config.Logger.Debugf("marking task as completed: %d", id)

	var result *models.Task
	err := s.repo.WithTx(func(tx *repositories.TaskRepository) error {
		task, err := tx.FindByID(id)
		if err != nil {
			return err
		}

		if task.Status == models.StatusCompleted {
			return taskerr.Conflict("task is already completed")
		}

		task.MarkCompleted()
		result = task
		return tx.Save(task)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *taskService) StartTask(id uint) (*models.Task, error) {
	config.Logger.Debugf("starting task: %d", id)

	var result *models.Task
	err := s.repo.WithTx(func(tx *repositories.TaskRepository) error {
		task, err := tx.FindByID(id)
		if err != nil {
			return err
		}

		if task.Status == models.StatusCompleted {
			return taskerr.Conflict("cannot start a completed task")
		}

		task.MarkInProgress()
		result = task
		return tx.Save(task)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *taskService) GetOverdueTasks() ([]models.Task, error) {
	return s.repo.FindOverdue(models.Today())
}

func (s *taskService) GetTasksDueToday() ([]models.Task, error) {
	return s.repo.FindDueOn(models.Today())
}

func (s *taskService) GetTasksDueWithin(days int) ([]models.Task, error) {
	if days < 0 {
		return nil, taskerr.Validation("days must be non-negative, got %d", days)
	}
	today := models.Today()
	return s.repo.FindDueBetween(today, today.AddDays(days))
}

func (s *taskService) GetHighPriorityPendingTasks() ([]models.Task, error) {
	return s.repo.FindHighPriorityPending()
}

func (s *taskService) GetRecentlyUpdatedTasks(page repositories.PageRequest) (*repositories.TaskPage, error) {
	return s.repo.FindRecentlyUpdated(page)
}

func (s *taskService) SearchTasks(query string) ([]models.Task, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, taskerr.Validation("search query cannot be empty")
	}
	return s.repo.Search(trimmed)
}

func (s *taskService) GetTasksByStatus(status models.Status) ([]models.Task, error) {
	return s.repo.FindByStatus(status)
}

func (s *taskService) GetTasksByPriority(priority models.Priority) ([]models.Task, error) {
	return s.repo.FindByPriority(priority)
}

func (s *taskService) GetTasksByCategory(category string) ([]models.Task, error) {
	return s.repo.FindByCategory(category)
}

func (s *taskService) GetTasksAssignedTo(assignedTo string) ([]models.Task, error) {
	return s.repo.FindByAssignedTo(assignedTo)
}

func (s *taskService) GetTasksCreatedBy(createdBy string) ([]models.Task, error) {
	return s.repo.FindByCreatedBy(createdBy)
}

// BulkUpdateStatus applies the status change to each existing id and skips
// missing ones. Each id is its own transaction; the batch is not atomic.
func (s *taskService) BulkUpdateStatus(ids []uint, status models.Status) (int, error) {
	if !status.Valid() {
		return 0, taskerr.Validation("invalid status %q", string(status))
	}

	config.Logger.Debugf("bulk updating status for %d tasks to %s", len(ids), status)

	updated := 0
	for _, id := range ids {
		err := s.repo.WithTx(func(tx *repositories.TaskRepository) error {
			task, err := tx.FindByID(id)
			if err != nil {
				return err
			}
			task.Status = status
			reconcileCompletionDate(task)
			return tx.Save(task)
		})
		if err != nil {
			if taskerr.IsNotFound(err) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BulkDeleteTasks deletes each existing id and skips missing ones, returning
// the count actually removed.
func (s *taskService) BulkDeleteTasks(ids []uint) (int, error) {
	config.Logger.Debugf("bulk deleting %d tasks", len(ids))

	deleted := 0
	for _, id := range ids {
		if err := s.repo.Delete(id); err != nil {
			if taskerr.IsNotFound(err) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// reconcileCompletionDate enforces the invariant that completionDate is set
// exactly while status is COMPLETED. Call after any direct status change.
func reconcileCompletionDate(task *models.Task) {
	if task.Status == models.StatusCompleted {
		if task.CompletionDate == nil {
			now := time.Now()
			task.CompletionDate = &now
		}
	} else {
		task.CompletionDate = nil
	}
}

func applyDefaults(task *models.Task) {
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if strings.TrimSpace(task.Category) == "" {
		task.Category = "General"
	}
}

func validateTask(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return taskerr.Validation("title cannot be empty")
	}
	if len(task.Title) > 100 {
		return taskerr.Validation("title must not exceed 100 characters")
	}
	if len(task.Description) > 500 {
		return taskerr.Validation("description must not exceed 500 characters")
	}
	if len(task.Category) > 50 {
		return taskerr.Validation("category must not exceed 50 characters")
	}
	if !task.Status.Valid() {
		return taskerr.Validation("invalid status %q", string(task.Status))
	}
	if !task.Priority.Valid() {
		return taskerr.Validation("invalid priority %q", string(task.Priority))
	}
	if task.EstimatedHours != nil {
		if *task.EstimatedHours < 0 {
			return taskerr.Validation("estimated hours cannot be negative")
		}
		if *task.EstimatedHours > 1000 {
			return taskerr.Validation("estimated hours must not exceed 1000")
		}
	}

	// Past due dates stay legal so historical tasks can be edited; warn only.
	if task.DueDate != nil && task.DueDate.Before(models.Today()) {
		config.Logger.Warnf("task due date is in the past: %s", task.DueDate)
	}

	return nil
}
