package repositories

import (
	"errors"
	"fmt"

	"task-manager/internal/models"
	"task-manager/internal/taskerr"

	"gorm.io/gorm"
)

// priorityRank orders the string priority enum for SQL sorting.
const priorityRank = "CASE priority WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END"

// TaskRepository provides access to task storage.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx runs fn against a repository bound to one transaction. Each mutating
// service operation uses this to make its read-modify-write atomic.
func (r *TaskRepository) WithTx(fn func(*TaskRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&TaskRepository{db: tx})
	})
}

func (r *TaskRepository) Create(task *models.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskerr.NotFound("task not found with id: %d", id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Save persists every field of an existing task.
func (r *TaskRepository) Save(task *models.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return taskerr.NotFound("task not found with id: %d", id)
	}
	return nil
}

func (r *TaskRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check task existence: %w", err)
	}
	return count > 0, nil
}

func (r *TaskRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// FindPage returns one page of tasks matching filter; a nil filter matches
// everything.
func (r *TaskRepository) FindPage(filter *TaskFilter, page PageRequest) (*TaskPage, error) {
	page = page.normalized()

	query := r.db.Model(&models.Task{}).Scopes(filter.Scope())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count filtered tasks: %w", err)
	}

	var tasks []models.Task
	err := query.
		Order(page.orderClause()).
		Offset(page.offset()).
		Limit(page.Size).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	return &TaskPage{Tasks: tasks, Total: total, Page: page.Page, Size: page.Size}, nil
}

// FindOverdue returns active tasks whose due date is strictly before today.
func (r *TaskRepository) FindOverdue(today models.Date) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("due_date < ? AND status NOT IN ?", today, terminalStatuses()).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue tasks: %w", err)
	}
	return tasks, nil
}

// FindDueOn returns active tasks due exactly on the given day.
func (r *TaskRepository) FindDueOn(day models.Date) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("due_date = ? AND status NOT IN ?", day, terminalStatuses()).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks due on %s: %w", day, err)
	}
	return tasks, nil
}

// FindDueBetween returns active tasks due in [start, end], both inclusive.
func (r *TaskRepository) FindDueBetween(start, end models.Date) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("due_date BETWEEN ? AND ? AND status NOT IN ?", start, end, terminalStatuses()).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks due between %s and %s: %w", start, end, err)
	}
	return tasks, nil
}

// FindHighPriorityPending returns HIGH/URGENT tasks still in TODO or
// IN_PROGRESS, most urgent first with oldest-first tie-break.
func (r *TaskRepository) FindHighPriorityPending() ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("priority IN ? AND status IN ?",
			[]models.Priority{models.PriorityHigh, models.PriorityUrgent},
			[]models.Status{models.StatusTodo, models.StatusInProgress}).
		Order(priorityRank + " DESC, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find high priority pending tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindRecentlyUpdated(page PageRequest) (*TaskPage, error) {
	page.SortBy = "updatedAt"
	page.SortDir = "desc"
	return r.FindPage(nil, page)
}

// Search matches term case-insensitively against title or description.
func (r *TaskRepository) Search(term string) ([]models.Task, error) {
	pattern := containsPattern(term)
	var tasks []models.Task
	err := r.db.
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByStatus(status models.Status) ([]models.Task, error) {
	return r.findWhere("status = ?", status)
}

func (r *TaskRepository) FindByPriority(priority models.Priority) ([]models.Task, error) {
	return r.findWhere("priority = ?", priority)
}

func (r *TaskRepository) FindByCategory(category string) ([]models.Task, error) {
	return r.findWhere("category = ?", category)
}

func (r *TaskRepository) FindByAssignedTo(assignedTo string) ([]models.Task, error) {
	return r.findWhere("assigned_to = ?", assignedTo)
}

func (r *TaskRepository) FindByCreatedBy(createdBy string) ([]models.Task, error) {
	return r.findWhere("created_by = ?", createdBy)
}

func (r *TaskRepository) findWhere(cond string, arg interface{}) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where(cond, arg).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountByStatus() (map[string]int64, error) {
	return r.groupCount("status", nil)
}

func (r *TaskRepository) CountByPriority() (map[string]int64, error) {
	return r.groupCount("priority", nil)
}

func (r *TaskRepository) CountByCategory() (map[string]int64, error) {
	return r.groupCount("category", nil)
}

// CountByAssignee groups only rows with an assignee set.
func (r *TaskRepository) CountByAssignee() (map[string]int64, error) {
	cond := "assigned_to IS NOT NULL"
	return r.groupCount("assigned_to", &cond)
}

func (r *TaskRepository) groupCount(column string, cond *string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Total int64
	}

	query := r.db.Model(&models.Task{}).
		Select(column + " AS key, COUNT(*) AS total").
		Group(column)
	if cond != nil {
		query = query.Where(*cond)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

func terminalStatuses() []models.Status {
	return []models.Status{models.StatusCompleted, models.StatusCancelled}
}
