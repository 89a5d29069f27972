package repositories

import (
	"strings"
	"time"

	"task-manager/internal/models"

	"gorm.io/gorm"
)

// TaskFilter holds one optional condition per field. A nil field contributes
// no constraint; every supplied field must hold for a row to qualify.
type TaskFilter struct {
	Title         *string
	Description   *string
	Status        *models.Status
	Priority      *models.Priority
	Category      *string
	AssignedTo    *string
	CreatedBy     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	DueAfter      *models.Date
	DueBefore     *models.Date
	SearchTerm    *string
}

// Scope folds the supplied filters into a single conjunction. The search
// term is OR'd across title and description internally but AND'd with the
// rest of the filters.
func (f *TaskFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f == nil {
			return db
		}
		if f.Title != nil {
			db = db.Where("LOWER(title) LIKE ?", containsPattern(*f.Title))
		}
		if f.Description != nil {
			db = db.Where("LOWER(description) LIKE ?", containsPattern(*f.Description))
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if f.Priority != nil {
			db = db.Where("priority = ?", *f.Priority)
		}
		if f.Category != nil {
			db = db.Where("LOWER(category) = ?", strings.ToLower(*f.Category))
		}
		if f.AssignedTo != nil {
			db = db.Where("assigned_to = ?", *f.AssignedTo)
		}
		if f.CreatedBy != nil {
			db = db.Where("created_by = ?", *f.CreatedBy)
		}
		if f.CreatedAfter != nil {
			db = db.Where("created_at >= ?", *f.CreatedAfter)
		}
		if f.CreatedBefore != nil {
			db = db.Where("created_at <= ?", *f.CreatedBefore)
		}
		if f.DueAfter != nil {
			db = db.Where("due_date >= ?", *f.DueAfter)
		}
		if f.DueBefore != nil {
			db = db.Where("due_date <= ?", *f.DueBefore)
		}
		if f.SearchTerm != nil {
			pattern := containsPattern(*f.SearchTerm)
			db = db.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
		}
		return db
	}
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
