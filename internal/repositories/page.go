package repositories

import (
	"fmt"
	"strings"

	"task-manager/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageRequest carries pagination and sorting. Page is zero-based; SortBy
// uses the JSON field names and is mapped through an allowlist.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 0, Size: defaultPageSize, SortBy: "createdAt", SortDir: "desc"}
}

// sortColumns maps external sort field names to columns. Unknown fields fall
// back to created_at rather than erroring.
var sortColumns = map[string]string{
	"id":             "id",
	"title":          "title",
	"dueDate":        "due_date",
	"status":         "status",
	"priority":       "priority",
	"category":       "category",
	"assignedTo":     "assigned_to",
	"createdBy":      "created_by",
	"estimatedHours": "estimated_hours",
	"completionDate": "completion_date",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "createdAt"
	}
	if !strings.EqualFold(p.SortDir, "asc") && !strings.EqualFold(p.SortDir, "desc") {
		p.SortDir = "desc"
	}
	return p
}

func (p PageRequest) orderClause() string {
	dir := "DESC"
	if strings.EqualFold(p.SortDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", sortColumns[p.SortBy], dir)
}

func (p PageRequest) offset() int {
	return p.Page * p.Size
}

// TaskPage is one page of results with the unfiltered-within-predicate total.
type TaskPage struct {
	Tasks []models.Task `json:"tasks"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}
