package services

import (
	"math"

	"task-manager/internal/models"
	"task-manager/internal/taskerr"
)

// patchAppliers is the fixed dispatch table for partial updates: one typed
// setter per recognized field. Keys outside this table are dropped, not
// errors.
var patchAppliers = map[string]func(*models.Task, interface{}) error{
	"title": func(t *models.Task, v interface{}) error {
		s, err := coerceString(v, "title")
		if err != nil {
			return err
		}
		t.Title = s
		return nil
	},
	"description": func(t *models.Task, v interface{}) error {
		if v == nil {
			t.Description = ""
			return nil
		}
		s, err := coerceString(v, "description")
		if err != nil {
			return err
		}
		t.Description = s
		return nil
	},
	"dueDate": func(t *models.Task, v interface{}) error {
		if v == nil {
			t.DueDate = nil
			return nil
		}
		s, err := coerceString(v, "dueDate")
		if err != nil {
			return err
		}
		date, err := models.ParseDate(s)
		if err != nil {
			return taskerr.Validation("invalid dueDate: %v", err)
		}
		t.DueDate = &date
		return nil
	},
	"status": func(t *models.Task, v interface{}) error {
		s, err := coerceString(v, "status")
		if err != nil {
			return err
		}
		status, err := models.ParseStatus(s)
		if err != nil {
			return taskerr.Validation("%v", err)
		}
		t.Status = status
		reconcileCompletionDate(t)
		return nil
	},
	"priority": func(t *models.Task, v interface{}) error {
		s, err := coerceString(v, "priority")
		if err != nil {
			return err
		}
		priority, err := models.ParsePriority(s)
		if err != nil {
			return taskerr.Validation("%v", err)
		}
		t.Priority = priority
		return nil
	},
	"category": func(t *models.Task, v interface{}) error {
		s, err := coerceString(v, "category")
		if err != nil {
			return err
		}
		t.Category = s
		return nil
	},
	"assignedTo": func(t *models.Task, v interface{}) error {
		if v == nil {
			t.AssignedTo = nil
			return nil
		}
		s, err := coerceString(v, "assignedTo")
		if err != nil {
			return err
		}
		t.AssignedTo = &s
		return nil
	},
	"estimatedHours": func(t *models.Task, v interface{}) error {
		if v == nil {
			t.EstimatedHours = nil
			return nil
		}
		hours, err := coerceInt(v, "estimatedHours")
		if err != nil {
			return err
		}
		if hours < 0 {
			return taskerr.Validation("estimated hours cannot be negative")
		}
		t.EstimatedHours = &hours
		return nil
	},
	"createdBy": func(t *models.Task, v interface{}) error {
		if v == nil {
			t.CreatedBy = nil
			return nil
		}
		s, err := coerceString(v, "createdBy")
		if err != nil {
			return err
		}
		t.CreatedBy = &s
		return nil
	},
}

// applyPatch mutates task from a loosely-typed field map. The first coercion
// failure aborts the patch.
func applyPatch(task *models.Task, updates map[string]interface{}) error {
	for key, value := range updates {
		apply, ok := patchAppliers[key]
		if !ok {
			continue
		}
		if err := apply(task, value); err != nil {
			return err
		}
	}
	return nil
}

func coerceString(v interface{}, field string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", taskerr.Validation("field %s expects a string, got %T", field, v)
	}
	return s, nil
}

func coerceInt(v interface{}, field string) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		// JSON numbers arrive as float64; reject fractional values.
		if n != math.Trunc(n) {
			return 0, taskerr.Validation("field %s expects an integer, got %v", field, n)
		}
		return int(n), nil
	default:
		return 0, taskerr.Validation("field %s expects an integer, got %T", field, v)
	}
}
