package repositories

import (
	"fmt"

	"task-manager/internal/config"
	"task-manager/internal/models"

	"gorm.io/gorm"
)

// SeedSampleTasks loads a fixed demo dataset, but only when the store is
// empty; the count check makes the bootstrap idempotent.
func SeedSampleTasks(db *gorm.DB) error {
	var existing int64
	if err := db.Model(&models.Task{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count tasks before seeding: %w", err)
	}

	config.Logger.Infof("current task count: %d", existing)
	if existing > 0 {
		config.Logger.Info("sample data already exists, skipping data loading")
		return nil
	}

	config.Logger.Info("loading sample data...")
	if err := db.Create(sampleTasks()).Error; err != nil {
		return fmt.Errorf("failed to seed sample tasks: %w", err)
	}
	config.Logger.Info("sample data loaded successfully")
	return nil
}

func sampleTasks() []models.Task {
	today := models.Today()

	return []models.Task{
		{
			Title:          "Implement User Authentication",
			Description:    "Add JWT-based authentication system to the API",
			DueDate:        datePtr(today.AddDays(7)),
			Status:         models.StatusInProgress,
			Priority:       models.PriorityHigh,
			Category:       "Security",
			AssignedTo:     strPtr("john.doe@example.com"),
			EstimatedHours: intPtr(16),
			CreatedBy:      strPtr("manager@example.com"),
		},
		{
			Title:          "Write API Documentation",
			Description:    "Create comprehensive documentation for all API endpoints",
			DueDate:        datePtr(today.AddDays(3)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityMedium,
			Category:       "Documentation",
			AssignedTo:     strPtr("jane.smith@example.com"),
			EstimatedHours: intPtr(8),
			CreatedBy:      strPtr("manager@example.com"),
		},
		{
			Title:          "Fix Database Connection Bug",
			Description:    "Resolve intermittent database connection timeout issues",
			DueDate:        datePtr(today.AddDays(1)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityUrgent,
			Category:       "Bug Fix",
			AssignedTo:     strPtr("bob.johnson@example.com"),
			EstimatedHours: intPtr(4),
			CreatedBy:      strPtr("support@example.com"),
		},
		{
			Title:          "Setup CI/CD Pipeline",
			Description:    "Configure automated testing and deployment pipeline",
			DueDate:        datePtr(today.AddDays(14)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityMedium,
			Category:       "DevOps",
			AssignedTo:     strPtr("alice.brown@example.com"),
			EstimatedHours: intPtr(20),
			CreatedBy:      strPtr("cto@example.com"),
		},
		{
			Title:          "Performance Testing",
			Description:    "Conduct load testing for the new API endpoints",
			DueDate:        datePtr(today.AddDays(10)),
			Status:         models.StatusOnHold,
			Priority:       models.PriorityLow,
			Category:       "Testing",
			AssignedTo:     strPtr("charlie.wilson@example.com"),
			EstimatedHours: intPtr(12),
			CreatedBy:      strPtr("qa@example.com"),
		},
		{
			Title:          "Database Migration",
			Description:    "Migrate existing data to new schema format",
			DueDate:        datePtr(today.AddDays(2)),
			Status:         models.StatusCompleted,
			Priority:       models.PriorityHigh,
			Category:       "Database",
			AssignedTo:     strPtr("david.clark@example.com"),
			EstimatedHours: intPtr(24),
			CreatedBy:      strPtr("architect@example.com"),
		},
		{
			Title:          "Update Dependencies",
			Description:    "Update all project dependencies to latest versions",
			DueDate:        datePtr(today.AddDays(1)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityMedium,
			Category:       "Maintenance",
			AssignedTo:     strPtr("john.doe@example.com"),
			EstimatedHours: intPtr(6),
			CreatedBy:      strPtr("manager@example.com"),
		},
		{
			Title:          "Code Review Process",
			Description:    "Establish standardized code review process and guidelines",
			DueDate:        datePtr(today.AddDays(5)),
			Status:         models.StatusInProgress,
			Priority:       models.PriorityMedium,
			Category:       "Process",
			AssignedTo:     strPtr("senior.developer@example.com"),
			EstimatedHours: intPtr(10),
			CreatedBy:      strPtr("lead@example.com"),
		},
		{
			Title:          "Mobile App Integration",
			Description:    "Integrate task manager with mobile application",
			DueDate:        datePtr(today.AddDays(21)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityLow,
			Category:       "Integration",
			AssignedTo:     strPtr("mobile.dev@example.com"),
			EstimatedHours: intPtr(40),
			CreatedBy:      strPtr("product@example.com"),
		},
		{
			Title:          "Security Audit",
			Description:    "Conduct comprehensive security audit of the application",
			DueDate:        datePtr(today.AddDays(30)),
			Status:         models.StatusTodo,
			Priority:       models.PriorityHigh,
			Category:       "Security",
			AssignedTo:     strPtr("security@example.com"),
			EstimatedHours: intPtr(32),
			CreatedBy:      strPtr("ciso@example.com"),
		},
	}
}

func strPtr(s string) *string            { return &s }
func intPtr(i int) *int                  { return &i }
func datePtr(d models.Date) *models.Date { return &d }
