package repositories

import (
	"testing"

	"task-manager/internal/models"
)

func TestSeedSampleTasks(t *testing.T) {
	db := setupTestDB(t)

	if err := SeedSampleTasks(db); err != nil {
		t.Fatalf("Failed to seed sample tasks: %v", err)
	}

	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 seeded tasks, got %d", count)
	}
}

func TestSeedSampleTasksIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := SeedSampleTasks(db); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	if err := SeedSampleTasks(db); err != nil {
		t.Fatalf("Failed on second seed call: %v", err)
	}

	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected seeding to be skipped on non-empty store, got %d tasks", count)
	}
}

func TestSeedSampleTasksSkipsNonEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	mustCreate(t, repo, models.Task{Title: "Pre-existing"})

	if err := SeedSampleTasks(db); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected existing data to block seeding, got %d tasks", count)
	}
}
