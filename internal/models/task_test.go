package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("IN_PROGRESS")
	if err != nil {
		t.Fatalf("Expected IN_PROGRESS to parse, got error: %v", err)
	}
	if status != StatusInProgress {
		t.Errorf("Expected StatusInProgress, got %s", status)
	}

	if _, err := ParseStatus("DONE"); err == nil {
		t.Error("Expected error for unknown status DONE")
	}
	if _, err := ParseStatus("todo"); err == nil {
		t.Error("Expected error for lowercase status")
	}
}

func TestParsePriority(t *testing.T) {
	priority, err := ParsePriority("URGENT")
	if err != nil {
		t.Fatalf("Expected URGENT to parse, got error: %v", err)
	}
	if priority != PriorityUrgent {
		t.Errorf("Expected PriorityUrgent, got %s", priority)
	}

	if _, err := ParsePriority("CRITICAL"); err == nil {
		t.Error("Expected error for unknown priority CRITICAL")
	}
}

func TestStatusTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() {
		t.Error("Expected COMPLETED to be terminal")
	}
	if !StatusCancelled.Terminal() {
		t.Error("Expected CANCELLED to be terminal")
	}
	if StatusTodo.Terminal() || StatusInProgress.Terminal() || StatusOnHold.Terminal() {
		t.Error("Expected active statuses to be non-terminal")
	}
}

func TestPriorityRank(t *testing.T) {
	ranks := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	for i := 1; i < len(ranks); i++ {
		if ranks[i].Rank() <= ranks[i-1].Rank() {
			t.Errorf("Expected %s to outrank %s", ranks[i], ranks[i-1])
		}
	}
	if Priority("UNKNOWN").Rank() != 0 {
		t.Error("Expected unknown priority to rank 0")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	yesterday := Today().AddDays(-1)
	tomorrow := Today().AddDays(1)

	task := Task{Title: "t", DueDate: &yesterday, Status: StatusTodo}
	if !task.IsOverdue() {
		t.Error("Expected task due yesterday to be overdue")
	}

	task.Status = StatusCompleted
	if task.IsOverdue() {
		t.Error("Expected completed task to never be overdue")
	}

	task.Status = StatusCancelled
	if task.IsOverdue() {
		t.Error("Expected cancelled task to never be overdue")
	}

	task = Task{Title: "t", DueDate: &tomorrow, Status: StatusTodo}
	if task.IsOverdue() {
		t.Error("Expected task due tomorrow to not be overdue")
	}

	task = Task{Title: "t", Status: StatusTodo}
	if task.IsOverdue() {
		t.Error("Expected task without due date to not be overdue")
	}
}

func TestTaskMarkCompleted(t *testing.T) {
	task := Task{Title: "t", Status: StatusInProgress}

	task.MarkCompleted()

	if task.Status != StatusCompleted {
		t.Errorf("Expected status COMPLETED, got %s", task.Status)
	}
	if task.CompletionDate == nil {
		t.Fatal("Expected completion date to be set")
	}
	if time.Since(*task.CompletionDate) > time.Minute {
		t.Error("Expected completion date to be recent")
	}
}

func TestTaskDaysUntilDue(t *testing.T) {
	task := Task{Title: "t"}
	if task.DaysUntilDue() != math.MaxInt64 {
		t.Error("Expected MaxInt64 when no due date is set")
	}

	in3 := Today().AddDays(3)
	task.DueDate = &in3
	if got := task.DaysUntilDue(); got != 3 {
		t.Errorf("Expected 3 days until due, got %d", got)
	}

	past := Today().AddDays(-2)
	task.DueDate = &past
	if got := task.DaysUntilDue(); got != -2 {
		t.Errorf("Expected -2 days until due, got %d", got)
	}
}

func TestTaskJSONFieldNames(t *testing.T) {
	due := NewDate(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assignee := "dev@example.com"
	task := Task{
		ID:         42,
		Title:      "Ship release",
		DueDate:    &due,
		Status:     StatusTodo,
		Priority:   PriorityHigh,
		Category:   "Release",
		AssignedTo: &assignee,
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Failed to marshal task: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal task: %v", err)
	}

	if decoded["dueDate"] != "2026-03-15" {
		t.Errorf("Expected dueDate 2026-03-15, got %v", decoded["dueDate"])
	}
	if decoded["assignedTo"] != assignee {
		t.Errorf("Expected assignedTo %s, got %v", assignee, decoded["assignedTo"])
	}
	if _, present := decoded["completionDate"]; present {
		t.Error("Expected nil completionDate to be omitted")
	}
	if _, present := decoded["estimatedHours"]; present {
		t.Error("Expected nil estimatedHours to be omitted")
	}
}
