package services

import (
	"task-manager/internal/config"
	"task-manager/internal/models"
)

// TaskStatistics is the aggregate report for the statistics endpoint.
// Everything is recomputed against current state on each call.
type TaskStatistics struct {
	StatusCounts   map[string]int64 `json:"statusCounts"`
	PriorityCounts map[string]int64 `json:"priorityCounts"`
	CategoryCounts map[string]int64 `json:"categoryCounts"`
	AssigneeCounts map[string]int64 `json:"assigneeCounts"`
	Overall        OverallStats     `json:"overall"`
}

type OverallStats struct {
	Total    int64 `json:"total"`
	Overdue  int64 `json:"overdue"`
	DueToday int64 `json:"dueToday"`
}

func (s *taskService) GetStatistics() (*TaskStatistics, error) {
	config.Logger.Debug("computing task statistics")

	statusCounts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, err
	}
	priorityCounts, err := s.repo.CountByPriority()
	if err != nil {
		return nil, err
	}
	categoryCounts, err := s.repo.CountByCategory()
	if err != nil {
		return nil, err
	}
	assigneeCounts, err := s.repo.CountByAssignee()
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count()
	if err != nil {
		return nil, err
	}

	today := models.Today()
	overdue, err := s.repo.FindOverdue(today)
	if err != nil {
		return nil, err
	}
	dueToday, err := s.repo.FindDueOn(today)
	if err != nil {
		return nil, err
	}

	return &TaskStatistics{
		StatusCounts:   statusCounts,
		PriorityCounts: priorityCounts,
		CategoryCounts: categoryCounts,
		AssigneeCounts: assigneeCounts,
		Overall: OverallStats{
			Total:    total,
			Overdue:  int64(len(overdue)),
			DueToday: int64(len(dueToday)),
		},
	}, nil
}
