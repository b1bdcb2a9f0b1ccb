package service

import (
	"context"
	"fmt"

	"github.com/stemsi/examroom/internal/model"
)

const dashboardListLimit = 5

// LiveCounter reports how many attempts are running in memory.
type LiveCounter interface {
	ActiveCount() int
}

// DashboardService assembles the admin dashboard.
type DashboardService struct {
	repo DashboardStore
	live LiveCounter
}

// NewDashboardService creates a new DashboardService. live may be nil.
func NewDashboardService(repo DashboardStore, live LiveCounter) *DashboardService {
	return &DashboardService{repo: repo, live: live}
}

// GetDashboardData fetches the summary counts, the exam status distribution,
// the open exams and the latest completed attempts.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*model.DashboardData, error) {
	summary, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}

	statusCounts, err := s.repo.GetExamStatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("exam status counts: %w", err)
	}
	if statusCounts == nil {
		statusCounts = make(map[model.ExamStatus]int)
	}
	for _, st := range []model.ExamStatus{model.ExamStatusDraft, model.ExamStatusPublished, model.ExamStatusExpired} {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	open, err := s.repo.GetOpenExams(ctx, dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("open exams: %w", err)
	}

	recent, err := s.repo.GetRecentAttempts(ctx, dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("recent attempts: %w", err)
	}

	data := &model.DashboardData{
		Summary:          summary,
		ExamStatusCounts: statusCounts,
		OpenExams:        open,
		RecentAttempts:   recent,
	}
	if s.live != nil {
		data.LiveAttempts = s.live.ActiveCount()
	}
	return data, nil
}
