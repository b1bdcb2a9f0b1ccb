package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/storetest"
)

type liveCount int

func (n liveCount) ActiveCount() int { return int(n) }

func TestDashboardData(t *testing.T) {
	repo := &storetest.Dashboard{
		Summary:  model.DashboardSummary{TotalStudents: 12, TotalExams: 3, CompletedAttempts: 7, PassedAttempts: 5},
		Statuses: map[model.ExamStatus]int{model.ExamStatusPublished: 2, model.ExamStatusDraft: 1},
		Open:     []model.OpenExam{{ID: demo.ExamID, Title: "JavaScript Fundamentals", Participants: 9}},
		Recent:   []model.RecentAttempt{{ExamID: demo.ExamID, UserName: "Student", Score: 80, Passed: true}},
	}
	svc := NewDashboardService(repo, liveCount(4))

	data, err := svc.GetDashboardData(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardData: %v", err)
	}
	if data.Summary.TotalStudents != 12 || data.Summary.PassedAttempts != 5 {
		t.Fatalf("unexpected summary: %+v", data.Summary)
	}
	if data.ExamStatusCounts[model.ExamStatusPublished] != 2 {
		t.Fatalf("unexpected status counts: %v", data.ExamStatusCounts)
	}
	if n, ok := data.ExamStatusCounts[model.ExamStatusExpired]; !ok || n != 0 {
		t.Fatalf("missing statuses must read zero: %v", data.ExamStatusCounts)
	}
	if data.LiveAttempts != 4 || len(data.OpenExams) != 1 || len(data.RecentAttempts) != 1 {
		t.Fatalf("unexpected data: %+v", data)
	}
	for _, limit := range repo.Limits {
		if limit != dashboardListLimit {
			t.Fatalf("list limit = %d, want %d", limit, dashboardListLimit)
		}
	}
}

func TestDashboardDataWithoutLiveCounter(t *testing.T) {
	data, err := NewDashboardService(&storetest.Dashboard{}, nil).GetDashboardData(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardData: %v", err)
	}
	if data.LiveAttempts != 0 || data.OpenExams == nil || data.RecentAttempts == nil {
		t.Fatalf("unexpected empty dashboard: %+v", data)
	}
	if len(data.ExamStatusCounts) != 3 {
		t.Fatalf("expected every status, got %v", data.ExamStatusCounts)
	}
}

func TestDashboardDataError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewDashboardService(&storetest.Dashboard{Err: boom}, nil).GetDashboardData(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
