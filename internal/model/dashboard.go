package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardSummary holds the headline counts of the admin dashboard.
type DashboardSummary struct {
	TotalStudents      int `json:"total_students"`
	TotalExams         int `json:"total_exams"`
	TotalQuestionBanks int `json:"total_question_banks"`
	TotalBankQuestions int `json:"total_bank_questions"`
	InProgressAttempts int `json:"in_progress_attempts"`
	CompletedAttempts  int `json:"completed_attempts"`
	PassedAttempts     int `json:"passed_attempts"`
}

// OpenExam is a published exam with its participation so far.
type OpenExam struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	QuestionCount    int       `json:"question_count"`
	Participants     int       `json:"participants"`
}

// RecentAttempt is a recently completed attempt.
type RecentAttempt struct {
	ExamID     uuid.UUID `json:"exam_id"`
	ExamTitle  string    `json:"exam_title"`
	UserID     int       `json:"user_id"`
	UserName   string    `json:"user_name"`
	Score      float64   `json:"score"`
	Passed     bool      `json:"passed"`
	FinishedAt time.Time `json:"finished_at"`
}

// DashboardData is the payload of the admin dashboard.
type DashboardData struct {
	Summary          DashboardSummary   `json:"summary"`
	ExamStatusCounts map[ExamStatus]int `json:"exam_status_counts"`
	LiveAttempts     int                `json:"live_attempts"`
	OpenExams        []OpenExam         `json:"open_exams"`
	RecentAttempts   []RecentAttempt    `json:"recent_attempts"`
}
