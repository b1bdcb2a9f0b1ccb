package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates persisted exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// ExamSession is a user's persisted exam attempt.
type ExamSession struct {
	ID            uuid.UUID     `json:"id"`
	ExamID        uuid.UUID     `json:"exam_id"`
	UserID        int           `json:"user_id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	Status        SessionStatus `json:"status"`
	FinalScore    *float64      `json:"final_score,omitempty"`
	QuestionOrder []string      `json:"question_order,omitempty"`
}

// QuestionOrder is the randomised question order of one attempt.
type QuestionOrder struct {
	SessionID uuid.UUID `json:"session_id"`
	Order     []string  `json:"order"`
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID    string       `json:"question_id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	IsCorrect     *bool        `json:"is_correct"`
	Pending       bool         `json:"pending"`
	Points        int          `json:"points"`
	EarnedPoints  int          `json:"earned_points"`
	Feedback      string       `json:"feedback,omitempty"`
}

// ExamResult is the graded outcome of a submitted session.
type ExamResult struct {
	SessionID        uuid.UUID        `json:"session_id"`
	ExamID           uuid.UUID        `json:"exam_id"`
	ExamTitle        string           `json:"exam_title"`
	UserID           int              `json:"user_id"`
	UserName         string           `json:"user_name,omitempty"`
	SubmittedAt      time.Time        `json:"submitted_at"`
	AutoSubmitted    bool             `json:"auto_submitted"`
	ElapsedSeconds   int              `json:"elapsed_seconds"`
	RemainingSeconds int              `json:"remaining_seconds"`
	TimeSpent        string           `json:"time_spent"`
	TotalQuestions   int              `json:"total_questions"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	PendingAnswers   int              `json:"pending_answers"`
	TotalPoints      int              `json:"total_points"`
	EarnedPoints     int              `json:"earned_points"`
	Score            float64          `json:"score"`
	PassingScore     int              `json:"passing_score"`
	Passed           bool             `json:"passed"`
	Questions        []QuestionResult `json:"questions"`
	Answers          []Answer         `json:"answers"`
}

// ResultSummary is one row of an exam's result listing.
type ResultSummary struct {
	UserID     int           `json:"user_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	FinalScore *float64      `json:"score"`
	Status     SessionStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
}

// ManualGradeRequest grades an essay question by hand.
type ManualGradeRequest struct {
	Points   int    `json:"points" binding:"min=0"`
	Feedback string `json:"feedback" binding:"omitempty,max=2000"`
}

// Participant is one row of the live exam monitor.
type Participant struct {
	UserID        int           `json:"user_id"`
	Name          string        `json:"name"`
	Status        SessionStatus `json:"status"`
	Score         *float64      `json:"score"`
	StartedAt     time.Time     `json:"started_at"`
	AnsweredCount int           `json:"answered_count"`
}
