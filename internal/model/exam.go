package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusExpired   ExamStatus = "EXPIRED"
)

// DefaultPassingScore is the passing percentage used when an exam does not set one.
const DefaultPassingScore = 70

// Exam is an exam definition. It is treated as immutable once an attempt starts.
type Exam struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	TimeLimitMinutes   int        `json:"time_limit_minutes"`
	PassingScore       int        `json:"passing_score"`
	RandomizeQuestions bool       `json:"randomize_questions"`
	ShowResults        bool       `json:"show_results"`
	Status             ExamStatus `json:"status"`
	AuthorID           int        `json:"author_id"`
	Questions          []Question `json:"questions"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TimeLimitSeconds returns the time limit in whole seconds.
func (e *Exam) TimeLimitSeconds() int {
	return e.TimeLimitMinutes * 60
}

// TotalPoints sums the point value of every question.
func (e *Exam) TotalPoints() int {
	total := 0
	for _, q := range e.Questions {
		total += q.Points
	}
	return total
}

// Question returns the question with the given id, or nil.
func (e *Exam) Question(id string) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the exam, including its questions.
func (e *Exam) Clone() *Exam {
	out := *e
	out.Questions = make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		out.Questions[i] = q.Clone()
	}
	return &out
}

// ForStudent builds the exam paper sent to exam takers (no correctness data).
func (e *Exam) ForStudent() *ExamPaper {
	paper := &ExamPaper{
		ExamID:           e.ID,
		Title:            e.Title,
		Description:      e.Description,
		TimeLimitMinutes: e.TimeLimitMinutes,
		TotalPoints:      e.TotalPoints(),
		Questions:        make([]QuestionForStudent, len(e.Questions)),
	}
	for i, q := range e.Questions {
		opts := make([]OptionForTaker, len(q.Options))
		for j, o := range q.Options {
			opts[j] = OptionForTaker{ID: o.ID, Text: o.Text}
		}
		paper.Questions[i] = QuestionForStudent{
			ID:      q.ID,
			Text:    q.Text,
			Type:    q.Type,
			Options: opts,
			Points:  q.Points,
		}
	}
	return paper
}

// ExamPaper is the student-facing view of an exam.
type ExamPaper struct {
	ExamID           uuid.UUID            `json:"exam_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	TimeLimitMinutes int                  `json:"time_limit_minutes"`
	TotalPoints      int                  `json:"total_points"`
	Questions        []QuestionForStudent `json:"questions"`
}

// ExamStats aggregates attempts for the exam management list.
type ExamStats struct {
	Attempts int     `json:"attempts"`
	AvgScore float64 `json:"avg_score"`
}

// ExamSummary is an exam as listed on the management screen.
type ExamSummary struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           ExamStatus `json:"status"`
	QuestionCount    int        `json:"question_count"`
	TotalPoints      int        `json:"total_points"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	CreatedAt        time.Time  `json:"created_at"`
	ExamStats
}

// ExamFilter narrows the management list.
type ExamFilter struct {
	Search   string
	Status   string // "all" or an ExamStatus, case-insensitive
	AuthorID int    // 0 = any author
}

// ListExamsQuery is the query string of the management list.
type ListExamsQuery struct {
	Search string `form:"search" binding:"omitempty,max=255"`
	Status string `form:"status" binding:"omitempty,examstatus"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title              string `json:"title" binding:"required,min=3,max=255"`
	Description        string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes   int    `json:"time_limit_minutes" binding:"required,min=1,max=480"`
	PassingScore       *int   `json:"passing_score" binding:"omitempty,min=0,max=100"`
	RandomizeQuestions bool   `json:"randomize_questions"`
	ShowResults        *bool  `json:"show_results"`
}

// UpdateExamRequest is the payload for updating the settings of a draft exam.
type UpdateExamRequest struct {
	Title              string  `json:"title" binding:"omitempty,min=3,max=255"`
	Description        *string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes   int     `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	PassingScore       *int    `json:"passing_score" binding:"omitempty,min=0,max=100"`
	RandomizeQuestions *bool   `json:"randomize_questions"`
	ShowResults        *bool   `json:"show_results"`
}
