package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/model"
)

// UserStore is the account storage used by AuthService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// ExamStore is the exam storage used by ExamService.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f model.ExamFilter) ([]model.ExamSummary, error)
	ListPublished(ctx context.Context) ([]model.Exam, error)
}

// QuestionBankStore is the question bank storage used by QuestionBankService.
type QuestionBankStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error)
	Create(ctx context.Context, b *model.QuestionBank) error
	Update(ctx context.Context, b *model.QuestionBank) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f model.QuestionBankFilter) ([]model.QuestionBankSummary, int, error)
	ListByCategory(ctx context.Context, category string) ([]model.QuestionBank, error)
	Categories(ctx context.Context) ([]model.CategoryCount, error)
}

// DashboardStore is the read model behind the admin dashboard.
type DashboardStore interface {
	GetSummaryCounts(ctx context.Context) (model.DashboardSummary, error)
	GetExamStatusCounts(ctx context.Context) (map[model.ExamStatus]int, error)
	GetOpenExams(ctx context.Context, limit int) ([]model.OpenExam, error)
	GetRecentAttempts(ctx context.Context, limit int) ([]model.RecentAttempt, error)
}

// SessionStore is the attempt storage used by ExamSessionService.
type SessionStore interface {
	GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamSession, error)
	Create(ctx context.Context, s *model.ExamSession) error
	ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error)
	ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error)
	GetResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error)
	SaveResult(ctx context.Context, res *model.ExamResult) error
	ListResultsByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.ResultSummary, int, error)
}

// MonitorStore is the read model behind the live monitor.
type MonitorStore interface {
	ListParticipants(ctx context.Context, examID uuid.UUID) ([]model.Participant, error)
	GetAnsweredCounts(ctx context.Context, examID uuid.UUID) (map[int]int, error)
}

// LoginCache tracks the current login of each student. Lookups of absent keys
// return cache.ErrMiss.
type LoginCache interface {
	SetLogin(ctx context.Context, userID int, jti string, ttl time.Duration) error
	GetLogin(ctx context.Context, userID int) (string, error)
	DeleteLogin(ctx context.Context, userID int) error
}

// ExamCache holds full exam definitions.
type ExamCache interface {
	GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
	SetExam(ctx context.Context, e *model.Exam) error
	DeleteExam(ctx context.Context, examID uuid.UUID) error
}

// AttemptCache holds the hot state of attempts plus the worker queues and the
// monitor channel.
type AttemptCache interface {
	SetAttempt(ctx context.Context, examID uuid.UUID, userID int, sessionID uuid.UUID, startedAt time.Time) error
	GetSessionStart(ctx context.Context, examID uuid.UUID, userID int) (time.Time, error)
	SetQuestionOrder(ctx context.Context, examID uuid.UUID, userID int, order []string) error
	GetQuestionOrder(ctx context.Context, examID uuid.UUID, userID int) ([]string, error)
	SaveAnswer(ctx context.Context, examID uuid.UUID, userID int, a model.Answer) error
	GetAnswers(ctx context.Context, examID uuid.UUID, userID int) ([]model.Answer, error)
	SetCursor(ctx context.Context, examID uuid.UUID, userID int, index int) error
	GetCursor(ctx context.Context, examID uuid.UUID, userID int) (int, error)
	SetResult(ctx context.Context, res *model.ExamResult) error
	GetResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error)
	Enqueue(ctx context.Context, queue string, payload any) error
	Publish(ctx context.Context, channel string, payload any) error
}
