package service

import "errors"

// Sentinel errors returned by the services. Handlers map them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionInvalidated = errors.New("session invalidated")

	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotAvailable = errors.New("exam is not available")
	ErrExamNotDraft     = errors.New("exam is not a draft")
	ErrExamPublished    = errors.New("published exams must be expired first")
	ErrNoQuestions      = errors.New("exam has no questions")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrQuestionNotFound = errors.New("question not found")

	ErrSessionNotStarted = errors.New("exam session not started")
	ErrSessionCompleted  = errors.New("exam session already completed")
	ErrAnswerRejected    = errors.New("answer does not fit the question")
	ErrResultNotFound    = errors.New("result not found")
	ErrResultsHidden     = errors.New("results are hidden for this exam")
	ErrNotEssay          = errors.New("only essay answers are graded by hand")
	ErrShuttingDown      = errors.New("exam sessions are shutting down")

	ErrQuestionBankNotFound = errors.New("question bank not found")
)
