package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank is a reusable pool of questions grouped under a category.
// Questions are stored whole, like the questions of an exam.
type QuestionBank struct {
	ID          uuid.UUID  `json:"id"`
	AuthorID    int        `json:"author_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Question returns the question with the given id, or nil.
func (b *QuestionBank) Question(id string) *Question {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return &b.Questions[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the bank.
func (b *QuestionBank) Clone() *QuestionBank {
	out := *b
	out.Questions = make([]Question, len(b.Questions))
	for i, q := range b.Questions {
		out.Questions[i] = q.Clone()
	}
	return &out
}

// QuestionBankSummary is a bank as listed on the question bank screen.
type QuestionBankSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"question_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CategoryCount is one entry of the category sidebar.
type CategoryCount struct {
	Category      string `json:"category"`
	Banks         int    `json:"banks"`
	QuestionCount int    `json:"question_count"`
}

// BankQuestion is a question found by a search across banks.
type BankQuestion struct {
	BankID   uuid.UUID `json:"bank_id"`
	BankName string    `json:"bank_name"`
	Category string    `json:"category"`
	Question Question  `json:"question"`
}

// QuestionBankFilter narrows the bank list. Search matches name and description.
type QuestionBankFilter struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

// ListQuestionBanksQuery is the query string of the bank list.
type ListQuestionBanksQuery struct {
	Search   string `form:"search" binding:"omitempty,max=255"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// SearchBankQuestionsQuery is the query string of the question search.
type SearchBankQuestionsQuery struct {
	Search   string `form:"search" binding:"omitempty,max=255"`
	Category string `form:"category" binding:"omitempty,max=100"`
}

// CreateQuestionBankRequest is the payload for creating a bank.
type CreateQuestionBankRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=255"`
	Category    string `json:"category" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateQuestionBankRequest is the payload for renaming or recategorising a bank.
type UpdateQuestionBankRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=3,max=255"`
	Category    string  `json:"category" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ImportQuestionsRequest copies selected bank questions into an exam.
type ImportQuestionsRequest struct {
	BankID      uuid.UUID `json:"bank_id" binding:"required"`
	QuestionIDs []string  `json:"question_ids" binding:"required,min=1,max=200,dive,required,max=64"`
}
