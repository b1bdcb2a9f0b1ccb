package model

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTrueFalse      QuestionType = "true-false"
	QuestionTypeShortAnswer    QuestionType = "short-answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// SingleSelect reports whether answers to this type are a choice of exactly one option.
// Multiple-choice is single-select only; no multi-select type exists.
func (t QuestionType) SingleSelect() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Option is one selectable choice of a question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question represents a single exam question.
type Question struct {
	ID              string       `json:"id"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	Options         []Option     `json:"options"`
	Points          int          `json:"points"`
	ReferenceAnswer string       `json:"reference_answer,omitempty"`
}

// Option returns the option with the given id, or nil.
func (q *Question) Option(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		copy(out.Options, q.Options)
	}
	return out
}

// QuestionForStudent is a question without correctness data, sent to exam takers.
type QuestionForStudent struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Type    QuestionType     `json:"type"`
	Options []OptionForTaker `json:"options"`
	Points  int              `json:"points"`
}

// OptionForTaker is an option stripped of its correctness flag.
type OptionForTaker struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UpsertQuestionRequest is the payload for adding or replacing a question.
type UpsertQuestionRequest struct {
	ID              string        `json:"id" binding:"omitempty,max=64"`
	Text            string        `json:"text" binding:"required,min=1,max=2000"`
	Type            QuestionType  `json:"type" binding:"required,questiontype"`
	Options         []OptionInput `json:"options" binding:"omitempty,max=20,dive"`
	Points          int           `json:"points" binding:"min=0,max=1000"`
	ReferenceAnswer string        `json:"reference_answer" binding:"omitempty,max=500"`
}

// OptionInput is an option as submitted by the authoring UI.
type OptionInput struct {
	ID        string `json:"id" binding:"omitempty,max=64"`
	Text      string `json:"text" binding:"max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// ToQuestion converts the request into a Question value.
func (r *UpsertQuestionRequest) ToQuestion() Question {
	q := Question{
		ID:              r.ID,
		Text:            r.Text,
		Type:            r.Type,
		Points:          r.Points,
		ReferenceAnswer: r.ReferenceAnswer,
		Options:         make([]Option, 0, len(r.Options)),
	}
	for _, o := range r.Options {
		q.Options = append(q.Options, Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return q
}
