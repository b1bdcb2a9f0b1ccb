package model

import "strings"

// AnswerKind tags which half of the Answer union is in use.
type AnswerKind string

const (
	AnswerKindSingleSelect AnswerKind = "SINGLE_SELECT"
	AnswerKindFreeText     AnswerKind = "FREE_TEXT"
)

// Answer is the response to one question. Single-select answers carry at most one
// option id; free-text answers carry text. The kind is fixed by the question type.
type Answer struct {
	QuestionID string     `json:"question_id"`
	Kind       AnswerKind `json:"kind"`
	OptionID   string     `json:"option_id,omitempty"`
	Text       string     `json:"text,omitempty"`
}

// NewAnswer returns the empty answer for a question.
func NewAnswer(q *Question) Answer {
	kind := AnswerKindFreeText
	if q.Type.SingleSelect() {
		kind = AnswerKindSingleSelect
	}
	return Answer{QuestionID: q.ID, Kind: kind}
}

// SelectedOptions returns the selected option ids (zero or one).
func (a Answer) SelectedOptions() []string {
	if a.OptionID == "" {
		return []string{}
	}
	return []string{a.OptionID}
}

// IsAnswered is true iff an option is selected or the trimmed text is non-empty.
func (a Answer) IsAnswered() bool {
	return a.OptionID != "" || strings.TrimSpace(a.Text) != ""
}

// AnswerRequest is the payload for answering one question over HTTP.
type AnswerRequest struct {
	OptionID *string `json:"option_id" binding:"omitempty,max=64"`
	Text     *string `json:"text" binding:"omitempty,max=20000"`
}

// NavigateRequest moves the current question pointer.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required"`
}
