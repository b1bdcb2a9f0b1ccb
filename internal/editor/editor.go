// Package editor implements the authoring operations on questions and exams.
// Every function is a pure transform: it returns a new value and never mutates
// its input.
package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/model"
)

// NewID returns a short random identifier for questions and options.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// NewQuestion returns a blank multiple-choice question with two empty options.
func NewQuestion() model.Question {
	return model.Question{
		ID:   NewID(),
		Type: model.QuestionTypeMultipleChoice,
		Options: []model.Option{
			{ID: "1"},
			{ID: "2"},
		},
		Points: 1,
	}
}

func trueFalseOptions() []model.Option {
	return []model.Option{
		{ID: "1", Text: "True"},
		{ID: "2", Text: "False"},
	}
}

// SetText replaces the prompt.
func SetText(q model.Question, text string) model.Question {
	out := q.Clone()
	out.Text = text
	return out
}

// SetPoints sets the point value; negative values become zero.
func SetPoints(q model.Question, points int) model.Question {
	out := q.Clone()
	out.Points = max(points, 0)
	return out
}

// ChangeType switches the question type. True-false gets its two fixed options,
// short-answer and essay lose all options, multiple-choice keeps what it has.
func ChangeType(q model.Question, t model.QuestionType) model.Question {
	out := q.Clone()
	out.Type = t
	switch t {
	case model.QuestionTypeTrueFalse:
		out.Options = trueFalseOptions()
	case model.QuestionTypeShortAnswer, model.QuestionTypeEssay:
		out.Options = []model.Option{}
	}
	if t != model.QuestionTypeShortAnswer {
		out.ReferenceAnswer = ""
	}
	return out
}

// SetOptionCorrect flags one option. On single-select questions marking an
// option correct clears the flag on every other option.
func SetOptionCorrect(q model.Question, optionID string, correct bool) model.Question {
	out := q.Clone()
	for i := range out.Options {
		switch {
		case out.Options[i].ID == optionID:
			out.Options[i].IsCorrect = correct
		case out.Type.SingleSelect():
			out.Options[i].IsCorrect = false
		}
	}
	return out
}

// SetOptionText replaces the text of one option.
func SetOptionText(q model.Question, optionID, text string) model.Question {
	out := q.Clone()
	for i := range out.Options {
		if out.Options[i].ID == optionID {
			out.Options[i].Text = text
		}
	}
	return out
}

// AddOption appends an empty option. Only multiple-choice questions grow.
func AddOption(q model.Question) model.Question {
	out := q.Clone()
	if out.Type != model.QuestionTypeMultipleChoice {
		return out
	}
	out.Options = append(out.Options, model.Option{ID: NewID()})
	return out
}

// RemoveOption drops an option from a multiple-choice question.
func RemoveOption(q model.Question, optionID string) model.Question {
	out := q.Clone()
	if out.Type != model.QuestionTypeMultipleChoice {
		return out
	}
	kept := make([]model.Option, 0, len(out.Options))
	for _, o := range out.Options {
		if o.ID != optionID {
			kept = append(kept, o)
		}
	}
	out.Options = kept
	return out
}

// SetReferenceAnswer sets the expected answer of a short-answer question.
func SetReferenceAnswer(q model.Question, answer string) model.Question {
	out := q.Clone()
	if out.Type == model.QuestionTypeShortAnswer {
		out.ReferenceAnswer = answer
	}
	return out
}

// Normalize enforces the shape rules of a question before it is stored: an id,
// a non-negative point value, the fixed true-false options, no options on text
// questions, unique option ids, and at most one correct option.
func Normalize(q model.Question) model.Question {
	out := q.Clone()
	if out.ID == "" {
		out.ID = NewID()
	}
	out.Points = max(out.Points, 0)

	switch out.Type {
	case model.QuestionTypeTrueFalse:
		correct := trueFalseCorrect(out.Options)
		out.Options = trueFalseOptions()
		if correct >= 0 {
			out.Options[correct].IsCorrect = true
		}
	case model.QuestionTypeShortAnswer, model.QuestionTypeEssay:
		out.Options = []model.Option{}
	case model.QuestionTypeMultipleChoice:
		seen := make(map[string]bool, len(out.Options))
		hasCorrect := false
		for i := range out.Options {
			o := &out.Options[i]
			if o.ID == "" || seen[o.ID] {
				o.ID = NewID()
			}
			seen[o.ID] = true
			if o.IsCorrect {
				if hasCorrect {
					o.IsCorrect = false
				}
				hasCorrect = true
			}
		}
	}
	if out.Type != model.QuestionTypeShortAnswer {
		out.ReferenceAnswer = ""
	}
	if out.Options == nil {
		out.Options = []model.Option{}
	}
	return out
}

// trueFalseCorrect maps the first flagged option onto the fixed true-false
// options and returns its index there, or -1. The option text decides first,
// then the fixed ids "1"/"2", then the option's position.
func trueFalseCorrect(opts []model.Option) int {
	for i, o := range opts {
		if !o.IsCorrect {
			continue
		}
		switch {
		case strings.EqualFold(strings.TrimSpace(o.Text), "true"):
			return 0
		case strings.EqualFold(strings.TrimSpace(o.Text), "false"):
			return 1
		case o.ID == "1":
			return 0
		case o.ID == "2":
			return 1
		case i < 2:
			return i
		}
		return -1
	}
	return -1
}

// Validate reports problems that would make a question unusable in an exam.
func Validate(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: text is required", q.ID)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	if q.Type == model.QuestionTypeMultipleChoice && len(q.Options) < 2 {
		return fmt.Errorf("question %s: multiple-choice needs at least two options", q.ID)
	}
	if q.Type == model.QuestionTypeTrueFalse {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if len(q.Options) != 2 || correct != 1 {
			return fmt.Errorf("question %s: true-false needs exactly one correct option", q.ID)
		}
	}
	return nil
}
