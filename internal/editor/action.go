package editor

import (
	"errors"
	"fmt"

	"github.com/stemsi/examroom/internal/model"
)

// ActionType names one editing step.
type ActionType string

const (
	ActionSetText            ActionType = "set_text"
	ActionChangeType         ActionType = "change_type"
	ActionSetPoints          ActionType = "set_points"
	ActionAddOption          ActionType = "add_option"
	ActionRemoveOption       ActionType = "remove_option"
	ActionSetOptionText      ActionType = "set_option_text"
	ActionSetOptionCorrect   ActionType = "set_option_correct"
	ActionSetReferenceAnswer ActionType = "set_reference_answer"
)

// ErrUnknownAction is returned by Apply for an unrecognised action type.
var ErrUnknownAction = errors.New("unknown editor action")

// Action is a JSON-describable editing step.
type Action struct {
	Type     ActionType         `json:"type" binding:"required"`
	Text     string             `json:"text"`
	Question model.QuestionType `json:"question_type"`
	Points   int                `json:"points"`
	OptionID string             `json:"option_id"`
	Correct  bool               `json:"correct"`
}

// Apply runs one action against q.
func Apply(q model.Question, a Action) (model.Question, error) {
	switch a.Type {
	case ActionSetText:
		return SetText(q, a.Text), nil
	case ActionChangeType:
		if !a.Question.Valid() {
			return q, fmt.Errorf("change type to %q: %w", a.Question, ErrUnknownAction)
		}
		return ChangeType(q, a.Question), nil
	case ActionSetPoints:
		return SetPoints(q, a.Points), nil
	case ActionAddOption:
		return AddOption(q), nil
	case ActionRemoveOption:
		return RemoveOption(q, a.OptionID), nil
	case ActionSetOptionText:
		return SetOptionText(q, a.OptionID, a.Text), nil
	case ActionSetOptionCorrect:
		return SetOptionCorrect(q, a.OptionID, a.Correct), nil
	case ActionSetReferenceAnswer:
		return SetReferenceAnswer(q, a.Text), nil
	default:
		return q, fmt.Errorf("%w: %s", ErrUnknownAction, a.Type)
	}
}

// ApplyAll runs actions in order, stopping at the first error.
func ApplyAll(q model.Question, actions []Action) (model.Question, error) {
	var err error
	for _, a := range actions {
		if q, err = Apply(q, a); err != nil {
			return q, err
		}
	}
	return q, nil
}

// EditQuestionRequest is the payload of the stateless editor endpoint.
// A nil question starts from NewQuestion.
type EditQuestionRequest struct {
	Question *model.Question `json:"question"`
	Actions  []Action        `json:"actions" binding:"dive"`
}
