package editor

import (
	"errors"
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
)

func correctIDs(q model.Question) []string {
	var ids []string
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func TestNewQuestion(t *testing.T) {
	q := NewQuestion()
	if q.ID == "" {
		t.Fatal("expected an id")
	}
	if q.Type != model.QuestionTypeMultipleChoice {
		t.Fatalf("expected multiple-choice, got %s", q.Type)
	}
	if len(q.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(q.Options))
	}
	if q.Points != 1 {
		t.Fatalf("expected 1 point, got %d", q.Points)
	}
}

func TestSetOptionCorrectClearsOthersOnSingleSelect(t *testing.T) {
	q := NewQuestion()
	q = SetOptionCorrect(q, "1", true)
	q = SetOptionCorrect(q, "2", true)

	got := correctIDs(q)
	if len(got) != 1 || got[0] != "2" {
		t.Fatalf("expected only option 2 correct, got %v", got)
	}

	q = SetOptionCorrect(q, "2", false)
	if got := correctIDs(q); len(got) != 0 {
		t.Fatalf("expected no correct option, got %v", got)
	}
}

func TestTransformsDoNotMutateInput(t *testing.T) {
	q := NewQuestion()
	_ = SetOptionCorrect(q, "1", true)
	_ = SetOptionText(q, "1", "changed")
	_ = AddOption(q)

	if q.Options[0].IsCorrect || q.Options[0].Text != "" || len(q.Options) != 2 {
		t.Fatalf("input was mutated: %+v", q.Options)
	}
}

func TestChangeType(t *testing.T) {
	q := SetReferenceAnswer(ChangeType(NewQuestion(), model.QuestionTypeShortAnswer), "object")
	if len(q.Options) != 0 {
		t.Fatalf("short-answer should have no options, got %d", len(q.Options))
	}
	if q.ReferenceAnswer != "object" {
		t.Fatalf("reference answer not set: %q", q.ReferenceAnswer)
	}

	tf := ChangeType(q, model.QuestionTypeTrueFalse)
	if len(tf.Options) != 2 || tf.Options[0].Text != "True" || tf.Options[1].Text != "False" {
		t.Fatalf("unexpected true-false options: %+v", tf.Options)
	}
	if tf.ReferenceAnswer != "" {
		t.Fatalf("reference answer should be cleared, got %q", tf.ReferenceAnswer)
	}

	essay := ChangeType(tf, model.QuestionTypeEssay)
	if len(essay.Options) != 0 {
		t.Fatalf("essay should have no options, got %d", len(essay.Options))
	}
}

func TestAddRemoveOptionOnlyOnMultipleChoice(t *testing.T) {
	q := AddOption(NewQuestion())
	if len(q.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(q.Options))
	}
	q = RemoveOption(q, "1")
	if len(q.Options) != 2 || q.Options[0].ID != "2" {
		t.Fatalf("unexpected options after remove: %+v", q.Options)
	}

	tf := ChangeType(NewQuestion(), model.QuestionTypeTrueFalse)
	if got := len(AddOption(tf).Options); got != 2 {
		t.Fatalf("true-false must keep 2 options, got %d", got)
	}
	if got := len(RemoveOption(tf, "1").Options); got != 2 {
		t.Fatalf("true-false must keep 2 options, got %d", got)
	}
}

func TestSetReferenceAnswerIgnoredOutsideShortAnswer(t *testing.T) {
	q := SetReferenceAnswer(NewQuestion(), "x")
	if q.ReferenceAnswer != "" {
		t.Fatalf("expected no reference answer, got %q", q.ReferenceAnswer)
	}
}

func TestSetPointsClampsNegative(t *testing.T) {
	if got := SetPoints(NewQuestion(), -5).Points; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := SetPoints(NewQuestion(), 7).Points; got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    model.Question
		check func(t *testing.T, q model.Question)
	}{
		{
			name: "multiple-choice keeps first correct only",
			in: model.Question{
				Type: model.QuestionTypeMultipleChoice,
				Options: []model.Option{
					{ID: "a", IsCorrect: true},
					{ID: "b", IsCorrect: true},
				},
			},
			check: func(t *testing.T, q model.Question) {
				if got := correctIDs(q); len(got) != 1 || got[0] != "a" {
					t.Fatalf("expected only a correct, got %v", got)
				}
				if q.ID == "" {
					t.Fatal("expected generated id")
				}
			},
		},
		{
			name: "multiple-choice duplicate option ids are reassigned",
			in: model.Question{
				ID:      "q",
				Type:    model.QuestionTypeMultipleChoice,
				Options: []model.Option{{ID: "a"}, {ID: "a"}, {}},
			},
			check: func(t *testing.T, q model.Question) {
				seen := map[string]bool{}
				for _, o := range q.Options {
					if o.ID == "" || seen[o.ID] {
						t.Fatalf("option ids not unique: %+v", q.Options)
					}
					seen[o.ID] = true
				}
			},
		},
		{
			name: "true-false rebuilt with correct flag by text",
			in: model.Question{
				ID:      "q",
				Type:    model.QuestionTypeTrueFalse,
				Options: []model.Option{{ID: "x", Text: "false", IsCorrect: true}},
			},
			check: func(t *testing.T, q model.Question) {
				if len(q.Options) != 2 {
					t.Fatalf("expected 2 options, got %d", len(q.Options))
				}
				if got := correctIDs(q); len(got) != 1 || got[0] != "2" {
					t.Fatalf("expected False correct, got %v", got)
				}
			},
		},
		{
			name: "true-false with custom options keeps the answer key by position",
			in: model.Question{
				ID:   "q",
				Type: model.QuestionTypeTrueFalse,
				Options: []model.Option{
					{ID: "t", Text: "Yes", IsCorrect: true},
					{ID: "f", Text: "No"},
				},
			},
			check: func(t *testing.T, q model.Question) {
				if got := correctIDs(q); len(got) != 1 || got[0] != "1" {
					t.Fatalf("expected True correct, got %+v", q.Options)
				}
				if err := Validate(SetText(q, "Go is compiled.")); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			},
		},
		{
			name: "true-false fixed ids win over position",
			in: model.Question{
				ID:   "q",
				Type: model.QuestionTypeTrueFalse,
				Options: []model.Option{
					{ID: "2", Text: "Nope", IsCorrect: true},
					{ID: "1", Text: "Yep"},
				},
			},
			check: func(t *testing.T, q model.Question) {
				if got := correctIDs(q); len(got) != 1 || got[0] != "2" {
					t.Fatalf("expected False correct, got %+v", q.Options)
				}
			},
		},
		{
			name: "essay drops options and reference",
			in: model.Question{
				ID:              "q",
				Type:            model.QuestionTypeEssay,
				Options:         []model.Option{{ID: "a"}},
				ReferenceAnswer: "x",
				Points:          -1,
			},
			check: func(t *testing.T, q model.Question) {
				if q.Options == nil || len(q.Options) != 0 {
					t.Fatalf("expected empty options, got %+v", q.Options)
				}
				if q.ReferenceAnswer != "" || q.Points != 0 {
					t.Fatalf("unexpected essay %+v", q)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(NewQuestion()); err == nil {
		t.Fatal("expected error for empty text")
	}
	q := SetText(NewQuestion(), "What?")
	if err := Validate(q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(RemoveOption(q, "1")); err == nil {
		t.Fatal("expected error for single option")
	}

	tf := ChangeType(q, model.QuestionTypeTrueFalse)
	if err := Validate(tf); err == nil {
		t.Fatal("expected error for true-false without a correct option")
	}
	if err := Validate(SetOptionCorrect(tf, "2", true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	both := tf.Clone()
	both.Options[0].IsCorrect, both.Options[1].IsCorrect = true, true
	if err := Validate(both); err == nil {
		t.Fatal("expected error for two correct options")
	}
}

func TestApply(t *testing.T) {
	q, err := ApplyAll(NewQuestion(), []Action{
		{Type: ActionSetText, Text: "Pick one"},
		{Type: ActionAddOption},
		{Type: ActionSetOptionText, OptionID: "1", Text: "A"},
		{Type: ActionSetOptionCorrect, OptionID: "1", Correct: true},
		{Type: ActionSetPoints, Points: 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "Pick one" || len(q.Options) != 3 || q.Points != 4 {
		t.Fatalf("unexpected question %+v", q)
	}
	if got := correctIDs(q); len(got) != 1 || got[0] != "1" {
		t.Fatalf("expected option 1 correct, got %v", got)
	}

	if _, err := Apply(q, Action{Type: "explode"}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := Apply(q, Action{Type: ActionChangeType, Question: "matrix"}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestUpsertAndRemoveQuestion(t *testing.T) {
	exam := demo.JavaScriptFundamentals()

	q := SetText(*exam.Question("1"), "Rewritten")
	updated := UpsertQuestion(exam, q)
	if updated.Question("1").Text != "Rewritten" {
		t.Fatal("expected question 1 replaced")
	}
	if exam.Question("1").Text == "Rewritten" {
		t.Fatal("original exam mutated")
	}
	if len(updated.Questions) != len(exam.Questions) {
		t.Fatalf("replace changed count: %d", len(updated.Questions))
	}

	added := UpsertQuestion(exam, SetText(NewQuestion(), "New"))
	if len(added.Questions) != len(exam.Questions)+1 {
		t.Fatalf("expected append, got %d questions", len(added.Questions))
	}

	removed := RemoveQuestion(exam, "3")
	if len(removed.Questions) != len(exam.Questions)-1 || removed.Question("3") != nil {
		t.Fatal("expected question 3 removed")
	}
	if exam.Question("3") == nil {
		t.Fatal("original exam mutated")
	}
}

func TestDuplicate(t *testing.T) {
	exam := demo.JavaScriptFundamentals()
	dup := Duplicate(exam)

	if dup.ID == exam.ID {
		t.Fatal("expected new id")
	}
	if dup.Title != exam.Title+" (Copy)" {
		t.Fatalf("unexpected title %q", dup.Title)
	}
	if dup.Status != model.ExamStatusDraft {
		t.Fatalf("expected draft, got %s", dup.Status)
	}
	dup.Questions[0].Text = "changed"
	if exam.Questions[0].Text == "changed" {
		t.Fatal("duplicate shares questions with the source")
	}
}

func TestFilter(t *testing.T) {
	exams := []model.ExamSummary{
		{Title: "JavaScript Fundamentals", Status: model.ExamStatusPublished},
		{Title: "React Hooks", Description: "useState and friends", Status: model.ExamStatusDraft},
		{Title: "CSS Grid", Status: model.ExamStatusExpired},
	}

	tests := []struct {
		search, status string
		want           int
	}{
		{"", "", 3},
		{"", "all", 3},
		{"script", "", 1},
		{"USESTATE", "", 1},
		{"", "draft", 1},
		{"react", "published", 0},
		{"nothing", "all", 0},
	}
	for _, tt := range tests {
		if got := len(Filter(exams, tt.search, tt.status)); got != tt.want {
			t.Errorf("Filter(%q, %q) = %d, want %d", tt.search, tt.status, got, tt.want)
		}
	}
}
