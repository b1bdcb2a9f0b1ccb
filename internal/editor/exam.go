package editor

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/model"
)

// UpsertQuestion replaces the question with the same id, or appends it.
func UpsertQuestion(e *model.Exam, q model.Question) *model.Exam {
	out := e.Clone()
	out.Questions = upsert(out.Questions, q)
	return out
}

// RemoveQuestion drops a question by id.
func RemoveQuestion(e *model.Exam, id string) *model.Exam {
	out := e.Clone()
	out.Questions = remove(out.Questions, id)
	return out
}

// upsert and remove work in place on a slice the caller owns.
func upsert(qs []model.Question, q model.Question) []model.Question {
	for i := range qs {
		if qs[i].ID == q.ID {
			qs[i] = q.Clone()
			return qs
		}
	}
	return append(qs, q.Clone())
}

func remove(qs []model.Question, id string) []model.Question {
	kept := qs[:0]
	for _, q := range qs {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	return kept
}

// Duplicate copies an exam into a new draft titled "<title> (Copy)".
func Duplicate(e *model.Exam) *model.Exam {
	out := e.Clone()
	out.ID = uuid.New()
	out.Title = e.Title + " (Copy)"
	out.Status = model.ExamStatusDraft
	return out
}

// Filter keeps exams whose title or description contains search
// (case-insensitive) and whose status matches ("" or "all" matches any).
func Filter(exams []model.ExamSummary, search, status string) []model.ExamSummary {
	search = strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)

	out := make([]model.ExamSummary, 0, len(exams))
	for _, e := range exams {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		if status != "" && !strings.EqualFold(status, "all") && !strings.EqualFold(status, string(e.Status)) {
			continue
		}
		out = append(out, e)
	}
	return out
}
