// Package grading turns the final answers of a session into a scored result.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/session"
)

var (
	ErrQuestionNotFound = errors.New("question not found in result")
	ErrNotEssay         = errors.New("only essay questions are graded manually")
)

// Grade scores every question of def against the answers in r.
//
// Single-select questions are correct when the selected option is flagged correct.
// Short-answer questions compare trimmed, case-insensitive text with the reference
// answer. Essays stay pending with zero points until ApplyManualGrade is called.
func Grade(def *model.Exam, r session.Result, passingScore int) *model.ExamResult {
	answers := make(map[string]model.Answer, len(r.Answers))
	for _, a := range r.Answers {
		answers[a.QuestionID] = a
	}

	res := &model.ExamResult{
		SessionID:        r.SessionID,
		ExamID:           def.ID,
		ExamTitle:        def.Title,
		SubmittedAt:      r.SubmittedAt,
		AutoSubmitted:    r.AutoSubmitted,
		ElapsedSeconds:   r.ElapsedSeconds,
		RemainingSeconds: r.RemainingSeconds,
		TimeSpent:        FormatDuration(r.ElapsedSeconds),
		TotalQuestions:   len(def.Questions),
		PassingScore:     passingScore,
		Questions:        make([]model.QuestionResult, 0, len(def.Questions)),
		Answers:          r.Answers,
	}

	for i := range def.Questions {
		q := &def.Questions[i]
		res.Questions = append(res.Questions, gradeQuestion(q, answers[q.ID]))
	}
	recompute(res)
	return res
}

func gradeQuestion(q *model.Question, a model.Answer) model.QuestionResult {
	qr := model.QuestionResult{
		QuestionID: q.ID,
		Text:       q.Text,
		Type:       q.Type,
		Points:     q.Points,
	}

	var correct bool
	switch q.Type {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		if o := q.Option(a.OptionID); o != nil {
			qr.UserAnswer = o.Text
			correct = o.IsCorrect
		}
		for _, o := range q.Options {
			if o.IsCorrect {
				qr.CorrectAnswer = o.Text
				break
			}
		}
	case model.QuestionTypeShortAnswer:
		qr.UserAnswer = a.Text
		qr.CorrectAnswer = q.ReferenceAnswer
		correct = strings.TrimSpace(q.ReferenceAnswer) != "" &&
			strings.EqualFold(strings.TrimSpace(a.Text), strings.TrimSpace(q.ReferenceAnswer))
	case model.QuestionTypeEssay:
		qr.UserAnswer = a.Text
		qr.Pending = true
		return qr
	}

	qr.IsCorrect = &correct
	if correct {
		qr.EarnedPoints = q.Points
	}
	return qr
}

// ApplyManualGrade records a hand-assigned score for an essay question and
// recomputes the totals. Points are clamped to [0, question points].
func ApplyManualGrade(res *model.ExamResult, questionID string, points int, feedback string) error {
	for i := range res.Questions {
		qr := &res.Questions[i]
		if qr.QuestionID != questionID {
			continue
		}
		if qr.Type != model.QuestionTypeEssay {
			return fmt.Errorf("%w: %s is %s", ErrNotEssay, questionID, qr.Type)
		}
		qr.EarnedPoints = min(max(points, 0), qr.Points)
		qr.Pending = false
		qr.Feedback = feedback
		correct := qr.EarnedPoints > 0
		qr.IsCorrect = &correct
		recompute(res)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
}

func recompute(res *model.ExamResult) {
	res.CorrectAnswers, res.IncorrectAnswers, res.PendingAnswers = 0, 0, 0
	res.TotalPoints, res.EarnedPoints = 0, 0

	for _, qr := range res.Questions {
		res.TotalPoints += qr.Points
		res.EarnedPoints += qr.EarnedPoints
		switch {
		case qr.Pending:
			res.PendingAnswers++
		case qr.IsCorrect != nil && *qr.IsCorrect:
			res.CorrectAnswers++
		default:
			res.IncorrectAnswers++
		}
	}

	res.Score = 0
	if res.TotalPoints > 0 {
		res.Score = math.Round(float64(res.EarnedPoints)/float64(res.TotalPoints)*10000) / 100
	}
	res.Passed = res.Score >= float64(res.PassingScore)
}

// FormatDuration renders whole seconds as mm:ss. Minutes are not capped at 59.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
