package editor

import (
	"strings"

	"github.com/stemsi/examroom/internal/model"
)

// UpsertBankQuestion replaces the bank question with the same id, or appends it.
func UpsertBankQuestion(b *model.QuestionBank, q model.Question) *model.QuestionBank {
	out := b.Clone()
	out.Questions = upsert(out.Questions, q)
	return out
}

// RemoveBankQuestion drops a bank question by id.
func RemoveBankQuestion(b *model.QuestionBank, id string) *model.QuestionBank {
	out := b.Clone()
	out.Questions = remove(out.Questions, id)
	return out
}

// SearchQuestions returns the questions of banks whose text contains search
// (case-insensitive), in bank order. An empty search matches every question.
func SearchQuestions(banks []model.QuestionBank, search string) []model.BankQuestion {
	search = strings.ToLower(strings.TrimSpace(search))

	out := []model.BankQuestion{}
	for _, b := range banks {
		for _, q := range b.Questions {
			if search != "" && !strings.Contains(strings.ToLower(q.Text), search) {
				continue
			}
			out = append(out, model.BankQuestion{
				BankID:   b.ID,
				BankName: b.Name,
				Category: b.Category,
				Question: q.Clone(),
			})
		}
	}
	return out
}
