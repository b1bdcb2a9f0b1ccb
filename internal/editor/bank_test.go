package editor

import (
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
)

func TestBankUpsertAndRemove(t *testing.T) {
	b := demo.QuestionBanks()[0]

	q := NewQuestion()
	q.Text = "What does NaN stand for?"
	got := UpsertBankQuestion(b, q)
	if len(got.Questions) != 6 || len(b.Questions) != 5 {
		t.Fatalf("upsert must copy: %d / %d", len(got.Questions), len(b.Questions))
	}

	q.Text = "What does NaN mean?"
	got = UpsertBankQuestion(got, q)
	if len(got.Questions) != 6 || got.Question(q.ID).Text != q.Text {
		t.Fatal("upsert did not replace in place")
	}

	got = RemoveBankQuestion(got, "1")
	if len(got.Questions) != 5 || got.Question("1") != nil {
		t.Fatal("question not removed")
	}
}

func TestSearchQuestions(t *testing.T) {
	banks := make([]model.QuestionBank, 0, 2)
	for _, b := range demo.QuestionBanks() {
		banks = append(banks, *b)
	}

	if got := SearchQuestions(banks, ""); len(got) != 6 {
		t.Fatalf("empty search: %d hits", len(got))
	}

	got := SearchQuestions(banks, "  JAVASCRIPT ")
	if len(got) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(got))
	}
	for _, h := range got {
		if h.BankID != demo.BankID || h.Category != "JavaScript" {
			t.Fatalf("unexpected hit: %+v", h)
		}
	}

	got[0].Question.Options[0].Text = "changed"
	if banks[0].Questions[0].Options[0].Text == "changed" {
		t.Fatal("hits must not alias bank questions")
	}

	if got := SearchQuestions(banks, "no such text"); got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %v", got)
	}
}
