// Package demo provides the sample accounts, exam and question banks loaded by cmd/seed-demo.
package demo

import (
	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/model"
)

// ExamID is the fixed identifier of the sample exam.
var ExamID = uuid.MustParse("6f1c2b1e-7c1a-4c55-9a53-0f6f3d1d2a01")

// Account is a sample login.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole
}

// Accounts returns the sample admin and student logins.
func Accounts() []Account {
	return []Account{
		{Name: "Admin User", Email: "admin@example.com", Password: "password123", Role: model.RoleAdmin},
		{Name: "Student User", Email: "student@example.com", Password: "password123", Role: model.RoleStudent},
	}
}

// JavaScriptFundamentals returns a published five-question exam with a
// 60 minute limit covering every question type.
func JavaScriptFundamentals() *model.Exam {
	return &model.Exam{
		ID:               ExamID,
		Title:            "JavaScript Fundamentals",
		Description:      "Test your knowledge of JavaScript core concepts.",
		TimeLimitMinutes: 60,
		PassingScore:     model.DefaultPassingScore,
		ShowResults:      true,
		Status:           model.ExamStatusPublished,
		Questions: []model.Question{
			{
				ID:   "1",
				Text: "Which of the following is NOT a primitive data type in JavaScript?",
				Type: model.QuestionTypeMultipleChoice,
				Options: []model.Option{
					{ID: "1", Text: "String"},
					{ID: "2", Text: "Number"},
					{ID: "3", Text: "Object", IsCorrect: true},
					{ID: "4", Text: "Boolean"},
				},
				Points: 2,
			},
			{
				ID:   "2",
				Text: "JavaScript is a synchronous programming language.",
				Type: model.QuestionTypeTrueFalse,
				Options: []model.Option{
					{ID: "1", Text: "True"},
					{ID: "2", Text: "False", IsCorrect: true},
				},
				Points: 1,
			},
			{
				ID:   "3",
				Text: "What does the === operator do in JavaScript?",
				Type: model.QuestionTypeMultipleChoice,
				Options: []model.Option{
					{ID: "1", Text: "Assigns a value"},
					{ID: "2", Text: "Compares value only"},
					{ID: "3", Text: "Compares value and type", IsCorrect: true},
					{ID: "4", Text: "Logical OR operation"},
				},
				Points: 2,
			},
			{
				ID:              "4",
				Text:            "What is the output of: console.log(typeof [])?",
				Type:            model.QuestionTypeShortAnswer,
				Options:         []model.Option{},
				Points:          3,
				ReferenceAnswer: "object",
			},
			{
				ID:      "5",
				Text:    "Explain the concept of closures in JavaScript and provide an example.",
				Type:    model.QuestionTypeEssay,
				Options: []model.Option{},
				Points:  5,
			},
		},
	}
}

// BankID is the fixed identifier of the sample JavaScript question bank.
var BankID = uuid.MustParse("6f1c2b1e-7c1a-4c55-9a53-0f6f3d1d2b01")

// QuestionBanks returns the sample banks: the questions of the sample exam
// under "JavaScript" and a one-question "HTML & CSS" bank.
func QuestionBanks() []*model.QuestionBank {
	return []*model.QuestionBank{
		{
			ID:          BankID,
			Name:        "JavaScript Basics",
			Category:    "JavaScript",
			Description: "Core language questions.",
			Questions:   JavaScriptFundamentals().Questions,
		},
		{
			ID:       uuid.MustParse("6f1c2b1e-7c1a-4c55-9a53-0f6f3d1d2b02"),
			Name:     "Markup Essentials",
			Category: "HTML & CSS",
			Questions: []model.Question{
				{
					ID:   "html1",
					Text: "Which element holds the visible content of a page?",
					Type: model.QuestionTypeMultipleChoice,
					Options: []model.Option{
						{ID: "1", Text: "<head>"},
						{ID: "2", Text: "<body>", IsCorrect: true},
						{ID: "3", Text: "<meta>"},
					},
					Points: 1,
				},
			},
		},
	}
}
