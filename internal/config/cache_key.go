package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LoginKey holds the JTI of a user's current login.
func (r *CacheKeyStruct) LoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// SessionStartKey holds the RFC3339 start time of a user's attempt.
func (r *CacheKeyStruct) SessionStartKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:session_start", userID, examID)
}

// SessionIDKey holds the id of a user's attempt.
func (r *CacheKeyStruct) SessionIDKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:session_id", userID, examID)
}

// QuestionOrderKey holds the JSON question order of a user's attempt.
func (r *CacheKeyStruct) QuestionOrderKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:question_order", userID, examID)
}

// AnswersKey is a hash of question id to JSON answer.
func (r *CacheKeyStruct) AnswersKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:answers", userID, examID)
}

// CursorKey holds the current question index of a user's attempt.
func (r *CacheKeyStruct) CursorKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:cursor", userID, examID)
}

// ResultKey holds the graded result of a submitted attempt.
func (r *CacheKeyStruct) ResultKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:result", userID, examID)
}

// ExamDefinitionKey holds the full exam definition, correct answers included.
func (r *CacheKeyStruct) ExamDefinitionKey(examID string) string {
	return fmt.Sprintf("exam:%s:definition", examID)
}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam monitor
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
