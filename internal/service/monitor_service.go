package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/model"
)

// MonitorService builds the live view of an exam for admins.
type MonitorService struct {
	store MonitorStore
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(store MonitorStore) *MonitorService {
	return &MonitorService{store: store}
}

// MonitorSnapshot is the state of every attempt at an exam.
type MonitorSnapshot struct {
	ExamID       uuid.UUID           `json:"exam_id"`
	Participants []model.Participant `json:"participants"`
	InProgress   int                 `json:"in_progress"`
	Completed    int                 `json:"completed"`
}

// Snapshot loads participants and their answered counts concurrently and merges them.
func (s *MonitorService) Snapshot(ctx context.Context, examID uuid.UUID) (*MonitorSnapshot, error) {
	var (
		participants []model.Participant
		counts       map[int]int
		listErr      error
		countErr     error
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		participants, listErr = s.store.ListParticipants(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		counts, countErr = s.store.GetAnsweredCounts(ctx, examID)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, fmt.Errorf("list participants: %w", listErr)
	}

	snap := &MonitorSnapshot{ExamID: examID, Participants: participants}
	if snap.Participants == nil {
		snap.Participants = []model.Participant{}
	}
	for i := range snap.Participants {
		p := &snap.Participants[i]
		// Counts are best-effort; a failed count query leaves them at zero.
		if countErr == nil {
			p.AnsweredCount = counts[p.UserID]
		}
		switch p.Status {
		case model.SessionStatusCompleted:
			snap.Completed++
		default:
			snap.InProgress++
		}
	}
	return snap, nil
}
