package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/storetest"
)

func TestMonitorSnapshotMergesCounts(t *testing.T) {
	score := 80.0
	store := &storetest.Monitor{
		Participants: []model.Participant{
			{UserID: 1, Name: "Ada", Status: model.SessionStatusInProgress},
			{UserID: 2, Name: "Brian", Status: model.SessionStatusCompleted, Score: &score},
			{UserID: 3, Name: "Chen", Status: model.SessionStatusInProgress},
		},
		Counts: map[int]int{1: 2, 2: 5},
	}

	snap, err := NewMonitorService(store).Snapshot(context.Background(), demo.ExamID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.InProgress != 2 || snap.Completed != 1 {
		t.Fatalf("in_progress=%d completed=%d", snap.InProgress, snap.Completed)
	}
	want := map[int]int{1: 2, 2: 5, 3: 0}
	for _, p := range snap.Participants {
		if p.AnsweredCount != want[p.UserID] {
			t.Fatalf("user %d answered = %d, want %d", p.UserID, p.AnsweredCount, want[p.UserID])
		}
	}
}

func TestMonitorSnapshotToleratesCountFailure(t *testing.T) {
	store := &storetest.Monitor{
		Participants: []model.Participant{{UserID: 1, Status: model.SessionStatusInProgress}},
		CountErr:     errors.New("boom"),
	}

	snap, err := NewMonitorService(store).Snapshot(context.Background(), demo.ExamID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Participants) != 1 || snap.Participants[0].AnsweredCount != 0 {
		t.Fatalf("unexpected participants: %+v", snap.Participants)
	}
}

func TestMonitorSnapshotEmpty(t *testing.T) {
	snap, err := NewMonitorService(&storetest.Monitor{}).Snapshot(context.Background(), demo.ExamID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Participants == nil {
		t.Fatal("participants should encode as an empty list")
	}
}
