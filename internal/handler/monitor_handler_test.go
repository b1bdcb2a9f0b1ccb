package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/service"
)

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestMonitorStreamsSnapshotAndActivity(t *testing.T) {
	env := newTestEnv(t)
	env.monitor.Participants = []model.Participant{
		{UserID: env.studentID, Name: "Student", Status: model.SessionStatusInProgress},
	}
	env.monitor.Counts = map[int]int{env.studentID: 3}

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+adminExamPath+"/monitor", nil)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}
	r := bufio.NewReader(resp.Body)

	snap := readEvent(t, r)
	if snap.name != "snapshot" {
		t.Fatalf("first event = %q", snap.name)
	}
	var payload struct {
		Stats struct {
			TotalJoined     int `json:"total_joined"`
			TotalInProgress int `json:"total_in_progress"`
		} `json:"stats"`
		Participants []model.Participant `json:"participants"`
	}
	if err := json.Unmarshal([]byte(snap.data), &payload); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if payload.Stats.TotalJoined != 1 || payload.Participants[0].AnsweredCount != 3 {
		t.Fatalf("unexpected snapshot: %+v", payload)
	}

	channel := config.CacheKey.ExamMonitorChannel(demo.ExamID.String())
	_ = env.cache.Publish(ctx, channel, service.MonitorEvent{
		Type: "answered", ExamID: demo.ExamID, UserID: env.studentID, AnsweredCount: 4,
	})

	activity := readEvent(t, r)
	if activity.name != "activity" {
		t.Fatalf("second event = %q", activity.name)
	}
	var ev service.MonitorEvent
	if err := json.Unmarshal([]byte(activity.data), &ev); err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	if ev.Type != "answered" || ev.AnsweredCount != 4 {
		t.Fatalf("unexpected activity: %+v", ev)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for env.cache.Subscribers(channel) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not released after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMonitorUnknownExam(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/admin/exams/00000000-0000-0000-0000-000000000001/monitor", env.adminToken, nil)
	expectStatus(t, w, http.StatusNotFound)
	if body.Error == nil {
		t.Fatal("expected error body")
	}
}
