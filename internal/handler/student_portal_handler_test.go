package handler

import (
	"net/http"
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
	"github.com/stemsi/examroom/internal/session"
)

var examPath = "/student/exams/" + demo.ExamID.String()

func TestStudentExamFlow(t *testing.T) {
	env := newTestEnv(t)
	tok := env.studentToken

	w, body := env.do(t, http.MethodGet, examPath+"/state", tok, nil)
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, body, response.ErrSessionNotStarted)

	w, body = env.do(t, http.MethodPost, examPath+"/start", tok, nil)
	expectStatus(t, w, http.StatusOK)
	var attempt service.Attempt
	decode(t, body.Data, &attempt)
	if attempt.State.State != session.StateActive || len(attempt.Paper.Questions) != 5 {
		t.Fatalf("unexpected attempt: %+v", attempt.State)
	}
	for _, q := range attempt.Paper.Questions {
		if q.ID == "4" && len(q.Options) != 0 {
			t.Fatal("short answer should have no options")
		}
	}

	// Option answer.
	w, body = env.do(t, http.MethodPut, examPath+"/answers/1", tok, map[string]any{"option_id": "3"})
	expectStatus(t, w, http.StatusOK)
	var state session.Snapshot
	decode(t, body.Data, &state)
	if !state.Answered["1"] || state.AnsweredCount != 1 {
		t.Fatalf("answer not recorded: %+v", state)
	}

	// Text answer.
	w, _ = env.do(t, http.MethodPut, examPath+"/answers/4", tok, map[string]any{"text": " Object "})
	expectStatus(t, w, http.StatusOK)

	// Text for an option question does not fit.
	w, body = env.do(t, http.MethodPut, examPath+"/answers/1", tok, map[string]any{"text": "nope"})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	expectCode(t, body, response.ErrAnswerRejected)

	w, body = env.do(t, http.MethodPut, examPath+"/answers/99", tok, map[string]any{"option_id": "1"})
	expectStatus(t, w, http.StatusNotFound)
	expectCode(t, body, response.ErrQuestionNotFound)

	w, body = env.do(t, http.MethodPut, examPath+"/answers/1", tok, map[string]any{})
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrValidation)

	w, body = env.do(t, http.MethodPost, examPath+"/navigate", tok, map[string]any{"index": 10})
	expectStatus(t, w, http.StatusOK)
	decode(t, body.Data, &state)
	if state.CurrentIndex != 4 {
		t.Fatalf("index = %d, want clamped 4", state.CurrentIndex)
	}

	w, body = env.do(t, http.MethodPost, examPath+"/navigate", tok, map[string]any{})
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrValidation)

	w, body = env.do(t, http.MethodGet, examPath+"/paper", tok, nil)
	expectStatus(t, w, http.StatusOK)
	var paper model.ExamPaper
	decode(t, body.Data, &paper)
	if paper.ExamID != demo.ExamID {
		t.Fatalf("unexpected paper: %+v", paper)
	}

	w, body = env.do(t, http.MethodPost, examPath+"/submit", tok, nil)
	expectStatus(t, w, http.StatusOK)
	var submitted struct {
		Result model.ExamResult `json:"result"`
	}
	decode(t, body.Data, &submitted)
	if submitted.Result.EarnedPoints != 5 || submitted.Result.TotalPoints != 13 || submitted.Result.PendingAnswers != 1 {
		t.Fatalf("unexpected result: earned=%d total=%d pending=%d",
			submitted.Result.EarnedPoints, submitted.Result.TotalPoints, submitted.Result.PendingAnswers)
	}

	w, body = env.do(t, http.MethodGet, examPath+"/result", tok, nil)
	expectStatus(t, w, http.StatusOK)

	w, body = env.do(t, http.MethodPut, examPath+"/answers/2", tok, map[string]any{"option_id": "2"})
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, body, response.ErrSessionCompleted)
}

func TestStudentLobby(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/student/lobby", env.studentToken, nil)
	expectStatus(t, w, http.StatusOK)
	var lobby struct {
		Exams []service.LobbyExam `json:"exams"`
	}
	decode(t, body.Data, &lobby)
	if len(lobby.Exams) != 1 || lobby.Exams[0].LobbyStatus != service.LobbyStatusAvailable {
		t.Fatalf("unexpected lobby: %+v", lobby.Exams)
	}

	env.do(t, http.MethodPost, examPath+"/start", env.studentToken, nil)
	_, body = env.do(t, http.MethodGet, "/student/lobby", env.studentToken, nil)
	decode(t, body.Data, &lobby)
	if lobby.Exams[0].LobbyStatus != service.LobbyStatusInProgress {
		t.Fatalf("status = %s", lobby.Exams[0].LobbyStatus)
	}

	w, body = env.do(t, http.MethodGet, "/student/results", env.studentToken, nil)
	expectStatus(t, w, http.StatusOK)
	var history struct {
		Results []service.ResultOverview `json:"results"`
	}
	decode(t, body.Data, &history)
	if len(history.Results) != 0 {
		t.Fatalf("in-progress attempts are not results: %+v", history.Results)
	}
}

func TestStudentRoutesRejectAdmins(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/student/lobby", env.adminToken, nil)
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, body, response.ErrStudentAccessOnly)
}

func TestStartUnknownExam(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/student/exams/not-a-uuid/start", env.studentToken, nil)
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrInvalidID)

	w, body = env.do(t, http.MethodPost, "/student/exams/00000000-0000-0000-0000-000000000001/start", env.studentToken, nil)
	expectStatus(t, w, http.StatusNotFound)
	expectCode(t, body, response.ErrExamNotFound)
}
