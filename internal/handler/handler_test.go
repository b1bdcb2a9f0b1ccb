package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/middleware"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
	"github.com/stemsi/examroom/internal/storetest"
	"github.com/stemsi/examroom/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// testEnv wires the real services onto in-memory stores behind the same
// middleware chains the router uses.
type testEnv struct {
	router   *gin.Engine
	auth     *service.AuthService
	exams    *service.ExamService
	sessions *service.ExamSessionService
	cache     *storetest.Cache
	monitor   *storetest.Monitor
	dashboard *storetest.Dashboard

	adminToken   string
	studentToken string
	studentID    int

	ws       *WSHandler
	monitorH *MonitorHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	cfg := &config.Config{JWTSecret: "handler-test", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}

	env := &testEnv{cache: storetest.NewCache(), monitor: &storetest.Monitor{}, dashboard: &storetest.Dashboard{}}
	env.auth = service.NewAuthService(cfg, storetest.NewUsers(), env.cache, log)
	env.exams = service.NewExamService(storetest.NewExams(demo.JavaScriptFundamentals()), env.cache, log)
	env.sessions = service.NewExamSessionService(env.exams, storetest.NewSessions(), env.cache, time.Hour, log)
	t.Cleanup(env.sessions.Shutdown)

	ctx := context.Background()
	admin, err := env.auth.Register(ctx, &model.RegisterRequest{
		Name: "Admin", Email: "admin@example.com", Password: "password123", ConfirmPassword: "password123", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	student, err := env.auth.Register(ctx, &model.RegisterRequest{
		Name: "Student", Email: "student@example.com", Password: "password123", ConfirmPassword: "password123", Role: model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("register student: %v", err)
	}
	env.adminToken = admin.Token
	env.studentToken = student.Token
	env.studentID = student.User.ID

	authH := NewAuthHandler(env.auth)
	examH := NewExamHandler(env.exams, env.sessions)
	questionH := NewQuestionHandler(env.exams)
	bankH := NewQuestionBankHandler(service.NewQuestionBankService(storetest.NewQuestionBanks(demo.QuestionBanks()...), env.exams, log))
	dashboardH := NewDashboardHandler(service.NewDashboardService(env.dashboard, env.sessions))
	portalH := NewStudentPortalHandler(env.sessions)
	env.ws = NewWSHandler(env.sessions, 20*time.Millisecond, log, nil)
	env.monitorH = NewMonitorHandler(env.cache, env.exams, service.NewMonitorService(env.monitor), log)
	systemH := NewSystemHandler(env.cache, env.sessions, log)

	r := gin.New()
	r.GET("/health", systemH.Health)
	r.POST("/auth/register", authH.Register)
	r.POST("/auth/login", authH.Login)
	authed := r.Group("/auth", middleware.Authenticate(env.auth), middleware.CheckSingleDeviceSession(env.auth))
	authed.POST("/logout", authH.Logout)
	authed.GET("/me", authH.Me)

	studentGroup := r.Group("/student",
		middleware.Authenticate(env.auth),
		middleware.RequireRole(model.RoleStudent),
		middleware.CheckSingleDeviceSession(env.auth))
	studentGroup.GET("/lobby", portalH.GetLobby)
	studentGroup.GET("/results", portalH.GetResults)
	studentGroup.POST("/exams/:exam_id/start", portalH.StartExam)
	studentGroup.GET("/exams/:exam_id/paper", portalH.GetExamPaper)
	studentGroup.GET("/exams/:exam_id/state", portalH.GetExamState)
	studentGroup.PUT("/exams/:exam_id/answers/:question_id", portalH.SaveAnswer)
	studentGroup.POST("/exams/:exam_id/navigate", portalH.Navigate)
	studentGroup.POST("/exams/:exam_id/submit", portalH.SubmitExam)
	studentGroup.GET("/exams/:exam_id/result", portalH.GetResult)
	studentGroup.GET("/exams/:exam_id/stream", env.ws.ExamWebSocketStream)

	adminGroup := r.Group("/admin", middleware.Authenticate(env.auth), middleware.RequireRole(model.RoleAdmin))
	adminGroup.GET("/dashboard", dashboardH.GetDashboardData)
	adminGroup.GET("/exams", examH.ListExams)
	adminGroup.POST("/exams", examH.CreateExam)
	adminGroup.GET("/exams/:exam_id", examH.GetExam)
	adminGroup.PUT("/exams/:exam_id", examH.UpdateExam)
	adminGroup.DELETE("/exams/:exam_id", examH.DeleteExam)
	adminGroup.POST("/exams/:exam_id/publish", examH.PublishExam)
	adminGroup.POST("/exams/:exam_id/expire", examH.ExpireExam)
	adminGroup.POST("/exams/:exam_id/duplicate", examH.DuplicateExam)
	adminGroup.GET("/exams/:exam_id/questions", questionH.ListQuestions)
	adminGroup.PUT("/exams/:exam_id/questions", questionH.UpsertQuestion)
	adminGroup.DELETE("/exams/:exam_id/questions/:question_id", questionH.DeleteQuestion)
	adminGroup.POST("/exams/:exam_id/questions/import", bankH.AddToExam)
	adminGroup.GET("/question-banks", bankH.ListQuestionBanks)
	adminGroup.POST("/question-banks", bankH.CreateQuestionBank)
	adminGroup.GET("/question-banks/categories", bankH.ListCategories)
	adminGroup.GET("/question-banks/questions", bankH.SearchQuestions)
	adminGroup.GET("/question-banks/:bank_id", bankH.GetQuestionBank)
	adminGroup.PUT("/question-banks/:bank_id", bankH.UpdateQuestionBank)
	adminGroup.DELETE("/question-banks/:bank_id", bankH.DeleteQuestionBank)
	adminGroup.PUT("/question-banks/:bank_id/questions", bankH.UpsertBankQuestion)
	adminGroup.DELETE("/question-banks/:bank_id/questions/:question_id", bankH.DeleteBankQuestion)
	adminGroup.GET("/exams/:exam_id/results", examH.ListResults)
	adminGroup.GET("/exams/:exam_id/results/:user_id", examH.GetStudentResult)
	adminGroup.PUT("/exams/:exam_id/results/:user_id/questions/:question_id/grade", examH.GradeEssay)
	adminGroup.GET("/exams/:exam_id/monitor", env.monitorH.MonitorExamSSE)
	adminGroup.POST("/editor/question", questionH.EditQuestion)
	adminGroup.DELETE("/users/:user_id/login", authH.ResetStudentLogin)

	env.router = r
	return env
}

// envelope is the decoded response body with data kept raw.
type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var env2 envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env2); err != nil {
			t.Fatalf("%s %s: invalid body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env2
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

func expectCode(t *testing.T, body envelope, want response.ErrCode) {
	t.Helper()
	if body.Error == nil || body.Error.Code != want {
		t.Fatalf("error = %+v, want %s", body.Error, want)
	}
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrExamNotFound, http.StatusNotFound, response.ErrExamNotFound},
		{service.ErrSessionCompleted, http.StatusConflict, response.ErrSessionCompleted},
		{service.ErrAnswerRejected, http.StatusUnprocessableEntity, response.ErrAnswerRejected},
		{service.ErrResultsHidden, http.StatusForbidden, response.ErrResultsHidden},
		{service.ErrExamPublished, http.StatusConflict, response.ErrActionForbidden},
		{service.ErrShuttingDown, http.StatusServiceUnavailable, response.ErrShuttingDown},
		{service.ErrQuestionBankNotFound, http.StatusNotFound, response.ErrQuestionBankNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, response.ErrInternal},
		{bytes.ErrTooLarge, http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("%v: got %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, w, http.StatusOK)

	var data struct {
		Status         string `json:"status"`
		ActiveAttempts int    `json:"active_attempts"`
	}
	decode(t, body.Data, &data)
	if data.Status != "ok" || data.ActiveAttempts != 0 {
		t.Fatalf("unexpected health: %+v", data)
	}
}
