package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/handler"
	"github.com/stemsi/examroom/internal/middleware"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Exam          *handler.ExamHandler
	Question      *handler.QuestionHandler
	QuestionBank  *handler.QuestionBankHandler
	Dashboard     *handler.DashboardHandler
	WS            *handler.WSHandler
	Monitor       *handler.MonitorHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter guards register and login; nil disables it.
func SetupRouter(
	auth middleware.Authenticator,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so every log line and response carries it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		public := authAPI.Group("")
		if authLimiter != nil {
			public.Use(authLimiter.Middleware())
		}
		public.POST("/register", handlers.Auth.Register)
		public.POST("/login", handlers.Auth.Login)

		authed := authAPI.Group("", middleware.Authenticate(auth), middleware.CheckSingleDeviceSession(auth))
		authed.POST("/logout", handlers.Auth.Logout)
		authed.GET("/me", handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.Authenticate(auth),
		middleware.RequireRole(model.RoleStudent),
		middleware.CheckSingleDeviceSession(auth),
		middleware.NoStore(),
	)
	{
		studentAPI.GET("/lobby", handlers.StudentPortal.GetLobby)
		studentAPI.GET("/results", handlers.StudentPortal.GetResults)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.StartExam)
		studentAPI.GET("/exams/:exam_id/paper", handlers.StudentPortal.GetExamPaper)
		studentAPI.GET("/exams/:exam_id/state", handlers.StudentPortal.GetExamState)
		studentAPI.PUT("/exams/:exam_id/answers/:question_id", handlers.StudentPortal.SaveAnswer)
		studentAPI.POST("/exams/:exam_id/navigate", handlers.StudentPortal.Navigate)
		studentAPI.POST("/exams/:exam_id/submit", handlers.StudentPortal.SubmitExam)
		studentAPI.GET("/exams/:exam_id/result", handlers.StudentPortal.GetResult)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.Authenticate(auth),
		middleware.RequireRole(model.RoleStudent),
		middleware.CheckSingleDeviceSession(auth),
	)
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 4. Admin Group (JWT + role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.Authenticate(auth), middleware.RequireRole(model.RoleAdmin))
	{
		// Dashboard
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		// Exams
		adminAPI.GET("/exams", handlers.Exam.ListExams)
		adminAPI.POST("/exams", handlers.Exam.CreateExam)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.UpdateExam)
		adminAPI.DELETE("/exams/:exam_id", handlers.Exam.DeleteExam)
		adminAPI.POST("/exams/:exam_id/publish", handlers.Exam.PublishExam)
		adminAPI.POST("/exams/:exam_id/expire", handlers.Exam.ExpireExam)
		adminAPI.POST("/exams/:exam_id/duplicate", handlers.Exam.DuplicateExam)

		// Questions
		adminAPI.GET("/exams/:exam_id/questions", handlers.Question.ListQuestions)
		adminAPI.PUT("/exams/:exam_id/questions", handlers.Question.UpsertQuestion)
		adminAPI.DELETE("/exams/:exam_id/questions/:question_id", handlers.Question.DeleteQuestion)
		adminAPI.POST("/exams/:exam_id/questions/import", handlers.QuestionBank.AddToExam)
		adminAPI.POST("/editor/question", handlers.Question.EditQuestion)

		// Question banks
		adminAPI.GET("/question-banks", handlers.QuestionBank.ListQuestionBanks)
		adminAPI.POST("/question-banks", handlers.QuestionBank.CreateQuestionBank)
		adminAPI.GET("/question-banks/categories", handlers.QuestionBank.ListCategories)
		adminAPI.GET("/question-banks/questions", handlers.QuestionBank.SearchQuestions)
		adminAPI.GET("/question-banks/:bank_id", handlers.QuestionBank.GetQuestionBank)
		adminAPI.PUT("/question-banks/:bank_id", handlers.QuestionBank.UpdateQuestionBank)
		adminAPI.DELETE("/question-banks/:bank_id", handlers.QuestionBank.DeleteQuestionBank)
		adminAPI.PUT("/question-banks/:bank_id/questions", handlers.QuestionBank.UpsertBankQuestion)
		adminAPI.DELETE("/question-banks/:bank_id/questions/:question_id", handlers.QuestionBank.DeleteBankQuestion)

		// Results
		adminAPI.GET("/exams/:exam_id/results", handlers.Exam.ListResults)
		adminAPI.GET("/exams/:exam_id/results/:user_id", handlers.Exam.GetStudentResult)
		adminAPI.PUT("/exams/:exam_id/results/:user_id/questions/:question_id/grade", handlers.Exam.GradeEssay)

		// Live monitor (SSE)
		adminAPI.GET("/exams/:exam_id/monitor", handlers.Monitor.MonitorExamSSE)

		// Accounts
		adminAPI.DELETE("/users/:user_id/login", handlers.Auth.ResetStudentLogin)

		// System metrics (SSE)
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
