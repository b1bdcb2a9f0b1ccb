package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/cache"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/grading"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
	"github.com/stemsi/examroom/internal/session"
)

// persistTimeout bounds cache and queue writes made on behalf of a session.
const persistTimeout = 5 * time.Second

// ExamSessionService runs exam attempts. Every active attempt is owned by one
// session.Controller driven by its own timer; the service keeps them in a
// registry keyed by exam and user and wires their answers and final result into
// Redis, the worker queues and the monitor channel.
type ExamSessionService struct {
	exams    *ExamService
	sessions SessionStore
	cache    AttemptCache
	tick     time.Duration
	now      func() time.Time
	shuffle  func([]string)
	log      zerolog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	live   map[attemptKey]*attempt
	closed bool
	wg     sync.WaitGroup
}

type attemptKey struct {
	examID uuid.UUID
	userID int
}

type attempt struct {
	key    attemptKey
	ctrl   *session.Controller
	timer  *session.Timer
	graded atomic.Pointer[model.ExamResult]

	// saveMu orders autosaves of one attempt.
	saveMu sync.Mutex
}

// LobbyStatus is the state of an exam as shown in the student lobby.
type LobbyStatus string

const (
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
)

// LobbyExam is an exam as listed in the student lobby.
type LobbyExam struct {
	ExamID           uuid.UUID   `json:"exam_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	TimeLimitMinutes int         `json:"time_limit_minutes"`
	QuestionCount    int         `json:"question_count"`
	TotalPoints      int         `json:"total_points"`
	LobbyStatus      LobbyStatus `json:"lobby_status"`
	FinalScore       *float64    `json:"final_score,omitempty"`
}

// Attempt is what a student receives when starting or resuming an exam.
type Attempt struct {
	Paper *model.ExamPaper `json:"paper"`
	State session.Snapshot `json:"state"`
}

// ResultOverview is one completed attempt on the student results page.
type ResultOverview struct {
	ExamID     uuid.UUID  `json:"exam_id"`
	ExamTitle  string     `json:"exam_title"`
	Score      *float64   `json:"score"`
	Passed     bool       `json:"passed"`
	FinishedAt *time.Time `json:"finished_at"`
}

// MonitorEvent is published on the exam monitor channel.
type MonitorEvent struct {
	Type          string    `json:"type"`
	ExamID        uuid.UUID `json:"exam_id"`
	UserID        int       `json:"user_id"`
	AnsweredCount int       `json:"answered_count,omitempty"`
	Score         *float64  `json:"score,omitempty"`
	AutoSubmitted bool      `json:"auto_submitted,omitempty"`
}

// answerJob is the payload of the answers queue.
type answerJob struct {
	SessionID uuid.UUID    `json:"session_id"`
	Answer    model.Answer `json:"answer"`
}

// NewExamSessionService creates a new ExamSessionService. tick is the length of
// one controller second.
func NewExamSessionService(
	exams *ExamService,
	sessions SessionStore,
	cache AttemptCache,
	tick time.Duration,
	log zerolog.Logger,
) *ExamSessionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExamSessionService{
		exams:    exams,
		sessions: sessions,
		cache:    cache,
		tick:     tick,
		now:      time.Now,
		shuffle: func(ids []string) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
		log:     log.With().Str("component", "exam_session_service").Logger(),
		baseCtx: ctx,
		cancel:  cancel,
		live:    make(map[attemptKey]*attempt),
	}
}

// ─── Lifecycle ─────────────────────────────────────────────────────────────

// Start begins an attempt, or resumes the existing one.
func (s *ExamSessionService) Start(ctx context.Context, examID uuid.UUID, userID int) (*Attempt, error) {
	a, err := s.attach(ctx, examID, userID, true)
	if err != nil {
		return nil, err
	}
	if a.ctrl.State() != session.StateActive {
		return nil, ErrSessionCompleted
	}
	return &Attempt{Paper: a.ctrl.Exam().ForStudent(), State: a.ctrl.Snapshot()}, nil
}

// Paper returns the attempt's exam paper in the user's question order.
func (s *ExamSessionService) Paper(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamPaper, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return nil, err
	}
	return a.ctrl.Exam().ForStudent(), nil
}

// State returns a snapshot of the attempt.
func (s *ExamSessionService) State(ctx context.Context, examID uuid.UUID, userID int) (session.Snapshot, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return session.Snapshot{}, err
	}
	return a.ctrl.Snapshot(), nil
}

// Done returns a channel closed when the attempt is submitted.
func (s *ExamSessionService) Done(ctx context.Context, examID uuid.UUID, userID int) (<-chan struct{}, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return nil, err
	}
	return a.ctrl.Done(), nil
}

// Answer applies an answer to one question. OptionID answers single-select
// questions, Text answers free-text ones.
func (s *ExamSessionService) Answer(ctx context.Context, examID uuid.UUID, userID int, questionID string, req *model.AnswerRequest) (session.Snapshot, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return session.Snapshot{}, err
	}
	if a.ctrl.Exam().Question(questionID) == nil {
		return session.Snapshot{}, ErrQuestionNotFound
	}

	var applied bool
	switch {
	case req.OptionID != nil:
		applied = a.ctrl.SelectOption(questionID, *req.OptionID)
	case req.Text != nil:
		applied = a.ctrl.SetTextAnswer(questionID, *req.Text)
	}
	if !applied {
		if a.ctrl.State() != session.StateActive {
			return session.Snapshot{}, ErrSessionCompleted
		}
		return session.Snapshot{}, ErrAnswerRejected
	}
	return a.ctrl.Snapshot(), nil
}

// Navigate moves the current question pointer. Out of range indexes are clamped.
func (s *ExamSessionService) Navigate(ctx context.Context, examID uuid.UUID, userID int, index int) (session.Snapshot, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return session.Snapshot{}, err
	}
	if a.ctrl.State() != session.StateActive {
		return session.Snapshot{}, ErrSessionCompleted
	}

	got := a.ctrl.GoTo(index)
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.cache.SetCursor(ctx, examID, userID, got)
	}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache cursor")
	}
	return a.ctrl.Snapshot(), nil
}

// Submit ends the attempt and returns its graded result. Submitting an attempt
// that is already being submitted waits for that submission instead.
func (s *ExamSessionService) Submit(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	a, err := s.attach(ctx, examID, userID, false)
	if err != nil {
		return nil, err
	}

	a.ctrl.Submit(ctx)

	select {
	case <-a.ctrl.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res := a.graded.Load(); res != nil {
		return res, nil
	}
	return s.Result(ctx, examID, userID)
}

// Shutdown stops every session timer. Attempts stay IN_PROGRESS and resume
// from their start time on the next Start.
func (s *ExamSessionService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	s.mu.Lock()
	active := make([]*attempt, 0, len(s.live))
	for _, a := range s.live {
		active = append(active, a)
	}
	s.mu.Unlock()

	for _, a := range active {
		if a.timer != nil {
			a.timer.Stop()
		}
	}
	s.wg.Wait()
	s.log.Info().Int("sessions", len(active)).Msg("Session timers stopped")
}

// ActiveCount returns the number of attempts held in memory.
func (s *ExamSessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// attach returns the live attempt of a user, loading it from storage when the
// process does not hold it. With create set a missing attempt is started.
func (s *ExamSessionService) attach(ctx context.Context, examID uuid.UUID, userID int, create bool) (*attempt, error) {
	key := attemptKey{examID: examID, userID: userID}

	s.mu.Lock()
	a, ok := s.live[key]
	closed := s.closed
	s.mu.Unlock()
	if ok {
		return a, nil
	}
	if closed {
		return nil, ErrShuttingDown
	}

	sess, err := s.sessions.GetByExamAndUser(ctx, examID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if !create {
			return nil, ErrSessionNotStarted
		}
		sess, err = s.create(ctx, examID, userID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.Status == model.SessionStatusCompleted {
		return nil, ErrSessionCompleted
	}
	// Submitted but not yet flushed by the results worker.
	if _, err := s.cache.GetResult(ctx, examID, userID); err == nil {
		return nil, ErrSessionCompleted
	}

	return s.load(ctx, sess)
}

// create inserts a new attempt for a published exam.
func (s *ExamSessionService) create(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamSession, error) {
	exam, err := s.exams.GetDefinition(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotAvailable
	}
	if len(exam.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	sess := &model.ExamSession{ExamID: examID, UserID: userID}
	if err := s.sessions.Create(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.sessions.GetByExamAndUser(ctx, examID, userID)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.cache.SetAttempt(ctx, examID, userID, sess.ID, sess.StartedAt); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache session start")
	}

	if exam.RandomizeQuestions {
		order := make([]string, len(exam.Questions))
		for i, q := range exam.Questions {
			order[i] = q.ID
		}
		s.shuffle(order)
		sess.QuestionOrder = order

		if err := s.cache.SetQuestionOrder(ctx, examID, userID, order); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache question order")
		}
		if err := s.cache.Enqueue(ctx, config.WorkerKey.PersistQuestionOrderQueue, model.QuestionOrder{SessionID: sess.ID, Order: order}); err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to queue question order")
		}
	}

	s.publish(ctx, MonitorEvent{Type: "joined", ExamID: examID, UserID: userID})
	s.log.Info().
		Str("exam_id", examID.String()).
		Int("user_id", userID).
		Str("session_id", sess.ID.String()).
		Msg("Exam session started")
	return sess, nil
}

// load builds a controller for a stored IN_PROGRESS attempt and registers it.
func (s *ExamSessionService) load(ctx context.Context, sess *model.ExamSession) (*attempt, error) {
	exam, err := s.exams.GetDefinition(ctx, sess.ExamID)
	if err != nil {
		return nil, err
	}

	order := sess.QuestionOrder
	if cached, err := s.cache.GetQuestionOrder(ctx, sess.ExamID, sess.UserID); err == nil {
		order = cached
	}
	def := orderQuestions(exam, order)

	startedAt := sess.StartedAt
	if cached, err := s.cache.GetSessionStart(ctx, sess.ExamID, sess.UserID); err == nil {
		startedAt = cached
	} else if errors.Is(err, cache.ErrMiss) {
		_ = s.cache.SetAttempt(ctx, sess.ExamID, sess.UserID, sess.ID, sess.StartedAt)
	}

	elapsed := int(s.now().Sub(startedAt) / time.Second)
	restore := session.Restore{
		Answers:   s.savedAnswers(ctx, sess),
		Remaining: def.TimeLimitSeconds() - max(elapsed, 0),
	}
	if idx, err := s.cache.GetCursor(ctx, sess.ExamID, sess.UserID); err == nil {
		restore.Index = idx
	}

	key := attemptKey{examID: sess.ExamID, userID: sess.UserID}
	a := &attempt{key: key}

	log := s.log.With().Int("user_id", sess.UserID).Logger()
	ctrl, err := session.New(def,
		session.WithID(sess.ID),
		session.WithStartedAt(startedAt),
		session.WithClock(s.now),
		session.WithRestore(restore),
		session.WithLogger(log),
		session.WithAnswerHook(func(ans model.Answer) { s.autosave(a, ans) }),
		session.WithSink(session.SinkFunc(func(ctx context.Context, r session.Result) error {
			return s.persistResult(ctx, a, r)
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	a.ctrl = ctrl

	s.mu.Lock()
	if existing, ok := s.live[key]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	s.live[key] = a
	if restore.Remaining > 0 {
		a.timer = session.StartTimer(s.baseCtx, ctrl, s.tick)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	if a.timer == nil {
		log.Info().Str("session_id", sess.ID.String()).Msg("Resumed session has no time left")
		ctrl.Tick(ctx)
	}

	go s.watch(a)

	log.Info().
		Str("session_id", sess.ID.String()).
		Int("remaining", ctrl.Remaining()).
		Msg("Exam session loaded")
	return a, nil
}

// watch drops an attempt from the registry once it is submitted or its timer stops.
func (s *ExamSessionService) watch(a *attempt) {
	defer s.wg.Done()

	if a.timer != nil {
		select {
		case <-a.timer.Done():
		case <-a.ctrl.Done():
		}
	} else {
		<-a.ctrl.Done()
	}

	// Keep submitted attempts reachable until the result is readable elsewhere.
	if a.ctrl.State() == session.StateSubmitted {
		select {
		case <-time.After(time.Minute):
		case <-s.baseCtx.Done():
		}
	}

	s.mu.Lock()
	if s.live[a.key] == a {
		delete(s.live, a.key)
	}
	s.mu.Unlock()
}

func (s *ExamSessionService) savedAnswers(ctx context.Context, sess *model.ExamSession) []model.Answer {
	answers, err := s.cache.GetAnswers(ctx, sess.ExamID, sess.UserID)
	if err == nil && len(answers) > 0 {
		return answers
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read cached answers, using database")
	}
	answers, err = s.sessions.ListAnswers(ctx, sess.ID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to load saved answers")
		return nil
	}
	return answers
}

// orderQuestions returns a copy of exam with questions in the given order.
// Ids missing from order keep their relative position at the end.
func orderQuestions(exam *model.Exam, order []string) *model.Exam {
	def := exam.Clone()
	if len(order) == 0 {
		return def
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	ordered := make([]model.Question, 0, len(def.Questions))
	var rest []model.Question
	for _, id := range order {
		if q := def.Question(id); q != nil {
			ordered = append(ordered, *q)
		}
	}
	for _, q := range def.Questions {
		if _, ok := pos[q.ID]; !ok {
			rest = append(rest, q)
		}
	}
	def.Questions = append(ordered, rest...)
	return def
}

// ─── Controller hooks ──────────────────────────────────────────────────────

// autosave writes the answer as the controller holds it now, so concurrent
// hooks of one attempt never leave an older value in the cache.
func (s *ExamSessionService) autosave(a *attempt, ans model.Answer) {
	examID, userID := a.key.examID, a.key.userID

	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if cur, ok := a.ctrl.Answer(ans.QuestionID); ok {
		ans = cur
	}

	err := s.withTimeout(func(ctx context.Context) error {
		if err := s.cache.SaveAnswer(ctx, examID, userID, ans); err != nil {
			return fmt.Errorf("cache answer: %w", err)
		}
		return s.cache.Enqueue(ctx, config.WorkerKey.PersistAnswersQueue, answerJob{SessionID: a.ctrl.ID(), Answer: ans})
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("exam_id", examID.String()).
			Int("user_id", userID).
			Str("question_id", ans.QuestionID).
			Msg("Autosave failed")
	}

	_ = s.withTimeout(func(ctx context.Context) error {
		s.publish(ctx, MonitorEvent{
			Type:          "answered",
			ExamID:        examID,
			UserID:        userID,
			AnsweredCount: a.ctrl.Snapshot().AnsweredCount,
		})
		return nil
	})
}

// persistResult grades the final answers, caches the result, queues it for the
// database and notifies the monitor.
func (s *ExamSessionService) persistResult(ctx context.Context, a *attempt, r session.Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	res := grading.Grade(r.Exam, r, r.Exam.PassingScore)
	res.UserID = a.key.userID
	a.graded.Store(res)

	var errs []error
	if err := s.cache.SetResult(ctx, res); err != nil {
		errs = append(errs, fmt.Errorf("cache result: %w", err))
	}
	if err := s.cache.Enqueue(ctx, config.WorkerKey.PersistResultsQueue, res); err != nil {
		errs = append(errs, fmt.Errorf("queue result: %w", err))
		if err := s.sessions.SaveResult(ctx, res); err != nil {
			errs = append(errs, fmt.Errorf("save result: %w", err))
		}
	}

	score := res.Score
	s.publish(ctx, MonitorEvent{
		Type:          "submitted",
		ExamID:        res.ExamID,
		UserID:        res.UserID,
		AnsweredCount: countAnswered(r.Answers),
		Score:         &score,
		AutoSubmitted: r.AutoSubmitted,
	})

	s.log.Info().
		Str("exam_id", res.ExamID.String()).
		Int("user_id", res.UserID).
		Str("session_id", res.SessionID.String()).
		Float64("score", res.Score).
		Bool("auto", r.AutoSubmitted).
		Msg("Exam session persisted")
	return errors.Join(errs...)
}

func countAnswered(answers []model.Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsAnswered() {
			n++
		}
	}
	return n
}

func (s *ExamSessionService) publish(ctx context.Context, ev MonitorEvent) {
	if err := s.cache.Publish(ctx, config.CacheKey.ExamMonitorChannel(ev.ExamID.String()), ev); err != nil {
		s.log.Warn().Err(err).Str("type", ev.Type).Msg("Failed to publish monitor event")
	}
}

func (s *ExamSessionService) withTimeout(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return fn(ctx)
}

// ─── Results ───────────────────────────────────────────────────────────────

// Result returns the graded result of a user's attempt, reading PostgreSQL
// first and the Redis copy while the results worker has not flushed yet.
func (s *ExamSessionService) Result(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	res, err := s.sessions.GetResult(ctx, examID, userID)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get result: %w", err)
	}

	res, err = s.cache.GetResult(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get cached result: %w", err)
	}
	return res, nil
}

// StudentResult is Result for the exam taker, honouring the exam's ShowResults flag.
func (s *ExamSessionService) StudentResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	exam, err := s.exams.GetDefinition(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.ShowResults {
		return nil, ErrResultsHidden
	}
	return s.Result(ctx, examID, userID)
}

// GradeEssay records a manual grade for an essay answer and stores the updated result.
func (s *ExamSessionService) GradeEssay(ctx context.Context, examID uuid.UUID, userID int, questionID string, req *model.ManualGradeRequest) (*model.ExamResult, error) {
	res, err := s.Result(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	if err := grading.ApplyManualGrade(res, questionID, req.Points, req.Feedback); err != nil {
		switch {
		case errors.Is(err, grading.ErrQuestionNotFound):
			return nil, ErrQuestionNotFound
		case errors.Is(err, grading.ErrNotEssay):
			return nil, ErrNotEssay
		}
		return nil, err
	}

	if err := s.sessions.SaveResult(ctx, res); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	if err := s.cache.SetResult(ctx, res); err != nil {
		s.log.Warn().Err(err).Msg("Failed to refresh cached result")
	}
	return res, nil
}

// ListResults returns one page of attempts at an exam for admins.
func (s *ExamSessionService) ListResults(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.ResultSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.sessions.ListResultsByExam(ctx, examID, page, perPage)
}

// Lobby lists published exams with the user's attempt status overlaid.
func (s *ExamSessionService) Lobby(ctx context.Context, userID int) ([]LobbyExam, error) {
	exams, err := s.exams.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	byExam := make(map[uuid.UUID]*model.ExamSession, len(sessions))
	for i := range sessions {
		byExam[sessions[i].ExamID] = &sessions[i]
	}

	lobby := make([]LobbyExam, 0, len(exams))
	for i := range exams {
		e := &exams[i]
		entry := LobbyExam{
			ExamID:           e.ID,
			Title:            e.Title,
			Description:      e.Description,
			TimeLimitMinutes: e.TimeLimitMinutes,
			QuestionCount:    len(e.Questions),
			TotalPoints:      e.TotalPoints(),
			LobbyStatus:      LobbyStatusAvailable,
		}
		if sess, ok := byExam[e.ID]; ok {
			entry.LobbyStatus = LobbyStatusInProgress
			if sess.Status == model.SessionStatusCompleted {
				entry.LobbyStatus = LobbyStatusCompleted
				entry.FinalScore = sess.FinalScore
			}
		}
		lobby = append(lobby, entry)
	}
	return lobby, nil
}

// History lists the user's completed attempts.
func (s *ExamSessionService) History(ctx context.Context, userID int) ([]ResultOverview, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := []ResultOverview{}
	for _, sess := range sessions {
		if sess.Status != model.SessionStatusCompleted {
			continue
		}
		exam, err := s.exams.GetDefinition(ctx, sess.ExamID)
		if err != nil {
			continue
		}
		ov := ResultOverview{
			ExamID:     sess.ExamID,
			ExamTitle:  exam.Title,
			Score:      sess.FinalScore,
			FinishedAt: sess.FinishedAt,
		}
		if sess.FinalScore != nil {
			ov.Passed = *sess.FinalScore >= float64(exam.PassingScore)
		}
		out = append(out, ov)
	}
	return out, nil
}
