// Package session holds the in-memory state machine of one exam attempt.
//
// A Controller starts Active with an empty answer for every question, the pointer on
// the first question and the full time limit on the clock. It moves to Submitting
// when the user submits or the clock reaches zero, hands the final answers to its
// Sink, and ends in Submitted. Once it has left Active every mutating call is a
// silent no-op.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/model"
)

// State is the lifecycle state of a Controller.
type State string

const (
	StateActive     State = "ACTIVE"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
)

// LowTimeThreshold is the remaining time under which the clock is flagged as running low.
const LowTimeThreshold = 300

// ErrEmptyExam is returned when a session is created from a definition without questions.
var ErrEmptyExam = errors.New("exam has no questions")

// Result is handed to the Sink when the session leaves Active.
type Result struct {
	SessionID        uuid.UUID
	Exam             *model.Exam
	Answers          []model.Answer
	StartedAt        time.Time
	SubmittedAt      time.Time
	ElapsedSeconds   int
	RemainingSeconds int
	AutoSubmitted    bool
}

// Sink consumes the final answers of a session.
type Sink interface {
	Persist(ctx context.Context, r Result) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r Result) error

// Persist calls f(ctx, r).
func (f SinkFunc) Persist(ctx context.Context, r Result) error {
	return f(ctx, r)
}

// Restore carries the state of a session being resumed.
type Restore struct {
	Answers   []model.Answer
	Index     int
	Remaining int
}

// Controller owns the state of one exam attempt. It is safe for concurrent use;
// every call is serialised, in whatever order callers arrive.
type Controller struct {
	mu sync.Mutex

	id        uuid.UUID
	def       *model.Exam
	answers   map[string]*model.Answer
	index     int
	limit     int
	remaining int
	state     State
	auto      bool
	startedAt time.Time
	result    *Result
	done      chan struct{}

	now      func() time.Time
	sink     Sink
	onAnswer func(model.Answer)
	restore  *Restore
	log      zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithID sets the session identifier (a random one is generated otherwise).
func WithID(id uuid.UUID) Option {
	return func(c *Controller) { c.id = id }
}

// WithSink sets the consumer of the final answers.
func WithSink(s Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithAnswerHook registers a callback invoked after every applied answer change.
// The callback runs outside the controller lock, so calls for the same question
// may arrive out of order; use Answer for the current value.
func WithAnswerHook(fn func(model.Answer)) Option {
	return func(c *Controller) { c.onAnswer = fn }
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithStartedAt sets the start timestamp, e.g. for a resumed session.
func WithStartedAt(t time.Time) Option {
	return func(c *Controller) { c.startedAt = t }
}

// WithRestore resumes answers, pointer and clock from an earlier run.
// Unknown questions and mismatched answers are dropped, numbers are clamped.
func WithRestore(r Restore) Option {
	return func(c *Controller) { c.restore = &r }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates an Active session for def.
func New(def *model.Exam, opts ...Option) (*Controller, error) {
	if def == nil || len(def.Questions) == 0 {
		return nil, ErrEmptyExam
	}

	c := &Controller{
		id:      uuid.New(),
		def:     def,
		answers: make(map[string]*model.Answer, len(def.Questions)),
		limit:   max(def.TimeLimitSeconds(), 0),
		state:   StateActive,
		done:    make(chan struct{}),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.remaining = c.limit
	for i := range def.Questions {
		a := model.NewAnswer(&def.Questions[i])
		c.answers[a.QuestionID] = &a
	}
	if c.startedAt.IsZero() {
		c.startedAt = c.now()
	}
	if c.restore != nil {
		c.applyRestore(*c.restore)
		c.restore = nil
	}

	c.log = c.log.With().
		Str("session_id", c.id.String()).
		Str("exam_id", def.ID.String()).
		Logger()

	return c, nil
}

func (c *Controller) applyRestore(r Restore) {
	for _, in := range r.Answers {
		q := c.def.Question(in.QuestionID)
		a, ok := c.answers[in.QuestionID]
		if q == nil || !ok {
			continue
		}
		if q.Type.SingleSelect() {
			if in.OptionID != "" && q.Option(in.OptionID) != nil {
				a.OptionID = in.OptionID
			}
			continue
		}
		a.Text = in.Text
	}
	c.index = c.clamp(r.Index)
	c.remaining = min(max(r.Remaining, 0), c.limit)
}

// ID returns the session identifier.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Exam returns the definition the session was created from. Callers must not modify it.
func (c *Controller) Exam() *model.Exam {
	return c.def
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the remaining time in whole seconds.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Index returns the current question pointer.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Done is closed once the session reaches Submitted.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Result returns the final result once the session is Submitted.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// SelectOption replaces the selection of a single-select question with optionID.
// It reports whether the change was applied; unknown ids, free-text questions and
// inactive sessions are ignored.
func (c *Controller) SelectOption(questionID, optionID string) bool {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return false
	}
	q := c.def.Question(questionID)
	if q == nil || !q.Type.SingleSelect() || q.Option(optionID) == nil {
		c.mu.Unlock()
		return false
	}
	a := c.answers[questionID]
	a.OptionID = optionID
	changed := *a
	c.mu.Unlock()

	c.notify(changed)
	return true
}

// SetTextAnswer overwrites the text of a free-text question. An empty string is a
// valid value and leaves the question unanswered.
func (c *Controller) SetTextAnswer(questionID, text string) bool {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return false
	}
	q := c.def.Question(questionID)
	if q == nil || q.Type.SingleSelect() {
		c.mu.Unlock()
		return false
	}
	a := c.answers[questionID]
	a.Text = text
	changed := *a
	c.mu.Unlock()

	c.notify(changed)
	return true
}

// GoTo moves the pointer to index, clamped to the question range, and returns the
// resulting pointer. Navigation is never gated on answers.
func (c *Controller) GoTo(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.index = c.clamp(index)
	}
	return c.index
}

// Next moves to the following question, if any.
func (c *Controller) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.index = c.clamp(c.index + 1)
	}
	return c.index
}

// Prev moves to the preceding question, if any.
func (c *Controller) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.index = c.clamp(c.index - 1)
	}
	return c.index
}

// Tick takes one second off the clock. When the clock reaches zero the session is
// submitted, exactly once.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		c.mu.Unlock()
		return
	}
	c.auto = true
	r := c.beginSubmit()
	c.mu.Unlock()

	c.log.Info().Msg("Time is up, submitting")
	c.finishSubmit(ctx, r)
}

// Submit ends the session on the user's request. It reports false if the session
// was no longer Active.
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return false
	}
	r := c.beginSubmit()
	c.mu.Unlock()

	c.finishSubmit(ctx, r)
	return true
}

// beginSubmit must be called with c.mu held.
func (c *Controller) beginSubmit() Result {
	c.state = StateSubmitting
	return Result{
		SessionID:        c.id,
		Exam:             c.def,
		Answers:          c.orderedAnswers(),
		StartedAt:        c.startedAt,
		SubmittedAt:      c.now(),
		ElapsedSeconds:   c.limit - c.remaining,
		RemainingSeconds: c.remaining,
		AutoSubmitted:    c.auto,
	}
}

func (c *Controller) finishSubmit(ctx context.Context, r Result) {
	if c.sink != nil {
		if err := c.sink.Persist(ctx, r); err != nil {
			c.log.Error().Err(err).Msg("Persisting submitted answers failed")
		}
	}

	c.mu.Lock()
	c.state = StateSubmitted
	c.result = &r
	close(c.done)
	c.mu.Unlock()

	c.log.Info().
		Bool("auto", r.AutoSubmitted).
		Int("elapsed", r.ElapsedSeconds).
		Msg("Session submitted")
}

// IsAnswered reports whether the question has a selected option or non-blank text.
func (c *Controller) IsAnswered(questionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[questionID]
	return ok && a.IsAnswered()
}

// Answer returns a copy of the answer for a question.
func (c *Controller) Answer(questionID string) (model.Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[questionID]
	if !ok {
		return model.Answer{}, false
	}
	return *a, true
}

// ProgressPercent is (index+1)/questionCount*100.
func (c *Controller) ProgressPercent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress()
}

func (c *Controller) progress() float64 {
	return float64(c.index+1) / float64(len(c.def.Questions)) * 100
}

// Snapshot is a point-in-time copy of the session, safe to serialise.
type Snapshot struct {
	SessionID        uuid.UUID       `json:"session_id"`
	ExamID           uuid.UUID       `json:"exam_id"`
	State            State           `json:"state"`
	CurrentIndex     int             `json:"current_index"`
	QuestionCount    int             `json:"question_count"`
	RemainingSeconds int             `json:"remaining_seconds"`
	TimeRunningLow   bool            `json:"time_running_low"`
	ProgressPercent  float64         `json:"progress_percent"`
	AnsweredCount    int             `json:"answered_count"`
	Answered         map[string]bool `json:"answered"`
	Answers          []model.Answer  `json:"answers"`
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		SessionID:        c.id,
		ExamID:           c.def.ID,
		State:            c.state,
		CurrentIndex:     c.index,
		QuestionCount:    len(c.def.Questions),
		RemainingSeconds: c.remaining,
		TimeRunningLow:   c.remaining < LowTimeThreshold,
		ProgressPercent:  c.progress(),
		Answered:         make(map[string]bool, len(c.answers)),
		Answers:          c.orderedAnswers(),
	}
	for _, a := range s.Answers {
		ok := a.IsAnswered()
		s.Answered[a.QuestionID] = ok
		if ok {
			s.AnsweredCount++
		}
	}
	return s
}

func (c *Controller) orderedAnswers() []model.Answer {
	out := make([]model.Answer, 0, len(c.def.Questions))
	for _, q := range c.def.Questions {
		out = append(out, *c.answers[q.ID])
	}
	return out
}

func (c *Controller) clamp(i int) int {
	return min(max(i, 0), len(c.def.Questions)-1)
}

func (c *Controller) notify(a model.Answer) {
	if c.onAnswer != nil {
		c.onAnswer(a)
	}
}
