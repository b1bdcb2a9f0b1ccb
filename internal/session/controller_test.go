package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
)

type recordingSink struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (s *recordingSink) Persist(_ context.Context, r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	c, err := New(demo.JavaScriptFundamentals(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewInitialState(t *testing.T) {
	c := newController(t)

	if got := c.State(); got != StateActive {
		t.Fatalf("state = %s, want %s", got, StateActive)
	}
	if got := c.Index(); got != 0 {
		t.Fatalf("index = %d, want 0", got)
	}
	if got := c.Remaining(); got != 3600 {
		t.Fatalf("remaining = %d, want 3600", got)
	}

	snap := c.Snapshot()
	if len(snap.Answers) != 5 {
		t.Fatalf("answers = %d, want 5", len(snap.Answers))
	}
	for i, a := range snap.Answers {
		if a.IsAnswered() {
			t.Errorf("answer %d should start empty", i)
		}
	}
	if snap.Answers[0].Kind != model.AnswerKindSingleSelect {
		t.Errorf("question 1 kind = %s, want single select", snap.Answers[0].Kind)
	}
	if snap.Answers[4].Kind != model.AnswerKindFreeText {
		t.Errorf("question 5 kind = %s, want free text", snap.Answers[4].Kind)
	}
}

func TestNewRejectsEmptyExam(t *testing.T) {
	if _, err := New(&model.Exam{TimeLimitMinutes: 10}); !errors.Is(err, ErrEmptyExam) {
		t.Fatalf("err = %v, want ErrEmptyExam", err)
	}
	if _, err := New(nil); !errors.Is(err, ErrEmptyExam) {
		t.Fatalf("err = %v, want ErrEmptyExam", err)
	}
}

func TestSelectOptionKeepsSingleSelection(t *testing.T) {
	c := newController(t)

	if !c.SelectOption("1", "3") {
		t.Fatal("first selection not applied")
	}
	if !c.SelectOption("1", "1") {
		t.Fatal("second selection not applied")
	}

	a, _ := c.Answer("1")
	got := a.SelectedOptions()
	if len(got) != 1 || got[0] != "1" {
		t.Fatalf("selected = %v, want [1]", got)
	}
}

func TestSelectOptionAlwaysLeavesOneSelected(t *testing.T) {
	c := newController(t)
	for _, opt := range []string{"1", "2", "3", "4", "2", "2", "4"} {
		c.SelectOption("3", opt)
		a, _ := c.Answer("3")
		if n := len(a.SelectedOptions()); n != 1 {
			t.Fatalf("after selecting %s: %d options selected", opt, n)
		}
		if a.OptionID != opt {
			t.Fatalf("after selecting %s: got %s", opt, a.OptionID)
		}
	}
}

func TestSelectOptionIgnoresInvalidTargets(t *testing.T) {
	c := newController(t)

	tests := []struct {
		name     string
		question string
		option   string
	}{
		{"unknown question", "99", "1"},
		{"unknown option", "1", "9"},
		{"free text question", "4", "1"},
		{"essay question", "5", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if c.SelectOption(tc.question, tc.option) {
				t.Fatal("selection should have been ignored")
			}
		})
	}
	if c.Snapshot().AnsweredCount != 0 {
		t.Fatal("ignored selections must not answer anything")
	}
}

func TestSetTextAnswer(t *testing.T) {
	c := newController(t)

	if !c.SetTextAnswer("4", "object") {
		t.Fatal("text not applied")
	}
	if !c.IsAnswered("4") {
		t.Fatal("question 4 should be answered")
	}
	if !c.SetTextAnswer("4", "") {
		t.Fatal("empty text should be a valid value")
	}
	if c.IsAnswered("4") {
		t.Fatal("empty text should read as unanswered")
	}
	if c.SetTextAnswer("1", "Object") {
		t.Fatal("text on a single-select question should be ignored")
	}
}

func TestIsAnswered(t *testing.T) {
	c := newController(t)

	if c.IsAnswered("1") || c.IsAnswered("5") {
		t.Fatal("fresh answers should be unanswered")
	}

	c.SetTextAnswer("5", "   \n\t ")
	if c.IsAnswered("5") {
		t.Fatal("whitespace-only text should be unanswered")
	}

	c.SetTextAnswer("5", "  closures capture scope ")
	if !c.IsAnswered("5") {
		t.Fatal("non-blank text should be answered")
	}

	c.SelectOption("2", "2")
	if !c.IsAnswered("2") {
		t.Fatal("selected option should be answered")
	}

	if c.IsAnswered("missing") {
		t.Fatal("unknown question should be unanswered")
	}
}

func TestGoToClamps(t *testing.T) {
	c := newController(t)

	if got := c.GoTo(99); got != 4 {
		t.Fatalf("GoTo(99) = %d, want 4", got)
	}
	if got := c.GoTo(-3); got != 0 {
		t.Fatalf("GoTo(-3) = %d, want 0", got)
	}
	if got := c.GoTo(2); got != 2 {
		t.Fatalf("GoTo(2) = %d, want 2", got)
	}
}

func TestGoToStaysInRange(t *testing.T) {
	c := newController(t)
	for _, target := range []int{7, -1, 3, 100, -100, 0, 4, 5, 2} {
		c.GoTo(target)
		if idx := c.Index(); idx < 0 || idx >= 5 {
			t.Fatalf("GoTo(%d) left index at %d", target, idx)
		}
	}
}

func TestNextPrevDoNotRequireAnswers(t *testing.T) {
	c := newController(t)

	if got := c.Prev(); got != 0 {
		t.Fatalf("Prev at start = %d, want 0", got)
	}
	for want := 1; want <= 4; want++ {
		if got := c.Next(); got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}
	if got := c.Next(); got != 4 {
		t.Fatalf("Next at end = %d, want 4", got)
	}
}

func TestProgressPercent(t *testing.T) {
	c := newController(t)

	if got := c.ProgressPercent(); got != 20 {
		t.Fatalf("progress = %v, want 20", got)
	}
	c.GoTo(4)
	if got := c.ProgressPercent(); got != 100 {
		t.Fatalf("progress = %v, want 100", got)
	}
}

func TestTickIsMonotonic(t *testing.T) {
	c := newController(t)
	ctx := context.Background()

	prev := c.Remaining()
	for i := 0; i < 100; i++ {
		c.Tick(ctx)
		got := c.Remaining()
		if got > prev || got < 0 {
			t.Fatalf("tick %d: remaining went from %d to %d", i, prev, got)
		}
		prev = got
	}
	if prev != 3500 {
		t.Fatalf("remaining = %d, want 3500", prev)
	}
}

func TestTimeoutSubmitsUntouchedExam(t *testing.T) {
	sink := &recordingSink{}
	c := newController(t, WithSink(sink))
	ctx := context.Background()

	for i := 0; i < 3600; i++ {
		c.Tick(ctx)
	}

	if got := c.State(); got != StateSubmitted {
		t.Fatalf("state = %s, want %s", got, StateSubmitted)
	}
	if got := c.Remaining(); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	if sink.count() != 1 {
		t.Fatalf("sink called %d times, want 1", sink.count())
	}

	r := sink.results[0]
	if !r.AutoSubmitted {
		t.Error("result should be flagged as auto submitted")
	}
	if r.ElapsedSeconds != 3600 || r.RemainingSeconds != 0 {
		t.Errorf("elapsed/remaining = %d/%d, want 3600/0", r.ElapsedSeconds, r.RemainingSeconds)
	}
	if len(r.Answers) != 5 {
		t.Fatalf("answers = %d, want 5", len(r.Answers))
	}
	for _, a := range r.Answers {
		if a.IsAnswered() {
			t.Errorf("answer %s should be empty", a.QuestionID)
		}
	}

	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestTimeoutSubmitsExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	def := demo.JavaScriptFundamentals()
	def.TimeLimitMinutes = 1
	c, err := New(def, WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		c.Tick(context.Background())
	}
	if sink.count() != 1 {
		t.Fatalf("sink called %d times, want 1", sink.count())
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	c := newController(t, WithSink(sink))
	c.SelectOption("1", "3")
	c.Tick(context.Background())

	if !c.Submit(context.Background()) {
		t.Fatal("first submit should apply")
	}
	if c.Submit(context.Background()) {
		t.Fatal("second submit should be a no-op")
	}
	if sink.count() != 1 {
		t.Fatalf("sink called %d times, want 1", sink.count())
	}

	r, ok := c.Result()
	if !ok {
		t.Fatal("result should be available")
	}
	if r.AutoSubmitted {
		t.Error("manual submit flagged as automatic")
	}
	if r.ElapsedSeconds != 1 || r.RemainingSeconds != 3599 {
		t.Errorf("elapsed/remaining = %d/%d, want 1/3599", r.ElapsedSeconds, r.RemainingSeconds)
	}
	if r.Answers[0].OptionID != "3" {
		t.Errorf("answer 1 = %q, want 3", r.Answers[0].OptionID)
	}
}

func TestMutationsAfterSubmitAreIgnored(t *testing.T) {
	c := newController(t)
	c.SelectOption("1", "2")
	c.GoTo(1)
	c.Submit(context.Background())

	if c.SelectOption("1", "3") {
		t.Error("SelectOption applied after submit")
	}
	if c.SetTextAnswer("4", "object") {
		t.Error("SetTextAnswer applied after submit")
	}
	if got := c.GoTo(3); got != 1 {
		t.Errorf("GoTo after submit moved pointer to %d", got)
	}
	before := c.Remaining()
	c.Tick(context.Background())
	if c.Remaining() != before {
		t.Error("Tick changed the clock after submit")
	}

	a, _ := c.Answer("1")
	if a.OptionID != "2" {
		t.Errorf("answer 1 = %q, want 2", a.OptionID)
	}
}

func TestSinkFailureStillSubmits(t *testing.T) {
	sink := &recordingSink{err: errors.New("store down")}
	c := newController(t, WithSink(sink))

	c.Submit(context.Background())
	if got := c.State(); got != StateSubmitted {
		t.Fatalf("state = %s, want %s", got, StateSubmitted)
	}
}

func TestMutationsDuringSubmittingAreIgnored(t *testing.T) {
	var c *Controller
	var during State
	var applied bool
	sink := SinkFunc(func(ctx context.Context, r Result) error {
		during = c.State()
		applied = c.SelectOption("1", "1")
		return nil
	})
	c = newController(t, WithSink(sink))
	c.Submit(context.Background())

	if during != StateSubmitting {
		t.Fatalf("state inside sink = %s, want %s", during, StateSubmitting)
	}
	if applied {
		t.Fatal("selection applied while submitting")
	}
}

func TestAnswerHook(t *testing.T) {
	var got []model.Answer
	c := newController(t, WithAnswerHook(func(a model.Answer) { got = append(got, a) }))

	c.SelectOption("1", "3")
	c.SelectOption("1", "9") // ignored
	c.SetTextAnswer("4", "object")

	if len(got) != 2 {
		t.Fatalf("hook called %d times, want 2", len(got))
	}
	if got[0].QuestionID != "1" || got[0].OptionID != "3" {
		t.Errorf("first change = %+v", got[0])
	}
	if got[1].QuestionID != "4" || got[1].Text != "object" {
		t.Errorf("second change = %+v", got[1])
	}
}

func TestRestore(t *testing.T) {
	c := newController(t, WithRestore(Restore{
		Answers: []model.Answer{
			{QuestionID: "1", OptionID: "3"},
			{QuestionID: "2", OptionID: "7"}, // unknown option
			{QuestionID: "4", Text: "object"},
			{QuestionID: "42", Text: "stray"},
		},
		Index:     12,
		Remaining: 99999,
	}))

	if c.Index() != 4 {
		t.Errorf("index = %d, want 4", c.Index())
	}
	if c.Remaining() != 3600 {
		t.Errorf("remaining = %d, want 3600", c.Remaining())
	}
	if !c.IsAnswered("1") || !c.IsAnswered("4") {
		t.Error("restored answers missing")
	}
	if c.IsAnswered("2") {
		t.Error("answer with unknown option should be dropped")
	}
}

func TestRestoreExpiredClockSubmitsOnNextTick(t *testing.T) {
	sink := &recordingSink{}
	c := newController(t, WithSink(sink), WithRestore(Restore{Remaining: -20}))

	if c.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", c.Remaining())
	}
	c.Tick(context.Background())
	if c.State() != StateSubmitted || sink.count() != 1 {
		t.Fatalf("state = %s, sink calls = %d", c.State(), sink.count())
	}
}

func TestSnapshot(t *testing.T) {
	c := newController(t)
	c.SelectOption("1", "3")
	c.SetTextAnswer("5", "a closure")
	c.GoTo(1)

	s := c.Snapshot()
	if s.AnsweredCount != 2 {
		t.Errorf("answered = %d, want 2", s.AnsweredCount)
	}
	if !s.Answered["1"] || s.Answered["2"] || !s.Answered["5"] {
		t.Errorf("answered map = %v", s.Answered)
	}
	if s.ProgressPercent != 40 {
		t.Errorf("progress = %v, want 40", s.ProgressPercent)
	}
	if s.TimeRunningLow {
		t.Error("clock should not be low at the start")
	}

	s.Answers[0].OptionID = "1"
	if a, _ := c.Answer("1"); a.OptionID != "3" {
		t.Error("snapshot must not alias controller state")
	}
}

func TestRunDrivesTicksUntilSubmitted(t *testing.T) {
	def := demo.JavaScriptFundamentals()
	def.TimeLimitMinutes = 1
	sink := &recordingSink{}
	c, err := New(def, WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	ticks := make(chan time.Time)
	exited := make(chan struct{})
	go func() {
		Run(context.Background(), c, ticks)
		close(exited)
	}()

	for i := 0; i < 60; i++ {
		ticks <- time.Now()
	}

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after the session was submitted")
	}
	if c.State() != StateSubmitted || sink.count() != 1 {
		t.Fatalf("state = %s, sink calls = %d", c.State(), sink.count())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	go func() {
		Run(ctx, c, make(chan time.Time))
		close(exited)
	}()

	cancel()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit on cancel")
	}
	if c.State() != StateActive {
		t.Fatalf("state = %s, want %s", c.State(), StateActive)
	}
}

func TestTimerStop(t *testing.T) {
	c := newController(t)
	timer := StartTimer(context.Background(), c, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	timer.Stop()

	after := c.Remaining()
	time.Sleep(20 * time.Millisecond)
	if c.Remaining() != after {
		t.Fatal("clock kept running after Stop")
	}
	if after >= 3600 {
		t.Fatal("timer never ticked")
	}
}
