// Package storetest provides in-memory implementations of the storage and
// cache capabilities used by the services, for tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/cache"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
)

type key struct {
	examID uuid.UUID
	userID int
}

// Users is an in-memory UserStore.
type Users struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*model.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[int]*model.User)}
}

func (f *Users) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.Email = strings.ToLower(u.Email)
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Users) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// Exams is an in-memory ExamStore.
type Exams struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.Exam
}

// NewExams returns an Exams holding copies of seed.
func NewExams(seed ...*model.Exam) *Exams {
	f := &Exams{exams: make(map[uuid.UUID]*model.Exam)}
	for _, e := range seed {
		f.exams[e.ID] = e.Clone()
	}
	return f
}

func (f *Exams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e.Clone(), nil
}

func (f *Exams) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.exams[e.ID] = e.Clone()
	return nil
}

func (f *Exams) Update(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exams[e.ID]; !ok {
		return repository.ErrNotFound
	}
	f.exams[e.ID] = e.Clone()
	return nil
}

func (f *Exams) UpdateStatus(_ context.Context, id uuid.UUID, status model.ExamStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *Exams) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.exams, id)
	return nil
}

func (f *Exams) List(_ context.Context, filter model.ExamFilter) ([]model.ExamSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ExamSummary{}
	for _, e := range f.exams {
		if filter.AuthorID != 0 && e.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, model.ExamSummary{
			ID:            e.ID,
			Title:         e.Title,
			Description:   e.Description,
			Status:        e.Status,
			QuestionCount: len(e.Questions),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *Exams) ListPublished(_ context.Context) ([]model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Exam{}
	for _, e := range f.exams {
		if e.Status == model.ExamStatusPublished {
			out = append(out, *e.Clone())
		}
	}
	return out, nil
}

// QuestionBanks is an in-memory QuestionBankStore.
type QuestionBanks struct {
	mu    sync.Mutex
	banks map[uuid.UUID]*model.QuestionBank
}

// NewQuestionBanks returns a QuestionBanks holding copies of seed.
func NewQuestionBanks(seed ...*model.QuestionBank) *QuestionBanks {
	f := &QuestionBanks{banks: make(map[uuid.UUID]*model.QuestionBank)}
	for _, b := range seed {
		f.banks[b.ID] = b.Clone()
	}
	return f
}

func (f *QuestionBanks) GetByID(_ context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.banks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b.Clone(), nil
}

func (f *QuestionBanks) Create(_ context.Context, b *model.QuestionBank) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.banks[b.ID] = b.Clone()
	return nil
}

func (f *QuestionBanks) Update(_ context.Context, b *model.QuestionBank) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.banks[b.ID]; !ok {
		return repository.ErrNotFound
	}
	f.banks[b.ID] = b.Clone()
	return nil
}

func (f *QuestionBanks) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.banks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.banks, id)
	return nil
}

// sorted returns the banks ordered by category, then name.
func (f *QuestionBanks) sorted() []*model.QuestionBank {
	out := make([]*model.QuestionBank, 0, len(f.banks))
	for _, b := range f.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (f *QuestionBanks) List(_ context.Context, filter model.QuestionBankFilter) ([]model.QuestionBankSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	search := strings.ToLower(filter.Search)

	var all []model.QuestionBankSummary
	for _, b := range f.sorted() {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Name), search) &&
			!strings.Contains(strings.ToLower(b.Description), search) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(filter.Category, b.Category) {
			continue
		}
		all = append(all, model.QuestionBankSummary{
			ID:            b.ID,
			Name:          b.Name,
			Category:      b.Category,
			Description:   b.Description,
			QuestionCount: len(b.Questions),
			UpdatedAt:     b.UpdatedAt,
		})
	}

	start := min(max(filter.Page-1, 0)*filter.PerPage, len(all))
	end := min(start+filter.PerPage, len(all))
	return append([]model.QuestionBankSummary{}, all[start:end]...), len(all), nil
}

func (f *QuestionBanks) ListByCategory(_ context.Context, category string) ([]model.QuestionBank, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.QuestionBank{}
	for _, b := range f.sorted() {
		if category == "" || strings.EqualFold(category, b.Category) {
			out = append(out, *b.Clone())
		}
	}
	return out, nil
}

func (f *QuestionBanks) Categories(_ context.Context) ([]model.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.CategoryCount{}
	for _, b := range f.sorted() {
		if n := len(out); n > 0 && out[n-1].Category == b.Category {
			out[n-1].Banks++
			out[n-1].QuestionCount += len(b.Questions)
			continue
		}
		out = append(out, model.CategoryCount{Category: b.Category, Banks: 1, QuestionCount: len(b.Questions)})
	}
	return out, nil
}

// Sessions is an in-memory SessionStore.
type Sessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.ExamSession
	answers  map[uuid.UUID][]model.Answer
	results  map[uuid.UUID]*model.ExamResult

	// Now stamps StartedAt on Create.
	Now func() time.Time
	// FailBulk makes the batch writes fail so callers fall back to single rows.
	FailBulk bool
}

// ErrBulk is returned by batch writes when FailBulk is set.
var ErrBulk = errors.New("storetest: bulk write failed")

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]*model.ExamSession),
		answers:  make(map[uuid.UUID][]model.Answer),
		results:  make(map[uuid.UUID]*model.ExamResult),
		Now:      time.Now,
	}
}

// Add stores a session row as is.
func (f *Sessions) Add(s *model.ExamSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
}

// SetAnswers replaces the persisted answers of a session.
func (f *Sessions) SetAnswers(sessionID uuid.UUID, answers []model.Answer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[sessionID] = append([]model.Answer(nil), answers...)
}

func (f *Sessions) GetByExamAndUser(_ context.Context, examID uuid.UUID, userID int) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ExamID == examID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Sessions) Create(_ context.Context, s *model.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sessions {
		if existing.ExamID == s.ExamID && existing.UserID == s.UserID {
			return repository.ErrDuplicate
		}
	}
	s.ID = uuid.New()
	s.StartedAt = f.Now()
	s.Status = model.SessionStatusInProgress
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *Sessions) ListByUser(_ context.Context, userID int) ([]model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ExamSession{}
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *Sessions) ListAnswers(_ context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Answer(nil), f.answers[sessionID]...), nil
}

func (f *Sessions) GetResult(_ context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.sessions {
		if s.ExamID == examID && s.UserID == userID {
			if res, ok := f.results[id]; ok {
				return cloneResult(res), nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Sessions) SaveResult(_ context.Context, res *model.ExamResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[res.SessionID]
	if !ok {
		return repository.ErrNotFound
	}
	score := res.Score
	finished := res.SubmittedAt
	s.Status = model.SessionStatusCompleted
	s.FinalScore = &score
	s.FinishedAt = &finished
	f.results[res.SessionID] = cloneResult(res)
	return nil
}

func (f *Sessions) SaveResults(ctx context.Context, results []*model.ExamResult) error {
	if f.FailBulk {
		return ErrBulk
	}
	for _, res := range results {
		if err := f.SaveResult(ctx, res); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (f *Sessions) UpsertAnswer(_ context.Context, sessionID uuid.UUID, a model.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.answers[sessionID]
	for i := range list {
		if list[i].QuestionID == a.QuestionID {
			list[i] = a
			return nil
		}
	}
	f.answers[sessionID] = append(list, a)
	return nil
}

func (f *Sessions) SetQuestionOrder(_ context.Context, sessionID uuid.UUID, order []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	s.QuestionOrder = append([]string(nil), order...)
	return nil
}

func (f *Sessions) SetQuestionOrders(ctx context.Context, orders []model.QuestionOrder) error {
	if f.FailBulk {
		return ErrBulk
	}
	for _, o := range orders {
		if err := f.SetQuestionOrder(ctx, o.SessionID, o.Order); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (f *Sessions) ListResultsByExam(_ context.Context, examID uuid.UUID, page, perPage int) ([]model.ResultSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ResultSummary{}
	for _, s := range f.sessions {
		if s.ExamID == examID {
			out = append(out, model.ResultSummary{UserID: s.UserID, FinalScore: s.FinalScore, Status: s.Status, StartedAt: s.StartedAt})
		}
	}
	total := len(out)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	return out[start:end], total, nil
}

func cloneResult(res *model.ExamResult) *model.ExamResult {
	raw, _ := json.Marshal(res)
	var out model.ExamResult
	_ = json.Unmarshal(raw, &out)
	return &out
}

// Monitor serves fixed participants and answered counts.
type Monitor struct {
	Participants []model.Participant
	Counts       map[int]int
	CountErr     error
}

func (f *Monitor) ListParticipants(_ context.Context, _ uuid.UUID) ([]model.Participant, error) {
	return append([]model.Participant(nil), f.Participants...), nil
}

func (f *Monitor) GetAnsweredCounts(_ context.Context, _ uuid.UUID) (map[int]int, error) {
	return f.Counts, f.CountErr
}

// ─── Cache ─────────────────────────────────────────────────────────────────

type queued struct {
	queue   string
	payload any
}

type published struct {
	channel string
	payload any
}

// Cache implements LoginCache, ExamCache and AttemptCache in memory.
type Cache struct {
	mu        sync.Mutex
	logins    map[int]string
	exams     map[uuid.UUID]*model.Exam
	starts    map[key]time.Time
	orders    map[key][]string
	answers   map[key]map[string]model.Answer
	cursors   map[key]int
	results   map[key]*model.ExamResult
	queued    []queued
	published []published
	subs      map[string][]chan string
}

func NewCache() *Cache {
	return &Cache{
		logins:  make(map[int]string),
		exams:   make(map[uuid.UUID]*model.Exam),
		starts:  make(map[key]time.Time),
		orders:  make(map[key][]string),
		answers: make(map[key]map[string]model.Answer),
		cursors: make(map[key]int),
		results: make(map[key]*model.ExamResult),
		subs:    make(map[string][]chan string),
	}
}

func (f *Cache) SetLogin(_ context.Context, userID int, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[userID] = jti
	return nil
}

func (f *Cache) GetLogin(_ context.Context, userID int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jti, ok := f.logins[userID]
	if !ok {
		return "", cache.ErrMiss
	}
	return jti, nil
}

func (f *Cache) DeleteLogin(_ context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.logins, userID)
	return nil
}

func (f *Cache) GetExam(_ context.Context, examID uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[examID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return e.Clone(), nil
}

func (f *Cache) SetExam(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[e.ID] = e.Clone()
	return nil
}

func (f *Cache) DeleteExam(_ context.Context, examID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.exams, examID)
	return nil
}

func (f *Cache) SetAttempt(_ context.Context, examID uuid.UUID, userID int, _ uuid.UUID, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts[key{examID, userID}] = startedAt
	return nil
}

func (f *Cache) GetSessionStart(_ context.Context, examID uuid.UUID, userID int) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.starts[key{examID, userID}]
	if !ok {
		return time.Time{}, cache.ErrMiss
	}
	return t, nil
}

func (f *Cache) SetQuestionOrder(_ context.Context, examID uuid.UUID, userID int, order []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[key{examID, userID}] = append([]string(nil), order...)
	return nil
}

func (f *Cache) GetQuestionOrder(_ context.Context, examID uuid.UUID, userID int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[key{examID, userID}]
	if !ok {
		return nil, cache.ErrMiss
	}
	return append([]string(nil), order...), nil
}

func (f *Cache) SaveAnswer(_ context.Context, examID uuid.UUID, userID int, a model.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{examID, userID}
	if f.answers[k] == nil {
		f.answers[k] = make(map[string]model.Answer)
	}
	f.answers[k][a.QuestionID] = a
	return nil
}

func (f *Cache) GetAnswers(_ context.Context, examID uuid.UUID, userID int) ([]model.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Answer{}
	for _, a := range f.answers[key{examID, userID}] {
		out = append(out, a)
	}
	return out, nil
}

func (f *Cache) SetCursor(_ context.Context, examID uuid.UUID, userID int, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[key{examID, userID}] = index
	return nil
}

func (f *Cache) GetCursor(_ context.Context, examID uuid.UUID, userID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.cursors[key{examID, userID}]
	if !ok {
		return 0, cache.ErrMiss
	}
	return n, nil
}

func (f *Cache) SetResult(_ context.Context, res *model.ExamResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[key{res.ExamID, res.UserID}] = cloneResult(res)
	return nil
}

func (f *Cache) GetResult(_ context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.results[key{examID, userID}]
	if !ok {
		return nil, cache.ErrMiss
	}
	return cloneResult(res), nil
}

// ClearAnswers drops the cached answers of one attempt.
func (f *Cache) ClearAnswers(_ context.Context, examID uuid.UUID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.answers, key{examID, userID})
	return nil
}

// Pop removes the oldest payload of queue as JSON, polling until timeout.
func (f *Cache) Pop(ctx context.Context, queue string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		if raw, ok, err := f.popNow(queue); ok || err != nil {
			return raw, err
		}
		if time.Now().After(deadline) {
			return "", cache.ErrMiss
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (f *Cache) popNow(queue string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.queued {
		if q.queue != queue {
			continue
		}
		f.queued = append(f.queued[:i], f.queued[i+1:]...)
		raw, err := json.Marshal(q.payload)
		return string(raw), true, err
	}
	return "", false, nil
}

// Push appends an encoded payload to queue.
func (f *Cache) Push(_ context.Context, queue, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, queued{queue: queue, payload: json.RawMessage(raw)})
	return nil
}

func (f *Cache) Enqueue(_ context.Context, queue string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, queued{queue: queue, payload: payload})
	return nil
}

func (f *Cache) Publish(_ context.Context, channel string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{channel: channel, payload: payload})
	if subs := f.subs[channel]; len(subs) > 0 {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		for _, ch := range subs {
			select {
			case ch <- string(raw):
			default:
			}
		}
	}
	return nil
}

// Subscribe receives the JSON of every later Publish on channel.
func (f *Cache) Subscribe(_ context.Context, channel string) (<-chan string, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan string, 16)
	f.subs[channel] = append(f.subs[channel], ch)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			subs := f.subs[channel]
			for i, c := range subs {
				if c == ch {
					f.subs[channel] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

// Subscribers reports how many subscriptions are open on channel.
func (f *Cache) Subscribers(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[channel])
}

// QueueLengths counts the payloads pushed to each queue.
func (f *Cache) QueueLengths(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64)
	for _, q := range f.queued {
		out[q.queue]++
	}
	return out, nil
}

// Queued returns the payloads pushed to queue, oldest first.
func (f *Cache) Queued(queue string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, q := range f.queued {
		if q.queue == queue {
			out = append(out, q.payload)
		}
	}
	return out
}

// Published returns the payloads published on channel, or on every channel
// when channel is empty.
func (f *Cache) Published(channel string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, p := range f.published {
		if channel == "" || p.channel == channel {
			out = append(out, p.payload)
		}
	}
	return out
}

// Dashboard is a canned DashboardStore. Err fails every call.
type Dashboard struct {
	Summary  model.DashboardSummary
	Statuses map[model.ExamStatus]int
	Open     []model.OpenExam
	Recent   []model.RecentAttempt
	Err      error
	Limits   []int
}

func (f *Dashboard) GetSummaryCounts(_ context.Context) (model.DashboardSummary, error) {
	return f.Summary, f.Err
}

func (f *Dashboard) GetExamStatusCounts(_ context.Context) (map[model.ExamStatus]int, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[model.ExamStatus]int, len(f.Statuses))
	for k, v := range f.Statuses {
		out[k] = v
	}
	return out, nil
}

func (f *Dashboard) GetOpenExams(_ context.Context, limit int) ([]model.OpenExam, error) {
	f.Limits = append(f.Limits, limit)
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.OpenExam{}, f.Open...), nil
}

func (f *Dashboard) GetRecentAttempts(_ context.Context, limit int) ([]model.RecentAttempt, error) {
	f.Limits = append(f.Limits, limit)
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.RecentAttempt{}, f.Recent...), nil
}
