// Package cache is the Redis side of the exam backend: login JTIs, the exam
// definition cache, per-attempt state, graded results, persistence queues and
// the monitor channel.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/model"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// attemptTTL bounds how long per-attempt keys outlive the attempt.
const attemptTTL = 7 * 24 * time.Hour

// Redis implements the service layer cache on a go-redis client.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps a connected client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Client exposes the underlying client for pub/sub subscribers.
func (r *Redis) Client() *redis.Client {
	return r.rdb
}

// ─── Login sessions ────────────────────────────────────────────────────────

func (r *Redis) SetLogin(ctx context.Context, userID int, jti string, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.LoginKey(userID), jti, ttl).Err()
}

func (r *Redis) GetLogin(ctx context.Context, userID int) (string, error) {
	v, err := r.rdb.Get(ctx, config.CacheKey.LoginKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *Redis) DeleteLogin(ctx context.Context, userID int) error {
	return r.rdb.Del(ctx, config.CacheKey.LoginKey(userID)).Err()
}

// ─── Exam definitions ──────────────────────────────────────────────────────

func (r *Redis) GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.ExamDefinitionKey(examID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var e model.Exam
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode cached exam: %w", err)
	}
	return &e, nil
}

func (r *Redis) SetExam(ctx context.Context, e *model.Exam) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, config.CacheKey.ExamDefinitionKey(e.ID.String()), raw, 0).Err()
}

func (r *Redis) DeleteExam(ctx context.Context, examID uuid.UUID) error {
	return r.rdb.Del(ctx, config.CacheKey.ExamDefinitionKey(examID.String())).Err()
}

// ─── Attempt state ─────────────────────────────────────────────────────────

// SetAttempt records the id and start time of an attempt.
func (r *Redis) SetAttempt(ctx context.Context, examID uuid.UUID, userID int, sessionID uuid.UUID, startedAt time.Time) error {
	eid := examID.String()
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.SessionStartKey(eid, userID), startedAt.Unix(), attemptTTL)
	pipe.Set(ctx, config.CacheKey.SessionIDKey(eid, userID), sessionID.String(), attemptTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetSessionStart returns the cached start time of an attempt.
func (r *Redis) GetSessionStart(ctx context.Context, examID uuid.UUID, userID int) (time.Time, error) {
	val, err := r.rdb.Get(ctx, config.CacheKey.SessionStartKey(examID.String(), userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time format in cache: %w", err)
	}
	return time.Unix(unix, 0), nil
}

func (r *Redis) SetQuestionOrder(ctx context.Context, examID uuid.UUID, userID int, order []string) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, config.CacheKey.QuestionOrderKey(examID.String(), userID), raw, attemptTTL).Err()
}

func (r *Redis) GetQuestionOrder(ctx context.Context, examID uuid.UUID, userID int) ([]string, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.QuestionOrderKey(examID.String(), userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var order []string
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode question order: %w", err)
	}
	return order, nil
}

// SaveAnswer stores one answer in the attempt's answers hash.
func (r *Redis) SaveAnswer(ctx context.Context, examID uuid.UUID, userID int, a model.Answer) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	key := config.CacheKey.AnswersKey(examID.String(), userID)
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, key, a.QuestionID, raw)
	pipe.Expire(ctx, key, attemptTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetAnswers returns every cached answer of an attempt, in no particular order.
func (r *Redis) GetAnswers(ctx context.Context, examID uuid.UUID, userID int) ([]model.Answer, error) {
	m, err := r.rdb.HGetAll(ctx, config.CacheKey.AnswersKey(examID.String(), userID)).Result()
	if err != nil {
		return nil, err
	}
	answers := make([]model.Answer, 0, len(m))
	for _, raw := range m {
		var a model.Answer
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			continue
		}
		answers = append(answers, a)
	}
	return answers, nil
}

// ClearAnswers drops the answers hash of one attempt.
func (r *Redis) ClearAnswers(ctx context.Context, examID uuid.UUID, userID int) error {
	return r.rdb.Del(ctx, config.CacheKey.AnswersKey(examID.String(), userID)).Err()
}

func (r *Redis) SetCursor(ctx context.Context, examID uuid.UUID, userID int, index int) error {
	return r.rdb.Set(ctx, config.CacheKey.CursorKey(examID.String(), userID), index, attemptTTL).Err()
}

func (r *Redis) GetCursor(ctx context.Context, examID uuid.UUID, userID int) (int, error) {
	n, err := r.rdb.Get(ctx, config.CacheKey.CursorKey(examID.String(), userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	return n, err
}

// ─── Results ───────────────────────────────────────────────────────────────

func (r *Redis) SetResult(ctx context.Context, res *model.ExamResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, config.CacheKey.ResultKey(res.ExamID.String(), res.UserID), raw, attemptTTL).Err()
}

func (r *Redis) GetResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.ResultKey(examID.String(), userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var res model.ExamResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, nil
}

// ─── Queues and pub/sub ────────────────────────────────────────────────────

// Enqueue JSON-encodes payload and appends it to a worker queue.
func (r *Redis) Enqueue(ctx context.Context, queue string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.rdb.RPush(ctx, queue, raw).Err()
}

// Pop blocks up to timeout for the head of a worker queue. ErrMiss means the
// queue stayed empty.
func (r *Redis) Pop(ctx context.Context, queue string, timeout time.Duration) (string, error) {
	item, err := r.rdb.BLPop(ctx, timeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	if len(item) < 2 {
		return "", ErrMiss
	}
	return item[1], nil
}

// Push appends an already encoded payload, used to requeue failed jobs.
func (r *Redis) Push(ctx context.Context, queue, raw string) error {
	return r.rdb.RPush(ctx, queue, raw).Err()
}

// Publish JSON-encodes payload onto a pub/sub channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, channel, raw).Err()
}

// Subscribe forwards the payloads published on channel until cancel is called
// or ctx ends.
func (r *Redis) Subscribe(ctx context.Context, channel string) (<-chan string, func()) {
	ps := r.rdb.Subscribe(ctx, channel)
	out := make(chan string)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- msg.Payload:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
}

// QueueLengths reports the backlog of every persistence queue in one round trip.
func (r *Redis) QueueLengths(ctx context.Context) (map[string]int64, error) {
	queues := []string{
		config.WorkerKey.PersistAnswersQueue,
		config.WorkerKey.PersistResultsQueue,
		config.WorkerKey.PersistQuestionOrderQueue,
	}
	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(queues))
	for i, q := range queues {
		cmds[i] = pipe.LLen(ctx, q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(queues))
	for i, q := range queues {
		out[q] = cmds[i].Val()
	}
	return out, nil
}
