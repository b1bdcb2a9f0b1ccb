package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/service"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// Feed subscribes to a pub/sub channel. *cache.Redis implements it.
type Feed interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func())
}

// MonitorHandler streams live exam activity to admins over SSE.
type MonitorHandler struct {
	feed           Feed
	examService    *service.ExamService
	monitorService *service.MonitorService
	log            zerolog.Logger

	refresh   time.Duration
	keepAlive time.Duration
}

func NewMonitorHandler(
	feed Feed,
	examService *service.ExamService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		feed:           feed,
		examService:    examService,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		refresh:        refreshInterval,
		keepAlive:      keepAliveInterval,
	}
}

// MonitorExamSSE godoc
// GET /api/v1/admin/exams/:exam_id/monitor
// Sends a snapshot of every participant, then forwards joined, answered and
// submitted events as they happen. A fresh snapshot follows activity every
// refresh interval.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		fail(c, err)
		return
	}

	reqCtx := c.Request.Context()

	// Subscribe before the snapshot so no event falls between the two.
	events, unsubscribe := h.feed.Subscribe(reqCtx, config.CacheKey.ExamMonitorChannel(examID.String()))
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.sendSnapshot(c, reqCtx, exam)

	keepAliveTicker := time.NewTicker(h.keepAlive)
	defer keepAliveTicker.Stop()
	refreshTicker := time.NewTicker(h.refresh)
	defer refreshTicker.Stop()

	// Skip refreshes while nothing happens.
	dirty := false

	h.log.Info().Str("exam_id", examID.String()).Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.String()).Msg("Admin disconnected from live monitor SSE")
			return

		case payload, ok := <-events:
			if !ok {
				return
			}
			// Forward raw JSON, no decoding needed.
			c.Writer.Write([]byte("event: activity\ndata: "))
			c.Writer.Write([]byte(payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
			dirty = true

		case <-refreshTicker.C:
			if !dirty {
				continue
			}
			dirty = false
			h.sendSnapshot(c, reqCtx, exam)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte(": keepalive\n\n"))
			c.Writer.Flush()
		}
	}
}

type monitorExam struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	QuestionCount    int       `json:"question_count"`
}

// sendSnapshot writes the participant list. A failed query is logged and skipped.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, parent context.Context, exam *model.Exam) {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	snap, err := h.monitorService.Snapshot(ctx, exam.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to build monitor snapshot")
		return
	}

	c.SSEvent("snapshot", gin.H{
		"exam": monitorExam{
			ID:               exam.ID,
			Title:            exam.Title,
			TimeLimitMinutes: exam.TimeLimitMinutes,
			QuestionCount:    len(exam.Questions),
		},
		"stats": gin.H{
			"total_joined":      len(snap.Participants),
			"total_in_progress": snap.InProgress,
			"total_completed":   snap.Completed,
		},
		"participants": snap.Participants,
	})
	c.Writer.Flush()
}
