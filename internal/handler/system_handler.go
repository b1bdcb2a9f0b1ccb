package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
)

const metricsInterval = 7 * time.Second

// QueueStats reports the backlog of the persistence queues.
type QueueStats interface {
	QueueLengths(ctx context.Context) (map[string]int64, error)
}

// SystemHandler reports runtime health, worker backlog and live attempts.
type SystemHandler struct {
	queues         QueueStats
	sessionService *service.ExamSessionService
	startTime      time.Time
	log            zerolog.Logger
}

func NewSystemHandler(queues QueueStats, sessionService *service.ExamSessionService, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		queues:         queues,
		sessionService: sessionService,
		startTime:      time.Now(),
		log:            log.With().Str("component", "system_handler").Logger(),
	}
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	// Exams
	ActiveAttempts int `json:"active_attempts"`

	// Worker Queues
	QueueAnswers       int64 `json:"queue_answers"`
	QueueResults       int64 `json:"queue_results"`
	QueueQuestionOrder int64 `json:"queue_question_order"`
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":          "ok",
		"uptime":          formatUptime(time.Since(h.startTime)),
		"active_attempts": h.sessionService.ActiveCount(),
	})
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:      time.Now().Unix(),
		Uptime:         formatUptime(time.Since(h.startTime)),
		Goroutines:     runtime.NumGoroutine(),
		HeapAlloc:      ms.HeapAlloc,
		HeapSys:        ms.HeapSys,
		NumGC:          ms.NumGC,
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		ActiveAttempts: h.sessionService.ActiveCount(),
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	if lengths, err := h.queues.QueueLengths(ctx); err == nil {
		m.QueueAnswers = lengths[config.WorkerKey.PersistAnswersQueue]
		m.QueueResults = lengths[config.WorkerKey.PersistResultsQueue]
		m.QueueQuestionOrder = lengths[config.WorkerKey.PersistQuestionOrderQueue]
	} else {
		h.log.Warn().Err(err).Msg("Failed to read queue lengths")
	}

	return m
}

// formatUptime renders d as "3d 4h 5m".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
