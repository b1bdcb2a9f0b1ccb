package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/middleware"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
	"github.com/stemsi/examroom/internal/session"
	ws "github.com/stemsi/examroom/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a running attempt to the exam page.
type WSHandler struct {
	sessionService *service.ExamSessionService
	tick           time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. tick is how often timer events are sent.
func NewWSHandler(sessionService *service.ExamSessionService, tick time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		tick:           tick,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/student/exams/:exam_id/stream?token=
// Sends the attempt state on connect, a timer event every second and the
// graded result once the attempt is submitted, by the student or by the clock.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	userID := claims.UserID

	// Refuse before upgrading so the client sees a normal HTTP error.
	state, err := h.sessionService.State(c.Request.Context(), examID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	done, err := h.sessionService.Done(c.Request.Context(), examID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close(websocket.CloseNormalClosure, "")

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.Send(ws.EventState, state); err != nil {
		return
	}

	go h.pushLoop(ctx, conn, wsLog, examID, userID, done)

	for {
		var req ws.Request
		if err := conn.Read(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		h.handle(ctx, conn, wsLog, examID, userID, &req)
	}
}

// pushLoop owns the server-initiated events: timer ticks, keepalive pings and
// the final submitted event.
func (h *WSHandler) pushLoop(ctx context.Context, conn *ws.Conn, log zerolog.Logger, examID uuid.UUID, userID int, done <-chan struct{}) {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()
	ping := time.NewTicker(ws.PingPeriod())
	defer ping.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return

		case <-done:
			result, err := h.sessionService.Result(ctx, examID, userID)
			if err != nil {
				log.Warn().Err(err).Msg("Submitted attempt has no result")
				_ = conn.Send(ws.EventSubmitted, nil)
			} else {
				_ = conn.Send(ws.EventSubmitted, gin.H{"result": result})
			}
			_ = conn.Close(websocket.CloseNormalClosure, "exam submitted")
			return

		case <-ticker.C:
			state, err := h.sessionService.State(ctx, examID, userID)
			if err != nil || state.State != session.StateActive || state.RemainingSeconds == last {
				continue
			}
			last = state.RemainingSeconds
			if err := conn.Send(ws.EventTimer, ws.TimerPayload{
				RemainingSeconds: state.RemainingSeconds,
				TimeRunningLow:   state.TimeRunningLow,
			}); err != nil {
				return
			}

		case <-ping.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) handle(ctx context.Context, conn *ws.Conn, log zerolog.Logger, examID uuid.UUID, userID int, req *ws.Request) {
	var (
		state session.Snapshot
		err   error
	)

	switch req.Action {
	case ws.ActionSelectOption:
		optionID := req.OptionID
		state, err = h.sessionService.Answer(ctx, examID, userID, req.QuestionID, &model.AnswerRequest{OptionID: &optionID})
	case ws.ActionSetText:
		if req.Text == nil {
			_ = conn.SendError(string(response.ErrValidation), "text is required")
			return
		}
		state, err = h.sessionService.Answer(ctx, examID, userID, req.QuestionID, &model.AnswerRequest{Text: req.Text})
	case ws.ActionGoTo:
		if req.Index == nil {
			_ = conn.SendError(string(response.ErrValidation), "index is required")
			return
		}
		state, err = h.sessionService.Navigate(ctx, examID, userID, *req.Index)
	case ws.ActionState:
		state, err = h.sessionService.State(ctx, examID, userID)
	case ws.ActionSubmit:
		// The push loop reports the result once the attempt is done.
		if _, err := h.sessionService.Submit(ctx, examID, userID); err != nil {
			h.sendError(conn, err)
		}
		return
	case ws.ActionPing:
		_ = conn.Send(ws.EventPong, nil)
		return
	default:
		log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
		_ = conn.SendError(string(response.ErrInvalidPayload), "unknown action: "+string(req.Action))
		return
	}

	if err != nil {
		h.sendError(conn, err)
		return
	}
	_ = conn.Send(ws.EventState, state)
}

func (h *WSHandler) sendError(conn *ws.Conn, err error) {
	_, code := classify(err)
	_ = conn.SendError(string(code), response.GetMessage(code))
}
