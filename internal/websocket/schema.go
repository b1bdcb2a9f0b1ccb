// Package websocket defines the live exam protocol and a connection wrapper
// that is safe for one reader and many writers.
package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelectOption Action = "select_option"
	ActionSetText      Action = "set_text"
	ActionGoTo         Action = "goto"
	ActionSubmit       Action = "submit"
	ActionState        Action = "state"
	ActionPing         Action = "ping"
)

// Request is any client message. Which fields are read depends on Action.
type Request struct {
	Action     Action  `json:"action"`
	QuestionID string  `json:"question_id,omitempty"`
	OptionID   string  `json:"option_id,omitempty"`
	Text       *string `json:"text,omitempty"`
	Index      *int    `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTimer     Event = "timer"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// Message is the envelope of every server message.
type Message struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

// TimerPayload is sent once per controller second.
type TimerPayload struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	TimeRunningLow   bool `json:"time_running_low"`
}

// ErrorPayload reports a rejected action. The connection stays open.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
