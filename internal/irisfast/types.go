package irisfast

import "strings"

// Message is one inbound chat event.
type Message struct {
	Room   string  `json:"room"`
	Msg    string  `json:"msg"`
	Sender *string `json:"sender,omitempty"`
	JSON   *struct {
		UserID string `json:"user_id,omitempty"`
	} `json:"json,omitempty"`
}

// SenderName returns the display name, or "" when absent.
func (m *Message) SenderName() string {
	if m == nil || m.Sender == nil {
		return ""
	}
	return strings.TrimSpace(*m.Sender)
}

// UserID prefers the structured id and falls back to the sender name.
func (m *Message) UserID() string {
	if m == nil {
		return ""
	}
	if m.JSON != nil && m.JSON.UserID != "" {
		return m.JSON.UserID
	}
	return m.SenderName()
}

// ReplyRequest is the body of POST /reply and of websocket reply frames.
type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

const (
	replyText  = "text"
	replyImage = "image"
)

// WebSocketState is the listener's connection state.
type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateDisconnected:
		return "disconnected"
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	}
	return "unknown"
}

// MessageCallback receives inbound messages on the listener goroutine.
type MessageCallback func(message *Message)

// StateCallback observes connection state changes.
type StateCallback func(state WebSocketState)
