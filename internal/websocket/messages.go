package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client to server control messages
const (
	MessageTypeListeningStart MessageType = "listening_start"
	MessageTypeListeningEnd   MessageType = "listening_end"
	MessageTypeClose          MessageType = "close"
	MessageTypePing           MessageType = "ping"
)

// Server to client events
const (
	MessageTypeTranscript    MessageType = "transcript"
	MessageTypeSpeakingStart MessageType = "speaking_start"
	MessageTypeSpeakingEnd   MessageType = "speaking_end"
	MessageTypeIdle          MessageType = "idle"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

// Error codes carried by error events
const (
	ErrorCodeInvalidMessage      = "invalid_message"
	ErrorCodeNotListening        = "not_listening"
	ErrorCodeAudioTooLarge       = "audio_too_large"
	ErrorCodeTranscriptionFailed = "transcription_failed"
	ErrorCodeReplyFailed         = "reply_failed"
	ErrorCodeSpeechFailed        = "speech_failed"
)

// ControlMessage is a JSON text frame sent by the client
type ControlMessage struct {
	Type       MessageType `json:"type"`
	Language   string      `json:"language,omitempty"`
	SampleRate int         `json:"sample_rate,omitempty"`
	Encoding   string      `json:"encoding,omitempty"`
}

var validEncodings = map[string]bool{
	"WEBM_OPUS": true, "OGG_OPUS": true, "LINEAR16": true, "FLAC": true, "MULAW": true,
}

// ParseControlMessage decodes and validates a text frame
func ParseControlMessage(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch msg.Type {
	case MessageTypeListeningStart:
		if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
			return nil, fmt.Errorf("sample_rate must be between 8000 and 48000")
		}
		if msg.Encoding != "" && !validEncodings[msg.Encoding] {
			return nil, fmt.Errorf("unsupported encoding: %s", msg.Encoding)
		}
	case MessageTypeListeningEnd, MessageTypeClose, MessageTypePing:
	case "":
		return nil, fmt.Errorf("message missing type field")
	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
	return &msg, nil
}

// Event is a JSON text frame sent to the client
type Event struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp int64       `json:"timestamp"`

	Text  string `json:"text,omitempty"`
	Reply string `json:"reply,omitempty"`

	Code    string `json:"error_code,omitempty"`
	Message string `json:"message,omitempty"`
}

func newEvent(t MessageType, sessionID string) Event {
	return Event{Type: t, SessionID: sessionID, Timestamp: time.Now().Unix()}
}

// NewTranscriptEvent reports what the user said
func NewTranscriptEvent(sessionID, text string) Event {
	e := newEvent(MessageTypeTranscript, sessionID)
	e.Text = text
	return e
}

// NewSpeakingStartEvent announces the reply whose audio follows as binary frames
func NewSpeakingStartEvent(sessionID, reply string) Event {
	e := newEvent(MessageTypeSpeakingStart, sessionID)
	e.Reply = reply
	return e
}

// NewErrorEvent creates a standardized error event
func NewErrorEvent(sessionID, code, message string) Event {
	e := newEvent(MessageTypeError, sessionID)
	e.Code = code
	e.Message = message
	return e
}
