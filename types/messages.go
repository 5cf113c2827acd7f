package types

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// ChatRequest represents an incoming chat turn from the frontend.
// CurrentMission is a pointer so a missing field is distinguishable from
// mission 0 during validation.
type ChatRequest struct {
	Message        string `json:"message"`
	CurrentMission *int   `json:"currentMission"`
}

// TurnOutcome represents the response to a single chat turn.
type TurnOutcome struct {
	Response         string   `json:"response"`
	MissionCompleted bool     `json:"missionCompleted"`
	NextMission      int      `json:"nextMission"`
	Suggestions      []string `json:"suggestions"`
}

// VoiceRequest represents a text-to-speech request.
type VoiceRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// VoiceResult is the normalized shape returned for every synthesis call,
// regardless of whether the upstream answered with JSON or raw audio.
type VoiceResult struct {
	AudioURL *string `json:"audioUrl"`
	Status   string  `json:"status,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// TranslateRequest represents a translation request.
type TranslateRequest struct {
	Text     string `json:"text"`
	IsKorean bool   `json:"isKorean"`
}

// TranslationResult carries a translation or, on upstream failure, a
// localized placeholder in TranslatedText plus the Error marker. Failures
// are encoded as data, never as an error channel.
type TranslationResult struct {
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	SourceLang     string `json:"sourceLang,omitempty"`
	TargetLang     string `json:"targetLang,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Expression is one entry of the fixed reference-phrase table.
type Expression struct {
	ID       string `json:"id"`
	Korean   string `json:"korean"`
	English  string `json:"english"`
	Category string `json:"category"`
}

// ExpressionsResponse is the /api/expressions payload.
type ExpressionsResponse struct {
	Core  []Expression `json:"core"`
	Saved []Expression `json:"saved"`
}

// ErrorResponse is the uniform error body for 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WebSocketMessage represents a frame sent to dev-console subscribers.
type WebSocketMessage struct {
	Type      string      `json:"type"` // "log", "error", "status", "heartbeat", "connection"
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"messageId,omitempty"`
}

// TurnLog is one event of the conversation log stream: a chat turn, a
// fallback substitution, or an upstream error.
type TurnLog struct {
	Type      string `json:"type"` // "turn", "fallback", "voice", "translate", "error"
	Mission   int    `json:"mission"`
	UserText  string `json:"userText,omitempty"`
	ReplyText string `json:"replyText,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
	MessageID string `json:"messageId,omitempty"`
	Level     string `json:"level,omitempty"` // "info", "warning", "error"
}

// Constants for stream message types
const (
	// WebSocket message types
	WSTypeLog        = "log"
	WSTypeError      = "error"
	WSTypeStatus     = "status"
	WSTypeHeartbeat  = "heartbeat"
	WSTypeConnection = "connection"

	// Turn log types
	LogTypeTurn      = "turn"
	LogTypeFallback  = "fallback"
	LogTypeVoice     = "voice"
	LogTypeTranslate = "translate"
	LogTypeError     = "error"

	// Log levels
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// NewWebSocketMessage creates a new WebSocket message
func NewWebSocketMessage(msgType string, payload interface{}) *WebSocketMessage {
	return &WebSocketMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339),
		MessageID: generateMessageID(),
	}
}

// NewTurnLog creates a new turn log entry
func NewTurnLog(logType string, mission int, userText, replyText string) *TurnLog {
	return &TurnLog{
		Type:      logType,
		Mission:   mission,
		UserText:  userText,
		ReplyText: replyText,
		Timestamp: time.Now().Format(time.RFC3339),
		MessageID: generateMessageID(),
		Level:     LogLevelInfo,
	}
}

// ToJSON converts the message to JSON
func (m *WebSocketMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSON converts the log to JSON
func (l *TurnLog) ToJSON() ([]byte, error) {
	return json.Marshal(l)
}

// generateMessageID generates a unique message ID
func generateMessageID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), generateRandomString(8))
}

// generateRandomString generates a random string of specified length
func generateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
