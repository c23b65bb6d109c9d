// Package protocol defines the WebSocket message types exchanged between
// the speech pipeline and the call handler.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Pipeline → handler
	TypeStart    MessageType = "start"     // Call metadata, first message on a connection
	TypeToolCall MessageType = "tool_call" // Model invoked a tool

	// Handler → pipeline
	TypeReady      MessageType = "ready"       // Call accepted
	TypeToolResult MessageType = "tool_result" // Spoken result for a tool call
	TypeHangup     MessageType = "hangup"      // Call ended, pipeline should disconnect
	TypeError      MessageType = "error"       // Protocol error

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// StartData carries the call metadata. Fields mirror call.Metadata.
type StartData struct {
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	Language      string `json:"language,omitempty"`
}

// ToolCallData is one tool invocation.
type ToolCallData struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResultData answers a ToolCallData with the same ID.
type ToolResultData struct {
	CallID string `json:"call_id"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// ReadyData acknowledges a start message.
type ReadyData struct {
	CallID string   `json:"call_id"`
	Tools  []string `json:"tools"`
}

// HangupData tells the pipeline why the call ended.
type HangupData struct {
	CallID string `json:"call_id"`
	Reason string `json:"reason"`
}

// ErrorData reports a message the handler could not process.
type ErrorData struct {
	Message string `json:"message"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
