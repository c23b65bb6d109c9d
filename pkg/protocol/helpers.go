package protocol

// NewStartMessage creates a start message.
func NewStartMessage(data StartData) (*Message, error) {
	return NewMessage(TypeStart, data)
}

// NewToolCallMessage creates a tool call message.
func NewToolCallMessage(id, name string, args map[string]any) (*Message, error) {
	return NewMessage(TypeToolCall, ToolCallData{ID: id, Name: name, Arguments: args})
}

// NewToolResultMessage creates a tool result message. A non-nil err is
// sent as its text.
func NewToolResultMessage(callID, result string, err error) (*Message, error) {
	data := ToolResultData{CallID: callID, Result: result}
	if err != nil {
		data.Error = err.Error()
	}
	return NewMessage(TypeToolResult, data)
}

// NewReadyMessage creates a ready message.
func NewReadyMessage(callID string, tools []string) (*Message, error) {
	return NewMessage(TypeReady, ReadyData{CallID: callID, Tools: tools})
}

// NewHangupMessage creates a hangup message.
func NewHangupMessage(callID, reason string) (*Message, error) {
	return NewMessage(TypeHangup, HangupData{CallID: callID, Reason: reason})
}

// NewErrorMessage creates an error message.
func NewErrorMessage(text string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: text})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string, ts int64) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: ts})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// GetStartData extracts start data from a message
func (m *Message) GetStartData() (*StartData, error) {
	var data StartData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetToolCallData extracts a tool call from a message
func (m *Message) GetToolCallData() (*ToolCallData, error) {
	var data ToolCallData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetToolResultData extracts a tool result from a message
func (m *Message) GetToolResultData() (*ToolResultData, error) {
	var data ToolResultData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHangupData extracts hangup data from a message
func (m *Message) GetHangupData() (*HangupData, error) {
	var data HangupData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
