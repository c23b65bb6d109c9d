package voice

// Tool is a function the dialogue model can invoke during a call.
type Tool struct {
	// Name is the unique identifier for the tool (e.g., "book_table").
	Name string `json:"name"`

	// Description explains what the tool does, helping the model decide when to use it.
	Description string `json:"description"`

	// Parameters is the JSON schema for the tool's arguments.
	Parameters map[string]any `json:"parameters"`

	// Handler runs the tool. The returned string is spoken to the caller.
	Handler func(args map[string]any) (string, error) `json:"-"`
}

// ToolCall is one invocation requested by the model.
type ToolCall struct {
	// ID matches the result back to the request.
	ID string

	Name string

	Arguments map[string]any
}

// ToolResult is the outcome of a ToolCall.
type ToolResult struct {
	// CallID matches the ToolCall.ID this result corresponds to.
	CallID string

	// Result is the text to send back to the model.
	Result string

	// Error is set if the tool failed or was not found.
	Error error
}

// ObjectSchema builds a JSON schema object with the given properties.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Property builds a single schema property.
func Property(typ, description string) map[string]any {
	return map[string]any{
		"type":        typ,
		"description": description,
	}
}
