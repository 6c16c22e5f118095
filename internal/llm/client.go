package llm

import "context"

// Message is one turn of a chat conversation sent to the model.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a function invocation requested by the model. Arguments
// is the raw JSON string as returned by the gateway.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Tool describes a function the model may call. Parameters is a JSON
// schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// CompleteRequest holds the parameters for a chat completion call.
type CompleteRequest struct {
	Task        TaskType
	Messages    []Message
	Tools       []Tool
	ForceTool   string   // require the model to call this tool
	Temperature *float64 // nil uses task default
	MaxTokens   *int     // nil uses task default
}

// CompleteResponse holds the result of a chat completion call.
type CompleteResponse struct {
	Content   string
	ToolCalls []ToolCall
	Model     string
	LatencyMs int64
}

// ChunkFunc receives streamed content deltas. Returning an error
// aborts the stream.
type ChunkFunc func(delta string) error

// Client provides access to a chat completion model.
type Client interface {
	// Complete sends the conversation and returns the full response.
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)

	// StreamComplete sends the conversation and delivers content deltas
	// through onChunk as they arrive. The returned response carries the
	// accumulated content.
	StreamComplete(ctx context.Context, req CompleteRequest, onChunk ChunkFunc) (*CompleteResponse, error)

	// Available checks whether the gateway is reachable.
	Available(ctx context.Context) bool
}

// Chat message roles used on the wire.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleTool      = "tool"
)
