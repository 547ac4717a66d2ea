package protocol

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Strict      bool
}

// HandoffDefinition exposes a transfer-of-control target as a callable tool.
type HandoffDefinition struct {
	ToolName        string
	ToolDescription string
	InputSchema     map[string]any
	Strict          bool
}

// OutputType describes the structured output schema the caller expects.
// A nil OutputType means free-form text.
type OutputType struct {
	Name   string
	Schema map[string]any
	Strict bool
}

// Settings carries sampling and behavior knobs. Pointer fields distinguish
// "unset" from zero values; ProviderData is merged verbatim into the wire
// request for fields the client does not model.
type Settings struct {
	Temperature       *float64
	TopP              *float64
	MaxTokens         *int64
	ToolChoice        string
	ParallelToolCalls *bool
	ReasoningEffort   string
	Truncation        string
	Store             *bool

	// ExtraHeaders are per-request transport header overrides; a nil value
	// unsets a header set by an earlier layer.
	ExtraHeaders map[string]*string
	// ExtraQuery are per-request query overrides; they win on key collision.
	ExtraQuery map[string]any

	ProviderData map[string]any
}

// Request captures the normalized model input produced by the run loop.
// Cancellation travels on the context.Context passed to the call, not here.
type Request struct {
	SystemInstructions string
	Input              []Item
	Tools              []ToolDefinition
	Handoffs           []HandoffDefinition
	OutputType         *OutputType
	Settings           Settings

	// PreviousResponseID references a prior response for server-side
	// conversation continuation.
	PreviousResponseID string
	ConversationID     string

	// TracingEnabled is carried for the run loop's benefit only: the wire
	// request has no tracing field, so the client never reads it.
	TracingEnabled bool
}

// UserInput is the single-string shorthand: it builds the one-user-message
// input sequence most callers start from.
func UserInput(text string) []Item {
	return []Item{Message{
		Role:    RoleUser,
		Content: []ContentPart{InputText{Text: text}},
	}}
}

// Validate rejects settings combinations the service would refuse anyway,
// so the failure is immediate and local.
func (r *Request) Validate() error {
	if r.Settings.ParallelToolCalls != nil && len(r.Tools) == 0 && len(r.Handoffs) == 0 {
		return NewUserError("parallel tool calls requested but no tools declared")
	}
	return nil
}
